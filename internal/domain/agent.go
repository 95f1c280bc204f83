package domain

import (
	"time"

	"github.com/google/uuid"
)

// AgentLevel is a sales-hierarchy tier. Imported once; upserts are no-ops.
type AgentLevel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;uniqueIndex" json:"name"`
	TreeLevel int       `gorm:"column:tree_level;not null;default:1" json:"tree_level"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (AgentLevel) TableName() string {
	return "agent_levels"
}

// Agent is a sales agent. Only name and the active flag are refreshed by
// repeated reference-import runs.
type Agent struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Code         string    `gorm:"column:code;uniqueIndex" json:"code"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	AgentLevelID int64     `gorm:"column:agent_level_id;not null;default:1" json:"agent_level_id"`
	AgentTypeID  string    `gorm:"column:agent_type_id;not null;default:'1'" json:"agent_type_id"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Agent) TableName() string {
	return "agents"
}

// AgentInvestor assigns an investor to an agent from an effective date.
type AgentInvestor struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	AgentID       int64      `gorm:"column:agent_id;uniqueIndex:idx_agent_investors_pair;not null" json:"agent_id"`
	InvestorID    uuid.UUID  `gorm:"column:investor_id;type:uuid;uniqueIndex:idx_agent_investors_pair;not null" json:"investor_id"`
	EffectiveDate *time.Time `gorm:"column:effective_date" json:"effective_date"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (AgentInvestor) TableName() string {
	return "agent_investors"
}
