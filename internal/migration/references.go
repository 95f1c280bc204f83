package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"urs-migrator/internal/domain"
	"urs-migrator/internal/siar"
)

// ImportReferences bulk-copies the static reference data: reference codes,
// banks and branches, agent levels, agents, funds, investors and their agent
// assignments. Each entity type is gated by a source-vs-target count check
// and upserted by natural key, so the whole step can be re-run from scratch.
// Reference tables are small; no pagination.
func (p *Pipeline) ImportReferences(ctx context.Context) error {
	if err := p.importReferenceCodes(ctx); err != nil {
		return fmt.Errorf("references: %w", err)
	}
	if err := p.importBanks(ctx); err != nil {
		return fmt.Errorf("banks: %w", err)
	}
	if err := p.importAgentLevels(ctx); err != nil {
		return fmt.Errorf("agent levels: %w", err)
	}
	if err := p.importAgents(ctx); err != nil {
		return fmt.Errorf("agents: %w", err)
	}
	if err := p.importFunds(ctx); err != nil {
		return fmt.Errorf("funds: %w", err)
	}
	if err := p.importInvestors(ctx); err != nil {
		return fmt.Errorf("investors: %w", err)
	}
	return nil
}

func (p *Pipeline) importReferenceCodes(ctx context.Context) error {
	var sourceCount, targetCount int64
	if err := p.SIAR.WithContext(ctx).Model(&siar.ReferenceDetail{}).Count(&sourceCount).Error; err != nil {
		return err
	}
	if err := p.URS.WithContext(ctx).Model(&domain.Reference{}).Count(&targetCount).Error; err != nil {
		return err
	}
	p.Log.Info().Int64("source", sourceCount).Int64("target", targetCount).Msg("reference counts")
	if sourceCount <= targetCount {
		return nil
	}

	var details []siar.ReferenceDetail
	if err := p.SIAR.WithContext(ctx).Preload("Group").Find(&details).Error; err != nil {
		return err
	}
	for _, detail := range details {
		groupName := strings.TrimSpace(detail.Group.GroupName)
		code := strings.TrimSpace(detail.MainValue)
		p.Log.Debug().Str("group", groupName).Str("code", code).Msg("importing reference")

		var ref domain.Reference
		err := p.URS.WithContext(ctx).
			Where("reference_name = ? AND code = ?", groupName, code).
			First(&ref).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ref = domain.Reference{ReferenceName: groupName, Code: code, Name: detail.Display}
			if err := p.URS.WithContext(ctx).Create(&ref).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			ref.Name = detail.Display
			if err := p.URS.WithContext(ctx).Save(&ref).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Pipeline) importBanks(ctx context.Context) error {
	var sourceCount, targetCount int64
	if err := p.SIAR.WithContext(ctx).Model(&siar.RefBank{}).Count(&sourceCount).Error; err != nil {
		return err
	}
	if err := p.URS.WithContext(ctx).Model(&domain.Bank{}).Count(&targetCount).Error; err != nil {
		return err
	}
	if sourceCount <= targetCount {
		return nil
	}

	var banks []siar.RefBank
	if err := p.SIAR.WithContext(ctx).Preload("Branches").Find(&banks).Error; err != nil {
		return err
	}
	for _, src := range banks {
		code := externalCode(src.IDBank)
		p.Log.Debug().Str("bank", src.BankName).Msg("importing bank")

		var bank domain.Bank
		err := p.URS.WithContext(ctx).Where("code = ?", code).First(&bank).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			bank = domain.Bank{Code: code, Name: src.BankName, BiCode: src.BIMemberCode, IsActive: true}
			if err := p.URS.WithContext(ctx).Create(&bank).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			bank.BiCode = src.BIMemberCode
			if err := p.URS.WithContext(ctx).Save(&bank).Error; err != nil {
				return err
			}
		}

		for _, srcBranch := range src.Branches {
			branchCode := externalCode(srcBranch.IDBankBranch)
			p.Log.Debug().Str("branch", srcBranch.BranchName).Msg("importing bank branch")

			var branch domain.BankBranch
			err := p.URS.WithContext(ctx).Where("code = ?", branchCode).First(&branch).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				branch = domain.BankBranch{Code: branchCode, Name: srcBranch.BranchName, BankID: bank.ID}
				if err := p.URS.WithContext(ctx).Create(&branch).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				branch.Name = srcBranch.BranchName
				if err := p.URS.WithContext(ctx).Save(&branch).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (p *Pipeline) importAgentLevels(ctx context.Context) error {
	var sourceCount, targetCount int64
	if err := p.SIAR.WithContext(ctx).Model(&siar.AgentLevel{}).Count(&sourceCount).Error; err != nil {
		return err
	}
	if err := p.URS.WithContext(ctx).Model(&domain.AgentLevel{}).Count(&targetCount).Error; err != nil {
		return err
	}
	if sourceCount <= targetCount {
		return nil
	}

	var levels []siar.AgentLevel
	if err := p.SIAR.WithContext(ctx).Find(&levels).Error; err != nil {
		return err
	}
	for _, src := range levels {
		name := strings.ToUpper(src.AgentLevelName)
		p.Log.Debug().Str("level", name).Msg("importing agent level")

		var level domain.AgentLevel
		err := p.URS.WithContext(ctx).Where("name = ?", name).First(&level).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			level = domain.AgentLevel{Name: name, TreeLevel: src.CodeLength + 1}
			if err := p.URS.WithContext(ctx).Create(&level).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}
		// existing levels are left untouched
	}
	return nil
}

func (p *Pipeline) importAgents(ctx context.Context) error {
	var sourceCount, targetCount int64
	if err := p.SIAR.WithContext(ctx).Model(&siar.Agent{}).Count(&sourceCount).Error; err != nil {
		return err
	}
	if err := p.URS.WithContext(ctx).Model(&domain.Agent{}).Count(&targetCount).Error; err != nil {
		return err
	}
	if sourceCount <= targetCount {
		return nil
	}

	var agents []siar.Agent
	if err := p.SIAR.WithContext(ctx).Find(&agents).Error; err != nil {
		return err
	}
	for _, src := range agents {
		code := externalCode(src.AgentID)
		name := ""
		if src.NameAgent != nil {
			name = *src.NameAgent
		}
		levelID := int64(1)
		if src.AgentLevelID != nil {
			levelID = *src.AgentLevelID + 1
		}
		active := src.IDStatus == "ACTIVE"
		p.Log.Debug().Str("agent", name).Msg("importing agent")

		var agent domain.Agent
		err := p.URS.WithContext(ctx).Where("code = ?", code).First(&agent).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			agent = domain.Agent{
				Code:         code,
				Name:         name,
				AgentLevelID: levelID,
				AgentTypeID:  "1",
				IsActive:     active,
			}
			if err := p.URS.WithContext(ctx).Create(&agent).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			agent.Name = name
			agent.IsActive = active
			if err := p.URS.WithContext(ctx).Save(&agent).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Pipeline) importFunds(ctx context.Context) error {
	var sourceCount, targetCount int64
	if err := p.SIAR.WithContext(ctx).Model(&siar.Product{}).Count(&sourceCount).Error; err != nil {
		return err
	}
	if err := p.URS.WithContext(ctx).Model(&domain.Fund{}).Count(&targetCount).Error; err != nil {
		return err
	}
	if sourceCount <= targetCount {
		return nil
	}

	var products []siar.Product
	if err := p.SIAR.WithContext(ctx).Find(&products).Error; err != nil {
		return err
	}
	for _, src := range products {
		code := externalCode(src.IDProduct)
		p.Log.Debug().Str("fund", src.ProductName).Msg("importing fund")

		var existing domain.Fund
		err := p.URS.WithContext(ctx).Where("external_code = ?", code).First(&existing).Error
		if err == nil {
			continue // funds are immutable once created
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		fund := domain.Fund{
			Name:           src.ProductName,
			Code:           src.ProductCode,
			ExternalCode:   code,
			FundCategoryID: src.IDCategory,

			MinSub:   decimalOrZero(src.SubsMin),
			MinRed:   decimalOrZero(src.RedMinAmount),
			MinSwin:  decimalOrZero(src.MinUnitSwitching),
			MinSwout: decimalOrZero(src.MinUnitSwitching),

			SubSettlementDays:       src.SubSettle,
			RedSettlementDays:       src.RedSettle,
			SwitchingSettlementDays: src.SwtSettle,

			ManagementFeeRate: decimalOrZero(src.ManagementFee),
			ValuationBasis:    365,

			StartDate: src.StartDate,
			EndDate:   src.EndDate,

			IsActive:  src.IDStatus,
			IsSyaria:  src.IsSharia != nil && *src.IsSharia,
			CanSub:    src.AllowSubscription,
			CanRedeem: src.AllowRedemption,
			CanSwitch: src.AllowSwitching,
			Version:   1,
		}
		if err := p.URS.WithContext(ctx).Create(&fund).Error; err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) importInvestors(ctx context.Context) error {
	var sourceCount, targetCount int64
	if err := p.SIAR.WithContext(ctx).Model(&siar.Customer{}).Count(&sourceCount).Error; err != nil {
		return err
	}
	if err := p.URS.WithContext(ctx).Model(&domain.Investor{}).Count(&targetCount).Error; err != nil {
		return err
	}
	if sourceCount <= targetCount {
		return nil
	}

	var customers []siar.Customer
	if err := p.SIAR.WithContext(ctx).Preload("AgentCustomers").Find(&customers).Error; err != nil {
		return err
	}
	for _, src := range customers {
		code := externalCode(src.IDCustomer)
		firstName := ""
		if src.FirstName != nil {
			firstName = *src.FirstName
		}
		p.Log.Debug().Str("investor", firstName).Msg("importing investor")

		var investor domain.Investor
		err := p.URS.WithContext(ctx).Where("external_code = ?", code).First(&investor).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			investor = domain.Investor{
				FirstName:      firstName,
				MiddleName:     src.MiddleName,
				LastName:       src.LastName,
				Email:          nilIfBlank(src.Email),
				PhoneNumber:    nilIfBlank(src.MobilePhone),
				Sid:            src.UnitHolderIDNo,
				InvestorTypeID: src.InvestorType,
				ExternalCode:   code,
			}
			if err := p.URS.WithContext(ctx).Create(&investor).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			investor.FirstName = firstName
			investor.MiddleName = src.MiddleName
			investor.LastName = src.LastName
			investor.Email = nilIfBlank(src.Email)
			investor.PhoneNumber = nilIfBlank(src.MobilePhone)
			investor.Sid = src.UnitHolderIDNo
			investor.InvestorTypeID = src.InvestorType
			if err := p.URS.WithContext(ctx).Save(&investor).Error; err != nil {
				return err
			}
		}

		if len(src.AgentCustomers) > 0 {
			first := src.AgentCustomers[0]
			var agent domain.Agent
			err := p.URS.WithContext(ctx).Where("code = ?", externalCode(first.AgentID)).First(&agent).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				p.Log.Warn().Int64("agent", first.AgentID).Msg("agent not found for investor assignment")
				continue
			}
			if err != nil {
				return err
			}

			var link domain.AgentInvestor
			err = p.URS.WithContext(ctx).
				Where("agent_id = ? AND investor_id = ?", agent.ID, investor.ID).
				First(&link).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				link = domain.AgentInvestor{AgentID: agent.ID, InvestorID: investor.ID, EffectiveDate: first.EffDate}
				if err := p.URS.WithContext(ctx).Create(&link).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}
	}
	return nil
}
