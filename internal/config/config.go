package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds migration configuration (env + Viper).
type Config struct {
	URSDatabaseURL  string // target Unit Registry System database
	SIARDatabaseURL string // legacy SIAR registry database (read-only)
	PageSize        int    // rows per source page / insert batch
	Parallelism     int    // concurrent investors (import) or transactions (reconcile)
	AumWorkers      int    // concurrent NAV dates in the AUM step
}

// Load loads config from env and optional .env file. Both database URLs are
// required; the pipeline refuses to start without them.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("MIGRATE_PAGE_SIZE", 1000)
	viper.SetDefault("MIGRATE_PARALLELISM", 10)
	viper.SetDefault("MIGRATE_AUM_WORKERS", 8)

	cfg := &Config{
		URSDatabaseURL:  viper.GetString("URS_DATABASE_URL"),
		SIARDatabaseURL: viper.GetString("SIAR_DATABASE_URL"),
		PageSize:        viper.GetInt("MIGRATE_PAGE_SIZE"),
		Parallelism:     viper.GetInt("MIGRATE_PARALLELISM"),
		AumWorkers:      viper.GetInt("MIGRATE_AUM_WORKERS"),
	}

	if cfg.URSDatabaseURL == "" {
		return nil, fmt.Errorf("missing required env: URS_DATABASE_URL")
	}
	if cfg.SIARDatabaseURL == "" {
		return nil, fmt.Errorf("missing required env: SIAR_DATABASE_URL")
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 1000
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 10
	}
	if cfg.AumWorkers < 1 {
		cfg.AumWorkers = 8
	}
	return cfg, nil
}
