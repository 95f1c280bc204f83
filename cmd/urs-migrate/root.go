package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"urs-migrator/internal/config"
	"urs-migrator/internal/infrastructure/database"
	"urs-migrator/internal/migration"
)

type migrateOptions struct {
	steps string
	list  bool
}

func newRootCmd() *cobra.Command {
	var opts migrateOptions

	cmd := &cobra.Command{
		Use:           "urs-migrate",
		Short:         "Migrate the SIAR fund registry into the URS database",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.steps, "steps", "", "Comma-separated step names to run (default: all, in order)")
	cmd.Flags().BoolVar(&opts.list, "list", false, "List available steps and exit")
	return cmd
}

func runMigrate(cmd *cobra.Command, opts migrateOptions) error {
	log := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if opts.list {
		for _, step := range migration.Steps() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-22s %s\n", step.Name, step.Description)
		}
		return nil
	}

	steps, err := migration.SelectSteps(opts.steps)
	if err != nil {
		return err
	}

	urs, err := database.Open(cfg.URSDatabaseURL)
	if err != nil {
		return fmt.Errorf("connect URS: %w", err)
	}
	defer database.Close(urs)
	if err := database.Ping(urs); err != nil {
		return fmt.Errorf("ping URS: %w", err)
	}

	siar, err := database.Open(cfg.SIARDatabaseURL)
	if err != nil {
		return fmt.Errorf("connect SIAR: %w", err)
	}
	defer database.Close(siar)
	if err := database.Ping(siar); err != nil {
		return fmt.Errorf("ping SIAR: %w", err)
	}

	pipeline := migration.New(urs, siar, log)
	pipeline.PageSize = cfg.PageSize
	pipeline.Parallelism = cfg.Parallelism
	pipeline.AumWorkers = cfg.AumWorkers

	ctx := cmd.Context()
	started := time.Now()
	for _, step := range steps {
		stepStart := time.Now()
		log.Info().Str("step", step.Name).Msg("starting step")
		if err := step.Run(ctx, pipeline); err != nil {
			log.Error().Err(err).Str("step", step.Name).Msg("step failed")
			return fmt.Errorf("step %s: %w", step.Name, err)
		}
		log.Info().
			Str("step", step.Name).
			Dur("elapsed", time.Since(stepStart)).
			Msg("completed step")
	}
	log.Info().
		Int("steps", len(steps)).
		Dur("elapsed", time.Since(started)).
		Msg("migration finished")
	return nil
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
