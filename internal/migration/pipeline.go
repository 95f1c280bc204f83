// Package migration implements the SIAR to URS data migration pipeline: an
// ordered sequence of independently idempotent steps, each reading the legacy
// SIAR registry and writing derived records into the URS database. Re-running
// a step is the recovery mechanism; every write is guarded by a natural-key
// presence check or a skip-duplicate constraint.
package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Pipeline carries the two database handles and tuning knobs into every step.
// Tests substitute in-memory databases for both.
type Pipeline struct {
	URS  *gorm.DB // target Unit Registry System
	SIAR *gorm.DB // legacy source registry, read-only
	Log  zerolog.Logger

	PageSize    int // rows per source page / insert batch
	Parallelism int // concurrent investors (import) or transactions (reconcile)
	AumWorkers  int // concurrent NAV dates in the AUM step
}

// New returns a Pipeline with default tuning.
func New(urs, siar *gorm.DB, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		URS:         urs,
		SIAR:        siar,
		Log:         log,
		PageSize:    1000,
		Parallelism: 10,
		AumWorkers:  8,
	}
}

// Step is one named unit of the pipeline.
type Step struct {
	Name        string
	Description string
	Run         func(ctx context.Context, p *Pipeline) error
}

// Steps returns all steps in canonical execution order.
func Steps() []Step {
	return []Step{
		{
			Name:        "references",
			Description: "Import references, banks, agents, funds, and investors from SIAR",
			Run:         func(ctx context.Context, p *Pipeline) error { return p.ImportReferences(ctx) },
		},
		{
			Name:        "transactions",
			Description: "Import approved transactions from SIAR",
			Run:         func(ctx context.Context, p *Pipeline) error { return p.ImportTransactions(ctx) },
		},
		{
			Name:        "missing-transactions",
			Description: "Reconcile and import missing SIAR transactions",
			Run:         func(ctx context.Context, p *Pipeline) error { return p.ReconcileMissingTransactions(ctx) },
		},
		{
			Name:        "nav",
			Description: "Import missing NAV records",
			Run:         func(ctx context.Context, p *Pipeline) error { return p.MigrateNav(ctx) },
		},
		{
			Name:        "management-fee",
			Description: "Sync management fee and valuation basis",
			Run:         func(ctx context.Context, p *Pipeline) error { return p.ImportManagementFees(ctx) },
		},
		{
			Name:        "holdings",
			Description: "Generate investor holdings snapshots",
			Run:         func(ctx context.Context, p *Pipeline) error { return p.GenerateHoldings(ctx) },
		},
		{
			Name:        "aum",
			Description: "Generate daily AUM snapshots from holdings and NAVs",
			Run:         func(ctx context.Context, p *Pipeline) error { return p.GenerateAum(ctx) },
		},
	}
}

// SelectSteps resolves a comma-separated selection against the registry. The
// result keeps canonical order regardless of the order given. Unknown names
// are an error before anything runs; an empty selection means all steps.
func SelectSteps(raw string) ([]Step, error) {
	all := Steps()
	if strings.TrimSpace(raw) == "" {
		return all, nil
	}

	selected := map[string]bool{}
	var unknown []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		found := false
		for _, step := range all {
			if step.Name == name {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, name)
			continue
		}
		selected[name] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown migration step(s): %s", strings.Join(unknown, ", "))
	}

	var steps []Step
	for _, step := range all {
		if selected[step.Name] {
			steps = append(steps, step)
		}
	}
	return steps, nil
}

// externalCode builds the cross-system natural key for a SIAR identifier.
func externalCode(id int64) string {
	return fmt.Sprintf("SIAR-%d", id)
}

// siarID is the inverse of externalCode; ok is false for foreign codes.
func siarID(code string) (string, bool) {
	rest, found := strings.CutPrefix(code, "SIAR-")
	return rest, found
}
