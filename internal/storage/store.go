package storage

import (
	"context"
	"errors"
	"sort"

	"evolver/internal/model"
)

var ErrNotInitialized = errors.New("store is not initialized")

// Store persists finished runs: the run record, its per-generation
// diagnostics and its final population.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	// ListRuns returns runs newest first.
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	// DeleteRun removes the run and everything recorded for it. Deleting an
	// unknown run is not an error.
	DeleteRun(ctx context.Context, id string) error
	SaveDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
	SaveFinalPopulation(ctx context.Context, population model.FinalPopulation) error
	GetFinalPopulation(ctx context.Context, runID string) (model.FinalPopulation, bool, error)
}

func sortRuns(runs []model.RunRecord) {
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC == runs[j].CreatedAtUTC {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAtUTC > runs[j].CreatedAtUTC
	})
}
