package storage

import (
	"context"
	"errors"
	"testing"

	"evolver/internal/model"
)

func newRun(id, createdAt string, best float64) model.RunRecord {
	return model.RunRecord{
		VersionedRecord: CurrentVersion(),
		ID:              id,
		Problem:         "onemax",
		Seed:            7,
		CreatedAtUTC:    createdAt,
		Generations:     12,
		Evaluations:     480,
		BestFitness:     best,
		FinalSize:       2,
		StopReason:      model.StopReasonCompleted,
	}
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.Init(ctx); err != nil {
		t.Fatalf("second init: %v", err)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing run, got ok=%t err=%v", ok, err)
	}

	older := newRun("run-a", "2026-01-01T10:00:00Z", 0.5)
	newer := newRun("run-b", "2026-01-02T10:00:00Z", 0.75)
	for _, run := range []model.RunRecord{older, newer} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", run.ID, err)
		}
	}

	loaded, ok, err := store.GetRun(ctx, older.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok || loaded.BestFitness != 0.5 || loaded.Problem != "onemax" {
		t.Fatalf("unexpected run: ok=%t %+v", ok, loaded)
	}

	older.BestFitness = 0.6
	if err := store.SaveRun(ctx, older); err != nil {
		t.Fatalf("overwrite run: %v", err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-b" || runs[1].ID != "run-a" || runs[1].BestFitness != 0.6 {
		t.Fatalf("unexpected run listing: %+v", runs)
	}

	diagnostics := []model.GenerationDiagnostics{
		{Generation: 1, BestFitness: 0.4, MeanFitness: 0.2, Survivors: 4},
		{Generation: 2, BestFitness: 0.6, MeanFitness: 0.3, Survivors: 4},
	}
	if err := store.SaveDiagnostics(ctx, older.ID, diagnostics); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	gotDiagnostics, ok, err := store.GetDiagnostics(ctx, older.ID)
	if err != nil || !ok {
		t.Fatalf("get diagnostics: ok=%t err=%v", ok, err)
	}
	if len(gotDiagnostics) != 2 || gotDiagnostics[1].BestFitness != 0.6 {
		t.Fatalf("unexpected diagnostics: %+v", gotDiagnostics)
	}

	final := model.FinalPopulation{
		VersionedRecord: CurrentVersion(),
		RunID:           older.ID,
		Outcomes: []model.Outcome{
			{Phenotype: "1111", Fitness: 4, Age: 2},
			{Phenotype: "1110", Fitness: 3},
		},
	}
	if err := store.SaveFinalPopulation(ctx, final); err != nil {
		t.Fatalf("save final population: %v", err)
	}
	gotFinal, ok, err := store.GetFinalPopulation(ctx, older.ID)
	if err != nil || !ok {
		t.Fatalf("get final population: ok=%t err=%v", ok, err)
	}
	if len(gotFinal.Outcomes) != 2 || gotFinal.Outcomes[0].Phenotype != "1111" || gotFinal.Outcomes[0].Age != 2 {
		t.Fatalf("unexpected final population: %+v", gotFinal)
	}

	if err := store.DeleteRun(ctx, older.ID); err != nil {
		t.Fatalf("delete run: %v", err)
	}
	if err := store.DeleteRun(ctx, "never-existed"); err != nil {
		t.Fatalf("delete unknown run: %v", err)
	}
	if _, ok, _ := store.GetRun(ctx, older.ID); ok {
		t.Fatal("expected run to be deleted")
	}
	if _, ok, _ := store.GetDiagnostics(ctx, older.ID); ok {
		t.Fatal("expected diagnostics to be deleted")
	}
	if _, ok, _ := store.GetFinalPopulation(ctx, older.ID); ok {
		t.Fatal("expected final population to be deleted")
	}
	runs, err = store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs after delete: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != newer.ID {
		t.Fatalf("unexpected runs after delete: %+v", runs)
	}
}

func requireNotInitialized(t *testing.T, store Store) {
	t.Helper()
	err := store.SaveRun(context.Background(), newRun("r", "2026-01-01T00:00:00Z", 1))
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}
