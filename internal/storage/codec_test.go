package storage

import (
	"errors"
	"testing"

	"evolver/internal/model"
)

func TestRunCodecRejectsVersionMismatch(t *testing.T) {
	run := newRun("r1", "2026-01-01T00:00:00Z", 1)
	run.SchemaVersion = CurrentSchemaVersion + 1
	payload, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeRun(payload); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestFinalPopulationCodecRoundTrip(t *testing.T) {
	input := model.FinalPopulation{
		VersionedRecord: CurrentVersion(),
		RunID:           "r1",
		Outcomes:        []model.Outcome{{Phenotype: "0.5,0.25", Fitness: -0.3125, Age: 1}},
	}
	payload, err := EncodeFinalPopulation(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	output, err := DecodeFinalPopulation(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if output.RunID != "r1" || len(output.Outcomes) != 1 || output.Outcomes[0] != input.Outcomes[0] {
		t.Fatalf("unexpected decoded population: %+v", output)
	}
}

func TestFinalPopulationCodecRejectsMissingVersion(t *testing.T) {
	if _, err := DecodeFinalPopulation([]byte(`{"run_id":"r1"}`)); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestDecodeRunRejectsMalformedPayload(t *testing.T) {
	if _, err := DecodeRun([]byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
}
