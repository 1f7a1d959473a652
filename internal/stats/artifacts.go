package stats

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"evolver/internal/model"
)

const (
	runFile             = "run.json"
	diagnosticsFile     = "generation_diagnostics.json"
	finalPopulationFile = "final_population.json"
	fitnessHistoryFile  = "fitness_history.csv"
)

// RunBundle is everything recorded about one run.
type RunBundle struct {
	Run             model.RunRecord               `json:"run"`
	Diagnostics     []model.GenerationDiagnostics `json:"diagnostics"`
	FinalPopulation model.FinalPopulation         `json:"final_population"`
}

// ExportRun writes bundle under baseDir/<run-id> and returns that directory.
func ExportRun(baseDir string, bundle RunBundle) (string, error) {
	if bundle.Run.ID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, bundle.Run.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, runFile), bundle.Run); err != nil {
		return "", err
	}
	diagnostics := bundle.Diagnostics
	if diagnostics == nil {
		diagnostics = []model.GenerationDiagnostics{}
	}
	if err := writeJSON(filepath.Join(runDir, diagnosticsFile), diagnostics); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, finalPopulationFile), bundle.FinalPopulation); err != nil {
		return "", err
	}
	if err := writeFitnessHistory(filepath.Join(runDir, fitnessHistoryFile), diagnostics); err != nil {
		return "", err
	}
	return runDir, nil
}

// ReadRun loads a bundle written by ExportRun. ok is false when the run
// directory has no run record.
func ReadRun(baseDir, runID string) (RunBundle, bool, error) {
	runDir := filepath.Join(baseDir, runID)
	var bundle RunBundle
	ok, err := readJSON(filepath.Join(runDir, runFile), &bundle.Run)
	if err != nil || !ok {
		return RunBundle{}, ok, err
	}
	if _, err := readJSON(filepath.Join(runDir, diagnosticsFile), &bundle.Diagnostics); err != nil {
		return RunBundle{}, false, err
	}
	if _, err := readJSON(filepath.Join(runDir, finalPopulationFile), &bundle.FinalPopulation); err != nil {
		return RunBundle{}, false, err
	}
	return bundle, true, nil
}

func writeFitnessHistory(path string, diagnostics []model.GenerationDiagnostics) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	rows := [][]string{{"generation", "evaluations", "best", "mean", "min", "std_dev"}}
	for _, d := range diagnostics {
		rows = append(rows, []string{
			strconv.Itoa(d.Generation),
			strconv.Itoa(d.Evaluations),
			formatFloat(d.BestFitness),
			formatFloat(d.MeanFitness),
			formatFloat(d.MinFitness),
			formatFloat(d.StdDev),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return true, nil
}
