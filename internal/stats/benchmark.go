package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"evolver/internal/model"
)

const benchmarksDir = "benchmarks"

type BenchmarkRun struct {
	RunID       string           `json:"run_id"`
	Seed        int64            `json:"seed"`
	Generations int              `json:"generations"`
	Evaluations int              `json:"evaluations"`
	BestFitness float64          `json:"best_fitness"`
	StopReason  model.StopReason `json:"stop_reason"`
	Success     bool             `json:"success"`
}

type BenchmarkReport struct {
	ID             string         `json:"id"`
	Problem        string         `json:"problem"`
	GeneratedAtUTC string         `json:"generated_at_utc"`
	FitnessGoal    *float64       `json:"fitness_goal,omitempty"`
	TotalRuns      int            `json:"total_runs"`
	SuccessRuns    int            `json:"success_runs"`
	SuccessRate    float64        `json:"success_rate"`
	MeanBest       float64        `json:"mean_best"`
	StdBest        float64        `json:"std_best"`
	MaxBest        float64        `json:"max_best"`
	MinBest        float64        `json:"min_best"`
	MeanEvals      float64        `json:"mean_evaluations"`
	Runs           []BenchmarkRun `json:"runs"`
}

// BuildBenchmarkReport aggregates runs of one problem. Without a fitness
// goal every completed run counts as a success.
func BuildBenchmarkReport(id, problem string, runs []model.RunRecord, fitnessGoal *float64) BenchmarkReport {
	report := BenchmarkReport{
		ID:          id,
		Problem:     problem,
		FitnessGoal: cloneFloat64Ptr(fitnessGoal),
		TotalRuns:   len(runs),
		Runs:        make([]BenchmarkRun, 0, len(runs)),
	}
	best := make([]float64, 0, len(runs))
	evals := make([]float64, 0, len(runs))
	for _, run := range runs {
		entry := BenchmarkRun{
			RunID:       run.ID,
			Seed:        run.Seed,
			Generations: run.Generations,
			Evaluations: run.Evaluations,
			BestFitness: run.BestFitness,
			StopReason:  run.StopReason,
		}
		if fitnessGoal != nil {
			entry.Success = run.BestFitness >= *fitnessGoal
		} else {
			entry.Success = run.StopReason == model.StopReasonCompleted
		}
		if entry.Success {
			report.SuccessRuns++
		}
		report.Runs = append(report.Runs, entry)
		best = append(best, run.BestFitness)
		evals = append(evals, float64(run.Evaluations))
	}
	if len(runs) > 0 {
		report.SuccessRate = float64(report.SuccessRuns) / float64(len(runs))
		report.MaxBest = floats.Max(best)
		report.MinBest = floats.Min(best)
		report.MeanEvals = stat.Mean(evals, nil)
		if len(best) > 1 {
			report.MeanBest, report.StdBest = stat.MeanStdDev(best, nil)
		} else {
			report.MeanBest = best[0]
		}
	}
	return report
}

// WriteBenchmarkReport stores report under baseDir/benchmarks/<id>.json.
func WriteBenchmarkReport(baseDir string, report BenchmarkReport) (string, error) {
	if report.ID == "" {
		return "", fmt.Errorf("benchmark id is required")
	}
	dir := filepath.Join(baseDir, benchmarksDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if report.GeneratedAtUTC == "" {
		report.GeneratedAtUTC = time.Now().UTC().Format(time.RFC3339Nano)
	}
	path := benchmarkPath(baseDir, report.ID)
	if err := writeJSON(path, report); err != nil {
		return "", err
	}
	return path, nil
}

func ReadBenchmarkReport(baseDir, id string) (BenchmarkReport, bool, error) {
	var report BenchmarkReport
	ok, err := readJSON(benchmarkPath(baseDir, id), &report)
	if err != nil || !ok {
		return BenchmarkReport{}, ok, err
	}
	return report, true, nil
}

// ListBenchmarkReports returns stored reports, newest first.
func ListBenchmarkReports(baseDir string) ([]BenchmarkReport, error) {
	entries, err := os.ReadDir(filepath.Join(baseDir, benchmarksDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	reports := make([]BenchmarkReport, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		report, ok, err := ReadBenchmarkReport(baseDir, strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		if ok {
			reports = append(reports, report)
		}
	}
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].GeneratedAtUTC == reports[j].GeneratedAtUTC {
			return reports[i].ID > reports[j].ID
		}
		return reports[i].GeneratedAtUTC > reports[j].GeneratedAtUTC
	})
	return reports, nil
}

func benchmarkPath(baseDir, id string) string {
	return filepath.Join(baseDir, benchmarksDir, id+".json")
}

func cloneFloat64Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}
