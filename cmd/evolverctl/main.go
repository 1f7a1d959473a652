package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"evolver/internal/config"
	"evolver/internal/model"
	"evolver/internal/problem"
	"evolver/internal/stats"
)

const exportsDir = "exports"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := app{stdout: os.Stdout, stderr: os.Stderr}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

type app struct {
	stdout io.Writer
	stderr io.Writer
}

func (a app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return a.runInit(ctx, args[1:])
	case "problems":
		return a.runProblems(args[1:])
	case "run":
		return a.runRun(ctx, args[1:])
	case "benchmark":
		return a.runBenchmark(ctx, args[1:])
	case "benchmarks":
		return a.runBenchmarks(args[1:])
	case "runs":
		return a.runRuns(ctx, args[1:])
	case "show":
		return a.runShow(ctx, args[1:])
	case "export":
		return a.runExport(ctx, args[1:])
	case "delete":
		return a.runDelete(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func (a app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a app) runInit(ctx context.Context, args []string) (err error) {
	fs := a.newFlagSet("init")
	common := registerCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := common.open(ctx, a.stderr, nil)
	if err != nil {
		return err
	}
	defer func() { err = env.close(err) }()

	fmt.Fprintf(a.stdout, "initialized store=%s path=%s\n", common.store, common.dbPath)
	return nil
}

func (a app) runProblems(args []string) error {
	fs := a.newFlagSet("problems")
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, name := range problem.List() {
		fmt.Fprintf(a.stdout, "problem=%s\n", name)
	}
	return nil
}

func (a app) runRun(ctx context.Context, args []string) (err error) {
	fs := a.newFlagSet("run")
	common := registerCommonFlags(fs)
	overrides := registerRunFlags(fs)
	progress := fs.Bool("progress", false, "print diagnostics after every generation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadRunConfig(fs, common, overrides)
	if err != nil {
		return err
	}

	var onGeneration func(string, model.GenerationDiagnostics)
	if *progress {
		onGeneration = func(runID string, d model.GenerationDiagnostics) {
			fmt.Fprintf(a.stdout, "run_id=%s generation=%d evaluations=%s best_fitness=%.6f mean_fitness=%.6f survivors=%d\n",
				runID,
				d.Generation,
				humanize.Comma(int64(d.Evaluations)),
				d.BestFitness,
				d.MeanFitness,
				d.Survivors,
			)
		}
	}
	env, err := common.open(ctx, a.stderr, onGeneration)
	if err != nil {
		return err
	}
	defer func() { err = env.close(err) }()

	summary, err := env.runner.Run(ctx, cfg)
	if err != nil {
		return err
	}

	artifacts := "none"
	if cfg.ArtifactsDir != "" {
		artifacts, err = stats.ExportRun(cfg.ArtifactsDir, summary)
		if err != nil {
			return err
		}
	}
	fmt.Fprintf(a.stdout, "run_id=%s problem=%s stop_reason=%s generations=%d evaluations=%s best_fitness=%.6f final_size=%d duration=%s artifacts=%s\n",
		summary.Run.ID,
		summary.Run.Problem,
		summary.Run.StopReason,
		summary.Run.Generations,
		humanize.Comma(int64(summary.Run.Evaluations)),
		summary.Run.BestFitness,
		summary.Run.FinalSize,
		time.Duration(summary.Run.DurationMS)*time.Millisecond,
		artifacts,
	)
	return nil
}

func (a app) runBenchmark(ctx context.Context, args []string) (err error) {
	fs := a.newFlagSet("benchmark")
	common := registerCommonFlags(fs)
	overrides := registerRunFlags(fs)
	seedList := fs.String("seeds", "", "comma separated seeds, one run each (defaults to config seeds)")
	workers := fs.Int("workers", 0, "concurrent runs (defaults to config workers)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadRunConfig(fs, common, overrides)
	if err != nil {
		return err
	}
	seeds, err := parseSeeds(*seedList)
	if err != nil {
		return err
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	env, err := common.open(ctx, a.stderr, nil)
	if err != nil {
		return err
	}
	defer func() { err = env.close(err) }()

	report, err := env.runner.Benchmark(ctx, cfg, seeds, cfg.Workers)
	if err != nil {
		return err
	}

	reportPath := "none"
	if cfg.ArtifactsDir != "" {
		reportPath, err = stats.WriteBenchmarkReport(cfg.ArtifactsDir, report)
		if err != nil {
			return err
		}
	}
	for _, run := range report.Runs {
		fmt.Fprintf(a.stdout, "run_id=%s seed=%d generations=%d evaluations=%s best_fitness=%.6f success=%t\n",
			run.RunID,
			run.Seed,
			run.Generations,
			humanize.Comma(int64(run.Evaluations)),
			run.BestFitness,
			run.Success,
		)
	}
	fmt.Fprintf(a.stdout, "benchmark_id=%s problem=%s runs=%d success_rate=%.3f mean_best=%.6f std_best=%.6f max_best=%.6f min_best=%.6f report=%s\n",
		report.ID,
		report.Problem,
		report.TotalRuns,
		report.SuccessRate,
		report.MeanBest,
		report.StdBest,
		report.MaxBest,
		report.MinBest,
		reportPath,
	)
	return nil
}

func (a app) runBenchmarks(args []string) error {
	fs := a.newFlagSet("benchmarks")
	dir := fs.String("artifacts-dir", config.Default().ArtifactsDir, "directory benchmark reports were written to")
	id := fs.String("id", "", "print one report with its runs")
	jsonOut := fs.Bool("json", false, "emit reports as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *id != "" {
		report, ok, err := stats.ReadBenchmarkReport(*dir, *id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("benchmark %s not found under %s", *id, *dir)
		}
		if *jsonOut {
			return a.writeJSON(report)
		}
		a.printBenchmarkReport(report)
		for _, run := range report.Runs {
			fmt.Fprintf(a.stdout, "run_id=%s seed=%d generations=%d evaluations=%s best_fitness=%.6f success=%t\n",
				run.RunID,
				run.Seed,
				run.Generations,
				humanize.Comma(int64(run.Evaluations)),
				run.BestFitness,
				run.Success,
			)
		}
		return nil
	}

	reports, err := stats.ListBenchmarkReports(*dir)
	if err != nil {
		return err
	}
	if *jsonOut {
		return a.writeJSON(reports)
	}
	if len(reports) == 0 {
		fmt.Fprintln(a.stdout, "no benchmarks found")
		return nil
	}
	for _, report := range reports {
		a.printBenchmarkReport(report)
	}
	return nil
}

func (a app) printBenchmarkReport(report stats.BenchmarkReport) {
	fmt.Fprintf(a.stdout, "benchmark_id=%s problem=%s created=%q runs=%d success_rate=%.3f mean_best=%.6f max_best=%.6f\n",
		report.ID,
		report.Problem,
		createdAgo(report.GeneratedAtUTC),
		report.TotalRuns,
		report.SuccessRate,
		report.MeanBest,
		report.MaxBest,
	)
}

func (a app) runRuns(ctx context.Context, args []string) (err error) {
	fs := a.newFlagSet("runs")
	common := registerCommonFlags(fs)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	env, err := common.open(ctx, a.stderr, nil)
	if err != nil {
		return err
	}
	defer func() { err = env.close(err) }()

	runs, err := env.runner.Runs(ctx, *limit)
	if err != nil {
		return err
	}
	if *jsonOut {
		return a.writeJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.stdout, "no runs found")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(a.stdout, "run_id=%s created=%q problem=%s seed=%d generations=%d evaluations=%s best_fitness=%.6f stop_reason=%s\n",
			run.ID,
			createdAgo(run.CreatedAtUTC),
			run.Problem,
			run.Seed,
			run.Generations,
			humanize.Comma(int64(run.Evaluations)),
			run.BestFitness,
			run.StopReason,
		)
	}
	return nil
}

func (a app) runShow(ctx context.Context, args []string) (err error) {
	fs := a.newFlagSet("show")
	common := registerCommonFlags(fs)
	runID := fs.String("run-id", "", "run id (or first argument)")
	from := fs.String("from", "", "read the run from an artifacts directory instead of the store")
	top := fs.Int("top", 5, "number of best outcomes to print")
	jsonOut := fs.Bool("json", false, "emit the whole run as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := runIDArg(fs, *runID)
	if err != nil {
		return err
	}

	var summary stats.RunBundle
	if *from != "" {
		bundle, ok, err := stats.ReadRun(*from, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("run %s not found under %s", id, *from)
		}
		summary = bundle
	} else {
		env, openErr := common.open(ctx, a.stderr, nil)
		if openErr != nil {
			return openErr
		}
		defer func() { err = env.close(err) }()

		if summary, err = env.runner.Show(ctx, id); err != nil {
			return err
		}
	}
	if *jsonOut {
		return a.writeJSON(summary)
	}

	run := summary.Run
	fmt.Fprintf(a.stdout, "run_id=%s problem=%s seed=%d created=%q stop_reason=%s generations=%d evaluations=%s best_fitness=%.6f final_size=%d\n",
		run.ID,
		run.Problem,
		run.Seed,
		createdAgo(run.CreatedAtUTC),
		run.StopReason,
		run.Generations,
		humanize.Comma(int64(run.Evaluations)),
		run.BestFitness,
		run.FinalSize,
	)
	if n := len(summary.Diagnostics); n > 0 {
		last := summary.Diagnostics[n-1]
		fmt.Fprintf(a.stdout, "last_generation=%d best=%.6f mean=%.6f min=%.6f std_dev=%.6f survivors=%d\n",
			last.Generation, last.BestFitness, last.MeanFitness, last.MinFitness, last.StdDev, last.Survivors)
	}
	for i, outcome := range bestOutcomes(summary.FinalPopulation.Outcomes, *top) {
		fmt.Fprintf(a.stdout, "rank=%d fitness=%.6f age=%d phenotype=%s\n", i+1, outcome.Fitness, outcome.Age, outcome.Phenotype)
	}
	return nil
}

func (a app) runExport(ctx context.Context, args []string) (err error) {
	fs := a.newFlagSet("export")
	common := registerCommonFlags(fs)
	runID := fs.String("run-id", "", "run id (or first argument)")
	outDir := fs.String("out", exportsDir, "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := runIDArg(fs, *runID)
	if err != nil {
		return err
	}

	env, err := common.open(ctx, a.stderr, nil)
	if err != nil {
		return err
	}
	defer func() { err = env.close(err) }()

	dir, err := env.runner.Export(ctx, id, *outDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "exported run_id=%s to=%s\n", id, dir)
	return nil
}

func (a app) runDelete(ctx context.Context, args []string) (err error) {
	fs := a.newFlagSet("delete")
	common := registerCommonFlags(fs)
	runID := fs.String("run-id", "", "run id (or first argument)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := runIDArg(fs, *runID)
	if err != nil {
		return err
	}

	env, err := common.open(ctx, a.stderr, nil)
	if err != nil {
		return err
	}
	defer func() { err = env.close(err) }()

	if err := env.runner.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "deleted run_id=%s\n", id)
	return nil
}

func (a app) writeJSON(value any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func loadRunConfig(fs *flag.FlagSet, common *commonFlags, overrides *runFlags) (config.RunConfig, error) {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	cfg := config.Default()
	if overrides.configPath != "" {
		loaded, err := config.Load(overrides.configPath)
		if err != nil {
			return config.RunConfig{}, err
		}
		cfg = loaded
	}
	overrides.apply(&cfg, set)
	common.inherit(cfg, set)
	return cfg, cfg.Validate()
}

func runIDArg(fs *flag.FlagSet, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if fs.NArg() > 0 {
		return fs.Arg(0), nil
	}
	return "", usageError(fs.Name() + " requires a run id")
}

func parseSeeds(value string) ([]int64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	seeds := make([]int64, 0, len(parts))
	for _, part := range parts {
		seed, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", part, err)
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

func createdAgo(createdAtUTC string) string {
	created, err := time.Parse(time.RFC3339Nano, createdAtUTC)
	if err != nil {
		return createdAtUTC
	}
	return humanize.Time(created)
}

// bestOutcomes returns up to n outcomes, fittest first.
func bestOutcomes(outcomes []model.Outcome, n int) []model.Outcome {
	ranked := append([]model.Outcome(nil), outcomes...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: evolverctl <init|problems|run|benchmark|benchmarks|runs|show|export|delete> [flags]", msg)
}
