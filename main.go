// Command go-topology-checker validates the topology of polygon datasets:
// overlaps, containments and coverage gaps. It checks each input file as an
// independent dataset (or all files merged with -merged) and writes one
// GeoJSON result file per input with findings.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/tj/go-spin"

	"github.com/bsaid97/go-topology-checker/checkers"
	"github.com/bsaid97/go-topology-checker/geometry"
	"github.com/bsaid97/go-topology-checker/loaders"
	"github.com/bsaid97/go-topology-checker/utils"
)

type options struct {
	idField         string
	tolerance       float64
	scope           string
	overlapMinArea  float64
	containMinArea  float64
	gapMinArea      float64
	excludeEdgeGaps bool
	merged          bool
	workers         int
	outDir          string
	verbose         bool
}

// fileResult is the outcome of checking one input file. Load and run
// failures stay per-file so one bad input never aborts the batch.
type fileResult struct {
	file     string
	report   *checkers.Report
	err      error
	skipped  bool
	features int
}

func main() {
	var opts options
	flag.StringVar(&opts.idField, "id-field", "", "feature property or attribute used as feature id")
	flag.Float64Var(&opts.tolerance, "tolerance", 1e-9, "floating-point tolerance for geometric comparisons")
	flag.StringVar(&opts.scope, "scope", "all", "overlap/containment scope: all, within-group or cross-group")
	flag.Float64Var(&opts.overlapMinArea, "overlap-min-area", 0, "ignore overlaps below this area")
	flag.Float64Var(&opts.containMinArea, "containment-min-area", 0, "ignore contained features below this area")
	flag.Float64Var(&opts.gapMinArea, "gap-min-area", 1e-9, "ignore voids below this area")
	flag.BoolVar(&opts.excludeEdgeGaps, "exclude-edge-gaps", false, "drop voids touching the coverage envelope edge")
	flag.BoolVar(&opts.merged, "merged", false, "check all input files as one dataset (enables cross-file findings)")
	flag.IntVar(&opts.workers, "workers", 4, "number of files checked in parallel")
	flag.StringVar(&opts.outDir, "out", "", "directory for result files (default: next to inputs)")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	files, err := expandArgs(flag.Args())
	if err != nil {
		logger.Error("resolving inputs", "err", err)
		os.Exit(2)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: go-topology-checker [flags] file.geojson|file.shp ...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := checkers.DefaultConfig()
	cfg.Tolerance = opts.tolerance
	cfg.OverlapScope = checkers.Scope(opts.scope)
	cfg.OverlapMinArea = opts.overlapMinArea
	cfg.ContainmentMinArea = opts.containMinArea
	cfg.GapMinArea = opts.gapMinArea
	cfg.ExcludeEdgeGaps = opts.excludeEdgeGaps

	runner, err := checkers.NewRunner(cfg, logger)
	if err != nil {
		logger.Error("configuration rejected", "err", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var results []fileResult
	if opts.merged {
		results = runMerged(ctx, runner, files, opts, logger)
	} else {
		results = runBatch(ctx, runner, files, opts, logger)
	}

	os.Exit(summarize(results, logger))
}

// runBatch checks every file as its own dataset on a worker pool.
func runBatch(ctx context.Context, runner *checkers.Runner, files []string, opts options, logger *slog.Logger) []fileResult {
	done := make(chan struct{})
	go spinUntil(done, fmt.Sprintf("checking %d files", len(files)))

	pool := utils.NewWorkerPool[string, fileResult](opts.workers)
	tracker := utils.NewProgressTracker(int64(len(files)), "batch check", 1, logger)
	results := pool.ProcessBatch(ctx, files, func(ctx context.Context, file string) fileResult {
		defer tracker.Increment()
		if ctx.Err() != nil {
			return fileResult{file: file, skipped: true}
		}
		return checkOneFile(ctx, runner, file, opts)
	})
	close(done)
	return results
}

// runMerged loads every file into a single feature set so overlap and
// containment findings can span files; sources still group gap checking.
func runMerged(ctx context.Context, runner *checkers.Runner, files []string, opts options, logger *slog.Logger) []fileResult {
	var all []geometry.Feature
	var results []fileResult
	for _, file := range files {
		features, err := loadFile(file, opts)
		if err != nil {
			results = append(results, fileResult{file: file, err: err})
			continue
		}
		all = append(all, features...)
	}
	if len(all) == 0 {
		return results
	}

	done := make(chan struct{})
	go spinUntil(done, fmt.Sprintf("checking %d features", len(all)))
	report, err := runner.Run(ctx, all)
	close(done)

	merged := fileResult{file: "merged", report: report, err: err, features: len(all)}
	if err == nil {
		merged.err = writeReport(mergedOutputPath(files[0], opts), report)
	}
	return append(results, merged)
}

func checkOneFile(ctx context.Context, runner *checkers.Runner, file string, opts options) fileResult {
	start := time.Now()
	features, err := loadFile(file, opts)
	if err != nil {
		return fileResult{file: file, err: err}
	}
	report, err := runner.Run(ctx, features)
	if err != nil {
		return fileResult{file: file, err: err, features: len(features)}
	}
	if err := writeReport(outputPath(file, opts), report); err != nil {
		return fileResult{file: file, err: err, features: len(features)}
	}
	slog.Debug("file checked", "file", file, "features", len(features), "elapsed", time.Since(start))
	return fileResult{file: file, report: report, features: len(features)}
}

func loadFile(file string, opts options) ([]geometry.Feature, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".shp":
		return loaders.LoadShapefile(file, opts.idField, opts.tolerance)
	case ".json", ".geojson":
		return loaders.LoadGeoJSON(file, opts.idField, opts.tolerance)
	default:
		return nil, fmt.Errorf("unsupported input format %q", filepath.Ext(file))
	}
}

func writeReport(path string, report *checkers.Report) error {
	if report.Empty() {
		return nil
	}
	return loaders.WriteReportGeoJSON(path, report)
}

func outputPath(file string, opts options) string {
	name := loaders.SourceName(file) + "_findings.geojson"
	if opts.outDir != "" {
		return filepath.Join(opts.outDir, name)
	}
	return filepath.Join(filepath.Dir(file), name)
}

func mergedOutputPath(firstFile string, opts options) string {
	if opts.outDir != "" {
		return filepath.Join(opts.outDir, "merged_findings.geojson")
	}
	return filepath.Join(filepath.Dir(firstFile), "merged_findings.geojson")
}

// expandArgs resolves glob patterns so batches can be passed as quoted
// patterns on platforms where the shell does not expand them.
func expandArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			files = append(files, arg)
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}

func spinUntil(done <-chan struct{}, label string) {
	s := spin.New()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			fmt.Fprintf(os.Stderr, "\r%s done\n", label)
			return
		case <-ticker.C:
			fmt.Fprintf(os.Stderr, "\r%s %s", label, s.Next())
		}
	}
}

// summarize logs the batch outcome and picks the exit code: 0 clean, 1 when
// findings exist, 2 when any file could not be checked — including files
// skipped by cancellation. A file that was never checked is reported as
// such, never as clean.
func summarize(results []fileResult, logger *slog.Logger) int {
	var findings, failed, skipped int
	for _, res := range results {
		switch {
		case res.skipped:
			skipped++
			logger.Warn("file not checked: run cancelled", "file", res.file)
		case res.err != nil:
			failed++
			logger.Error("file could not be checked", "file", res.file, "err", res.err)
		case res.report == nil || len(res.report.Findings) == 0:
			logger.Info("no topological errors found", "file", res.file, "features", res.features)
		default:
			findings += len(res.report.Findings)
			logger.Warn("topology errors found",
				"file", res.file,
				"findings", len(res.report.Findings),
				"overlaps", len(res.report.ByKind(checkers.KindOverlap)),
				"containments", len(res.report.ByKind(checkers.KindContainment)),
				"gaps", len(res.report.ByKind(checkers.KindGap)),
				"warnings", len(res.report.Warnings),
			)
		}
	}
	logger.Info("batch complete", "files", len(results), "failed", failed, "skipped", skipped, "findings", findings)
	switch {
	case failed > 0 || skipped > 0:
		return 2
	case findings > 0:
		return 1
	default:
		return 0
	}
}
