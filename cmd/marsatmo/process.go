package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thmotdod1e/mars-atmo-analysis/internal/config"
	"github.com/thmotdod1e/mars-atmo-analysis/internal/database"
	applog "github.com/thmotdod1e/mars-atmo-analysis/internal/log"
	"github.com/thmotdod1e/mars-atmo-analysis/internal/model"
	"github.com/thmotdod1e/mars-atmo-analysis/internal/pipeline"
	"github.com/thmotdod1e/mars-atmo-analysis/internal/report"
)

// NewProcessCmd creates the process command.
func NewProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [spectrum.csv ...]",
		Short: "Process spectrometer files for noctilucent cloud signatures",
		Long: `Process loads each spectrometer CSV, checks the absorption sample nearest
the water-ice band against the calibrated threshold, and estimates the
effective particle radius for detected clouds.

A failure on one file never aborts the batch: the error is recorded in
that file's report entry and the remaining files still run. Every run is
saved to the results database for later comparison with 'marsatmo compare'.

Input files are two-column CSVs with one header row:
  wavelength,absorption
  1.50,0.012
  1.65,0.073
  ...

Examples:
  # Process a single spectrum
  marsatmo process orbit_0042.csv

  # Process several spectra concurrently
  marsatmo process orbit_*.csv

  # Read input paths from a manifest file (one path per line)
  marsatmo process --manifest sols_180_200.txt

  # Recalibrate the detection threshold for this run
  marsatmo process --threshold 0.08 orbit_0042.csv

  # Output a JSON report to a file
  marsatmo process --json -o report.json orbit_0042.csv

Configuration file (.marsatmo) example:
  defaults:
    threshold: 0.06
  datasets:
    "crism_*.csv":
      slope: 11.9
      offset: 0.35`,
		Args: cobra.ArbitraryArgs,
		RunE: runProcessCmd,
	}

	// Input flags
	cmd.Flags().StringP("manifest", "M", "",
		"Text file listing one spectrum path per line (appended after positional paths)")

	// Calibration flags
	cmd.Flags().Float64P("ice-band", "w", config.DefaultIceBand,
		"Water-ice band wavelength to inspect, in µm")
	cmd.Flags().Float64P("threshold", "t", config.DefaultThreshold,
		"Absorption threshold the ice-band sample must strictly exceed")
	cmd.Flags().Float64("short-ref", config.DefaultShortReference,
		"Short reference wavelength for radius estimation, in µm")
	cmd.Flags().Float64("long-ref", config.DefaultLongReference,
		"Long reference wavelength for radius estimation, in µm")
	cmd.Flags().Float64P("slope", "k", config.DefaultRadiusSlope,
		"Empirical radius-fit slope k, in µm")
	cmd.Flags().Float64("offset", config.DefaultRadiusOffset,
		"Empirical radius-fit offset c, in µm")

	// Processing behavior flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of files processed concurrently")
	cmd.Flags().DurationP("timeout", "T", config.DefaultFileTimeout,
		"Per-file processing deadline")
	cmd.Flags().Int("max-samples", config.DefaultMaxSamples,
		"Maximum number of samples read from one file")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .marsatmo in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runProcessCmd executes the process command.
func runProcessCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)
	cfg.Verbose = verbose

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runProcess(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.IceBand, err = cmd.Flags().GetFloat64("ice-band")
	if err != nil {
		return nil, err
	}

	cfg.Threshold, err = cmd.Flags().GetFloat64("threshold")
	if err != nil {
		return nil, err
	}

	cfg.ShortReference, err = cmd.Flags().GetFloat64("short-ref")
	if err != nil {
		return nil, err
	}

	cfg.LongReference, err = cmd.Flags().GetFloat64("long-ref")
	if err != nil {
		return nil, err
	}

	cfg.RadiusSlope, err = cmd.Flags().GetFloat64("slope")
	if err != nil {
		return nil, err
	}

	cfg.RadiusOffset, err = cmd.Flags().GetFloat64("offset")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.FileTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxSamples, err = cmd.Flags().GetInt("max-samples")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load dataset calibrations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Calibrations, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.Calibrations = &config.File{
			Datasets: make(map[string]config.Calibration),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Always save to database using XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	// Positional arguments first, then manifest paths in manifest order
	cfg.Targets = args

	cfg.ManifestPath, err = cmd.Flags().GetString("manifest")
	if err != nil {
		return nil, err
	}
	if cfg.ManifestPath != "" {
		manifestTargets, err := readManifest(cfg.ManifestPath)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, manifestTargets...)
	}

	return cfg, nil
}

// readManifest reads spectrum paths from a manifest file, one per line.
// Blank lines and lines starting with # are skipped.
func readManifest(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided manifest path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	return targets, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// Attribute values are capped so debug-logging a full spectrum cannot
// flood the terminal.
func setupLogger(verbose bool) *slog.Logger {
	return applog.NewLogger(os.Stderr, verbose)
}

// runProcess executes the batch.
func runProcess(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting processing",
		"targets", len(cfg.Targets),
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.RunDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	startTime := time.Now()

	// One pipeline per file so dataset calibration overrides apply
	// without leaking state between files. A batch size of 1 makes the
	// errgroup process files strictly in input order.
	bp := pipeline.NewBatchProcessor(
		func(sourceFile string) *pipeline.Pipeline {
			return pipeline.DefaultPipeline(
				pipeline.WithPipelineCalibration(cfg.EffectiveCalibration(sourceFile)),
				pipeline.WithPipelineMaxSamples(cfg.MaxSamples),
				pipeline.WithPipelineLogger(logger),
			)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithFileTimeout(cfg.FileTimeout),
		pipeline.WithBatchLogger(logger),
	)

	reports, err := bp.ProcessBatch(ctx, cfg.Targets)
	if err != nil {
		// Per-file failures are recorded in the reports; this is only hit
		// when the whole batch was cancelled. Output what we have anyway.
		logger.Warn("batch interrupted", "error", err)
	}

	elapsed := time.Since(startTime)
	logger.Info("processing complete",
		"files", len(reports),
		"elapsed", elapsed.Round(time.Millisecond),
	)

	// Persist every report, including error entries, so compare can track
	// flaky exports across runs.
	for _, r := range reports {
		if saveErr := saveReport(ctx, db, r, logger); saveErr != nil {
			logger.Error("failed to save report", "source", r.SourceFile, "error", saveErr)
		}
	}

	if outErr := outputReports(cfg, reports); outErr != nil {
		return outErr
	}

	return err
}

// outputReports writes the batch report in the requested format.
func outputReports(cfg *config.Config, reports []*model.SpectrumReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.WriteBatch(reports)
	return err
}

// saveReport saves the report to the database if enabled.
// If db is nil, this function is a no-op.
func saveReport(ctx context.Context, db *database.RunDB, r *model.SpectrumReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveReport(ctx, r)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	logger.Info("report saved to database", "source", r.SourceFile, "id", id)
	return nil
}
