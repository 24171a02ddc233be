package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thmotdod1e/mars-atmo-analysis/internal/config"
	"github.com/thmotdod1e/mars-atmo-analysis/internal/database"
	"github.com/thmotdod1e/mars-atmo-analysis/internal/model"
)

// Constants for detection change direction.
const (
	detectionAppeared  = "cloud appeared"
	detectionCleared   = "cloud cleared"
	detectionUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares processing results with historical data stored in
// the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [spectrum.csv]",
		Short: "Compare processing results with historical runs",
		Long: `Compare displays differences between the current and previous run of a
spectrometer file.

This command retrieves historical run data from the database and shows:
- Detection flips (cloud appeared or cleared between runs)
- Particle radius drift between runs
- Changes in the loaded sample count

The comparison requires at least two runs in the database for the
specified source file. Use 'marsatmo process' to process files and save
results.

Examples:
  # Compare latest two runs for a file
  marsatmo compare orbit_0042.csv

  # List all run history for a file
  marsatmo compare --list orbit_0042.csv

  # Compare with a specific historical run by ID
  marsatmo compare --with-run-id 5 orbit_0042.csv

  # Compare with the oldest run since a specific date
  marsatmo compare --since "2026-01-01" orbit_0042.csv

  # Output comparison in JSON format
  marsatmo compare --json orbit_0042.csv

  # List all processed source files in the database
  marsatmo compare --list-sources`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List run history for the specified source file")
	cmd.Flags().BoolP("list-sources", "L", false,
		"List all processed source files in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare with a specific run by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first run after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-sources flag first (requires database but no source file)
	listSources, err := cmd.Flags().GetBool("list-sources")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --list-sources)
	var sourceFile string
	if !listSources {
		if len(args) == 0 {
			return errors.New("source file is required (use --list-sources to see available files)")
		}
		sourceFile = args[0]
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listSources {
		return listProcessedSources(ctx, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listRunHistory(ctx, db, sourceFile)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	return runComparison(ctx, db, sourceFile, withRunID, sinceDate, jsonOutput, markdownOutput)
}

// listProcessedSources lists all source files with runs in the database.
func listProcessedSources(ctx context.Context, db *database.RunDB) error {
	sources, err := db.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		fmt.Println("No processed files found in the database.")
		fmt.Println("\nUse 'marsatmo process <spectrum.csv>' to process a file.")
		return nil
	}

	fmt.Printf("Processed files (%d):\n\n", len(sources))
	for _, source := range sources {
		fmt.Printf("  • %s\n", source)
	}
	fmt.Println("\nUse 'marsatmo compare --list <file>' to see run history for a file.")

	return nil
}

// listRunHistory lists all stored runs for a source file.
func listRunHistory(ctx context.Context, db *database.RunDB, sourceFile string) error {
	runs, err := db.GetRunHistoryWithMetadata(ctx, sourceFile)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Printf("No run history found for %s\n", sourceFile)
		fmt.Println("\nUse 'marsatmo process' to process this file.")
		return nil
	}

	fmt.Printf("Run history for %s (%d runs):\n\n", sourceFile, len(runs))
	fmt.Printf("  %-6s  %-20s  %-7s  %s\n", "ID", "Date", "Result", "Radius")
	fmt.Println("  " + strings.Repeat("-", 55))

	for _, meta := range runs {
		fmt.Printf("  %-6d  %-20s  %-7s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.Status,
			formatRadiusColumn(meta),
		)
	}

	fmt.Println("\nUse 'marsatmo compare <file>' to compare the latest two runs.")
	fmt.Println("Use 'marsatmo compare --with-run-id <id> <file>' to compare with a specific run.")

	return nil
}

// formatRadiusColumn formats the radius column for history listings.
func formatRadiusColumn(meta database.RunMetadata) string {
	if meta.RadiusUndefined {
		return "undefined"
	}
	if meta.HasRadius {
		return fmt.Sprintf("%.2f µm", meta.Radius)
	}
	return "-"
}

// runComparison performs the actual comparison between stored runs.
func runComparison(ctx context.Context, db *database.RunDB, sourceFile string, withRunID int64, sinceDate string, jsonOutput, markdownOutput bool) error {
	runs, err := db.GetRunHistory(ctx, sourceFile)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		return fmt.Errorf("no run history found for %s", sourceFile)
	}

	if len(runs) < 2 && withRunID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
	}

	// Latest run is always the current one
	currentRun := runs[0]
	var previousRun *model.SpectrumReport

	if withRunID > 0 {
		previousRun, err = db.GetReportByID(ctx, withRunID)
		if err != nil {
			return fmt.Errorf("failed to get run with ID %d: %w", withRunID, err)
		}
		if previousRun == nil {
			return fmt.Errorf("run with ID %d not found", withRunID)
		}
		// Validate that the run belongs to the same source file
		if previousRun.SourceFile != sourceFile {
			return fmt.Errorf("run ID %d belongs to %s, not %s", withRunID, previousRun.SourceFile, sourceFile)
		}
	} else if sinceDate != "" {
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Runs are sorted newest first, so iterate in reverse to find the
		// oldest run at or after the date.
		for i := len(runs) - 1; i >= 0; i-- {
			r := runs[i]
			if r.DateProcessed.After(parsedDate) || r.DateProcessed.Equal(parsedDate) {
				previousRun = r
				break
			}
		}
		if previousRun == nil {
			return fmt.Errorf("no runs found since %s", sinceDate)
		}
		if previousRun == currentRun {
			return fmt.Errorf("only one run found since %s; at least 2 runs are required for comparison", sinceDate)
		}
	} else {
		// Default: compare with the previous run
		previousRun = runs[1]
	}

	comparison := compareRuns(previousRun, currentRun)

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two runs of one file.
type ComparisonResult struct {
	// SourceFile is the spectrometer file the runs processed.
	SourceFile string `json:"source_file"`

	// PreviousRun contains the summary of the older run.
	PreviousRun RunSummary `json:"previous_run"`

	// CurrentRun contains the summary of the newer run.
	CurrentRun RunSummary `json:"current_run"`

	// DetectionChange is "cloud appeared", "cloud cleared", or "unchanged".
	DetectionChange string `json:"detection_change"`

	// RadiusDelta is current minus previous radius in µm.
	// Nil when either run lacks a defined radius estimate.
	RadiusDelta *float64 `json:"radius_delta_um,omitempty"` //nolint:tagliatelle // unit suffix is intentional

	// SampleCountDelta is the change in loaded sample count.
	SampleCountDelta int `json:"sample_count_delta"`
}

// RunSummary contains the comparison-relevant fields of one stored run.
type RunSummary struct {
	// DateProcessed is when the run happened.
	DateProcessed time.Time `json:"date_processed"`

	// Status is the run outcome: error, cloud, or clear.
	Status string `json:"status"`

	// Detected is true when a water-ice signature was found.
	Detected bool `json:"detected"`

	// Radius is the estimated particle radius in µm, nil when no defined
	// estimate exists (clear spectrum, error, or undefined sentinel).
	Radius *float64 `json:"radius_um,omitempty"` //nolint:tagliatelle // unit suffix is intentional

	// RadiusUndefined is true when the run hit the zero-denominator sentinel.
	RadiusUndefined bool `json:"radius_undefined,omitempty"`

	// SampleCount is the number of samples loaded in this run.
	SampleCount int `json:"sample_count"`
}

// summarizeRun extracts the comparison-relevant fields of a report.
func summarizeRun(r *model.SpectrumReport) RunSummary {
	summary := RunSummary{
		DateProcessed: r.DateProcessed,
		Status:        r.Status(),
		Detected:      r.CloudDetected(),
		SampleCount:   r.SampleCount,
	}

	if r.Radius != nil {
		if r.Radius.Undefined {
			summary.RadiusUndefined = true
		} else {
			radius := r.Radius.Radius
			summary.Radius = &radius
		}
	}

	return summary
}

// compareRuns compares two runs of the same file.
func compareRuns(previous, current *model.SpectrumReport) *ComparisonResult {
	result := &ComparisonResult{
		SourceFile:  current.SourceFile,
		PreviousRun: summarizeRun(previous),
		CurrentRun:  summarizeRun(current),
	}

	switch {
	case result.CurrentRun.Detected && !result.PreviousRun.Detected:
		result.DetectionChange = detectionAppeared
	case !result.CurrentRun.Detected && result.PreviousRun.Detected:
		result.DetectionChange = detectionCleared
	default:
		result.DetectionChange = detectionUnchanged
	}

	if result.PreviousRun.Radius != nil && result.CurrentRun.Radius != nil {
		delta := *result.CurrentRun.Radius - *result.PreviousRun.Radius
		result.RadiusDelta = &delta
	}

	result.SampleCountDelta = result.CurrentRun.SampleCount - result.PreviousRun.SampleCount

	return result
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Run Comparison: %s\n\n", result.SourceFile)

	fmt.Println("## Summary")
	fmt.Printf("\n**Detection:** %s\n\n", result.DetectionChange)

	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.PreviousRun.DateProcessed.Format("2006-01-02 15:04"),
		result.CurrentRun.DateProcessed.Format("2006-01-02 15:04"))
	fmt.Printf("| Result | %s | %s | %s |\n",
		result.PreviousRun.Status,
		result.CurrentRun.Status,
		result.DetectionChange)
	fmt.Printf("| Radius | %s | %s | %s |\n",
		formatRadiusSummary(result.PreviousRun),
		formatRadiusSummary(result.CurrentRun),
		formatRadiusDelta(result.RadiusDelta))
	fmt.Printf("| Samples | %d | %d | %s |\n",
		result.PreviousRun.SampleCount,
		result.CurrentRun.SampleCount,
		formatDelta(result.SampleCountDelta))

	if result.RadiusDelta != nil && math.Abs(*result.RadiusDelta) > 0 {
		fmt.Printf("\n*Radius drifted by %.2f µm between runs.*\n", *result.RadiusDelta)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable
// text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Run Comparison: %s\n", result.SourceFile)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nDetection: %s\n", result.DetectionChange)

	fmt.Printf("\nPrevious run: %s\n", result.PreviousRun.DateProcessed.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current run:  %s\n", result.CurrentRun.DateProcessed.Format("2006-01-02 15:04:05"))

	fmt.Println("\nRun Summary:")
	fmt.Printf("  %-10s  %-14s  %-14s  %-10s\n", "Metric", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 54))
	fmt.Printf("  %-10s  %-14s  %-14s  %-10s\n", "Result",
		result.PreviousRun.Status, result.CurrentRun.Status, result.DetectionChange)
	fmt.Printf("  %-10s  %-14s  %-14s  %-10s\n", "Radius",
		formatRadiusSummary(result.PreviousRun),
		formatRadiusSummary(result.CurrentRun),
		formatRadiusDelta(result.RadiusDelta))
	fmt.Printf("  %-10s  %-14d  %-14d  %-10s\n", "Samples",
		result.PreviousRun.SampleCount,
		result.CurrentRun.SampleCount,
		formatDelta(result.SampleCountDelta))

	return nil
}

// formatRadiusSummary formats one run's radius for display.
func formatRadiusSummary(summary RunSummary) string {
	if summary.RadiusUndefined {
		return "undefined"
	}
	if summary.Radius != nil {
		return fmt.Sprintf("%.2f µm", *summary.Radius)
	}
	return "-"
}

// formatRadiusDelta formats a radius change with an explicit sign.
func formatRadiusDelta(delta *float64) string {
	if delta == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f µm", *delta)
}

// formatDelta formats an integer change with an explicit sign.
func formatDelta(delta int) string {
	if delta == 0 {
		return "±0"
	}
	return fmt.Sprintf("%+d", delta)
}
