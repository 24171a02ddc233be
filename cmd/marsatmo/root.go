// Package main provides the entry point for the marsatmo CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for marsatmo.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marsatmo",
		Short: "Noctilucent cloud detection for Mars-orbiter spectrometer data",
		Long: `marsatmo processes Mars-orbiter spectrometer CSV exports.

For each input file it checks the absorption sample nearest the 1.65 µm
water-ice band against a calibrated threshold, and when a cloud is
detected it estimates the effective particle radius from the ratio of
absorption at 2.0 µm and 1.5 µm using an empirical linear fit.

All calibration constants can be overridden per run (flags) or per
dataset (.marsatmo config file).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewProcessCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
