// SPDX-License-Identifier: MIT

// Package main provides the optkit CLI: equilibration, norm estimation and
// an Anderson acceleration demo over YAML problem files.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version   = "0.1.0"
	commit    = "dev"
	buildTime = "unknown" // Set via ldflags: -X main.buildTime=$(date +%Y%m%d-%H%M%S)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "optkit",
		Short: "optkit - numerical building blocks for first-order solvers",
		Long: `optkit runs the library's preconditioning and acceleration routines on
problem files written in YAML.

Commands:
  • equil     regularized Sinkhorn-Knopp row/column scaling
  • normest   power-iteration estimate of the spectral norm
  • anderson  plain vs Anderson-accelerated fixed-point iteration`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", getEnvBool("OPTKIT_VERBOSE", false), "Log debug events to stderr")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "optkit v%s (%s) built %s\n", version, commit, buildTime)
		},
	})
	rootCmd.AddCommand(newEquilCmd(), newNormestCmd(), newAndersonCmd())

	return rootCmd
}

// newLogger builds the console logger shared by a command run.
// Debug events are shown only with --verbose.
func newLogger(cmd *cobra.Command) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true, TimeFormat: time.TimeOnly}

	return zerolog.New(out).Level(level).With().Timestamp().Str("cmd", cmd.Name()).Logger()
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}

	return def
}
