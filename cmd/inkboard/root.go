// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/inkboard"
	"github.com/gogpu/inkboard/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "inkboard",
		Short: "Build visual content on dedicated loops and composite it on a host",
		Long: `inkboard - Build visual children on dedicated OS-thread loops.

Each child is constructed on a loop of its own and handed to a single host
loop that owns the scene. Settings come from flags and an optional TOML or
YAML file given with --config.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			inkboard.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().String("config", "", "Config file (.toml, .yaml or .yml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log loop lifecycle at debug level")
	root.PersistentFlags().String("otlp-endpoint", "", "Export traces to an OTLP/gRPC collector")

	root.AddCommand(newDemoCmd(), newProbeCmd(), newVersionCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads --config and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("otlp-endpoint") {
		cfg.OTLPEndpoint, _ = cmd.Flags().GetString("otlp-endpoint")
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the inkboard version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "inkboard %s\n", inkboard.Version)
		},
	}
}
