// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the entry point for the shv command-line application.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	errtypes "github.com/stacklok/secrethive/pkg/errors"
	"github.com/stacklok/secrethive/pkg/logger"
	"github.com/stacklok/secrethive/pkg/manifest"
)

var rootCmd = &cobra.Command{
	Use:               "shv",
	DisableAutoGenTag: true,
	Short:             "SecretHive - Declarative secret reconciliation for Kubernetes",
	Long: `SecretHive (shv) keeps Kubernetes Secrets in sync with local files.

Secret sources declared in a manifest are materialized into their desired
contents, compared against what the cluster currently holds, and converged
with the smallest change that works: create when absent, full replace when
different, nothing when identical. The diff is computed locally, so a
dry run reports exactly what a real run would do.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			logger.Errorf("Error displaying help: %v", err)
		}
	},
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Initialize()
	},
}

// NewRootCmd creates a new root command for the shv CLI.
func NewRootCmd() *cobra.Command {
	// Add persistent flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	if err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the secret source manifest")
	err = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	if err != nil {
		logger.Errorf("Error binding config flag: %v", err)
	}
	err = viper.BindEnv("config", "SHV_CONFIG")
	if err != nil {
		logger.Errorf("Error binding config env var: %v", err)
	}

	// Flag parse failures make the invocation unusable, so they map to
	// the configuration exit code rather than a reconciliation failure.
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errtypes.NewConfigError(err.Error(), nil)
	})

	// Add subcommands
	rootCmd.AddCommand(newReconcileCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Silence printing the usage on error
	rootCmd.SilenceUsage = true

	return rootCmd
}

// resolveManifestPath returns the manifest location: the --config flag if
// set, then $SHV_CONFIG, then the default path under the XDG config
// directory.
func resolveManifestPath() (string, error) {
	if path := viper.GetString("config"); path != "" {
		return path, nil
	}
	return manifest.DefaultPath()
}
