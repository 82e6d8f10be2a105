// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"github.com/spf13/cobra"

	errtypes "github.com/stacklok/secrethive/pkg/errors"
	"github.com/stacklok/secrethive/pkg/logger"
)

// newValidateCmd creates the validate command for checking the manifest.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the secret source manifest",
		Long: `Validate the secret source manifest for syntax and declaration errors.

This command checks:
- YAML syntax validity
- At least one source is declared and source names are unique
- Source names are valid Secret object names
- Each source kind is known and carries the fields it requires

The cluster is never contacted; validation is purely local.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := resolveManifestPath()
			if err != nil {
				return errtypes.NewConfigError("failed to resolve manifest path", err)
			}

			logger.Infof("Validating manifest: %s", path)

			m, err := loadManifestFile(path)
			if err != nil {
				return err
			}

			logger.Infof("✓ Manifest is valid")
			if m.Namespace != "" {
				logger.Infof("  Namespace: %s", m.Namespace)
			}
			logger.Infof("  Sources: %d", len(m.Sources))
			for _, src := range m.Sources {
				logger.Infof("  - %s (%s): %s", src.Name, src.Kind, src.Path)
			}

			return nil
		},
	}
}
