// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errtypes "github.com/stacklok/secrethive/pkg/errors"
	"github.com/stacklok/secrethive/pkg/manifest"
	"github.com/stacklok/secrethive/pkg/secrets"
)

// writeManifest writes a manifest file into a temp dir and returns its path.
func writeManifest(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadManifestFile(t *testing.T) {
	t.Parallel()

	t.Run("valid manifest", func(t *testing.T) {
		t.Parallel()

		path := writeManifest(t, `namespace: staging
sources:
  - name: app-env
    kind: env-file
    path: .env
  - name: firebase-credentials
    kind: file
    path: firebase-service-account.json
    key: firebase-service-account.json
`)

		m, err := loadManifestFile(path)
		require.NoError(t, err)
		assert.Equal(t, "staging", m.Namespace)
		require.Len(t, m.Sources, 2)
		assert.Equal(t, "app-env", m.Sources[0].Name)
		// Relative source paths are anchored at the manifest's directory.
		assert.Equal(t, filepath.Join(filepath.Dir(path), ".env"), m.Sources[0].Path)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := loadManifestFile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errtypes.IsConfig(err))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := writeManifest(t, "sources: [\n")
		_, err := loadManifestFile(path)
		require.Error(t, err)
		assert.True(t, errtypes.IsConfig(err))
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		t.Parallel()

		path := writeManifest(t, `sourcez:
  - name: app-env
`)
		_, err := loadManifestFile(path)
		require.Error(t, err)
		assert.True(t, errtypes.IsConfig(err))
	})

	t.Run("zero sources", func(t *testing.T) {
		t.Parallel()

		path := writeManifest(t, "sources: []\n")
		_, err := loadManifestFile(path)
		require.Error(t, err)
		assert.True(t, errtypes.IsConfig(err))
		assert.Contains(t, err.Error(), "at least one source is required")
	})

	t.Run("duplicate source names", func(t *testing.T) {
		t.Parallel()

		path := writeManifest(t, `sources:
  - name: app-env
    kind: env-file
    path: one.env
  - name: app-env
    kind: env-file
    path: two.env
`)
		_, err := loadManifestFile(path)
		require.Error(t, err)
		assert.True(t, errtypes.IsConfig(err))
		assert.Contains(t, err.Error(), "duplicate source name: app-env")
	})
}

func TestManifestFromFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flags   *reconcileFlags
		wantErr string
	}{
		{
			name:  "env-file source",
			flags: &reconcileFlags{name: "app-env", kind: "env-file", path: ".env"},
		},
		{
			name:  "file source with key",
			flags: &reconcileFlags{name: "tls-cert", kind: "file", path: "tls.crt", key: "tls.crt"},
		},
		{
			name:    "file source without key",
			flags:   &reconcileFlags{name: "tls-cert", kind: "file", path: "tls.crt"},
			wantErr: "key is required",
		},
		{
			name:    "unknown kind",
			flags:   &reconcileFlags{name: "app-env", kind: "tarball", path: ".env"},
			wantErr: "kind must be one of",
		},
		{
			name:    "invalid source name",
			flags:   &reconcileFlags{name: "App_Env", kind: "env-file", path: ".env"},
			wantErr: "DNS-1123",
		},
		{
			name:    "missing path",
			flags:   &reconcileFlags{name: "app-env", kind: "env-file"},
			wantErr: "path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := manifestFromFlags(tt.flags)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errtypes.IsConfig(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Len(t, m.Sources, 1)
			assert.Equal(t, tt.flags.name, m.Sources[0].Name)
			assert.Equal(t, manifest.SourceKind(tt.flags.kind), m.Sources[0].Kind)
		})
	}
}

func TestRunError(t *testing.T) {
	t.Parallel()

	t.Run("converged run", func(t *testing.T) {
		t.Parallel()

		err := runError(&secrets.RunResult{
			Results: []secrets.ReconcileResult{
				{Source: "a", Outcome: secrets.OutcomeCreated},
				{Source: "b", Outcome: secrets.OutcomeUpdated},
				{Source: "c", Outcome: secrets.OutcomeNoChange},
			},
		})
		assert.NoError(t, err)
	})

	t.Run("failed sources", func(t *testing.T) {
		t.Parallel()

		err := runError(&secrets.RunResult{
			Results: []secrets.ReconcileResult{
				{Source: "a", Outcome: secrets.OutcomeFailed},
				{Source: "b", Outcome: secrets.OutcomeNoChange},
				{Source: "c", Outcome: secrets.OutcomeFailed},
			},
		})
		require.Error(t, err)
		assert.Equal(t, "2 of 3 sources failed to reconcile", err.Error())
	})

	t.Run("cancelled run", func(t *testing.T) {
		t.Parallel()

		err := runError(&secrets.RunResult{
			Results: []secrets.ReconcileResult{
				{Source: "a", Outcome: secrets.OutcomeNoChange},
				{Source: "b", Outcome: secrets.OutcomeSkipped},
			},
		})
		require.Error(t, err)
		assert.Equal(t, "run cancelled with 1 of 2 sources unprocessed", err.Error())
	})

	t.Run("failures win over skips", func(t *testing.T) {
		t.Parallel()

		err := runError(&secrets.RunResult{
			Results: []secrets.ReconcileResult{
				{Source: "a", Outcome: secrets.OutcomeFailed},
				{Source: "b", Outcome: secrets.OutcomeSkipped},
			},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to reconcile")
	})
}

func TestSourcePaths(t *testing.T) {
	t.Parallel()

	m := &manifest.Manifest{
		Sources: []manifest.Source{
			{Name: "a", Kind: manifest.KindEnvFile, Path: "/etc/app/.env"},
			{Name: "b", Kind: manifest.KindFile, Path: "/etc/app/cert.pem", Key: "cert.pem"},
		},
	}
	assert.Equal(t, []string{"/etc/app/.env", "/etc/app/cert.pem"}, sourcePaths(m))
}
