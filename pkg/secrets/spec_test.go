// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errtypes "github.com/stacklok/secrethive/pkg/errors"
	"github.com/stacklok/secrethive/pkg/manifest"
)

func writeSourceFile(t *testing.T, name string, contents []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, contents, 0o600))
	return path
}

func TestLoadSpecEnvFile(t *testing.T) {
	t.Parallel()

	path := writeSourceFile(t, "app.env", []byte("# app config\nDB_HOST=localhost\nDB_PORT=5432\n"))

	spec, err := LoadSpec(manifest.Source{
		Name: "app-env",
		Kind: manifest.KindEnvFile,
		Path: path,
	})
	require.NoError(t, err)

	assert.Equal(t, "app-env", spec.Name)
	assert.Equal(t, manifest.KindEnvFile, spec.SourceKind)
	assert.Equal(t, []string{"DB_HOST", "DB_PORT"}, spec.Keys())
	assert.Equal(t, map[string][]byte{
		"DB_HOST": []byte("localhost"),
		"DB_PORT": []byte("5432"),
	}, spec.Data())
}

func TestLoadSpecFile(t *testing.T) {
	t.Parallel()

	// File contents are carried byte-for-byte, newlines and all.
	contents := []byte("{\n  \"type\": \"service_account\",\n  \"project_id\": \"demo\"\n}\n")
	path := writeSourceFile(t, "firebase.json", contents)

	spec, err := LoadSpec(manifest.Source{
		Name: "firebase-credentials",
		Kind: manifest.KindFile,
		Path: path,
		Key:  "serviceAccount.json",
	})
	require.NoError(t, err)

	assert.Equal(t, "firebase-credentials", spec.Name)
	assert.Equal(t, manifest.KindFile, spec.SourceKind)
	require.Len(t, spec.Entries, 1)
	assert.Equal(t, "serviceAccount.json", spec.Entries[0].Key)
	assert.Equal(t, contents, spec.Entries[0].Value)
}

func TestLoadSpecMissingFile(t *testing.T) {
	t.Parallel()

	spec, err := LoadSpec(manifest.Source{
		Name: "app-env",
		Kind: manifest.KindEnvFile,
		Path: filepath.Join(t.TempDir(), "does-not-exist.env"),
	})
	require.Error(t, err)
	assert.True(t, errtypes.IsRead(err), "expected a read error, got %v", err)
	assert.Nil(t, spec)
}

func TestLoadSpecMalformedEnvFile(t *testing.T) {
	t.Parallel()

	path := writeSourceFile(t, "bad.env", []byte("DB_HOST=localhost\nFOOBAR\n"))

	spec, err := LoadSpec(manifest.Source{
		Name: "app-env",
		Kind: manifest.KindEnvFile,
		Path: path,
	})
	require.Error(t, err)
	assert.True(t, errtypes.IsParse(err), "expected a parse error, got %v", err)
	assert.Contains(t, err.Error(), "line 2")
	// The valid line before the malformed one must not leak out.
	assert.Nil(t, spec)
}

func TestLoadSpecUnknownKind(t *testing.T) {
	t.Parallel()

	path := writeSourceFile(t, "app.env", []byte("A=1\n"))

	spec, err := LoadSpec(manifest.Source{
		Name: "app-env",
		Kind: manifest.SourceKind("tarball"),
		Path: path,
	})
	require.Error(t, err)
	assert.True(t, errtypes.IsConfig(err), "expected a config error, got %v", err)
	assert.Nil(t, spec)
}

func TestSecretSpecDataDoesNotAliasOrder(t *testing.T) {
	t.Parallel()

	spec := &SecretSpec{
		Name: "app-env",
		Entries: []Entry{
			{Key: "B", Value: []byte("2")},
			{Key: "A", Value: []byte("1")},
		},
	}

	// Keys preserves declaration order while Data is an unordered map view.
	assert.Equal(t, []string{"B", "A"}, spec.Keys())
	assert.Equal(t, map[string][]byte{"A": []byte("1"), "B": []byte("2")}, spec.Data())
}
