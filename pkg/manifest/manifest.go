// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package manifest defines the declarative manifest secrethive reconciles
// from, and the logic required to load and validate it.
//
// A manifest is an ordered list of secret sources. Order is preserved all
// the way through reconciliation so logs and reports are deterministic.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// SourceKind identifies how a source's backing file is turned into secret data.
type SourceKind string

const (
	// KindEnvFile parses the backing file as KEY=VALUE lines.
	KindEnvFile SourceKind = "env-file"

	// KindFile stores the entire backing file under a single key.
	KindFile SourceKind = "file"

	// kindFileAlias is accepted in manifests as a synonym for KindFile.
	kindFileAlias SourceKind = "single-file"
)

// Source declares one secret to manage.
type Source struct {
	// Name is the unique identifier of the source and becomes the name
	// of the Secret object in the cluster.
	Name string `yaml:"name"`

	// Kind selects how Path is materialized into secret data.
	Kind SourceKind `yaml:"kind"`

	// Path is the local file backing this source.
	Path string `yaml:"path"`

	// Key is the data key the file contents are stored under.
	// Required for KindFile, forbidden for KindEnvFile.
	Key string `yaml:"key,omitempty"`
}

// Manifest is the root of the declarative configuration.
type Manifest struct {
	// Namespace is the cluster namespace the secrets live in.
	// Optional; the CLI flag and automatic detection take over when empty.
	Namespace string `yaml:"namespace,omitempty"`

	// Sources is the ordered list of secrets to reconcile.
	Sources []Source `yaml:"sources"`
}

// DefaultPath returns the default manifest location under the XDG config
// directory, creating parent directories as needed.
func DefaultPath() (string, error) {
	return xdg.ConfigFile("secrethive/manifest.yaml")
}

// YAMLLoader loads a Manifest from a YAML file.
type YAMLLoader struct {
	path string
}

// NewYAMLLoader creates a loader for the manifest at the given path.
func NewYAMLLoader(path string) *YAMLLoader {
	return &YAMLLoader{path: path}
}

// Load reads and decodes the manifest. Unknown fields are rejected so typos
// in a manifest surface as errors instead of being silently ignored.
// Relative source paths are resolved against the manifest's directory.
func (l *YAMLLoader) Load() (*Manifest, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file %s: %w", l.path, err)
	}

	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse manifest file %s: %w", l.path, err)
	}

	baseDir := filepath.Dir(l.path)
	for i := range m.Sources {
		if m.Sources[i].Kind == kindFileAlias {
			m.Sources[i].Kind = KindFile
		}
		if m.Sources[i].Path != "" && !filepath.IsAbs(m.Sources[i].Path) {
			m.Sources[i].Path = filepath.Join(baseDir, m.Sources[i].Path)
		}
	}

	return &m, nil
}
