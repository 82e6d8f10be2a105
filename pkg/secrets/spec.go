// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package secrets implements the reconciliation core: loading desired secret
// state from declared sources, diffing it against observed cluster state,
// and applying the minimal change needed to converge.
package secrets

import (
	"fmt"
	"os"

	errtypes "github.com/stacklok/secrethive/pkg/errors"
	"github.com/stacklok/secrethive/pkg/manifest"
)

// Entry is one key/value pair of a SecretSpec. Entries are ordered by first
// appearance in the backing file so output is deterministic.
type Entry struct {
	Key   string
	Value []byte
}

// SecretSpec is the desired materialized state of one secret, built
// deterministically from a source's backing file. Keys are unique.
type SecretSpec struct {
	// Name is the Secret object name, taken from the source name.
	Name string

	// SourceKind records which source kind produced this spec.
	SourceKind manifest.SourceKind

	// Entries holds the desired key/value pairs in first-seen order.
	Entries []Entry
}

// Data returns the entries as the map shape the Kubernetes API consumes.
func (s *SecretSpec) Data() map[string][]byte {
	data := make(map[string][]byte, len(s.Entries))
	for _, e := range s.Entries {
		data[e.Key] = e.Value
	}
	return data
}

// Keys returns the entry keys in first-seen order.
func (s *SecretSpec) Keys() []string {
	keys := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// LoadSpec reads and parses a source's backing file into a SecretSpec.
//
// For env-file sources the file is parsed as KEY=VALUE lines; for file
// sources the raw file contents become the value under the configured key.
// An unreadable path yields a read error, malformed env-file contents a
// parse error. On any failure no partial spec is returned.
func LoadSpec(src manifest.Source) (*SecretSpec, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, errtypes.NewReadError(
			fmt.Sprintf("failed to read source file %s", src.Path), err)
	}

	spec := &SecretSpec{Name: src.Name, SourceKind: src.Kind}

	switch src.Kind {
	case manifest.KindEnvFile:
		entries, err := parseEnvFile(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", src.Path, err)
		}
		spec.Entries = entries
	case manifest.KindFile:
		spec.Entries = []Entry{{Key: src.Key, Value: data}}
	default:
		return nil, errtypes.NewConfigError(
			fmt.Sprintf("source %q: unknown kind %q", src.Name, src.Kind), nil)
	}

	return spec, nil
}
