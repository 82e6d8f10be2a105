// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package secrets

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"

	errtypes "github.com/stacklok/secrethive/pkg/errors"
)

// parseEnvFile parses KEY=VALUE lines into ordered entries.
//
// Blank lines and lines whose trimmed form begins with '#' are skipped.
// A trailing '\r' is stripped from each line so CRLF-authored files parse
// cleanly. Values are taken verbatim after the first '=' (no unquoting);
// "KEY=" declares an empty value. Duplicate keys take the last value while
// keeping the position of their first appearance. A line with no '=', an
// empty key, or a key outside the Secret data-key charset fails the whole
// parse; no partial result is returned.
func parseEnvFile(data []byte) ([]Entry, error) {
	var entries []Entry
	index := make(map[string]int)

	for n, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, errtypes.NewParseError(
				fmt.Sprintf("line %d: not in KEY=VALUE format: %q", n+1, line), nil)
		}
		key, value := parts[0], parts[1]
		if key == "" {
			return nil, errtypes.NewParseError(
				fmt.Sprintf("line %d: empty key", n+1), nil)
		}
		if errs := validation.IsConfigMapKey(key); len(errs) > 0 {
			return nil, errtypes.NewParseError(
				fmt.Sprintf("line %d: invalid key %q: %s", n+1, key, strings.Join(errs, "; ")), nil)
		}

		if i, ok := index[key]; ok {
			entries[i].Value = []byte(value)
			continue
		}
		index[key] = len(entries)
		entries = append(entries, Entry{Key: key, Value: []byte(value)})
	}

	return entries, nil
}
