// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"sigs.k8s.io/yaml"

	errtypes "github.com/stacklok/secrethive/pkg/errors"
	"github.com/stacklok/secrethive/pkg/secrets"
)

// Output format constants
const (
	// FormatTable is the table output format
	FormatTable = "table"
	// FormatJSON is the JSON output format
	FormatJSON = "json"
	// FormatYAML is the YAML output format
	FormatYAML = "yaml"
)

// validateOutputFormat rejects unknown --output values before any
// reconciliation work happens.
func validateOutputFormat(format string) error {
	switch format {
	case FormatTable, FormatJSON, FormatYAML:
		return nil
	default:
		return errtypes.NewConfigError(
			fmt.Sprintf("invalid output format %q: must be one of: %s, %s, %s",
				format, FormatTable, FormatJSON, FormatYAML), nil)
	}
}

// renderRunResult writes the run report to w in the requested format.
func renderRunResult(w io.Writer, result *secrets.RunResult, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatYAML:
		return renderYAML(w, result)
	default:
		return renderTable(w, result)
	}
}

func renderJSON(w io.Writer, result *secrets.RunResult) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func renderYAML(w io.Writer, result *secrets.RunResult) error {
	out, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func renderTable(w io.Writer, result *secrets.RunResult) error {
	table := tablewriter.NewWriter(w)
	table.Options(
		tablewriter.WithHeader([]string{"Source", "Outcome", "Changed Keys", "Reason"}),
		tablewriter.WithRendition(
			tw.Rendition{
				Borders: tw.Border{
					Left:   tw.State(1),
					Top:    tw.State(1),
					Right:  tw.State(1),
					Bottom: tw.State(1),
				},
			},
		),
		tablewriter.WithAlignment(tw.MakeAlign(4, tw.AlignLeft)),
	)

	for _, res := range result.Results {
		if err := table.Append([]string{
			res.Source,
			string(res.Outcome),
			strings.Join(res.ChangedKeys, ", "),
			res.Reason,
		}); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if len(result.Pruned) > 0 {
		if _, err := fmt.Fprintf(w, "Pruned secrets: %s\n", strings.Join(result.Pruned, ", ")); err != nil {
			return err
		}
	}
	return nil
}
