// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"

	errtypes "github.com/stacklok/secrethive/pkg/errors"
)

// ErrInvalidManifest is the sentinel wrapped by all manifest validation failures.
var ErrInvalidManifest = errors.New("invalid manifest")

// DefaultValidator implements manifest validation.
type DefaultValidator struct{}

// NewValidator creates a new manifest validator.
func NewValidator() *DefaultValidator {
	return &DefaultValidator{}
}

// Validate performs full validation of the manifest: structural integrity
// plus every source declaration. Used by the validate command and for
// flag-built manifests, where any problem makes the invocation unusable.
func (v *DefaultValidator) Validate(m *Manifest) error {
	if err := v.ValidateStructure(m); err != nil {
		return err
	}

	var findings []string
	for i := range m.Sources {
		if err := v.ValidateSource(&m.Sources[i]); err != nil {
			findings = append(findings, err.Error())
		}
	}

	if len(findings) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidManifest, strings.Join(findings, "\n  - "))
	}

	return nil
}

// ValidateStructure checks manifest-level integrity: the manifest must
// declare at least one source, and source names must be present and unique.
// A manifest failing these checks cannot be reconciled at all; per-source
// field problems are left to ValidateSource so one bad declaration does
// not block its siblings.
func (*DefaultValidator) ValidateStructure(m *Manifest) error {
	if m == nil {
		return fmt.Errorf("%w: manifest is nil", ErrInvalidManifest)
	}

	if len(m.Sources) == 0 {
		return fmt.Errorf("%w: at least one source is required", ErrInvalidManifest)
	}

	var findings []string
	seen := make(map[string]bool, len(m.Sources))
	for i, src := range m.Sources {
		if src.Name == "" {
			findings = append(findings, fmt.Sprintf("sources[%d].name is required", i))
			continue
		}
		if seen[src.Name] {
			findings = append(findings, fmt.Sprintf("duplicate source name: %s", src.Name))
		}
		seen[src.Name] = true
	}

	if len(findings) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidManifest, strings.Join(findings, "\n  - "))
	}

	return nil
}

// ValidateSource checks a single source declaration. Failures are config
// errors, so the reconcile loop can record them against that source alone.
func (*DefaultValidator) ValidateSource(src *Source) error {
	if errs := validation.IsDNS1123Subdomain(src.Name); len(errs) > 0 {
		return errtypes.NewConfigError(
			fmt.Sprintf("source %q: name must be a valid DNS-1123 subdomain: %s", src.Name, strings.Join(errs, "; ")), nil)
	}

	switch src.Kind {
	case KindEnvFile:
		if src.Key != "" {
			return errtypes.NewConfigError(
				fmt.Sprintf("source %q: key must not be set for kind %s", src.Name, KindEnvFile), nil)
		}
	case KindFile:
		if src.Key == "" {
			return errtypes.NewConfigError(
				fmt.Sprintf("source %q: key is required for kind %s", src.Name, KindFile), nil)
		}
		if errs := validation.IsConfigMapKey(src.Key); len(errs) > 0 {
			return errtypes.NewConfigError(
				fmt.Sprintf("source %q: invalid key %q: %s", src.Name, src.Key, strings.Join(errs, "; ")), nil)
		}
	default:
		return errtypes.NewConfigError(
			fmt.Sprintf("source %q: kind must be one of: %s, %s", src.Name, KindEnvFile, KindFile), nil)
	}

	if src.Path == "" {
		return errtypes.NewConfigError(
			fmt.Sprintf("source %q: path is required", src.Name), nil)
	}

	return nil
}
