// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package labels provides utilities for managing the Kubernetes labels
// secrethive stamps on the Secrets it owns.
package labels

import (
	"fmt"
	"strings"
)

const (
	// LabelManagedBy is the label that indicates a Secret is managed by secrethive
	LabelManagedBy = "secrethive.stacklok.dev/managed-by"

	// LabelSourceKind is the label that records which source kind produced the Secret
	LabelSourceKind = "secrethive.stacklok.dev/source-kind"

	// LabelManagedByValue is the value for the LabelManagedBy label
	LabelManagedByValue = "secrethive"
)

// AddStandardLabels adds standard labels to a managed Secret
func AddStandardLabels(labels map[string]string, sourceKind string) {
	labels[LabelManagedBy] = LabelManagedByValue
	labels[LabelSourceKind] = sourceKind
}

// FormatManagedFilter formats a label selector matching secrethive-managed Secrets
func FormatManagedFilter() string {
	return fmt.Sprintf("%s=%s", LabelManagedBy, LabelManagedByValue)
}

// IsManagedSecret checks if a Secret is managed by secrethive
func IsManagedSecret(labels map[string]string) bool {
	value, ok := labels[LabelManagedBy]
	return ok && strings.ToLower(value) == LabelManagedByValue
}

// GetSourceKind gets the source kind from labels
func GetSourceKind(labels map[string]string) string {
	return labels[LabelSourceKind]
}
