// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package secrets

import (
	"bytes"
	"sort"
)

// Outcome classifies the result of reconciling one source.
type Outcome string

const (
	// OutcomeNoChange means observed state already matches desired state.
	OutcomeNoChange Outcome = "no-change"

	// OutcomeCreated means the secret was absent and will be (or was) created.
	OutcomeCreated Outcome = "created"

	// OutcomeUpdated means the secret exists but differs from desired state.
	OutcomeUpdated Outcome = "updated"

	// OutcomeFailed means the source could not be reconciled.
	OutcomeFailed Outcome = "failed"

	// OutcomeSkipped means the source was not processed because the run
	// was cancelled first.
	OutcomeSkipped Outcome = "skipped"
)

// RemoteSecretState is the currently observed state of a named secret in
// the cluster. It has the same key/value shape as a SecretSpec so the two
// compare directly; Absent marks a secret that does not exist.
type RemoteSecretState struct {
	Name   string
	Absent bool
	Data   map[string][]byte
}

// ReconcileResult is the outcome of reconciling a single source.
type ReconcileResult struct {
	// Source is the source (and Secret) name.
	Source string `json:"source"`

	// Outcome classifies what happened.
	Outcome Outcome `json:"outcome"`

	// ChangedKeys lists added, removed, or modified keys, sorted
	// lexicographically, when Outcome is OutcomeUpdated.
	ChangedKeys []string `json:"changed_keys,omitempty"`

	// Reason describes the failure when Outcome is OutcomeFailed or why
	// the source was not processed when Outcome is OutcomeSkipped.
	Reason string `json:"reason,omitempty"`

	// Err is the underlying error for failed outcomes.
	Err error `json:"-"`
}

// Diff compares desired state against observed state. It is a pure
// function: no cluster access, no side effects.
//
// An absent remote yields OutcomeCreated. A remote whose data matches the
// spec key-for-key and byte-for-byte yields OutcomeNoChange. Anything else
// yields OutcomeUpdated carrying every differing key name: keys only in
// the spec, keys only in the remote, and keys whose values differ.
func Diff(spec *SecretSpec, remote *RemoteSecretState) ReconcileResult {
	if remote == nil || remote.Absent {
		return ReconcileResult{Source: spec.Name, Outcome: OutcomeCreated}
	}

	var changed []string
	desired := make(map[string]bool, len(spec.Entries))
	for _, e := range spec.Entries {
		desired[e.Key] = true
		observed, ok := remote.Data[e.Key]
		if !ok || !bytes.Equal(observed, e.Value) {
			changed = append(changed, e.Key)
		}
	}
	for key := range remote.Data {
		if !desired[key] {
			changed = append(changed, key)
		}
	}

	if len(changed) == 0 {
		return ReconcileResult{Source: spec.Name, Outcome: OutcomeNoChange}
	}

	sort.Strings(changed)
	return ReconcileResult{Source: spec.Name, Outcome: OutcomeUpdated, ChangedKeys: changed}
}
