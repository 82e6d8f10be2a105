// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package secrets

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stacklok/secrethive/pkg/logger"
	"github.com/stacklok/secrethive/pkg/manifest"
)

//go:generate mockgen -destination=mocks/mock_reconciler.go -package=mocks -source=reconciler.go ClusterClient

// ClusterClient is the cluster capability the reconciler consumes. The
// reconciliation core only ever fetches one secret's observed state and
// replaces one secret's full contents; listing and deleting managed
// secrets serve pruning. Implementations own auth, connection handling,
// and making ApplySecret safe to retry.
type ClusterClient interface {
	// GetSecret returns the observed state of the named secret. A secret
	// that does not exist is reported via RemoteSecretState.Absent, not
	// an error.
	GetSecret(ctx context.Context, name string) (*RemoteSecretState, error)

	// ApplySecret replaces the secret's full contents with the spec,
	// creating it if absent. Never a partial patch.
	ApplySecret(ctx context.Context, spec *SecretSpec) error

	// ListManagedSecrets returns the names of secrets carrying the
	// managed-by label.
	ListManagedSecrets(ctx context.Context) ([]string, error)

	// DeleteSecret removes the named secret.
	DeleteSecret(ctx context.Context, name string) error
}

// RunResult aggregates the outcomes of one reconciliation pass.
type RunResult struct {
	// RunID uniquely identifies the pass in logs and reports.
	RunID string `json:"run_id"`

	// Results holds one entry per declared source, in declaration order,
	// plus one entry per prune deletion that failed.
	Results []ReconcileResult `json:"results"`

	// Pruned lists managed secrets deleted (or, in dry-run, that would
	// be deleted) because they are no longer declared.
	Pruned []string `json:"pruned,omitempty"`
}

// HasFailures reports whether any source failed.
func (r *RunResult) HasFailures() bool {
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}

// Converged reports whether every source reached its declared state:
// no failures and no sources left unprocessed.
func (r *RunResult) Converged() bool {
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed || res.Outcome == OutcomeSkipped {
			return false
		}
	}
	return true
}

// Options configures a Reconciler.
type Options struct {
	// DryRun computes and reports outcomes without applying anything.
	DryRun bool

	// Prune deletes managed secrets that are no longer declared.
	Prune bool
}

// Reconciler drives reconciliation of declared sources against the cluster.
type Reconciler struct {
	client    ClusterClient
	validator *manifest.DefaultValidator
	dryRun    bool
	prune     bool
}

// NewReconciler creates a Reconciler using the given cluster client.
func NewReconciler(client ClusterClient, opts Options) *Reconciler {
	return &Reconciler{
		client:    client,
		validator: manifest.NewValidator(),
		dryRun:    opts.DryRun,
		prune:     opts.Prune,
	}
}

// Run reconciles the sources one at a time, in order. Each source is
// loaded, diffed, and applied independently: a failure aborts only that
// source and is recorded in the result list while its siblings proceed.
// Cancellation is checked between sources, not mid-source; once the
// context is done the remaining sources are reported as skipped.
func (r *Reconciler) Run(ctx context.Context, sources []manifest.Source) *RunResult {
	run := &RunResult{RunID: uuid.NewString()}
	logger.Infow("starting reconciliation", "run_id", run.RunID, "sources", len(sources), "dry_run", r.dryRun)

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			logger.Warnw("run cancelled, skipping remaining sources", "run_id", run.RunID, "remaining", len(sources)-i)
			for _, rest := range sources[i:] {
				run.Results = append(run.Results, ReconcileResult{
					Source:  rest.Name,
					Outcome: OutcomeSkipped,
					Reason:  "run cancelled before this source was processed",
				})
			}
			return run
		}

		run.Results = append(run.Results, r.reconcileSource(ctx, src))
	}

	if r.prune {
		r.pruneUndeclared(ctx, sources, run)
	}

	logger.Infow("reconciliation finished", "run_id", run.RunID, "converged", run.Converged())
	return run
}

// reconcileSource runs load, fetch, diff, and apply for a single source.
// Apply is all-or-nothing per secret; a secret is never partially applied.
func (r *Reconciler) reconcileSource(ctx context.Context, src manifest.Source) ReconcileResult {
	if err := r.validator.ValidateSource(&src); err != nil {
		return failedResult(src.Name, err)
	}

	spec, err := LoadSpec(src)
	if err != nil {
		return failedResult(src.Name, err)
	}

	remote, err := r.client.GetSecret(ctx, spec.Name)
	if err != nil {
		return failedResult(src.Name, fmt.Errorf("failed to fetch secret %s: %w", spec.Name, err))
	}

	result := Diff(spec, remote)
	switch result.Outcome {
	case OutcomeNoChange:
		logger.Debugw("source already converged", "source", src.Name)
		return result
	case OutcomeCreated:
		logger.Infow("secret missing from cluster", "source", src.Name, "keys", len(spec.Entries))
	case OutcomeUpdated:
		logger.Infow("secret differs from desired state", "source", src.Name, "changed_keys", result.ChangedKeys)
	}

	if r.dryRun {
		logger.Infow("dry-run, not applying", "source", src.Name, "outcome", result.Outcome)
		return result
	}

	if err := r.client.ApplySecret(ctx, spec); err != nil {
		return failedResult(src.Name, fmt.Errorf("failed to apply secret %s: %w", spec.Name, err))
	}

	logger.Infow("secret applied", "source", src.Name, "outcome", result.Outcome)
	return result
}

// pruneUndeclared removes managed secrets that no declared source claims.
// Unlabeled secrets are never touched. Deletion failures are recorded as
// failed results so the run reports them.
func (r *Reconciler) pruneUndeclared(ctx context.Context, sources []manifest.Source, run *RunResult) {
	declared := make(map[string]bool, len(sources))
	for _, src := range sources {
		declared[src.Name] = true
	}

	managed, err := r.client.ListManagedSecrets(ctx)
	if err != nil {
		run.Results = append(run.Results, failedResult("prune", fmt.Errorf("failed to list managed secrets: %w", err)))
		return
	}

	for _, name := range managed {
		if declared[name] {
			continue
		}
		if r.dryRun {
			logger.Infow("dry-run, would prune secret", "secret", name)
			run.Pruned = append(run.Pruned, name)
			continue
		}
		if err := r.client.DeleteSecret(ctx, name); err != nil {
			run.Results = append(run.Results, failedResult(name, fmt.Errorf("failed to prune secret %s: %w", name, err)))
			continue
		}
		logger.Infow("pruned undeclared secret", "secret", name)
		run.Pruned = append(run.Pruned, name)
	}
}

func failedResult(source string, err error) ReconcileResult {
	logger.Errorw("source failed", "source", source, "error", err)
	return ReconcileResult{
		Source:  source,
		Outcome: OutcomeFailed,
		Reason:  err.Error(),
		Err:     err,
	}
}
