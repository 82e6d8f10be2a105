// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/stacklok/secrethive/pkg/cluster"
	errtypes "github.com/stacklok/secrethive/pkg/errors"
	"github.com/stacklok/secrethive/pkg/logger"
	"github.com/stacklok/secrethive/pkg/manifest"
	"github.com/stacklok/secrethive/pkg/secrets"
	"github.com/stacklok/secrethive/pkg/watcher"
)

// lockTimeout is how long a run waits for the advisory run lock before
// giving up.
const lockTimeout = 1 * time.Second

// reconcileFlags holds the flag values for the reconcile command.
type reconcileFlags struct {
	dryRun    bool
	namespace string
	prune     bool
	output    string
	watch     bool
	interval  time.Duration

	// Single-source mode, mutually exclusive with the manifest.
	name string
	kind string
	path string
	key  string
}

// addReconcileFlags adds the reconcile command's flags.
func addReconcileFlags(cmd *cobra.Command, flags *reconcileFlags) {
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Report what would change without applying anything")
	cmd.Flags().StringVarP(&flags.namespace, "namespace", "n", "",
		"Kubernetes namespace to reconcile into (default: auto-detected)")
	cmd.Flags().BoolVar(&flags.prune, "prune", false, "Delete managed secrets that are no longer declared")
	cmd.Flags().StringVarP(&flags.output, "output", "o", FormatTable,
		fmt.Sprintf("Output format of the run report (%s, %s, or %s)", FormatTable, FormatJSON, FormatYAML))
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "Keep running and reconcile whenever a source file changes")
	cmd.Flags().DurationVar(&flags.interval, "interval", 0,
		"Periodically reconcile at this interval in watch mode, even without file changes (0 disables)")

	cmd.Flags().StringVar(&flags.name, "name", "", "Reconcile a single source with this name instead of using a manifest")
	cmd.Flags().StringVar(&flags.kind, "kind", "",
		fmt.Sprintf("Kind of the single source (%s or %s)", manifest.KindEnvFile, manifest.KindFile))
	cmd.Flags().StringVar(&flags.path, "path", "", "Backing file of the single source")
	cmd.Flags().StringVar(&flags.key, "key", "",
		fmt.Sprintf("Data key for the single source (kind %s only)", manifest.KindFile))
}

// newReconcileCmd creates the reconcile command.
func newReconcileCmd() *cobra.Command {
	flags := &reconcileFlags{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Converge cluster secrets to their declared sources",
		Long: `Reconcile every declared secret source against the cluster.

Each source's backing file is read and parsed into the desired secret
contents, the live secret is fetched, and the two are compared locally.
A missing secret is created, a differing one is fully replaced, and a
matching one is left untouched. Sources are processed one at a time;
a failing source is reported and does not stop its siblings.

Sources come from the manifest (--config, $SHV_CONFIG, or the default
location), or a single source can be given inline with --name, --kind,
--path, and --key.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return reconcileCmdFunc(cmd, flags)
		},
	}

	addReconcileFlags(cmd, flags)
	return cmd
}

// reconcileCmdFunc implements the reconcile command logic.
func reconcileCmdFunc(cmd *cobra.Command, flags *reconcileFlags) error {
	ctx := cmd.Context()

	if err := validateOutputFormat(flags.output); err != nil {
		return err
	}
	if flags.interval != 0 && !flags.watch {
		return errtypes.NewConfigError("--interval requires --watch", nil)
	}

	m, err := loadManifest(cmd, flags)
	if err != nil {
		return err
	}

	// The flag wins over the manifest; an empty namespace is resolved by
	// the cluster client through the usual detection chain.
	namespace := flags.namespace
	if namespace == "" {
		namespace = m.Namespace
	}

	client, err := cluster.NewClient(namespace)
	if err != nil {
		return fmt.Errorf("failed to create cluster client: %w", err)
	}
	logger.Infow("reconciling secrets",
		"namespace", client.Namespace(), "sources", len(m.Sources), "dry_run", flags.dryRun)

	// A dry run never applies anything, so it may proceed alongside a
	// real run without holding the lock.
	if !flags.dryRun {
		runLock, err := acquireRunLock(ctx)
		if err != nil {
			return err
		}
		defer runLock.Unlock()
	}

	reconciler := secrets.NewReconciler(client, secrets.Options{
		DryRun: flags.dryRun,
		Prune:  flags.prune,
	})

	runOnce := func(ctx context.Context) error {
		result := reconciler.Run(ctx, m.Sources)
		if err := renderRunResult(os.Stdout, result, flags.output); err != nil {
			return fmt.Errorf("failed to render run report: %w", err)
		}
		return runError(result)
	}

	if flags.watch {
		w := watcher.New(runOnce, watcher.Options{Interval: flags.interval})
		return w.Watch(ctx, sourcePaths(m))
	}

	return runOnce(ctx)
}

// loadManifest resolves the sources for this invocation: a single source
// assembled from flags, or the manifest file.
func loadManifest(cmd *cobra.Command, flags *reconcileFlags) (*manifest.Manifest, error) {
	hasFlagSource := flags.name != "" || flags.kind != "" || flags.path != "" || flags.key != ""

	if hasFlagSource {
		if cmd.Flags().Changed("config") {
			return nil, errtypes.NewConfigError("--config cannot be combined with --name/--kind/--path/--key", nil)
		}
		return manifestFromFlags(flags)
	}

	path, err := resolveManifestPath()
	if err != nil {
		return nil, errtypes.NewConfigError("failed to resolve manifest path", err)
	}
	return loadManifestFile(path)
}

// manifestFromFlags assembles a single-source manifest from the command line.
func manifestFromFlags(flags *reconcileFlags) (*manifest.Manifest, error) {
	m := &manifest.Manifest{
		Sources: []manifest.Source{{
			Name: flags.name,
			Kind: manifest.SourceKind(flags.kind),
			Path: flags.path,
			Key:  flags.key,
		}},
	}

	if err := manifest.NewValidator().Validate(m); err != nil {
		return nil, errtypes.NewConfigError("invalid source flags", err)
	}
	return m, nil
}

// loadManifestFile loads and fully validates the manifest at path. Any
// problem makes the invocation unusable, so failures are config errors.
func loadManifestFile(path string) (*manifest.Manifest, error) {
	m, err := manifest.NewYAMLLoader(path).Load()
	if err != nil {
		return nil, errtypes.NewConfigError("failed to load manifest", err)
	}

	if err := manifest.NewValidator().Validate(m); err != nil {
		return nil, errtypes.NewConfigError(fmt.Sprintf("manifest %s failed validation", path), err)
	}
	return m, nil
}

// acquireRunLock takes the advisory lock shared by every shv invocation,
// so two concurrent runs cannot interleave their apply phases against the
// cluster. The caller must Unlock the returned lock.
func acquireRunLock(ctx context.Context) (*flock.Flock, error) {
	lockPath, err := xdg.ConfigFile("secrethive/shv.lock")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve run lock path: %w", err)
	}

	fileLock := flock.New(lockPath)
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	// Try and acquire a file lock.
	locked, err := fileLock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to acquire run lock %s: timeout after %v (is another shv run in progress?)",
			lockPath, lockTimeout)
	}
	return fileLock, nil
}

// runError maps a finished run onto the command's error: nil only when
// every source converged.
func runError(result *secrets.RunResult) error {
	failed := 0
	skipped := 0
	for _, res := range result.Results {
		switch res.Outcome {
		case secrets.OutcomeFailed:
			failed++
		case secrets.OutcomeSkipped:
			skipped++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed to reconcile", failed, len(result.Results))
	}
	if skipped > 0 {
		return fmt.Errorf("run cancelled with %d of %d sources unprocessed", skipped, len(result.Results))
	}
	return nil
}

// sourcePaths returns the backing file of every source, for the watch loop.
func sourcePaths(m *manifest.Manifest) []string {
	paths := make([]string, 0, len(m.Sources))
	for _, src := range m.Sources {
		paths = append(paths, src.Path)
	}
	return paths
}
