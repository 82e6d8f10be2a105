// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package watcher re-runs reconciliation when source files change on disk.
//
// Watches are placed on the parent directories of the declared files rather
// than the files themselves, so atomic saves (write to temp file, rename
// over the original) are seen instead of silently detaching the watch.
// Bursts of events are debounced into a single run, and failed runs are
// retried with exponential backoff.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/fsnotify/fsnotify"
	"k8s.io/utils/clock"

	"github.com/stacklok/secrethive/pkg/logger"
)

const (
	defaultDebounce      = 500 * time.Millisecond
	defaultRetryInterval = 2 * time.Second
)

// RunFunc performs one reconciliation pass.
type RunFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// Interval triggers a periodic run even without file changes, catching
	// cluster-side drift. Zero disables periodic runs.
	Interval time.Duration

	// Debounce is the quiet period after a file event before running.
	// Defaults to 500ms.
	Debounce time.Duration

	// RetryInterval is the initial backoff delay after a failed run.
	// Defaults to 2s.
	RetryInterval time.Duration
}

// Watcher triggers reconciliation runs from file events and timers.
type Watcher struct {
	run           RunFunc
	interval      time.Duration
	debounce      time.Duration
	retryInterval time.Duration
	clock         clock.WithTicker
}

// New creates a Watcher that calls run on every trigger.
func New(run RunFunc, opts Options) *Watcher {
	return NewWithClock(run, opts, clock.RealClock{})
}

// NewWithClock creates a Watcher with the provided clock.
// This is useful for testing with a fake clock.
func NewWithClock(run RunFunc, opts Options, clk clock.WithTicker) *Watcher {
	debounce := opts.Debounce
	if debounce == 0 {
		debounce = defaultDebounce
	}
	retryInterval := opts.RetryInterval
	if retryInterval == 0 {
		retryInterval = defaultRetryInterval
	}

	return &Watcher{
		run:           run,
		interval:      opts.Interval,
		debounce:      debounce,
		retryInterval: retryInterval,
		clock:         clk,
	}
}

// Watch runs once immediately, then blocks re-running on every relevant
// change to paths until the context is cancelled. Only events for the
// named files count; unrelated churn in their directories is ignored.
func (w *Watcher) Watch(ctx context.Context, paths []string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	defer fsw.Close()

	watched := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", p, err)
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		logger.Debugw("watching directory", "dir", dir)
	}

	var tickerCh <-chan time.Time
	if w.interval > 0 {
		ticker := w.clock.NewTicker(w.interval)
		defer ticker.Stop()
		tickerCh = ticker.C()
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = w.retryInterval

	var debounceTimer clock.Timer
	var debounceCh <-chan time.Time
	var retryTimer clock.Timer
	var retryCh <-chan time.Time

	attempt := func() {
		if retryTimer != nil {
			retryTimer.Stop()
			retryTimer, retryCh = nil, nil
		}
		if err := w.run(ctx); err != nil {
			delay := bo.NextBackOff()
			logger.Warnw("run failed, retrying", "error", err, "retry_in", delay)
			retryTimer = w.clock.NewTimer(delay)
			retryCh = retryTimer.C()
			return
		}
		bo.Reset()
	}

	attempt()

	for {
		select {
		case <-ctx.Done():
			logger.Infow("watch stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debugw("source file changed", "file", event.Name, "op", event.Op.String())
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = w.clock.NewTimer(w.debounce)
			debounceCh = debounceTimer.C()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("filesystem watcher error", "error", err)

		case <-tickerCh:
			attempt()

		case <-debounceCh:
			debounceTimer, debounceCh = nil, nil
			attempt()

		case <-retryCh:
			retryTimer, retryCh = nil, nil
			attempt()
		}
	}
}
