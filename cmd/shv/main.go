// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for the SecretHive CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/stacklok/secrethive/cmd/shv/app"
	errtypes "github.com/stacklok/secrethive/pkg/errors"
)

// exitCodeConfig signals that the invocation itself was unusable, as
// opposed to a run in which one or more sources failed to reconcile.
const exitCodeConfig = 2

func main() {
	// Create a context that will be canceled on signal
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	// Execute the root command with context
	if err := app.NewRootCmd().ExecuteContext(ctx); err != nil {
		if errtypes.IsConfig(err) {
			os.Exit(exitCodeConfig)
		}
		os.Exit(1)
	}
}
