// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Exit codes.
const (
	ExitClean    = 0
	ExitFindings = 1
	ExitError    = 2
)

// exitError carries a process exit code out of a command.
//
// A nil Err means the command already reported everything it had to say.
type exitError struct {
	Code int
	Err  error
}

func (e *exitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *exitError) Unwrap() error {
	return e.Err
}

// failf wraps an operational failure as ExitError.
func failf(format string, args ...any) error {
	return &exitError{Code: ExitError, Err: fmt.Errorf(format, args...)}
}

// run executes the CLI and maps the outcome to an exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, &rootOptions{}, args, stdout, stderr)
}

// execute runs the command tree with opts. The logger is closed on every
// path; cobra skips post-run hooks when a command fails.
func execute(ctx context.Context, opts *rootOptions, args []string, stdout, stderr io.Writer) int {
	defer opts.closeLogger()

	root := newRootCmd(opts, stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitClean
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.Err != nil {
			fmt.Fprintf(stderr, "a11ylint: %v\n", exit.Err)
		}
		return exit.Code
	}
	// Flag and argument errors from cobra itself.
	fmt.Fprintf(stderr, "a11ylint: %v\n", err)
	return ExitError
}
