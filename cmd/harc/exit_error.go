// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package main

import (
	"fmt"

	"github.com/woozymasta/harc"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Err  error
	Code harc.ErrorCode
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitErrorFor wraps err with the exit code the engine assigns to it.
func exitErrorFor(err error) *ExitError {
	return &ExitError{Err: err, Code: harc.CodeOf(err)}
}

// usageError wraps err with the fixed usage exit code.
func usageError(err error) *ExitError {
	return &ExitError{Err: err, Code: harc.CodeUsage}
}
