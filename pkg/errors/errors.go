// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package errors defines the error taxonomy used across secrethive.
//
// Every failure that aborts a single source's reconciliation is one of the
// types below, so callers can classify outcomes without string matching.
package errors

import (
	"errors"
	"fmt"
)

// Error types
const (
	// ErrRead is returned when a local source file is missing or unreadable
	ErrRead = "read"

	// ErrParse is returned when a source file has malformed contents
	ErrParse = "parse"

	// ErrCluster is returned when a cluster operation fails for any reason
	// other than the secret not being found
	ErrCluster = "cluster"

	// ErrConfig is returned when a source declaration is invalid
	ErrConfig = "config"
)

// Error represents an error in the application
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewReadError creates a new read error
func NewReadError(message string, cause error) *Error {
	return NewError(ErrRead, message, cause)
}

// NewParseError creates a new parse error
func NewParseError(message string, cause error) *Error {
	return NewError(ErrParse, message, cause)
}

// NewClusterError creates a new cluster error
func NewClusterError(message string, cause error) *Error {
	return NewError(ErrCluster, message, cause)
}

// NewConfigError creates a new config error
func NewConfigError(message string, cause error) *Error {
	return NewError(ErrConfig, message, cause)
}

// isType checks whether err (or anything it wraps) is an Error of the given type.
func isType(err error, errorType string) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == errorType
}

// IsRead checks if the error is a read error
func IsRead(err error) bool {
	return isType(err, ErrRead)
}

// IsParse checks if the error is a parse error
func IsParse(err error) bool {
	return isType(err, ErrParse)
}

// IsCluster checks if the error is a cluster error
func IsCluster(err error) bool {
	return isType(err, ErrCluster)
}

// IsConfig checks if the error is a config error
func IsConfig(err error) bool {
	return isType(err, ErrConfig)
}
