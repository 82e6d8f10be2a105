// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "error with cause",
			err: &Error{
				Type:    ErrRead,
				Message: "test message",
				Cause:   errors.New("underlying error"),
			},
			want: "read: test message: underlying error",
		},
		{
			name: "error without cause",
			err: &Error{
				Type:    ErrCluster,
				Message: "test message",
				Cause:   nil,
			},
			want: "cluster: test message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("Error.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &Error{
		Type:    ErrCluster,
		Message: "test message",
		Cause:   cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("Error.Unwrap() = %v, want %v", got, cause)
	}

	errNoCause := &Error{
		Type:    ErrCluster,
		Message: "test message",
		Cause:   nil,
	}

	if got := errNoCause.Unwrap(); got != nil {
		t.Errorf("Error.Unwrap() = %v, want nil", got)
	}
}

func TestNewError(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewError(ErrParse, "test message", cause)

	if err.Type != ErrParse {
		t.Errorf("NewError().Type = %v, want %v", err.Type, ErrParse)
	}
	if err.Message != "test message" {
		t.Errorf("NewError().Message = %v, want %v", err.Message, "test message")
	}
	if err.Cause != cause {
		t.Errorf("NewError().Cause = %v, want %v", err.Cause, cause)
	}
}

func TestNewErrorConstructors(t *testing.T) {
	cause := errors.New("cause")

	tests := []struct {
		name        string
		constructor func(string, error) *Error
		wantType    string
	}{
		{
			name:        "NewReadError",
			constructor: NewReadError,
			wantType:    ErrRead,
		},
		{
			name:        "NewParseError",
			constructor: NewParseError,
			wantType:    ErrParse,
		},
		{
			name:        "NewClusterError",
			constructor: NewClusterError,
			wantType:    ErrCluster,
		},
		{
			name:        "NewConfigError",
			constructor: NewConfigError,
			wantType:    ErrConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.constructor("test message", cause)
			if err.Type != tt.wantType {
				t.Errorf("%s().Type = %v, want %v", tt.name, err.Type, tt.wantType)
			}
			if err.Message != "test message" {
				t.Errorf("%s().Message = %v, want %v", tt.name, err.Message, "test message")
			}
			if err.Cause != cause {
				t.Errorf("%s().Cause = %v, want %v", tt.name, err.Cause, cause)
			}
		})
	}
}

func TestErrorTypeCheckers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
		want    bool
	}{
		{
			name:    "IsRead with matching error",
			err:     NewReadError("test", nil),
			checker: IsRead,
			want:    true,
		},
		{
			name:    "IsRead with non-matching error",
			err:     NewParseError("test", nil),
			checker: IsRead,
			want:    false,
		},
		{
			name:    "IsRead with non-Error type",
			err:     errors.New("regular error"),
			checker: IsRead,
			want:    false,
		},
		{
			name:    "IsParse with matching error",
			err:     NewParseError("test", nil),
			checker: IsParse,
			want:    true,
		},
		{
			name:    "IsCluster with matching error",
			err:     NewClusterError("test", nil),
			checker: IsCluster,
			want:    true,
		},
		{
			name:    "IsCluster with wrapped error",
			err:     fmt.Errorf("reconciling source %q: %w", "app-env", NewClusterError("test", nil)),
			checker: IsCluster,
			want:    true,
		},
		{
			name:    "IsConfig with matching error",
			err:     NewConfigError("test", nil),
			checker: IsConfig,
			want:    true,
		},
		{
			name:    "IsConfig with nil error",
			err:     nil,
			checker: IsConfig,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.checker(tt.err)
			if got != tt.want {
				t.Errorf("%s() = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
