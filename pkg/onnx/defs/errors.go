// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package defs

import (
	"fmt"

	"github.com/pkg/errors"
)

// InferenceErrorKind distinguishes type inference from shape inference failures.
type InferenceErrorKind int

const (
	TypeInference InferenceErrorKind = iota
	ShapeInference
)

// String implements fmt.Stringer.
func (k InferenceErrorKind) String() string {
	if k == TypeInference {
		return "TypeInferenceError"
	}
	return "ShapeInferenceError"
}

var (
	// ErrTypeInference matches (with errors.Is) any type inference failure.
	ErrTypeInference = errors.New("type inference failed")

	// ErrShapeInference matches (with errors.Is) any shape inference failure.
	ErrShapeInference = errors.New("shape inference failed")

	// ErrNoSchema is returned when no schema is registered for an operator at the requested version.
	ErrNoSchema = errors.New("no schema registered")

	// ErrDuplicateSchema is returned when registering a schema twice for the same (name, domain, since version).
	ErrDuplicateSchema = errors.New("duplicate schema")
)

// InferenceError is the typed failure returned by inference functions.
//
// It matches ErrTypeInference or ErrShapeInference with errors.Is, according to its Kind, and
// also the optional Cause it wraps.
type InferenceError struct {
	Kind  InferenceErrorKind
	Msg   string
	Cause error
}

// Error implements error.
func (e *InferenceError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Msg)
}

// Unwrap returns the cause of the error, if any.
func (e *InferenceError) Unwrap() error { return e.Cause }

// Is makes the error match the sentinel of its kind.
func (e *InferenceError) Is(target error) bool {
	switch target {
	case ErrTypeInference:
		return e.Kind == TypeInference
	case ErrShapeInference:
		return e.Kind == ShapeInference
	}
	return false
}

// FailShapeInference returns a shape inference error with the formatted message.
func FailShapeInference(format string, args ...any) error {
	return &InferenceError{Kind: ShapeInference, Msg: fmt.Sprintf(format, args...)}
}

// FailTypeInference returns a type inference error with the formatted message.
func FailTypeInference(format string, args ...any) error {
	return &InferenceError{Kind: TypeInference, Msg: fmt.Sprintf(format, args...)}
}

// WrapShapeInference returns a shape inference error with the formatted message, that also
// matches cause (usually a sentinel) with errors.Is.
func WrapShapeInference(cause error, format string, args ...any) error {
	return &InferenceError{Kind: ShapeInference, Msg: fmt.Sprintf(format, args...), Cause: cause}
}
