/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package webvherr defines the tagged error kinds shared across the
// did:webvh packages.
package webvherr

import (
	"errors"
	"fmt"
)

// Kind tags an Error with one of the public-boundary error categories.
type Kind string

// Error kinds, see spec §6/§11.
const (
	UnsupportedMethod       Kind = "unsupported_method"
	InvalidMethodIdentifier Kind = "invalid_method_identifier"
	NotFound                Kind = "not_found"
	NotImplemented          Kind = "not_implemented"
	NetworkError            Kind = "network_error"
	ValidationError         Kind = "validation_error"
	ParametersError         Kind = "parameters_error"
	LogEntryError           Kind = "log_entry_error"
	SCIDError               Kind = "scid_error"
	WitnessProofError       Kind = "witness_proof_error"
	DeactivatedError        Kind = "deactivated_error"
	DIDError                Kind = "did_error"
)

// Error is the error type returned across package boundaries in the
// webvh tree. It carries a Kind so callers can branch on category
// without string matching, and wraps an underlying cause when present.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error wrapping cause, unless cause is nil, in
// which case Wrap returns a nil *Error. A nil *Error held in an error
// interface value is not a nil error.
func Wrap(kind Kind, message string, cause error) *Error {
	if cause == nil {
		return nil
	}

	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err (or any error it wraps) is a webvherr.Error
// of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error

	if errors.As(err, &e) {
		return e.Kind == kind
	}

	return false
}
