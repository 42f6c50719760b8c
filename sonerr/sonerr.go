// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.
//
// sonlib-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sonlib-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with sonlib-go. If not, see <http://www.gnu.org/licenses/>.

// Package sonerr implements the structured-exception support layer (spec C1):
// every component in this module fails by returning an error carrying one of
// the symbolic Kinds below, a human message, and an optional cause chain.
package sonerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is a symbolic error id, matching the list in spec.md §6.
type Kind string

const (
	KindGeneral            Kind = "KV_GENERAL"
	KindMissingKey         Kind = "KV_MISSING_KEY"
	KindDuplicateKey       Kind = "KV_DUPLICATE_KEY"
	KindOutOfRange         Kind = "KV_OUT_OF_RANGE"
	KindUnsupported        Kind = "KV_UNSUPPORTED"
	KindCapacity           Kind = "KV_CAPACITY"
	KindRetryTransaction   Kind = "KV_RETRY_TRANSACTION"
	KindCompressionFailed  Kind = "COMPRESSION_FAILED"
	KindSetEmpty           Kind = "SET_EMPTY"
	KindSetAlgebraMismatch Kind = "SET_ALGEBRA_MISMATCH"
	KindSortedSetIterMiss  Kind = "SORTED_SET_ITER_FROM_MISSING"
	KindPhyloUnmappedLeaf  Kind = "PHYLO_UNMAPPED_LEAF"
	KindPhyloNotBinary     Kind = "PHYLO_NOT_BINARY"
	KindMatrixShapeMismatch Kind = "MATRIX_SHAPE_MISMATCH"
	KindConfigInvalid      Kind = "CONFIG_INVALID"
	KindRandomBadRange     Kind = "RANDOM_BAD_RANGE"
)

// Error is the structured exception object of spec §7: a symbolic Kind, a
// message, and an optional cause chain. Error has no Format method, so %+v
// prints the same text as Error(); the stack trace that New records sits on
// its github.com/pkg/errors cause, which %+v on Cause() prints.
type Error struct {
	Kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// Unwrap lets errors.Is/errors.As walk the cause chain.
func (e *Error) Unwrap() error { return e.cause }

// Cause satisfies github.com/pkg/errors' Causer interface.
func (e *Error) Cause() error { return e.cause }

// New builds a Kind-tagged error whose cause is a github.com/pkg/errors
// error carrying msg and a stack trace; Error() therefore prints msg twice,
// once as the message and once as the cause.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, msg: msg, cause: errors.New(msg)}
}

// Newf is New with printf-style formatting.
func Newf(kind Kind, format string, args ...any) error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap attaches a Kind and message to an existing cause, preserving the
// chain so that Cause()/Unwrap() reach the original error.
func Wrap(kind Kind, cause error, msg string) error {
	if cause == nil {
		return New(kind, msg)
	}
	return &Error{Kind: kind, msg: msg, cause: cause}
}

// Wrapf is Wrap with printf-style formatting.
func Wrapf(kind Kind, cause error, format string, args ...any) error {
	return Wrap(kind, cause, fmt.Sprintf(format, args...))
}

// Is reports whether err is a *Error of the given Kind, anywhere in its
// cause chain.
func Is(err error, kind Kind) bool {
	for err != nil {
		if se, ok := err.(*Error); ok {
			if se.Kind == kind {
				return true
			}
			err = se.cause
			continue
		}
		type causer interface{ Cause() error }
		if c, ok := err.(causer); ok {
			err = c.Cause()
			continue
		}
		return false
	}
	return false
}

// KindOf returns the Kind attached to err, and false if err is not (or does
// not wrap) a *Error.
func KindOf(err error) (Kind, bool) {
	for err != nil {
		if se, ok := err.(*Error); ok {
			return se.Kind, true
		}
		type causer interface{ Cause() error }
		c, ok := err.(causer)
		if !ok {
			return "", false
		}
		err = c.Cause()
	}
	return "", false
}
