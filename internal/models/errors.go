package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures so callers can map them to responses
type ErrorKind string

const (
	InvalidRange      ErrorKind = "InvalidRange"
	InvalidDeltaMode  ErrorKind = "InvalidDeltaMode"
	InvalidUser       ErrorKind = "InvalidUser"
	SourceUnavailable ErrorKind = "SourceUnavailable"
)

// Error is an engine error carrying its kind
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an Error of the given kind
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapError builds an Error of the given kind around err
func WrapError(kind ErrorKind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first Error in err's chain, or "" if none
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
