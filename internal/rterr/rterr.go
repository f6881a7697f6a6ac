// Package rterr provides error kinds layered on top of
// github.com/pkg/errors, the wrapping convention used throughout
// perkeep.org/pkg/blobserver/fsbacked.
package rterr

import (
	"github.com/pkg/errors"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/errkind"
)

type kindError struct {
	kind errkind.Kind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }
func (e *kindError) Cause() error  { return e.err }

// New creates a new error tagged with kind.
func New(kind errkind.Kind, msg string) error {
	return &kindError{kind: kind, err: errors.New(msg)}
}

// Newf creates a new formatted error tagged with kind.
func Newf(kind errkind.Kind, format string, args ...interface{}) error {
	return &kindError{kind: kind, err: errors.Errorf(format, args...)}
}

// Wrap wraps err with msg and tags the result with kind. Returns nil if
// err is nil.
func Wrap(err error, kind errkind.Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: errors.Wrap(err, msg)}
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, kind errkind.Kind, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: errors.Wrapf(err, format, args...)}
}

// Of reports the errkind.Kind attached to err, if any, by walking the
// Unwrap chain.
func Of(err error) (errkind.Kind, bool) {
	for err != nil {
		if ke, ok := err.(*kindError); ok {
			return ke.kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0, false
		}
		err = u.Unwrap()
	}
	return 0, false
}
