// Package apperr defines the error taxonomy shared by the storage layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrEtagMismatch  = errors.New("etag mismatch")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
)

// NotFoundError reports that no entry exists for an href or metadata key.
type NotFoundError struct {
	Href string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: not found", e.Href)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// EtagMismatchError reports a rejected write or delete: the caller's etag
// no longer matches what is on disk.
type EtagMismatchError struct {
	Expected string
	Actual   string
}

func (e *EtagMismatchError) Error() string {
	return fmt.Sprintf("etag mismatch: expected %q, found %q", e.Expected, e.Actual)
}

func (e *EtagMismatchError) Is(target error) bool { return target == ErrEtagMismatch }

// AlreadyExistsError carries the href that collided on create.
type AlreadyExistsError struct {
	Href string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s: already exists", e.Href)
}

func (e *AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }
