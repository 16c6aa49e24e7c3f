package interfaces

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a host or user name fails the naming
	// grammar, uploaded bytes are not a recognized key, or a requested key
	// type is not supported.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a requested host, user, key type or key
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a create targets a key that already exists.
	ErrConflict = errors.New("key already exists")

	// ErrStorageFailure is returned when a filesystem operation on the key
	// tree fails for any other reason.
	ErrStorageFailure = errors.New("storage failure")
)

// Resources reported by NotFoundError.
const (
	ResourceHost    = "host"
	ResourceUser    = "user"
	ResourceKeyType = "keyType"
	ResourceKey     = "key"
)

// NotFoundError reports which level of the key tree was missing.
type NotFoundError struct {
	// Resource is one of ResourceHost, ResourceUser, ResourceKeyType or ResourceKey.
	Resource string

	// Name is the value that was looked up.
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s [%s] not found", e.Resource, e.Name)
}

// Is makes errors.Is(err, ErrNotFound) hold for every NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a NotFoundError for the given resource and name.
func NewNotFoundError(resource, name string) error {
	return &NotFoundError{Resource: resource, Name: name}
}

// StorageError wraps a failed filesystem operation on the key tree.
type StorageError struct {
	// Op is a short description of the operation, e.g. "write key".
	Op string

	// Path is the path the operation was applied to.
	Path string

	// Err is the underlying error.
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both the storage failure kind and the underlying error.
func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageFailure, e.Err}
}

// NewStorageError wraps err as a StorageError.
func NewStorageError(op, path string, err error) error {
	return &StorageError{Op: op, Path: path, Err: err}
}

// InvalidInputf formats a reason and marks it as ErrInvalidInput.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
