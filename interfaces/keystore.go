package interfaces

import (
	"context"
)

// KeyTypeDetector classifies raw key bytes.
type KeyTypeDetector interface {
	// Detect inspects data and returns the recognized key type. label is a
	// human readable description of what was found and is always set, ok is
	// false when the content is not a supported public key.
	Detect(data []byte) (keyType KeyType, label string, ok bool)
}

// KeyStore provides the CRUD surface over the hierarchical key tree.
//
// Reads never block each other; writes are serialized. Every error returned
// wraps one of ErrInvalidInput, ErrNotFound, ErrConflict or ErrStorageFailure,
// except context errors, which are returned as is when ctx is done before a
// mutation starts.
type KeyStore interface {
	// Get resolves a progressive lookup. Empty arguments mean "not given":
	// no host lists hosts, no user lists users, no key type lists key types.
	Get(ctx context.Context, host, user, keyType string) (*GetResult, error)

	// Create stores a new key and returns its detected type.
	Create(ctx context.Context, host, user string, key []byte) (KeyType, error)

	// Replace overwrites the existing key of the detected type.
	Replace(ctx context.Context, host, user string, key []byte) (KeyType, error)

	// Delete removes a key and prunes directories left empty.
	Delete(ctx context.Context, host, user, keyType string) error

	// Reload rescans the key tree from disk.
	Reload(ctx context.Context) error

	// Available checks that the key directory is still usable.
	Available(ctx context.Context) bool
}
