// Package interfaces defines the domain types, error kinds and component
// contracts of the SSH key server, without implementation details.
//
// # Key tree
//
// Keys are addressed by a (Host, User, KeyType) triple. A KeyStore presents
// the tree as a progressive lookup: GetResult carries the host list, the user
// list of a host, the key types of a user, or a single KeyRecord depending on
// how many levels were given.
//
// # Errors
//
// Every KeyStore error wraps exactly one kind:
//
//   - ErrInvalidInput: malformed names, unrecognized key content, unsupported type
//   - ErrNotFound: missing host, user, key type or key (see NotFoundError)
//   - ErrConflict: create on an existing key
//   - ErrStorageFailure: filesystem failure (see StorageError)
//
// Callers classify with errors.Is and extract details with errors.As.
package interfaces
