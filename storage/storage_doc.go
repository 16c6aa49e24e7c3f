// Package storage provides the on-disk SSH public key store.
//
// Keys live in a three level directory tree below a single key directory:
//
//	<keyDir>/<host>/<user>/id_<keyType>.pub
//
// Each file holds the key exactly as it was uploaded. Nothing else is
// persisted; files at another depth or with another name are ignored.
//
// # Snapshots
//
// [FileKeyStore] serves reads from an immutable [KeySnapshot] of the whole
// tree. Every successful mutation rescans the directory and atomically
// installs a fresh snapshot, so a reader never observes a host without users
// or a user without keys.
//
// Mutations are serialized. Key files are written to a temporary file in the
// target directory and renamed into place, and deleting the last key of a
// user removes the user directory (and the host directory if it became
// empty too).
//
// # Names
//
// Host names are dot separated alphanumeric labels with inner hyphens; user
// names start alphanumeric and are at least four characters drawn from
// letters, digits, '.', '_' and '-'. Both checks run before any path is
// built from client input.
//
// # Usage
//
//	store, err := storage.NewFileKeyStore("/var/lib/keyserver", cryptoutils.NewMagicDetector(), logger)
//	if err != nil {
//	    return err
//	}
//	kt, err := store.Create(ctx, "build.example.com", "deploy", body)
package storage
