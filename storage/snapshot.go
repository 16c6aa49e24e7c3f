package storage

import (
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/ruteri/ssh-key-server/interfaces"
)

type userKeys map[interfaces.KeyType]interfaces.KeyRecord
type hostUsers map[interfaces.User]userKeys

// KeySnapshot is an immutable copy of the key tree read from disk at one
// point in time. All methods are safe for concurrent use.
type KeySnapshot struct {
	tree map[interfaces.Host]hostUsers
	size int
}

// EmptySnapshot returns a snapshot without any keys.
func EmptySnapshot() *KeySnapshot {
	return &KeySnapshot{tree: map[interfaces.Host]hostUsers{}}
}

// LoadSnapshot scans baseDir exactly two directory levels deep and reads
// every regular file named id_<tag>.pub found at
// <baseDir>/<host>/<user>/. Files at any other depth or with any other
// name are ignored. Hosts and users without a matching key do not appear.
func LoadSnapshot(baseDir string) (*KeySnapshot, error) {
	hostEntries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, interfaces.NewStorageError("scan key directory", baseDir, err)
	}

	snap := EmptySnapshot()
	for _, hostEntry := range hostEntries {
		if !hostEntry.IsDir() {
			continue
		}
		host := hostEntry.Name()
		hostDir := filepath.Join(baseDir, host)

		userEntries, err := os.ReadDir(hostDir)
		if err != nil {
			return nil, interfaces.NewStorageError("scan host directory", hostDir, err)
		}

		for _, userEntry := range userEntries {
			if !userEntry.IsDir() {
				continue
			}
			user := userEntry.Name()
			userDir := filepath.Join(hostDir, user)

			keyEntries, err := os.ReadDir(userDir)
			if err != nil {
				return nil, interfaces.NewStorageError("scan user directory", userDir, err)
			}

			for _, keyEntry := range keyEntries {
				if !keyEntry.Type().IsRegular() {
					continue
				}
				tag, ok := ParseKeyFileName(keyEntry.Name())
				if !ok {
					continue
				}

				keyPath := filepath.Join(userDir, keyEntry.Name())
				data, err := os.ReadFile(keyPath)
				if err != nil {
					return nil, interfaces.NewStorageError("read key", keyPath, err)
				}
				snap.insert(host, user, interfaces.KeyType(tag), data)
			}
		}
	}

	return snap, nil
}

func (s *KeySnapshot) insert(host interfaces.Host, user interfaces.User, kt interfaces.KeyType, data []byte) {
	users, ok := s.tree[host]
	if !ok {
		users = hostUsers{}
		s.tree[host] = users
	}
	keys, ok := users[user]
	if !ok {
		keys = userKeys{}
		users[user] = keys
	}
	if _, exists := keys[kt]; !exists {
		s.size++
	}
	keys[kt] = interfaces.KeyRecord(data)
}

// Len returns the number of keys in the snapshot.
func (s *KeySnapshot) Len() int {
	return s.size
}

// Hosts returns all hosts in lexicographic order.
func (s *KeySnapshot) Hosts() []interfaces.Host {
	return slices.Sorted(maps.Keys(s.tree))
}

// HasHost reports whether host has at least one key.
func (s *KeySnapshot) HasHost(host interfaces.Host) bool {
	_, ok := s.tree[host]
	return ok
}

// Users returns the users of host in lexicographic order, or nil if the host
// is unknown.
func (s *KeySnapshot) Users(host interfaces.Host) []interfaces.User {
	users, ok := s.tree[host]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(users))
}

// HasUser reports whether user has at least one key on host.
func (s *KeySnapshot) HasUser(host interfaces.Host, user interfaces.User) bool {
	_, ok := s.tree[host][user]
	return ok
}

// KeyTypes returns the key types stored for user on host in lexicographic
// order, or nil if absent.
func (s *KeySnapshot) KeyTypes(host interfaces.Host, user interfaces.User) []interfaces.KeyType {
	keys, ok := s.tree[host][user]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(keys))
}

// Record returns the stored key for the triple. The returned slice is a copy.
func (s *KeySnapshot) Record(host interfaces.Host, user interfaces.User, kt interfaces.KeyType) (interfaces.KeyRecord, bool) {
	rec, ok := s.tree[host][user][kt]
	if !ok {
		return nil, false
	}
	return slices.Clone(rec), true
}
