package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ruteri/ssh-key-server/interfaces"
	"github.com/ruteri/ssh-key-server/metrics"
	"go.uber.org/atomic"
)

// FileKeyStore implements interfaces.KeyStore on top of a directory tree laid
// out as <baseDir>/<host>/<user>/id_<keyType>.pub.
//
// Readers use the currently installed KeySnapshot without locking. Writers are
// serialized by writeMu, which is held across the filesystem mutation, the
// rescan and the installation of the new snapshot.
type FileKeyStore struct {
	baseDir  string
	detector interfaces.KeyTypeDetector
	log      *slog.Logger

	writeMu  sync.Mutex
	snapshot atomic.Pointer[KeySnapshot]
}

// NewFileKeyStore checks the key directory and loads the initial snapshot.
func NewFileKeyStore(baseDir string, detector interfaces.KeyTypeDetector, log *slog.Logger) (*FileKeyStore, error) {
	if err := CheckKeyDir(baseDir); err != nil {
		return nil, err
	}

	s := &FileKeyStore{
		baseDir:  filepath.Clean(baseDir),
		detector: detector,
		log:      log,
	}
	if err := s.rebuild(); err != nil {
		return nil, fmt.Errorf("failed to load keys: %w", err)
	}

	snap := s.snapshot.Load()
	log.Info("Key store loaded",
		slog.String("keyDir", baseDir),
		slog.Int("hosts", len(snap.Hosts())),
		slog.Int("keys", snap.Len()))

	return s, nil
}

// BaseDir returns the key directory.
func (s *FileKeyStore) BaseDir() string {
	return s.baseDir
}

// Snapshot returns the currently installed snapshot.
func (s *FileKeyStore) Snapshot() *KeySnapshot {
	return s.snapshot.Load()
}

// Get resolves a progressive lookup against the current snapshot.
func (s *FileKeyStore) Get(ctx context.Context, host, user, keyType string) (res *interfaces.GetResult, err error) {
	defer func() { metrics.RecordKeyOperation("get", err) }()

	snap := s.snapshot.Load()

	if host == "" {
		return &interfaces.GetResult{Level: interfaces.HostsLevel, Names: snap.Hosts()}, nil
	}
	if !snap.HasHost(host) {
		return nil, interfaces.NewNotFoundError(interfaces.ResourceHost, host)
	}

	if user == "" {
		return &interfaces.GetResult{Level: interfaces.UsersLevel, Names: snap.Users(host)}, nil
	}
	if !snap.HasUser(host, user) {
		return nil, interfaces.NewNotFoundError(interfaces.ResourceUser, user)
	}

	if keyType == "" {
		types := snap.KeyTypes(host, user)
		names := make([]string, len(types))
		for i, kt := range types {
			names[i] = kt.String()
		}
		return &interfaces.GetResult{Level: interfaces.KeyTypesLevel, Names: names}, nil
	}

	rec, ok := snap.Record(host, user, interfaces.KeyType(keyType))
	if !ok {
		return nil, interfaces.NewNotFoundError(interfaces.ResourceKeyType, keyType)
	}
	return &interfaces.GetResult{Level: interfaces.RecordLevel, Record: rec}, nil
}

// Create stores a key that does not exist yet and returns its detected type.
func (s *FileKeyStore) Create(ctx context.Context, host, user string, key []byte) (kt interfaces.KeyType, err error) {
	defer func() { metrics.RecordKeyOperation("create", err) }()

	if err := validateNames(host, user); err != nil {
		return "", err
	}
	kt, err = s.detect(key)
	if err != nil {
		return "", err
	}

	keyPath := filepath.Join(s.baseDir, KeyPath(host, user, kt))

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	exists, err := fileExists(keyPath)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("%w: %s key for user [%s] on host [%s], use replace", interfaces.ErrConflict, kt, user, host)
	}

	userDir := filepath.Dir(keyPath)
	if err := os.MkdirAll(userDir, dirPerm); err != nil {
		return "", interfaces.NewStorageError("create key directory", userDir, err)
	}
	if err := writeFileAtomic(keyPath, key, filePerm); err != nil {
		// Do not leave directories behind that only the failed write created.
		s.prune(userDir)
		return "", s.resync(interfaces.NewStorageError("write key", keyPath, err))
	}

	if err := s.rebuild(); err != nil {
		return "", err
	}

	s.log.Info("Key created", "host", host, "user", user, "keyType", kt)
	return kt, nil
}

// Replace overwrites an existing key of the detected type.
func (s *FileKeyStore) Replace(ctx context.Context, host, user string, key []byte) (kt interfaces.KeyType, err error) {
	defer func() { metrics.RecordKeyOperation("replace", err) }()

	if err := validateNames(host, user); err != nil {
		return "", err
	}
	kt, err = s.detect(key)
	if err != nil {
		return "", err
	}

	keyPath := filepath.Join(s.baseDir, KeyPath(host, user, kt))

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	exists, err := fileExists(keyPath)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", interfaces.NewNotFoundError(interfaces.ResourceKey, KeyPath(host, user, kt))
	}

	if err := writeFileAtomic(keyPath, key, filePerm); err != nil {
		return "", s.resync(interfaces.NewStorageError("write key", keyPath, err))
	}

	if err := s.rebuild(); err != nil {
		return "", err
	}

	s.log.Info("Key replaced", "host", host, "user", user, "keyType", kt)
	return kt, nil
}

// Delete removes a key, then removes the user directory and the host
// directory if they were left empty.
func (s *FileKeyStore) Delete(ctx context.Context, host, user, keyType string) (err error) {
	defer func() { metrics.RecordKeyOperation("delete", err) }()

	kt := interfaces.KeyType(keyType)
	if !kt.IsSupported() {
		return interfaces.InvalidInputf("unsupported key type [%s]", keyType)
	}
	if err := validateNames(host, user); err != nil {
		return err
	}

	keyPath := filepath.Join(s.baseDir, KeyPath(host, user, kt))

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	exists, err := fileExists(keyPath)
	if err != nil {
		return err
	}
	if !exists {
		return interfaces.NewNotFoundError(interfaces.ResourceKey, KeyPath(host, user, kt))
	}

	if err := os.Remove(keyPath); err != nil {
		return s.resync(interfaces.NewStorageError("remove key", keyPath, err))
	}
	if err := s.prune(filepath.Dir(keyPath)); err != nil {
		return s.resync(err)
	}

	if err := s.rebuild(); err != nil {
		return err
	}

	s.log.Info("Key deleted", "host", host, "user", user, "keyType", kt)
	return nil
}

// Reload rescans the key tree and installs the result.
func (s *FileKeyStore) Reload(ctx context.Context) (err error) {
	defer func() { metrics.RecordKeyOperation("reload", err) }()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.rebuild(); err != nil {
		return err
	}

	s.log.Info("Key store reloaded", "keys", s.snapshot.Load().Len())
	return nil
}

// Available checks that the key directory is still usable.
func (s *FileKeyStore) Available(ctx context.Context) bool {
	if err := CheckKeyDir(s.baseDir); err != nil {
		s.log.Debug("Key directory unavailable", "err", err)
		return false
	}
	return true
}

func (s *FileKeyStore) detect(key []byte) (interfaces.KeyType, error) {
	kt, label, ok := s.detector.Detect(key)
	if !ok {
		return "", interfaces.InvalidInputf("invalid key type, identified as: %s", label)
	}
	if !kt.IsSupported() {
		return "", interfaces.InvalidInputf("unsupported key type [%s], identified as: %s", kt, label)
	}
	return kt, nil
}

// prune removes userDir if it is empty, then its host directory if that is
// empty too. It stops at the first non-empty ancestor and never touches
// baseDir itself. Caller must hold writeMu.
func (s *FileKeyStore) prune(userDir string) error {
	hostDir := filepath.Dir(userDir)
	for _, dir := range []string{userDir, hostDir} {
		if dir == s.baseDir {
			return nil
		}
		removed, err := removeIfEmpty(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return interfaces.NewStorageError("prune directory", dir, err)
		}
		if !removed {
			return nil
		}
	}
	return nil
}

// rebuild rescans the tree and installs the new snapshot. On failure the
// previous snapshot stays installed. Caller must hold writeMu, except during
// construction.
func (s *FileKeyStore) rebuild() error {
	started := time.Now()
	snap, err := LoadSnapshot(s.baseDir)
	if err != nil {
		s.log.Error("Failed to rebuild key snapshot, keeping previous one", "err", err)
		return err
	}

	s.snapshot.Store(snap)
	metrics.ObserveRebuild(started, snap.Len())
	return nil
}

// resync resynchronizes the snapshot with disk after a failed mutation and
// returns the mutation error.
func (s *FileKeyStore) resync(mutationErr error) error {
	if err := s.rebuild(); err != nil {
		return errors.Join(mutationErr, err)
	}
	return mutationErr
}

func validateNames(host, user string) error {
	if !ValidateHost(host) {
		return interfaces.InvalidInputf("invalid host name [%s]", host)
	}
	if !ValidateUser(user) {
		return interfaces.InvalidInputf("invalid user name [%s]", user)
	}
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, interfaces.NewStorageError("stat key", path, err)
}
