package storage

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// CheckKeyDir verifies that dir exists, is a directory and is both readable
// and writable by the current process.
func CheckKeyDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("keys dir is not available: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("keys dir is not a directory: %s", dir)
	}
	if err := unix.Access(dir, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("keys dir not writable or readable: %s: %w", dir, err)
	}
	return nil
}
