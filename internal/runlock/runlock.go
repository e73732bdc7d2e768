// Package runlock guards single-instance daemon startup with a
// flock-protected pidfile, so two `relay serve` processes never share one
// relay home.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"
)

// Lock is a held run lock
type Lock struct {
	file *os.File
	path string
}

// Acquire takes the exclusive run lock at path, writing the holder's pid
// into it. Fails immediately when another process holds it.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := tryLockFile(file); err != nil {
		file.Close()
		return nil, fmt.Errorf("another relay serve is already running: %w", err)
	}

	if err := file.Truncate(0); err == nil {
		fmt.Fprintf(file, "%d\n", os.Getpid())
	}

	return &Lock{file: file, path: path}, nil
}

// Release drops the lock and removes the pidfile
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	defer l.file.Close()

	if err := unlockFile(l.file); err != nil {
		return err
	}
	os.Remove(l.path)
	return nil
}
