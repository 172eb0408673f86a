package tracker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/common"
)

// DefaultLockStaleAfter is how old a lock file must be before a new run may
// take it over.
const DefaultLockStaleAfter = 6 * time.Hour

// Lock is an advisory run lock held as an exclusively created file.
type Lock struct {
	path string
}

// AcquireLock creates the lock file at path. It fails with
// common.ErrRunInProgress while another run holds a lock younger than
// staleAfter; older locks are replaced.
func AcquireLock(path string, staleAfter time.Duration) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			_, writeErr := f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
			closeErr := f.Close()
			if err := errors.Join(writeErr, closeErr); err != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("failed to write lock file: %w", err)
			}
			return &Lock{path: path}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		info, statErr := os.Stat(path)
		if statErr != nil || staleAfter <= 0 || time.Since(info.ModTime()) < staleAfter {
			return nil, fmt.Errorf("%w: lock held at %s", common.ErrRunInProgress, path)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale lock: %w", err)
		}
	}

	return nil, fmt.Errorf("%w: lock held at %s", common.ErrRunInProgress, path)
}

// Release removes the lock file.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
