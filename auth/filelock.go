package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// A write holds the lock for a few milliseconds, so a lock file older than
// staleLockAge was left behind by a writer that died.
const (
	defaultLockWait = time.Second
	lockPollMin     = 5 * time.Millisecond
	lockPollMax     = 50 * time.Millisecond
	staleLockAge    = 10 * time.Second
)

var errLockBusy = errors.New("cache file is locked by another writer")

// cacheLock is a <cache>.lock file created exclusively by the writer that
// holds it.
type cacheLock struct {
	path string
	file *os.File
}

// lockCache takes the lock for cachePath. While another writer holds it,
// lockCache polls with growing pauses and gives up once wait has elapsed.
func lockCache(cachePath string, wait time.Duration) (*cacheLock, error) {
	path := cachePath + ".lock"
	deadline := time.Now().Add(wait)
	pause := lockPollMin

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		switch {
		case err == nil:
			fmt.Fprintf(f, "%d", os.Getpid())
			return &cacheLock{path: path, file: f}, nil
		case !errors.Is(err, fs.ErrExist):
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		case removeStaleLock(path):
			continue
		}

		if time.Now().Add(pause).After(deadline) {
			return nil, fmt.Errorf("%w after %v", errLockBusy, wait)
		}
		time.Sleep(pause)
		pause = min(2*pause, lockPollMax)
	}
}

// removeStaleLock reports whether the lock at path is gone, removing it first
// when it is stale.
func removeStaleLock(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	if err != nil || time.Since(info.ModTime()) < staleLockAge {
		return false
	}
	err = os.Remove(path)
	return err == nil || errors.Is(err, fs.ErrNotExist)
}

// unlock closes and removes the lock file. A second unlock reports the
// missing file.
func (l *cacheLock) unlock() error {
	var closeErr error
	if l.file != nil {
		closeErr = l.file.Close()
		l.file = nil
	}
	return errors.Join(closeErr, os.Remove(l.path))
}
