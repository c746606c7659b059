package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	cacheDirName  = "applifting_sdk"
	cacheFileName = "token_cache.json"
)

// Cache is durable, best-effort storage for the last issued token.
type Cache interface {
	// Read returns the stored token. ok is false when nothing usable is
	// stored; Read never fails.
	Read() (token Token, ok bool)
	// Write replaces the stored token.
	Write(token Token) error
}

// cacheEntry is the on-disk format. Pointer fields tell a missing key from a
// zero value.
type cacheEntry struct {
	AccessToken *string  `json:"access_token"`
	ExpiresAt   *float64 `json:"expires_at"`
}

// FileCache stores the token as JSON in a single file shared by every process
// of the same user.
type FileCache struct {
	path     string
	lockWait time.Duration
}

// NewFileCache returns a FileCache backed by path.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path, lockWait: defaultLockWait}
}

// DefaultCachePath returns the token cache location inside the user's cache
// directory.
func DefaultCachePath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache dir: %w", err)
	}
	return filepath.Join(dir, cacheDirName, cacheFileName), nil
}

// Path returns the backing file.
func (c *FileCache) Path() string {
	return c.path
}

// Read loads the token from disk. A missing, unreadable, malformed or
// incomplete file is a miss, as is an expiry out of range.
func (c *FileCache) Read() (Token, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return Token{}, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Token{}, false
	}

	if entry.AccessToken == nil || *entry.AccessToken == "" || entry.ExpiresAt == nil {
		return Token{}, false
	}

	expiresAt, ok := fromUnixSeconds(*entry.ExpiresAt)
	if !ok {
		return Token{}, false
	}

	return Token{
		AccessToken: *entry.AccessToken,
		ExpiresAt:   expiresAt,
	}, true
}

// Write stores token on disk. The content goes to a temp file that is renamed
// over the cache file, so a concurrent Read sees either the old or the new
// token. Writers in other processes are serialized by a lock file; when it
// stays busy past the lock wait, Write fails and the token is not stored.
func (c *FileCache) Write(token Token) (err error) {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	lock, err := lockCache(c.path, c.lockWait)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer func() {
		if unlockErr := lock.unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("failed to release lock: %w", unlockErr)
		}
	}()

	expiresAt := unixSeconds(token.ExpiresAt)
	data, err := json.Marshal(cacheEntry{
		AccessToken: &token.AccessToken,
		ExpiresAt:   &expiresAt,
	})
	if err != nil {
		return err
	}

	tempFile := c.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempFile, c.path); err != nil {
		if removeErr := os.Remove(tempFile); removeErr != nil {
			return fmt.Errorf(
				"failed to rename temp file: %v; additionally failed to remove temp file: %w",
				err,
				removeErr,
			)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
