package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memCache is an in-memory Cache that counts its use.
type memCache struct {
	mu       sync.Mutex
	token    Token
	ok       bool
	writeErr error

	reads  atomic.Int32
	writes atomic.Int32
}

func (c *memCache) Read() (Token, bool) {
	c.reads.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.ok
}

func (c *memCache) Write(token Token) error {
	c.writes.Add(1)
	if c.writeErr != nil {
		return c.writeErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token, c.ok = token, true
	return nil
}

// authServer fakes the auth endpoint and counts the exchanges it serves.
type authServer struct {
	*httptest.Server
	calls atomic.Int32
}

// newAuthServer serves handle for every request. n is the 1-based call number.
func newAuthServer(t *testing.T, handle func(w http.ResponseWriter, r *http.Request, n int32)) *authServer {
	t.Helper()

	s := &authServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle(w, r, s.calls.Add(1))
	}))
	t.Cleanup(s.Close)
	return s
}

// issuing returns a handler answering 201 with access tokens T1, T2, ...
func issuing() func(w http.ResponseWriter, r *http.Request, n int32) {
	return func(w http.ResponseWriter, r *http.Request, n int32) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"access_token": "T" + strconv.Itoa(int(n)),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
