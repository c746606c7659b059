// Package auth manages the access token every API request depends on: it
// exchanges the refresh token for short-lived access tokens, keeps the current
// one in memory and on disk, and refreshes it when it goes stale.
package auth

import (
	"math"
	"time"

	"golang.org/x/oauth2"
)

// Token is an access token and the moment it stops being accepted.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Valid reports whether t can still be used at now, keeping buffer in hand
// before ExpiresAt.
func (t Token) Valid(now time.Time, buffer time.Duration) bool {
	return t.AccessToken != "" && now.Before(t.ExpiresAt.Add(-buffer))
}

// OAuth2 converts t for use with golang.org/x/oauth2. The buffer is folded
// into Expiry so oauth2 consumers stop using the token at the same moment the
// Manager would.
func (t Token) OAuth2(buffer time.Duration) *oauth2.Token {
	return &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   "Bearer",
		Expiry:      t.ExpiresAt.Add(-buffer),
	}
}

// Preview returns at most the first n characters of the access token, for
// display and logs.
func (t Token) Preview(n int) string {
	if len(t.AccessToken) <= n {
		return t.AccessToken
	}
	return t.AccessToken[:n]
}

// unixSeconds converts t to fractional seconds since the epoch, the cache
// file's expiry format.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// fromUnixSeconds is the inverse of unixSeconds. ok is false when s is not a
// number or lies outside the range time.Time can hold in nanoseconds.
func fromUnixSeconds(s float64) (t time.Time, ok bool) {
	ns := s * float64(time.Second)
	if math.IsNaN(ns) || ns < math.MinInt64 || ns >= math.MaxInt64 {
		return time.Time{}, false
	}
	return time.Unix(0, int64(ns)), true
}
