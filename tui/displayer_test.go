package tui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	_ Displayer = (*PlainDisplayer)(nil)
	_ Displayer = NoopDisplayer{}
	_ Displayer = (*ProgramDisplayer)(nil)
)

func TestPlainDisplayer(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewPlainDisplayer(&buf)
	d.now = func() time.Time { return now }

	d.Banner()
	d.ObtainingToken()
	d.TokenReady("abcdefgh", now.Add(90*time.Second))
	d.Registering("p-1", "Desk lamp")
	d.Registered("p-1")
	d.FetchingOffers("p-1")
	d.OffersReady([]OfferRow{{ID: "o-1", Price: 250, ItemsInStock: 7}})
	d.Fatal(errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "=== Applifting Offers Demo ===")
	assert.Contains(t, out, "Access token abcdefgh... valid for 1m 30s")
	assert.Contains(t, out, `Registering product "Desk lamp" (p-1)...`)
	assert.Contains(t, out, "Product p-1 registered")
	assert.Contains(t, out, "Fetching offers for p-1...")
	assert.Contains(t, out, "o-1")
	assert.Contains(t, out, "2.50")
	assert.Contains(t, out, "7 in stock")
	assert.Contains(t, out, "Error: boom")
}

func TestPlainDisplayer_NoOffers(t *testing.T) {
	var buf bytes.Buffer
	NewPlainDisplayer(&buf).OffersReady(nil)
	assert.Contains(t, buf.String(), "No offers yet")
}
