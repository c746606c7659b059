package tui

import (
	"fmt"
	"io"
	"time"

	tea "charm.land/bubbletea/v2"
)

// Displayer abstracts all output from the demo flow.
type Displayer interface {
	Banner()
	ObtainingToken()
	TokenReady(preview string, expiresAt time.Time)
	Registering(id, name string)
	Registered(id string)
	AlreadyRegistered(id string)
	FetchingOffers(productID string)
	OffersReady(offers []OfferRow)
	Fatal(err error)
}

// PlainDisplayer writes plain text output to w.
// Used when stderr is not a TTY (pipes, CI, SSH without pty).
type PlainDisplayer struct {
	w   io.Writer
	now func() time.Time
}

// NewPlainDisplayer creates a PlainDisplayer that writes to w.
func NewPlainDisplayer(w io.Writer) *PlainDisplayer {
	return &PlainDisplayer{w: w, now: time.Now}
}

func (p *PlainDisplayer) Banner() {
	fmt.Fprintln(p.w, "=== Applifting Offers Demo ===")
	fmt.Fprintln(p.w)
}

func (p *PlainDisplayer) ObtainingToken() {
	fmt.Fprintln(p.w, "Obtaining access token...")
}

func (p *PlainDisplayer) TokenReady(preview string, expiresAt time.Time) {
	fmt.Fprintf(p.w, "Access token %s... valid for %s\n",
		preview, formatDuration(expiresAt.Sub(p.now())))
}

func (p *PlainDisplayer) Registering(id, name string) {
	fmt.Fprintf(p.w, "Registering product %q (%s)...\n", name, id)
}

func (p *PlainDisplayer) Registered(id string) {
	fmt.Fprintf(p.w, "Product %s registered\n", id)
}

func (p *PlainDisplayer) AlreadyRegistered(id string) {
	fmt.Fprintf(p.w, "Product %s was already registered\n", id)
}

func (p *PlainDisplayer) FetchingOffers(productID string) {
	fmt.Fprintf(p.w, "Fetching offers for %s...\n", productID)
}

func (p *PlainDisplayer) OffersReady(offers []OfferRow) {
	fmt.Fprintln(p.w, "\n========================================")
	if len(offers) == 0 {
		fmt.Fprintln(p.w, "No offers yet. The offers service may need a minute.")
	}
	for _, o := range offers {
		fmt.Fprintf(p.w, "%s  %10s  %4d in stock\n", o.ID, formatPrice(o.Price), o.ItemsInStock)
	}
	fmt.Fprintln(p.w, "========================================")
}

func (p *PlainDisplayer) Fatal(err error) {
	fmt.Fprintf(p.w, "Error: %v\n", err)
}

// NoopDisplayer is a no-op implementation used by non-interactive commands
// and tests.
type NoopDisplayer struct{}

func (NoopDisplayer) Banner()                          {}
func (NoopDisplayer) ObtainingToken()                  {}
func (NoopDisplayer) TokenReady(_ string, _ time.Time) {}
func (NoopDisplayer) Registering(_, _ string)          {}
func (NoopDisplayer) Registered(_ string)              {}
func (NoopDisplayer) AlreadyRegistered(_ string)       {}
func (NoopDisplayer) FetchingOffers(_ string)          {}
func (NoopDisplayer) OffersReady(_ []OfferRow)         {}
func (NoopDisplayer) Fatal(_ error)                    {}

// ProgramDisplayer sends BubbleTea messages to a running tea.Program.
type ProgramDisplayer struct {
	p *tea.Program
}

// NewProgramDisplayer creates a ProgramDisplayer that sends messages to p.
func NewProgramDisplayer(p *tea.Program) *ProgramDisplayer {
	return &ProgramDisplayer{p: p}
}

func (t *ProgramDisplayer) Banner() {
	t.p.Send(MsgBanner{})
}

func (t *ProgramDisplayer) ObtainingToken() {
	t.p.Send(MsgObtainingToken{})
}

func (t *ProgramDisplayer) TokenReady(preview string, expiresAt time.Time) {
	t.p.Send(MsgTokenReady{Preview: preview, ExpiresAt: expiresAt})
}

func (t *ProgramDisplayer) Registering(id, name string) {
	t.p.Send(MsgRegistering{ID: id, Name: name})
}

func (t *ProgramDisplayer) Registered(id string) {
	t.p.Send(MsgRegistered{ID: id})
}

func (t *ProgramDisplayer) AlreadyRegistered(id string) {
	t.p.Send(MsgAlreadyRegistered{ID: id})
}

func (t *ProgramDisplayer) FetchingOffers(productID string) {
	t.p.Send(MsgFetchingOffers{ProductID: productID})
}

func (t *ProgramDisplayer) OffersReady(offers []OfferRow) {
	t.p.Send(MsgOffersReady{Offers: offers})
}

func (t *ProgramDisplayer) Fatal(err error) {
	t.p.Send(MsgFatal{Err: err})
}
