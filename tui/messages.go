package tui

import (
	"time"
)

// OfferRow is one offer as shown to the user.
type OfferRow struct {
	ID           string
	Price        int // cents
	ItemsInStock int
}

// MsgBanner signals that the banner/title should be displayed.
type MsgBanner struct{}

// MsgObtainingToken signals that an access token is being obtained.
type MsgObtainingToken struct{}

// MsgTokenReady signals that a valid access token is available.
type MsgTokenReady struct {
	Preview   string
	ExpiresAt time.Time
}

// MsgRegistering signals that a product registration is in progress.
type MsgRegistering struct {
	ID   string
	Name string
}

// MsgRegistered signals that the product was registered.
type MsgRegistered struct{ ID string }

// MsgAlreadyRegistered signals that the product was registered earlier.
type MsgAlreadyRegistered struct{ ID string }

// MsgFetchingOffers signals that offers are being requested.
type MsgFetchingOffers struct{ ProductID string }

// MsgOffersReady carries the offers for the product.
type MsgOffersReady struct{ Offers []OfferRow }

// MsgFatal signals a fatal error that should terminate the flow.
type MsgFatal struct{ Err error }
