package applifting

import "github.com/google/uuid"

// RegisterProductRequest describes a product to register. The caller picks
// the ID.
type RegisterProductRequest struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// RegisterProductResponse is the API's acknowledgement of a registration.
type RegisterProductResponse struct {
	ID uuid.UUID `json:"id"`
}

// Offer is one seller's offer for a product.
type Offer struct {
	ID uuid.UUID `json:"id"`
	// Price in cents.
	Price        int `json:"price"`
	ItemsInStock int `json:"items_in_stock"`
}
