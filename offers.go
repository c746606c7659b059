package applifting

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// OffersService handles the /products/{id}/offers endpoint.
type OffersService struct {
	client *Client
}

// List returns the current offers for a registered product.
func (s *OffersService) List(ctx context.Context, productID uuid.UUID) ([]Offer, error) {
	var offers []Offer
	endpoint := fmt.Sprintf("/api/v1/products/%s/offers", productID)
	if err := s.client.do(ctx, http.MethodGet, endpoint, nil, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}
