package applifting

import (
	"context"
	"net/http"
)

const registerProductPath = "/api/v1/products/register"

// ProductsService handles the /products endpoints.
type ProductsService struct {
	client *Client
}

// Register registers product. Registering an ID twice fails with
// apierror.ErrConflict.
func (s *ProductsService) Register(ctx context.Context, product RegisterProductRequest) (*RegisterProductResponse, error) {
	var resp RegisterProductResponse
	if err := s.client.do(ctx, http.MethodPost, registerProductPath, product, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
