package applifting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	retry "github.com/appleboy/go-httpretry"

	"github.com/applifting/applifting-sdk-go/apierror"
	"github.com/applifting/applifting-sdk-go/auth"
)

// do sends an authenticated request to endpoint. in, when non-nil, is sent as
// the JSON body; a 2xx body is decoded into out when out is non-nil.
//
// A 401 means the access token was revoked before its assumed expiry: it is
// dropped and the request is sent once more with a new token.
func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	resp, token, err := c.send(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.logger.Debug().Str("path", endpoint).Msg("access token rejected, refreshing")
		c.tokens.Invalidate(token)

		resp, _, err = c.send(ctx, method, endpoint, body)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", endpoint).
		Int("status", resp.StatusCode).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apierror.FromResponse(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// send performs one attempt with the current access token and returns the
// token it used.
func (c *Client) send(ctx context.Context, method, endpoint string, body []byte) (*http.Response, auth.Token, error) {
	token, err := c.tokens.ValidToken(ctx)
	if err != nil {
		return nil, auth.Token{}, fmt.Errorf("failed to obtain access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(endpoint), nil)
	if err != nil {
		return nil, token, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		retry.WithBody("application/json", bytes.NewReader(body))(req)
	}
	req.Header.Set(auth.CredentialHeader, token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := apierror.Settle(c.http.DoWithContext(ctx, req))
	if err != nil {
		return nil, token, fmt.Errorf("%s %s failed: %w", method, endpoint, err)
	}
	return resp, token, nil
}

func (c *Client) url(endpoint string) string {
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}
