package apierror

import (
	"errors"
	"net/http"

	retry "github.com/appleboy/go-httpretry"
)

// Settle interprets what a retrying Doer returned. When retries ran out on a
// retryable status, the last response is returned without error so its status
// can be mapped by FromResponse. Any other failure closes resp and is
// translated with FromTransport.
func Settle(resp *http.Response, err error) (*http.Response, error) {
	if err == nil {
		return resp, nil
	}

	var retryErr *retry.RetryError
	if resp != nil && errors.As(err, &retryErr) && retryErr.LastErr == nil {
		return resp, nil
	}

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return nil, FromTransport(err)
}
