// Package source holds the HTTP plumbing shared by the upstream API clients.
package source

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds a single upstream request.
const DefaultTimeout = 10 * time.Second

type ClientConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// NewClient returns a resty client with an explicit timeout. Retries stay
// disabled: the polling interval is the only retry mechanism.
func NewClient(cfg ClientConfig) *resty.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	client.SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	return client
}

// GetJSON performs a GET and returns the response body. Network errors and
// non-2xx statuses are reported as ErrTransport.
func GetJSON(ctx context.Context, client *resty.Client, name, url string) ([]byte, error) {
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, TransportError(name, err)
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, &Error{Source: name, Kind: ErrTransport, Status: resp.StatusCode()}
	}
	return resp.Body(), nil
}

// Decode unmarshals body into v, reporting failures as ErrDecode.
func Decode(name string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return DecodeError(name, err)
	}
	return nil
}
