// Package httpclient wraps the REST calls book initializers and metadata
// fetches need (depth snapshots, tick-size/ticker info, KuCoin's
// bootstrap token),
// grounded on the teacher's market/api_client.go timeout+proxy pattern but
// built on resty instead of a raw *http.Client, per SPEC_FULL.md §7.
package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client is a thin, stateless, shareable REST client: one per adapter,
// safe for concurrent use across every instrument's init call (spec.md
// §5's shared-resource policy).
type Client struct {
	resty *resty.Client
}

// New builds a Client with the given timeout, honoring HTTPS_PROXY /
// HTTP_PROXY from the environment the same way the teacher's APIClient
// does.
func New(timeout time.Duration) *Client {
	c := resty.New().SetTimeout(timeout)
	if proxyURL := proxyFromEnv(); proxyURL != nil {
		c.SetProxy(proxyURL.String())
	}
	return &Client{resty: c}
}

func proxyFromEnv() *url.URL {
	for _, key := range []string{"HTTPS_PROXY", "https_proxy", "HTTP_PROXY", "http_proxy"} {
		if raw := os.Getenv(key); raw != "" {
			if parsed, err := url.Parse(raw); err == nil {
				return parsed
			}
		}
	}
	return nil
}

// GetJSON issues a GET and unmarshals the JSON body into out. Non-2xx
// responses surface as an error carrying the status and body so callers
// can wrap it as wire.NewHTTP.
func (c *Client) GetJSON(ctx context.Context, url string, out interface{}) error {
	resp, err := c.resty.R().
		SetContext(ctx).
		SetResult(out).
		Get(url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode(), resp.String())
	}
	return nil
}

// PostJSON issues a POST with a JSON body and unmarshals the JSON
// response into out, used by KuCoin's bootstrap-token endpoint.
func (c *Client) PostJSON(ctx context.Context, url string, body interface{}, out interface{}) error {
	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(out).
		Post(url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("POST %s: status %d: %s", url, resp.StatusCode(), resp.String())
	}
	return nil
}
