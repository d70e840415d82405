// Package fetch downloads rendered diagrams from a PlantUML server.
package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

// Client downloads image references with retries.
type Client struct {
	http *retryablehttp.Client
}

// NewClient returns a Client retrying failed requests up to retryMax times.
func NewClient(retryMax int) *Client {
	c := retryablehttp.NewClient()
	c.RetryMax = retryMax
	c.RetryWaitMin = 200 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.Logger = nil
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return &Client{http: c}
}

// Image is a downloaded diagram.
type Image struct {
	ContentType string
	Data        []byte
}

// Fetch downloads the image behind src.
func (c *Client) Fetch(ctx context.Context, src string) (*Image, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("plantuml server returned an error: %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}
	return &Image{
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
