// Package qr fetches QR code images from a third-party HTTP image service.
package qr

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL is the public qrserver.com endpoint the original
	// deployment pointed at.
	DefaultBaseURL = "https://api.qrserver.com/v1/create-qr-code/"

	// CodeTTL is the client-tracked lifetime of a fetched code, independent
	// of anything the server might do with the encoded link.
	CodeTTL = 30 * time.Minute

	maxImageSize = 2 * 1024 * 1024
)

// Code is a fetched QR image plus its client-side expiry.
type Code struct {
	PNG       []byte    `json:"-"`
	DataURI   string    `json:"data_uri"`
	Target    string    `json:"target"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the client-tracked lifetime has run out.
func (c *Code) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// Fetch downloads one QR PNG encoding the target URL and wraps it as an
// embeddable data URI with a 30-minute client-side expiry.
func (c *Client) Fetch(ctx context.Context, target string, sizePx int) (*Code, error) {
	if target == "" {
		return nil, fmt.Errorf("qr: target URL is required")
	}
	if sizePx < 64 {
		sizePx = 256
	}

	q := url.Values{}
	q.Set("data", target)
	q.Set("size", fmt.Sprintf("%dx%d", sizePx, sizePx))
	q.Set("format", "png")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("qr: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qr: fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("qr: service returned status %d", resp.StatusCode)
	}

	png, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("qr: read image: %w", err)
	}
	if len(png) == 0 {
		return nil, fmt.Errorf("qr: service returned an empty image")
	}

	now := time.Now().UTC()
	return &Code{
		PNG:       png,
		DataURI:   "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		Target:    target,
		FetchedAt: now,
		ExpiresAt: now.Add(CodeTTL),
	}, nil
}
