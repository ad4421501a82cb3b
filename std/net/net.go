// Package net loads pages from the local filesystem or over HTTP(S).
package net

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const userAgent = "scrollreveal/1.0 (compatible; Go)"

// MaxPageSize bounds how much of a response body is read.
const MaxPageSize = 8 << 20

// httpClient is a shared HTTP client with reasonable timeouts.
var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// Fetch retrieves the content at the given URL via HTTP/HTTPS.
// Returns the response body, content type, and any error.
func Fetch(ctx context.Context, rawURL string) (body []byte, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, rawURL)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, MaxPageSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > MaxPageSize {
		return nil, "", fmt.Errorf("fetching %s: page larger than %d bytes", rawURL, MaxPageSize)
	}

	contentType = resp.Header.Get("Content-Type")
	return body, contentType, nil
}

// ReadPage returns the markup at ref, which is either an HTTP(S) URL or a
// file path.
func ReadPage(ctx context.Context, ref string) (string, error) {
	if IsNetworkURL(ref) {
		body, contentType, err := Fetch(ctx, ref)
		if err != nil {
			return "", err
		}
		if contentType != "" && !strings.Contains(contentType, "html") {
			return "", fmt.Errorf("fetching %s: unexpected content type %q", ref, contentType)
		}
		return string(body), nil
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// IsNetworkURL returns true if the string looks like an HTTP or HTTPS URL.
func IsNetworkURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
