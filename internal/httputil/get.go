// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// MaxBodyBytes caps how much of a response body Get reads. Tests lower it
// to exercise truncation.
var MaxBodyBytes int64 = 32 << 20

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// StatusError reports a non-2xx HTTP status. Body holds the start of the
// response body for diagnostics.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Get issues a GET request and reads the whole body. A non-2xx status is
// returned as a *StatusError together with the response so callers can
// still report the body. Requests are never retried; callers own pacing.
func Get(ctx context.Context, client *http.Client, rawURL, userAgent string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		// *url.Error repeats the full URL, query included.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return Response{}, fmt.Errorf("GET %s: %w", redactURL(req), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("reading response body: %w", err)
	}

	out := Response{StatusCode: resp.StatusCode, Body: body}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        redactURL(req),
			Body:       Snippet(body, 200),
		}
	}
	return out, nil
}

// Snippet returns at most n bytes of b, with "..." appended when truncated.
func Snippet(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// redactURL drops the query string so API keys do not leak into errors.
func redactURL(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	return u.String()
}
