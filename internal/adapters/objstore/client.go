// Package objstore talks to a Supabase-Storage compatible object API.
package objstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"nobounce_admin/internal/adapters/observability"
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("storage URL is required")
	}
	if key == "" {
		return nil, fmt.Errorf("storage service key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 60 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var (
	ErrUnauthorized = errors.New("storage: unauthorized")
	ErrForbidden    = errors.New("storage: forbidden")
	ErrConflict     = errors.New("storage: object already exists")
)

// Upload stores data at bucket/key. With overwrite the object is replaced when present,
// otherwise an existing object makes the call fail with ErrConflict. Nothing is retried.
func (c *Client) Upload(ctx context.Context, bucket, key string, data []byte, contentType string, overwrite bool) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(bucket, key), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("apikey", c.key)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", strconv.FormatBool(overwrite))
	req.Header.Set("User-Agent", "nobounce-admin/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("storage", "upload", 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("storage upload %s: %w", key, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("storage", "upload", resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case resp.StatusCode == http.StatusConflict:
		return ErrConflict
	default:
		return fmt.Errorf("storage upload %s: status %d: %s", key, resp.StatusCode, errorMessage(resp.Body))
	}
}

// PublicURL is derived from bucket and key alone; it does not check the object exists.
func (c *Client) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.base, escapeSegment(bucket), escapeKey(key))
}

func (c *Client) objectURL(bucket, key string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", c.base, escapeSegment(bucket), escapeKey(key))
}

// errorMessage pulls "message"/"error" out of a JSON error body, or returns the raw text.
func errorMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(b))
}
