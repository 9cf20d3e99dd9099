package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/cenkalti/backoff/v4"
	"safety-analytics-go/internal/logger"
	"safety-analytics-go/internal/types"
)

// Fetcher downloads remote exports, retrying transport failures and 5xx
// responses with exponential backoff. 4xx responses fail immediately.
type Fetcher struct {
	Client  *http.Client
	MaxWait time.Duration
	// MaxBytes caps the body size; 0 means unlimited.
	MaxBytes int64
	// Log defaults to logger.New().
	Log *logger.Logger
}

func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: timeout},
		MaxWait:  timeout,
		MaxBytes: maxBytes,
	}
}

// Fetch downloads rawURL and parses it by the extension of its path.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]types.Row, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}
	body, err := f.download(ctx, u.String())
	if err != nil {
		return nil, err
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		name = ""
	}
	return Read(name, bytes.NewReader(body))
}

func (f *Fetcher) download(ctx context.Context, target string) ([]byte, error) {
	base := f.Log
	if base == nil {
		base = logger.New()
	}
	log := base.WithComponent("dataset.fetch").WithField("url", target)
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	if f.MaxWait > 0 {
		bo.MaxElapsedTime = f.MaxWait
	}

	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			log.WithField("attempt", attempt).WithError(err).Warn("fetch failed, retrying")
			return err
		}
		defer resp.Body.Close()

		var rd io.Reader = resp.Body
		if f.MaxBytes > 0 {
			rd = io.LimitReader(resp.Body, f.MaxBytes+1)
		}
		b, err := io.ReadAll(rd)
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode >= 500:
			log.WithField("attempt", attempt).WithField("status", resp.StatusCode).Warn("server error, retrying")
			return fmt.Errorf("server error: %s", resp.Status)
		case resp.StatusCode >= 300:
			return backoff.Permanent(fmt.Errorf("download failed: %s", resp.Status))
		}
		if f.MaxBytes > 0 && int64(len(b)) > f.MaxBytes {
			return backoff.Permanent(fmt.Errorf("body exceeds %d bytes", f.MaxBytes))
		}
		body = b
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	log.WithField("bytes", len(body)).WithField("attempts", attempt).Debug("fetched")
	return body, nil
}
