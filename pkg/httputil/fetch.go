package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/linkroute/pkg/buildinfo"
	"github.com/matzehuels/linkroute/pkg/errors"
)

// DefaultMaxBytes limits a single download.
const DefaultMaxBytes = 32 << 20

// IsURL reports whether s is an http or https URL rather than a file path.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Scheme, "http") || strings.EqualFold(u.Scheme, "https")
}

// Resolve returns ref relative to base, for a cost image named inside a
// remote scene.
func Resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "base url %s", base)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "reference %s", ref)
	}
	return b.ResolveReference(r).String(), nil
}

// Fetcher downloads remote inputs.
type Fetcher struct {
	Client   *http.Client
	Backoff  Backoff
	MaxBytes int64
}

// NewFetcher returns a fetcher with a 30 second client timeout and the
// default backoff and size limit.
func NewFetcher() *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: 30 * time.Second},
		Backoff:  DefaultBackoff,
		MaxBytes: DefaultMaxBytes,
	}
}

// Get downloads rawURL and returns the body.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if !IsURL(rawURL) {
		return nil, errors.New(errors.ErrCodeInvalidPath, "not an http(s) url: %s", rawURL)
	}
	var data []byte
	err := Retry(ctx, f.Backoff, func() error {
		var err error
		data, err = f.get(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "request %s", rawURL)
	}
	req.Header.Set("User-Agent", "linkroute/"+buildinfo.Version)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeInternal, err, "fetch %s", rawURL)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, rawURL); err != nil {
		return nil, err
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeInternal, err, "read %s", rawURL)}
	}
	if int64(len(data)) > limit {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s exceeds %d bytes", rawURL, limit)
	}
	return data, nil
}

func checkStatus(code int, rawURL string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return errors.New(errors.ErrCodeFileNotFound, "%s: status %d", rawURL, code)
	case code == http.StatusTooManyRequests || code >= 500:
		return &RetryableError{Err: fmt.Errorf("%s: status %d", rawURL, code)}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "%s: status %d", rawURL, code)
	}
}
