package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	DefaultRetries   = 2
	DefaultBaseDelay = 900 * time.Millisecond
	DefaultStepDelay = 700 * time.Millisecond

	maxBodySize = 16 << 20
)

var (
	ErrFetchFailed = errors.New("fetch failed")
	// ErrNotFound is reported when the origin itself answers 404.
	ErrNotFound = errors.New("resource not found")
)

// StatusError is a non-2xx answer from a proxy or the origin.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return "unexpected status " + e.Status
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// FetchError is returned once every proxy failed on every pass.
type FetchError struct {
	URL    string
	Passes int
	Reason error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d passes: %v", e.URL, e.Passes, e.Reason)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailed, e.Reason}
}

// LinearBackoff waits base plus step for every previous retry.
func LinearBackoff(base, step time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		return base + step*time.Duration(attempt)
	}
}

type FetcherOptions struct {
	Client  *http.Client
	Proxies []Proxy
	// Retries is the number of extra passes over the whole proxy list.
	Retries int
	Backoff func(attempt int) time.Duration
	// Limiter paces every request issued, proxied or not.
	Limiter *rate.Limiter
}

// Fetcher GETs JSON documents through an ordered list of proxies. A proxy
// that errors, answers non-2xx or returns something that is not a JSON
// object or array is skipped; when a whole pass fails the list is retried
// from the top after a backoff.
type Fetcher struct {
	client  *http.Client
	proxies []Proxy
	retries int
	backoff func(attempt int) time.Duration
	limiter *rate.Limiter
}

func NewFetcher(opts FetcherOptions) *Fetcher {
	f := &Fetcher{
		client:  opts.Client,
		proxies: opts.Proxies,
		retries: opts.Retries,
		backoff: opts.Backoff,
		limiter: opts.Limiter,
	}
	if f.client == nil {
		f.client = NewHTTPClient(0)
	}
	if len(f.proxies) == 0 {
		f.proxies, _ = ProxiesByName(DefaultProxyNames)
	}
	if f.retries < 0 {
		f.retries = 0
	}
	if f.backoff == nil {
		f.backoff = LinearBackoff(DefaultBaseDelay, DefaultStepDelay)
	}
	return f
}

// FetchJSON decodes the document at target into v.
func (f *Fetcher) FetchJSON(ctx context.Context, target string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	passes := 0
	var reason error
	err := retry.Do(
		func() error {
			passes++
			err := f.pass(ctx, target, v)
			if err != nil {
				reason = err
			}
			if errors.Is(err, ErrNotFound) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(f.retries+1)),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			// n counts finished passes, starting at 1.
			d := f.backoff(int(n) - 1)
			Debug("retrying fetch", "url", target, "pass", n+1, "delay", d)
			return d
		}),
	)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if reason == nil {
		reason = errors.New("no proxy produced a response")
	}
	if errors.Is(reason, ErrNotFound) {
		Debug("resource not found", "url", target)
		return &FetchError{URL: target, Passes: passes, Reason: reason}
	}
	Warn("fetch failed", "url", target, "passes", passes, "err", reason)
	return &FetchError{URL: target, Passes: passes, Reason: reason}
}

// pass tries each proxy once, in order, and stops at the first good body.
// A 404 from the origin ends the pass since no proxy can do better.
func (f *Fetcher) pass(ctx context.Context, target string, v any) error {
	var last error
	for _, proxy := range f.proxies {
		if err := ctx.Err(); err != nil {
			return retry.Unrecoverable(err)
		}

		body, err := f.get(ctx, proxy.Build(target))
		if err == nil {
			err = json.Unmarshal(body, v)
		}
		if err == nil {
			return nil
		}

		last = errors.Wrapf(err, "proxy %s", proxy.Name)
		if proxy.Origin && errors.Is(err, ErrNotFound) {
			return last
		}
		Debug("proxy soft failure", "proxy", proxy.Name, "url", target, "err", err)
	}
	return last
}

func (f *Fetcher) get(ctx context.Context, u string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "shinobix")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read body")
	}
	return checkJSONShape(body)
}

// checkJSONShape rejects bodies that cannot be a JSON document, which is
// what most proxies send when they fail with a 200.
func checkJSONShape(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) < 2 {
		return nil, errors.New("empty response body")
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, errors.Errorf("response is not JSON (starts with %q)", trimmed[0])
	}
	if !json.Valid(trimmed) {
		return nil, errors.New("malformed JSON body")
	}
	return trimmed, nil
}
