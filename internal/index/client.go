// Package index is the Index Client: a cached, retrying HTTP lookup
// against a PyPI-compatible JSON API, used as the last step of the
// resolve cascade for modules no static source can name.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/nullpx/pypm/internal/domain"
)

const (
	maxRetries      = 2
	initialBackoff  = 500 * time.Millisecond
	requestTimeout  = 10 * time.Second
	maxResponseSize = 5 << 20 // 5 MiB
	maxRedirects    = 3
	userAgent       = "pypm/dep-inferrer (+https://github.com/nullpx/pypm)"
)

// Lookup is the three-valued answer a distribution name query can give:
// it exists, it definitely does not, or the index could not say either
// way after retries were exhausted.
type Lookup int

const (
	LookupUnknown Lookup = iota
	LookupExists
	LookupAbsent
)

// Metadata is the subset of a PyPI JSON API project document the
// resolver needs: the latest version and the extras (optional
// dependency groups) a distribution declares.
type Metadata struct {
	LatestVersion string
	Extras        []string
}

// Client queries a PyPI-compatible JSON index, consulting and
// populating a persistent Cache so repeat runs avoid the network
// entirely for names already resolved.
type Client struct {
	http    *http.Client
	baseURL string
	cache   *Cache
	warn    func(domain.Warning)
}

// New constructs a Client against baseURL (e.g. "https://pypi.org"),
// backed by cache for persistence across runs.
func New(baseURL string, cache *Cache, warn func(domain.Warning)) *Client {
	metrics.init()
	if warn == nil {
		warn = func(domain.Warning) {}
	}
	return &Client{
		http: &http.Client{
			Timeout: requestTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		baseURL: baseURL,
		cache:   cache,
		warn:    warn,
	}
}

// Exists reports whether name is a registered distribution on the
// index, consulting the persistent cache first. A Lookup of
// LookupUnknown means the index could not be reached; callers should
// treat that as "leave unresolved" rather than "does not exist".
func (c *Client) Exists(ctx context.Context, name domain.DistributionName) Lookup {
	if entry, ok := c.cache.Get(name); ok {
		metrics.cacheHit.Inc()
		if entry.Exists {
			return LookupExists
		}
		return LookupAbsent
	}
	metrics.cacheMiss.Inc()

	_, lookup := c.fetch(ctx, name)
	if lookup == LookupUnknown {
		return LookupUnknown
	}
	c.cache.Put(name, lookup == LookupExists)
	return lookup
}

// Metadata fetches latest-version and extras information for name.
// Returns ok=false if the index could not answer; it does not itself
// consult or populate the existence cache's negative-result path.
func (c *Client) Metadata(ctx context.Context, name domain.DistributionName) (Metadata, bool) {
	doc, lookup := c.fetch(ctx, name)
	if lookup != LookupExists {
		return Metadata{}, false
	}
	return Metadata{
		LatestVersion: doc.Info.Version,
		Extras:        extrasFromDoc(doc),
	}, true
}

// indexDoc is the minimal shape of a PyPI JSON API project document.
type indexDoc struct {
	Info struct {
		Version  string   `json:"version"`
		Provides []string `json:"provides_extra"`
	} `json:"info"`
}

func extrasFromDoc(doc indexDoc) []string {
	return doc.Info.Provides
}

// fetch performs the retrying HTTP GET for name's project document,
// with exponential backoff: up to maxRetries extra attempts, each
// preceded by a doubling backoff, abandoned early on context
// cancellation or a non-retryable (4xx other than 404) response.
func (c *Client) fetch(ctx context.Context, name domain.DistributionName) (indexDoc, Lookup) {
	reqURL, err := c.urlFor(name)
	if err != nil {
		c.warn(domain.Warning{Kind: domain.WarnTransient, Subject: string(name), Message: err.Error()})
		return indexDoc{}, LookupUnknown
	}

	backoff := initialBackoff
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return indexDoc{}, LookupUnknown
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		doc, status, err := c.doRequest(ctx, reqURL)
		if err == nil {
			switch status {
			case http.StatusOK:
				metrics.lookupHit.Inc()
				return doc, LookupExists
			case http.StatusNotFound:
				metrics.lookupMiss.Inc()
				return indexDoc{}, LookupAbsent
			}
			lastErr = fmt.Errorf("unexpected status %d", status)
			if !isRetryableStatus(status) {
				break
			}
			continue
		}
		lastErr = err
	}

	metrics.lookupUnknown.Inc()
	c.warn(domain.Warning{
		Kind:    domain.WarnTransient,
		Subject: string(name),
		Message: fmt.Sprintf("index lookup failed after retries: %s", lastErr),
	})
	return indexDoc{}, LookupUnknown
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (indexDoc, int, error) {
	start := time.Now()
	defer func() { metrics.requestSecs.Observe(time.Since(start).Seconds()) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return indexDoc{}, 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return indexDoc{}, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return indexDoc{}, resp.StatusCode, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return indexDoc{}, resp.StatusCode, err
	}
	if len(body) > maxResponseSize {
		return indexDoc{}, resp.StatusCode, fmt.Errorf("response exceeds %d bytes", maxResponseSize)
	}

	var doc indexDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return indexDoc{}, resp.StatusCode, fmt.Errorf("invalid JSON response: %w", err)
	}
	return doc, resp.StatusCode, nil
}

func (c *Client) urlFor(name domain.DistributionName) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid index base URL: %w", err)
	}
	u.RawPath = fmt.Sprintf("%s/pypi/%s/json", trimSlash(u.EscapedPath()), url.PathEscape(string(name)))
	u.Path = fmt.Sprintf("%s/pypi/%s/json", trimSlash(u.Path), string(name))
	return u.String(), nil
}

func trimSlash(p string) string {
	if len(p) > 0 && p[len(p)-1] == '/' {
		return p[:len(p)-1]
	}
	return p
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// ExistsKnown adapts Exists to the (exists, known) shape the Resolver
// consumes: known is false when the index could not say either way,
// in which case exists is meaningless and must not be treated as a
// negative result.
func (c *Client) ExistsKnown(ctx context.Context, name domain.DistributionName) (exists bool, known bool) {
	switch c.Exists(ctx, name) {
	case LookupExists:
		return true, true
	case LookupAbsent:
		return false, true
	default:
		return false, false
	}
}
