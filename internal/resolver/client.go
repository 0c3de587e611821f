// Package resolver provides a client for the bili-music resolution API,
// which maps a numeric av ID to a playable audio URL and its metadata.
package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/llehouerou/bilimusic/internal/avbv"
	"github.com/llehouerou/bilimusic/internal/logging"
	"github.com/llehouerou/bilimusic/internal/metrics"
)

// ErrResolution is returned when the resolver cannot be reached or answers
// with something unusable.
var ErrResolution = errors.New("resolution failed")

const (
	// DefaultBaseURL is the public resolver instance.
	DefaultBaseURL = "https://bili-music.hk.cn2.nickdoth.cc"
	defaultTimeout = 10 * time.Second
	userAgent      = "bilimusic/1.0 (https://github.com/llehouerou/bilimusic)"
)

// Result is a resolved video.
type Result struct {
	CanonicalID string // "av" form, used as the playlist key
	Title       string
	Pic         string
	AudioURL    string
}

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, <= 0 disables limiting
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client is a resolver API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// New creates a new resolver client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     opts.Logger.With("component", "resolver"),
	}
}

// response is the wire shape of GET /playurl/av{id}.
type response struct {
	AURL  string     `json:"aurl"`
	AVID  flexString `json:"avid"`
	BVID  string     `json:"bvid"`
	Title string     `json:"title"`
	Pic   string     `json:"pic"`
}

// ResolveInput extracts a video ID from free text and resolves it.
// An av ID is looked for first, then a bv ID. Input carrying neither fails
// with avbv.ErrInvalidID before any request is made.
func (c *Client) ResolveInput(ctx context.Context, input string) (*Result, error) {
	id, err := extractID(input)
	if err != nil {
		metrics.ResolveTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return nil, err
	}
	return c.Resolve(ctx, id)
}

func extractID(input string) (string, error) {
	if n, ok := avbv.ExtractAV(input); ok {
		return n, nil
	}
	if bv, ok := avbv.ExtractBV(input); ok {
		av, err := avbv.BVToAV(bv)
		if err != nil {
			return "", err
		}
		n, ok := avbv.ExtractAV(av)
		if !ok {
			// Decodes outside the positive 32-bit range yield "av-...".
			return "", fmt.Errorf("%w: %q decodes to %s", avbv.ErrInvalidID, input, av)
		}
		return n, nil
	}
	return "", fmt.Errorf("%w: %q", avbv.ErrInvalidID, input)
}

// Resolve fetches the audio URL and metadata of a numeric av ID.
func (c *Client) Resolve(ctx context.Context, numericID string) (*Result, error) {
	if _, err := strconv.ParseUint(numericID, 10, 63); err != nil {
		metrics.ResolveTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return nil, fmt.Errorf("%w: %q is not numeric", avbv.ErrInvalidID, numericID)
	}

	res, err := c.fetch(ctx, numericID)
	if err != nil {
		metrics.ResolveTotal.WithLabelValues(metrics.ResultError).Inc()
		c.logger.Warn("resolve failed", "av", numericID, "err", err)
		return nil, err
	}

	metrics.ResolveTotal.WithLabelValues(metrics.ResultOK).Inc()
	c.logger.Debug("resolved", "av", numericID, "id", res.CanonicalID, "title", res.Title)
	return res, nil
}

func (c *Client) fetch(ctx context.Context, numericID string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit: %w", ErrResolution, err)
	}

	reqURL := fmt.Sprintf("%s/playurl/av%s", c.baseURL, numericID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrResolution, err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: http request: %w", ErrResolution, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status: %s", ErrResolution, resp.Status)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrResolution, err)
	}
	if body.AURL == "" {
		return nil, fmt.Errorf("%w: response has no aurl", ErrResolution)
	}
	if body.Title == "" {
		return nil, fmt.Errorf("%w: response has no title", ErrResolution)
	}

	return &Result{
		CanonicalID: canonicalID(body, numericID),
		Title:       body.Title,
		Pic:         body.Pic,
		AudioURL:    body.AURL,
	}, nil
}

// canonicalID prefers the avid reported by the resolver, then its bvid,
// then the requested ID.
func canonicalID(body response, requested string) string {
	if body.AVID != "" {
		if id, err := avbv.Canonical(string(body.AVID)); err == nil {
			return id
		}
	}
	if body.BVID != "" {
		if id, err := avbv.BVToAV(body.BVID); err == nil {
			return id
		}
	}
	return "av" + requested
}

// flexString accepts both JSON strings and numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
