// Package pagespeed measures page performance through a remote measurement
// service. FetchMetrics never fails: every failure mode collapses into a
// severity-tiered fallback so the caller always holds a complete result.
package pagespeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopaudit/backend/errs"
	"github.com/shopaudit/backend/logging"
	"github.com/shopaudit/backend/retry"
)

const (
	defaultBaseURL = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"
	callTimeout    = 90 * time.Second

	// Overall score weights the mobile profile heavier: it is what ranking
	// actually measures.
	mobileWeight  = 0.6
	desktopWeight = 0.4
)

// Client calls the measurement service. Zero-value credential means every
// fetch short-circuits to the tier-1 fallback.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     logging.Logger
	policy  retry.Policy
}

// Option mutates a Client during construction.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient substitutes the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRetryPolicy substitutes the retry policy, used by tests to shrink
// backoff intervals.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// New creates a performance metrics client.
func New(apiKey string, log logging.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: callTimeout},
		log:     log.With("pagespeed"),
		policy: retry.Policy{
			MaxAttempts: 3, // 1 call + 2 retries per profile
			Base:        2 * time.Second,
			Cap:         30 * time.Second,
			IsTransient: func(err error) bool { return errs.Classify(err).IsTransient },
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchMetrics measures pageURL under both device profiles concurrently.
// It never returns an error: missing credential, upstream failure and
// malformed payloads all resolve to a tiered fallback.
func (c *Client) FetchMetrics(ctx context.Context, pageURL string) PerformanceMetrics {
	if !credentialLooksValid(c.apiKey) {
		c.log.Warn("measurement credential missing or malformed, using fallback metrics", logging.Fields{
			"url": pageURL,
		})
		return fallbackMissingCredential()
	}

	type outcome struct {
		report *lighthouseResult
		err    error
	}
	results := make([]outcome, 2)
	profiles := []string{"mobile", "desktop"}

	// Settle-all: one profile failing must not cancel the other.
	var wg sync.WaitGroup
	for i, profile := range profiles {
		wg.Add(1)
		go func(i int, profile string) {
			defer wg.Done()
			report, err := c.runProfile(ctx, pageURL, profile)
			results[i] = outcome{report: report, err: err}
		}(i, profile)
	}
	wg.Wait()

	mobile, mobileErr := results[0].report, results[0].err
	desktop, desktopErr := results[1].report, results[1].err

	switch {
	case mobileErr != nil && desktopErr != nil:
		c.log.Error("both measurement profiles failed, using fallback metrics", logging.Fields{
			"url":         pageURL,
			"mobile_err":  mobileErr.Error(),
			"desktop_err": desktopErr.Error(),
		})
		// The service answered with garbage on both profiles: tier 2.
		// Anything else, including mixed failures, is tier 3.
		if errs.Classify(mobileErr).Code == errs.CodeParseError &&
			errs.Classify(desktopErr).Code == errs.CodeParseError {
			return fallbackMalformed()
		}
		return fallbackUnavailable()
	case mobileErr != nil:
		// Approximate data beats no data: mirror the surviving profile.
		c.log.Warn("mobile profile failed, duplicating desktop data", logging.Fields{
			"url": pageURL, "error": mobileErr.Error(),
		})
		mobile = desktop
	case desktopErr != nil:
		c.log.Warn("desktop profile failed, duplicating mobile data", logging.Fields{
			"url": pageURL, "error": desktopErr.Error(),
		})
		desktop = mobile
	}

	return c.combine(mobile, desktop)
}

// runProfile issues one measurement call with the shared retry policy.
func (c *Client) runProfile(ctx context.Context, pageURL, profile string) (*lighthouseResult, error) {
	var report *lighthouseResult
	err := c.policy.Do(ctx, c.log, "pagespeed/"+profile, func(ctx context.Context) error {
		r, err := c.call(ctx, pageURL, profile)
		if err != nil {
			return err
		}
		report = r
		return nil
	})
	return report, err
}

func (c *Client) call(ctx context.Context, pageURL, profile string) (*lighthouseResult, error) {
	q := url.Values{}
	q.Set("url", pageURL)
	q.Set("strategy", profile)
	q.Set("key", c.apiKey)
	q.Add("category", "performance")
	q.Add("category", "seo")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &errs.FetchError{URL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &errs.FetchError{URL: c.baseURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.FetchError{URL: c.baseURL, Err: err}
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("measurement response parse: %w", err)
	}
	if parsed.LighthouseResult == nil {
		return nil, fmt.Errorf("measurement response parse: missing report body")
	}
	return parsed.LighthouseResult, nil
}

// combine normalizes both reports into the final metrics value.
func (c *Client) combine(mobile, desktop *lighthouseResult) PerformanceMetrics {
	if mobile == nil && desktop == nil {
		return fallbackMalformed()
	}
	if mobile == nil {
		mobile = desktop
	}
	if desktop == nil {
		desktop = mobile
	}

	m := PerformanceMetrics{
		Mobile:  profileFrom(mobile),
		Desktop: profileFrom(desktop),
	}

	// SEO sub-score comes from the mobile report, desktop as secondary.
	if s, ok := categoryScore(mobile, "seo"); ok {
		m.SEO.Score = s
	} else if s, ok := categoryScore(desktop, "seo"); ok {
		m.SEO.Score = s
	}

	m.Images = imageMetricsFrom(mobile, (m.Mobile.Score+m.Desktop.Score)/2)

	m.OverallScore = int(math.Round(float64(m.Mobile.Score)*mobileWeight + float64(m.Desktop.Score)*desktopWeight))
	return m
}

func profileFrom(r *lighthouseResult) ProfileMetrics {
	p := ProfileMetrics{}
	if s, ok := categoryScore(r, "performance"); ok {
		p.Score = s
	}
	p.FCP = auditValue(r, "first-contentful-paint")
	p.LCP = auditValue(r, "largest-contentful-paint")
	p.TTFB = auditValue(r, "server-response-time")
	p.LoadTime = auditValue(r, "interactive")
	p.SpeedIndex = auditValue(r, "speed-index")
	return p
}

func categoryScore(r *lighthouseResult, name string) (int, bool) {
	if r == nil {
		return 0, false
	}
	cat, ok := r.Categories[name]
	if !ok || cat.Score == nil {
		return 0, false
	}
	return int(math.Round(*cat.Score * 100)), true
}

func auditValue(r *lighthouseResult, name string) float64 {
	if a, ok := r.Audits[name]; ok {
		return a.NumericValue
	}
	return 0
}

// imageMetricsFrom reads the documented image audits; when the report has
// no itemized data it falls back to the tiered estimate.
func imageMetricsFrom(r *lighthouseResult, avgScore int) ImageMetrics {
	im := ImageMetrics{
		OptimizationOpportunities: []string{},
		FormatOptimization:        []string{},
	}

	if a, ok := r.Audits["total-byte-weight"]; ok {
		im.TotalSize = int64(a.NumericValue)
	}

	itemized := false
	if a, ok := r.Audits["uses-optimized-images"]; ok && a.Details != nil {
		for _, item := range a.Details.Items {
			if item.URL != "" {
				im.OptimizationOpportunities = append(im.OptimizationOpportunities, item.URL)
			}
		}
		if len(a.Details.Items) > 0 {
			itemized = true
		}
	}
	if a, ok := r.Audits["modern-image-formats"]; ok && a.Details != nil {
		for _, item := range a.Details.Items {
			if item.URL != "" {
				im.FormatOptimization = append(im.FormatOptimization, item.URL)
			}
		}
		if len(a.Details.Items) > 0 {
			itemized = true
		}
	}

	if !itemized {
		est := estimateImageMetrics(avgScore)
		if im.TotalSize > 0 {
			est.TotalSize = im.TotalSize
		}
		return est
	}

	seen := map[string]bool{}
	for _, u := range im.OptimizationOpportunities {
		seen[u] = true
	}
	for _, u := range im.FormatOptimization {
		seen[u] = true
	}
	im.UnoptimizedCount = len(seen)
	im.TotalCount = im.UnoptimizedCount
	if im.TotalCount == 0 {
		im.TotalCount = 1
	}
	return im
}

// credentialLooksValid is a superficial shape check performed before any
// network call: non-empty, no whitespace, plausibly long.
func credentialLooksValid(key string) bool {
	key = strings.TrimSpace(key)
	if len(key) < 20 {
		return false
	}
	return !strings.ContainsAny(key, " \t\n")
}
