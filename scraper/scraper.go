// Package scraper retrieves a product page and deterministically extracts
// its technical SEO signals. Retries are the caller's concern; this layer
// fails fast with a typed error.
package scraper

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/shopaudit/backend/errs"
	"github.com/shopaudit/backend/logging"
	"github.com/shopaudit/backend/models"
)

const (
	defaultTimeout = 30 * time.Second
	maxH2Tags      = 20
	// Some origins reject Go's default agent outright.
	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

var cleanPathRe = regexp.MustCompile(`(?i)^/[a-z0-9\-/]+$`)

// Scraper fetches and parses product pages.
type Scraper struct {
	client *http.Client
	log    logging.Logger
}

// Option mutates a Scraper during construction.
type Option func(*Scraper)

// WithTimeout overrides the fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// New creates a Scraper with connection pooling tuned for one-shot page
// fetches.
func New(log logging.Logger, opts ...Option) *Scraper {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	s := &Scraper{
		client: &http.Client{
			Timeout:   defaultTimeout,
			Transport: transport,
		},
		log: log.With("scraper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractTechnicalSEO retrieves the document at pageURL and extracts the
// full technical signal set in a single parse. Fails with *errs.FetchError
// when the GET does not return success and *errs.ParseError when the body
// cannot be parsed.
func (s *Scraper) ExtractTechnicalSEO(ctx context.Context, pageURL string) (*models.TechnicalSEOData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &errs.FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &errs.FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errs.FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.FetchError{URL: pageURL, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &errs.ParseError{URL: pageURL, Err: err}
	}

	data := s.extract(doc, pageURL)
	s.log.Debug("technical extraction complete", logging.Fields{
		"url":      pageURL,
		"h1_count": data.H1Count,
		"images":   len(data.Images),
		"schema":   data.Schema != nil,
	})
	return data, nil
}

func (s *Scraper) extract(doc *goquery.Document, pageURL string) *models.TechnicalSEOData {
	data := &models.TechnicalSEOData{
		H2Tags:      []string{},
		Images:      []models.ImageInfo{},
		Breadcrumbs: []string{},
	}

	data.MetaTitle = strings.TrimSpace(doc.Find("title").First().Text())

	data.MetaDescription, _ = doc.Find(`meta[name="description"]`).Attr("content")
	data.MetaDescription = strings.TrimSpace(data.MetaDescription)
	if data.MetaDescription == "" {
		// og:description is the usual stand-in on storefront themes.
		og, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
		data.MetaDescription = strings.TrimSpace(og)
	}

	h1s := doc.Find("h1")
	data.H1Count = h1s.Length()
	data.H1 = strings.TrimSpace(h1s.First().Text())

	doc.Find("h2").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(data.H2Tags) >= maxH2Tags {
			return false
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			data.H2Tags = append(data.H2Tags, text)
		}
		return true
	})

	data.Images = extractProductImages(doc, pageURL)

	data.Schema = findStructuredData(doc, "Product")

	if canonical, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
		data.CanonicalURL = strings.TrimSpace(canonical)
		data.HasCanonical = data.CanonicalURL != ""
	}

	data.OGTags = models.SocialTags{
		Title:       metaContent(doc, `meta[property="og:title"]`),
		Description: metaContent(doc, `meta[property="og:description"]`),
		Image:       metaContent(doc, `meta[property="og:image"]`),
	}
	data.TwitterTags = models.SocialTags{
		Title:       metaContent(doc, `meta[name="twitter:title"]`),
		Description: metaContent(doc, `meta[name="twitter:description"]`),
		Image:       metaContent(doc, `meta[name="twitter:image"]`),
	}

	data.Breadcrumbs = extractBreadcrumbs(doc)

	data.URLStructure = ClassifyURLStructure(pageURL)

	return data
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).Attr("content")
	return strings.TrimSpace(content)
}

// ClassifyURLStructure labels a URL "clean" iff its path is alphanumeric
// with hyphens and slashes only, ignoring case, and it carries no query
// string. Anything else is "needs-improvement".
func ClassifyURLStructure(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "needs-improvement"
	}
	if u.RawQuery != "" {
		return "needs-improvement"
	}
	if u.Path == "" || u.Path == "/" {
		return "needs-improvement"
	}
	if cleanPathRe.MatchString(u.Path) {
		return "clean"
	}
	return "needs-improvement"
}
