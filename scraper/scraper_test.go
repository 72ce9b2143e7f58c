package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopaudit/backend/errs"
	"github.com/shopaudit/backend/logging"
)

const productPage = `<!DOCTYPE html>
<html>
<head>
	<title>Blue Ceramic Widget | Example Shop</title>
	<meta name="description" content="A handmade blue ceramic widget, fired at 1200 degrees and glazed by hand. Ships in recyclable packaging within two business days.">
	<meta property="og:title" content="Blue Ceramic Widget">
	<meta property="og:description" content="A handmade blue ceramic widget.">
	<meta property="og:image" content="https://cdn.example.com/products/widget-og.jpg">
	<meta name="twitter:title" content="Blue Ceramic Widget">
	<meta name="twitter:image" content="https://cdn.example.com/products/widget-tw.jpg">
	<link rel="canonical" href="https://shop.example.com/products/blue-ceramic-widget">
	<script type="application/ld+json">
	{
		"@context": "https://schema.org",
		"@type": "Product",
		"name": "Blue Ceramic Widget",
		"offers": {"@type": "Offer", "price": "34.00", "priceCurrency": "USD"}
	}
	</script>
	<script type="application/ld+json">
	{
		"@type": "BreadcrumbList",
		"itemListElement": [
			{"@type": "ListItem", "position": 1, "name": "Home"},
			{"@type": "ListItem", "position": 2, "name": "Ceramics"},
			{"@type": "ListItem", "position": 3, "name": "Blue Ceramic Widget"}
		]
	}
	</script>
</head>
<body>
	<img src="/icons/logo.svg" width="40" height="40" alt="logo">
	<h1>Blue Ceramic Widget</h1>
	<h2>Details</h2>
	<h2>Shipping</h2>
	<img src="/cdn/products/widget-front.jpg" width="800" height="800" alt="Blue ceramic widget, front view">
	<img src="/cdn/products/widget-back.jpg" width="800" height="800" alt="Blue ceramic widget, back view">
</body>
</html>`

func newTestScraper(t *testing.T) *Scraper {
	t.Helper()
	return New(logging.NewTestLogger())
}

func TestExtractTechnicalSEOFullPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(productPage))
	}))
	defer server.Close()

	data, err := newTestScraper(t).ExtractTechnicalSEO(context.Background(), server.URL+"/products/blue-ceramic-widget")
	require.NoError(t, err)

	assert.Equal(t, "Blue Ceramic Widget | Example Shop", data.MetaTitle)
	assert.Contains(t, data.MetaDescription, "handmade blue ceramic widget")
	assert.Equal(t, "Blue Ceramic Widget", data.H1)
	assert.Equal(t, 1, data.H1Count)
	assert.Equal(t, []string{"Details", "Shipping"}, data.H2Tags)

	require.NotNil(t, data.Schema)
	assert.Equal(t, "Blue Ceramic Widget", data.Schema["name"])

	require.Len(t, data.Images, 2)
	assert.Contains(t, data.Images[0].Src, "widget-front.jpg")
	assert.Contains(t, data.Images[1].Src, "widget-back.jpg")

	assert.True(t, data.HasCanonical)
	assert.Equal(t, "https://shop.example.com/products/blue-ceramic-widget", data.CanonicalURL)
	assert.Equal(t, "Blue Ceramic Widget", data.OGTags.Title)
	assert.Equal(t, "https://cdn.example.com/products/widget-tw.jpg", data.TwitterTags.Image)
	assert.Equal(t, []string{"Home", "Ceramics", "Blue Ceramic Widget"}, data.Breadcrumbs)
	assert.Equal(t, "clean", data.URLStructure)
}

func TestMetaDescriptionFallsBackToOG(t *testing.T) {
	page := `<html><head>
		<meta property="og:description" content="Fallback description from open graph tags.">
	</head><body><h1>Widget</h1></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	data, err := newTestScraper(t).ExtractTechnicalSEO(context.Background(), server.URL+"/products/widget")
	require.NoError(t, err)
	assert.Equal(t, "Fallback description from open graph tags.", data.MetaDescription)
}

func TestNonSuccessStatusIsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestScraper(t).ExtractTechnicalSEO(context.Background(), server.URL+"/products/missing")
	var fetchErr *errs.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestUnreachableHostIsFetchError(t *testing.T) {
	_, err := newTestScraper(t).ExtractTechnicalSEO(context.Background(), "http://127.0.0.1:1/products/widget")
	var fetchErr *errs.FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestContextCancelStopsFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestScraper(t).ExtractTechnicalSEO(ctx, "http://127.0.0.1:1/products/widget")
	require.Error(t, err)
}

func TestProductSchemaInsideGraph(t *testing.T) {
	page := `<html><head><script type="application/ld+json">
	{"@graph": [
		{"@type": "WebSite", "name": "Example Shop"},
		{"@type": "Product", "name": "Graph Widget"}
	]}
	</script></head><body></body></html>`
	doc := docFromHTML(t, page)
	node := findStructuredData(doc, "Product")
	require.NotNil(t, node)
	assert.Equal(t, "Graph Widget", node["name"])
}

func TestProductSchemaTypeList(t *testing.T) {
	page := `<html><head><script type="application/ld+json">
	{"@type": ["Product", "IndividualProduct"], "name": "Listed Widget"}
	</script></head><body></body></html>`
	doc := docFromHTML(t, page)
	node := findStructuredData(doc, "Product")
	require.NotNil(t, node)
	assert.Equal(t, "Listed Widget", node["name"])
}

func TestMalformedJSONLDSkipped(t *testing.T) {
	page := `<html><head>
	<script type="application/ld+json">{"@type": "Product", broken</script>
	<script type="application/ld+json">{"@type": "Product", "name": "Second Block"}</script>
	</head><body></body></html>`
	doc := docFromHTML(t, page)
	node := findStructuredData(doc, "Product")
	require.NotNil(t, node)
	assert.Equal(t, "Second Block", node["name"])
}

func TestBreadcrumbHTMLFallback(t *testing.T) {
	page := `<html><body><nav aria-label="breadcrumb"><ol>
		<li>Home</li><li>Ceramics</li><li>Widget</li>
	</ol></nav></body></html>`
	doc := docFromHTML(t, page)
	assert.Equal(t, []string{"Home", "Ceramics", "Widget"}, extractBreadcrumbs(doc))
}

func TestClassifyURLStructure(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://shop.example.com/products/blue-ceramic-widget", "clean"},
		{"https://shop.example.com/Products/Widget", "clean"},
		{"https://shop.example.com/products/widget?variant=123", "needs-improvement"},
		{"https://shop.example.com/products/widget_v2", "needs-improvement"},
		{"https://shop.example.com/p/widget%20two", "needs-improvement"},
		{"https://shop.example.com/", "needs-improvement"},
		{"https://shop.example.com", "needs-improvement"},
		{"https://shop.example.com/products/shirt.html", "needs-improvement"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyURLStructure(tc.url), tc.url)
	}
}
