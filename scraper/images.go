package scraper

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/shopaudit/backend/models"
)

// Keyword blocklist for page chrome. Matched against src, class, id and the
// parent element's class/id.
var imageBlocklist = []string{
	"icon", "logo", "banner", "sprite", "avatar", "badge", "button",
	"payment", "social", "arrow", "placeholder", "loading", "spinner",
	"pixel", "tracking", "flag", "star", "rating", "thumbnail-nav",
}

// Keyword allowlist for likely product imagery, matched against the URL and
// the parent context.
var imageAllowlist = []string{
	"product", "item", "gallery", "main", "hero", "detail", "zoom",
	"large", "media", "cdn/shop", "images/products",
}

// Lazy-load attributes checked when src is absent or a placeholder.
var lazySrcAttrs = []string{"data-src", "data-lazy-src", "data-original", "data-lazy"}

const (
	minImageDim     = 100
	productImageDim = 200
	minAltLength    = 10
)

// extractProductImages collects every <img> and keeps the ones that look
// like product imagery, in document order. Ties break toward inclusion:
// a false positive only inflates an image count, a false negative hides a
// real product photo from the checks downstream.
func extractProductImages(doc *goquery.Document, pageURL string) []models.ImageInfo {
	base, _ := url.Parse(pageURL)
	images := []models.ImageInfo{}
	seen := map[string]bool{}

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src := imageSource(sel)
		if src == "" {
			return
		}
		resolved := resolveImageURL(base, src)
		if resolved == "" || seen[resolved] {
			return
		}

		alt, _ := sel.Attr("alt")
		alt = strings.TrimSpace(alt)

		if isLikelyProductImage(sel, resolved, alt) {
			seen[resolved] = true
			images = append(images, models.ImageInfo{Src: resolved, Alt: alt})
		}
	})

	return images
}

// imageSource returns src, falling back through common lazy-load attributes.
func imageSource(sel *goquery.Selection) string {
	if src, ok := sel.Attr("src"); ok && strings.TrimSpace(src) != "" {
		return strings.TrimSpace(src)
	}
	for _, attr := range lazySrcAttrs {
		if src, ok := sel.Attr(attr); ok && strings.TrimSpace(src) != "" {
			return strings.TrimSpace(src)
		}
	}
	return ""
}

// resolveImageURL makes src absolute, handling protocol-relative and
// path-relative forms. Data URIs resolve to empty: they are never product
// imagery worth reporting.
func resolveImageURL(base *url.URL, src string) string {
	if strings.HasPrefix(src, "data:") {
		return ""
	}
	if strings.HasPrefix(src, "//") {
		scheme := "https"
		if base != nil && base.Scheme != "" {
			scheme = base.Scheme
		}
		return scheme + ":" + src
	}
	parsed, err := url.Parse(src)
	if err != nil {
		return ""
	}
	if parsed.IsAbs() {
		return parsed.String()
	}
	if base == nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}

// isLikelyProductImage applies the heuristic filter:
//   - blocklisted context, tiny dimensions, or small SVGs exclude;
//   - allowlisted context, descriptive alt text, or large dimensions include;
//   - with no disqualifying signal, include.
func isLikelyProductImage(sel *goquery.Selection, src, alt string) bool {
	context := imageContext(sel, src)

	for _, word := range imageBlocklist {
		if strings.Contains(context, word) {
			return false
		}
	}

	width, height, hasDims := imageDimensions(sel)
	if hasDims && (width < minImageDim || height < minImageDim) {
		return false
	}

	if strings.HasSuffix(strings.ToLower(strippedPath(src)), ".svg") && (!hasDims || width < productImageDim) {
		return false
	}

	lowerSrc := strings.ToLower(src)
	for _, word := range imageAllowlist {
		if strings.Contains(lowerSrc, word) || strings.Contains(context, word) {
			return true
		}
	}

	if len(alt) > minAltLength {
		return true
	}

	if hasDims && width >= productImageDim && height >= productImageDim {
		return true
	}

	// No disqualifying signal: include.
	return true
}

// imageContext lowercases the signal surface the blocklist and allowlist
// match against: src, the element's class and id, and the parent's class
// and id.
func imageContext(sel *goquery.Selection, src string) string {
	parts := []string{strings.ToLower(src)}
	if class, ok := sel.Attr("class"); ok {
		parts = append(parts, strings.ToLower(class))
	}
	if id, ok := sel.Attr("id"); ok {
		parts = append(parts, strings.ToLower(id))
	}
	parent := sel.Parent()
	if class, ok := parent.Attr("class"); ok {
		parts = append(parts, strings.ToLower(class))
	}
	if id, ok := parent.Attr("id"); ok {
		parts = append(parts, strings.ToLower(id))
	}
	return strings.Join(parts, " ")
}

func imageDimensions(sel *goquery.Selection) (int, int, bool) {
	w, wok := attrInt(sel, "width")
	h, hok := attrInt(sel, "height")
	return w, h, wok && hok
}

func attrInt(sel *goquery.Selection, name string) (int, bool) {
	raw, ok := sel.Attr(name)
	if !ok {
		return 0, false
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "px")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func strippedPath(src string) string {
	if u, err := url.Parse(src); err == nil {
		return u.Path
	}
	return src
}
