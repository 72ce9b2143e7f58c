package enhancer

import (
	"fmt"
	"strings"

	"github.com/shopaudit/backend/models"
)

const extractionSystemPrompt = `You are a precise e-commerce data extractor. ` +
	`You only report data that is actually present on the page. ` +
	`You never invent, guess or embellish values. You respond with JSON only.`

const enhancementSystemPrompt = `You are an e-commerce SEO copywriter. ` +
	`You improve product content for search ranking and conversion without ` +
	`changing factual claims. You respond with JSON only.`

func extractionPrompt(pageURL string, tech *models.TechnicalSEOData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Visit this product page and extract its product data: %s\n\n", pageURL)

	if tech != nil {
		b.WriteString("Known technical context from the page HTML:\n")
		if tech.MetaTitle != "" {
			fmt.Fprintf(&b, "- page title: %s\n", tech.MetaTitle)
		}
		if tech.H1 != "" {
			fmt.Fprintf(&b, "- main heading: %s\n", tech.H1)
		}
		if len(tech.Breadcrumbs) > 0 {
			fmt.Fprintf(&b, "- breadcrumbs: %s\n", strings.Join(tech.Breadcrumbs, " > "))
		}
		b.WriteString("\n")
	}

	b.WriteString(`Return ONLY a JSON object with exactly these keys:
{
  "title": "", "description": "", "features": [], "productType": "",
  "category": "", "brand": "", "sku": "", "price": "", "originalPrice": "",
  "currency": "", "availability": "", "ctaText": "", "platform": ""
}
Leave any value you cannot find on the page as an empty string or empty list.
Do NOT invent data. Do NOT add commentary outside the JSON object.`)
	return b.String()
}

func enhancementPrompt(snapshot models.ProductPageSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Improve the SEO content of this product page: %s\n\n", snapshot.URL)

	fmt.Fprintf(&b, "Product: %s\n", snapshot.Title)
	if snapshot.MetaTitle != "" {
		fmt.Fprintf(&b, "Current meta title: %s\n", snapshot.MetaTitle)
	}
	if snapshot.MetaDescription != "" {
		fmt.Fprintf(&b, "Current meta description: %s\n", snapshot.MetaDescription)
	}
	if snapshot.Description != "" {
		fmt.Fprintf(&b, "Current description: %s\n", truncate(snapshot.Description, 1500))
	}
	if len(snapshot.Features) > 0 {
		fmt.Fprintf(&b, "Current features:\n- %s\n", strings.Join(snapshot.Features, "\n- "))
	}
	if snapshot.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", snapshot.Category)
	}

	b.WriteString(`
Return ONLY a JSON object shaped like this:
{
  "summary": "two-sentence assessment of the current content",
  "title": {"enhanced": "", "reasoning": "", "improvement": ""},
  "metaDescription": {"enhanced": "", "reasoning": "", "improvement": ""},
  "description": {"enhanced": "", "reasoning": "", "improvement": ""},
  "features": {"enhanced": [], "reasoning": "", "improvement": ""},
  "contentQualityScore": 0
}
contentQualityScore is an integer 0-100 rating the CURRENT content.
IMPORTANT: do NOT include "current" values in your response, the caller
already has them. Do NOT add commentary outside the JSON object.`)
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
