package scraper

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// findStructuredData returns the first JSON-LD node whose @type matches
// wantType, searching each script block's top level, array form and @graph
// form in that order.
func findStructuredData(doc *goquery.Document, wantType string) map[string]interface{} {
	var found map[string]interface{}
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}
		var parsed interface{}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			// Malformed blocks are common in the wild; keep looking.
			return true
		}
		if node := searchNode(parsed, wantType); node != nil {
			found = node
			return false
		}
		return true
	})
	return found
}

func searchNode(node interface{}, wantType string) map[string]interface{} {
	switch v := node.(type) {
	case map[string]interface{}:
		if nodeHasType(v, wantType) {
			return v
		}
		if graph, ok := v["@graph"].([]interface{}); ok {
			for _, item := range graph {
				if m, ok := item.(map[string]interface{}); ok && nodeHasType(m, wantType) {
					return m
				}
			}
		}
	case []interface{}:
		for _, item := range v {
			if m, ok := item.(map[string]interface{}); ok && nodeHasType(m, wantType) {
				return m
			}
		}
	}
	return nil
}

// nodeHasType handles @type being either a string or a list of strings.
func nodeHasType(node map[string]interface{}, wantType string) bool {
	switch t := node["@type"].(type) {
	case string:
		return strings.EqualFold(t, wantType)
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, wantType) {
				return true
			}
		}
	}
	return false
}

// extractBreadcrumbs prefers BreadcrumbList structured data and falls back
// to breadcrumb-looking navigation markup.
func extractBreadcrumbs(doc *goquery.Document) []string {
	crumbs := []string{}

	if node := findStructuredData(doc, "BreadcrumbList"); node != nil {
		if items, ok := node["itemListElement"].([]interface{}); ok {
			for _, item := range items {
				m, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				if name, ok := m["name"].(string); ok && strings.TrimSpace(name) != "" {
					crumbs = append(crumbs, strings.TrimSpace(name))
					continue
				}
				// Some generators nest the name under "item".
				if inner, ok := m["item"].(map[string]interface{}); ok {
					if name, ok := inner["name"].(string); ok && strings.TrimSpace(name) != "" {
						crumbs = append(crumbs, strings.TrimSpace(name))
					}
				}
			}
		}
		if len(crumbs) > 0 {
			return crumbs
		}
	}

	selectors := []string{
		`nav[aria-label="breadcrumb"] li`,
		`nav[aria-label="Breadcrumb"] li`,
		".breadcrumb li",
		".breadcrumbs li",
		`[class*="breadcrumb"] a`,
	}
	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				crumbs = append(crumbs, text)
			}
		})
		if len(crumbs) > 0 {
			break
		}
	}
	return crumbs
}
