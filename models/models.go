package models

// ImageInfo is a single product image candidate surviving the scraper's
// relevance filter. Src is always an absolute URL.
type ImageInfo struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// SocialTags holds Open Graph or Twitter Card metadata, verbatim from the page.
type SocialTags struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// TechnicalSEOData is the raw, deterministic extraction from one HTML document.
// Every string field defaults to the empty string, never to a missing key, so
// downstream consumers only ever branch on emptiness.
type TechnicalSEOData struct {
	MetaTitle       string                 `json:"metaTitle"`
	MetaDescription string                 `json:"metaDescription"`
	H1              string                 `json:"h1"`
	H1Count         int                    `json:"h1Count"`
	H2Tags          []string               `json:"h2Tags"`
	Images          []ImageInfo            `json:"images"`
	Schema          map[string]interface{} `json:"schema,omitempty"`
	CanonicalURL    string                 `json:"canonicalUrl"`
	OGTags          SocialTags             `json:"ogTags"`
	TwitterTags     SocialTags             `json:"twitterTags"`
	Breadcrumbs     []string               `json:"breadcrumbs"`
	HasCanonical    bool                   `json:"hasCanonical"`
	URLStructure    string                 `json:"urlStructure"` // "clean" or "needs-improvement"
}

// ProductFields is the structured product data recovered from the
// text-generation extraction call. All fields are optional on the wire and
// back-filled to empty strings after parsing.
type ProductFields struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Features      []string `json:"features"`
	ProductType   string   `json:"productType"`
	Category      string   `json:"category"`
	Brand         string   `json:"brand"`
	SKU           string   `json:"sku"`
	Price         string   `json:"price"`
	OriginalPrice string   `json:"originalPrice"`
	Currency      string   `json:"currency"`
	Availability  string   `json:"availability"`
	CTAText       string   `json:"ctaText"`
	Platform      string   `json:"platform"`
}

// ProductPageSnapshot is the immutable result of scraping one URL at one
// instant. It is assembled once per analysis request from two extraction
// passes: HTML-derived technical fields win for factual and structural data,
// model-derived fields win for semantic content. Never mutated afterward.
type ProductPageSnapshot struct {
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	MetaTitle       string                 `json:"metaTitle"`
	MetaDescription string                 `json:"metaDescription"`
	H1              string                 `json:"h1"`
	H1Count         int                    `json:"h1Count"`
	Features        []string               `json:"features"`
	Images          []ImageInfo            `json:"images"`
	Price           string                 `json:"price"`
	Schema          map[string]interface{} `json:"schema,omitempty"`
	URL             string                 `json:"url"`
	ProductType     string                 `json:"productType"`
	Category        string                 `json:"category"`
	CTAText         string                 `json:"ctaText"`
	Brand           string                 `json:"brand"`
	SKU             string                 `json:"sku"`
	Availability    string                 `json:"availability"`
	TechnicalSEO    TechnicalSEOData       `json:"technicalSEO"`
}

// MinimalSnapshot is the documented fallback when page retrieval or parsing
// fails entirely: the analysis continues against an empty snapshot rather
// than failing the whole request. Defined once so the fallback paths cannot
// drift apart.
func MinimalSnapshot(url string) ProductPageSnapshot {
	return ProductPageSnapshot{
		URL:      url,
		Features: []string{},
		Images:   []ImageInfo{},
		TechnicalSEO: TechnicalSEOData{
			H2Tags:       []string{},
			Images:       []ImageInfo{},
			Breadcrumbs:  []string{},
			URLStructure: "needs-improvement",
		},
	}
}
