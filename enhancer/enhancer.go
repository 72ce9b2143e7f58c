package enhancer

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopaudit/backend/jsonrepair"
	"github.com/shopaudit/backend/logging"
	"github.com/shopaudit/backend/models"
)

// ExtractProductData asks the remote model to visit the URL and return the
// structured product fields as one JSON object. Invented data is forbidden
// by the prompt; absent fields come back empty and stay empty.
func (c *Client) ExtractProductData(ctx context.Context, pageURL string, tech *models.TechnicalSEOData) (models.ProductFields, error) {
	raw, err := c.Generate(ctx, JobRequest{
		Prompt:          extractionPrompt(pageURL, tech),
		SystemPrompt:    extractionSystemPrompt,
		MaxTokens:       2000,
		Verbosity:       "low",
		ReasoningEffort: "minimal",
	})
	if err != nil {
		return models.ProductFields{}, err
	}

	parsed, err := jsonrepair.Parse(raw)
	if err != nil {
		return models.ProductFields{}, err
	}

	fields := models.ProductFields{
		Title:         getString(parsed, "title"),
		Description:   getString(parsed, "description"),
		Features:      getStringSlice(parsed, "features"),
		ProductType:   getString(parsed, "productType"),
		Category:      getString(parsed, "category"),
		Brand:         getString(parsed, "brand"),
		SKU:           getString(parsed, "sku"),
		Price:         getString(parsed, "price"),
		OriginalPrice: getString(parsed, "originalPrice"),
		Currency:      getString(parsed, "currency"),
		Availability:  getString(parsed, "availability"),
		CTAText:       getString(parsed, "ctaText"),
		Platform:      getString(parsed, "platform"),
	}
	c.log.Debug("product data extracted", logging.Fields{
		"url":      pageURL,
		"features": len(fields.Features),
	})
	return fields, nil
}

// EnhanceContent asks for enhanced copy plus a quality score. Total parse
// failure is fatal for the branch; absence of individual sub-objects is not:
// they are synthesized with safe defaults, and current values are always
// back-filled from the snapshot because the prompt asks the model to omit
// them.
func (c *Client) EnhanceContent(ctx context.Context, snapshot models.ProductPageSnapshot) (ContentEnhancement, error) {
	raw, err := c.Generate(ctx, JobRequest{
		Prompt:          enhancementPrompt(snapshot),
		SystemPrompt:    enhancementSystemPrompt,
		MaxTokens:       4000,
		Verbosity:       "medium",
		ReasoningEffort: "low",
	})
	if err != nil {
		return ContentEnhancement{}, err
	}

	parsed, err := jsonrepair.Parse(raw)
	if err != nil {
		return ContentEnhancement{}, err
	}

	enhancement := ContentEnhancement{
		Summary:             getString(parsed, "summary"),
		Title:               fieldFrom(parsed, "title"),
		MetaDescription:     fieldFrom(parsed, "metaDescription"),
		Description:         fieldFrom(parsed, "description"),
		Features:            featuresFrom(parsed),
		ContentQualityScore: getScore(parsed, "contentQualityScore", 50),
	}

	// Back-fill current values the model was told not to repeat.
	enhancement.Title.Current = snapshot.MetaTitle
	enhancement.MetaDescription.Current = snapshot.MetaDescription
	enhancement.Description.Current = snapshot.Description
	if snapshot.Features != nil {
		enhancement.Features.Current = snapshot.Features
	} else {
		enhancement.Features.Current = []string{}
	}

	return enhancement, nil
}

func fieldFrom(parsed map[string]interface{}, key string) FieldEnhancement {
	sub, ok := parsed[key].(map[string]interface{})
	if !ok {
		// Synthesized default: partial-field absence is not a failure.
		return FieldEnhancement{}
	}
	return FieldEnhancement{
		Current:     getString(sub, "current"),
		Enhanced:    getString(sub, "enhanced"),
		Reasoning:   getString(sub, "reasoning"),
		Improvement: getString(sub, "improvement"),
	}
}

func featuresFrom(parsed map[string]interface{}) FeatureEnhancement {
	sub, ok := parsed["features"].(map[string]interface{})
	if !ok {
		return FeatureEnhancement{Current: []string{}, Enhanced: []string{}}
	}
	return FeatureEnhancement{
		Current:     getStringSlice(sub, "current"),
		Enhanced:    getStringSlice(sub, "enhanced"),
		Reasoning:   getString(sub, "reasoning"),
		Improvement: getString(sub, "improvement"),
	}
}

// getString coerces a value to string; numbers are formatted since prices
// frequently come back numeric.
func getString(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.2f", v)
	}
	return ""
}

func getStringSlice(m map[string]interface{}, key string) []string {
	out := []string{}
	items, ok := m[key].([]interface{})
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func getScore(m map[string]interface{}, key string, fallback int) int {
	v, ok := m[key].(float64)
	if !ok {
		return fallback
	}
	score := int(v)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
