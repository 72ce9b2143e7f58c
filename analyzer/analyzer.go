// Package analyzer scores eight independent technical SEO rules against a
// product page snapshot. Pure and deterministic: same snapshot in, same
// checks and score out, no I/O.
package analyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopaudit/backend/models"
)

// Raw points available across all eight checks. The normalized score is
// round(raw/maxRawPoints*100) clamped to [0,100].
const maxRawPoints = 85

// Analyze runs every rule against the snapshot. Never fails.
func Analyze(snapshot models.ProductPageSnapshot) SEOAnalysis {
	checks := []CheckResult{
		checkMetaTitle(snapshot),
		checkMetaDescription(snapshot),
		checkH1(snapshot),
		checkStructuredData(snapshot),
		checkHTTPS(snapshot),
		checkURLStructure(snapshot),
		checkDescriptionLength(snapshot),
		checkFeatures(snapshot),
	}

	raw := 0
	for _, c := range checks {
		raw += c.Score
	}

	score := int(math.Round(float64(raw) / maxRawPoints * 100))
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	return SEOAnalysis{
		Score:           score,
		Checks:          checks,
		Recommendations: buildRecommendations(checks),
	}
}

func checkMetaTitle(s models.ProductPageSnapshot) CheckResult {
	c := CheckResult{Name: "Meta Title", Priority: PriorityHigh}
	title := s.MetaTitle
	length := len(title)

	switch {
	case length == 0:
		c.Status = StatusFail
		c.Score = 0
		c.Message = "Missing meta title. Add a title tag of 30-60 characters"
	case length < 30:
		c.Status = StatusWarning
		c.Score = 5
		c.Message = fmt.Sprintf("Meta title is too short (%d characters). Aim for 30-60", length)
	case length > 60:
		c.Status = StatusWarning
		c.Score = 7
		c.Message = fmt.Sprintf("Meta title is too long (%d characters). Search engines truncate past 60", length)
	default:
		c.Status = StatusPass
		c.Score = 10
		c.Message = fmt.Sprintf("Meta title length is good (%d characters)", length)
	}
	return c
}

func checkMetaDescription(s models.ProductPageSnapshot) CheckResult {
	c := CheckResult{Name: "Meta Description", Priority: PriorityHigh}
	length := len(s.MetaDescription)

	switch {
	case length == 0:
		c.Status = StatusFail
		c.Score = 0
		c.Message = "Missing meta description. Add a description of 120-160 characters"
	case length < 120:
		c.Status = StatusWarning
		c.Score = 5
		c.Message = fmt.Sprintf("Meta description is too short (%d characters). Aim for 120-160", length)
	case length > 160:
		c.Status = StatusWarning
		c.Score = 7
		c.Message = fmt.Sprintf("Meta description is too long (%d characters). Search engines truncate past 160", length)
	default:
		c.Status = StatusPass
		c.Score = 10
		c.Message = fmt.Sprintf("Meta description length is good (%d characters)", length)
	}
	return c
}

func checkH1(s models.ProductPageSnapshot) CheckResult {
	c := CheckResult{Name: "H1 Heading", Priority: PriorityHigh}

	switch {
	case s.H1Count == 0:
		c.Status = StatusFail
		c.Score = 0
		c.Message = "Missing H1 heading. Add exactly one H1 with the product name"
	case s.H1Count > 1:
		c.Status = StatusWarning
		c.Score = 5
		c.Message = fmt.Sprintf("Multiple H1 headings found (%d). Use exactly one", s.H1Count)
	default:
		c.Status = StatusPass
		c.Score = 10
		c.Message = "Exactly one H1 heading found"
	}
	return c
}

func checkStructuredData(s models.ProductPageSnapshot) CheckResult {
	c := CheckResult{Name: "Product Structured Data", Priority: PriorityCritical}

	if s.Schema == nil && s.TechnicalSEO.Schema == nil {
		c.Status = StatusFail
		c.Score = 0
		c.Message = "Missing Product structured data. Add JSON-LD Product markup for rich results"
	} else {
		c.Status = StatusPass
		c.Score = 15
		c.Message = "Product structured data is present"
	}
	return c
}

func checkHTTPS(s models.ProductPageSnapshot) CheckResult {
	c := CheckResult{Name: "HTTPS", Priority: PriorityCritical}

	if strings.HasPrefix(strings.ToLower(s.URL), "https://") {
		c.Status = StatusPass
		c.Score = 10
		c.Message = "Page is served over HTTPS"
	} else {
		c.Status = StatusFail
		c.Score = 0
		c.Message = "Page is not served over HTTPS. Secure the page to avoid ranking penalties"
	}
	return c
}

func checkURLStructure(s models.ProductPageSnapshot) CheckResult {
	c := CheckResult{Name: "URL Structure", Priority: PriorityMedium}

	if s.TechnicalSEO.URLStructure == "clean" {
		c.Status = StatusPass
		c.Score = 10
		c.Message = "URL structure is clean and readable"
	} else {
		c.Status = StatusWarning
		c.Score = 5
		c.Message = "URL could be cleaner. Prefer short lowercase paths with hyphens and no query parameters"
	}
	return c
}

func checkDescriptionLength(s models.ProductPageSnapshot) CheckResult {
	c := CheckResult{Name: "Product Description", Priority: PriorityCritical}
	length := len(s.Description)

	// No extra credit past 500 characters; the scale caps early on purpose.
	switch {
	case length == 0:
		c.Status = StatusFail
		c.Score = 0
		c.Message = "Missing product description. Add at least 200 characters of descriptive copy"
	case length < 200:
		c.Status = StatusWarning
		c.Score = 5
		c.Message = fmt.Sprintf("Product description is thin (%d characters). Aim for 200-500", length)
	default:
		c.Status = StatusPass
		c.Score = 10
		c.Message = fmt.Sprintf("Product description length is good (%d characters)", length)
	}
	return c
}

func checkFeatures(s models.ProductPageSnapshot) CheckResult {
	c := CheckResult{Name: "Feature Bullets", Priority: PriorityMedium}
	count := len(s.Features)

	switch {
	case count == 0:
		c.Status = StatusWarning
		c.Score = 3
		c.Message = "No feature bullets found. List key product features as bullets"
	case count <= 2:
		c.Status = StatusWarning
		c.Score = 6
		c.Message = fmt.Sprintf("Only %d feature bullet(s). Aim for at least 3", count)
	default:
		c.Status = StatusPass
		c.Score = 10
		c.Message = fmt.Sprintf("Good number of feature bullets (%d)", count)
	}
	return c
}

// buildRecommendations formats the messages of every non-passing critical
// check, then every non-passing high-priority check, in that order.
func buildRecommendations(checks []CheckResult) []string {
	recommendations := []string{}
	for _, c := range checks {
		if c.Status != StatusPass && c.Priority == PriorityCritical {
			recommendations = append(recommendations, c.Message)
		}
	}
	for _, c := range checks {
		if c.Status != StatusPass && c.Priority == PriorityHigh {
			recommendations = append(recommendations, c.Message)
		}
	}
	return recommendations
}
