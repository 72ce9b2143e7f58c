// Package scoring combines the independent sub-scores into one bounded
// overall score and estimates the attainable uplift from fixable issues.
package scoring

import (
	"math"

	"github.com/shopaudit/backend/analyzer"
	"github.com/shopaudit/backend/pagespeed"
)

// Fixed weights for the four score sources.
const (
	weightContent     = 0.35
	weightSEO         = 0.30
	weightPerformance = 0.20
	weightMobile      = 0.15
)

// Uplift contributions for the potential-score estimate.
const (
	upliftPerCritical   = 5
	upliftPerHigh       = 3
	upliftPerImage      = 2
	upliftImageCap      = 10
	upliftContentFlat   = 12
	upliftContentCutoff = 85
)

// Breakdown is the clamped per-source view of the overall score.
type Breakdown struct {
	Content     int `json:"content"`
	SEO         int `json:"seo"`
	Performance int `json:"performance"`
	Mobile      int `json:"mobile"`
}

// OverallScore is the weighted, bounded total with its display band.
type OverallScore struct {
	Total     int       `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
	Label     string    `json:"label"`
	Color     string    `json:"color"`
}

// CalculateOverallScore clamps each sub-score to [0,100], applies the fixed
// weights and rounds exactly once. Intermediate terms are never rounded so
// the result is reproducible regardless of evaluation order.
func CalculateOverallScore(contentScore, seoScore, performanceScore, mobileScore int) OverallScore {
	b := Breakdown{
		Content:     clamp(contentScore),
		SEO:         clamp(seoScore),
		Performance: clamp(performanceScore),
		Mobile:      clamp(mobileScore),
	}

	total := int(math.Round(
		float64(b.Content)*weightContent +
			float64(b.SEO)*weightSEO +
			float64(b.Performance)*weightPerformance +
			float64(b.Mobile)*weightMobile,
	))

	label, color := band(total)
	return OverallScore{Total: total, Breakdown: b, Label: label, Color: color}
}

// EstimatePotentialScore adds a deterministic uplift for every fixable
// issue: unresolved critical and high-priority checks, unoptimized images
// (capped) and weak content. The result never drops below the current total
// and never exceeds 100.
func EstimatePotentialScore(current OverallScore, seo analyzer.SEOAnalysis, perf pagespeed.PerformanceMetrics) int {
	uplift := 0
	for _, check := range seo.Checks {
		if check.Status == analyzer.StatusPass {
			continue
		}
		switch check.Priority {
		case analyzer.PriorityCritical:
			uplift += upliftPerCritical
		case analyzer.PriorityHigh:
			uplift += upliftPerHigh
		}
	}

	imageUplift := upliftPerImage * perf.Images.UnoptimizedCount
	if imageUplift > upliftImageCap {
		imageUplift = upliftImageCap
	}
	uplift += imageUplift

	if current.Breakdown.Content < upliftContentCutoff {
		uplift += upliftContentFlat
	}

	return clamp(current.Total + uplift)
}

func band(total int) (string, string) {
	switch {
	case total >= 90:
		return "Excellent", "#22c55e"
	case total >= 75:
		return "Good", "#84cc16"
	case total >= 50:
		return "Fair", "#f59e0b"
	default:
		return "Poor", "#ef4444"
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
