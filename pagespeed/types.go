package pagespeed

// ProfileMetrics is the normalized result for one device profile.
// Durations are milliseconds.
type ProfileMetrics struct {
	Score      int     `json:"score"`
	FCP        float64 `json:"fcp"`
	LCP        float64 `json:"lcp"`
	TTFB       float64 `json:"ttfb"`
	LoadTime   float64 `json:"loadTime"`
	SpeedIndex float64 `json:"speedIndex"`
}

// ImageMetrics summarizes image weight and the itemized optimization
// opportunities reported by the measurement service.
type ImageMetrics struct {
	TotalSize                 int64    `json:"totalSize"`
	UnoptimizedCount          int      `json:"unoptimizedCount"`
	TotalCount                int      `json:"totalCount"`
	OptimizationOpportunities []string `json:"optimizationOpportunities"`
	FormatOptimization        []string `json:"formatOptimization"`
}

// SEOMetrics carries the SEO category sub-score.
type SEOMetrics struct {
	Score int `json:"score"`
}

// PerformanceMetrics is always fully populated: either from a successful
// remote call or from one of the severity-tiered fallback constants. Never
// partially filled.
type PerformanceMetrics struct {
	Desktop      ProfileMetrics `json:"desktop"`
	Mobile       ProfileMetrics `json:"mobile"`
	Images       ImageMetrics   `json:"images"`
	SEO          SEOMetrics     `json:"seo"`
	OverallScore int            `json:"overallScore"`
}

// Wire shapes for the measurement service response. Only the documented
// subset of fields is read.
type apiResponse struct {
	LighthouseResult *lighthouseResult `json:"lighthouseResult"`
}

type lighthouseResult struct {
	Categories map[string]category `json:"categories"`
	Audits     map[string]audit    `json:"audits"`
}

type category struct {
	Score *float64 `json:"score"` // 0..1
}

type audit struct {
	NumericValue float64       `json:"numericValue"`
	Details      *auditDetails `json:"details"`
}

type auditDetails struct {
	OverallSavingsBytes int64       `json:"overallSavingsBytes"`
	Items               []auditItem `json:"items"`
}

type auditItem struct {
	URL         string `json:"url"`
	WastedBytes int64  `json:"wastedBytes"`
	TotalBytes  int64  `json:"totalBytes"`
}
