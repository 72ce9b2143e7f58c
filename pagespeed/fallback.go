package pagespeed

// Severity-tiered fallback values. Each tier is defined once and returned
// whole, so a fallback result is always structurally complete.

// fallbackMissingCredential is tier 1: no usable credential, no call was
// attempted. Neutral mid-range estimates that neither flatter nor punish.
func fallbackMissingCredential() PerformanceMetrics {
	return PerformanceMetrics{
		Desktop: ProfileMetrics{Score: 70, FCP: 1800, LCP: 2500, TTFB: 600, LoadTime: 3500, SpeedIndex: 3000},
		Mobile:  ProfileMetrics{Score: 60, FCP: 2500, LCP: 3500, TTFB: 800, LoadTime: 5000, SpeedIndex: 4500},
		Images: ImageMetrics{
			TotalSize:                 0,
			UnoptimizedCount:          2,
			TotalCount:                5,
			OptimizationOpportunities: []string{},
			FormatOptimization:        []string{},
		},
		SEO:          SEOMetrics{Score: 70},
		OverallScore: 64,
	}
}

// fallbackMalformed is tier 2: the service answered but the report was
// unusable. Slightly more pessimistic than tier 1.
func fallbackMalformed() PerformanceMetrics {
	return PerformanceMetrics{
		Desktop: ProfileMetrics{Score: 60, FCP: 2200, LCP: 3200, TTFB: 800, LoadTime: 4500, SpeedIndex: 3800},
		Mobile:  ProfileMetrics{Score: 50, FCP: 3000, LCP: 4500, TTFB: 1000, LoadTime: 6500, SpeedIndex: 5500},
		Images: ImageMetrics{
			TotalSize:                 0,
			UnoptimizedCount:          3,
			TotalCount:                5,
			OptimizationOpportunities: []string{},
			FormatOptimization:        []string{},
		},
		SEO:          SEOMetrics{Score: 60},
		OverallScore: 54,
	}
}

// fallbackUnavailable is tier 3: every attempt for every profile failed.
// Conservative values that flag performance as needing attention without
// claiming measurement.
func fallbackUnavailable() PerformanceMetrics {
	return PerformanceMetrics{
		Desktop: ProfileMetrics{Score: 50, FCP: 2500, LCP: 4000, TTFB: 1000, LoadTime: 5500, SpeedIndex: 4500},
		Mobile:  ProfileMetrics{Score: 40, FCP: 3500, LCP: 5500, TTFB: 1200, LoadTime: 8000, SpeedIndex: 6500},
		Images: ImageMetrics{
			TotalSize:                 0,
			UnoptimizedCount:          4,
			TotalCount:                6,
			OptimizationOpportunities: []string{},
			FormatOptimization:        []string{},
		},
		SEO:          SEOMetrics{Score: 50},
		OverallScore: 44,
	}
}

// estimateImageMetrics is the 3-tier size/count estimate used when the
// report carries no itemized image audit data, keyed off the average of the
// two profile scores.
func estimateImageMetrics(avgScore int) ImageMetrics {
	switch {
	case avgScore >= 80:
		return ImageMetrics{
			TotalSize:                 500 * 1024,
			UnoptimizedCount:          1,
			TotalCount:                6,
			OptimizationOpportunities: []string{},
			FormatOptimization:        []string{},
		}
	case avgScore >= 50:
		return ImageMetrics{
			TotalSize:                 1500 * 1024,
			UnoptimizedCount:          3,
			TotalCount:                8,
			OptimizationOpportunities: []string{},
			FormatOptimization:        []string{},
		}
	default:
		return ImageMetrics{
			TotalSize:                 3000 * 1024,
			UnoptimizedCount:          6,
			TotalCount:                10,
			OptimizationOpportunities: []string{},
			FormatOptimization:        []string{},
		}
	}
}
