package analyzer

// CheckStatus is the outcome of one rule.
type CheckStatus string

const (
	StatusPass    CheckStatus = "pass"
	StatusWarning CheckStatus = "warning"
	StatusFail    CheckStatus = "fail"
)

// Priority ranks how urgently a failed check should be addressed.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// CheckResult is the outcome of a single technical SEO rule.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Priority Priority    `json:"priority"`
	Score    int         `json:"score"`
}

// SEOAnalysis is the complete rule-based result: exactly eight checks, a
// normalized 0-100 score and the recommendations derived from non-passing
// critical and high-priority checks.
type SEOAnalysis struct {
	Score           int           `json:"score"`
	Checks          []CheckResult `json:"checks"`
	Recommendations []string      `json:"recommendations"`
}
