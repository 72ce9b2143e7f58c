package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopaudit/backend/models"
)

// perfectSnapshot satisfies every check: title 45 chars, description 140
// chars, one H1, structured data, HTTPS, clean path, long description,
// five features.
func perfectSnapshot() models.ProductPageSnapshot {
	return models.ProductPageSnapshot{
		URL:             "https://shop.example.com/products/widget",
		MetaTitle:       strings.Repeat("t", 45),
		MetaDescription: strings.Repeat("d", 140),
		H1:              "Blue Ceramic Widget",
		H1Count:         1,
		Description:     strings.Repeat("x", 600),
		Features:        []string{"a", "b", "c", "d", "e"},
		Schema:          map[string]interface{}{"@type": "Product"},
		TechnicalSEO: models.TechnicalSEOData{
			URLStructure: "clean",
		},
	}
}

func TestAnalyzePerfectPageScoresHundred(t *testing.T) {
	analysis := Analyze(perfectSnapshot())

	require.Len(t, analysis.Checks, 8)

	raw := 0
	for _, c := range analysis.Checks {
		assert.Equal(t, StatusPass, c.Status, "check %q should pass", c.Name)
		raw += c.Score
	}
	assert.Equal(t, 85, raw)
	assert.Equal(t, 100, analysis.Score)
	assert.Empty(t, analysis.Recommendations)
}

func TestAnalyzeWorstPage(t *testing.T) {
	snapshot := models.ProductPageSnapshot{
		URL: "http://shop.example.com/p?id=123&ref=abc",
		TechnicalSEO: models.TechnicalSEOData{
			URLStructure: "needs-improvement",
		},
	}

	analysis := Analyze(snapshot)
	require.Len(t, analysis.Checks, 8)

	// Five hard failures; the URL-structure and feature checks can only
	// degrade to warnings that still carry a few points.
	raw := 0
	for _, c := range analysis.Checks {
		raw += c.Score
	}
	assert.Equal(t, 8, raw) // 5 (dirty URL) + 3 (no features)
	assert.Equal(t, 9, analysis.Score)

	// Critical messages first, then high priority.
	require.NotEmpty(t, analysis.Recommendations)
	var criticalCount int
	for _, c := range analysis.Checks {
		if c.Status != StatusPass && c.Priority == PriorityCritical {
			criticalCount++
		}
	}
	for i, rec := range analysis.Recommendations {
		found := false
		for _, c := range analysis.Checks {
			if c.Message != rec {
				continue
			}
			found = true
			if i < criticalCount {
				assert.Equal(t, PriorityCritical, c.Priority, "recommendation %d should be critical", i)
			} else {
				assert.Equal(t, PriorityHigh, c.Priority, "recommendation %d should be high priority", i)
			}
		}
		assert.True(t, found, "recommendation %q should match a check message", rec)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	snapshot := perfectSnapshot()
	snapshot.MetaTitle = "Short"
	snapshot.Features = []string{"one"}

	first := Analyze(snapshot)
	second := Analyze(snapshot)

	assert.Equal(t, first, second)
}

func TestAnalyzeScoreBounds(t *testing.T) {
	snapshots := []models.ProductPageSnapshot{
		{},
		perfectSnapshot(),
		{URL: "https://x.example/products/a", MetaTitle: strings.Repeat("t", 80)},
	}
	for _, s := range snapshots {
		analysis := Analyze(s)
		assert.GreaterOrEqual(t, analysis.Score, 0)
		assert.LessOrEqual(t, analysis.Score, 100)
	}
}

func TestMetaTitleThresholds(t *testing.T) {
	tests := []struct {
		name       string
		length     int
		wantStatus CheckStatus
		wantScore  int
	}{
		{"missing", 0, StatusFail, 0},
		{"too short", 20, StatusWarning, 5},
		{"lower bound", 30, StatusPass, 10},
		{"upper bound", 60, StatusPass, 10},
		{"too long", 75, StatusWarning, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.ProductPageSnapshot{MetaTitle: strings.Repeat("a", tt.length)}
			c := checkMetaTitle(s)
			assert.Equal(t, tt.wantStatus, c.Status)
			assert.Equal(t, tt.wantScore, c.Score)
		})
	}
}

func TestMetaDescriptionThresholds(t *testing.T) {
	tests := []struct {
		name       string
		length     int
		wantStatus CheckStatus
		wantScore  int
	}{
		{"missing", 0, StatusFail, 0},
		{"too short", 80, StatusWarning, 5},
		{"in range", 150, StatusPass, 10},
		{"too long", 200, StatusWarning, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.ProductPageSnapshot{MetaDescription: strings.Repeat("a", tt.length)}
			c := checkMetaDescription(s)
			assert.Equal(t, tt.wantStatus, c.Status)
			assert.Equal(t, tt.wantScore, c.Score)
		})
	}
}

func TestH1Check(t *testing.T) {
	assert.Equal(t, StatusFail, checkH1(models.ProductPageSnapshot{H1Count: 0}).Status)
	assert.Equal(t, StatusWarning, checkH1(models.ProductPageSnapshot{H1Count: 3}).Status)
	assert.Equal(t, StatusPass, checkH1(models.ProductPageSnapshot{H1Count: 1}).Status)
}

func TestDescriptionCapsEarly(t *testing.T) {
	short := checkDescriptionLength(models.ProductPageSnapshot{Description: strings.Repeat("a", 500)})
	long := checkDescriptionLength(models.ProductPageSnapshot{Description: strings.Repeat("a", 5000)})
	assert.Equal(t, short.Score, long.Score, "no extra credit past the cap")
}

func TestFeatureBulletThresholds(t *testing.T) {
	assert.Equal(t, 3, checkFeatures(models.ProductPageSnapshot{}).Score)
	assert.Equal(t, 6, checkFeatures(models.ProductPageSnapshot{Features: []string{"a", "b"}}).Score)
	assert.Equal(t, 10, checkFeatures(models.ProductPageSnapshot{Features: []string{"a", "b", "c"}}).Score)
}
