package enhancer

import "github.com/shopaudit/backend/models"

// FieldEnhancement is the before/after view of one content field.
type FieldEnhancement struct {
	Current     string `json:"current"`
	Enhanced    string `json:"enhanced"`
	Reasoning   string `json:"reasoning"`
	Improvement string `json:"improvement"`
}

// FeatureEnhancement is the before/after view of the feature bullet list.
type FeatureEnhancement struct {
	Current     []string `json:"current"`
	Enhanced    []string `json:"enhanced"`
	Reasoning   string   `json:"reasoning"`
	Improvement string   `json:"improvement"`
}

// ContentEnhancement is the full rewrite proposal. Current values are always
// back-filled from the snapshot; the remote call is asked not to repeat them.
type ContentEnhancement struct {
	Summary             string             `json:"summary"`
	Title               FieldEnhancement   `json:"title"`
	MetaDescription     FieldEnhancement   `json:"metaDescription"`
	Description         FieldEnhancement   `json:"description"`
	Features            FeatureEnhancement `json:"features"`
	ContentQualityScore int                `json:"contentQualityScore"`
}

// DefaultEnhancement is the documented fallback when the enhancement branch
// fails: current values carried over unchanged, neutral quality score.
// Defined once so fallback call sites cannot drift.
func DefaultEnhancement(snapshot models.ProductPageSnapshot) ContentEnhancement {
	features := snapshot.Features
	if features == nil {
		features = []string{}
	}
	return ContentEnhancement{
		Summary:             "Content enhancement was unavailable for this analysis.",
		Title:               FieldEnhancement{Current: snapshot.MetaTitle},
		MetaDescription:     FieldEnhancement{Current: snapshot.MetaDescription},
		Description:         FieldEnhancement{Current: snapshot.Description},
		Features:            FeatureEnhancement{Current: features, Enhanced: []string{}},
		ContentQualityScore: 50,
	}
}
