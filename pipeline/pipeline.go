// Package pipeline orchestrates one analysis request: technical extraction,
// snapshot assembly, a concurrent settle-all fan-out over the three score
// sources, and final aggregation. A failed branch substitutes its documented
// fallback; only total inability to proceed fails the request.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/shopaudit/backend/analyzer"
	"github.com/shopaudit/backend/enhancer"
	"github.com/shopaudit/backend/errs"
	"github.com/shopaudit/backend/logging"
	"github.com/shopaudit/backend/models"
	"github.com/shopaudit/backend/pagespeed"
	"github.com/shopaudit/backend/scoring"
)

// TechnicalExtractor retrieves and parses the target page.
type TechnicalExtractor interface {
	ExtractTechnicalSEO(ctx context.Context, url string) (*models.TechnicalSEOData, error)
}

// ContentClient performs the two text-generation operations.
type ContentClient interface {
	ExtractProductData(ctx context.Context, url string, tech *models.TechnicalSEOData) (models.ProductFields, error)
	EnhanceContent(ctx context.Context, snapshot models.ProductPageSnapshot) (enhancer.ContentEnhancement, error)
}

// MetricsClient measures page performance. By contract it never fails.
type MetricsClient interface {
	FetchMetrics(ctx context.Context, url string) pagespeed.PerformanceMetrics
}

// UsageRecorder receives per-request accounting. Implemented by the stats
// storage; nil disables recording.
type UsageRecorder interface {
	RecordAnalysis(durationMs float64, scrapeFallback, extractFallback, enhanceFallback bool)
}

// AnalysisResult is the complete response for one analyzed URL.
type AnalysisResult struct {
	OverallScore    scoring.OverallScore         `json:"overallScore"`
	PotentialScore  int                          `json:"potentialScore"`
	Breakdown       scoring.Breakdown            `json:"breakdown"`
	Recommendations []string                     `json:"recommendations"`
	ScrapedData     models.ProductPageSnapshot   `json:"scrapedData"`
	SEO             analyzer.SEOAnalysis         `json:"seo"`
	Performance     pagespeed.PerformanceMetrics `json:"performance"`
	Enhancement     enhancer.ContentEnhancement  `json:"enhancement"`
}

// Service wires the collaborators for the analysis pipeline.
type Service struct {
	extractor TechnicalExtractor
	content   ContentClient
	metrics   MetricsClient
	recorder  UsageRecorder
	log       logging.Logger
}

// New creates the pipeline service. recorder may be nil.
func New(extractor TechnicalExtractor, content ContentClient, metrics MetricsClient, recorder UsageRecorder, log logging.Logger) *Service {
	return &Service{
		extractor: extractor,
		content:   content,
		metrics:   metrics,
		recorder:  recorder,
		log:       log.With("pipeline"),
	}
}

// Analyze runs the full pipeline for one URL. The error return carries a
// raw (unsanitized) error; the HTTP layer is responsible for pushing it
// through the sanitizer before it reaches the caller.
func (s *Service) Analyze(ctx context.Context, url string) (*AnalysisResult, error) {
	start := time.Now()

	// Phase 1: technical extraction. A dead page degrades to the minimal
	// snapshot rather than failing the request.
	scrapeFellBack := false
	tech, err := s.extractor.ExtractTechnicalSEO(ctx, url)
	if err != nil {
		scrapeFellBack = true
		s.log.Warn("technical extraction failed, continuing with minimal snapshot", logging.Fields{
			"url":   url,
			"error": err.Error(),
		})
		minimal := models.MinimalSnapshot(url)
		tech = &minimal.TechnicalSEO
		tech.URLStructure = "needs-improvement"
	}

	// Phase 2: structured product extraction. Falls back to fields derived
	// from the technical data alone.
	extractFellBack := false
	fields, err := s.content.ExtractProductData(ctx, url, tech)
	if err != nil {
		extractFellBack = true
		s.log.Warn("product extraction failed, deriving fields from page data", logging.Fields{
			"url":   url,
			"error": err.Error(),
		})
		fields = fieldsFromTechnical(tech)
	}

	snapshot := buildSnapshot(url, tech, fields)

	// Phase 3: fan out the three independent analyses. Settle-all: a
	// failure in one branch never cancels the others.
	var (
		wg          sync.WaitGroup
		seoResult   analyzer.SEOAnalysis
		perfResult  pagespeed.PerformanceMetrics
		enhancement enhancer.ContentEnhancement
		enhanceErr  error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		seoResult = analyzer.Analyze(snapshot)
	}()
	go func() {
		defer wg.Done()
		perfResult = s.metrics.FetchMetrics(ctx, url)
	}()
	go func() {
		defer wg.Done()
		enhancement, enhanceErr = s.content.EnhanceContent(ctx, snapshot)
	}()
	wg.Wait()

	enhanceFellBack := false
	if enhanceErr != nil {
		enhanceFellBack = true
		s.log.Warn("content enhancement failed, using default enhancement", logging.Fields{
			"url":   url,
			"error": enhanceErr.Error(),
		})
		enhancement = enhancer.DefaultEnhancement(snapshot)
	}

	overall := scoring.CalculateOverallScore(
		enhancement.ContentQualityScore,
		seoResult.Score,
		perfResult.OverallScore,
		perfResult.Mobile.Score,
	)
	potential := scoring.EstimatePotentialScore(overall, seoResult, perfResult)

	if s.recorder != nil {
		s.recorder.RecordAnalysis(float64(time.Since(start).Milliseconds()), scrapeFellBack, extractFellBack, enhanceFellBack)
	}

	s.log.Info("analysis complete", logging.Fields{
		"url":         url,
		"total":       overall.Total,
		"potential":   potential,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return &AnalysisResult{
		OverallScore:    overall,
		PotentialScore:  potential,
		Breakdown:       overall.Breakdown,
		Recommendations: buildRecommendations(seoResult, perfResult),
		ScrapedData:     snapshot,
		SEO:             seoResult,
		Performance:     perfResult,
		Enhancement:     enhancement,
	}, nil
}

// SanitizeError maps a pipeline failure to the response-safe form.
func SanitizeError(err error) errs.Classification {
	return errs.SanitizeError(err)
}

// buildSnapshot merges the two extraction passes into the immutable
// snapshot. HTML-derived technical fields win for factual and structural
// data; model-derived fields win for semantic content.
func buildSnapshot(url string, tech *models.TechnicalSEOData, fields models.ProductFields) models.ProductPageSnapshot {
	title := fields.Title
	if title == "" {
		title = tech.H1
	}
	if title == "" {
		title = tech.MetaTitle
	}

	features := fields.Features
	if features == nil {
		features = []string{}
	}
	images := tech.Images
	if images == nil {
		images = []models.ImageInfo{}
	}

	return models.ProductPageSnapshot{
		Title:           title,
		Description:     fields.Description,
		MetaTitle:       tech.MetaTitle,
		MetaDescription: tech.MetaDescription,
		H1:              tech.H1,
		H1Count:         tech.H1Count,
		Features:        features,
		Images:          images,
		Price:           fields.Price,
		Schema:          tech.Schema,
		URL:             url,
		ProductType:     fields.ProductType,
		Category:        fields.Category,
		CTAText:         fields.CTAText,
		Brand:           fields.Brand,
		SKU:             fields.SKU,
		Availability:    fields.Availability,
		TechnicalSEO:    *tech,
	}
}

// fieldsFromTechnical is the documented fallback when the extraction call
// fails: semantic fields derived from what the HTML alone can offer.
func fieldsFromTechnical(tech *models.TechnicalSEOData) models.ProductFields {
	return models.ProductFields{
		Title:       tech.H1,
		Description: tech.MetaDescription,
		Features:    []string{},
	}
}

// buildRecommendations merges the SEO recommendations with performance
// advice derived from the image audit, critical items first.
func buildRecommendations(seo analyzer.SEOAnalysis, perf pagespeed.PerformanceMetrics) []string {
	recommendations := make([]string, 0, len(seo.Recommendations)+2)
	recommendations = append(recommendations, seo.Recommendations...)

	if perf.Images.UnoptimizedCount > 0 {
		recommendations = append(recommendations, "Optimize product images to reduce page weight")
	}
	if len(perf.Images.FormatOptimization) > 0 {
		recommendations = append(recommendations, "Serve product images in modern formats such as WebP or AVIF")
	}
	return recommendations
}
