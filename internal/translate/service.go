package translate

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agrovision/cropguard-go/internal/diagnosis"
	"github.com/agrovision/cropguard-go/internal/logging"
	"github.com/agrovision/cropguard-go/internal/observability/metrics"
)

// Package-level logger specific to the translation service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	serviceLevelVar.Set(slog.LevelInfo)

	logger, _, err = logging.NewFileLogger("logs/translate.log", "translate", serviceLevelVar)
	if err != nil {
		logging.Error("Failed to initialize translate file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "translate")
	}
}

// Service resolves translations: catalog first, external provider second,
// original text as the last resort. Translation never fails a request.
type Service struct {
	catalog  *Catalog
	provider *Provider                   // nil when no external provider is configured
	metrics  *metrics.TranslationMetrics // may be nil
}

// NewService creates a translation service. The provider may be nil.
func NewService(catalog *Catalog, provider *Provider) *Service {
	return &Service{catalog: catalog, provider: provider}
}

// SetMetrics attaches translation metrics. Safe to leave unset.
func (s *Service) SetMetrics(m *metrics.TranslationMetrics) {
	s.metrics = m
}

// Text translates a single phrase to the target language. Empty input yields
// an empty string; an unmapped phrase is returned unchanged.
func (s *Service) Text(ctx context.Context, text, targetLanguage string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if targetLanguage == DefaultLanguage || targetLanguage == "" {
		return trimmed
	}

	if localized, ok := s.catalog.Lookup(targetLanguage, trimmed); ok {
		if s.metrics != nil {
			s.metrics.RecordCatalogHit()
		}
		return localized
	}

	if s.provider != nil && s.provider.Enabled() {
		start := time.Now()
		translated, err := s.provider.Translate(ctx, trimmed, targetLanguage)
		if s.metrics != nil {
			s.metrics.RecordProviderCall(time.Since(start).Seconds(), err)
		}
		if err == nil {
			return translated
		}
		logger.Warn("translation provider failed, returning original text",
			"target_language", targetLanguage,
			"error", err)
	}

	if s.metrics != nil {
		s.metrics.RecordPassthrough()
	}
	return trimmed
}

// Batch translates a list of phrases, preserving order.
func (s *Service) Batch(ctx context.Context, items []string, targetLanguage string) []string {
	out := make([]string, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			out[i] = s.Text(gctx, item, targetLanguage)
			return nil
		})
	}
	_ = g.Wait() // Text never returns an error
	return out
}

// Detection translates a detection result field by field. List elements are
// translated concurrently; output order matches input order. The default
// language short-circuits, and any failure degrades to the untranslated
// result, never to an error.
func (s *Service) Detection(ctx context.Context, result *diagnosis.Result, targetLanguage string) *diagnosis.Result {
	if result == nil {
		return nil
	}
	if targetLanguage == DefaultLanguage || targetLanguage == "" {
		return result
	}

	translated := result.Copy()
	translated.DiseaseName = s.Text(ctx, result.DiseaseName, targetLanguage)
	translated.Description = s.Text(ctx, result.Description, targetLanguage)
	translated.Symptoms = s.Batch(ctx, dropEmpty(result.Symptoms), targetLanguage)
	translated.Treatments = s.Batch(ctx, dropEmpty(result.Treatments), targetLanguage)
	translated.Recommendations = s.Batch(ctx, dropEmpty(result.Recommendations), targetLanguage)
	translated.DetectedSymptoms = s.Batch(ctx, dropEmpty(result.DetectedSymptoms), targetLanguage)
	translated.Language = targetLanguage

	return translated
}

// dropEmpty filters blank entries before translation.
func dropEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}
