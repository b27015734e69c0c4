// Package detection orchestrates the disease detection pipeline: cache
// lookup, classification, translation and persistence.
package detection

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/agrovision/cropguard-go/internal/conf"
	"github.com/agrovision/cropguard-go/internal/datastore"
	"github.com/agrovision/cropguard-go/internal/diagnosis"
	"github.com/agrovision/cropguard-go/internal/errors"
	"github.com/agrovision/cropguard-go/internal/logging"
	"github.com/agrovision/cropguard-go/internal/observability"
	"github.com/agrovision/cropguard-go/internal/translate"
)

// Package-level logger specific to the detection service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	serviceLevelVar.Set(slog.LevelInfo)

	logger, _, err = logging.NewFileLogger("logs/detection.log", "detection", serviceLevelVar)
	if err != nil {
		logging.Error("Failed to initialize detection file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "detection")
	}
}

// Request carries one image submission through the pipeline.
type Request struct {
	FarmerID  string
	ImageURL  string
	CropRef   string // crop ID or crop name
	Language  string
	Latitude  float64
	Longitude float64
}

// Outcome is the result of a completed detection: the (possibly translated)
// diagnosis plus the persisted record it was filed under.
type Outcome struct {
	Result               *diagnosis.Result
	ConfidencePercentage int
	Detection            datastore.Detection
	Cached               bool
}

// Service wires the classifier, cache, translator and datastore together.
type Service struct {
	settings   *conf.Settings
	store      datastore.Interface
	classifier *diagnosis.Classifier
	remote     *diagnosis.MLClient
	verifier   *Verifier
	cache      *diagnosis.ResponseCache
	translator *translate.Service
	metrics    *observability.Metrics // may be nil
}

// New creates the detection service. Metrics may be nil.
func New(settings *conf.Settings, store datastore.Interface, classifier *diagnosis.Classifier,
	translator *translate.Service, metrics *observability.Metrics) *Service {
	ttl := settings.Detection.CacheTTL
	if ttl <= 0 {
		ttl = diagnosis.DefaultCacheTTL
	}

	return &Service{
		settings:   settings,
		store:      store,
		classifier: classifier,
		remote:     diagnosis.NewMLClient(settings.Detection.Classifier),
		verifier:   NewVerifier(settings.Detection.Verification),
		cache:      diagnosis.NewResponseCache(ttl),
		translator: translator,
		metrics:    metrics,
	}
}

// Detect runs the full pipeline for one submission. Classification itself
// never fails; errors come from validation and persistence only.
func (s *Service) Detect(ctx context.Context, req *Request) (*Outcome, error) {
	start := time.Now()

	if err := s.validate(req); err != nil {
		s.recordError("validation")
		return nil, err
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = s.settings.Detection.Locale
	}

	result, cached := s.classify(ctx, req.ImageURL)

	// The cache holds the canonical result; translation is per request.
	translated := s.translator.Detection(ctx, result, language)
	if s.metrics != nil && language != translate.DefaultLanguage {
		s.metrics.Translation.RecordTranslation(language)
	}

	crop, err := s.store.ResolveCrop(req.CropRef)
	if err != nil {
		s.recordError("crop")
		return nil, errors.Newf("failed to resolve crop %q: %w", req.CropRef, err).
			Category(errors.CategoryDatabase).
			Component("detection").
			Build()
	}

	// Disease resolution failures are tolerated: the detection is still
	// saved, just without a disease link.
	var diseaseID *uint
	disease, err := s.store.ResolveDisease(&datastore.Disease{
		Name:        result.DiseaseName,
		Description: result.Description,
		Symptoms:    result.Symptoms,
		Treatments:  result.Treatments,
		CropID:      &crop.ID,
	})
	if err != nil {
		logger.Warn("disease resolution failed, saving detection without disease link",
			"disease_name", result.DiseaseName,
			"error", err)
	} else {
		diseaseID = &disease.ID
	}

	record := datastore.Detection{
		FarmerID:         req.FarmerID,
		CropID:           crop.ID,
		DiseaseID:        diseaseID,
		ImageURL:         req.ImageURL,
		Confidence:       result.Confidence,
		DetectedSymptoms: result.DetectedSymptoms,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Notes:            result.Description,
		Status:           "completed",
	}
	if err := s.store.SaveDetection(&record); err != nil {
		s.recordError("save")
		return nil, errors.Newf("failed to save detection: %w", err).
			Category(errors.CategoryDatabase).
			Component("detection").
			Build()
	}

	if s.metrics != nil {
		source := "classifier"
		if cached {
			source = "cache"
		}
		s.metrics.Detection.RecordDetection(result.DiseaseID, source,
			time.Since(start).Seconds(), result.Confidence)
	}

	logger.Info("detection completed",
		"farmer_id", req.FarmerID,
		"crop", crop.Name,
		"disease", result.DiseaseID,
		"confidence", result.Confidence,
		"cached", cached,
		"language", language)

	return &Outcome{
		Result:               translated,
		ConfidencePercentage: ConfidencePercentage(result.Confidence),
		Detection:            record,
		Cached:               cached,
	}, nil
}

// classify returns the canonical diagnosis for an image, serving repeated
// submissions from the response cache. The remote classifier is preferred
// when configured; any remote failure degrades to the local heuristic.
func (s *Service) classify(ctx context.Context, imageURL string) (result *diagnosis.Result, cached bool) {
	fingerprint := diagnosis.Fingerprint(imageURL)
	if hit, found := s.cache.Get(fingerprint); found {
		if s.metrics != nil {
			s.metrics.Detection.RecordCacheHit()
		}
		return hit, true
	}
	if s.metrics != nil {
		s.metrics.Detection.RecordCacheMiss()
	}

	result = s.remoteClassify(ctx, imageURL)
	if result == nil {
		result = s.classifier.Classify(ctx, imageURL)
	}

	s.cache.Put(fingerprint, result)
	return result, false
}

// remoteClassify asks the external classifier, if one is configured, and
// maps its answer onto the knowledge base. Returns nil when the local
// classifier should be used instead.
func (s *Service) remoteClassify(ctx context.Context, imageURL string) *diagnosis.Result {
	if s.remote == nil || !s.remote.Enabled() {
		return nil
	}

	detected, err := s.remote.Detect(ctx, imageURL)
	if err != nil {
		logger.Warn("remote classifier failed, falling back to local heuristic",
			"error", err)
		return nil
	}

	result := s.classifier.ResultFor(detected.DiseaseID, detected.Confidence)
	if result == nil {
		logger.Warn("remote classifier returned unknown disease, falling back to local heuristic",
			"disease_id", detected.DiseaseID)
		return nil
	}
	result.DetectedSymptoms = detected.Symptoms
	return result
}

func (s *Service) validate(req *Request) error {
	var missing []string
	if strings.TrimSpace(req.FarmerID) == "" {
		missing = append(missing, "farmer ID")
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		missing = append(missing, "image")
	}
	if strings.TrimSpace(req.CropRef) == "" {
		missing = append(missing, "crop")
	}
	if len(missing) > 0 {
		return errors.Newf("missing required fields: %s", strings.Join(missing, ", ")).
			Category(errors.CategoryValidation).
			Component("detection").
			Build()
	}
	return nil
}

func (s *Service) recordError(stage string) {
	if s.metrics != nil {
		s.metrics.Detection.RecordError(stage)
	}
}

// ConfidencePercentage renders a confidence score as a whole percentage.
func ConfidencePercentage(confidence float64) int {
	return int(math.Round(confidence * 100))
}

// History returns a farmer's past detections, newest first, with the total
// count for pagination.
func (s *Service) History(ctx context.Context, farmerID string, limit, offset int) ([]datastore.Detection, int64, error) {
	if strings.TrimSpace(farmerID) == "" {
		return nil, 0, errors.Newf("farmer ID is required").
			Category(errors.CategoryValidation).
			Component("detection").
			Build()
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	detections, err := s.store.DetectionsByFarmer(farmerID, limit, offset)
	if err != nil {
		return nil, 0, errors.Newf("failed to load detection history: %w", err).
			Category(errors.CategoryDatabase).
			Component("detection").
			Build()
	}
	total, err := s.store.CountDetectionsByFarmer(farmerID)
	if err != nil {
		return nil, 0, errors.Newf("failed to count detection history: %w", err).
			Category(errors.CategoryDatabase).
			Component("detection").
			Build()
	}
	return detections, total, nil
}

// Feedback records a farmer's accuracy feedback on one of their detections.
// An inaccurate verdict may carry the disease the farmer believes it was.
func (s *Service) Feedback(ctx context.Context, id, farmerID string, accurate bool, correctDisease, comment string) (datastore.Detection, error) {
	existing, err := s.store.GetDetection(id)
	if err != nil {
		return datastore.Detection{}, errors.Newf("detection not found: %w", err).
			Category(errors.CategoryNotFound).
			Component("detection").
			Build()
	}
	if existing.FarmerID != farmerID {
		return datastore.Detection{}, errors.Newf("detection does not belong to farmer").
			Category(errors.CategoryNotFound).
			Component("detection").
			Build()
	}

	updated, err := s.store.UpdateDetectionFeedback(id, accurate, correctDisease, comment)
	if err != nil {
		return datastore.Detection{}, errors.Newf("failed to record feedback: %w", err).
			Category(errors.CategoryDatabase).
			Component("detection").
			Build()
	}
	return updated, nil
}

// Nearby returns recent detections around a point, for spotting local
// outbreaks.
func (s *Service) Nearby(ctx context.Context, latitude, longitude, radiusKm float64, limit int) ([]datastore.Detection, error) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return nil, errors.Newf("invalid coordinates").
			Category(errors.CategoryValidation).
			Component("detection").
			Build()
	}
	if radiusKm <= 0 {
		radiusKm = 10
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	detections, err := s.store.DetectionsNear(latitude, longitude, radiusKm, limit)
	if err != nil {
		return nil, errors.Newf("failed to load nearby detections: %w", err).
			Category(errors.CategoryDatabase).
			Component("detection").
			Build()
	}
	return detections, nil
}
