// Package diagnosis implements the heuristic crop disease classifier, the
// recommendation generator and the detection response cache.
package diagnosis

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/agrovision/cropguard-go/internal/knowledge"
	"github.com/agrovision/cropguard-go/internal/logging"
)

// Package-level logger specific to the diagnosis service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	serviceLevelVar.Set(slog.LevelInfo)

	logger, _, err = logging.NewFileLogger("logs/diagnosis.log", "diagnosis", serviceLevelVar)
	if err != nil {
		logging.Error("Failed to initialize diagnosis file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "diagnosis")
	}
}

const (
	// healthyConfidence is the fixed confidence reported when no disease
	// scores above zero.
	healthyConfidence = 0.85

	// maxConfidence caps the heuristic score.
	maxConfidence = 0.95

	// symptomWeight is the share of the score contributed by symptom overlap,
	// the remainder comes from the jitter term.
	symptomWeight = 0.7
	jitterWeight  = 0.3
)

// Classifier maps image-derived signals to a best-guess disease label. It is
// a rule-based stand-in for a trained model.
type Classifier struct {
	base     *knowledge.Base
	analyzer Analyzer
	jitter   func() float64 // returns a value in [0,1)
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithAnalyzer replaces the built-in hash analyzer.
func WithAnalyzer(a Analyzer) ClassifierOption {
	return func(c *Classifier) { c.analyzer = a }
}

// WithJitter replaces the randomness source of the score jitter term. Tests
// pin it to zero to make classification reproducible.
func WithJitter(fn func() float64) ClassifierOption {
	return func(c *Classifier) { c.jitter = fn }
}

// NewClassifier creates a classifier over the given knowledge base.
func NewClassifier(base *knowledge.Base, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		base:     base,
		analyzer: NewHashAnalyzer(),
		jitter:   rand.Float64,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify analyzes the image and scores every knowledge base record against
// the detected symptoms. It never fails: an inconclusive or failed analysis
// silently degrades to the healthy record with fixed confidence.
func (c *Classifier) Classify(ctx context.Context, imageRef string) *Result {
	characteristics, err := c.analyzer.Analyze(ctx, imageRef)
	if err != nil {
		logger.Warn("image analysis failed, assuming healthy plant",
			"error", err)
		return c.healthyResult(nil)
	}

	detected := detectSymptoms(characteristics)
	if len(detected) == 0 {
		return c.healthyResult(detected)
	}

	var best *knowledge.Disease
	bestScore := 0.0
	for _, d := range c.base.All() {
		overlap := symptomOverlap(detected, d.Symptoms)
		score := symptomWeight * float64(overlap) / float64(len(detected))
		// Jitter for variety, the heuristic is a demo stand-in.
		score += jitterWeight * c.jitter()

		// Strictly-greater keeps the first-seen record on ties.
		if score > bestScore {
			bestScore = score
			d := d
			best = &d
		}
	}

	if best == nil {
		return c.healthyResult(detected)
	}

	confidence := min(bestScore, maxConfidence)
	confidence = max(confidence, 0)

	logger.Debug("classified image",
		"disease", best.ID,
		"confidence", confidence,
		"detected_symptoms", detected)

	return c.buildResult(*best, confidence, detected)
}

// detectSymptoms derives the symptom list from image characteristics. The
// derivation is fixed and independent of the scoring step.
func detectSymptoms(ch *ImageCharacteristics) []string {
	if ch == nil {
		return nil
	}

	var detected []string
	if ch.Brownish {
		detected = append(detected, "brown spots")
	}
	if ch.Yellowish {
		detected = append(detected, "leaf yellowing")
	}
	if ch.Whiteish {
		detected = append(detected, "white powder")
	}
	if len(detected) == 0 {
		detected = append(detected, "green leaves", "normal growth")
	}
	return detected
}

// symptomOverlap counts detected symptoms whose text overlaps a record
// symptom by case-insensitive substring match in either direction.
func symptomOverlap(detected, recordSymptoms []string) int {
	count := 0
	for _, s := range detected {
		ls := strings.ToLower(s)
		for _, rs := range recordSymptoms {
			lrs := strings.ToLower(rs)
			if strings.Contains(lrs, ls) || strings.Contains(ls, lrs) {
				count++
				break
			}
		}
	}
	return count
}

// ResultFor builds a result for a known disease ID with an externally
// supplied confidence, clamped to the valid range. Returns nil when the ID
// is not in the knowledge base.
func (c *Classifier) ResultFor(diseaseID string, confidence float64) *Result {
	d, ok := c.base.Get(diseaseID)
	if !ok {
		return nil
	}
	confidence = min(max(confidence, 0), 1)
	return c.buildResult(d, confidence, nil)
}

func (c *Classifier) healthyResult(detected []string) *Result {
	return c.buildResult(c.base.Healthy(), healthyConfidence, detected)
}

func (c *Classifier) buildResult(d knowledge.Disease, confidence float64, detected []string) *Result {
	return &Result{
		DiseaseID:        d.ID,
		DiseaseName:      d.Name,
		Description:      d.Description,
		Confidence:       confidence,
		Symptoms:         append([]string(nil), d.Symptoms...),
		Treatments:       append([]string(nil), d.Treatments...),
		DetectedSymptoms: detected,
		Recommendations:  Recommendations(d),
	}
}
