package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/agrovision/cropguard-go/internal/conf"
	"github.com/agrovision/cropguard-go/internal/datastore"
	"github.com/agrovision/cropguard-go/internal/diagnosis"
	"github.com/agrovision/cropguard-go/internal/errors"
)

// basicVerificationConfidence is reported when no external verification
// provider is available and the claimed crop is accepted as-is.
const basicVerificationConfidence = 0.85

// VerificationResult reports whether an image plausibly shows the claimed crop.
type VerificationResult struct {
	CropName   string  `json:"cropName"`
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"` // "provider" or "basic"
}

// Verifier checks a submitted image against the claimed crop using an
// optional external provider. Without a provider, or when the provider
// fails, verification degrades to a basic accept-all check.
type Verifier struct {
	cfg        conf.ProviderConfig
	httpClient *http.Client
}

// NewVerifier creates a crop verification client.
func NewVerifier(cfg conf.ProviderConfig) *Verifier {
	return &Verifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type verifyRequest struct {
	ImageURL string `json:"image_url"`
	Crop     string `json:"crop"`
}

type verifyResponse struct {
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
}

// Verify never fails: provider errors degrade to the basic result.
func (v *Verifier) Verify(ctx context.Context, imageURL, cropName string) *VerificationResult {
	if !v.cfg.Enabled() {
		return v.basicResult(cropName)
	}

	result, err := v.providerVerify(ctx, imageURL, cropName)
	if err != nil {
		logger.Warn("crop verification provider failed, using basic verification",
			"crop", cropName,
			"error", err)
		return v.basicResult(cropName)
	}
	return result
}

func (v *Verifier) basicResult(cropName string) *VerificationResult {
	return &VerificationResult{
		CropName:   cropName,
		Verified:   true,
		Confidence: basicVerificationConfidence,
		Method:     "basic",
	}
}

func (v *Verifier) providerVerify(ctx context.Context, imageURL, cropName string) (*VerificationResult, error) {
	payload, err := json.Marshal(verifyRequest{ImageURL: imageURL, Crop: cropName})
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryImageAnalysis).
			Component("verification").
			Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(v.cfg.URL, "/")+"/verify", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Newf("failed to create HTTP request: %w", err).
			Category(errors.CategoryNetwork).
			Component("verification").
			Build()
	}
	req.Header.Set("Content-Type", "application/json")
	if v.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.cfg.APIKey)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, errors.Newf("HTTP request failed: %w", err).
			Category(errors.CategoryNetwork).
			Component("verification").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Newf("failed to read response body: %w", err).
			Category(errors.CategoryNetwork).
			Component("verification").
			Build()
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("verification provider error (status %d)", resp.StatusCode).
			Category(errors.CategoryHTTP).
			Context("status_code", resp.StatusCode).
			Component("verification").
			Build()
	}

	var parsed verifyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Newf("failed to parse provider response: %w", err).
			Category(errors.CategoryImageAnalysis).
			Component("verification").
			Build()
	}

	return &VerificationResult{
		CropName:   cropName,
		Verified:   parsed.Verified,
		Confidence: parsed.Confidence,
		Method:     "provider",
	}, nil
}

// VerifyCrop checks whether an image plausibly shows the claimed crop.
func (s *Service) VerifyCrop(ctx context.Context, imageURL, cropName string) (*VerificationResult, error) {
	if strings.TrimSpace(imageURL) == "" || strings.TrimSpace(cropName) == "" {
		return nil, errors.Newf("image and crop are required").
			Category(errors.CategoryValidation).
			Component("verification").
			Build()
	}
	return s.verifier.Verify(ctx, imageURL, cropName), nil
}

// VerifyAndDetect verifies the crop first and, when the image passes, records
// the remote classifier's verdict. This path deliberately never falls back to
// the local heuristic: with no remote classifier available the detection is
// persisted as a zero-confidence record without a disease link, matching the
// separate contract this endpoint has always had. A failed verification
// short-circuits with a nil outcome and no error.
func (s *Service) VerifyAndDetect(ctx context.Context, req *Request) (*VerificationResult, *Outcome, error) {
	if err := s.validate(req); err != nil {
		s.recordError("validation")
		return nil, nil, err
	}

	verification := s.verifier.Verify(ctx, req.ImageURL, req.CropRef)
	if !verification.Verified {
		logger.Info("crop verification rejected image",
			"farmer_id", req.FarmerID,
			"crop", req.CropRef,
			"confidence", verification.Confidence)
		return verification, nil, nil
	}

	result := s.remoteClassify(ctx, req.ImageURL)

	crop, err := s.store.ResolveCrop(req.CropRef)
	if err != nil {
		s.recordError("crop")
		return verification, nil, errors.Newf("failed to resolve crop %q: %w", req.CropRef, err).
			Category(errors.CategoryDatabase).
			Component("detection").
			Build()
	}

	record := datastore.Detection{
		FarmerID:  req.FarmerID,
		CropID:    crop.ID,
		ImageURL:  req.ImageURL,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Status:    "completed",
	}

	var translated *diagnosis.Result
	if result != nil {
		if disease, err := s.store.ResolveDisease(&datastore.Disease{
			Name:        result.DiseaseName,
			Description: result.Description,
			Symptoms:    result.Symptoms,
			Treatments:  result.Treatments,
			CropID:      &crop.ID,
		}); err != nil {
			logger.Warn("disease resolution failed, saving detection without disease link",
				"disease_name", result.DiseaseName,
				"error", err)
		} else {
			record.DiseaseID = &disease.ID
		}
		record.Confidence = result.Confidence
		record.DetectedSymptoms = result.DetectedSymptoms
		record.Notes = result.Description

		language := strings.TrimSpace(req.Language)
		if language == "" {
			language = s.settings.Detection.Locale
		}
		translated = s.translator.Detection(ctx, result, language)
	}

	if err := s.store.SaveDetection(&record); err != nil {
		s.recordError("save")
		return verification, nil, errors.Newf("failed to save detection: %w", err).
			Category(errors.CategoryDatabase).
			Component("detection").
			Build()
	}

	return verification, &Outcome{
		Result:               translated,
		ConfidencePercentage: ConfidencePercentage(record.Confidence),
		Detection:            record,
	}, nil
}
