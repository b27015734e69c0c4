package diagnosis

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/agrovision/cropguard-go/internal/conf"
	"github.com/agrovision/cropguard-go/internal/errors"
)

// RemoteDetection is the response of the external classification provider.
type RemoteDetection struct {
	DiseaseID  string   `json:"disease_id"`
	Confidence float64  `json:"confidence"`
	Symptoms   []string `json:"symptoms"`
}

// MLClient calls an optional external disease classification API. Absence or
// failure of the provider must degrade gracefully to the built-in heuristic,
// which is the caller's responsibility.
type MLClient struct {
	cfg        conf.ProviderConfig
	httpClient *http.Client
}

// NewMLClient creates a client for the external classification provider.
func NewMLClient(cfg conf.ProviderConfig) *MLClient {
	return &MLClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether an external provider has been configured.
func (c *MLClient) Enabled() bool {
	return c.cfg.Enabled()
}

// HTTPClient exposes the underlying client so tests can intercept transport.
func (c *MLClient) HTTPClient() *http.Client {
	return c.httpClient
}

// Detect submits an image URL to the provider and returns its verdict.
func (c *MLClient) Detect(ctx context.Context, imageURL string) (*RemoteDetection, error) {
	if !c.Enabled() {
		return nil, errors.Newf("classification provider not configured").
			Category(errors.CategoryConfiguration).
			Component("diagnosis").
			Build()
	}

	payload, err := json.Marshal(map[string]string{"image_url": imageURL})
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryClassification).
			Component("diagnosis").
			Build()
	}

	url := c.cfg.URL + "/detect"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Newf("failed to create HTTP request: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", url).
			Component("diagnosis").
			Build()
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("classification provider request failed",
			"url", url,
			"error", err)
		return nil, errors.Newf("HTTP request failed: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", url).
			Component("diagnosis").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Newf("failed to read response body: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", url).
			Component("diagnosis").
			Build()
	}

	if resp.StatusCode != http.StatusOK {
		logger.Warn("classification provider error response",
			"status_code", resp.StatusCode,
			"url", url)
		return nil, errors.Newf("classification provider error (status %d)", resp.StatusCode).
			Category(errors.CategoryHTTP).
			Context("status_code", resp.StatusCode).
			Context("url", url).
			Component("diagnosis").
			Build()
	}

	var detection RemoteDetection
	if err := json.Unmarshal(body, &detection); err != nil {
		return nil, errors.Newf("failed to parse provider response: %w", err).
			Category(errors.CategoryClassification).
			Context("url", url).
			Component("diagnosis").
			Build()
	}

	return &detection, nil
}
