package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/patrickmn/go-cache"

	"github.com/agrovision/cropguard-go/internal/conf"
	"github.com/agrovision/cropguard-go/internal/errors"
)

// Provider calls an optional external translation API. Responses are cached
// so repeated phrases do not hit the network.
type Provider struct {
	cfg        conf.ProviderConfig
	httpClient *http.Client
	cache      *cache.Cache
}

// NewProvider creates a client for the external translation provider.
func NewProvider(cfg conf.ProviderConfig) *Provider {
	return &Provider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache.New(cache.NoExpiration, cache.NoExpiration),
	}
}

// Enabled reports whether an external provider has been configured.
func (p *Provider) Enabled() bool {
	return p.cfg.Enabled()
}

type translateRequest struct {
	Text   string `json:"q"`
	Target string `json:"target"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate submits a phrase to the provider and returns its translation.
func (p *Provider) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if !p.Enabled() {
		return "", errors.Newf("translation provider not configured").
			Category(errors.CategoryConfiguration).
			Component("translate").
			Build()
	}

	cacheKey := fmt.Sprintf("%s:%s", targetLanguage, text)
	if cached, found := p.cache.Get(cacheKey); found {
		if translated, ok := cached.(string); ok {
			return translated, nil
		}
	}

	payload, err := json.Marshal(translateRequest{Text: text, Target: targetLanguage})
	if err != nil {
		return "", errors.New(err).
			Category(errors.CategoryTranslation).
			Component("translate").
			Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Newf("failed to create HTTP request: %w", err).
			Category(errors.CategoryNetwork).
			Component("translate").
			Build()
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", errors.Newf("HTTP request failed: %w", err).
			Category(errors.CategoryNetwork).
			Context("target_language", targetLanguage).
			Component("translate").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Newf("failed to read response body: %w", err).
			Category(errors.CategoryNetwork).
			Component("translate").
			Build()
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("translation provider error (status %d)", resp.StatusCode).
			Category(errors.CategoryHTTP).
			Context("status_code", resp.StatusCode).
			Context("target_language", targetLanguage).
			Component("translate").
			Build()
	}

	var parsed translateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errors.Newf("failed to parse provider response: %w", err).
			Category(errors.CategoryTranslation).
			Component("translate").
			Build()
	}

	p.cache.Set(cacheKey, parsed.TranslatedText, cache.DefaultExpiration)
	return parsed.TranslatedText, nil
}
