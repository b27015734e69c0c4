package translate

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovision/cropguard-go/internal/conf"
	"github.com/agrovision/cropguard-go/internal/diagnosis"
	"github.com/agrovision/cropguard-go/internal/observability/metrics"
)

func newCatalogOnlyService() *Service {
	return NewService(NewCatalog(), nil)
}

func TestTextCatalogHit(t *testing.T) {
	t.Parallel()

	s := newCatalogOnlyService()
	assert.Equal(t, "Roya", s.Text(context.Background(), "Rust", "es"))
	assert.Equal(t, "जंग", s.Text(context.Background(), "Rust", "hi"))
}

func TestTextUnmappedPhrasePassesThrough(t *testing.T) {
	t.Parallel()

	s := newCatalogOnlyService()
	assert.Equal(t, "Unmapped Phrase", s.Text(context.Background(), "Unmapped Phrase", "hi"))
}

func TestTextEmptyInput(t *testing.T) {
	t.Parallel()

	s := newCatalogOnlyService()
	assert.Equal(t, "", s.Text(context.Background(), "", "es"))
	assert.Equal(t, "", s.Text(context.Background(), "   ", "es"))
}

func TestTextDefaultLanguageShortCircuits(t *testing.T) {
	t.Parallel()

	s := newCatalogOnlyService()
	assert.Equal(t, "Late Blight", s.Text(context.Background(), "Late Blight", "en"))
	assert.Equal(t, "anything at all", s.Text(context.Background(), "anything at all", ""))
}

func TestTextProviderFallsBackOnError(t *testing.T) {
	provider := NewProvider(conf.ProviderConfig{
		URL:     "https://translate.example.com/v2",
		Timeout: 5 * time.Second,
	})
	httpmock.ActivateNonDefault(provider.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder(http.MethodPost, "https://translate.example.com/v2",
		httpmock.NewStringResponder(http.StatusBadGateway, `{}`))

	s := NewService(NewCatalog(), provider)
	got := s.Text(context.Background(), "Copper fungicide", "hi")
	assert.Equal(t, "Copper fungicide", got, "provider failure must fall back to original text")
}

func TestTextProviderSuccess(t *testing.T) {
	provider := NewProvider(conf.ProviderConfig{
		URL:     "https://translate.example.com/v2",
		Timeout: 5 * time.Second,
	})
	httpmock.ActivateNonDefault(provider.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder(http.MethodPost, "https://translate.example.com/v2",
		httpmock.NewStringResponder(http.StatusOK, `{"translatedText":"कॉपर कवकनाशी"}`))

	s := NewService(NewCatalog(), provider)
	got := s.Text(context.Background(), "Copper fungicide", "hi")
	assert.Equal(t, "कॉपर कवकनाशी", got)

	// Second lookup is served from the provider cache.
	got = s.Text(context.Background(), "Copper fungicide", "hi")
	assert.Equal(t, "कॉपर कवकनाशी", got)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestTextRecordsMetrics(t *testing.T) {
	t.Parallel()

	m, err := metrics.NewTranslationMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	s := newCatalogOnlyService()
	s.SetMetrics(m)

	s.Text(context.Background(), "Rust", "es")
	s.Text(context.Background(), "Unmapped Phrase", "es")

	assert.InDelta(t, 1, testutil.ToFloat64(m.CatalogHits), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PassthroughCounter), 1e-9)
}

func TestBatchPreservesOrder(t *testing.T) {
	t.Parallel()

	s := newCatalogOnlyService()
	got := s.Batch(context.Background(), []string{"Rust", "Leaf Spot", "something else"}, "es")
	assert.Equal(t, []string{"Roya", "Mancha foliar", "something else"}, got)
}

func sampleResult() *diagnosis.Result {
	return &diagnosis.Result{
		DiseaseID:        "rust",
		DiseaseName:      "Rust",
		Description:      "Fungal disease causing rust-colored spots",
		Confidence:       0.8,
		Symptoms:         []string{"orange spots", "", "yellow spots"},
		Treatments:       []string{"Sulfur spray", "Tebuconazole"},
		DetectedSymptoms: []string{"leaf yellowing"},
		Recommendations:  []string{"Primary treatment: Sulfur spray"},
	}
}

func TestDetectionDefaultLanguageReturnsSameObject(t *testing.T) {
	t.Parallel()

	s := newCatalogOnlyService()
	result := sampleResult()

	got := s.Detection(context.Background(), result, "en")
	assert.Same(t, result, got, "default language must return the result untouched")
}

func TestDetectionTranslatesFields(t *testing.T) {
	t.Parallel()

	s := newCatalogOnlyService()
	result := sampleResult()

	got := s.Detection(context.Background(), result, "es")
	require.NotNil(t, got)
	assert.NotSame(t, result, got)

	assert.Equal(t, "Roya", got.DiseaseName)
	assert.Equal(t, "es", got.Language)
	// Blank entries are filtered before translation.
	assert.Equal(t, []string{"orange spots", "yellow spots"}, got.Symptoms)
	// Confidence and identifiers pass through untouched.
	assert.Equal(t, result.DiseaseID, got.DiseaseID)
	assert.InDelta(t, result.Confidence, got.Confidence, 1e-9)

	// Original result is unmodified.
	assert.Equal(t, "Rust", result.DiseaseName)
	assert.Len(t, result.Symptoms, 3)
}

func TestDetectionNil(t *testing.T) {
	t.Parallel()

	s := newCatalogOnlyService()
	assert.Nil(t, s.Detection(context.Background(), nil, "es"))
}

func TestSupported(t *testing.T) {
	t.Parallel()

	assert.True(t, Supported("hi"))
	assert.False(t, Supported("xx"))
}
