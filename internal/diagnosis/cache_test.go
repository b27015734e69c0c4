package diagnosis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCacheRoundTrip(t *testing.T) {
	t.Parallel()

	rc := NewResponseCache(time.Minute)
	result := &Result{DiseaseID: "rust", DiseaseName: "Rust", Confidence: 0.8}

	fp := Fingerprint("https://img.example.com/leaf.jpg")
	rc.Put(fp, result)

	got, found := rc.Get(fp)
	require.True(t, found)
	assert.Equal(t, result, got)
}

func TestResponseCacheMiss(t *testing.T) {
	t.Parallel()

	rc := NewResponseCache(time.Minute)
	_, found := rc.Get("no-such-fingerprint")
	assert.False(t, found)
}

func TestResponseCacheExpiry(t *testing.T) {
	t.Parallel()

	rc := NewResponseCache(50 * time.Millisecond)
	rc.Put("fp", &Result{DiseaseID: "rust"})

	_, found := rc.Get("fp")
	require.True(t, found)

	time.Sleep(100 * time.Millisecond)

	_, found = rc.Get("fp")
	assert.False(t, found, "entry must be gone after the TTL elapses")
}

func TestResponseCacheLastWriteWins(t *testing.T) {
	t.Parallel()

	rc := NewResponseCache(time.Minute)
	rc.Put("fp", &Result{DiseaseID: "rust"})
	rc.Put("fp", &Result{DiseaseID: "leaf_spot"})

	got, found := rc.Get("fp")
	require.True(t, found)
	assert.Equal(t, "leaf_spot", got.DiseaseID)
}

func TestResponseCacheDefaultTTL(t *testing.T) {
	t.Parallel()

	rc := NewResponseCache(0)
	rc.Put("fp", &Result{DiseaseID: "rust"})

	_, found := rc.Get("fp")
	assert.True(t, found)
	assert.Equal(t, 1, rc.Len())

	rc.Flush()
	assert.Equal(t, 0, rc.Len())
}
