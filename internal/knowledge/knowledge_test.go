package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseRecords(t *testing.T) {
	t.Parallel()

	base := NewBase()
	assert.Equal(t, 6, base.Len())

	for _, d := range base.All() {
		assert.NotEmpty(t, d.ID)
		assert.NotEmpty(t, d.Name)
		assert.NotEmpty(t, d.Symptoms, "disease %s has no symptoms", d.ID)
		assert.NotEmpty(t, d.Treatments, "disease %s has no treatments", d.ID)
		assert.GreaterOrEqual(t, d.Prevalence, 0.0)
		assert.LessOrEqual(t, d.Prevalence, 1.0)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	base := NewBase()

	d, ok := base.Get("late_blight")
	require.True(t, ok)
	assert.Equal(t, "Late Blight", d.Name)
	assert.Contains(t, d.Symptoms, "brown spots")

	_, ok = base.Get("nonexistent")
	assert.False(t, ok)
}

func TestHealthy(t *testing.T) {
	t.Parallel()

	d := NewBase().Healthy()
	assert.Equal(t, HealthyID, d.ID)
	assert.Equal(t, "Healthy Plant", d.Name)
}

func TestIterationOrderIsStable(t *testing.T) {
	t.Parallel()

	base := NewBase()
	first := base.All()[0]
	assert.Equal(t, "late_blight", first.ID, "declaration order must be preserved for tie-breaking")
}

func TestNewBaseFrom(t *testing.T) {
	t.Parallel()

	base := NewBaseFrom([]Disease{{ID: "custom", Name: "Custom"}})
	assert.Equal(t, 1, base.Len())

	d, ok := base.Get("custom")
	require.True(t, ok)
	assert.Equal(t, "Custom", d.Name)

	assert.Empty(t, base.Healthy().ID, "custom base without healthy record yields zero value")
}
