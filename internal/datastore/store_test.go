package datastore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agrovision/cropguard-go/internal/conf"
)

// newSettings builds minimal settings selecting a database backend.
func newSettings(t *testing.T, sqliteEnabled, mysqlEnabled bool) *conf.Settings {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = sqliteEnabled
	settings.Output.MySQL.Enabled = mysqlEnabled
	return settings
}

// newTestStore creates an in-memory SQLite datastore with migrations applied.
func newTestStore(t *testing.T) *DataStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&Crop{}, &Disease{}, &Detection{}))
	return &DataStore{DB: db}
}

func TestResolveCropCreatesOnFirstSight(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	crop, err := ds.ResolveCrop("tomato")
	require.NoError(t, err)
	assert.Equal(t, "tomato", crop.Name)
	assert.Equal(t, "vegetable", crop.Type)
	assert.NotZero(t, crop.ID)

	// Resolving the same name again returns the same record, not a new one.
	again, err := ds.ResolveCrop("tomato")
	require.NoError(t, err)
	assert.Equal(t, crop.ID, again.ID)

	crops, err := ds.GetAllCrops()
	require.NoError(t, err)
	assert.Len(t, crops, 1)
}

func TestResolveCropByNumericID(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	created, err := ds.ResolveCrop("maize")
	require.NoError(t, err)

	crop, err := ds.ResolveCrop("1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, crop.ID)
	assert.Equal(t, "maize", crop.Name)
}

func TestResolveCropUnknownIDFails(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	_, err := ds.ResolveCrop("9999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestResolveCropKeepsExistingType(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	require.NoError(t, ds.DB.Create(&Crop{Name: "apple", Type: "fruit"}).Error)

	crop, err := ds.ResolveCrop("apple")
	require.NoError(t, err)
	assert.Equal(t, "fruit", crop.Type, "existing crops are never rewritten")
}

func TestResolveDisease(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	record := &Disease{
		Name:        "Late Blight",
		Description: "Fungal disease",
		Symptoms:    []string{"dark spots", "wilting"},
		Treatments:  []string{"Copper fungicide"},
	}

	disease, err := ds.ResolveDisease(record)
	require.NoError(t, err)
	assert.NotZero(t, disease.ID)
	assert.Equal(t, []string{"dark spots", "wilting"}, disease.Symptoms)

	again, err := ds.ResolveDisease(&Disease{Name: "Late Blight"})
	require.NoError(t, err)
	assert.Equal(t, disease.ID, again.ID)
	assert.Equal(t, "Fungal disease", again.Description)
}

func TestResolveDiseaseEmptyName(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	_, err := ds.ResolveDisease(&Disease{})
	require.Error(t, err)

	_, err = ds.ResolveDisease(nil)
	require.Error(t, err)
}

func TestSaveDetectionPopulatesAssociations(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	crop, err := ds.ResolveCrop("potato")
	require.NoError(t, err)
	disease, err := ds.ResolveDisease(&Disease{Name: "Rust"})
	require.NoError(t, err)

	detection := &Detection{
		FarmerID:         "farmer-1",
		CropID:           crop.ID,
		DiseaseID:        &disease.ID,
		ImageURL:         "https://img.example.com/leaf.jpg",
		Confidence:       0.82,
		DetectedSymptoms: []string{"leaf yellowing"},
		Status:           "completed",
	}
	require.NoError(t, ds.SaveDetection(detection))

	assert.NotZero(t, detection.ID)
	assert.Equal(t, "potato", detection.Crop.Name)
	require.NotNil(t, detection.Disease)
	assert.Equal(t, "Rust", detection.Disease.Name)
}

func TestSaveDetectionWithoutDisease(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	crop, err := ds.ResolveCrop("wheat")
	require.NoError(t, err)

	detection := &Detection{
		FarmerID:   "farmer-1",
		CropID:     crop.ID,
		ImageURL:   "https://img.example.com/healthy.jpg",
		Confidence: 0.85,
		Status:     "completed",
	}
	require.NoError(t, ds.SaveDetection(detection))
	assert.Nil(t, detection.Disease)
}

func TestDetectionsByFarmer(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	crop, err := ds.ResolveCrop("tomato")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, ds.SaveDetection(&Detection{
			FarmerID: "farmer-a", CropID: crop.ID, Status: "completed",
		}))
	}
	require.NoError(t, ds.SaveDetection(&Detection{
		FarmerID: "farmer-b", CropID: crop.ID, Status: "completed",
	}))

	detections, err := ds.DetectionsByFarmer("farmer-a", 10, 0)
	require.NoError(t, err)
	assert.Len(t, detections, 3)
	for _, d := range detections {
		assert.Equal(t, "farmer-a", d.FarmerID)
		assert.Equal(t, "tomato", d.Crop.Name)
	}

	count, err := ds.CountDetectionsByFarmer("farmer-a")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	page, err := ds.DetectionsByFarmer("farmer-a", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestUpdateDetectionFeedback(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	crop, err := ds.ResolveCrop("tomato")
	require.NoError(t, err)

	detection := &Detection{FarmerID: "farmer-a", CropID: crop.ID, Status: "completed"}
	require.NoError(t, ds.SaveDetection(detection))

	updated, err := ds.UpdateDetectionFeedback("1", false, "rust", "it was actually rust")
	require.NoError(t, err)
	require.NotNil(t, updated.FeedbackAccurate)
	assert.False(t, *updated.FeedbackAccurate)
	assert.Equal(t, "rust", updated.FeedbackCorrectDisease)
	assert.Equal(t, "it was actually rust", updated.FeedbackComment)
}

func TestUpdateDetectionFeedbackMissing(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	_, err := ds.UpdateDetectionFeedback("42", true, "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDetectionsNear(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	crop, err := ds.ResolveCrop("tomato")
	require.NoError(t, err)

	near := &Detection{FarmerID: "a", CropID: crop.ID, Latitude: 12.97, Longitude: 77.59, Status: "completed"}
	far := &Detection{FarmerID: "b", CropID: crop.ID, Latitude: 28.61, Longitude: 77.21, Status: "completed"}
	unlocated := &Detection{FarmerID: "c", CropID: crop.ID, Status: "completed"}
	require.NoError(t, ds.SaveDetection(near))
	require.NoError(t, ds.SaveDetection(far))
	require.NoError(t, ds.SaveDetection(unlocated))

	detections, err := ds.DetectionsNear(12.98, 77.60, 10, 50)
	require.NoError(t, err)
	require.Len(t, detections, 1)
	assert.Equal(t, near.ID, detections[0].ID)
}

func TestGetDetectionBadID(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	_, err := ds.GetDetection("not-a-number")
	require.Error(t, err)
}

func TestNewSelectsStore(t *testing.T) {
	t.Parallel()

	sqliteSettings := newSettings(t, true, false)
	store := New(sqliteSettings)
	_, ok := store.(*SQLiteStore)
	assert.True(t, ok)

	mysqlSettings := newSettings(t, false, true)
	store = New(mysqlSettings)
	_, ok = store.(*MySQLStore)
	assert.True(t, ok)

	assert.Nil(t, New(newSettings(t, false, false)))
}
