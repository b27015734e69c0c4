// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agrovision/cropguard-go/internal/conf"
)

// defaultCropType is assigned to crops minted on first sight.
const defaultCropType = "vegetable"

// Interface abstracts the underlying database implementation and defines the
// operations the detection pipeline needs.
type Interface interface {
	Open() error
	Close() error
	ResolveCrop(ref string) (*Crop, error)
	GetCrop(id string) (Crop, error)
	GetAllCrops() ([]Crop, error)
	ResolveDisease(record *Disease) (*Disease, error)
	SaveDetection(detection *Detection) error
	GetDetection(id string) (Detection, error)
	DetectionsByFarmer(farmerID string, limit, offset int) ([]Detection, error)
	CountDetectionsByFarmer(farmerID string) (int64, error)
	UpdateDetectionFeedback(id string, accurate bool, correctDisease, comment string) (Detection, error)
	DetectionsNear(latitude, longitude, radiusKm float64, limit int) ([]Detection, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// ResolveCrop resolves a crop reference to a stored record. A numeric
// reference is treated as a crop ID and must exist; any other reference is
// treated as a crop name and is created on first sight. The unique index on
// the name column makes concurrent first-sight resolutions converge on a
// single record.
func (ds *DataStore) ResolveCrop(ref string) (*Crop, error) {
	if cropID, err := strconv.ParseUint(ref, 10, 32); err == nil {
		var crop Crop
		if err := ds.DB.First(&crop, cropID).Error; err != nil {
			return nil, fmt.Errorf("getting crop with ID %d: %w", cropID, err)
		}
		return &crop, nil
	}

	var crop Crop
	err := ds.DB.Where("name = ?", ref).
		Attrs(Crop{Name: ref, Type: defaultCropType}).
		FirstOrCreate(&crop).Error
	if err != nil {
		return nil, fmt.Errorf("resolving crop %q: %w", ref, err)
	}
	return &crop, nil
}

// GetCrop retrieves a crop by its ID.
func (ds *DataStore) GetCrop(id string) (Crop, error) {
	cropID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return Crop{}, fmt.Errorf("converting ID to integer: %w", err)
	}

	var crop Crop
	if err := ds.DB.First(&crop, cropID).Error; err != nil {
		return Crop{}, fmt.Errorf("getting crop with ID %d: %w", cropID, err)
	}
	return crop, nil
}

// GetAllCrops retrieves all crops ordered by name.
func (ds *DataStore) GetAllCrops() ([]Crop, error) {
	var crops []Crop
	if err := ds.DB.Order("name ASC").Find(&crops).Error; err != nil {
		return nil, fmt.Errorf("getting all crops: %w", err)
	}
	return crops, nil
}

// ResolveDisease finds a disease by name, creating it from the provided
// record when missing. The record's name must be set.
func (ds *DataStore) ResolveDisease(record *Disease) (*Disease, error) {
	if record == nil || record.Name == "" {
		return nil, fmt.Errorf("disease record has no name")
	}

	var disease Disease
	err := ds.DB.Where("name = ?", record.Name).
		Attrs(Disease{
			Name:        record.Name,
			Description: record.Description,
			Symptoms:    record.Symptoms,
			Treatments:  record.Treatments,
			CropID:      record.CropID,
		}).
		FirstOrCreate(&disease).Error
	if err != nil {
		return nil, fmt.Errorf("resolving disease %q: %w", record.Name, err)
	}
	return &disease, nil
}

// SaveDetection stores a detection and reloads it with its crop and disease
// associations populated.
func (ds *DataStore) SaveDetection(detection *Detection) error {
	if err := ds.DB.Create(detection).Error; err != nil {
		return fmt.Errorf("saving detection: %w", err)
	}

	// Reload with associations so callers can render the full record.
	err := ds.DB.Preload("Crop").Preload("Disease").
		First(detection, detection.ID).Error
	if err != nil {
		return fmt.Errorf("reloading detection %d: %w", detection.ID, err)
	}
	return nil
}

// GetDetection retrieves a detection by its ID with associations populated.
func (ds *DataStore) GetDetection(id string) (Detection, error) {
	detectionID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return Detection{}, fmt.Errorf("converting ID to integer: %w", err)
	}

	var detection Detection
	err = ds.DB.Preload("Crop").Preload("Disease").
		First(&detection, detectionID).Error
	if err != nil {
		return Detection{}, fmt.Errorf("getting detection with ID %d: %w", detectionID, err)
	}
	return detection, nil
}

// DetectionsByFarmer retrieves a farmer's detections, newest first.
func (ds *DataStore) DetectionsByFarmer(farmerID string, limit, offset int) ([]Detection, error) {
	var detections []Detection
	err := ds.DB.Preload("Crop").Preload("Disease").
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&detections).Error
	if err != nil {
		return nil, fmt.Errorf("getting detections for farmer %s: %w", farmerID, err)
	}
	return detections, nil
}

// CountDetectionsByFarmer returns the total number of detections a farmer
// has filed, for paginating history responses.
func (ds *DataStore) CountDetectionsByFarmer(farmerID string) (int64, error) {
	var count int64
	err := ds.DB.Model(&Detection{}).
		Where("farmer_id = ?", farmerID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting detections for farmer %s: %w", farmerID, err)
	}
	return count, nil
}

// UpdateDetectionFeedback records farmer feedback on a detection and returns
// the updated record.
func (ds *DataStore) UpdateDetectionFeedback(id string, accurate bool, correctDisease, comment string) (Detection, error) {
	detectionID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return Detection{}, fmt.Errorf("converting ID to integer: %w", err)
	}

	var detection Detection
	if err := ds.DB.First(&detection, detectionID).Error; err != nil {
		return Detection{}, fmt.Errorf("getting detection with ID %d: %w", detectionID, err)
	}

	updates := map[string]interface{}{
		"feedback_accurate":        accurate,
		"feedback_correct_disease": correctDisease,
		"feedback_comment":         comment,
	}
	if err := ds.DB.Model(&detection).Updates(updates).Error; err != nil {
		return Detection{}, fmt.Errorf("updating feedback for detection %d: %w", detectionID, err)
	}

	return ds.GetDetection(id)
}

// DetectionsNear retrieves detections within a bounding box approximating a
// radius around a point. One degree of latitude is close to 111 km; the
// longitude span uses the same factor, which overshoots away from the
// equator but keeps the query on plain indexed columns.
func (ds *DataStore) DetectionsNear(latitude, longitude, radiusKm float64, limit int) ([]Detection, error) {
	delta := radiusKm / 111.0

	var detections []Detection
	err := ds.DB.Preload("Crop").Preload("Disease").
		Where("latitude BETWEEN ? AND ?", latitude-delta, latitude+delta).
		Where("longitude BETWEEN ? AND ?", longitude-delta, longitude+delta).
		Where("latitude != 0 OR longitude != 0").
		Order("created_at DESC").
		Limit(limit).
		Find(&detections).Error
	if err != nil {
		return nil, fmt.Errorf("getting detections near (%f, %f): %w", latitude, longitude, err)
	}
	return detections, nil
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Crop{}, &Disease{}, &Detection{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}
