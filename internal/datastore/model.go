// model.go this code defines the data model for the application
package datastore

import "time"

// Crop represents a cultivated plant species that detections are filed under.
// Names are unique; resolving an unknown crop name mints a new record exactly
// once.
type Crop struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex:idx_crops_name;not null"`
	Type        string `gorm:"type:varchar(40)"` // e.g. "vegetable", "fruit", "grain"
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Disease represents a known crop disease. Records are seeded lazily from
// detection results, so a disease may initially carry only a name.
type Disease struct {
	ID          uint     `gorm:"primaryKey"`
	Name        string   `gorm:"uniqueIndex:idx_diseases_name;not null"`
	Description string   `gorm:"type:text"`
	Symptoms    []string `gorm:"serializer:json"`
	Treatments  []string `gorm:"serializer:json"`
	CropID      *uint    `gorm:"index:idx_diseases_crop"` // crop the disease was first seen on, if any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Detection represents a single analyzed image submission
type Detection struct {
	ID                     uint     `gorm:"primaryKey"`
	FarmerID               string   `gorm:"index:idx_detections_farmer;not null"`
	CropID                 uint     `gorm:"index:idx_detections_crop;not null"`
	Crop                   Crop     `gorm:"foreignKey:CropID"`
	DiseaseID              *uint    `gorm:"index:idx_detections_disease"` // nil when disease resolution failed or plant is healthy
	Disease                *Disease `gorm:"foreignKey:DiseaseID"`
	ImageURL               string
	Confidence             float64
	DetectedSymptoms       []string  `gorm:"serializer:json"`
	Latitude               float64   `gorm:"index:idx_detections_location"`
	Longitude              float64   `gorm:"index:idx_detections_location"`
	Notes                  string    `gorm:"type:text"`
	Status                 string    `gorm:"type:varchar(20)"` // "completed", "failed"
	FeedbackAccurate       *bool     // nil until the farmer submits feedback
	FeedbackCorrectDisease string    `gorm:"type:varchar(100)"` // disease the farmer believes it was
	FeedbackComment        string    `gorm:"type:text"`
	CreatedAt              time.Time `gorm:"index:idx_detections_created"`
	UpdatedAt              time.Time
}
