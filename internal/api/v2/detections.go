// internal/api/v2/detections.go
package api

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/agrovision/cropguard-go/internal/datastore"
	"github.com/agrovision/cropguard-go/internal/detection"
	"github.com/agrovision/cropguard-go/internal/translate"
)

// initDetectionRoutes registers the detection pipeline endpoints.
func (c *Controller) initDetectionRoutes() {
	c.Group.POST("/detections/detect", c.Detect)
	c.Group.GET("/detections", c.DetectionHistory)
	c.Group.GET("/detections/nearby", c.NearbyDetections)
	c.Group.GET("/detections/:id", c.GetDetection)
	c.Group.POST("/detections/:id/feedback", c.DetectionFeedback)
}

// detectRequest is the JSON form of a detection submission. Multipart
// submissions carry the same fields as form values plus an "image" file.
type detectRequest struct {
	ImageURL  string  `json:"imageUrl"`
	Crop      string  `json:"crop"`
	Language  string  `json:"language"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DetectionDTO is the wire form of a completed detection.
type DetectionDTO struct {
	ID                     uint      `json:"id"`
	DiseaseID              string    `json:"diseaseId"`
	DiseaseName            string    `json:"diseaseName"`
	Description            string    `json:"description"`
	Confidence             float64   `json:"confidence"`
	ConfidencePercentage   int       `json:"confidencePercentage"`
	Symptoms               []string  `json:"symptoms"`
	Treatments             []string  `json:"treatments"`
	DetectedSymptoms       []string  `json:"detectedSymptoms"`
	Recommendations        []string  `json:"recommendations"`
	Language               string    `json:"language,omitempty"`
	Crop                   *CropDTO  `json:"crop,omitempty"`
	ImageURL               string    `json:"imageUrl,omitempty"`
	Latitude               float64   `json:"latitude"`
	Longitude              float64   `json:"longitude"`
	Status                 string    `json:"status"`
	FeedbackAccurate       *bool     `json:"feedbackAccurate,omitempty"`
	FeedbackCorrectDisease string    `json:"feedbackCorrectDisease,omitempty"`
	FeedbackComment        string    `json:"feedbackComment,omitempty"`
	CreatedAt              time.Time `json:"createdAt"`
}

type detectResponse struct {
	Success   bool          `json:"success"`
	Cached    bool          `json:"cached"`
	Detection *DetectionDTO `json:"detection"`
}

// newOutcomeDTO merges the diagnosis with the persisted record.
func newOutcomeDTO(outcome *detection.Outcome) *DetectionDTO {
	dto := newRecordDTO(&outcome.Detection)
	dto.ConfidencePercentage = outcome.ConfidencePercentage

	// The translated diagnosis wins over the stored canonical fields. A nil
	// result means the stored record carries everything there is to report.
	result := outcome.Result
	if result == nil {
		return dto
	}
	dto.DiseaseID = result.DiseaseID
	dto.DiseaseName = result.DiseaseName
	dto.Description = result.Description
	dto.Symptoms = result.Symptoms
	dto.Treatments = result.Treatments
	dto.DetectedSymptoms = result.DetectedSymptoms
	dto.Recommendations = result.Recommendations
	dto.Language = result.Language
	return dto
}

// translateRecordDTO localizes the disease-derived fields of a stored record.
// The coordinates, confidence and feedback fields stay as persisted.
func (c *Controller) translateRecordDTO(reqCtx context.Context, dto *DetectionDTO, language string) {
	if c.Translator == nil || language == "" || language == translate.DefaultLanguage {
		return
	}
	if dto.DiseaseName != "" {
		dto.DiseaseName = c.Translator.Text(reqCtx, dto.DiseaseName, language)
	}
	if dto.Description != "" {
		dto.Description = c.Translator.Text(reqCtx, dto.Description, language)
	}
	dto.Symptoms = c.Translator.Batch(reqCtx, dto.Symptoms, language)
	dto.Treatments = c.Translator.Batch(reqCtx, dto.Treatments, language)
	dto.Language = language
}

// newRecordDTO renders a stored detection record.
func newRecordDTO(d *datastore.Detection) *DetectionDTO {
	dto := &DetectionDTO{
		ID:                     d.ID,
		Confidence:             d.Confidence,
		ConfidencePercentage:   detection.ConfidencePercentage(d.Confidence),
		DetectedSymptoms:       d.DetectedSymptoms,
		ImageURL:               d.ImageURL,
		Latitude:               d.Latitude,
		Longitude:              d.Longitude,
		Status:                 d.Status,
		FeedbackAccurate:       d.FeedbackAccurate,
		FeedbackCorrectDisease: d.FeedbackCorrectDisease,
		FeedbackComment:        d.FeedbackComment,
		CreatedAt:              d.CreatedAt,
	}
	if d.Crop.ID != 0 {
		crop := newCropDTO(&d.Crop)
		dto.Crop = &crop
	}
	if d.Disease != nil {
		dto.DiseaseName = d.Disease.Name
		dto.Description = d.Disease.Description
		dto.Symptoms = d.Disease.Symptoms
		dto.Treatments = d.Disease.Treatments
	}
	return dto
}

// Detect runs the detection pipeline on a submitted image.
// API: POST /api/v2/detections/detect
func (c *Controller) Detect(ctx echo.Context) error {
	req, err := c.bindDetectRequest(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid detection request", http.StatusBadRequest)
	}

	outcome, err := c.Detector.Detect(ctx.Request().Context(), req)
	if err != nil {
		return c.ServiceError(ctx, err, "Detection failed")
	}

	return ctx.JSON(http.StatusCreated, detectResponse{
		Success:   true,
		Cached:    outcome.Cached,
		Detection: newOutcomeDTO(outcome),
	})
}

// bindDetectRequest accepts either a JSON body or a multipart form with an
// uploaded image file.
func (c *Controller) bindDetectRequest(ctx echo.Context) (*detection.Request, error) {
	req := &detection.Request{FarmerID: farmerID(ctx)}

	contentType := ctx.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		imageRef, err := c.saveUpload(ctx)
		if err != nil {
			return nil, err
		}
		req.ImageURL = imageRef
		req.CropRef = ctx.FormValue("crop")
		req.Language = ctx.FormValue("language")
		req.Latitude, _ = strconv.ParseFloat(ctx.FormValue("latitude"), 64)
		req.Longitude, _ = strconv.ParseFloat(ctx.FormValue("longitude"), 64)
		return req, nil
	}

	var body detectRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	req.ImageURL = body.ImageURL
	req.CropRef = body.Crop
	req.Language = body.Language
	req.Latitude = body.Latitude
	req.Longitude = body.Longitude
	return req, nil
}

// saveUpload stores an uploaded image under the configured upload path and
// returns its accessible URL. A missing file is not an error here; the
// service rejects empty image references during validation.
func (c *Controller) saveUpload(ctx echo.Context) (string, error) {
	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		return "", nil
	}

	uploadPath := c.Settings.Detection.UploadPath
	if uploadPath == "" {
		uploadPath = "uploads"
	}
	if err := os.MkdirAll(uploadPath, 0o750); err != nil {
		return "", err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer func() {
		_ = src.Close()
	}()

	name := uuid.New().String() + filepath.Ext(fileHeader.Filename)
	target := filepath.Join(uploadPath, name)
	dst, err := os.Create(target) //nolint:gosec // target is built from a generated UUID
	if err != nil {
		return "", err
	}
	defer func() {
		_ = dst.Close()
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	c.Debug("Stored uploaded image as %s", target)
	return c.uploadURL(name), nil
}

// uploadURL builds the accessible URL for a stored upload. Without a
// configured public host the URL stays server-relative.
func (c *Controller) uploadURL(name string) string {
	base := strings.TrimSuffix(c.Settings.WebServer.Host, "/")
	return base + "/uploads/" + name
}

type historyResponse struct {
	Success    bool            `json:"success"`
	Total      int64           `json:"total"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
	Detections []*DetectionDTO `json:"detections"`
}

// DetectionHistory lists the requesting farmer's detections, newest first.
// API: GET /api/v2/detections
func (c *Controller) DetectionHistory(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	offset, _ := strconv.Atoi(ctx.QueryParam("offset"))
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	detections, total, err := c.Detector.History(ctx.Request().Context(), farmerID(ctx), limit, offset)
	if err != nil {
		return c.ServiceError(ctx, err, "Failed to load detection history")
	}

	language := ctx.QueryParam("language")
	dtos := make([]*DetectionDTO, 0, len(detections))
	for i := range detections {
		dto := newRecordDTO(&detections[i])
		c.translateRecordDTO(ctx.Request().Context(), dto, language)
		dtos = append(dtos, dto)
	}

	return ctx.JSON(http.StatusOK, historyResponse{
		Success:    true,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		Detections: dtos,
	})
}

// GetDetection returns a single stored detection.
// API: GET /api/v2/detections/:id
func (c *Controller) GetDetection(ctx echo.Context) error {
	record, err := c.DS.GetDetection(ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "Detection not found", http.StatusNotFound)
	}
	if record.FarmerID != farmerID(ctx) {
		return c.HandleError(ctx, nil, "Detection not found", http.StatusNotFound)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"detection": newRecordDTO(&record),
	})
}

type feedbackRequest struct {
	Accurate       bool   `json:"accurate"`
	CorrectDisease string `json:"correctDisease"`
	Comment        string `json:"comment"`
}

// DetectionFeedback records accuracy feedback on a detection.
// API: POST /api/v2/detections/:id/feedback
func (c *Controller) DetectionFeedback(ctx echo.Context) error {
	var body feedbackRequest
	if err := ctx.Bind(&body); err != nil {
		return c.HandleError(ctx, err, "Invalid feedback request", http.StatusBadRequest)
	}

	record, err := c.Detector.Feedback(ctx.Request().Context(),
		ctx.Param("id"), farmerID(ctx), body.Accurate, body.CorrectDisease, body.Comment)
	if err != nil {
		return c.ServiceError(ctx, err, "Failed to record feedback")
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"detection": newRecordDTO(&record),
	})
}

// NearbyDetections lists recent detections around a point.
// API: GET /api/v2/detections/nearby
func (c *Controller) NearbyDetections(ctx echo.Context) error {
	latitude, latErr := strconv.ParseFloat(ctx.QueryParam("latitude"), 64)
	longitude, lngErr := strconv.ParseFloat(ctx.QueryParam("longitude"), 64)
	if latErr != nil || lngErr != nil {
		return c.HandleError(ctx, nil, "latitude and longitude are required", http.StatusBadRequest)
	}
	radiusKm, _ := strconv.ParseFloat(ctx.QueryParam("radius"), 64)
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))

	detections, err := c.Detector.Nearby(ctx.Request().Context(), latitude, longitude, radiusKm, limit)
	if err != nil {
		return c.ServiceError(ctx, err, "Failed to load nearby detections")
	}

	dtos := make([]*DetectionDTO, 0, len(detections))
	for i := range detections {
		dtos = append(dtos, newRecordDTO(&detections[i]))
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"detections": dtos,
	})
}
