// internal/api/v2/crops.go
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agrovision/cropguard-go/internal/datastore"
)

// initCropRoutes registers crop catalog and verification endpoints.
func (c *Controller) initCropRoutes() {
	c.Group.GET("/crops", c.ListCrops)
	c.Group.GET("/crops/:id", c.GetCrop)
	c.Group.POST("/crops/verify", c.VerifyCrop)
	c.Group.POST("/crops/verify-detect", c.VerifyAndDetect)
}

// CropDTO is the wire form of a crop record.
type CropDTO struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newCropDTO(crop *datastore.Crop) CropDTO {
	return CropDTO{
		ID:          crop.ID,
		Name:        crop.Name,
		Type:        crop.Type,
		Description: crop.Description,
		CreatedAt:   crop.CreatedAt,
	}
}

// ListCrops returns all known crops.
// API: GET /api/v2/crops
func (c *Controller) ListCrops(ctx echo.Context) error {
	crops, err := c.DS.GetAllCrops()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load crops", http.StatusInternalServerError)
	}

	dtos := make([]CropDTO, 0, len(crops))
	for i := range crops {
		dtos = append(dtos, newCropDTO(&crops[i]))
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"success": true,
		"crops":   dtos,
	})
}

// GetCrop returns a single crop by ID.
// API: GET /api/v2/crops/:id
func (c *Controller) GetCrop(ctx echo.Context) error {
	crop, err := c.DS.GetCrop(ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "Crop not found", http.StatusNotFound)
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"success": true,
		"crop":    newCropDTO(&crop),
	})
}

type verifyCropRequest struct {
	ImageURL string `json:"imageUrl"`
	Crop     string `json:"crop"`
}

// VerifyCrop checks whether an image plausibly shows the claimed crop
// without running detection.
// API: POST /api/v2/crops/verify
func (c *Controller) VerifyCrop(ctx echo.Context) error {
	var body verifyCropRequest
	if err := ctx.Bind(&body); err != nil {
		return c.HandleError(ctx, err, "Invalid verification request", http.StatusBadRequest)
	}

	result, err := c.Detector.VerifyCrop(ctx.Request().Context(), body.ImageURL, body.Crop)
	if err != nil {
		return c.ServiceError(ctx, err, "Verification failed")
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success":      true,
		"verification": result,
	})
}

// VerifyAndDetect verifies the crop first and, when the image passes,
// records the external classifier's verdict. A zero-confidence detection is
// stored when no classifier is available.
// API: POST /api/v2/crops/verify-detect
func (c *Controller) VerifyAndDetect(ctx echo.Context) error {
	req, err := c.bindDetectRequest(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid detection request", http.StatusBadRequest)
	}

	verification, outcome, err := c.Detector.VerifyAndDetect(ctx.Request().Context(), req)
	if err != nil {
		return c.ServiceError(ctx, err, "Detection failed")
	}

	response := map[string]any{
		"success":      true,
		"verification": verification,
	}
	if outcome == nil {
		return ctx.JSON(http.StatusOK, response)
	}
	response["detection"] = newOutcomeDTO(outcome)
	response["cached"] = outcome.Cached
	return ctx.JSON(http.StatusCreated, response)
}
