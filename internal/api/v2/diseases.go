// internal/api/v2/diseases.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrovision/cropguard-go/internal/diagnosis"
	"github.com/agrovision/cropguard-go/internal/translate"
)

// initDiseaseRoutes registers knowledge base endpoints.
func (c *Controller) initDiseaseRoutes() {
	c.Group.GET("/diseases", c.ListDiseases)
	c.Group.GET("/diseases/:id/treatments", c.DiseaseTreatments)
}

// ListDiseases returns the built-in disease knowledge base.
// API: GET /api/v2/diseases
func (c *Controller) ListDiseases(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"diseases": c.Base.All(),
	})
}

// DiseaseTreatments returns the treatment plan for a known disease,
// optionally translated.
// API: GET /api/v2/diseases/:id/treatments
func (c *Controller) DiseaseTreatments(ctx echo.Context) error {
	options, ok := diagnosis.TreatmentOptionsFor(c.Base, ctx.Param("id"))
	if !ok {
		return c.HandleError(ctx, nil, "Disease not found", http.StatusNotFound)
	}

	language := ctx.QueryParam("language")
	if c.Translator != nil && language != "" && language != translate.DefaultLanguage {
		reqCtx := ctx.Request().Context()
		options.DiseaseName = c.Translator.Text(reqCtx, options.DiseaseName, language)
		options.Treatments = c.Translator.Batch(reqCtx, options.Treatments, language)
		options.PreventiveMeasures = c.Translator.Batch(reqCtx, options.PreventiveMeasures, language)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"treatments": options,
	})
}
