// internal/api/v2/languages.go
package api

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/agrovision/cropguard-go/internal/translate"
)

// initLanguageRoutes registers the supported languages endpoint.
func (c *Controller) initLanguageRoutes() {
	c.Group.GET("/languages", c.ListLanguages)
}

// LanguageDTO pairs a language code with its English name.
type LanguageDTO struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ListLanguages returns the supported response languages.
// API: GET /api/v2/languages
func (c *Controller) ListLanguages(ctx echo.Context) error {
	languages := make([]LanguageDTO, 0, len(translate.Languages))
	for code, name := range translate.Languages {
		languages = append(languages, LanguageDTO{Code: code, Name: name})
	}
	sort.Slice(languages, func(i, j int) bool {
		return languages[i].Code < languages[j].Code
	})

	return ctx.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"languages": languages,
		"default":   translate.DefaultLanguage,
	})
}
