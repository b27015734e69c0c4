// internal/api/v2/api.go
package api

import (
	"crypto/rand"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/agrovision/cropguard-go/internal/conf"
	"github.com/agrovision/cropguard-go/internal/datastore"
	"github.com/agrovision/cropguard-go/internal/detection"
	"github.com/agrovision/cropguard-go/internal/errors"
	"github.com/agrovision/cropguard-go/internal/knowledge"
	"github.com/agrovision/cropguard-go/internal/logging"
	"github.com/agrovision/cropguard-go/internal/observability"
	"github.com/agrovision/cropguard-go/internal/translate"
)

// farmerIDHeader identifies the requesting farmer. There is no account
// system; the mobile client generates a stable ID per installation.
const farmerIDHeader = "X-Farmer-ID"

// Controller manages the API routes and handlers
type Controller struct {
	Echo       *echo.Echo
	Group      *echo.Group
	DS         datastore.Interface
	Settings   *conf.Settings
	Detector   *detection.Service
	Base       *knowledge.Base
	Translator *translate.Service

	logger         *log.Logger
	apiLogger      *slog.Logger   // Structured logger for API operations
	apiLevelVar    *slog.LevelVar // Dynamic level control
	apiLoggerClose func() error
	metrics        *observability.Metrics // may be nil
	startTime      time.Time
}

// New creates a new API controller and registers all routes.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings,
	detector *detection.Service, base *knowledge.Base, translator *translate.Service,
	logger *log.Logger, metrics *observability.Metrics) (*Controller, error) {
	return NewWithOptions(e, ds, settings, detector, base, translator, logger, metrics, true)
}

// NewWithOptions creates a new API controller with optional route
// initialization. Tests pass false and register only the routes they need.
func NewWithOptions(e *echo.Echo, ds datastore.Interface, settings *conf.Settings,
	detector *detection.Service, base *knowledge.Base, translator *translate.Service,
	logger *log.Logger, metrics *observability.Metrics, initializeRoutes bool) (*Controller, error) {

	if logger == nil {
		logger = log.Default()
	}
	if detector == nil {
		return nil, fmt.Errorf("detection service must not be nil")
	}

	c := &Controller{
		Echo:       e,
		DS:         ds,
		Settings:   settings,
		Detector:   detector,
		Base:       base,
		Translator: translator,
		logger:     logger,
		metrics:    metrics,
		startTime:  time.Now(),
	}

	// Initialize structured logger for API requests
	c.apiLevelVar = new(slog.LevelVar)
	c.apiLevelVar.Set(slog.LevelInfo)

	apiLogger, closeFunc, err := logging.NewFileLogger("logs/web.log", "api", c.apiLevelVar)
	if err != nil {
		logger.Printf("Warning: Failed to initialize API structured logger: %v", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: c.apiLevelVar})
		c.apiLogger = slog.New(fbHandler).With("service", "api")
		c.apiLoggerClose = func() error { return nil }
	} else {
		c.apiLogger = apiLogger
		c.apiLoggerClose = closeFunc
	}

	// Create v2 API group
	c.Group = e.Group("/api/v2")

	// Configure middlewares
	c.Group.Use(middleware.Recover()) // Recover should be early
	c.Group.Use(middleware.CORS())
	c.Group.Use(middleware.BodyLimit("10M")) // Image uploads need headroom
	c.Group.Use(c.LoggingMiddleware())

	if initializeRoutes {
		c.initRoutes()
	}

	return c, nil
}

// Shutdown flushes and closes API resources.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			c.logger.Printf("Failed to close API log file: %v", err)
		}
	}
}

// LoggingMiddleware creates a middleware function that logs API requests
func (c *Controller) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()

			err := next(ctx)

			if c.apiLogger == nil {
				return err
			}

			req := ctx.Request()
			res := ctx.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("query", req.URL.RawQuery),
				slog.Int("status", res.Status),
				slog.String("ip", ctx.RealIP()),
				slog.String("farmer_id", req.Header.Get(farmerIDHeader)),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}

			c.apiLogger.LogAttrs(req.Context(), slog.LevelInfo, "API Request", attrs...)

			return err
		}
	}
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	// Health check endpoint - publicly accessible
	c.Group.GET("/health", c.HealthCheck)

	routeInitializers := []struct {
		name string
		fn   func()
	}{
		{"detection routes", c.initDetectionRoutes},
		{"crop routes", c.initCropRoutes},
		{"disease routes", c.initDiseaseRoutes},
		{"language routes", c.initLanguageRoutes},
	}

	for _, initializer := range routeInitializers {
		c.Debug("Initializing %s...", initializer.name)
		initializer.fn()
	}

	// Serve stored uploads so persisted image URLs resolve.
	uploadPath := c.Settings.Detection.UploadPath
	if uploadPath == "" {
		uploadPath = "uploads"
	}
	c.Echo.Static("/uploads", uploadPath)

	if c.metrics != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(c.metrics.Handler()))
	}
}

// HealthCheck handles the API health check endpoint
func (c *Controller) HealthCheck(ctx echo.Context) error {
	response := map[string]any{
		"status":    "healthy",
		"version":   c.Settings.Version,
		"uptime_s":  int(time.Since(c.startTime).Seconds()),
		"timestamp": time.Now().Format(time.RFC3339),
	}
	return ctx.JSON(http.StatusOK, response)
}

// farmerID extracts the requesting farmer's ID from the request header.
func farmerID(ctx echo.Context) string {
	return ctx.Request().Header.Get(farmerIDHeader)
}

// Error response structure
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // Unique identifier for tracking this error
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	correlationID := generateCorrelationID()

	var errorStr string
	if err != nil {
		errorStr = err.Error()
	} else {
		errorStr = message
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}
}

// generateCorrelationID creates a unique identifier for error tracking using
// cryptographic randomness
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}

	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError constructs and returns an appropriate error response
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)
	ip := ctx.RealIP()

	c.logger.Printf("API Error [%s] from %s: %s: %v", errorResp.CorrelationID, ip, message, err)

	if c.apiLogger != nil {
		var errorStr string
		if err != nil {
			errorStr = err.Error()
		} else {
			errorStr = message
		}

		c.apiLogger.Error("API Error",
			"correlation_id", errorResp.CorrelationID,
			"message", message,
			"error", errorStr,
			"code", code,
			"path", ctx.Request().URL.Path,
			"method", ctx.Request().Method,
			"ip", ip,
		)
	}

	return ctx.JSON(code, errorResp)
}

// ServiceError maps a service-layer error onto an HTTP response using its
// error category.
func (c *Controller) ServiceError(ctx echo.Context, err error, message string) error {
	code := http.StatusInternalServerError
	switch errors.CategoryOf(err) {
	case errors.CategoryValidation:
		code = http.StatusBadRequest
	case errors.CategoryNotFound:
		code = http.StatusNotFound
	case errors.CategoryConflict:
		code = http.StatusConflict
	}
	return c.HandleError(ctx, err, message, code)
}

// Debug logs debug messages when debug mode is enabled
func (c *Controller) Debug(format string, v ...any) {
	if c.Settings.Debug {
		msg := fmt.Sprintf(format, v...)
		c.logger.Printf("[DEBUG] %s", msg)

		if c.apiLogger != nil {
			c.apiLogger.Debug(msg)
		}
	}
}
