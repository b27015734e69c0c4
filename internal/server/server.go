// Package server wires the detection pipeline into an HTTP server and
// manages its lifecycle.
package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	api "github.com/agrovision/cropguard-go/internal/api/v2"
	"github.com/agrovision/cropguard-go/internal/conf"
	"github.com/agrovision/cropguard-go/internal/datastore"
	"github.com/agrovision/cropguard-go/internal/detection"
	"github.com/agrovision/cropguard-go/internal/diagnosis"
	"github.com/agrovision/cropguard-go/internal/errors"
	"github.com/agrovision/cropguard-go/internal/knowledge"
	"github.com/agrovision/cropguard-go/internal/logging"
	"github.com/agrovision/cropguard-go/internal/observability"
	"github.com/agrovision/cropguard-go/internal/translate"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal.
const shutdownTimeout = 10 * time.Second

// Run starts the API server and blocks until a termination signal arrives.
func Run(settings *conf.Settings) error {
	store := datastore.New(settings)
	if store == nil {
		return errors.Newf("no database output enabled, configure output.sqlite or output.mysql").
			Category(errors.CategoryConfiguration).
			Component("server").
			Build()
	}
	if err := store.Open(); err != nil {
		return errors.Newf("failed to open database: %w", err).
			Category(errors.CategoryDatabase).
			Component("server").
			Build()
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("Failed to close database", "error", err)
		}
	}()

	metrics, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	base := knowledge.NewBase()
	classifier := diagnosis.NewClassifier(base)
	translator := translate.NewService(translate.NewCatalog(),
		translate.NewProvider(settings.Translation.Provider))
	translator.SetMetrics(metrics.Translation)
	detector := detection.New(settings, store, classifier, translator, metrics)

	e := echo.New()
	e.HideBanner = true

	controller, err := api.New(e, store, settings, detector, base, translator,
		log.Default(), metrics)
	if err != nil {
		return err
	}
	defer controller.Shutdown()

	addr := settings.ListenAddress()
	errChan := make(chan error, 1)
	go func() {
		logging.Info("Starting API server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return errors.Newf("server failed: %w", err).
			Category(errors.CategoryNetwork).
			Component("server").
			Build()
	case sig := <-quit:
		logging.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return errors.Newf("graceful shutdown failed: %w", err).
			Category(errors.CategoryNetwork).
			Component("server").
			Build()
	}
	return nil
}
