package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/patientcard/patientcard/internal/config"
	"github.com/patientcard/patientcard/internal/domain/patientcard"
	"github.com/patientcard/patientcard/internal/platform/db"
	"github.com/patientcard/patientcard/internal/platform/middleware"
	"github.com/patientcard/patientcard/internal/platform/openapi"
)

const apiVersion = "0.1.0"

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger, err := newLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, poolConfig(cfg))
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	if cfg.AutoMigrate {
		n, err := db.NewMigrator(pool, cfg.MigrationsDir).Up(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("auto-migration failed")
			return err
		}
		logger.Info().Int("applied", n).Msg("migrations applied")
	}

	patients := patientcard.NewPatientRepo(pool)
	diseases := patientcard.NewDiseaseRepo(pool)
	tx := db.NewTxRunner(pool)
	handler := patientcard.NewHandler(
		patientcard.NewPatientService(patients, diseases, tx, logger),
		patientcard.NewDiseaseService(patients, diseases, tx, logger),
	)

	e := newEcho(cfg, logger)
	baseURL := fmt.Sprintf("http://localhost:%s", cfg.Port)
	registerRoutes(e, handler, db.PoolHealthHandler(pool), baseURL)

	addr := ":" + cfg.Port
	go func() {
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newEcho builds the server with the global middleware chain. Recovery sits
// outermost so panics in later middleware are caught too.
func newEcho(cfg *config.Config, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	return e
}

func registerRoutes(e *echo.Echo, h *patientcard.Handler, dbHealth echo.HandlerFunc, baseURL string) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", dbHealth)

	api := e.Group("")
	h.RegisterRoutes(api)
	openapi.NewGenerator(h, apiVersion, baseURL).RegisterRoutes(api)
}
