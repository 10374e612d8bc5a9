package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/sirupsen/logrus"

	"github.com/salesdash/salesdash/pkg/api/handlers"
	"github.com/salesdash/salesdash/pkg/report"
)

// ErrSectionsMismatch is returned when the OpenAPI section enum and the report sections differ
var ErrSectionsMismatch = errors.New("openapi section enum does not match report sections")

// Service defines the API service interface
type Service interface {
	Start(ctx context.Context) error
	Stop() error
}

type service struct {
	server          *http.Server
	config          *Config
	reports         *report.Service
	warmer          handlers.CacheWarmer
	frontendHandler http.Handler
	log             logrus.FieldLogger
}

// NewService creates a new API and frontend service. warmer may be nil.
func NewService(cfg *Config, reports *report.Service, warmer handlers.CacheWarmer, frontendHandler http.Handler, log logrus.FieldLogger) Service {
	return &service{
		config:          cfg,
		reports:         reports,
		warmer:          warmer,
		frontendHandler: frontendHandler,
		log:             log.WithField("service", "api"),
	}
}

// NewApp builds the Fiber app serving /api/v1 and, when frontendHandler is
// set, the frontend for every other path
func NewApp(ctx context.Context, reports *report.Service, warmer handlers.CacheWarmer, frontendHandler http.Handler, log logrus.FieldLogger) (*fiber.App, error) {
	doc, err := LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}

	if err := checkSections(doc); err != nil {
		return nil, err
	}

	// Create Fiber app with custom error handler
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		AppName:      "salesdash API",
	})

	setupMiddleware(app)

	server := handlers.NewServer(reports, warmer, log)

	apiV1 := app.Group("/api/v1")

	apiV1.Get("/openapi.json", func(c fiber.Ctx) error {
		return c.JSON(doc)
	})

	handlers.RegisterHandlers(apiV1, server)

	// Register frontend handler as fallback for non-API routes
	if frontendHandler != nil {
		app.Use(adaptor.HTTPHandler(frontendHandler))
	}

	return app, nil
}

// checkSections fails when the published section enum drifts from the sections served
func checkSections(doc *openapi3.T) error {
	enum := SectionEnum(doc)

	ids := make([]string, 0, len(report.Sections()))
	for _, id := range report.Sections() {
		ids = append(ids, string(id))
	}

	if !slices.Equal(enum, ids) {
		return fmt.Errorf("%w: %v != %v", ErrSectionsMismatch, enum, ids)
	}

	return nil
}

// Start initializes and starts the API server with frontend integration
func (s *service) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("API service is disabled")
		return nil
	}

	app, err := NewApp(ctx, s.reports, s.warmer, s.frontendHandler, s.log)
	if err != nil {
		return err
	}

	// Create HTTP server with the Fiber app
	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           adaptor.FiberApp(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		s.log.WithField("addr", s.config.Addr).Info("Starting API and frontend server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("Server failed to start")
		}
	}()

	return nil
}

// Stop gracefully shuts down the API server
func (s *service) Stop() error {
	if s.server == nil {
		return nil
	}

	s.log.Info("Stopping API and frontend server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
