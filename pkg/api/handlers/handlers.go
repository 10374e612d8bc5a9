// Package handlers implements the API server interface with request handlers for the salesdash API.
package handlers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/salesdash/salesdash/pkg/report"
)

// CacheWarmer runs the warm-up plan on demand
type CacheWarmer interface {
	Trigger(ctx context.Context, trigger string) (int, error)
}

// Server implements ServerInterface
type Server struct {
	reports *report.Service
	warmer  CacheWarmer
	log     logrus.FieldLogger
}

// NewServer creates a new API server instance. A nil warmer disables
// POST /cache/warm.
func NewServer(reports *report.Service, warmer CacheWarmer, log logrus.FieldLogger) *Server {
	return &Server{
		reports: reports,
		warmer:  warmer,
		log:     log.WithField("component", "api.handlers"),
	}
}

// Ensure we implement the interface at compile time
var _ ServerInterface = (*Server)(nil)
