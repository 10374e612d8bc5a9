// Package worker runs the Asynq server that executes warm tasks
package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/salesdash/salesdash/pkg/tasks"
)

// Service defines the public interface for the worker service
type Service interface {
	// Start initializes and starts the worker service
	Start(ctx context.Context) error

	// Stop gracefully shuts down the worker service
	Stop() error
}

// service encapsulates the worker application logic
type service struct {
	config *Config
	log    logrus.FieldLogger

	warmer   tasks.Warmer
	redisOpt *asynq.RedisClientOpt
	queue    string

	server *asynq.Server
}

// NewService creates a new worker consuming queue
func NewService(log logrus.FieldLogger, cfg *Config, redisOpt *asynq.RedisClientOpt, queue string, warmer tasks.Warmer) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if queue == "" {
		queue = tasks.DefaultQueue
	}

	return &service{
		log:      log.WithField("service", "worker"),
		config:   cfg,
		warmer:   warmer,
		redisOpt: redisOpt,
		queue:    queue,
	}, nil
}

// Start initializes and starts the worker service
func (s *service) Start(_ context.Context) error {
	handler := tasks.NewTaskHandler(s.log, s.warmer)

	srv := asynq.NewServer(*s.redisOpt, asynq.Config{
		Concurrency:     s.config.Concurrency,
		Queues:          map[string]int{s.queue: 10},
		ShutdownTimeout: s.config.ShutdownTimeout,
		Logger:          newAsynqLogger(s.log),
	})

	mux := asynq.NewServeMux()
	for taskType, handlerFunc := range handler.Routes() {
		mux.HandleFunc(taskType, handlerFunc)
	}

	// Start before returning so Stop always has a server to shut down
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("failed to start worker server: %w", err)
	}

	s.server = srv

	s.log.WithFields(logrus.Fields{
		"queue":       s.queue,
		"concurrency": s.config.Concurrency,
	}).Info("Worker service started successfully")

	return nil
}

// Stop gracefully shuts down the worker application
func (s *service) Stop() error {
	if s.server != nil {
		s.server.Shutdown()
	}

	s.log.Info("Worker service stopped successfully")

	return nil
}

// asynqLogger routes Asynq's internal logging through logrus
type asynqLogger struct {
	log logrus.FieldLogger
}

func newAsynqLogger(log logrus.FieldLogger) asynq.Logger {
	return &asynqLogger{log: log.WithField("component", "asynq")}
}

func (l *asynqLogger) Debug(args ...interface{}) { l.log.Debug(args...) }
func (l *asynqLogger) Info(args ...interface{})  { l.log.Info(args...) }
func (l *asynqLogger) Warn(args ...interface{})  { l.log.Warn(args...) }
func (l *asynqLogger) Error(args ...interface{}) { l.log.Error(args...) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.log.Fatal(args...) }

// Ensure service implements the interface
var _ Service = (*service)(nil)
