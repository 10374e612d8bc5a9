package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/salesdash/salesdash/pkg/cache"
	"github.com/salesdash/salesdash/pkg/dataset"
	"github.com/salesdash/salesdash/pkg/filter"
	"github.com/salesdash/salesdash/pkg/observability"
)

// SectionInfo describes a section for navigation
type SectionInfo struct {
	ID    SectionID `json:"id"`
	Title string    `json:"title"`
	Nav   string    `json:"nav"`
}

// Filters lists the values a client can select and the default selection
type Filters struct {
	Regions    []string         `json:"regions"`
	Years      []int            `json:"years"`
	Categories []string         `json:"categories"`
	Segments   []string         `json:"segments"`
	Defaults   filter.Selection `json:"defaults"`
	Metrics    []dataset.Metric `json:"metrics"`
	Locales    []Locale         `json:"locales"`
	Unmapped   []string         `json:"unmapped_states"`
}

// Service computes sections over the shared table, consulting the cache first
type Service struct {
	log     logrus.FieldLogger
	cfg     *Config
	table   *dataset.Table
	builder *Builder
	cache   cache.Cache
}

// NewService creates a report service. A nil cache disables caching.
func NewService(log logrus.FieldLogger, cfg *Config, table *dataset.Table, builder *Builder, c cache.Cache) *Service {
	if c == nil {
		c = cache.Noop{}
	}

	return &Service{
		log:     log.WithField("service", "report"),
		cfg:     cfg,
		table:   table,
		builder: builder,
		cache:   c,
	}
}

// Table returns the shared enriched table
func (s *Service) Table() *dataset.Table {
	return s.table
}

// Labels returns the label catalogs
func (s *Service) Labels() *Labels {
	return s.builder.Labels()
}

// Sections describes every section in the given locale
func (s *Service) Sections(locale Locale) []SectionInfo {
	out := make([]SectionInfo, 0, len(Sections()))
	for _, id := range Sections() {
		out = append(out, SectionInfo{
			ID:    id,
			Title: s.builder.labels.Section(locale, id),
			Nav:   s.builder.labels.Nav(locale, id),
		})
	}

	return out
}

// Filters returns the selectable values and defaults
func (s *Service) Filters() Filters {
	defaults := filter.Defaults(s.table)

	return Filters{
		Regions:    defaults.Regions,
		Years:      defaults.Years,
		Categories: defaults.Categories,
		Segments:   defaults.Segments,
		Defaults:   defaults,
		Metrics:    TimeSeriesMetrics(),
		Locales:    Locales(),
		Unmapped:   s.table.UnmappedStates(),
	}
}

// Resolve fills in the default locale and time series metric
func (s *Service) Resolve(req Request) Request {
	if req.Locale == "" {
		req.Locale = DefaultLocale
	}

	if req.Metric == "" {
		if m, err := parseTimeSeriesMetric(s.cfg.DefaultMetric); err == nil {
			req.Metric = m
		} else {
			req.Metric = dataset.MetricSales
		}
	}

	// Only the time series depends on the metric
	if req.Section != SectionTimeSeries {
		req.Metric = ""
	}

	req.Selection = req.Selection.Normalize()

	return req
}

// Section returns the requested section, from cache when possible
func (s *Service) Section(ctx context.Context, req Request) (*Section, error) {
	if _, err := ParseSection(string(req.Section)); err != nil {
		return nil, err
	}

	req = s.Resolve(req)
	key := req.Key()

	if cached, err := s.fromCache(ctx, req, key); err == nil && cached != nil {
		return cached, nil
	}

	start := time.Now()

	section, err := s.builder.Build(s.table, req)
	if err != nil {
		observability.RecordSection(string(req.Section), "failed", time.Since(start).Seconds())

		return nil, err
	}

	observability.RecordSection(string(req.Section), "success", time.Since(start).Seconds())

	s.store(ctx, key, section)

	return section, nil
}

// Warm computes a section and stores it, bypassing any cached copy
func (s *Service) Warm(ctx context.Context, req Request) error {
	if _, err := ParseSection(string(req.Section)); err != nil {
		return err
	}

	req = s.Resolve(req)

	section, err := s.builder.Build(s.table, req)
	if err != nil {
		return err
	}

	return s.storeErr(ctx, req.Key(), section)
}

// All computes every section for one selection, in navigation order
func (s *Service) All(ctx context.Context, sel filter.Selection, locale Locale, metric dataset.Metric) ([]*Section, error) {
	out := make([]*Section, 0, len(Sections()))

	for _, id := range Sections() {
		section, err := s.Section(ctx, Request{Section: id, Selection: sel, Locale: locale, Metric: metric})
		if err != nil {
			return nil, err
		}

		out = append(out, section)
	}

	return out, nil
}

// Invalidate drops every cached section
func (s *Service) Invalidate(ctx context.Context) (int, error) {
	return s.cache.InvalidateAll(ctx)
}

func (s *Service) fromCache(ctx context.Context, req Request, key string) (*Section, error) {
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to read section cache")
		observability.RecordError("report", "cache_read")

		return nil, err
	}

	if entry == nil {
		observability.RecordCacheMiss(string(req.Section))

		return nil, nil
	}

	var section Section
	if err := json.Unmarshal(entry.Payload, &section); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Discarding undecodable cached section")

		return nil, err
	}

	observability.RecordCacheHit(string(req.Section))

	return &section, nil
}

func (s *Service) store(ctx context.Context, key string, section *Section) {
	if err := s.storeErr(ctx, key, section); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to write section cache")
		observability.RecordError("report", "cache_write")
	}
}

func (s *Service) storeErr(ctx context.Context, key string, section *Section) error {
	payload, err := json.Marshal(section)
	if err != nil {
		return fmt.Errorf("failed to encode section: %w", err)
	}

	return s.cache.Set(ctx, cache.Entry{Key: key, Payload: payload, TTL: s.cfg.CacheTTL})
}

// parseTimeSeriesMetric accepts only metrics the time series can chart
func parseTimeSeriesMetric(s string) (dataset.Metric, error) {
	m, err := dataset.ParseMetric(s)
	if err != nil {
		return "", err
	}

	if !slices.Contains(TimeSeriesMetrics(), m) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMetric, s)
	}

	return m, nil
}

// ParseTimeSeriesMetric validates a time series metric name; empty is allowed
func ParseTimeSeriesMetric(s string) (dataset.Metric, error) {
	if s == "" {
		return "", nil
	}

	return parseTimeSeriesMetric(s)
}

// IsRequestError reports whether err was caused by invalid request input
func IsRequestError(err error) bool {
	return errors.Is(err, ErrUnknownSection) || errors.Is(err, ErrUnsupportedMetric) ||
		errors.Is(err, ErrUnknownLocale) || errors.Is(err, dataset.ErrUnknownMetric)
}
