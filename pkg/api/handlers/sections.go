package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/salesdash/salesdash/pkg/chart"
	"github.com/salesdash/salesdash/pkg/dataset"
	"github.com/salesdash/salesdash/pkg/export"
	"github.com/salesdash/salesdash/pkg/filter"
	"github.com/salesdash/salesdash/pkg/report"
	"github.com/salesdash/salesdash/pkg/tasks"
)

const (
	minImageSize = 64
	maxImageSize = 4096

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ListSections handles GET /api/v1/sections
func (s *Server) ListSections(c fiber.Ctx, params ListSectionsParams) error {
	locale, err := parseLocale(params.Locale)
	if err != nil {
		return err
	}

	sections := s.reports.Sections(locale)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"sections": sections,
		"total":    len(sections),
	})
}

// GetFilters handles GET /api/v1/filters
func (s *Server) GetFilters(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(s.reports.Filters())
}

// GetSection handles GET /api/v1/sections/{section}
func (s *Server) GetSection(c fiber.Ctx, section string, params SelectionParams) error {
	req, err := s.request(section, params)
	if err != nil {
		return err
	}

	out, err := s.reports.Section(c.Context(), req)
	if err != nil {
		return s.sectionError(err)
	}

	return c.Status(fiber.StatusOK).JSON(out)
}

// GetSectionChart handles GET /api/v1/sections/{section}/charts/{chart}
func (s *Server) GetSectionChart(c fiber.Ctx, section, chartFile string, params GetSectionChartParams) error {
	chartID, ok := strings.CutSuffix(chartFile, ".png")
	if !ok || chartID == "" {
		return ErrChartNotFound
	}

	opts, err := imageOptions(params)
	if err != nil {
		return err
	}

	req, err := s.request(section, params.SelectionParams)
	if err != nil {
		return err
	}

	out, err := s.reports.Section(c.Context(), req)
	if err != nil {
		return s.sectionError(err)
	}

	ch, ok := out.Chart(chartID)
	if !ok {
		return ErrChartNotFound
	}

	var buf bytes.Buffer
	if err := chart.RenderWithOptions(ch, &buf, opts); err != nil {
		if errors.Is(err, chart.ErrUnsupportedKind) || errors.Is(err, chart.ErrUnrenderable) {
			return unprocessable(err)
		}

		s.log.WithError(err).WithFields(logrus.Fields{
			"section": section,
			"chart":   chartID,
		}).Error("Failed to render chart")

		return fmt.Errorf("failed to render chart: %w", err)
	}

	c.Set(fiber.HeaderContentType, "image/png")

	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}

// ExportWorkbook handles GET /api/v1/export.xlsx
func (s *Server) ExportWorkbook(c fiber.Ctx, params SelectionParams) error {
	locale, err := parseLocale(params.Locale)
	if err != nil {
		return err
	}

	metric, err := parseMetric(params.Metric)
	if err != nil {
		return err
	}

	sections, err := s.reports.All(c.Context(), s.selection(params), locale, metric)
	if err != nil {
		return s.sectionError(err)
	}

	var buf bytes.Buffer

	exportID, err := export.Workbook(sections, &buf)
	if err != nil {
		s.log.WithError(err).Error("Failed to export workbook")

		return fmt.Errorf("failed to export workbook: %w", err)
	}

	c.Set(fiber.HeaderContentType, contentTypeXLSX)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="salesdash-%s.xlsx"`, exportID))
	c.Set("X-Export-ID", exportID)

	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}

// WarmCache handles POST /api/v1/cache/warm
func (s *Server) WarmCache(c fiber.Ctx) error {
	if s.warmer == nil {
		return ErrWarmUnavailable
	}

	n, err := s.warmer.Trigger(c.Context(), tasks.TriggerManual)
	if err != nil {
		s.log.WithError(err).Error("Manual warm-up failed")

		return fmt.Errorf("warm-up failed: %w", err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"sections": n})
}

// InvalidateCache handles DELETE /api/v1/cache
func (s *Server) InvalidateCache(c fiber.Ctx) error {
	n, err := s.reports.Invalidate(c.Context())
	if err != nil {
		s.log.WithError(err).Error("Failed to invalidate cache")

		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"deleted": n})
}

func (s *Server) request(section string, params SelectionParams) (report.Request, error) {
	id, err := report.ParseSection(section)
	if err != nil {
		return report.Request{}, ErrSectionNotFound
	}

	locale, err := parseLocale(params.Locale)
	if err != nil {
		return report.Request{}, err
	}

	metric, err := parseMetric(params.Metric)
	if err != nil {
		return report.Request{}, err
	}

	return report.Request{
		Section:   id,
		Selection: s.selection(params),
		Locale:    locale,
		Metric:    metric,
	}, nil
}

// selection starts from the defaults and replaces every filter the client named
func (s *Server) selection(params SelectionParams) filter.Selection {
	sel := filter.Defaults(s.reports.Table())

	if params.Region != nil {
		sel.Regions = *params.Region
	}

	if params.Year != nil {
		sel.Years = *params.Year
	}

	if params.Category != nil {
		sel.Categories = *params.Category
	}

	if params.Segment != nil {
		sel.Segments = *params.Segment
	}

	return sel
}

func (s *Server) sectionError(err error) error {
	switch {
	case errors.Is(err, report.ErrUnknownSection):
		return ErrSectionNotFound
	case report.IsRequestError(err):
		return badRequest(err)
	}

	s.log.WithError(err).Error("Failed to compute section")

	return fmt.Errorf("failed to compute section: %w", err)
}

func parseLocale(p *string) (report.Locale, error) {
	if p == nil {
		return report.DefaultLocale, nil
	}

	locale, err := report.ParseLocale(*p)
	if err != nil {
		return "", badRequest(err)
	}

	return locale, nil
}

func parseMetric(p *string) (dataset.Metric, error) {
	if p == nil {
		return "", nil
	}

	metric, err := report.ParseTimeSeriesMetric(*p)
	if err != nil {
		return "", badRequest(err)
	}

	return metric, nil
}

func imageOptions(params GetSectionChartParams) (chart.Options, error) {
	var opts chart.Options

	if params.Width != nil {
		if *params.Width < minImageSize || *params.Width > maxImageSize {
			return opts, ErrInvalidImageSize
		}

		opts.Width = *params.Width
	}

	if params.Height != nil {
		if *params.Height < minImageSize || *params.Height > maxImageSize {
			return opts, ErrInvalidImageSize
		}

		opts.Height = *params.Height
	}

	return opts, nil
}
