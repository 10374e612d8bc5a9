package handlers

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v3"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers
type ServerInterface interface {
	// List report sections in navigation order
	// (GET /sections)
	ListSections(c fiber.Ctx, params ListSectionsParams) error
	// Selectable filter values and the default selection
	// (GET /filters)
	GetFilters(c fiber.Ctx) error
	// Compute one report section
	// (GET /sections/{section})
	GetSection(c fiber.Ctx, section string, params SelectionParams) error
	// Render one chart of a section as PNG
	// (GET /sections/{section}/charts/{chart})
	GetSectionChart(c fiber.Ctx, section string, chart string, params GetSectionChartParams) error
	// Export every section for one selection as an XLSX workbook
	// (GET /export.xlsx)
	ExportWorkbook(c fiber.Ctx, params SelectionParams) error
	// Run the warm-up plan now
	// (POST /cache/warm)
	WarmCache(c fiber.Ctx) error
	// Drop every cached section
	// (DELETE /cache)
	InvalidateCache(c fiber.Ctx) error
}

// ServerInterfaceWrapper converts fiber contexts to parameters
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// ListSections operation middleware
func (siw *ServerInterfaceWrapper) ListSections(c fiber.Ctx) error {
	query, err := parseQuery(c)
	if err != nil {
		return err
	}

	var params ListSectionsParams

	if err := bindOptional(query, "locale", &params.Locale); err != nil {
		return err
	}

	return siw.Handler.ListSections(c, params)
}

// GetFilters operation middleware
func (siw *ServerInterfaceWrapper) GetFilters(c fiber.Ctx) error {
	return siw.Handler.GetFilters(c)
}

// GetSection operation middleware
func (siw *ServerInterfaceWrapper) GetSection(c fiber.Ctx) error {
	query, err := parseQuery(c)
	if err != nil {
		return err
	}

	params, err := bindSelection(query)
	if err != nil {
		return err
	}

	return siw.Handler.GetSection(c, c.Params("section"), params)
}

// GetSectionChart operation middleware
func (siw *ServerInterfaceWrapper) GetSectionChart(c fiber.Ctx) error {
	query, err := parseQuery(c)
	if err != nil {
		return err
	}

	selection, err := bindSelection(query)
	if err != nil {
		return err
	}

	params := GetSectionChartParams{SelectionParams: selection}

	if err := bindOptional(query, "width", &params.Width); err != nil {
		return err
	}

	if err := bindOptional(query, "height", &params.Height); err != nil {
		return err
	}

	return siw.Handler.GetSectionChart(c, c.Params("section"), c.Params("chart"), params)
}

// ExportWorkbook operation middleware
func (siw *ServerInterfaceWrapper) ExportWorkbook(c fiber.Ctx) error {
	query, err := parseQuery(c)
	if err != nil {
		return err
	}

	params, err := bindSelection(query)
	if err != nil {
		return err
	}

	return siw.Handler.ExportWorkbook(c, params)
}

// WarmCache operation middleware
func (siw *ServerInterfaceWrapper) WarmCache(c fiber.Ctx) error {
	return siw.Handler.WarmCache(c)
}

// InvalidateCache operation middleware
func (siw *ServerInterfaceWrapper) InvalidateCache(c fiber.Ctx) error {
	return siw.Handler.InvalidateCache(c)
}

// RegisterHandlers creates http.Handler with routing matching OpenAPI spec.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.Get("/sections", wrapper.ListSections)
	router.Get("/filters", wrapper.GetFilters)
	router.Get("/sections/:section", wrapper.GetSection)
	router.Get("/sections/:section/charts/:chart", wrapper.GetSectionChart)
	router.Get("/export.xlsx", wrapper.ExportWorkbook)
	router.Post("/cache/warm", wrapper.WarmCache)
	router.Delete("/cache", wrapper.InvalidateCache)
}

func parseQuery(c fiber.Ctx) (url.Values, error) {
	query, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Errorf("invalid format for query string: %w", err).Error())
	}

	return query, nil
}

func bindSelection(query url.Values) (SelectionParams, error) {
	var params SelectionParams

	if err := bindList(query, "region", &params.Region); err != nil {
		return params, err
	}

	if err := bindList(query, "year", &params.Year); err != nil {
		return params, err
	}

	if err := bindList(query, "category", &params.Category); err != nil {
		return params, err
	}

	if err := bindList(query, "segment", &params.Segment); err != nil {
		return params, err
	}

	if err := bindOptional(query, "metric", &params.Metric); err != nil {
		return params, err
	}

	if err := bindOptional(query, "locale", &params.Locale); err != nil {
		return params, err
	}

	return params, nil
}

// bindList binds a repeatable form parameter. A single empty value such as
// ?region= selects nothing rather than failing to parse.
func bindList[T any](query url.Values, name string, dest **[]T) error {
	if values, ok := query[name]; ok && len(values) == 1 && values[0] == "" {
		empty := []T{}
		*dest = &empty

		return nil
	}

	return bindOptional(query, name, dest)
}

func bindOptional(query url.Values, name string, dest interface{}) error {
	if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Errorf("invalid format for parameter %s: %w", name, err).Error())
	}

	return nil
}
