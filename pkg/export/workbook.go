// Package export writes report sections to an XLSX workbook
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/salesdash/salesdash/pkg/observability"
	"github.com/salesdash/salesdash/pkg/report"
)

// ErrNoSections is returned when there is nothing to export
var ErrNoSections = errors.New("no sections to export")

const (
	creator      = "salesdash"
	defaultSheet = "Sheet1"
	labelWidth   = 32
	valueWidth   = 16
)

// sheet tracks the next free row while a section is written
type sheet struct {
	f     *excelize.File
	name  string
	row   int
	bold  int
	width int
}

// Workbook writes one sheet per section and returns the export ID stored in
// the document properties. Each sheet starts with the section title and its
// KPI block, followed by one table per chart.
func Workbook(sections []*report.Section, w io.Writer) (string, error) {
	id, err := workbook(sections, w)
	if err != nil {
		observability.RecordExport("failed")

		return "", err
	}

	observability.RecordExport("success")

	return id, nil
}

func workbook(sections []*report.Section, w io.Writer) (string, error) {
	if len(sections) == 0 {
		return "", ErrNoSections
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	for i, section := range sections {
		name := SheetName(section.ID)

		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return "", fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("failed to create sheet %s: %w", name, err)
		}

		s := &sheet{f: f, name: name, row: 1, bold: bold}
		if err := s.writeSection(section); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", section.ID, err)
		}
	}

	f.SetActiveSheet(0)

	id := uuid.NewString()

	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:     creator,
		Identifier:  id,
		Title:       "Superstore sales report",
		Description: selectionSummary(sections[0]),
		Language:    string(sections[0].Locale),
	}); err != nil {
		return "", fmt.Errorf("failed to set document properties: %w", err)
	}

	if err := f.Write(w); err != nil {
		return "", fmt.Errorf("failed to write workbook: %w", err)
	}

	return id, nil
}

// SheetName returns the worksheet name used for a section
func SheetName(id report.SectionID) string {
	return string(id)
}

func (s *sheet) writeSection(section *report.Section) error {
	if err := s.title(section.Title); err != nil {
		return err
	}

	if err := s.line(selectionSummary(section)); err != nil {
		return err
	}

	if section.Comparison != nil {
		if err := s.line(section.Comparison.Caption); err != nil {
			return err
		}
	}

	for _, note := range section.Notes {
		if err := s.line(note); err != nil {
			return err
		}
	}

	s.row++

	if len(section.KPIs) > 0 {
		header, rows := KPITable(section)
		if err := s.table(header, rows); err != nil {
			return err
		}
	}

	for i := range section.Charts {
		if err := s.chart(&section.Charts[i]); err != nil {
			return fmt.Errorf("chart %s: %w", section.Charts[i].ID, err)
		}
	}

	return s.layout()
}

func (s *sheet) chart(c *report.Chart) error {
	if err := s.title(c.Title); err != nil {
		return err
	}

	header, rows := ChartTable(c)

	return s.table(header, rows)
}

func (s *sheet) title(text string) error {
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}

	if err := s.f.SetCellValue(s.name, cell, text); err != nil {
		return err
	}

	if err := s.f.SetCellStyle(s.name, cell, cell, s.bold); err != nil {
		return err
	}

	s.row++

	return nil
}

func (s *sheet) line(text string) error {
	if text == "" {
		return nil
	}

	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}

	s.row++

	return s.f.SetCellValue(s.name, cell, text)
}

// table writes a bold header followed by rows and leaves one blank row after it
func (s *sheet) table(header []interface{}, rows [][]interface{}) error {
	start, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}

	end, err := excelize.CoordinatesToCellName(len(header), s.row)
	if err != nil {
		return err
	}

	if err := s.f.SetSheetRow(s.name, start, &header); err != nil {
		return err
	}

	if err := s.f.SetCellStyle(s.name, start, end, s.bold); err != nil {
		return err
	}

	s.width = max(s.width, len(header))
	s.row++

	for _, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, s.row)
		if err != nil {
			return err
		}

		if err := s.f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}

		s.row++
	}

	s.row++

	return nil
}

func (s *sheet) layout() error {
	if err := s.f.SetColWidth(s.name, "A", "A", labelWidth); err != nil {
		return err
	}

	if s.width < 2 {
		return nil
	}

	last, err := excelize.ColumnNumberToName(s.width)
	if err != nil {
		return err
	}

	return s.f.SetColWidth(s.name, "B", last, valueWidth)
}

func selectionSummary(section *report.Section) string {
	years := make([]string, 0, len(section.Selection.Years))
	for _, y := range section.Selection.Years {
		years = append(years, strconv.Itoa(y))
	}

	parts := []string{
		"Regions: " + strings.Join(section.Selection.Regions, ", "),
		"Years: " + strings.Join(years, ", "),
		"Categories: " + strings.Join(section.Selection.Categories, ", "),
		"Segments: " + strings.Join(section.Selection.Segments, ", "),
	}

	if section.Metric != "" {
		parts = append(parts, "Metric: "+string(section.Metric))
	}

	return strings.Join(parts, " | ")
}
