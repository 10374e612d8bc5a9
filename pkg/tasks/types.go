// Package tasks provides task queue management using Asynq
package tasks

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/salesdash/salesdash/pkg/dataset"
	"github.com/salesdash/salesdash/pkg/filter"
	"github.com/salesdash/salesdash/pkg/report"
)

const (
	// TypeWarmSection is the task type for precomputing a cached section
	TypeWarmSection = "section:warm"

	// DefaultQueue is the queue warm tasks are placed on
	DefaultQueue = "warm"
)

// Triggers recorded with enqueued tasks
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerStartup  = "startup"
)

// WarmPayload selects one section to precompute. Years is empty for the
// default selection; the other filters always use their defaults.
type WarmPayload struct {
	Section    string    `json:"section"`
	Years      []int     `json:"years,omitempty"`
	Locale     string    `json:"locale"`
	Metric     string    `json:"metric,omitempty"`
	Trigger    string    `json:"trigger"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// UniqueID returns the task ID used to deduplicate queued work
func (p WarmPayload) UniqueID() string {
	years := "all"

	if len(p.Years) > 0 {
		parts := make([]string, 0, len(p.Years))
		for _, y := range p.Years {
			parts = append(parts, strconv.Itoa(y))
		}

		years = strings.Join(parts, "-")
	}

	return fmt.Sprintf("warm:%s:%s:%s:%s", p.Section, p.Locale, p.Metric, years)
}

// Request converts the payload into a report request over table
func (p WarmPayload) Request(table *dataset.Table) (report.Request, error) {
	section, err := report.ParseSection(p.Section)
	if err != nil {
		return report.Request{}, err
	}

	locale, err := report.ParseLocale(p.Locale)
	if err != nil {
		return report.Request{}, err
	}

	metric, err := report.ParseTimeSeriesMetric(p.Metric)
	if err != nil {
		return report.Request{}, err
	}

	sel := filter.Defaults(table)
	if len(p.Years) > 0 {
		sel.Years = p.Years
	}

	return report.Request{Section: section, Selection: sel, Locale: locale, Metric: metric}, nil
}

// TaskResult contains the result of task execution
type TaskResult struct {
	TaskID      string        `json:"task_id"`
	Section     string        `json:"section"`
	Duration    time.Duration `json:"duration"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	CompletedAt time.Time     `json:"completed_at"`
}
