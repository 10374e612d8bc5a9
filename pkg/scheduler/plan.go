package scheduler

import (
	"github.com/salesdash/salesdash/pkg/dataset"
	"github.com/salesdash/salesdash/pkg/report"
	"github.com/salesdash/salesdash/pkg/tasks"
)

// WarmPlan lists the sections worth precomputing: every section for the
// default selection and for each single year, in every locale
func WarmPlan(table *dataset.Table, locales []report.Locale, trigger string) []tasks.WarmPayload {
	selections := [][]int{nil}
	for _, year := range table.Years() {
		selections = append(selections, []int{year})
	}

	plan := make([]tasks.WarmPayload, 0, len(report.Sections())*len(selections)*len(locales))

	for _, locale := range locales {
		for _, years := range selections {
			for _, section := range report.Sections() {
				plan = append(plan, tasks.WarmPayload{
					Section: string(section),
					Years:   years,
					Locale:  string(locale),
					Trigger: trigger,
				})
			}
		}
	}

	return plan
}
