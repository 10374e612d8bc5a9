package handlers

// ListSectionsParams defines parameters for ListSections
type ListSectionsParams struct {
	Locale *string `form:"locale,omitempty" json:"locale,omitempty"`
}

// SelectionParams are the filter parameters shared by section, chart and
// export requests. A nil field means the parameter was absent; a non-nil
// empty slice is an explicit empty selection.
type SelectionParams struct {
	Region   *[]string `form:"region,omitempty" json:"region,omitempty"`
	Year     *[]int    `form:"year,omitempty" json:"year,omitempty"`
	Category *[]string `form:"category,omitempty" json:"category,omitempty"`
	Segment  *[]string `form:"segment,omitempty" json:"segment,omitempty"`
	Metric   *string   `form:"metric,omitempty" json:"metric,omitempty"`
	Locale   *string   `form:"locale,omitempty" json:"locale,omitempty"`
}

// GetSectionChartParams defines parameters for GetSectionChart
type GetSectionChartParams struct {
	SelectionParams

	Width  *int `form:"width,omitempty" json:"width,omitempty"`
	Height *int `form:"height,omitempty" json:"height,omitempty"`
}
