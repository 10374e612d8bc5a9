package report

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// groupThousands inserts commas into the integer part of a fixed-point string
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}

		b.WriteRune(r)
	}

	if hasFrac {
		return sign + b.String() + "." + frac
	}

	return sign + b.String()
}

func fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}

	s := decimal.NewFromFloat(v).Round(places).StringFixed(places)
	if strings.Trim(s, "-0.") == "" {
		s = strings.TrimPrefix(s, "-")
	}

	return s
}

// FormatValue renders a KPI value for display
func FormatValue(v float64, f Format) string {
	switch f {
	case FormatCurrency:
		s := groupThousands(fixed(v, 0))
		if strings.HasPrefix(s, "-") {
			return "-$" + s[1:]
		}

		return "$" + s
	case FormatPercent:
		return fixed(v*100, 2) + "%"
	default:
		return groupThousands(fixed(v, 0))
	}
}

// FormatDelta renders a KPI delta with an explicit sign
func FormatDelta(v float64, f Format) string {
	var s string

	switch f {
	case FormatPercent:
		s = fixed(v*100, 2) + "%"
	default:
		s = groupThousands(fixed(v, 0))
	}

	if !strings.HasPrefix(s, "-") && s != "n/a" {
		s = "+" + s
	}

	return s
}
