package report

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"

	"github.com/salesdash/salesdash/pkg/dataset"
)

// Locale selects the language of titles and labels
type Locale string

// Supported locales
const (
	LocaleEN Locale = "en"
	LocaleID Locale = "id"
)

// DefaultLocale is used when a request does not name one
const DefaultLocale = LocaleEN

// ErrUnknownLocale is returned for unsupported locale codes
var ErrUnknownLocale = errors.New("unknown locale")

// Locales returns the supported locales
func Locales() []Locale {
	return []Locale{LocaleEN, LocaleID}
}

// ParseLocale validates a locale code; empty selects the default
func ParseLocale(s string) (Locale, error) {
	if s == "" {
		return DefaultLocale, nil
	}

	for _, l := range Locales() {
		if string(l) == strings.ToLower(s) {
			return l, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLocale, s)
}

//go:embed locales/*.yaml
var catalogFS embed.FS

// Labels renders localized text from per-locale template catalogs.
// Templates have the Sprig function library available.
type Labels struct {
	templates map[Locale]*template.Template
}

// NewLabels parses the embedded catalogs
func NewLabels() (*Labels, error) {
	labels := &Labels{templates: make(map[Locale]*template.Template, len(Locales()))}

	for _, locale := range Locales() {
		data, err := catalogFS.ReadFile("locales/" + string(locale) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to read %s catalog: %w", locale, err)
		}

		catalog := make(map[string]string)
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return nil, fmt.Errorf("failed to parse %s catalog: %w", locale, err)
		}

		root := template.New(string(locale)).Funcs(sprig.TxtFuncMap()).Option("missingkey=zero")

		keys := make([]string, 0, len(catalog))
		for key := range catalog {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for _, key := range keys {
			if _, err := root.New(key).Parse(catalog[key]); err != nil {
				return nil, fmt.Errorf("failed to parse %s template %s: %w", locale, key, err)
			}
		}

		labels.templates[locale] = root
	}

	return labels, nil
}

// Keys returns the catalog keys defined for a locale
func (l *Labels) Keys(locale Locale) []string {
	root, ok := l.templates[locale]
	if !ok {
		return nil
	}

	keys := make([]string, 0)
	for _, t := range root.Templates() {
		if t.Name() != root.Name() {
			keys = append(keys, t.Name())
		}
	}

	sort.Strings(keys)

	return keys
}

// Text renders key for locale. Unknown keys fall back to English and then to the key itself.
func (l *Labels) Text(locale Locale, key string, data map[string]interface{}) string {
	for _, candidate := range []Locale{locale, DefaultLocale} {
		root, ok := l.templates[candidate]
		if !ok || root.Lookup(key) == nil {
			continue
		}

		var buf bytes.Buffer
		if err := root.ExecuteTemplate(&buf, key, data); err != nil {
			return key
		}

		return buf.String()
	}

	return key
}

// Metric returns the display name of a metric
func (l *Labels) Metric(locale Locale, m dataset.Metric) string {
	return l.Text(locale, "metric."+string(m), nil)
}

// DiscountLevel returns the display name of a discount level key
func (l *Labels) DiscountLevel(locale Locale, level string) string {
	if level == dataset.UnknownValue || level == "" {
		level = "unknown"
	}

	return l.Text(locale, "discount_level."+level, nil)
}

// Discounted returns the display name of the discounted flag
func (l *Labels) Discounted(locale Locale, flag string) string {
	return l.Text(locale, "discounted."+flag, nil)
}

// Section returns the title of a section
func (l *Labels) Section(locale Locale, id SectionID) string {
	return l.Text(locale, "section."+string(id), nil)
}

// Nav returns the short navigation name of a section
func (l *Labels) Nav(locale Locale, id SectionID) string {
	return l.Text(locale, "nav."+string(id), nil)
}
