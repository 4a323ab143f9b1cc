// Package export builds the machine-readable JSON documents downstream
// consumers depend on: version maps, release history arrays, l10n changeset
// documents and status reports. The output shapes here are a de-facto
// published contract; field names and sort discipline must stay stable.
package export

import (
	"fmt"
	"time"

	"github.com/relenghq/shipit/classify"
	"github.com/relenghq/shipit/config"
	"github.com/relenghq/shipit/filter"
	"github.com/relenghq/shipit/model"
)

// shippedDateLayout is the date format used in history pairs.
const shippedDateLayout = "2006-01-02"

// Exporter renders export documents from release records.
type Exporter struct {
	engine *filter.Engine
	cfg    *config.Config
}

// New builds an Exporter over the given configuration.
func New(cfg *config.Config) *Exporter {
	return &Exporter{
		engine: filter.NewEngine(cfg.ClassifierContexts()),
		cfg:    cfg,
	}
}

// Entry is one exported release: the display version (esr suffix stripped),
// the shipped date, and the raw l10n changeset payload for callers that
// need locales.
type Entry struct {
	Version    string
	ShippedAt  string
	Changesets string
}

// filteredReleases selects the shipped releases of one product matching the
// given categories, in ascending submission order, with display versions.
// Unshipped records are skipped: a release without a shipped date has not
// happened yet as far as the exports are concerned.
func (e *Exporter) filteredReleases(records []model.Release, product string, categories []classify.Category, mostRecent bool, esrNext bool) ([]Entry, error) {
	cats := categories
	if esrNext {
		cats = replaceESRWithNext(categories)
	}

	matches, err := e.engine.Filter(records, filter.Options{
		Product:        product,
		Categories:     cats,
		ShippedOnly:    true,
		MostRecentOnly: mostRecent,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		entries = append(entries, Entry{
			Version:    classify.DisplayVersion(m.Release.Version),
			ShippedAt:  m.Release.ShippedAt.UTC().Format(shippedDateLayout),
			Changesets: m.Release.L10nChangesets,
		})
	}
	return entries, nil
}

// History renders the [version, shippedDate] pair list for one product and
// category.
func (e *Exporter) History(records []model.Release, product string, category classify.Category) ([][2]string, error) {
	entries, err := e.filteredReleases(records, product, []classify.Category{category}, false, false)
	if err != nil {
		return nil, err
	}

	pairs := make([][2]string, 0, len(entries))
	for _, entry := range entries {
		pairs = append(pairs, [2]string{entry.Version, entry.ShippedAt})
	}
	return pairs, nil
}

// latest returns the most recent shipped release for the categories, or ok
// false when the product has none.
func (e *Exporter) latest(records []model.Release, product string, categories []classify.Category, esrNext bool) (Entry, bool, error) {
	entries, err := e.filteredReleases(records, product, categories, true, esrNext)
	if err != nil {
		return Entry{}, false, err
	}
	if len(entries) == 0 {
		return Entry{}, false, nil
	}
	return entries[0], true, nil
}

func replaceESRWithNext(categories []classify.Category) []classify.Category {
	out := make([]classify.Category, len(categories))
	for i, c := range categories {
		if c == classify.CategoryESR {
			out[i] = classify.CategoryESRNext
		} else {
			out[i] = c
		}
	}
	return out
}

func isoDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func missingRelease(product string, what string) error {
	return fmt.Errorf("no shipped %s release found for %s", what, product)
}
