package export

import (
	"github.com/relenghq/shipit/classify"
	"github.com/relenghq/shipit/l10n"
	"github.com/relenghq/shipit/model"
)

// PrimaryBuilds renders the primary-builds locale table: for every locale,
// the list of versions it currently ships in (latest stable, beta and esr),
// plus the aurora channel version for every configured aurora locale.
func (e *Exporter) PrimaryBuilds(records []model.Release, product string) (map[string][]string, error) {
	builds := map[string][]string{}

	for _, categories := range [][]classify.Category{stableCategories, devCategories, esrCategories} {
		entry, ok, err := e.latest(records, product, categories, false)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		p, err := model.ParseProduct(product)
		if err != nil {
			return nil, err
		}
		locales, err := l10n.Changesets(entry.Changesets, p)
		if err != nil {
			return nil, err
		}
		for locale := range locales {
			builds[locale] = append(builds[locale], entry.Version)
		}
	}

	for _, locale := range e.cfg.Releases.AuroraLocales {
		builds[locale] = append(builds[locale], e.cfg.Releases.AuroraVersion)
	}

	return builds, nil
}
