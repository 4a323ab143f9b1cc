package export

import (
	"fmt"

	"github.com/relenghq/shipit/l10n"
	"github.com/relenghq/shipit/model"
)

// Changeset is one locale's entry in an l10n export document.
type Changeset struct {
	Changeset string `json:"changeset"`
}

// LocaleDocument is the l10n export for one concrete release build.
type LocaleDocument struct {
	Name        string               `json:"name"`
	ShippedAt   any                  `json:"shippedAt"`
	SubmittedAt any                  `json:"submittedAt"`
	Locales     map[string]Changeset `json:"locales"`
	Version     string               `json:"version,omitempty"`
}

// BetaDocument aggregates the builds of one beta family into a single
// export entry, one document per concrete build.
type BetaDocument struct {
	Releases []LocaleDocument `json:"releases"`
	Version  string           `json:"version,omitempty"`
}

// LocaleExport renders the l10n document for a release name. A name ending
// in "beta" is an aggregation request covering every shipped build of that
// beta family; any other name selects one concrete build.
func (e *Exporter) LocaleExport(records []model.Release, releaseName string) (any, error) {
	if l10n.IsBetaFamilyName(releaseName) {
		return e.betaLocaleExport(records, releaseName)
	}

	for _, r := range records {
		if r.Name == releaseName {
			doc, err := e.localeDocument(r)
			if err != nil {
				return nil, err
			}
			doc.Version = e.cfg.Releases.L10nExportVersion
			return doc, nil
		}
	}
	return nil, fmt.Errorf("release %q not found", releaseName)
}

func (e *Exporter) betaLocaleExport(records []model.Release, familyName string) (*BetaDocument, error) {
	family := l10n.BetaFamily(records, l10n.FamilyPrefix(familyName))

	doc := &BetaDocument{Version: e.cfg.Releases.L10nExportVersion}
	for _, r := range family {
		build, err := e.localeDocument(r)
		if err != nil {
			return nil, err
		}
		doc.Releases = append(doc.Releases, build)
	}
	return doc, nil
}

// localeDocument renders one build's locales, retagged with its own name
// and timestamps.
func (e *Exporter) localeDocument(r model.Release) (LocaleDocument, error) {
	locales, err := l10n.Changesets(r.L10nChangesets, r.Product)
	if err != nil {
		return LocaleDocument{}, fmt.Errorf("release %s: %w", r.Name, err)
	}

	changesets := make(map[string]Changeset, len(locales))
	for locale, id := range locales {
		changesets[locale] = Changeset{Changeset: id}
	}

	return LocaleDocument{
		Name:        r.Name,
		ShippedAt:   isoDate(r.ShippedAt),
		SubmittedAt: isoDate(&r.SubmittedAt),
		Locales:     changesets,
	}, nil
}

// LocalizedReleaseNames lists the names of shipped releases that carry l10n
// content, across all products.
func (e *Exporter) LocalizedReleaseNames(records []model.Release) []string {
	var names []string
	for _, product := range model.Products {
		for _, r := range records {
			if r.Product == product && r.Shipped() && r.L10nChangesets != "" {
				names = append(names, r.Name)
			}
		}
	}
	return names
}
