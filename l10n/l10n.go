// Package l10n parses per-locale changeset payloads and aggregates beta
// release families for export. Desktop products record changesets as plain
// "locale changeset" lines; the mobile product records a JSON object mapping
// locale to revision metadata. The two formats are strictly per-product: a
// payload in the wrong format is a contract violation, not user input to
// recover from.
package l10n

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/relenghq/shipit/model"
)

// EnUSLocale is injected into every aggregation result. The en-US build is
// always shipped and has no changeset of its own.
const EnUSLocale = "en-US"

// EnUSChangeset is the placeholder revision assigned to the synthetic en-US
// entry.
const EnUSChangeset = "default"

// mobileEntry is one locale's value in the JSON changeset format.
type mobileEntry struct {
	Revision  string   `json:"revision"`
	Platforms []string `json:"platforms,omitempty"`
}

// Changesets parses a release's changeset payload in the format the product
// requires and returns locale → changeset id, with the synthetic en-US
// entry included.
func Changesets(payload string, product model.Product) (map[string]string, error) {
	var (
		locales map[string]string
		err     error
	)
	if product.Desktop() {
		locales, err = ParsePlain(payload)
	} else {
		locales, err = ParseJSON(payload)
	}
	if err != nil {
		return nil, err
	}

	locales[EnUSLocale] = EnUSChangeset
	return locales, nil
}

// ParsePlain parses the desktop "locale changeset" line format.
func ParsePlain(payload string) (map[string]string, error) {
	locales := map[string]string{}
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %q", model.ErrInvalidChangesetFormat, line)
		}
		locales[fields[0]] = fields[1]
	}
	return locales, nil
}

// ParseJSON parses the mobile JSON changeset format, an object mapping
// locale to {revision, platforms?}.
func ParseJSON(payload string) (map[string]string, error) {
	var raw map[string]mobileEntry
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidChangesetFormat, err)
	}

	locales := make(map[string]string, len(raw))
	for locale, entry := range raw {
		locales[locale] = entry.Revision
	}
	return locales, nil
}

// BetaFamily selects the shipped builds whose names share the given prefix.
// A prefix like "Firefox-3.0b2" selects every shipped build iteration of
// that beta ("Firefox-3.0b2-build1", "-build2", ...); "Firefox-3.0b" selects
// the whole beta line. Unshipped builds never appear, and each build appears
// exactly once no matter how often the family is requested.
func BetaFamily(records []model.Release, prefix string) []model.Release {
	var family []model.Release
	seen := map[string]bool{}
	for _, r := range records {
		if !r.Shipped() || !strings.Contains(r.Name, prefix) || seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		family = append(family, r)
	}
	return family
}

// IsBetaFamilyName reports whether a release name is an aggregation request
// ("Firefox-32.0beta") rather than a concrete build name.
func IsBetaFamilyName(name string) bool {
	return strings.HasSuffix(name, "beta")
}

// FamilyPrefix converts an aggregation request name into the build-name
// prefix it selects. The trailing "eta" is trimmed so the "b" that starts
// the beta marker is kept: "Firefox-32.0beta" selects "Firefox-32.0b".
func FamilyPrefix(name string) string {
	return strings.TrimSuffix(name, "eta")
}
