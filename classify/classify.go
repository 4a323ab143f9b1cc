// Package classify buckets version strings into release channels by pattern
// matching. Patterns anchor at the end of the version string only, so a
// category also claims a version through its tail: legacy four-part versions
// like 1.5.0.14 count as majors via their trailing X.Y component.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/relenghq/shipit/model"
)

// Category names a release channel.
type Category string

const (
	// CategoryMajor matches X.Y releases (plus historical special cases).
	CategoryMajor Category = "major"

	// CategoryStability matches X.Y.Z and X.Y.Z.W point releases.
	CategoryStability Category = "stability"

	// CategoryDev matches beta, RC and other prerelease builds.
	CategoryDev Category = "dev"

	// CategoryESR matches the currently configured ESR line.
	CategoryESR Category = "esr"

	// CategoryESRNext matches the overlapping next ESR line, when one is
	// configured.
	CategoryESRNext Category = "esr-next"
)

// Context carries the configuration a classification depends on. It is
// threaded explicitly through every call; there is no ambient config state.
type Context struct {
	Product model.Product

	// CurrentESRMajor is the major version of the current ESR line, e.g.
	// "45". Required for CategoryESR matches.
	CurrentESRMajor string

	// NextESRMajor is the major version of the next, overlapping ESR line.
	// Empty means single-ESR mode: CategoryESRNext requests simply match
	// nothing, which callers must treat as an absent value, not an error.
	NextESRMajor string

	// SpecialMajors lists version strings categorized as "major" despite
	// not following X.Y numbering ("14.0.1", "38.0.1"). Configured
	// per product.
	SpecialMajors []string

	// ExcludeESR drops the optional esr suffix from the major and
	// stability patterns.
	ExcludeESR bool
}

// Match is the outcome of testing one category.
type Match struct {
	Category Category
	Matched  bool
}

// Classify tests a version against each requested category, in the caller's
// order. A version may match several categories across the result; callers
// that want a single label take the first match.
func Classify(version string, categories []Category, ctx Context) []Match {
	matches := make([]Match, 0, len(categories))
	for _, cat := range categories {
		matches = append(matches, Match{Category: cat, Matched: Matches(version, cat, ctx)})
	}
	return matches
}

// First returns the first category in the caller's order that matches, or
// false if none do.
func First(version string, categories []Category, ctx Context) (Category, bool) {
	for _, cat := range categories {
		if Matches(version, cat, ctx) {
			return cat, true
		}
	}
	return "", false
}

// Matches reports whether a version belongs to a single category.
func Matches(version string, category Category, ctx Context) bool {
	pattern, ok := patternFor(category, ctx)
	if !ok {
		return false
	}
	return pattern.MatchString(version)
}

// DisplayVersion strips the esr marker from a version for rendering. The
// exports never carry the suffix in version values; ESR-ness travels in the
// category metadata instead.
func DisplayVersion(version string) string {
	return strings.ReplaceAll(version, "esr", "")
}

func patternFor(category Category, ctx Context) (*regexp.Regexp, bool) {
	switch category {
	case CategoryMajor:
		esr := "(esr|)"
		if ctx.ExcludeESR {
			esr = ""
		}
		alts := []string{`[0-9]+\.[0-9]+` + esr}
		for _, special := range ctx.SpecialMajors {
			alts = append(alts, regexp.QuoteMeta(special))
		}
		return regexp.MustCompile("(" + strings.Join(alts, "|") + ")$"), true

	case CategoryStability:
		esr := "(esr|)"
		if ctx.ExcludeESR {
			esr = ""
		}
		return regexp.MustCompile(fmt.Sprintf(`([0-9]+\.[0-9]+\.[0-9]+%[1]s|[0-9]+\.[0-9]+\.[0-9]+\.[0-9]+%[1]s)$`, esr)), true

	case CategoryDev:
		// Covers historical oddities like 38.0.5b2, 1.0rc2, 3.6.4build7.
		return regexp.MustCompile(`([0-9]+\.[0-9]|[0-9]+\.[0-9]+\.[0-9])(b|rc|build|plugin)[0-9]+$`), true

	case CategoryESR:
		return esrPattern(ctx.CurrentESRMajor)

	case CategoryESRNext:
		return esrPattern(ctx.NextESRMajor)

	default:
		return nil, false
	}
}

func esrPattern(major string) (*regexp.Regexp, bool) {
	if major == "" {
		return nil, false
	}
	return regexp.MustCompile(regexp.QuoteMeta(major) + `(\.[0-9]+){1,2}esr$`), true
}
