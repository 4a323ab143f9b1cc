// Package filter selects, categorizes and orders release records. It is the
// engine behind every versions/history export: callers load records from
// storage, describe what they want in Options, and get back ordered matches
// tagged with the category that selected them.
package filter

import (
	"fmt"
	"sort"
	"time"

	"github.com/relenghq/shipit/classify"
	"github.com/relenghq/shipit/model"
	"github.com/relenghq/shipit/version"
)

// Options describes one filter pass.
type Options struct {
	// Product restricts the pass to one product. Empty scans all products;
	// any other unknown value is an error.
	Product string

	// Categories to test each record against, in order. Empty keeps every
	// record with no category tag. A record matching several categories is
	// emitted once per matching category.
	Categories []classify.Category

	// ShippedOnly drops records without a shipped timestamp.
	ShippedOnly bool

	// MostRecentOnly reduces the filtered set to the single record with
	// the greatest version. Equal versions resolve to the higher build
	// number.
	MostRecentOnly bool

	// ExcludeESR removes the esr alternative from category patterns.
	ExcludeESR bool

	// DetectDuplicates flags shipped records whose product+version also
	// shipped under a different build number.
	DetectDuplicates bool
}

// Match is one selected record together with the category that selected it.
type Match struct {
	Release  model.Release
	Category classify.Category

	// AlreadyShipped is set when another build of the same product and
	// version has a shipped timestamp.
	AlreadyShipped bool
}

// Engine filters release collections. Contexts supplies the classifier
// configuration per product; a product without an entry classifies with an
// empty context.
type Engine struct {
	contexts map[model.Product]classify.Context
}

// NewEngine builds an Engine from per-product classifier contexts.
func NewEngine(contexts map[model.Product]classify.Context) *Engine {
	return &Engine{contexts: contexts}
}

// Filter runs one pass over the given records. Records are returned in
// ascending submission order within a category; categories follow the order
// in Options.Categories.
func (e *Engine) Filter(records []model.Release, opts Options) ([]Match, error) {
	candidates, err := e.candidates(records, opts)
	if err != nil {
		return nil, err
	}

	var matches []Match
	if len(opts.Categories) == 0 {
		for _, r := range candidates {
			matches = append(matches, Match{Release: r})
		}
	} else {
		for _, cat := range opts.Categories {
			for _, r := range candidates {
				ctx := e.contextFor(r.Product)
				ctx.ExcludeESR = opts.ExcludeESR
				if classify.Matches(r.Version, cat, ctx) {
					matches = append(matches, Match{Release: r, Category: cat})
				}
			}
		}
	}

	if opts.MostRecentOnly {
		matches = mostRecent(matches)
	}

	if opts.DetectDuplicates {
		for i := range matches {
			matches[i].AlreadyShipped = e.shippedElsewhere(records, matches[i].Release)
		}
	}

	return matches, nil
}

// Recent returns the releases submitted within the given age, newest last.
func (e *Engine) Recent(records []model.Release, age time.Duration) []model.Release {
	since := time.Now().Add(-age)
	var out []model.Release
	for _, r := range sortedBySubmission(records) {
		if r.SubmittedAt.After(since) {
			out = append(out, r)
		}
	}
	return out
}

// MaxBuildNumber returns the highest build number recorded for a
// product+version, or 0 when none exists.
func MaxBuildNumber(records []model.Release, product model.Product, ver string) int {
	max := 0
	for _, r := range records {
		if r.Product == product && r.Version == ver && r.BuildNumber > max {
			max = r.BuildNumber
		}
	}
	return max
}

func (e *Engine) candidates(records []model.Release, opts Options) ([]model.Release, error) {
	var product model.Product
	if opts.Product != "" {
		p, err := model.ParseProduct(opts.Product)
		if err != nil {
			return nil, fmt.Errorf("filter: %w: %q", model.ErrUnknownProduct, opts.Product)
		}
		product = p
	}

	var out []model.Release
	for _, r := range sortedBySubmission(records) {
		if product != "" && r.Product != product {
			continue
		}
		if opts.ShippedOnly && !r.Shipped() {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// shippedElsewhere is the one-level duplicate-shipment check: it re-runs a
// filter restricted to the record's product and version, shipped only, and
// reports whether any other build number comes back. The check never
// recurses; this helper is the explicit bound.
func (e *Engine) shippedElsewhere(records []model.Release, rec model.Release) bool {
	if !rec.Shipped() {
		return false
	}
	others, err := e.Filter(records, Options{
		Product:     string(rec.Product),
		ShippedOnly: true,
	})
	if err != nil {
		return false
	}
	for _, m := range others {
		if m.Release.Version == rec.Version && m.Release.BuildNumber != rec.BuildNumber {
			return true
		}
	}
	return false
}

func (e *Engine) contextFor(p model.Product) classify.Context {
	if ctx, ok := e.contexts[p]; ok {
		return ctx
	}
	return classify.Context{Product: p}
}

// mostRecent keeps the single greatest match by version. On equal versions
// the higher build number wins; failing that, the later match in input
// order.
func mostRecent(matches []Match) []Match {
	if len(matches) == 0 {
		return nil
	}
	best := matches[0]
	for _, m := range matches[1:] {
		c := version.Compare(m.Release.Version, best.Release.Version)
		if c > 0 || (c == 0 && m.Release.BuildNumber >= best.Release.BuildNumber) {
			best = m
		}
	}
	return []Match{best}
}

func sortedBySubmission(records []model.Release) []model.Release {
	out := make([]model.Release, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out
}
