// Package model defines the release records and build events the shipping
// pipeline engines operate on. Records are plain values: persistence and
// transport layers load them and hand them to the engines read-only.
package model

import (
	"strings"
	"time"
)

// Product identifies the product family a release belongs to.
type Product string

const (
	// ProductFirefox is desktop Firefox.
	ProductFirefox Product = "firefox"

	// ProductFennec is Firefox for Android.
	ProductFennec Product = "fennec"

	// ProductThunderbird is the mail client.
	ProductThunderbird Product = "thunderbird"

	// ProductDevedition is the Firefox Developer Edition.
	ProductDevedition Product = "devedition"
)

// Products lists every known product.
var Products = []Product{ProductFirefox, ProductFennec, ProductThunderbird, ProductDevedition}

// ParseProduct validates a product name. Unknown names are surfaced as
// ErrUnknownProduct rather than silently matching nothing, since an unknown
// product almost always means a caller bug.
func ParseProduct(s string) (Product, error) {
	p := Product(s)
	for _, known := range Products {
		if p == known {
			return p, nil
		}
	}
	return "", ErrUnknownProduct
}

// Desktop reports whether the product uses the desktop l10n changeset
// format (plain "locale changeset" lines rather than JSON).
func (p Product) Desktop() bool {
	return p != ProductFennec
}

// Release is one release record: a single (product, version, build number)
// attempt. Repeated attempts for the same version get a new record with a
// higher build number, never a mutation of the old one.
type Release struct {
	Name            string     `json:"name" yaml:"name"`
	Product         Product    `json:"product" yaml:"product"`
	Version         string     `json:"version" yaml:"version"`
	BuildNumber     int        `json:"buildNumber" yaml:"buildNumber"`
	Branch          string     `json:"branch,omitempty" yaml:"branch,omitempty"`
	MozillaRevision string     `json:"mozillaRevision,omitempty" yaml:"mozillaRevision,omitempty"`
	L10nChangesets  string     `json:"l10nChangesets,omitempty" yaml:"l10nChangesets,omitempty"`
	SubmittedAt     time.Time  `json:"submittedAt" yaml:"submittedAt"`
	ShippedAt       *time.Time `json:"shippedAt" yaml:"shippedAt,omitempty"`
	Ready           bool       `json:"ready" yaml:"ready"`
	Complete        bool       `json:"complete" yaml:"complete"`
	SecurityDriven  bool       `json:"securityDriven" yaml:"securityDriven"`
	Description     string     `json:"description,omitempty" yaml:"description,omitempty"`

	// EnUSPlatforms is the comma-separated list of platforms the en-US
	// build covers. It drives the expected-platform set for status
	// computation.
	EnUSPlatforms string `json:"enUSPlatforms,omitempty" yaml:"enUSPlatforms,omitempty"`

	// Desktop-only fields.
	Partials       string `json:"partials,omitempty" yaml:"partials,omitempty"`
	PromptWaitTime *int   `json:"promptWaitTime,omitempty" yaml:"promptWaitTime,omitempty"`

	// Thunderbird-only fields.
	CommRevision  string `json:"commRevision,omitempty" yaml:"commRevision,omitempty"`
	CommRelbranch string `json:"commRelbranch,omitempty" yaml:"commRelbranch,omitempty"`
}

// Shipped reports whether the release has a shipped timestamp.
func (r Release) Shipped() bool {
	return r.ShippedAt != nil
}

// PlatformList splits EnUSPlatforms into individual platform names.
func (r Release) PlatformList() []string {
	var out []string
	for _, item := range strings.Split(r.EnUSPlatforms, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
