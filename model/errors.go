package model

import "errors"

// Sentinel errors shared across the engines.
var (
	// ErrUnknownProduct is returned when a product name does not match any
	// known product. This is surfaced rather than treated as an empty
	// match because it hides caller bugs otherwise.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrInvalidChangesetFormat is returned when an l10n changeset payload
	// does not parse in the format the product requires.
	ErrInvalidChangesetFormat = errors.New("invalid l10n changeset format")

	// ErrInvalidReleaseName is returned when a release name does not follow
	// the Product-version-buildN convention.
	ErrInvalidReleaseName = errors.New("invalid release name")
)
