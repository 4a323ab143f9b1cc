package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ReleaseName builds the canonical release name for a product, version and
// build number: "Firefox-46.0b3-build2". Build events reference releases by
// this name.
func ReleaseName(product Product, version string, buildNumber int) string {
	return fmt.Sprintf("%s-%s-build%d", displayName(product), version, buildNumber)
}

// ParseReleaseName splits a canonical release name back into its parts.
func ParseReleaseName(name string) (Product, string, int, error) {
	first := strings.Index(name, "-")
	last := strings.LastIndex(name, "-build")
	if first < 0 || last <= first {
		return "", "", 0, fmt.Errorf("%w: %q", ErrInvalidReleaseName, name)
	}

	product, err := ParseProduct(strings.ToLower(name[:first]))
	if err != nil {
		return "", "", 0, fmt.Errorf("%w: %q", ErrInvalidReleaseName, name)
	}

	buildNumber, err := strconv.Atoi(name[last+len("-build"):])
	if err != nil || buildNumber < 1 {
		return "", "", 0, fmt.Errorf("%w: %q", ErrInvalidReleaseName, name)
	}

	version := name[first+1 : last]
	if version == "" {
		return "", "", 0, fmt.Errorf("%w: %q", ErrInvalidReleaseName, name)
	}

	return product, version, buildNumber, nil
}

func displayName(p Product) string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[0])) + string(p[1:])
}
