package export

import (
	"github.com/relenghq/shipit/classify"
	"github.com/relenghq/shipit/model"
)

var (
	stableCategories = []classify.Category{classify.CategoryMajor, classify.CategoryStability}
	devCategories    = []classify.Category{classify.CategoryDev}
	esrCategories    = []classify.Category{classify.CategoryESR}
)

// FirefoxVersions renders the firefox_versions.json map. FIREFOX_ESR_NEXT is
// present only when a next ESR line is configured and has a shipped release:
// its absence means single-ESR mode, never an empty placeholder.
func (e *Exporter) FirefoxVersions(records []model.Release) (map[string]string, error) {
	versions := map[string]string{
		"FIREFOX_AURORA":               e.cfg.Releases.AuroraVersion,
		"LATEST_FIREFOX_OLDER_VERSION": e.cfg.Releases.OlderMajorVersion,
	}

	stable, ok, err := e.latest(records, "firefox", stableCategories, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, missingRelease("firefox", "stable")
	}
	versions["LATEST_FIREFOX_VERSION"] = stable.Version

	dev, ok, err := e.latest(records, "firefox", devCategories, false)
	if err != nil {
		return nil, err
	}
	if ok {
		versions["LATEST_FIREFOX_DEVEL_VERSION"] = dev.Version
		versions["LATEST_FIREFOX_RELEASED_DEVEL_VERSION"] = dev.Version
	}

	esr, ok, err := e.latest(records, "firefox", esrCategories, false)
	if err != nil {
		return nil, err
	}
	if ok {
		// The display version lost its esr marker; the export carries it.
		versions["FIREFOX_ESR"] = esr.Version + "esr"
	}

	esrNext, ok, err := e.latest(records, "firefox", esrCategories, true)
	if err != nil {
		return nil, err
	}
	if ok {
		versions["FIREFOX_ESR_NEXT"] = esrNext.Version + "esr"
	}

	return versions, nil
}

// MobileVersions renders the mobile_versions.json map.
func (e *Exporter) MobileVersions(records []model.Release) (map[string]string, error) {
	versions := map[string]string{
		"alpha_version": e.cfg.Releases.AuroraVersion,
	}

	stable, ok, err := e.latest(records, "fennec", stableCategories, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, missingRelease("fennec", "stable")
	}
	versions["stable"] = stable.Version

	beta, ok, err := e.latest(records, "fennec", devCategories, false)
	if err != nil {
		return nil, err
	}
	if ok {
		versions["beta_version"] = beta.Version
	}

	return versions, nil
}

// ThunderbirdVersions renders the thunderbird_versions.json map.
func (e *Exporter) ThunderbirdVersions(records []model.Release) (map[string]string, error) {
	versions := map[string]string{}

	stable, ok, err := e.latest(records, "thunderbird", stableCategories, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, missingRelease("thunderbird", "stable")
	}
	versions["LATEST_THUNDERBIRD_VERSION"] = stable.Version

	beta, ok, err := e.latest(records, "thunderbird", devCategories, false)
	if err != nil {
		return nil, err
	}
	if ok {
		versions["LATEST_THUNDERBIRD_DEVEL_VERSION"] = beta.Version
	}

	return versions, nil
}
