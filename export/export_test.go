package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relenghq/shipit/classify"
	"github.com/relenghq/shipit/config"
	"github.com/relenghq/shipit/model"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Releases.CurrentESRMajor = "2"
	cfg.Releases.NextESRMajor = "38"
	cfg.Releases.AuroraVersion = "48.0a2"
	cfg.Releases.OlderMajorVersion = "3.6.28"
	return cfg
}

func testRelease(product model.Product, ver string, build int, submitted time.Time, shippedDay int, changesets string) model.Release {
	r := model.Release{
		Name:           model.ReleaseName(product, ver, build),
		Product:        product,
		Version:        ver,
		BuildNumber:    build,
		SubmittedAt:    submitted,
		L10nChangesets: changesets,
		Ready:          true,
	}
	if shippedDay > 0 {
		ts := time.Date(2016, 3, shippedDay, 12, 30, 0, 0, time.UTC)
		r.ShippedAt = &ts
	}
	return r
}

func firefoxRecords() []model.Release {
	base := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	return []model.Release{
		testRelease(model.ProductFirefox, "45.0", 1, base, 1, "de aaa111\nfr bbb222"),
		testRelease(model.ProductFirefox, "45.0.1", 1, base.Add(time.Hour), 10, "de ccc333"),
		testRelease(model.ProductFirefox, "46.0b4", 1, base.Add(2*time.Hour), 12, "de ddd444"),
		testRelease(model.ProductFirefox, "2.0.2esr", 1, base.Add(3*time.Hour), 4, "de eee555"),
		testRelease(model.ProductFirefox, "38.1.0esr", 1, base.Add(4*time.Hour), 5, "de fff666"),
		// Unshipped: must never appear in exports.
		testRelease(model.ProductFirefox, "47.0", 1, base.Add(5*time.Hour), 0, ""),
	}
}

func TestHistory(t *testing.T) {
	e := New(testConfig())

	pairs, err := e.History(firefoxRecords(), "firefox", classify.CategoryStability)
	require.NoError(t, err)
	// esr suffix is stripped from displayed versions; entries keep
	// submission order.
	assert.Equal(t, [][2]string{
		{"45.0.1", "2016-03-10"},
		{"2.0.2", "2016-03-04"},
		{"38.1.0", "2016-03-05"},
	}, pairs)
}

func TestHistory_UnknownProduct(t *testing.T) {
	e := New(testConfig())
	_, err := e.History(nil, "netscape", classify.CategoryMajor)
	assert.ErrorIs(t, err, model.ErrUnknownProduct)
}

func TestFirefoxVersions(t *testing.T) {
	e := New(testConfig())

	versions, err := e.FirefoxVersions(firefoxRecords())
	require.NoError(t, err)
	assert.Equal(t, "45.0.1", versions["LATEST_FIREFOX_VERSION"])
	assert.Equal(t, "46.0b4", versions["LATEST_FIREFOX_DEVEL_VERSION"])
	assert.Equal(t, "46.0b4", versions["LATEST_FIREFOX_RELEASED_DEVEL_VERSION"])
	assert.Equal(t, "2.0.2esr", versions["FIREFOX_ESR"])
	assert.Equal(t, "38.1.0esr", versions["FIREFOX_ESR_NEXT"])
	assert.Equal(t, "48.0a2", versions["FIREFOX_AURORA"])
	assert.Equal(t, "3.6.28", versions["LATEST_FIREFOX_OLDER_VERSION"])
}

func TestFirefoxVersions_SingleESRMode(t *testing.T) {
	cfg := testConfig()
	cfg.Releases.NextESRMajor = ""
	e := New(cfg)

	versions, err := e.FirefoxVersions(firefoxRecords())
	require.NoError(t, err)
	// The field is absent, not an empty placeholder.
	_, present := versions["FIREFOX_ESR_NEXT"]
	assert.False(t, present)
	assert.Equal(t, "2.0.2esr", versions["FIREFOX_ESR"])
}

func TestMobileVersions(t *testing.T) {
	base := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []model.Release{
		testRelease(model.ProductFennec, "45.0", 1, base, 1, `{"de": {"revision": "abc"}}`),
		testRelease(model.ProductFennec, "46.0b2", 1, base.Add(time.Hour), 2, `{"de": {"revision": "def"}}`),
	}
	e := New(testConfig())

	versions, err := e.MobileVersions(records)
	require.NoError(t, err)
	assert.Equal(t, "45.0", versions["stable"])
	assert.Equal(t, "46.0b2", versions["beta_version"])
	assert.Equal(t, "48.0a2", versions["alpha_version"])
}

func TestThunderbirdVersions(t *testing.T) {
	base := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []model.Release{
		testRelease(model.ProductThunderbird, "45.0", 1, base, 1, "de aaa"),
	}
	e := New(testConfig())

	versions, err := e.ThunderbirdVersions(records)
	require.NoError(t, err)
	assert.Equal(t, "45.0", versions["LATEST_THUNDERBIRD_VERSION"])
	_, present := versions["LATEST_THUNDERBIRD_DEVEL_VERSION"]
	assert.False(t, present)
}

func TestVersions_NoStableRelease(t *testing.T) {
	e := New(testConfig())
	_, err := e.FirefoxVersions(nil)
	assert.Error(t, err)
}

func TestPrimaryBuilds(t *testing.T) {
	cfg := testConfig()
	cfg.Releases.AuroraLocales = []string{"ach", "de"}
	e := New(cfg)

	builds, err := e.PrimaryBuilds(firefoxRecords(), "firefox")
	require.NoError(t, err)

	// de ships in stable, beta and esr, plus aurora.
	assert.Equal(t, []string{"45.0.1", "46.0b4", "2.0.2", "48.0a2"}, builds["de"])
	// en-US is synthesized into every release's locale set.
	assert.Equal(t, []string{"45.0.1", "46.0b4", "2.0.2"}, builds["en-US"])
	// ach only ships on aurora.
	assert.Equal(t, []string{"48.0a2"}, builds["ach"])
}
