package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relenghq/shipit/model"
)

func TestLocaleExport_SingleBuild(t *testing.T) {
	base := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []model.Release{
		testRelease(model.ProductFirefox, "45.0", 1, base, 1, "ja zu"),
	}
	e := New(testConfig())

	doc, err := e.LocaleExport(records, "Firefox-45.0-build1")
	require.NoError(t, err)

	locale, ok := doc.(LocaleDocument)
	require.True(t, ok)
	assert.Equal(t, "Firefox-45.0-build1", locale.Name)
	assert.Equal(t, "1.0", locale.Version)
	assert.Equal(t, "zu", locale.Locales["ja"].Changeset)
	assert.Equal(t, "default", locale.Locales["en-US"].Changeset)
	assert.Equal(t, "2016-03-01T12:30:00Z", locale.ShippedAt)
	assert.Equal(t, "2016-01-01T00:00:00Z", locale.SubmittedAt)
}

func TestLocaleExport_UnshippedSerializesNull(t *testing.T) {
	base := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []model.Release{
		testRelease(model.ProductFirefox, "47.0", 1, base, 0, "de abc"),
	}
	e := New(testConfig())

	doc, err := e.LocaleExport(records, "Firefox-47.0-build1")
	require.NoError(t, err)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"shippedAt":null`)
}

func TestLocaleExport_MobileJSONFormat(t *testing.T) {
	base := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []model.Release{
		testRelease(model.ProductFennec, "45.0", 1, base, 1, `{"de": {"revision": "abc123", "platforms": ["android"]}}`),
	}
	e := New(testConfig())

	doc, err := e.LocaleExport(records, "Fennec-45.0-build1")
	require.NoError(t, err)

	locale := doc.(LocaleDocument)
	assert.Equal(t, "abc123", locale.Locales["de"].Changeset)
}

func TestLocaleExport_WrongFormat(t *testing.T) {
	base := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []model.Release{
		testRelease(model.ProductFirefox, "45.0", 1, base, 1, `{"de": {"revision": "abc"}}`),
	}
	e := New(testConfig())

	_, err := e.LocaleExport(records, "Firefox-45.0-build1")
	assert.ErrorIs(t, err, model.ErrInvalidChangesetFormat)
}

func TestLocaleExport_NotFound(t *testing.T) {
	e := New(testConfig())
	_, err := e.LocaleExport(nil, "Firefox-99.0-build1")
	assert.Error(t, err)
}

func TestLocaleExport_BetaAggregation(t *testing.T) {
	base := time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []model.Release{
		testRelease(model.ProductFirefox, "3.0b2", 1, base, 1, "de aaa"),
		testRelease(model.ProductFirefox, "3.0b2", 2, base.Add(time.Hour), 2, "de bbb"),
		testRelease(model.ProductFirefox, "3.0b3", 1, base.Add(2*time.Hour), 0, "de ccc"),
	}
	e := New(testConfig())

	doc, err := e.LocaleExport(records, "Firefox-3.0beta")
	require.NoError(t, err)

	beta, ok := doc.(*BetaDocument)
	require.True(t, ok)
	assert.Equal(t, "1.0", beta.Version)
	// Two shipped builds; the unshipped 3.0b3 never appears.
	require.Len(t, beta.Releases, 2)
	assert.Equal(t, "Firefox-3.0b2-build1", beta.Releases[0].Name)
	assert.Equal(t, "aaa", beta.Releases[0].Locales["de"].Changeset)
	assert.Equal(t, "Firefox-3.0b2-build2", beta.Releases[1].Name)
	assert.Equal(t, "bbb", beta.Releases[1].Locales["de"].Changeset)
}

func TestLocalizedReleaseNames(t *testing.T) {
	base := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []model.Release{
		testRelease(model.ProductFennec, "45.0", 1, base, 1, `{"de": {"revision": "a"}}`),
		testRelease(model.ProductFirefox, "45.0", 1, base, 1, "de aaa"),
		testRelease(model.ProductFirefox, "47.0", 1, base, 0, "de bbb"),
		testRelease(model.ProductFirefox, "46.0", 1, base, 2, ""),
	}
	e := New(testConfig())

	names := e.LocalizedReleaseNames(records)
	// Grouped by product, shipped-with-content only.
	assert.Equal(t, []string{"Firefox-45.0-build1", "Fennec-45.0-build1"}, names)
}
