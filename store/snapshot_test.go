package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relenghq/shipit/model"
)

func TestLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	content := `releases:
  - name: Firefox-45.0-build1
    product: firefox
    version: "45.0"
    buildNumber: 1
    l10nChangesets: "de abc123"
events:
  - name: Firefox-45.0-build1
    event_name: tag_done
    group: tag
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, snap.Releases, 1)
	assert.Equal(t, "Firefox-45.0-build1", snap.Releases[0].Name)
	assert.Equal(t, model.ProductFirefox, snap.Releases[0].Product)
	assert.Equal(t, 1, snap.Releases[0].BuildNumber)
	require.Len(t, snap.Events, 1)
	assert.Equal(t, "tag_done", snap.Events[0].EventName)
	assert.Equal(t, model.GroupTag, snap.Events[0].Group)
}

func TestLoadSnapshot_Missing(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	shipped := time.Date(2016, 3, 10, 12, 0, 0, 0, time.UTC)
	snap := &Snapshot{
		Releases: []model.Release{
			{
				Name:        "Firefox-46.0b4-build1",
				Product:     model.ProductFirefox,
				Version:     "46.0b4",
				BuildNumber: 1,
				ShippedAt:   &shipped,
			},
		},
		Events: []model.BuildEvent{
			{ReleaseName: "Firefox-46.0b4-build1", EventName: "build_win32", Group: model.GroupBuild, Platform: "win32", Results: 1},
		},
	}

	require.NoError(t, SaveSnapshot(path, snap))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, loaded.Releases, 1)
	assert.Equal(t, snap.Releases[0].Name, loaded.Releases[0].Name)
	require.NotNil(t, loaded.Releases[0].ShippedAt)
	assert.True(t, shipped.Equal(*loaded.Releases[0].ShippedAt))
	require.Len(t, loaded.Events, 1)
	assert.Equal(t, 1, loaded.Events[0].Results)
}
