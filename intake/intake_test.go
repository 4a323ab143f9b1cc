package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relenghq/shipit/model"
)

func TestDecode(t *testing.T) {
	sent := time.Date(2016, 3, 1, 10, 0, 0, 0, time.UTC)
	data := []byte(`{
		"name": "Firefox-46.0-build1",
		"event_name": "repack_1_complete",
		"group": "repack",
		"chunkNum": 1,
		"chunkTotal": 6,
		"sent": "` + sent.Format(time.RFC3339) + `"
	}`)

	event, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "Firefox-46.0-build1", event.ReleaseName)
	assert.Equal(t, "repack_1_complete", event.EventName)
	assert.Equal(t, model.GroupRepack, event.Group)
	assert.Equal(t, 6, event.ChunkTotal)
	assert.True(t, sent.Equal(event.Sent))
	assert.True(t, event.Complete())
}

func TestDecode_StampsMissingSent(t *testing.T) {
	event, err := Decode([]byte(`{"name": "Firefox-46.0-build1", "event_name": "tag_done", "group": "tag"}`))
	require.NoError(t, err)
	assert.False(t, event.Sent.IsZero())
}

func TestDecode_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad json":           `{`,
		"missing name":       `{"event_name": "tag_done"}`,
		"missing event name": `{"name": "Firefox-46.0-build1"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(payload))
			assert.Error(t, err)
		})
	}
}
