package model

import (
	"strings"
	"time"
)

// EventGroup buckets build events into pipeline stages.
type EventGroup string

const (
	// GroupTag covers repository tagging events.
	GroupTag EventGroup = "tag"

	// GroupBuild covers per-platform en-US build events.
	GroupBuild EventGroup = "build"

	// GroupRepack covers chunked l10n repack events.
	GroupRepack EventGroup = "repack"

	// GroupUpdate covers update submission events.
	GroupUpdate EventGroup = "update"

	// GroupReleaseTest covers release test events.
	GroupReleaseTest EventGroup = "releasetest"

	// GroupUpdateVerify covers chunked update verification events.
	GroupUpdateVerify EventGroup = "update_verify"

	// GroupRelease covers the unconditional ready-for-release signal.
	GroupRelease EventGroup = "release"

	// GroupPostrelease covers post-release cleanup events.
	GroupPostrelease EventGroup = "postrelease"
)

// BuildEvent is one automation notification for a release, keyed by release
// name. The name references a Release by convention; the relationship is not
// enforced at this layer.
type BuildEvent struct {
	ReleaseName string     `json:"name" yaml:"name"`
	EventName   string     `json:"event_name" yaml:"event_name"`
	Group       EventGroup `json:"group" yaml:"group"`
	Platform    string     `json:"platform" yaml:"platform,omitempty"`
	Results     int        `json:"results" yaml:"results,omitempty"`
	ChunkNum    int        `json:"chunkNum" yaml:"chunkNum,omitempty"`
	ChunkTotal  int        `json:"chunkTotal" yaml:"chunkTotal,omitempty"`
	Sent        time.Time  `json:"sent" yaml:"sent,omitempty"`
}

// Complete reports whether the event name carries the "complete" marker,
// which pins chunked stage progress to done.
func (e BuildEvent) Complete() bool {
	return strings.Contains(e.EventName, "complete")
}
