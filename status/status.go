// Package status derives pipeline stage progress for a release from its
// build event stream. The computation is a pure function of the events and
// the expected platform set; a release with no events yields an all-zero
// report, never an error.
package status

import (
	"math"

	"github.com/relenghq/shipit/model"
)

// Stage names one step of the shipping pipeline.
type Stage string

const (
	StageTag             Stage = "tag"
	StageBuild           Stage = "build"
	StageRepack          Stage = "repack"
	StageUpdate          Stage = "update"
	StageReleaseTest     Stage = "releasetest"
	StageReadyForRelease Stage = "readyforrelease"
	StagePostrelease     Stage = "postrelease"
)

// Stages is the fixed pipeline order. The current stage scan walks it in
// reverse.
var Stages = []Stage{
	StageTag,
	StageBuild,
	StageRepack,
	StageUpdate,
	StageReleaseTest,
	StageReadyForRelease,
	StagePostrelease,
}

// StageStatus is the progress of one stage. Platforms is only populated for
// per-platform stages (build, repack, readyforrelease).
type StageStatus struct {
	Progress  float64            `json:"progress"`
	Platforms map[string]float64 `json:"platforms,omitempty"`
}

// Report is the derived status of one release.
type Report struct {
	ReleaseName string                `json:"name"`
	Stages      map[Stage]StageStatus `json:"status"`

	// Current is the last stage in pipeline order with non-zero progress,
	// or empty when no events exist yet.
	Current Stage `json:"currentStage,omitempty"`
}

// Compute builds a Report for a release from its events. Events for other
// releases are ignored. expectedPlatforms is the release's declared en-US
// platform list: per-platform stages average over all of it, counting a
// platform with no events as zero rather than excluding it.
func Compute(releaseName string, events []model.BuildEvent, expectedPlatforms []string) Report {
	var own []model.BuildEvent
	for _, e := range events {
		if e.ReleaseName == releaseName {
			own = append(own, e)
		}
	}

	report := Report{
		ReleaseName: releaseName,
		Stages: map[Stage]StageStatus{
			StageTag:             binaryStage(own, model.GroupTag),
			StageBuild:           buildStage(own, expectedPlatforms),
			StageRepack:          chunkedStage(own, model.GroupRepack, expectedPlatforms),
			StageUpdate:          binaryStage(own, model.GroupUpdate),
			StageReleaseTest:     binaryStage(own, model.GroupReleaseTest),
			StageReadyForRelease: readyStage(own, expectedPlatforms),
			StagePostrelease:     binaryStage(own, model.GroupPostrelease),
		},
	}

	for i := len(Stages) - 1; i >= 0; i-- {
		if report.Stages[Stages[i]].Progress > 0 {
			report.Current = Stages[i]
			break
		}
	}

	return report
}

// binaryStage is all-or-nothing: any event of the group marks it done.
func binaryStage(events []model.BuildEvent, group model.EventGroup) StageStatus {
	for _, e := range events {
		if e.Group == group {
			return StageStatus{Progress: 1}
		}
	}
	return StageStatus{}
}

// buildStage is per-platform binary: a platform is done once any build
// event for it exists.
func buildStage(events []model.BuildEvent, expectedPlatforms []string) StageStatus {
	platforms := make(map[string]float64, len(expectedPlatforms))
	for _, p := range expectedPlatforms {
		platforms[p] = 0
	}
	for _, e := range events {
		if e.Group != model.GroupBuild {
			continue
		}
		if _, ok := platforms[e.Platform]; ok {
			platforms[e.Platform] = 1
		}
	}
	return StageStatus{Progress: mean(platforms, expectedPlatforms), Platforms: platforms}
}

// chunkedStage accumulates fractional progress: every non-complete event
// adds one chunk's worth (1/chunkTotal) for its platform. An event whose
// name contains "complete" pins the platform to exactly 1 and stops further
// accumulation, even if not all chunks were observed.
func chunkedStage(events []model.BuildEvent, group model.EventGroup, expectedPlatforms []string) StageStatus {
	platforms := make(map[string]float64, len(expectedPlatforms))
	done := make(map[string]bool, len(expectedPlatforms))
	for _, p := range expectedPlatforms {
		platforms[p] = 0
	}

	for _, e := range events {
		if e.Group != group {
			continue
		}
		if _, ok := platforms[e.Platform]; !ok {
			continue
		}
		if done[e.Platform] {
			continue
		}
		if e.Complete() {
			platforms[e.Platform] = 1
			done[e.Platform] = true
			continue
		}
		if e.ChunkTotal > 0 {
			platforms[e.Platform] += 1 / float64(e.ChunkTotal)
		}
	}

	for p, v := range platforms {
		platforms[p] = round2(math.Min(v, 1))
	}

	return StageStatus{Progress: round2(mean(platforms, expectedPlatforms)), Platforms: platforms}
}

// readyStage applies the chunked rule to update_verify events, but any
// release-group event is an unconditional ready signal that forces overall
// progress to 1.
func readyStage(events []model.BuildEvent, expectedPlatforms []string) StageStatus {
	st := chunkedStage(events, model.GroupUpdateVerify, expectedPlatforms)
	for _, e := range events {
		if e.Group == model.GroupRelease {
			st.Progress = 1
			break
		}
	}
	return st
}

func mean(platforms map[string]float64, expected []string) float64 {
	if len(expected) == 0 {
		return 0
	}
	var sum float64
	for _, p := range expected {
		sum += platforms[p]
	}
	return sum / float64(len(expected))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
