package export

import (
	"github.com/relenghq/shipit/model"
	"github.com/relenghq/shipit/status"
)

// StatusDocument is the status export for one release.
type StatusDocument struct {
	Status map[status.Stage]status.StageStatus `json:"status"`

	// CurrentStage is omitted when the release has no events yet.
	CurrentStage status.Stage `json:"currentStage,omitempty"`

	// Events carries the raw event rows when requested.
	Events []model.BuildEvent `json:"events,omitempty"`
}

// Status renders the status document for a release. With withEvents the raw
// event rows are attached. A release with no events yields an all-zero
// document, not an error.
func (e *Exporter) Status(releaseName string, events []model.BuildEvent, expectedPlatforms []string, withEvents bool) StatusDocument {
	report := status.Compute(releaseName, events, expectedPlatforms)

	doc := StatusDocument{
		Status:       report.Stages,
		CurrentStage: report.Current,
	}
	if withEvents {
		for _, ev := range events {
			if ev.ReleaseName == releaseName {
				doc.Events = append(doc.Events, ev)
			}
		}
	}
	return doc
}
