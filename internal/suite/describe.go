package suite

import (
	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/probe"
	"github.com/canonica-labs/capprobe/internal/storage"
	"github.com/canonica-labs/capprobe/pkg/models"
)

// Describe lists every registered probe against the linked capability set.
func Describe(reg *probe.Registry) models.ProbeList {
	linked := capabilities.Linked()
	out := models.ProbeList{
		Mode:   probe.BuildMode,
		Linked: capStrings(linked.Slice()),
		Probes: make([]models.ProbeInfo, 0, reg.Len()),
	}
	for _, p := range reg.Probes() {
		missing := linked.Missing(p.Requires())
		out.Probes = append(out.Probes, models.ProbeInfo{
			Name:     p.Name(),
			Requires: capStrings(p.Requires()),
			Missing:  capStrings(missing),
			Linked:   len(missing) == 0,
			Expected: p.Expected(),
		})
	}
	return out
}

// RunDetail converts the records of one run.
func RunDetail(records []storage.RunRecord) models.RunDetail {
	var d models.RunDetail
	d.Results = make([]models.RunResult, 0, len(records))
	for i, rec := range records {
		if i == 0 {
			d.RunID = rec.RunID
			d.Mode = rec.Mode
			d.StartedAt = rec.StartedAt
		}
		d.Results = append(d.Results, models.RunResult{
			Probe:      rec.Probe,
			Outcome:    rec.Outcome,
			Output:     rec.Output,
			Expected:   rec.Expected,
			Error:      rec.Error,
			Attempts:   rec.Attempts,
			DurationMS: rec.Duration.Milliseconds(),
		})
	}
	return d
}

func capStrings(caps []capabilities.Capability) []string {
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = c.String()
	}
	return out
}
