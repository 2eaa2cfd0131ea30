package events

import (
	"time"

	"github.com/vk/mediagrid/internal/pipeline"
)

// Payload is the wire form of a pipeline.Event.
type Payload struct {
	Type       string    `json:"type"`
	RunID      string    `json:"run_id"`
	Time       time.Time `json:"time"`
	Wave       int       `json:"wave"`
	WaveCount  int       `json:"wave_count,omitempty"`
	StepCount  int       `json:"step_count,omitempty"`
	Step       int       `json:"step"`
	Kind       string    `json:"kind,omitempty"`
	Label      string    `json:"label,omitempty"`
	Out        string    `json:"out,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// NewPayload converts ev into its wire form.
func NewPayload(ev pipeline.Event) Payload {
	p := Payload{
		Type:       string(ev.Type),
		RunID:      ev.RunID,
		Time:       ev.Time.UTC(),
		Wave:       ev.Wave,
		WaveCount:  ev.WaveCount,
		StepCount:  ev.StepCount,
		Step:       ev.Step,
		Kind:       string(ev.Kind),
		Label:      ev.Label,
		Out:        ev.Out,
		Summary:    ev.Summary,
		DurationMS: ev.Duration.Milliseconds(),
	}
	if ev.Err != nil {
		p.Error = ev.Err.Error()
	}
	return p
}
