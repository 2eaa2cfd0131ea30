package events

import (
	"context"
	"log/slog"

	"github.com/vk/mediagrid/internal/ctxlog"
	"github.com/vk/mediagrid/internal/pipeline"
)

// LogObserver reports run progress through the logger carried by the
// event's context.
type LogObserver struct{}

// OnEvent implements pipeline.Observer.
func (LogObserver) OnEvent(ctx context.Context, ev pipeline.Event) {
	logger := ctxlog.FromContext(ctx)

	switch ev.Type {
	case pipeline.EventRunStarted:
		logger.Info("Run started.", "steps", ev.StepCount, "waves", ev.WaveCount)
	case pipeline.EventWaveStarted:
		logger.Info("Wave started.", "wave", ev.Wave+1, "of", ev.WaveCount, "steps", ev.StepCount)
	case pipeline.EventStepFinished:
		logger.Info("Step finished.", stepAttrs(ev, slog.String("result", ev.Summary))...)
	case pipeline.EventStepFailed:
		logger.Warn("Step failed.", stepAttrs(ev, slog.Any("error", ev.Err))...)
	case pipeline.EventRunFinished:
		if ev.Err != nil {
			logger.Warn("Run aborted.", "completed_steps", ev.StepCount, "duration", ev.Duration, "error", ev.Err)
			return
		}
		logger.Info("Run finished.", "completed_steps", ev.StepCount, "duration", ev.Duration)
	}
}

func stepAttrs(ev pipeline.Event, extra slog.Attr) []any {
	attrs := []any{
		slog.Int("step", ev.Step),
		slog.String("kind", string(ev.Kind)),
		slog.Duration("duration", ev.Duration),
		extra,
	}
	if ev.Label != "" {
		attrs = append(attrs, slog.String("label", ev.Label))
	}
	if ev.Out != "" {
		attrs = append(attrs, slog.String("out", ev.Out))
	}
	return attrs
}
