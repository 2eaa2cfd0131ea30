package events

import (
	"context"

	"github.com/vk/mediagrid/internal/pipeline"
)

// Multi fans every event out to each observer in order.
type Multi []pipeline.Observer

// OnEvent implements pipeline.Observer.
func (m Multi) OnEvent(ctx context.Context, ev pipeline.Event) {
	for _, o := range m {
		if o != nil {
			o.OnEvent(ctx, ev)
		}
	}
}
