// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-dronestrike/pkg/logging"
	"github.com/opd-ai/go-dronestrike/pkg/mission"
)

// Renderer draws a mission frame. Renderers read the state and never
// modify it.
type Renderer interface {
	Render(s *mission.State)
}

// NullRenderer draws nothing and logs a summary of every frame at debug
// level. Headless runs use it.
type NullRenderer struct {
	logger *logging.Logger
	ctx    context.Context
	frames uint64
}

// NewNullRenderer creates a new NullRenderer. A nil logger discards output.
func NewNullRenderer(ctx context.Context, logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.Discard()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &NullRenderer{logger: logger, ctx: ctx}
}

// Frames returns how many frames have been rendered.
func (d *NullRenderer) Frames() uint64 {
	return d.frames
}

// Render implements Renderer.
func (d *NullRenderer) Render(s *mission.State) {
	d.frames++
	if s == nil {
		d.logger.Debug(d.ctx, "Render called with nil state")
		return
	}
	d.logger.Debug(d.ctx, "Render called",
		"frame", d.frames,
		"time", s.Time,
		"x", s.Drone.Position.X,
		"y", s.Drone.Position.Y,
		"health", s.Drone.Health,
		"status", s.Status.String(),
		"events", len(s.Events),
	)
}
