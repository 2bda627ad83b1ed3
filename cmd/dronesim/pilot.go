package main

import (
	"context"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-dronestrike/pkg/audio"
	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/engine"
	"github.com/opd-ai/go-dronestrike/pkg/mission"
	"github.com/opd-ai/go-dronestrike/pkg/render"
	"github.com/opd-ai/go-dronestrike/pkg/validation"
)

const throttleStep = 0.1

// launch holds the power and angle the drone is fired with.
type launch struct {
	power float64
	angle float64
}

// pilot maps terminal keys onto mission commands.
type pilot struct {
	m      *engine.Mission
	screen tcell.Screen
	sounds *audio.System
	launch launch
	keys   *render.KeyboardPitch
	quit   context.CancelFunc
}

func newPilot(m *engine.Mission, screen tcell.Screen, sounds *audio.System, l launch, quit context.CancelFunc) *pilot {
	return &pilot{
		m:      m,
		screen: screen,
		sounds: sounds,
		launch: l,
		keys:   render.NewKeyboardPitch(0),
		quit:   quit,
	}
}

// readInput handles terminal events until ctx ends.
func (p *pilot) readInput(ctx context.Context) {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				p.quit()
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				p.screen.Sync()
			case *tcell.EventKey:
				p.handleKey(ev)
			}
		}
	}
}

func (p *pilot) handleKey(ev *tcell.EventKey) {
	if p.keys.HandleKey(ev) {
		return
	}
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		p.quit()
		return
	case tcell.KeyEnter:
		p.fire()
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch ev.Rune() {
	case 'q', 'Q':
		p.quit()
	case ' ':
		p.fire()
	case 'a', 'A':
		p.cycleAutopilot()
	case 't', 'T':
		p.nudgeThrottle(throttleStep)
	case 'g', 'G':
		p.nudgeThrottle(-throttleStep)
	case 'm', 'M':
		p.sounds.SetEnabled(!p.sounds.Enabled())
	}
}

// fire launches the drone. Presses after launch are ignored.
func (p *pilot) fire() {
	_ = p.m.Launch(p.launch.power, p.launch.angle)
}

// cycleAutopilot steps off, stabilize, terminal. Terminal is skipped for
// builds that have lost or never had a seeker.
func (p *pilot) cycleAutopilot() {
	var (
		current mission.AutopilotMode
		live    build.Summary
	)
	p.m.View(func(s *mission.State) {
		current = s.Autopilot
		live = s.LiveSummary
	})

	next := mission.AutopilotOff
	switch current {
	case mission.AutopilotOff:
		next = mission.AutopilotStabilize
	case mission.AutopilotStabilize:
		if _, err := validation.ValidateAutopilot(string(mission.AutopilotTerminal), live); err == nil {
			next = mission.AutopilotTerminal
		}
	}
	p.m.SetAutopilot(string(next))
}

func (p *pilot) nudgeThrottle(delta float64) {
	var throttle float64
	p.m.View(func(s *mission.State) { throttle = s.Drone.Throttle })
	p.m.SetThrottle(math.Round((throttle+delta)*10) / 10)
}
