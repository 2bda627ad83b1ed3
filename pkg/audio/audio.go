// Package audio plays short synthesized cues for mission events. Cues are
// one-way side effects: the simulation never waits on or hears back from
// the audio system.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/opd-ai/go-dronestrike/pkg/config"
	"github.com/opd-ai/go-dronestrike/pkg/event"
)

// Sink receives finished cue streams.
type Sink interface {
	Play(s beep.Streamer)
}

// SpeakerSink plays cues on the default output device through a shared mixer.
type SpeakerSink struct {
	mixer *beep.Mixer
}

// NewSpeakerSink initializes the speaker. It can only be opened once per process.
func NewSpeakerSink(rate beep.SampleRate) (*SpeakerSink, error) {
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}
	s := &SpeakerSink{mixer: &beep.Mixer{}}
	speaker.Play(s.mixer)
	return s, nil
}

// Play implements Sink.
func (s *SpeakerSink) Play(st beep.Streamer) {
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Close silences pending cues and releases the device.
func (s *SpeakerSink) Close() {
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
}

// System turns cues and mission events into sound. When disabled every
// call is a no-op.
type System struct {
	mu      sync.Mutex
	sink    Sink
	rate    beep.SampleRate
	volume  float64
	enabled bool

	// lastCueAt is the mission time of the last impact or explosion cue.
	lastCueAt float64
	played    map[Cue]int
}

// NewSystem creates an audio system writing to sink. A nil sink mutes it.
func NewSystem(sink Sink, cfg config.AudioConfig) *System {
	rate := beep.SampleRate(cfg.SampleRate)
	if rate <= 0 {
		rate = beep.SampleRate(44100)
	}
	return &System{
		sink:      sink,
		rate:      rate,
		volume:    cfg.Volume,
		enabled:   cfg.Enabled && sink != nil,
		lastCueAt: -1,
		played:    make(map[Cue]int),
	}
}

// SetEnabled mutes or unmutes the system. It cannot unmute without a sink.
func (s *System) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled && s.sink != nil
}

// Enabled reports whether cues are audible.
func (s *System) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Played returns how many times c has been sent to the sink.
func (s *System) Played(c Cue) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.played[c]
}

// Play sends a cue to the sink.
func (s *System) Play(c Cue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.play(c)
}

func (s *System) play(c Cue) {
	if !s.enabled || c == CueNone {
		return
	}
	st := c.Streamer(s.rate, s.volume)
	if st == nil {
		return
	}
	s.played[c]++
	s.sink.Play(st)
}

// PlayEvents plays the cues for one step's events.
func (s *System) PlayEvents(events []*event.MissionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range CuesFor(events) {
		s.play(c)
	}
}

// HandleEvent plays the cue for a single event. An impact cue is dropped
// when an impact or explosion has already sounded at the same mission time.
func (s *System) HandleEvent(e event.Event) {
	c := CueFor(e)
	if c == CueNone {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if me, ok := e.(*event.MissionEvent); ok {
		switch c {
		case CueImpact:
			if me.At == s.lastCueAt {
				return
			}
			s.lastCueAt = me.At
		case CueExplosion:
			s.lastCueAt = me.At
		}
	}
	s.play(c)
}

// Attach subscribes the system to every event on bus.
func (s *System) Attach(bus *event.Bus) *event.Subscription {
	return bus.Subscribe(event.All, s.HandleEvent)
}
