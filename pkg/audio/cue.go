package audio

import (
	"time"

	"github.com/gopxl/beep"

	"github.com/opd-ai/go-dronestrike/pkg/event"
)

// Cue is a one-shot sound.
type Cue int

const (
	CueNone Cue = iota
	CueClick
	CueLaunch
	CueImpact
	CueExplosion
	CueBreak
	CueTargetDown
	CueBonus
	CueSuccess
	CueFail
)

var cueNames = map[Cue]string{
	CueNone:       "none",
	CueClick:      "click",
	CueLaunch:     "launch",
	CueImpact:     "impact",
	CueExplosion:  "explosion",
	CueBreak:      "break",
	CueTargetDown: "targetDown",
	CueBonus:      "bonus",
	CueSuccess:    "success",
	CueFail:       "fail",
}

func (c Cue) String() string {
	if name, ok := cueNames[c]; ok {
		return name
	}
	return "unknown"
}

// audibleImpactSpeed is the slowest ground or wall impact worth a sound.
const audibleImpactSpeed = 16

// tone is one oscillator voice.
type tone struct {
	freq     float64
	duration time.Duration
	wave     WaveType
	gain     float64
	delay    time.Duration
}

var cueTones = map[Cue][]tone{
	CueClick:  {{freq: 520, duration: 50 * time.Millisecond, wave: WaveTriangle, gain: 0.045}},
	CueLaunch: {{freq: 330, duration: 140 * time.Millisecond, wave: WaveSaw, gain: 0.05}},
	CueImpact: {{freq: 120, duration: 100 * time.Millisecond, wave: WaveSquare, gain: 0.06}},
	CueExplosion: {
		{freq: 0, duration: 350 * time.Millisecond, wave: WaveNoise, gain: 0.08},
		{freq: 70, duration: 300 * time.Millisecond, wave: WaveSquare, gain: 0.05},
	},
	CueBreak:      {{freq: 0, duration: 90 * time.Millisecond, wave: WaveNoise, gain: 0.04}},
	CueTargetDown: {{freq: 260, duration: 160 * time.Millisecond, wave: WaveSquare, gain: 0.05}},
	CueBonus: {
		{freq: 880, duration: 120 * time.Millisecond, wave: WaveSine, gain: 0.05},
		{freq: 1760, duration: 120 * time.Millisecond, wave: WaveSine, gain: 0.02},
	},
	CueSuccess: {
		{freq: 720, duration: 120 * time.Millisecond, wave: WaveTriangle, gain: 0.05},
		{freq: 950, duration: 140 * time.Millisecond, wave: WaveTriangle, gain: 0.04, delay: 70 * time.Millisecond},
	},
	CueFail: {{freq: 180, duration: 180 * time.Millisecond, wave: WaveSaw, gain: 0.06}},
}

// Duration returns how long a cue plays.
func (c Cue) Duration() time.Duration {
	var longest time.Duration
	for _, t := range cueTones[c] {
		longest = max(longest, t.delay+t.duration)
	}
	return longest
}

// Streamer synthesizes the cue at rate, scaled by volume. It returns nil
// for CueNone.
func (c Cue) Streamer(rate beep.SampleRate, volume float64) beep.Streamer {
	tones := cueTones[c]
	if len(tones) == 0 {
		return nil
	}

	voices := make([]beep.Streamer, 0, len(tones))
	for _, t := range tones {
		osc := NewOscillator(t.freq, t.duration, t.wave, rate)
		var voice beep.Streamer = newVolume(NewDecay(osc, t.duration, 5*time.Millisecond, rate), t.gain)
		if t.delay > 0 {
			voice = beep.Seq(beep.Silence(rate.N(t.delay)), voice)
		}
		voices = append(voices, voice)
	}

	mixed := voices[0]
	if len(voices) > 1 {
		mixed = beep.Mix(voices...)
	}
	return newVolume(mixed, volume)
}

// CueFor maps a mission event to its cue. Slow bumps stay silent.
func CueFor(e event.Event) Cue {
	switch e.GetType() {
	case event.Launch:
		return CueLaunch
	case event.Impact:
		if me, ok := e.(*event.MissionEvent); ok && me.Speed <= audibleImpactSpeed {
			return CueNone
		}
		return CueImpact
	case event.Explosion:
		return CueExplosion
	case event.DroneDestroyed:
		return CueImpact
	case event.PartDetached:
		return CueBreak
	case event.TargetDestroyed:
		return CueTargetDown
	case event.BonusCollected:
		return CueBonus
	case event.MissionSuccess:
		return CueSuccess
	case event.MissionFail:
		return CueFail
	default:
		return CueNone
	}
}

// CuesFor maps one step's events to the cues to play. Each cue sounds
// once per step, and an explosion drowns out that step's impacts.
func CuesFor(events []*event.MissionEvent) []Cue {
	seen := make(map[Cue]bool)
	for _, e := range events {
		if c := CueFor(e); c != CueNone {
			seen[c] = true
		}
	}
	if seen[CueExplosion] {
		delete(seen, CueImpact)
	}

	var cues []Cue
	for _, e := range events {
		c := CueFor(e)
		if seen[c] {
			cues = append(cues, c)
			delete(seen, c)
		}
	}
	return cues
}
