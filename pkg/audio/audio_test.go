package audio

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/opd-ai/go-dronestrike/pkg/config"
	"github.com/opd-ai/go-dronestrike/pkg/event"
)

const testRate = beep.SampleRate(8000)

// drain streams s to the end.
func drain(t *testing.T, s beep.Streamer) [][2]float64 {
	t.Helper()
	var out [][2]float64
	buf := make([][2]float64, 256)
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
	t.Fatal("streamer never drained")
	return nil
}

func peak(samples [][2]float64) float64 {
	var p float64
	for _, s := range samples {
		p = math.Max(p, math.Max(math.Abs(s[0]), math.Abs(s[1])))
	}
	return p
}

// recordingSink drains every cue it is given.
type recordingSink struct {
	mu      sync.Mutex
	streams int
}

func (r *recordingSink) Play(s beep.Streamer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams++
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.streams
}

func missionEvent(t event.Type, at, speed float64) *event.MissionEvent {
	e := event.NewMissionEvent(t, nil, at)
	e.Speed = speed
	return e
}

func TestOscillator_Length(t *testing.T) {
	waves := []WaveType{WaveSine, WaveSquare, WaveSaw, WaveTriangle, WaveNoise}
	for _, wave := range waves {
		samples := drain(t, NewOscillator(440, 100*time.Millisecond, wave, testRate))
		if len(samples) != 800 {
			t.Errorf("wave %d streamed %d samples, want 800", wave, len(samples))
		}
		if p := peak(samples); p > 1 || p == 0 {
			t.Errorf("wave %d peak %v out of range", wave, p)
		}
	}
}

func TestDecay_Envelope(t *testing.T) {
	square := NewOscillator(100, 200*time.Millisecond, WaveSquare, testRate)
	samples := drain(t, NewDecay(square, 200*time.Millisecond, 5*time.Millisecond, testRate))

	if len(samples) != 1600 {
		t.Fatalf("streamed %d samples, want 1600", len(samples))
	}
	if samples[0][0] != 0 {
		t.Errorf("first sample %v, want 0 at the start of the attack", samples[0][0])
	}
	if p := peak(samples[:100]); p < 0.9 {
		t.Errorf("early peak %v, want near 1", p)
	}
	if p := peak(samples[len(samples)-10:]); p > 0.01 {
		t.Errorf("tail peak %v, want near silence", p)
	}
}

func TestCue_Streamer(t *testing.T) {
	tests := []struct {
		cue     Cue
		maxGain float64
	}{
		{CueClick, 0.045},
		{CueLaunch, 0.05},
		{CueImpact, 0.06},
		{CueFail, 0.06},
		{CueBreak, 0.04},
		{CueTargetDown, 0.05},
	}
	for _, tc := range tests {
		t.Run(tc.cue.String(), func(t *testing.T) {
			samples := drain(t, tc.cue.Streamer(testRate, 1))
			if want := testRate.N(tc.cue.Duration()); len(samples) != want {
				t.Errorf("streamed %d samples, want %d", len(samples), want)
			}
			p := peak(samples)
			if p > tc.maxGain+1e-9 || p < tc.maxGain/4 {
				t.Errorf("peak %v, want at most %v", p, tc.maxGain)
			}
		})
	}
}

func TestCue_LayeredStreamers(t *testing.T) {
	for _, c := range []Cue{CueExplosion, CueBonus, CueSuccess} {
		t.Run(c.String(), func(t *testing.T) {
			samples := drain(t, c.Streamer(testRate, 1))
			if len(samples) == 0 {
				t.Fatal("no samples")
			}
			if peak(samples) == 0 {
				t.Error("cue is silent")
			}
		})
	}
	if CueSuccess.Duration() != 210*time.Millisecond {
		t.Errorf("success duration %v, want 210ms", CueSuccess.Duration())
	}
}

func TestCue_Volume(t *testing.T) {
	if s := CueNone.Streamer(testRate, 1); s != nil {
		t.Error("CueNone should have no streamer")
	}
	if p := peak(drain(t, CueImpact.Streamer(testRate, 0))); p != 0 {
		t.Errorf("zero volume peak %v, want 0", p)
	}
	loud := peak(drain(t, CueLaunch.Streamer(testRate, 1)))
	quiet := peak(drain(t, CueLaunch.Streamer(testRate, 0.5)))
	if math.Abs(quiet-loud/2) > 1e-9 {
		t.Errorf("half volume peak %v, want %v", quiet, loud/2)
	}
}

func TestCueFor(t *testing.T) {
	tests := []struct {
		name string
		e    event.Event
		want Cue
	}{
		{"launch", missionEvent(event.Launch, 0, 300), CueLaunch},
		{"hard impact", missionEvent(event.Impact, 1, 40), CueImpact},
		{"soft impact", missionEvent(event.Impact, 1, 16), CueNone},
		{"explosion", missionEvent(event.Explosion, 1, 0), CueExplosion},
		{"drone destroyed", missionEvent(event.DroneDestroyed, 1, 0), CueImpact},
		{"part detached", missionEvent(event.PartDetached, 1, 0), CueBreak},
		{"target destroyed", missionEvent(event.TargetDestroyed, 1, 0), CueTargetDown},
		{"bonus", missionEvent(event.BonusCollected, 1, 0), CueBonus},
		{"success", missionEvent(event.MissionSuccess, 1, 0), CueSuccess},
		{"fail", missionEvent(event.MissionFail, 1, 0), CueFail},
		{"driver event", &event.BaseEvent{EventType: event.MissionStarted}, CueNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CueFor(tc.e); got != tc.want {
				t.Errorf("CueFor = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCuesFor(t *testing.T) {
	events := []*event.MissionEvent{
		missionEvent(event.Impact, 2, 50),
		missionEvent(event.PartDetached, 2, 0),
		missionEvent(event.PartDetached, 2, 0),
		missionEvent(event.Explosion, 2, 0),
		missionEvent(event.TargetDestroyed, 2, 0),
	}
	got := CuesFor(events)
	want := []Cue{CueBreak, CueExplosion, CueTargetDown}
	if len(got) != len(want) {
		t.Fatalf("CuesFor = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cue %d = %v, want %v", i, got[i], want[i])
		}
	}

	impactOnly := CuesFor([]*event.MissionEvent{missionEvent(event.Impact, 1, 30), missionEvent(event.Impact, 1, 30)})
	if len(impactOnly) != 1 || impactOnly[0] != CueImpact {
		t.Errorf("CuesFor(impacts) = %v, want [impact]", impactOnly)
	}
}

func TestSystem_Muted(t *testing.T) {
	sink := &recordingSink{}
	s := NewSystem(sink, config.AudioConfig{Enabled: false, SampleRate: 8000, Volume: 1})
	s.Play(CueLaunch)
	s.PlayEvents([]*event.MissionEvent{missionEvent(event.Launch, 0, 300)})
	if sink.count() != 0 {
		t.Errorf("muted system played %d cues", sink.count())
	}

	s.SetEnabled(true)
	s.Play(CueLaunch)
	s.Play(CueNone)
	if sink.count() != 1 || s.Played(CueLaunch) != 1 {
		t.Errorf("enabled system played %d cues, want 1", sink.count())
	}

	noSink := NewSystem(nil, config.AudioConfig{Enabled: true})
	noSink.SetEnabled(true)
	if noSink.Enabled() {
		t.Error("system without a sink must stay muted")
	}
	noSink.Play(CueFail)
}

func TestSystem_HandleEventDedupesImpacts(t *testing.T) {
	sink := &recordingSink{}
	s := NewSystem(sink, config.DefaultConfig().Audio)
	bus := event.NewEventBus()
	sub := s.Attach(bus)

	bus.Publish(missionEvent(event.Impact, 1.0, 40))
	bus.Publish(missionEvent(event.Explosion, 1.0, 0))
	bus.Publish(missionEvent(event.DroneDestroyed, 1.0, 0))
	bus.Publish(missionEvent(event.Impact, 1.5, 40))

	if got := s.Played(CueImpact); got != 2 {
		t.Errorf("impact played %d times, want 2", got)
	}
	if got := s.Played(CueExplosion); got != 1 {
		t.Errorf("explosion played %d times, want 1", got)
	}

	sub.Cancel()
	bus.Publish(missionEvent(event.Launch, 2, 300))
	if s.Played(CueLaunch) != 0 {
		t.Error("cancelled subscription still plays")
	}
	if sink.count() != 3 {
		t.Errorf("sink received %d cues, want 3", sink.count())
	}
}
