package validation

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/mission"
	"github.com/opd-ai/go-dronestrike/pkg/part"
)

func TestValidateLaunch(t *testing.T) {
	tests := []struct {
		name    string
		power   float64
		angle   float64
		wantErr bool
	}{
		{"typical", 65, -20, false},
		{"minimum", 15, -80, false},
		{"maximum", 100, 20, false},
		{"power above envelope", 120, -20, false},
		{"power below envelope", 0, -20, false},
		{"angle past vertical", 50, -95, false},
		{"angle below horizon", 65, 21, false},
		{"power NaN", math.NaN(), 0, true},
		{"power infinite", math.Inf(1), -20, true},
		{"angle infinite", 50, math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLaunch(tt.power, tt.angle)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateLaunch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrOutOfRange) {
				t.Errorf("ValidateLaunch() error = %v, want ErrOutOfRange", err)
			}
		})
	}
}

func TestValidatePitchAndThrottle(t *testing.T) {
	tests := []struct {
		name    string
		check   func(float64) error
		value   float64
		wantErr bool
	}{
		{"pitch up", ValidatePitch, 1, false},
		{"pitch down", ValidatePitch, -1, false},
		{"pitch neutral", ValidatePitch, 0, false},
		{"pitch over", ValidatePitch, 1.01, true},
		{"pitch NaN", ValidatePitch, math.NaN(), true},
		{"throttle idle", ValidateThrottle, 0, false},
		{"throttle full", ValidateThrottle, 1, false},
		{"throttle negative", ValidateThrottle, -0.1, true},
		{"throttle over", ValidateThrottle, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.check(tt.value); (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAutopilot(t *testing.T) {
	plain := build.Summary{Totals: build.Totals{CategoryCounts: map[part.Category]int{part.CategoryCore: 1}}}
	guided := build.Summary{Totals: build.Totals{CategoryCounts: map[part.Category]int{
		part.CategoryCore:   1,
		part.CategorySeeker: 1,
	}}}

	tests := []struct {
		name    string
		mode    string
		summary build.Summary
		want    mission.AutopilotMode
		wantErr error
	}{
		{"off", "off", plain, mission.AutopilotOff, nil},
		{"stabilize without seeker", "stabilize", plain, mission.AutopilotStabilize, nil},
		{"terminal with seeker", "terminal", guided, mission.AutopilotTerminal, nil},
		{"terminal without seeker", "terminal", plain, mission.AutopilotOff, ErrSeekerRequired},
		{"unknown", "cruise", guided, mission.AutopilotOff, nil},
		{"wrong case", "Terminal", guided, mission.AutopilotOff, nil},
		{"empty", "", plain, mission.AutopilotOff, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateAutopilot(tt.mode, tt.summary)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateAutopilot() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateAutopilot() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateCallsign(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        string
		wantErr     bool
		errContains string
	}{
		{
			name:  "valid simple callsign",
			input: "Hawk1",
			want:  "Hawk1",
		},
		{
			name:  "valid callsign with punctuation",
			input: "Red-Two_b.",
			want:  "Red-Two_b.",
		},
		{
			name:  "surrounding spaces trimmed",
			input: "  Hawk1  ",
			want:  "Hawk1",
		},
		{
			name:        "empty",
			input:       "",
			wantErr:     true,
			errContains: "cannot be empty",
		},
		{
			name:        "only whitespace",
			input:       "   ",
			wantErr:     true,
			errContains: "only whitespace",
		},
		{
			name:        "too long",
			input:       strings.Repeat("a", MaxCallsignLen+1),
			wantErr:     true,
			errContains: "too long",
		},
		{
			name:        "markup",
			input:       "Hawk<script>",
			wantErr:     true,
			errContains: "invalid characters",
		},
		{
			name:        "control character",
			input:       "Hawk\x00One",
			wantErr:     true,
			errContains: "control characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateCallsign(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCallsign() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("ValidateCallsign() error = %v, should contain %q", err, tt.errContains)
			}
			if got != tt.want {
				t.Errorf("ValidateCallsign() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateLevelID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"level01", false},
		{"radar-hill_2", false},
		{"", true},
		{"../etc/passwd", true},
		{"level 1", true},
		{strings.Repeat("l", MaxLevelIDLen+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if err := ValidateLevelID(tt.id); (err != nil) != tt.wantErr {
				t.Errorf("ValidateLevelID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestMessageValidator_ValidateMessage(t *testing.T) {
	validator := NewMessageValidator(64, 2)
	defer validator.Close()

	if err := validator.ValidateMessage(make([]byte, 65), "pilot1"); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("oversized frame error = %v, want ErrMessageTooLarge", err)
	}
	if err := validator.ValidateMessage(nil, "pilot1"); err == nil {
		t.Error("empty frame should be rejected")
	}

	frame := []byte(`{"type":"pitch","pitch":1}`)
	for i := 0; i < 2; i++ {
		if err := validator.ValidateMessage(frame, "pilot1"); err != nil {
			t.Fatalf("frame %d rejected: %v", i+1, err)
		}
	}
	if err := validator.ValidateMessage(frame, "pilot1"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("third frame error = %v, want ErrRateLimited", err)
	}
	if err := validator.ValidateMessage(frame, "pilot2"); err != nil {
		t.Errorf("other pilot rejected: %v", err)
	}

	validator.Forget("pilot1")
	if err := validator.ValidateMessage(frame, "pilot1"); err != nil {
		t.Errorf("forgotten pilot should start with a full bucket: %v", err)
	}
}

func TestNewMessageValidator_Defaults(t *testing.T) {
	v := NewMessageValidator(0, 0)
	defer v.Close()
	if v.maxSize != MaxMessageSize || v.perSecond != CommandsPerSecond {
		t.Errorf("defaults = %d bytes, %d/s", v.maxSize, v.perSecond)
	}
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)
	defer rl.Close()

	for i := 0; i < 5; i++ {
		if !rl.Allow("test-client") {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}
	if rl.Allow("test-client") {
		t.Error("6th request should be denied")
	}
	if !rl.Allow("other-client") {
		t.Error("Different client should be allowed")
	}
	if rl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", rl.Len())
	}
}

func TestRateLimiter_ContinuousRefill(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	rl := newRateLimiter(4, time.Second, clock.now)
	defer rl.Close()

	for i := 0; i < 4; i++ {
		rl.Allow("p")
	}
	if rl.Allow("p") {
		t.Fatal("empty bucket should deny")
	}

	clock.advance(100 * time.Millisecond)
	if rl.Allow("p") {
		t.Error("0.4 tokens should not allow a request")
	}
	clock.advance(200 * time.Millisecond)
	if !rl.Allow("p") {
		t.Error("a whole token should have refilled")
	}

	clock.advance(time.Hour)
	for i := 0; i < 4; i++ {
		if !rl.Allow("p") {
			t.Fatalf("request %d after idle should be allowed", i+1)
		}
	}
	if rl.Allow("p") {
		t.Error("refill must cap at the bucket size")
	}
}

func TestRateLimiter_RemoveIdle(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	rl := newRateLimiter(1, time.Second, clock.now)
	defer rl.Close()

	rl.Allow("idle")
	clock.advance(1500 * time.Millisecond)
	rl.Allow("busy")
	clock.advance(time.Second)

	rl.removeIdle()
	if rl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", rl.Len())
	}
	rl.Remove("busy")
	if rl.Len() != 0 {
		t.Errorf("Len() = %d after Remove, want 0", rl.Len())
	}
	rl.Close()
}
