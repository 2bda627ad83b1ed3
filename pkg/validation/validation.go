// Package validation checks pilot commands and raw session messages before
// they reach a mission. Launch values and autopilot names are left to the
// mission core, which clamps and falls back on its own; this layer only
// rejects what the core cannot make sense of.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/mission"
	"github.com/opd-ai/go-dronestrike/pkg/part"
)

// Message and command limits
const (
	MaxMessageSize     = 4 * 1024
	MaxCallsignLen     = 24
	MaxLevelIDLen      = 32
	CommandsPerSecond  = 120
	MaxPitch           = 1.0
	MaxThrottle        = 1.0
	defaultCommandRate = time.Second
)

var (
	// ErrOutOfRange is returned for numeric commands outside their bounds.
	ErrOutOfRange = errors.New("value out of range")
	// ErrSeekerRequired is returned when terminal guidance is requested by a
	// build that carries no seeker.
	ErrSeekerRequired = errors.New("terminal autopilot requires a seeker")
	// ErrMessageTooLarge is returned by ValidateMessage for oversized frames.
	ErrMessageTooLarge = errors.New("message too large")
	// ErrRateLimited is returned when a pilot sends commands too quickly.
	ErrRateLimited = errors.New("rate limit exceeded")
)

var (
	validCallsignChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.]+$`)
	validLevelID       = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
)

// MessageValidator checks raw frames for size and per-pilot rate.
type MessageValidator struct {
	maxSize     int64
	perSecond   int
	rateLimiter *RateLimiter
}

// NewMessageValidator creates a validator. Non-positive limits use
// MaxMessageSize and CommandsPerSecond.
func NewMessageValidator(maxSize int64, perSecond int) *MessageValidator {
	if maxSize <= 0 {
		maxSize = MaxMessageSize
	}
	if perSecond <= 0 {
		perSecond = CommandsPerSecond
	}
	return &MessageValidator{
		maxSize:     maxSize,
		perSecond:   perSecond,
		rateLimiter: NewRateLimiter(perSecond, defaultCommandRate),
	}
}

// Close releases resources used by the message validator
func (v *MessageValidator) Close() {
	if v.rateLimiter != nil {
		v.rateLimiter.Close()
	}
}

// Forget drops the rate state of a disconnected pilot.
func (v *MessageValidator) Forget(clientID string) {
	v.rateLimiter.Remove(clientID)
}

// ValidateMessage checks a raw frame against the size and rate limits.
func (v *MessageValidator) ValidateMessage(data []byte, clientID string) error {
	if int64(len(data)) > v.maxSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrMessageTooLarge, len(data), v.maxSize)
	}
	if len(data) == 0 {
		return errors.New("empty message")
	}
	if !v.rateLimiter.Allow(clientID) {
		return fmt.Errorf("%w: max %d commands per second", ErrRateLimited, v.perSecond)
	}
	return nil
}

// ValidateLaunch rejects non-finite launch values. Finite values outside
// the launch envelope are clamped by the mission.
func ValidateLaunch(powerPercent, angleDeg float64) error {
	if err := finite("launch power", powerPercent); err != nil {
		return err
	}
	return finite("launch angle", angleDeg)
}

// ValidatePitch checks a pitch command.
func ValidatePitch(pitch float64) error {
	return inRange("pitch", pitch, -MaxPitch, MaxPitch)
}

// ValidateThrottle checks a throttle command.
func ValidateThrottle(throttle float64) error {
	return inRange("throttle", throttle, 0, MaxThrottle)
}

func finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s: %w: not a finite number", name, ErrOutOfRange)
	}
	return nil
}

func inRange(name string, v, lo, hi float64) error {
	if err := finite(name, v); err != nil {
		return err
	}
	if v < lo || v > hi {
		return fmt.Errorf("%s: %w: %g (must be %g to %g)", name, ErrOutOfRange, v, lo, hi)
	}
	return nil
}

// ValidateAutopilot parses an autopilot mode for a build. Unknown names
// select off. Terminal guidance needs a seeker on the airframe.
func ValidateAutopilot(name string, summary build.Summary) (mission.AutopilotMode, error) {
	mode := mission.ParseAutopilotMode(name)
	if mode == mission.AutopilotTerminal && !summary.HasCategory(part.CategorySeeker) {
		return mission.AutopilotOff, ErrSeekerRequired
	}
	return mode, nil
}

// ValidateCallsign validates a pilot callsign and returns it trimmed.
func ValidateCallsign(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("callsign cannot be empty")
	}

	if len(name) > MaxCallsignLen {
		return "", fmt.Errorf("callsign too long: %d characters (max %d)", len(name), MaxCallsignLen)
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("callsign contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("callsign cannot be only whitespace")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("callsign contains control characters")
		}
	}

	if !validCallsignChars.MatchString(trimmed) {
		return "", fmt.Errorf("callsign contains invalid characters (only letters, digits, spaces, hyphens, underscores and dots allowed)")
	}

	return trimmed, nil
}

// ValidateLevelID checks a level id requested by a client.
func ValidateLevelID(id string) error {
	if id == "" {
		return fmt.Errorf("level id cannot be empty")
	}
	if len(id) > MaxLevelIDLen {
		return fmt.Errorf("level id too long: %d characters (max %d)", len(id), MaxLevelIDLen)
	}
	if !validLevelID.MatchString(id) {
		return fmt.Errorf("level id %q contains invalid characters", id)
	}
	return nil
}
