package render

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
)

// DefaultKeyHold is how long a key press keeps steering. Terminals report
// no key releases, so auto-repeat keeps a held key alive.
const DefaultKeyHold = 150 * time.Millisecond

// KeyboardPitch turns terminal key presses into a pitch command: up or w
// pitches the nose up (+1), down or s pitches it down (-1).
type KeyboardPitch struct {
	mu    sync.Mutex
	value float64
	until time.Time
	hold  time.Duration
	now   func() time.Time
}

// NewKeyboardPitch creates a pitch source. A non-positive hold uses DefaultKeyHold.
func NewKeyboardPitch(hold time.Duration) *KeyboardPitch {
	if hold <= 0 {
		hold = DefaultKeyHold
	}
	return &KeyboardPitch{hold: hold, now: time.Now}
}

// HandleKey consumes pitch keys and reports whether ev was one.
func (k *KeyboardPitch) HandleKey(ev *tcell.EventKey) bool {
	var v float64
	switch ev.Key() {
	case tcell.KeyUp:
		v = 1
	case tcell.KeyDown:
		v = -1
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W':
			v = 1
		case 's', 'S':
			v = -1
		default:
			return false
		}
	default:
		return false
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.value = v
	k.until = k.now().Add(k.hold)
	return true
}

// Pitch returns the current command in [-1,1].
func (k *KeyboardPitch) Pitch() float64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.now().After(k.until) {
		return 0
	}
	return k.value
}
