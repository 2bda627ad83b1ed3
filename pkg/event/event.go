// Package event carries mission notifications from the simulation to its
// observers (renderer, audio, network sessions, logs).
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Mission event types
const (
	Launch          Type = "launch"
	Impact          Type = "impact"
	Explosion       Type = "explosion"
	TargetDestroyed Type = "targetDestroyed"
	PartDetached    Type = "partDetached"
	DroneDestroyed  Type = "droneDestroyed"
	BonusCollected  Type = "bonusCollected"
	MissionSuccess  Type = "missionSuccess"
	MissionFail     Type = "missionFail"
)

// Driver event types
const (
	MissionStarted Type = "missionStarted"
	ResultReady    Type = "resultReady"
)

// All is the pseudo-type for subscribers that want every event.
const All Type = "*"

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type registration struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]registration
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]registration),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type. Subscribing to
// All receives every published event.
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registration{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.handlers[eventType]
	for i, r := range regs {
		if r.id == id {
			next := make([]registration, 0, len(regs)-1)
			next = append(next, regs[:i]...)
			b.handlers[eventType] = append(next, regs[i+1:]...)
			break
		}
	}
	if len(b.handlers[eventType]) == 0 {
		delete(b.handlers, eventType)
	}
}

// Publish sends an event to all subscribed handlers, type-specific
// subscribers first. Handlers run on the caller's goroutine.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	regs := append([]registration(nil), b.handlers[event.GetType()]...)
	regs = append(regs, b.handlers[All]...)
	b.mu.RUnlock()

	for _, r := range regs {
		r.handler(event)
	}
}

// MissionEvent is a notification emitted by a mission step. Only the fields
// relevant to its type are set.
type MissionEvent struct {
	BaseEvent
	At         float64 `json:"at" msgpack:"at"`
	Reason     string  `json:"reason,omitempty" msgpack:"reason,omitempty"`
	Material   string  `json:"material,omitempty" msgpack:"material,omitempty"`
	Speed      float64 `json:"speed,omitempty" msgpack:"speed,omitempty"`
	TargetID   string  `json:"targetId,omitempty" msgpack:"targetId,omitempty"`
	TargetType string  `json:"targetType,omitempty" msgpack:"targetType,omitempty"`
	SlotID     string  `json:"slotId,omitempty" msgpack:"slotId,omitempty"`
	PartName   string  `json:"partName,omitempty" msgpack:"partName,omitempty"`
	BonusID    string  `json:"bonusId,omitempty" msgpack:"bonusId,omitempty"`
	Radius     float64 `json:"radius,omitempty" msgpack:"radius,omitempty"`
	PowerScale float64 `json:"powerScale,omitempty" msgpack:"powerScale,omitempty"`
}

// NewMissionEvent creates a mission event of the given type at mission time at.
func NewMissionEvent(eventType Type, source interface{}, at float64) *MissionEvent {
	return &MissionEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		At: at,
	}
}

// Kind returns the event type as a string, for wire encodings.
func (e *MissionEvent) Kind() string {
	return string(e.EventType)
}

// ResultEvent announces that a resolved mission's result may be shown.
type ResultEvent struct {
	BaseEvent
	Success bool
	Stars   int
	Score   float64
	Reason  string
}

// NewResultEvent creates a result event.
func NewResultEvent(source interface{}, success bool, stars int, score float64, reason string) *ResultEvent {
	return &ResultEvent{
		BaseEvent: BaseEvent{
			EventType: ResultReady,
			Source:    source,
		},
		Success: success,
		Stars:   stars,
		Score:   score,
		Reason:  reason,
	}
}
