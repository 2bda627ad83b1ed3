package network

import (
	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/event"
	"github.com/opd-ai/go-dronestrike/pkg/mission"
	"github.com/opd-ai/go-dronestrike/pkg/physics"
)

// CommandType names a pilot command.
type CommandType string

const (
	CmdJoin      CommandType = "join"
	CmdLaunch    CommandType = "launch"
	CmdPitch     CommandType = "pitch"
	CmdThrottle  CommandType = "throttle"
	CmdAutopilot CommandType = "autopilot"
	CmdPing      CommandType = "ping"
)

// Command is a message from a pilot. Only the fields of its type are read.
type Command struct {
	Type     CommandType  `json:"type" msgpack:"type"`
	Callsign string       `json:"callsign,omitempty" msgpack:"callsign,omitempty"`
	LevelID  string       `json:"levelId,omitempty" msgpack:"levelId,omitempty"`
	Build    *build.Build `json:"build,omitempty" msgpack:"build,omitempty"`
	Power    float64      `json:"power,omitempty" msgpack:"power,omitempty"`
	Angle    float64      `json:"angle,omitempty" msgpack:"angle,omitempty"`
	Pitch    float64      `json:"pitch,omitempty" msgpack:"pitch,omitempty"`
	Throttle float64      `json:"throttle,omitempty" msgpack:"throttle,omitempty"`
	Mode     string       `json:"mode,omitempty" msgpack:"mode,omitempty"`
}

// MessageType names a server message.
type MessageType string

const (
	MsgWelcome  MessageType = "welcome"
	MsgSnapshot MessageType = "snapshot"
	MsgEvents   MessageType = "events"
	MsgResult   MessageType = "result"
	MsgError    MessageType = "error"
	MsgPong     MessageType = "pong"
)

// Message is a message to a pilot. Only the field of its type is set.
type Message struct {
	Type     MessageType `json:"type" msgpack:"type"`
	Welcome  *Welcome    `json:"welcome,omitempty" msgpack:"welcome,omitempty"`
	Snapshot *Snapshot   `json:"snapshot,omitempty" msgpack:"snapshot,omitempty"`
	Events   []EventView `json:"events,omitempty" msgpack:"events,omitempty"`
	Result   *Result     `json:"result,omitempty" msgpack:"result,omitempty"`
	Error    string      `json:"error,omitempty" msgpack:"error,omitempty"`
}

// Welcome confirms a join and describes the airframe that will fly.
type Welcome struct {
	SessionID string           `json:"sessionId" msgpack:"sessionId"`
	Callsign  string           `json:"callsign" msgpack:"callsign"`
	LevelID   string           `json:"levelId" msgpack:"levelId"`
	LevelName string           `json:"levelName,omitempty" msgpack:"levelName,omitempty"`
	Viewport  mission.Viewport `json:"viewport" msgpack:"viewport"`
	Weight    float64          `json:"weight" msgpack:"weight"`
	Cost      float64          `json:"cost" msgpack:"cost"`
	Parts     int              `json:"parts" msgpack:"parts"`
	Warnings  []string         `json:"warnings,omitempty" msgpack:"warnings,omitempty"`
}

// Result is the graded outcome of a mission.
type Result struct {
	Success       bool    `json:"success" msgpack:"success"`
	Reason        string  `json:"reason" msgpack:"reason"`
	Stars         int     `json:"stars" msgpack:"stars"`
	Score         float64 `json:"score" msgpack:"score"`
	DamagePercent float64 `json:"damagePercent" msgpack:"damagePercent"`
	Time          float64 `json:"time" msgpack:"time"`
}

// DroneView is the drone's pose and condition.
type DroneView struct {
	Position  physics.Vector2D `json:"position" msgpack:"position"`
	Velocity  physics.Vector2D `json:"velocity" msgpack:"velocity"`
	Angle     float64          `json:"angle" msgpack:"angle"`
	Radius    float64          `json:"radius" msgpack:"radius"`
	Health    float64          `json:"health" msgpack:"health"`
	MaxHealth float64          `json:"maxHealth" msgpack:"maxHealth"`
	Throttle  float64          `json:"throttle" msgpack:"throttle"`
	Launched  bool             `json:"launched" msgpack:"launched"`
	Destroyed bool             `json:"destroyed" msgpack:"destroyed"`
}

// ObstacleView is an obstacle rectangle. Entity is unique across every
// mission the server runs; ID is only unique within its level.
type ObstacleView struct {
	ID         string       `json:"id" msgpack:"id"`
	Entity     uint64       `json:"entity" msgpack:"entity"`
	Rect       physics.Rect `json:"rect" msgpack:"rect"`
	Material   string       `json:"material,omitempty" msgpack:"material,omitempty"`
	Durability float64      `json:"durability" msgpack:"durability"`
	Destroyed  bool         `json:"destroyed" msgpack:"destroyed"`
}

// CircleView is a target or bonus item.
type CircleView struct {
	ID         string           `json:"id" msgpack:"id"`
	Entity     uint64           `json:"entity" msgpack:"entity"`
	Center     physics.Vector2D `json:"center" msgpack:"center"`
	Radius     float64          `json:"radius" msgpack:"radius"`
	Kind       string           `json:"kind,omitempty" msgpack:"kind,omitempty"`
	Durability float64          `json:"durability,omitempty" msgpack:"durability,omitempty"`
	Gone       bool             `json:"gone" msgpack:"gone"`
}

// ExplosionView is the live detonation.
type ExplosionView struct {
	Position physics.Vector2D `json:"position" msgpack:"position"`
	Radius   float64          `json:"radius" msgpack:"radius"`
	TTL      float64          `json:"ttl" msgpack:"ttl"`
}

// ObjectiveView is one objective line.
type ObjectiveView struct {
	Text     string `json:"text" msgpack:"text"`
	Current  int    `json:"current" msgpack:"current"`
	Count    int    `json:"count" msgpack:"count"`
	Optional bool   `json:"optional,omitempty" msgpack:"optional,omitempty"`
	Done     bool   `json:"done" msgpack:"done"`
}

// Snapshot is the read-only view of a mission after a frame.
type Snapshot struct {
	Tick          uint64           `json:"tick" msgpack:"tick"`
	Time          float64          `json:"time" msgpack:"time"`
	TimeLimit     float64          `json:"timeLimit" msgpack:"timeLimit"`
	Status        string           `json:"status" msgpack:"status"`
	Autopilot     string           `json:"autopilot" msgpack:"autopilot"`
	Wind          physics.Vector2D `json:"wind" msgpack:"wind"`
	Drone         DroneView        `json:"drone" msgpack:"drone"`
	Obstacles     []ObstacleView   `json:"obstacles" msgpack:"obstacles"`
	Targets       []CircleView     `json:"targets" msgpack:"targets"`
	Bonuses       []CircleView     `json:"bonuses" msgpack:"bonuses"`
	Explosion     *ExplosionView   `json:"explosion,omitempty" msgpack:"explosion,omitempty"`
	Objectives    []ObjectiveView  `json:"objectives,omitempty" msgpack:"objectives,omitempty"`
	Detached      []string         `json:"detached,omitempty" msgpack:"detached,omitempty"`
	Score         float64          `json:"score" msgpack:"score"`
	DamagePercent float64          `json:"damagePercent" msgpack:"damagePercent"`
	Stars         int              `json:"stars" msgpack:"stars"`
}

// EventView is a mission event on the wire.
type EventView struct {
	Type       string  `json:"type" msgpack:"type"`
	At         float64 `json:"at" msgpack:"at"`
	Reason     string  `json:"reason,omitempty" msgpack:"reason,omitempty"`
	Speed      float64 `json:"speed,omitempty" msgpack:"speed,omitempty"`
	TargetID   string  `json:"targetId,omitempty" msgpack:"targetId,omitempty"`
	TargetType string  `json:"targetType,omitempty" msgpack:"targetType,omitempty"`
	SlotID     string  `json:"slotId,omitempty" msgpack:"slotId,omitempty"`
	PartName   string  `json:"partName,omitempty" msgpack:"partName,omitempty"`
	BonusID    string  `json:"bonusId,omitempty" msgpack:"bonusId,omitempty"`
	Radius     float64 `json:"radius,omitempty" msgpack:"radius,omitempty"`
}

// NewSnapshot copies the parts of s a remote pilot needs to draw a frame.
func NewSnapshot(s *mission.State, tick uint64) *Snapshot {
	snap := &Snapshot{
		Tick:      tick,
		Time:      s.Time,
		TimeLimit: s.TimeLimit,
		Status:    s.Status.String(),
		Autopilot: string(s.Autopilot),
		Wind:      s.Wind,
		Drone: DroneView{
			Position:  s.Drone.Position,
			Velocity:  s.Drone.Velocity,
			Angle:     s.Drone.Angle,
			Radius:    s.Drone.Radius,
			Health:    s.Drone.Health,
			MaxHealth: s.Drone.MaxHealth,
			Throttle:  s.Drone.Throttle,
			Launched:  s.Drone.Launched,
			Destroyed: s.Drone.Destroyed,
		},
		Obstacles:     make([]ObstacleView, 0, len(s.Obstacles)),
		Targets:       make([]CircleView, 0, len(s.Targets)),
		Bonuses:       make([]CircleView, 0, len(s.BonusItems)),
		Detached:      append([]string(nil), s.DetachedParts...),
		Score:         s.Score,
		DamagePercent: s.TargetDamagePercent,
		Stars:         s.Stars,
	}

	for _, o := range s.Obstacles {
		snap.Obstacles = append(snap.Obstacles, ObstacleView{
			ID:         o.ID,
			Entity:     o.Entity,
			Rect:       o.Rect,
			Material:   o.Material,
			Durability: o.Durability,
			Destroyed:  o.Destroyed,
		})
	}
	for _, t := range s.Targets {
		snap.Targets = append(snap.Targets, CircleView{
			ID:         t.ID,
			Entity:     t.Entity,
			Center:     t.Center,
			Radius:     t.Radius,
			Kind:       t.TargetType,
			Durability: t.Durability,
			Gone:       t.Destroyed,
		})
	}
	for _, b := range s.BonusItems {
		snap.Bonuses = append(snap.Bonuses, CircleView{
			ID:     b.ID,
			Entity: b.Entity,
			Center: b.Center,
			Radius: b.Radius,
			Gone:   b.Collected,
		})
	}
	if e := s.Explosion; e != nil {
		snap.Explosion = &ExplosionView{Position: e.Position, Radius: e.Radius, TTL: e.TTL}
	}
	for _, p := range s.Progress {
		snap.Objectives = append(snap.Objectives, ObjectiveView{
			Text:     p.Text,
			Current:  p.Current,
			Count:    p.Count,
			Optional: p.Optional,
			Done:     p.Done,
		})
	}
	return snap
}

// NewResult grades a resolved mission.
func NewResult(s *mission.State) *Result {
	return &Result{
		Success:       s.Status == mission.StatusSuccess,
		Reason:        string(s.EndReason),
		Stars:         s.Stars,
		Score:         s.Score,
		DamagePercent: s.TargetDamagePercent,
		Time:          s.Time,
	}
}

func newEventView(e *event.MissionEvent) EventView {
	return EventView{
		Type:       e.Kind(),
		At:         e.At,
		Reason:     e.Reason,
		Speed:      e.Speed,
		TargetID:   e.TargetID,
		TargetType: e.TargetType,
		SlotID:     e.SlotID,
		PartName:   e.PartName,
		BonusID:    e.BonusID,
		Radius:     e.Radius,
	}
}
