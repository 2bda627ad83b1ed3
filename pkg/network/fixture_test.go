package network

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/config"
	"github.com/opd-ai/go-dronestrike/pkg/mission"
	"github.com/opd-ai/go-dronestrike/pkg/part"
)

func testCatalog() *part.Catalog {
	return part.NewCatalog([]part.Part{
		{ID: "core", Name: "Core", Category: part.CategoryCore, Weight: 10, Durability: 100, Cost: 100,
			Stats: part.Stats{Stability: 4, Control: 2}},
		{ID: "wings", Name: "Wings", Category: part.CategoryWings, Weight: 4, Durability: 40, Cost: 60,
			Stats: part.Stats{Lift: 10, Drag: 2, Stability: 1}},
		{ID: "power", Name: "Battery", Category: part.CategoryPower, Weight: 5, Durability: 20, Cost: 80,
			ThrustType: part.ThrustElectric, EnergyOut: 4},
		{ID: "seeker", Name: "IR Seeker", Category: part.CategorySeeker, Weight: 2, Durability: 15, Cost: 90,
			EnergyIn: 1, Stats: part.Stats{Guidance: 6, LockEase: 4}},
	})
}

func testBuild() build.Build {
	b := build.DefaultBuild()
	b.Slots[build.SlotID(1, 0)] = "wings"
	b.Slots[build.SlotID(1, 2)] = "core"
	b.Slots[build.SlotID(2, 3)] = "power"
	return b
}

func testLevels() []mission.Level {
	return []mission.Level{
		{ID: "empty", Name: "Empty Sky"},
		{
			ID:   "range",
			Name: "Firing Range",
			Targets: []mission.TargetDef{
				{ID: "t1", X: 1100, Y: 560, TargetType: "radar", Durability: 100},
			},
		},
	}
}

func testConfig(codec string) *config.SimConfig {
	cfg := config.DefaultConfig()
	cfg.Server.Codec = codec
	cfg.Server.MaxClients = 4
	return cfg
}

// startServer serves a mission server on a loopback httptest server.
func startServer(t *testing.T, cfg *config.SimConfig) (*Server, string) {
	t.Helper()
	srv, err := NewServer(cfg, Resources{Parts: testCatalog(), Levels: testLevels(), Build: testBuild()}, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, codec Codec, cmd Command) {
	t.Helper()
	frame, err := codec.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshal %s: %v", cmd.Type, err)
	}
	if err := conn.WriteMessage(codec.FrameType(), frame); err != nil {
		t.Fatalf("write %s: %v", cmd.Type, err)
	}
}

// await reads messages until one of type want arrives.
func await(t *testing.T, conn *websocket.Conn, codec Codec, want MessageType) Message {
	t.Helper()
	return awaitAny(t, conn, codec, want)
}

// awaitAny reads messages until one of the wanted types arrives.
func awaitAny(t *testing.T, conn *websocket.Conn, codec Codec, want ...MessageType) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %v: %v", want, err)
		}
		var msg Message
		if err := codec.Unmarshal(frame, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		for _, w := range want {
			if msg.Type == w {
				return msg
			}
		}
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
