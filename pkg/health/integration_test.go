package health

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/config"
	"github.com/opd-ai/go-dronestrike/pkg/mission"
	"github.com/opd-ai/go-dronestrike/pkg/network"
	"github.com/opd-ai/go-dronestrike/pkg/part"
)

func TestReadinessFollowsMissionServer(t *testing.T) {
	cfg := config.DefaultConfig()
	core := part.Part{ID: "core", Name: "Core", Category: part.CategoryCore, Weight: 10, Durability: 100}
	b := build.DefaultBuild()
	b.Slots[build.SlotID(1, 2)] = "core"

	srv, err := network.NewServer(cfg, network.Resources{
		Parts:  part.NewCatalog([]part.Part{core}),
		Levels: []mission.Level{{ID: "empty", Name: "Empty Sky"}},
		Build:  b,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	c := NewChecker(time.Second)
	c.Add(NewServerCheck(srv))
	c.Add(NewListenerCheck(srv))
	c.Add(NewCapacityCheck(srv))
	ready := func() int {
		w := httptest.NewRecorder()
		c.ReadinessHandler(w, httptest.NewRequest(http.MethodGet, ReadyPath, nil))
		return w.Code
	}

	if code := ready(); code != http.StatusServiceUnavailable {
		t.Errorf("readiness before serving = %d, want 503", code)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln, nil) }()

	deadline := time.Now().Add(3 * time.Second)
	for ready() != http.StatusOK {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("readiness never became 200: %+v", c.Run(context.Background()))
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if code := ready(); code != http.StatusServiceUnavailable {
		t.Errorf("readiness after shutdown = %d, want 503", code)
	}
}
