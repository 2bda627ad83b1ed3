package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

type stubCheck struct {
	name string
	err  error
}

func (s *stubCheck) Name() string                    { return s.name }
func (s *stubCheck) Check(ctx context.Context) error { return s.err }

// slowCheck waits for delay or for ctx to end.
type slowCheck struct {
	delay time.Duration
}

func (s *slowCheck) Name() string { return "slow" }

func (s *slowCheck) Check(ctx context.Context) error {
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type fakeServer struct {
	running  bool
	addr     string
	sessions int
	max      int
}

func (f *fakeServer) Running() bool     { return f.running }
func (f *fakeServer) Addr() string      { return f.addr }
func (f *fakeServer) SessionCount() int { return f.sessions }
func (f *fakeServer) MaxClients() int   { return f.max }

func TestChecker_AddRemove(t *testing.T) {
	c := NewChecker(0)
	c.Add(&stubCheck{name: "b"})
	c.Add(&stubCheck{name: "a"})
	c.Add(&stubCheck{name: "a", err: errors.New("replaced")})

	if got := c.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Names() = %v", got)
	}
	if r := c.Run(context.Background()); r.Checks["a"].Message != "replaced" {
		t.Errorf("a check was not replaced: %+v", r.Checks["a"])
	}

	c.Remove("a")
	if got := c.Names(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("after Remove, Names() = %v", got)
	}
}

func TestChecker_Run(t *testing.T) {
	tests := []struct {
		name   string
		checks []*stubCheck
		want   string
	}{
		{"no checks", nil, statusHealthy},
		{"all pass", []*stubCheck{{name: "one"}, {name: "two"}}, statusHealthy},
		{"one fails", []*stubCheck{{name: "one"}, {name: "two", err: errors.New("down")}}, statusUnhealthy},
		{"all fail", []*stubCheck{{name: "one", err: errors.New("x")}, {name: "two", err: errors.New("y")}}, statusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(time.Second)
			for _, check := range tt.checks {
				c.Add(check)
			}
			report := c.Run(context.Background())
			if report.Status != tt.want {
				t.Errorf("status = %s, want %s", report.Status, tt.want)
			}
			if len(report.Checks) != len(tt.checks) {
				t.Fatalf("got %d results, want %d", len(report.Checks), len(tt.checks))
			}
			for _, check := range tt.checks {
				got := report.Checks[check.name]
				if (check.err == nil) != (got.Status == statusHealthy) {
					t.Errorf("%s = %+v", check.name, got)
				}
				if check.err != nil && got.Message != check.err.Error() {
					t.Errorf("%s message = %q", check.name, got.Message)
				}
			}
		})
	}
}

func TestChecker_RunHonoursContext(t *testing.T) {
	c := NewChecker(time.Second)
	c.Add(&slowCheck{delay: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if r := c.Run(ctx); r.Status != statusUnhealthy || r.Checks["slow"].Status != statusUnhealthy {
		t.Errorf("report = %+v, want the slow check to time out", r)
	}
}

func TestChecker_Handlers(t *testing.T) {
	srv := &fakeServer{running: true, addr: "127.0.0.1:4680", max: 2}
	c := NewChecker(time.Second)
	c.Add(NewServerCheck(srv))
	c.Add(NewCapacityCheck(srv))

	mux := http.NewServeMux()
	c.Mount(mux)

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	live := get(LivePath)
	if live.Code != http.StatusOK || live.Header().Get("Content-Type") != "application/json" {
		t.Errorf("liveness = %d %q", live.Code, live.Header().Get("Content-Type"))
	}

	ready := get(ReadyPath)
	if ready.Code != http.StatusOK {
		t.Errorf("readiness with capacity = %d, want 200", ready.Code)
	}

	srv.sessions = 2
	full := get(ReadyPath)
	if full.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness when full = %d, want 503", full.Code)
	}
	var report Report
	if err := json.NewDecoder(full.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Checks["capacity"].Status != statusUnhealthy || report.Checks["mission_server"].Status != statusHealthy {
		t.Errorf("report = %+v", report)
	}

	srv.running = false
	if live := get(LivePath); live.Code != http.StatusOK {
		t.Errorf("liveness must not depend on checks, got %d", live.Code)
	}
}

func TestServerChecks(t *testing.T) {
	tests := []struct {
		name    string
		check   func(*fakeServer) Check
		srv     fakeServer
		wantErr bool
	}{
		{"running", func(s *fakeServer) Check { return NewServerCheck(s) }, fakeServer{running: true}, false},
		{"stopped", func(s *fakeServer) Check { return NewServerCheck(s) }, fakeServer{}, true},
		{"listening", func(s *fakeServer) Check { return NewListenerCheck(s) }, fakeServer{addr: ":4680"}, false},
		{"no listener", func(s *fakeServer) Check { return NewListenerCheck(s) }, fakeServer{}, true},
		{"free slots", func(s *fakeServer) Check { return NewCapacityCheck(s) }, fakeServer{sessions: 1, max: 2}, false},
		{"full", func(s *fakeServer) Check { return NewCapacityCheck(s) }, fakeServer{sessions: 2, max: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := tt.srv
			err := tt.check(&srv).Check(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMemoryCheck(t *testing.T) {
	if err := NewMemoryCheck(100, func() int64 { return 50 }).Check(context.Background()); err != nil {
		t.Errorf("under limit: %v", err)
	}
	if err := NewMemoryCheck(100, func() int64 { return 150 }).Check(context.Background()); err == nil {
		t.Error("over limit should fail")
	}
	if err := NewMemoryCheck(1<<20, nil).Check(context.Background()); err != nil {
		t.Errorf("live heap check: %v", err)
	}
}
