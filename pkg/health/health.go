// Package health serves liveness and readiness probes for the mission
// server. Readiness runs every registered check and reports 503 when any
// of them fails.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"

	// LivePath and ReadyPath are where Mount installs the probes.
	LivePath  = "/health/live"
	ReadyPath = "/health/ready"

	defaultCheckTimeout = 5 * time.Second
)

// Check is one component probe.
type Check interface {
	Name() string
	Check(ctx context.Context) error
}

// Report is the readiness response body.
type Report struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentReport `json:"checks"`
}

// ComponentReport is the outcome of a single check.
type ComponentReport struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Checker runs the registered checks.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]Check
	timeout time.Duration
}

// NewChecker creates a checker whose readiness probe gives up after
// timeout. A non-positive timeout means five seconds.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	return &Checker{
		checks:  make(map[string]Check),
		timeout: timeout,
	}
}

// Add registers check, replacing any check with the same name.
func (c *Checker) Add(check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[check.Name()] = check
}

// Remove drops the named check.
func (c *Checker) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// Names lists the registered checks in order.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes every check. The report is healthy only if all pass.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	defer c.mu.RUnlock()

	report := Report{
		Status: statusHealthy,
		Checks: make(map[string]ComponentReport, len(c.checks)),
	}
	for name, check := range c.checks {
		if err := check.Check(ctx); err != nil {
			report.Status = statusUnhealthy
			report.Checks[name] = ComponentReport{Status: statusUnhealthy, Message: err.Error()}
			continue
		}
		report.Checks[name] = ComponentReport{Status: statusHealthy}
	}
	return report
}

// Mount installs both probes on mux.
func (c *Checker) Mount(mux *http.ServeMux) {
	mux.HandleFunc(LivePath, c.LivenessHandler)
	mux.HandleFunc(ReadyPath, c.ReadinessHandler)
}

// LivenessHandler answers 200 while the process can serve requests.
func (c *Checker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ReadinessHandler answers 200 when every check passes and 503 otherwise.
func (c *Checker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	report := c.Run(ctx)
	code := http.StatusOK
	if report.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// MissionServer is the view of the mission server the checks need.
type MissionServer interface {
	Running() bool
	Addr() string
	SessionCount() int
	MaxClients() int
}

// ServerCheck fails when the mission server has stopped accepting pilots.
type ServerCheck struct{ srv MissionServer }

// NewServerCheck creates a check on srv's running state.
func NewServerCheck(srv MissionServer) *ServerCheck { return &ServerCheck{srv: srv} }

func (c *ServerCheck) Name() string { return "mission_server" }

func (c *ServerCheck) Check(ctx context.Context) error {
	if !c.srv.Running() {
		return fmt.Errorf("mission server is not running")
	}
	return nil
}

// ListenerCheck fails when there is no bound listener.
type ListenerCheck struct{ srv MissionServer }

// NewListenerCheck creates a check on srv's listening address.
func NewListenerCheck(srv MissionServer) *ListenerCheck { return &ListenerCheck{srv: srv} }

func (c *ListenerCheck) Name() string { return "listener" }

func (c *ListenerCheck) Check(ctx context.Context) error {
	if c.srv.Addr() == "" {
		return fmt.Errorf("network listener is not active")
	}
	return nil
}

// CapacityCheck fails when every session slot is taken, so load balancers
// route new pilots elsewhere.
type CapacityCheck struct{ srv MissionServer }

// NewCapacityCheck creates a check on srv's free session slots.
func NewCapacityCheck(srv MissionServer) *CapacityCheck { return &CapacityCheck{srv: srv} }

func (c *CapacityCheck) Name() string { return "capacity" }

func (c *CapacityCheck) Check(ctx context.Context) error {
	if n, limit := c.srv.SessionCount(), c.srv.MaxClients(); n >= limit {
		return fmt.Errorf("all %d session slots in use", limit)
	}
	return nil
}

// MemoryCheck fails when heap usage exceeds a limit.
type MemoryCheck struct {
	maxMB int64
	usage func() int64
}

// NewMemoryCheck creates a memory check. A nil usage reads the live heap.
func NewMemoryCheck(maxMB int64, usage func() int64) *MemoryCheck {
	if usage == nil {
		usage = HeapMB
	}
	return &MemoryCheck{maxMB: maxMB, usage: usage}
}

func (c *MemoryCheck) Name() string { return "memory" }

func (c *MemoryCheck) Check(ctx context.Context) error {
	if mb := c.usage(); mb > c.maxMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", mb, c.maxMB)
	}
	return nil
}

// HeapMB returns the allocated heap in megabytes.
func HeapMB() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}
