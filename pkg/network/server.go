// Package network serves missions to remote pilots over WebSocket. Every
// connection is a session that can fly one mission at a time: pilot
// commands come in, snapshots, events and the graded result go out.
package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/config"
	"github.com/opd-ai/go-dronestrike/pkg/data"
	"github.com/opd-ai/go-dronestrike/pkg/engine"
	"github.com/opd-ai/go-dronestrike/pkg/logging"
	"github.com/opd-ai/go-dronestrike/pkg/mission"
	"github.com/opd-ai/go-dronestrike/pkg/part"
	"github.com/opd-ai/go-dronestrike/pkg/validation"
)

var (
	// ErrServerFull is reported to connections beyond MaxClients.
	ErrServerFull = errors.New("server full")
	// ErrUnknownLevel is returned for joins naming a level that is not loaded.
	ErrUnknownLevel = errors.New("unknown level")
	// ErrNotJoined is returned for flight commands sent before a join.
	ErrNotJoined = errors.New("not joined to a mission")
	// ErrAlreadyFlying is returned for a join while a mission is unfinished.
	ErrAlreadyFlying = errors.New("mission already in progress")
)

// Resources is the static data missions are built from.
type Resources struct {
	Parts  *part.Catalog
	Levels []mission.Level
	// Build flies when a join carries no build of its own.
	Build build.Build
}

// Server accepts WebSocket pilots and runs one mission driver per session.
type Server struct {
	cfg        *config.SimConfig
	res        Resources
	codec      Codec
	summarizer *build.Summarizer
	validator  *validation.MessageValidator
	upgrader   websocket.Upgrader
	logger     *logging.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	pending  int
	addr     string
	running  bool
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer creates a server. It needs a part catalog and at least one level.
func NewServer(cfg *config.SimConfig, res Resources, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if res.Parts == nil || len(res.Levels) == 0 {
		return nil, errors.New("server needs a part catalog and at least one level")
	}
	codec, err := NewCodec(cfg.Server.Codec)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:        cfg,
		res:        res,
		codec:      codec,
		summarizer: build.NewSummarizer(cfg.Stats),
		validator:  validation.NewMessageValidator(cfg.Server.MaxMessageBytes, cfg.Server.CommandsPerSecond),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:   logger,
		sessions: make(map[string]*Session),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// ListenAndServe listens on the configured address and serves handler
// until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, handler http.Handler) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return s.Serve(ctx, ln, handler)
}

// Serve serves handler on ln until ctx is cancelled, then shuts down and
// closes every session. A nil handler serves only the mission socket.
func (s *Server) Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	if handler == nil {
		handler = s
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.running = true
	s.mu.Unlock()
	s.logger.Info(ctx, "mission server started",
		"address", s.Addr(),
		"codec", s.codec.Name(),
		"max_clients", s.cfg.Server.MaxClients,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("shutdown: %w", err)
	}
	s.Close()
	return serveErr
}

// Close ends every session and waits for their missions to stop. Hijacked
// WebSocket connections are not covered by http.Server.Shutdown.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.running = false
	s.addr = ""
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	s.cancel()
	for _, sess := range sessions {
		sess.close()
	}
	s.wg.Wait()
	s.validator.Close()
	s.logger.Info(context.Background(), "mission server stopped", "sessions_closed", len(sessions))
}

// Addr returns the listening address, or "" when not serving.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Running reports whether the server is accepting pilots.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SessionCount returns the number of connected pilots.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// MaxClients returns the session limit.
func (s *Server) MaxClients() int {
	return s.cfg.Server.MaxClients
}

// ServeHTTP upgrades a request to a mission session.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.reserve() {
		s.logger.Warn(r.Context(), "rejecting connection", "remote", r.RemoteAddr, "reason", ErrServerFull.Error())
		http.Error(w, ErrServerFull.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.release()
		s.logger.Warn(r.Context(), "websocket upgrade failed", "remote", r.RemoteAddr, "error", err.Error())
		return
	}

	sess := newSession(s, conn)
	if !s.register(sess) {
		sess.close()
		return
	}
	s.logger.Info(sess.ctx, "pilot connected", "remote", r.RemoteAddr)

	if !s.goTracked(sess.writePump) || !s.goTracked(sess.readPump) {
		sess.close()
		s.unregister(sess)
	}
}

func (s *Server) reserve() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.sessions)+s.pending >= s.cfg.Server.MaxClients {
		return false
	}
	s.pending++
	return true
}

func (s *Server) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
}

func (s *Server) register(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	if s.closed {
		return false
	}
	s.sessions[sess.ID] = sess
	return true
}

func (s *Server) unregister(sess *Session) {
	s.mu.Lock()
	_, ok := s.sessions[sess.ID]
	delete(s.sessions, sess.ID)
	s.mu.Unlock()

	if ok {
		s.validator.Forget(sess.ID)
		s.logger.Info(sess.ctx, "pilot disconnected")
	}
}

// goTracked runs fn in a goroutine that Close waits for. It refuses once
// the server is closed.
func (s *Server) goTracked(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
	return true
}

// newMission builds a driver for a join. An empty level id selects the
// first level and a nil build flies the server's default build.
func (s *Server) newMission(levelID string, b *build.Build, logger *logging.Logger) (*engine.Mission, build.Summary, error) {
	level := s.res.Levels[0]
	if levelID != "" {
		if err := validation.ValidateLevelID(levelID); err != nil {
			return nil, build.Summary{}, err
		}
		var ok bool
		if level, ok = data.FindLevel(s.res.Levels, levelID); !ok {
			return nil, build.Summary{}, fmt.Errorf("%w: %q", ErrUnknownLevel, levelID)
		}
	}

	loadout := s.res.Build.Clone()
	if b != nil {
		raw := *b
		if raw.Tuning == (build.Tuning{}) {
			raw.Tuning = build.DefaultTuning()
		}
		loadout = data.NormalizeBuild(raw)
	}

	summary := s.summarizer.Calculate(loadout, s.res.Parts, level.Budget(), build.Options{})
	state, err := mission.NewState(level, summary, build.NewDurabilityMap(summary),
		mission.WithViewport(s.cfg.Viewport),
		mission.WithFlightModel(s.cfg.Flight),
		mission.WithStatModel(s.cfg.Stats),
	)
	if err != nil {
		return nil, summary, err
	}
	return engine.NewMission(state, s.cfg.Driver, logger), summary, nil
}
