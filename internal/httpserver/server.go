// Package httpserver implements the minimal HTTP surface of spec §4.4: the
// landing page, the blob endpoint, the receive-mode upload endpoint, and
// the embedded static assets, on top of gin — matching the teacher's
// server/server.go and server/routes.go construction style.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Karmanya03/Deadrop/internal/registry"
)

// Mode selects which routes a Server exposes: a send-mode process serves
// a drop for others to fetch; a receive-mode process accepts exactly one
// upload and then shuts itself down (spec §2 control flow, §4.4).
type Mode int

const (
	ModeSend Mode = iota
	ModeReceive
)

// ReceiveConfig carries receive-mode-only settings.
type ReceiveConfig struct {
	OutputDir string
	// ExpectedKey is the 32-byte key the operator generated for this
	// receive session; only an upload encoded under this key decodes.
	ExpectedKey []byte
}

// Server wires together the registry, rate limiter, and gin engine.
type Server struct {
	engine   *gin.Engine
	httpSrv  *http.Server
	registry *registry.Registry
	limiter  *IPRateLimiter
	logger   *logrus.Logger
	cron     *cron.Cron

	mode    Mode
	receive ReceiveConfig

	shutdownOnce chan struct{}
}

// New constructs a Server in the given mode. The listen address is given
// later, to Run.
func New(mode Mode, reg *registry.Registry, logger *logrus.Logger, receive ReceiveConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:       engine,
		registry:     reg,
		limiter:      NewIPRateLimiter(),
		logger:       logger,
		mode:         mode,
		receive:      receive,
		shutdownOnce: make(chan struct{}),
	}

	engine.Use(requestIDMiddleware(), securityHeaders())
	s.registerRoutes()

	c := cron.New()
	// Defense-in-depth sweep: every minute, double-check expiry against the
	// registry's own per-record timers (SPEC_FULL §10/§11).
	_, _ = c.AddFunc("@every 1m", reg.Sweep)
	c.Start()
	s.cron = c

	return s
}

// requestIDMiddleware attaches a per-request uuid for log correlation,
// mirroring the teacher's request_id convention without ever logging key
// material or a drop id beyond its 16 characters (spec §7).
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("request_id", uuid.NewString())
		c.Next()
	}
}

// Run starts the HTTP server on bindAddr (host:port), blocking until ctx is
// cancelled or the server shuts itself down (receive mode, post-upload).
// On the way out it destroys every remaining drop in the registry.
func (s *Server) Run(ctx context.Context, bindAddr string) error {
	s.httpSrv = &http.Server{
		Addr:        bindAddr,
		Handler:     s.engine,
		IdleTimeout: 60 * time.Second, // spec §5 "idle connections closed after 60s"
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case <-s.shutdownOnce:
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.cron.Stop()
	err := s.httpSrv.Shutdown(shutdownCtx)
	s.registry.DestroyAll()
	return err
}

// scheduleShutdown triggers Run to return; called after a receive-mode
// upload completes (spec §4.4: "responds ..., then schedules its own
// shutdown").
func (s *Server) scheduleShutdown() {
	select {
	case <-s.shutdownOnce:
		// already closed
	default:
		close(s.shutdownOnce)
	}
}
