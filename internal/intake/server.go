package intake

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/muurk/contactform/internal/config"
	"github.com/muurk/contactform/internal/discovery"
	"github.com/muurk/contactform/internal/logging"
	"github.com/muurk/contactform/internal/urls"
)

// shutdownTimeout bounds how long Shutdown waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// Config holds the intake server configuration
type Config struct {
	Listen         string
	FormID         string
	AllowedOrigins []string
	Reject         bool // answer every POST with 503
	Advertise      bool // publish the service over mDNS
	Capacity       int  // leads kept in memory (0 = DefaultCapacity)
}

// FromSettings converts the intake section of the config file.
func FromSettings(s config.IntakeConfig) Config {
	return Config{
		Listen:         s.Listen,
		FormID:         s.FormID,
		AllowedOrigins: append([]string(nil), s.AllowedOrigins...),
		Advertise:      s.Advertise,
	}
}

// Server is the local mock form intake.
type Server struct {
	config    Config
	store     *Store
	feed      *Feed
	rejecting atomic.Bool
	handler   http.Handler

	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server
	advertiser *discovery.Advertiser
}

// New creates a server. Nothing listens until Start or Listen is called.
func New(cfg Config) (*Server, error) {
	if cfg.FormID == "" {
		return nil, fmt.Errorf("form id is required")
	}
	if cfg.Listen == "" {
		cfg.Listen = "127.0.0.1:8787"
	}
	s := &Server{
		config: cfg,
		store:  NewStore(cfg.Capacity),
		feed:   NewFeed(cfg.AllowedOrigins),
	}
	s.rejecting.Store(cfg.Reject)
	s.handler = s.buildHandler()
	return s, nil
}

func (s *Server) buildHandler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware)

	r.Get("/health", s.handleHealth)
	r.Post(urls.LocalIntakePath+"{form}", s.handleSubmit)
	r.Get("/leads", s.handleListLeads)
	r.Put("/mode", s.handleSetMode)
	r.Get("/ws", s.feed.ServeHTTP)

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	})
	return c.Handler(r)
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Store returns the lead store.
func (s *Server) Store() *Store {
	return s.store
}

// Feed returns the websocket lead feed.
func (s *Server) Feed() *Feed {
	return s.feed
}

// SetRejecting switches reject mode on or off.
func (s *Server) SetRejecting(v bool) {
	s.rejecting.Store(v)
	logging.Info("Intake mode changed", zap.Bool("rejecting", v))
}

// Rejecting reports whether POSTs are currently refused.
func (s *Server) Rejecting() bool {
	return s.rejecting.Load()
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// EndpointURL is the URL the submission client should POST to.
func (s *Server) EndpointURL() string {
	addr := s.config.Listen
	if a := s.Addr(); a != nil {
		addr = a.String()
	}
	return "http://" + addr + urls.LocalIntakePath + s.config.FormID
}

// Start listens and serves until ctx is done, a signal arrives or the
// server fails.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	logging.Info("Starting intake server",
		zap.String("addr", s.Addr().String()),
		zap.String("form_id", s.config.FormID),
		zap.Bool("rejecting", s.Rejecting()),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve()
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		return s.Shutdown(context.Background())
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Serve accepts connections on the listener bound by Listen. It returns
// nil once Shutdown has been called.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln, hs := s.listener, s.httpServer
	s.mu.Unlock()
	if ln == nil {
		return fmt.Errorf("server is not listening")
	}

	if s.config.Advertise {
		s.advertise(ln.Addr())
	}

	if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("intake server failed: %w", err)
	}
	return nil
}

func (s *Server) advertise(addr net.Addr) {
	_, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return
	}
	port, _ := strconv.Atoi(portStr)

	adv, err := discovery.Advertise(discovery.Announcement{
		Instance: "contactform-" + s.config.FormID,
		Port:     port,
		FormID:   s.config.FormID,
	})
	if err != nil {
		// Serving still works without mDNS.
		logging.Warn("Failed to advertise intake service", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.advertiser = adv
	s.mu.Unlock()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.mu.Lock()
	hs, adv := s.httpServer, s.advertiser
	s.advertiser = nil
	s.mu.Unlock()

	if adv != nil {
		adv.Shutdown()
	}

	// Hijacked websocket connections are not tracked by http.Server.
	s.feed.Close()

	var err error
	if hs != nil {
		ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err = hs.Shutdown(ctx); err != nil {
			logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
			_ = hs.Close()
		} else {
			logging.Info("All connections closed gracefully")
		}
	}

	logging.Sync()
	return err
}

// GetActiveConnections returns the number of connected feed watchers
func (s *Server) GetActiveConnections() int {
	return s.feed.Count()
}

// LoggingMiddleware logs every request through the package logger.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, status, time.Since(start))
	})
}
