package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/smartdom/smartdom-core/internal/application"
	"github.com/smartdom/smartdom-core/internal/auth"
	"github.com/smartdom/smartdom-core/internal/catalog"
	"github.com/smartdom/smartdom-core/internal/control"
	"github.com/smartdom/smartdom-core/internal/home"
	"github.com/smartdom/smartdom-core/internal/infrastructure/config"
	"github.com/smartdom/smartdom-core/internal/infrastructure/logging"
	"github.com/smartdom/smartdom-core/internal/provision"
	"github.com/smartdom/smartdom-core/internal/telemetry"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger

	Catalog *catalog.Catalog
	Users   auth.UserRepository
	Tokens  auth.TokenRepository
	Apps    application.Repository
	Rooms   home.RoomRepository
	Sensors home.SensorRepository

	Provisioner *provision.Engine
	Telemetry   *telemetry.Service
	Control     *control.Service

	Version string
}

// Server is the HTTP API server.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg    config.APIConfig
	wsCfg  config.WebSocketConfig
	secCfg config.SecurityConfig
	logger *logging.Logger

	catalog *catalog.Catalog
	users   auth.UserRepository
	tokens  auth.TokenRepository
	apps    application.Repository
	rooms   home.RoomRepository
	sensors home.SensorRepository

	provisioner *provision.Engine
	telemetry   *telemetry.Service
	control     *control.Service

	version string
	server  *http.Server
	hub     *Hub
	cancel  context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if deps.Users == nil || deps.Tokens == nil {
		return nil, fmt.Errorf("user and token repositories are required")
	}
	if deps.Apps == nil || deps.Rooms == nil || deps.Sensors == nil {
		return nil, fmt.Errorf("application, room and sensor repositories are required")
	}
	if deps.Provisioner == nil {
		return nil, fmt.Errorf("provisioning engine is required")
	}
	if deps.Telemetry == nil {
		return nil, fmt.Errorf("telemetry service is required")
	}
	if deps.Control == nil {
		return nil, fmt.Errorf("control service is required")
	}

	return &Server{
		cfg:         deps.Config,
		wsCfg:       deps.WS,
		secCfg:      deps.Security,
		logger:      deps.Logger,
		catalog:     deps.Catalog,
		users:       deps.Users,
		tokens:      deps.Tokens,
		apps:        deps.Apps,
		rooms:       deps.Rooms,
		sensors:     deps.Sensors,
		provisioner: deps.Provisioner,
		telemetry:   deps.Telemetry,
		control:     deps.Control,
		version:     deps.Version,
	}, nil
}

// Hub returns the WebSocket hub. Nil until Start() is called.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, wires the hub into the
// telemetry service for live sensor broadcasts, and launches the HTTP
// listener in a background goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Create internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	// Applied readings flow out to connected clients.
	s.telemetry.SetBroadcaster(s.hub)

	// Start periodic ticket cleanup to prevent memory leaks
	go s.cleanTicketsLoop(srvCtx)

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	// Start listening in background
	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub, ticket cleanup)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
