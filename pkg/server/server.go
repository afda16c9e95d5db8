package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/config"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

// Stores groups the backend the endpoints operate on.
type Stores struct {
	Devices store.DevicesStore
	Secrets store.SecretsStore
	Notes   store.NotesStore
	Health  store.HealthStore
	// Backend names the backend in /status
	Backend string
}

type Server struct {
	Router        *mux.Router
	DevicesStore  store.DevicesStore
	SecretsStore  store.SecretsStore
	NotesStore    store.NotesStore
	HealthStore   store.HealthStore
	Backend       string
	Authenticator *middleware.TokenAuthenticator
	AccessLog     io.Writer
	srv           *http.Server
	cfg           atomic.Pointer[config.NotesConfig]
}

func NewServer(
	stores Stores,
	cfg *config.NotesConfig,
	authenticator *middleware.TokenAuthenticator,
	host string,
	port string,
) *Server {
	router := mux.NewRouter().UseEncodedPath()

	s := &Server{
		Router:        router,
		DevicesStore:  stores.Devices,
		SecretsStore:  stores.Secrets,
		NotesStore:    stores.Notes,
		HealthStore:   stores.Health,
		Backend:       stores.Backend,
		Authenticator: authenticator,
		AccessLog:     os.Stdout,
	}
	s.cfg.Store(cfg)
	s.srv = &http.Server{
		Addr:         host + ":" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	return s
}

// Config returns the configuration requests are served with. It may be nil.
func (s *Server) Config() *config.NotesConfig {
	return s.cfg.Load()
}

// SetConfig swaps the configuration used by subsequent requests.
func (s *Server) SetConfig(cfg *config.NotesConfig) {
	s.cfg.Store(cfg)
}

// Handler returns the router wrapped with access logging and panic recovery.
func (s *Server) Handler() http.Handler {
	recovered := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(s.Router)
	if s.AccessLog == nil {
		return recovered
	}
	return handlers.LoggingHandler(s.AccessLog, recovered)
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.srv.Handler = s.Handler()
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// StartWithListener serves on an existing listener until Shutdown is called.
func (s *Server) StartWithListener(l net.Listener) error {
	s.srv.Handler = s.Handler()
	err := s.srv.Serve(l)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}
