package control_api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"push-to-talk-typer/logging"
)

// Controller is the slice of the lifecycle controller the API drives.
type Controller interface {
	StartRemote()
	StopRemote()
}

// Server is the optional remote control surface: start/stop listening and
// a results websocket, all behind a shared API key. Transcripts of
// API-started captures go to the websocket clients instead of the typer.
type Server struct {
	ctrl       Controller
	hub        *Hub
	apiKey     string
	logger     *logging.Logger
	httpServer *http.Server
	stopPrune  chan struct{}
}

type Config struct {
	Controller Controller
	Hub        *Hub
	APIKey     string
	Host       string
	Port       int
	Logger     *logging.Logger
}

func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Controller == nil {
		return nil, fmt.Errorf("controller is nil")
	}

	if cfg.Hub == nil {
		return nil, fmt.Errorf("hub is nil")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is empty")
	}

	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	s := &Server{
		ctrl:      cfg.Controller,
		hub:       cfg.Hub,
		apiKey:    cfg.APIKey,
		logger:    cfg.Logger.Named("control-api"),
		stopPrune: make(chan struct{}),
	}

	// Listening must not stay on when nobody is connected to receive
	// the results.
	s.hub.onEmpty = s.ctrl.StopRemote

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: s.routes(),
	}

	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleIndex)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAPIKey)

		r.Post("/start_listening", s.handleStartListening)
		r.Post("/stop_listening", s.handleStopListening)
		r.Get("/results", s.handleResults)
	})

	return r
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != s.apiKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "Ahoy!")
}

func (s *Server) handleStartListening(w http.ResponseWriter, _ *http.Request) {
	s.logger.Info("listening started via API")
	s.ctrl.StartRemote()

	fmt.Fprint(w, "Listening started")
}

func (s *Server) handleStopListening(w http.ResponseWriter, _ *http.Request) {
	s.logger.Info("listening stopped via API")
	s.ctrl.StopRemote()

	fmt.Fprint(w, "Listening stopped")
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r)
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	go s.hub.run(s.stopPrune)

	s.logger.Info("control API listening", logging.String("addr", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopPrune)

	return s.httpServer.Shutdown(ctx)
}
