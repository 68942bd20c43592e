// Package api exposes the flash controller over HTTP so external tools
// (notification scripts, window-manager keybindings) can trigger transient
// displays.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/kestrelwm/xflash/internal/config"
	"github.com/kestrelwm/xflash/internal/display"
	"github.com/kestrelwm/xflash/internal/host"
	"github.com/kestrelwm/xflash/internal/logger"
)

// Server is the HTTP control API.
type Server struct {
	router   *mux.Router
	ctrl     *display.Controller
	cfg      *config.Manager
	upgrader websocket.Upgrader

	mu        sync.RWMutex
	listeners []chan display.Event
}

// NewServer creates the API server and installs itself as the controller's
// event notifier.
func NewServer(ctrl *display.Controller, cfg *config.Manager) *Server {
	s := &Server{
		router: mux.NewRouter(),
		ctrl:   ctrl,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	ctrl.SetNotifier(s.broadcast)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/flash", s.handleFlash).Methods("POST")
	api.HandleFunc("/surfaces", s.handleGetSurfaces).Methods("GET")
	api.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/config", s.handleUpdateConfig).Methods("PUT")
	api.HandleFunc("/events", s.handleEvents)
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Router returns the configured router, for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.enableCORS(s.router)
}

// Start starts the HTTP server on the given port and blocks.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logger.WithComponent("api").Info().Str("addr", addr).Msg("Starting control API")
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// FlashRequest is the body of POST /api/flash. Window targeting wins over
// frame targeting when both are given.
type FlashRequest struct {
	FrameID         uint32  `json:"frame_id,omitempty"`
	FrameName       string  `json:"frame_name,omitempty"`
	WindowID        uint32  `json:"window_id,omitempty"`
	ContentID       uint32  `json:"content_id,omitempty"`
	ContentName     string  `json:"content_name,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Window          bool    `json:"window,omitempty"` // force the window-oriented entry point
}

func (s *Server) handleFlash(w http.ResponseWriter, r *http.Request) {
	var req FlashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	opts := display.Options{
		Content: host.ContentRef{ID: req.ContentID, Name: req.ContentName},
	}
	if req.DurationSeconds > 0 {
		opts.HoldFor = time.Duration(req.DurationSeconds * float64(time.Second))
	}

	var err error
	if req.WindowID != 0 || req.Window {
		target := display.WindowTarget{Window: host.WindowID(req.WindowID)}
		if req.WindowID == 0 {
			target.Content = opts.Content
			opts.Content = host.ContentRef{}
		}
		err = s.ctrl.FlashWindow(target, opts)
	} else {
		err = s.ctrl.FlashFrame(display.FrameTarget{
			ID:   host.FrameID(req.FrameID),
			Name: req.FrameName,
		}, opts)
	}

	if err != nil {
		http.Error(w, err.Error(), flashStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "restored"})
}

func flashStatus(err error) int {
	switch {
	case errors.Is(err, display.ErrInvalidArgument), errors.Is(err, display.ErrInvalidContent):
		return http.StatusBadRequest
	case errors.Is(err, display.ErrNotLive):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleGetSurfaces(w http.ResponseWriter, r *http.Request) {
	frames, err := s.ctrl.ListFrames()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(frames)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.cfg.Get())
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, fmt.Sprintf("invalid config: %v", err), http.StatusBadRequest)
		return
	}

	if err := s.cfg.Update(&cfg); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.cfg.Get())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleEvents upgrades to a websocket and streams flash lifecycle events
// until the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithComponent("api").Error().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	for ev := range ch {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

func (s *Server) subscribe() chan display.Event {
	ch := make(chan display.Event, 16)
	s.mu.Lock()
	s.listeners = append(s.listeners, ch)
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan display.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, listener := range s.listeners {
		if listener == ch {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

func (s *Server) broadcast(ev display.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, listener := range s.listeners {
		select {
		case listener <- ev:
		default:
			// Drop events for slow consumers.
		}
	}
}
