package robotio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	control "spike-control-core/closed_loop/robot_control"
	"spike-control-core/utils"
)

// TelemetryServer publishes the latest robot telemetry over HTTP. Nothing
// in the control loop waits on it.
type TelemetryServer struct {
	log      *utils.Logger
	period   time.Duration
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	latest  control.Telemetry
	updated time.Time
	have    bool
}

// NewTelemetryServer pushes to stream clients every period.
func NewTelemetryServer(log *utils.Logger, period time.Duration) *TelemetryServer {
	if period <= 0 {
		period = 100 * time.Millisecond
	}
	return &TelemetryServer{
		log:    log,
		period: period,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (s *TelemetryServer) Publish(tel control.Telemetry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = tel
	s.updated = time.Now()
	s.have = true
}

func (s *TelemetryServer) snapshot() (control.Telemetry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.have
}

func (s *TelemetryServer) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/telemetry", s.handleTelemetry).Methods(http.MethodGet)
	router.HandleFunc("/telemetry/stream", s.handleStream)
	return router
}

func (s *TelemetryServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	have, updated := s.have, s.updated
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	body := map[string]any{"status": "ok"}
	if !have {
		body["status"] = "waiting"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		body["age_ms"] = time.Since(updated).Milliseconds()
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (s *TelemetryServer) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	tel, ok := s.snapshot()
	if !ok {
		http.Error(w, "no telemetry yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tel); err != nil {
		s.log.Error("telemetry encode: %v", err)
	}
}

func (s *TelemetryServer) handleStream(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("telemetry stream upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	defer ws.Close()
	s.log.Info("telemetry stream client %s connected", r.RemoteAddr)

	// the client never sends; reading only notices when it goes away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()
	var lastTick uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-gone:
			s.log.Info("telemetry stream client %s left", r.RemoteAddr)
			return
		case <-ticker.C:
			tel, ok := s.snapshot()
			if !ok || tel.Tick == lastTick {
				continue
			}
			lastTick = tel.Tick
			_ = ws.SetWriteDeadline(time.Now().Add(time.Second))
			if err := ws.WriteJSON(tel); err != nil {
				s.log.Warn("telemetry stream write to %s: %v", r.RemoteAddr, err)
				return
			}
		}
	}
}

// ListenAndServe serves until ctx is cancelled.
func (s *TelemetryServer) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("telemetry listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
