package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Stats is the operational snapshot served to health checks and the admin
// console feed.
type Stats struct {
	Status        string    `json:"status"`
	UptimeSeconds int64     `json:"uptimeSeconds"`
	LiveSessions  int       `json:"liveSessions"`
	CachedReports int       `json:"cachedReports"`
	Timestamp     time.Time `json:"timestamp"`
}

// StatsSource produces the current snapshot.
type StatsSource interface {
	Snapshot() Stats
}

// Handler serves the bot's HTTP surface: health checks and the live admin
// stats feed.
type Handler struct {
	source   StatsSource
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewHandler(source StatsSource, interval time.Duration) *Handler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Handler{
		source:   source,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Router builds the mux router with all routes attached.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.serveHealth).Methods(http.MethodGet)
	r.HandleFunc("/admin/ws", h.serveStatsWS)
	return r
}

func (h *Handler) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.source.Snapshot()); err != nil {
		log.Printf("health encode failed: %v", err)
	}
}

// serveStatsWS streams periodic stat snapshots to the admin console. A writer
// goroutine owns the connection; the read loop only detects disconnects.
func (h *Handler) serveStatsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	if err := conn.WriteJSON(h.source.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteJSON(h.source.Snapshot()); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
