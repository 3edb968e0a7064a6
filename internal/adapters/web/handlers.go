package web

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/lcalzada-xor/wdeck/internal/adapters/display"
	"github.com/lcalzada-xor/wdeck/internal/core/domain"
)

const defaultJournalLimit = 100

type snapshotResponse struct {
	Screen   [display.Rows]string `json:"screen"`
	Snapshot any                  `json:"snapshot"`
}

// handleSnapshot returns the controller state and what the LCD shows.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.Source.Snapshot()
	writeJSON(w, snapshotResponse{
		Screen:   display.Compose(snap),
		Snapshot: snap,
	})
}

// handleJournal returns the newest journal entries.
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	limit := defaultJournalLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.Journal.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to fetch journal: %v", err)
		http.Error(w, "Failed to fetch journal", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"entries": entries,
	})
}

type navRequest struct {
	Event string `json:"event"`
}

// handleNav injects a navigation event as if the joystick had been moved.
func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	if s.Input == nil {
		http.Error(w, "Remote input disabled", http.StatusNotFound)
		return
	}

	var req navRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	ev, ok := domain.ParseNavEvent(req.Event)
	if !ok {
		http.Error(w, "event must be one of up, down, left, right, select", http.StatusBadRequest)
		return
	}

	if !s.Input.Push(domain.SampleForEvent(ev)) {
		http.Error(w, "Input queue full", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]string{"event": ev.String()}); err != nil {
		log.Printf("JSON encode error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("JSON encode error: %v", err)
	}
}
