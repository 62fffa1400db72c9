package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// routerHandlers holds the handler methods bound to a Registry. This is
// the combat-domain equivalent of the teacher's handlers bound to
// game.Engine/StreamerInterface.
type routerHandlers struct {
	registry *Registry
}

func (h *routerHandlers) handleStartCombat(w http.ResponseWriter, r *http.Request) {
	var req StartCombatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.RosterA) == 0 || len(req.RosterB) == 0 {
		writeError(w, "both rosters must be non-empty", http.StatusBadRequest)
		return
	}

	handle, err := h.registry.Start(req)
	if err != nil {
		switch err {
		case ErrTooManyCombats:
			writeError(w, err.Error(), http.StatusServiceUnavailable)
		default:
			writeError(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	writeJSON(w, map[string]interface{}{
		"id":     handle.ID,
		"status": "running",
	})
}

func (h *routerHandlers) handleGetCombat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	handle, err := h.registry.Get(id)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	done, result := handle.Status()
	if !done {
		writeJSON(w, map[string]interface{}{"id": id, "status": "running"})
		return
	}

	writeJSON(w, map[string]interface{}{
		"id":     id,
		"status": "finished",
		"result": result,
	})
}

func (h *routerHandlers) handleCombatEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	handle, err := h.registry.Get(id)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	var since uint64
	if s := r.URL.Query().Get("since"); s != "" {
		parsed, perr := strconv.ParseUint(s, 10, 64)
		if perr != nil {
			writeError(w, "invalid since parameter", http.StatusBadRequest)
			return
		}
		since = parsed
	}

	events := handle.EventsSince(since)
	writeJSON(w, map[string]interface{}{
		"id":     id,
		"events": events,
	})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
