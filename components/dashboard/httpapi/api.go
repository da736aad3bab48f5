package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/commands"
)

// Handlers exposes the dashboard over net/http.
type Handlers struct {
	Controller *dashboard.Controller
	API        Executor
}

// Routes mounts the handlers on a new mux under base ("" for the root).
func (h *Handlers) Routes(base string) *http.ServeMux {
	base = strings.TrimRight(base, "/")
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+base+"/sales", h.HandlePage)
	mux.HandleFunc("GET "+base+"/sales/_snapshot", h.HandleSnapshot)
	mux.HandleFunc("GET "+base+"/sales/_options", h.HandleOptions)
	mux.HandleFunc("POST "+base+"/sales/session/restart", h.HandleRestart)
	return mux
}

// HandlePage renders the HTML dashboard.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	sel, err := dashboard.ParseSelection(requestLookup(r))
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := h.Controller.RenderHTML(r.Context(), sessionID(r), sel, &buf); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// HandleSnapshot returns KPIs and chart specs as JSON.
func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	sel, err := dashboard.ParseSelection(requestLookup(r))
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.Controller.Snapshot(r.Context(), sessionID(r), sel)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set(dashboard.SessionHeader, snap.SessionID)
	writeJSON(w, http.StatusOK, snap)
}

// HandleOptions returns picker values as JSON.
func (h *Handlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.Controller.Options(r.Context(), sessionID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set(dashboard.SessionHeader, options.SessionID)
	writeJSON(w, http.StatusOK, options)
}

// HandleRestart drops a session's cached table.
func (h *Handlers) HandleRestart(w http.ResponseWriter, r *http.Request) {
	if h.API == nil {
		writeError(w, errors.New("httpapi: executor not configured"))
		return
	}
	input := commands.RestartSessionInput{SessionID: sessionID(r)}
	if r.ContentLength != 0 {
		var payload struct {
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorBody{Error: err.Error(), Status: http.StatusBadRequest})
			return
		}
		if payload.SessionID != "" {
			input.SessionID = payload.SessionID
		}
	}
	result := &commands.RestartSessionResult{}
	input.Result = result
	if err := h.API.Restart(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set(dashboard.SessionHeader, result.SessionID)
	writeJSON(w, http.StatusOK, result)
}

func sessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(dashboard.SessionHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get(dashboard.QuerySession))
}

func requestLookup(r *http.Request) dashboard.QueryLookup {
	query := r.URL.Query()
	return func(key string) (string, bool) {
		values, ok := query[key]
		if !ok {
			return "", false
		}
		return strings.Join(values, ","), true
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	writeJSON(w, status, ErrorBody{Error: err.Error(), Status: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
