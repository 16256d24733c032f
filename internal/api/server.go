// Package api serves the lock's HTTP API: status, the event journal, remote
// enroll/unlock requests and a chart of the last unlock attempt.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/banshee-data/gesturelock/internal/db"
	"github.com/banshee-data/gesturelock/internal/lock"
	"github.com/banshee-data/gesturelock/internal/monitoring"
	"github.com/banshee-data/gesturelock/internal/version"
)

var logf = monitoring.Component("api")

// StatusProvider returns the latest lock status.
type StatusProvider interface {
	Snapshot() lock.Status
}

type Server struct {
	status  StatusProvider
	journal *db.DB
	input   *RemoteInput
	trace   *TraceRecorder
}

// NewServer returns a Server. journal and trace may be nil, in which case
// their routes report 503.
func NewServer(status StatusProvider, journal *db.DB, input *RemoteInput, trace *TraceRecorder) *Server {
	return &Server{
		status:  status,
		journal: journal,
		input:   input,
		trace:   trace,
	}
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.showStatus)
	mux.HandleFunc("/api/events", s.listEvents)
	mux.HandleFunc("/api/stats", s.showStats)
	mux.HandleFunc("/api/version", s.showVersion)
	mux.HandleFunc("/api/trace", s.showTrace)
	mux.HandleFunc("/api/enroll", s.requestEnroll)
	mux.HandleFunc("/api/unlock", s.requestUnlock)
	mux.HandleFunc("/api/override", s.requestOverride)
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logf("failed to write response: %v", err)
	}
}

func (s *Server) showStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.status.Snapshot())
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.journal == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "Journal disabled")
		return
	}

	limit := 100 // default value
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 || parsed > 1000 {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	events, err := s.journal.RecentEvents(limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve events: %v", err))
		return
	}
	if events == nil {
		events = []db.EventRecord{}
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) showStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.journal == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "Journal disabled")
		return
	}
	stats, err := s.journal.AttemptStats()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve stats: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) showVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}

// showTrace renders the last unlock attempt as a chart, or as JSON when
// format=json is given.
func (s *Server) showTrace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.trace == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "Trace disabled")
		return
	}
	tr, ok := s.trace.Last()
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, "No unlock attempt recorded yet")
		return
	}
	if r.URL.Query().Get("format") == "json" {
		s.writeJSON(w, http.StatusOK, tr)
		return
	}

	var buf bytes.Buffer
	if err := RenderChart(&buf, tr); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) requestEnroll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.input.RequestEnroll()
	s.writeJSON(w, http.StatusAccepted, map[string]string{"requested": "enroll"})
}

func (s *Server) requestUnlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.input.RequestUnlock()
	s.writeJSON(w, http.StatusAccepted, map[string]string{"requested": "unlock"})
}

func (s *Server) requestOverride(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if err := s.input.RequestOverride(); err != nil {
		if errors.Is(err, ErrOverrideDisabled) {
			s.writeJSONError(w, http.StatusForbidden, err.Error())
			return
		}
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"requested": "override"})
}
