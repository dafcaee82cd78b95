package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"i4.energy/across/tetracov/report"
	"i4.energy/across/tetracov/terminal"
)

// Displayer shows a notification on the terminal screen.
type Displayer interface {
	SetDisplayMessage(ctx context.Context, title, message string, timeout, icon int) error
}

// ReportSource provides the most recent coverage report.
type ReportSource interface {
	Latest() (report.Report, bool)
}

// Server handles incoming HTTP requests for the latest coverage report and
// for messages to the terminal display
type Server struct {
	Logger   *slog.Logger
	Terminal Displayer
	Reports  ReportSource

	once sync.Once
	mux  *http.ServeMux
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.once.Do(func() {
		s.mux = http.NewServeMux()
		s.mux.HandleFunc("GET /report", s.handleReport)
		s.mux.HandleFunc("POST /display", s.handleDisplay)
	})
	s.mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

// handleReport returns the latest stored report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	latest, ok := s.Reports.Latest()
	if !ok {
		s.sendError(w, "no report collected yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(latest)
}

// handleDisplay shows the posted message on the terminal
func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	type DisplayRequest struct {
		Title   string `json:"title"`
		Message string `json:"message"`
		Timeout int    `json:"timeout"`
		Icon    int    `json:"icon"`
	}

	var req DisplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Message == "" {
		s.sendError(w, "'message' field is required", http.StatusBadRequest)
		return
	}

	err := s.Terminal.SetDisplayMessage(r.Context(), req.Title, req.Message, req.Timeout, req.Icon)
	if err != nil {
		s.Logger.Error("Failed to show display message", "error", err)
		s.sendError(w, err.Error(), statusFor(err))
		return
	}

	s.Logger.Info("Display message shown", "title", req.Title, "message_length", len(req.Message))
	w.WriteHeader(http.StatusOK)
}

// statusFor maps a terminal error to an HTTP status code.
func statusFor(err error) int {
	var (
		perr *terminal.ProtocolError
		terr *terminal.TransportError
	)
	switch {
	case errors.Is(err, terminal.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, terminal.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &perr), errors.As(err, &terr):
		return http.StatusBadGateway
	case errors.Is(err, terminal.ErrAlreadyClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
