package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/tetracov/report"
	"i4.energy/across/tetracov/terminal"
)

type displayCall struct {
	title, message string
	timeout, icon  int
}

type fakeDisplay struct {
	calls []displayCall
	err   error
}

func (f *fakeDisplay) SetDisplayMessage(_ context.Context, title, message string, timeout, icon int) error {
	f.calls = append(f.calls, displayCall{title, message, timeout, icon})
	return f.err
}

type fakeReports struct {
	latest *report.Report
}

func (f fakeReports) Latest() (report.Report, bool) {
	if f.latest == nil {
		return report.Report{}, false
	}
	return *f.latest, true
}

func newServer(display *fakeDisplay, reports fakeReports) *Server {
	return &Server{
		Logger:   slog.New(slog.DiscardHandler),
		Terminal: display,
		Reports:  reports,
	}
}

func TestServerReport(t *testing.T) {
	t.Run("no report yet", func(t *testing.T) {
		s := newServer(&fakeDisplay{}, fakeReports{})
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("latest report", func(t *testing.T) {
		r := report.Report{Issi: "06101625", Signal: report.Signal{RSSI: -85}}
		s := newServer(&fakeDisplay{}, fakeReports{latest: &r})
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var got report.Report
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, r, got)
	})

	t.Run("wrong method", func(t *testing.T) {
		s := newServer(&fakeDisplay{}, fakeReports{})
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/report", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestServerDisplay(t *testing.T) {
	display := &fakeDisplay{}
	s := newServer(display, fakeReports{})

	body := `{"title":"Dekning","message":"Hello","timeout":5,"icon":4}`
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/display", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []displayCall{{"Dekning", "Hello", 5, 4}}, display.calls)
}

func TestServerDisplayErrors(t *testing.T) {
	tt := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest},
		{"missing message", `{"title":"x"}`, nil, http.StatusBadRequest},
		{"invalid text", `{"message":"x"}`, fmt.Errorf("%w: quote", terminal.ErrInvalidArgument), http.StatusBadRequest},
		{"timeout", `{"message":"x"}`, &terminal.TimeoutError{Verb: "AT+MCDNTN", Cause: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{"protocol error", `{"message":"x"}`, &terminal.ProtocolError{Code: 4}, http.StatusBadGateway},
		{"transport error", `{"message":"x"}`, &terminal.TransportError{Err: terminal.ErrChannelClosed}, http.StatusBadGateway},
		{"closed", `{"message":"x"}`, terminal.ErrAlreadyClosed, http.StatusServiceUnavailable},
		{"other", `{"message":"x"}`, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			s := newServer(&fakeDisplay{err: tc.err}, fakeReports{})
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/display", strings.NewReader(tc.body)))
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), "message")
		})
	}
}
