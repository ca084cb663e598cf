package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/abhisek/interviewiz/internal/feedback"
	"github.com/abhisek/interviewiz/internal/profile"
	"github.com/abhisek/interviewiz/internal/session"
	"github.com/abhisek/interviewiz/internal/store"
)

const maxBodyBytes = 1 << 20

// CreateSessionRequest is the body of POST /api/sessions.
type CreateSessionRequest struct {
	ID     string `json:"id,omitempty" validate:"omitempty,max=128"`
	Resume string `json:"resume,omitempty" validate:"max=200000"`
}

// MessageRequest is the body of POST /api/sessions/{id}/messages.
type MessageRequest struct {
	Text string `json:"text" validate:"max=20000"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeBody reads a JSON body into dst and validates it. An empty body
// leaves dst at its zero value.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errors.New("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s must satisfy %s", fe.Field(), strings.TrimSuffix(fe.Tag()+"="+fe.Param(), "="))
		}
		return err
	}
	return nil
}

// createSession handles POST /api/sessions.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var p *profile.Profile
	if strings.TrimSpace(req.Resume) != "" {
		if s.opts.Extractor != nil {
			var err error
			if p, err = s.opts.Extractor.Extract(r.Context(), req.Resume); err != nil {
				s.fail(w, r, err)
				return
			}
		} else {
			p = profile.Extract(req.Resume)
		}
	}

	snap, err := s.engine.Create(r.Context(), session.CreateOptions{ID: req.ID, Profile: p})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// listSessions handles GET /api/sessions.
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if list == nil {
		list = []store.SessionSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": list})
}

// getSession handles GET /api/sessions/{id}.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// resetSession handles DELETE /api/sessions/{id}.
func (s *Server) resetSession(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Reset(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// postMessage handles POST /api/sessions/{id}/messages. Unknown ids start
// a new session.
func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.engine.HandleMessage(r.Context(), mux.Vars(r)["id"], req.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// getReport handles GET /api/sessions/{id}/report. ?format=text returns
// the rendered report.
func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.engine.Report(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, feedback.Render(*rep))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// fail maps err to a status and writes it. Internal errors are logged and
// hidden from the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	writeError(w, status, msg)
}

// StatusFor returns the HTTP status and client message for an engine error.
func StatusFor(err error) (int, string) {
	var collab *session.CollaboratorError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, session.ErrSessionCompleted), errors.Is(err, session.ErrSessionExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, store.ErrInvalidID):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &collab):
		return http.StatusBadGateway, session.TryAgainMessage
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
