// Package httpapi is the UI-collaborator command surface: alarm CRUD
// and toggle routed through the store and scheduler, plus dismiss and
// snooze for the active delivery.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/alarmcore/internal/delivery"
	"github.com/hamed0406/alarmcore/internal/domain"
	"github.com/hamed0406/alarmcore/internal/httpapi/middleware"
	"github.com/hamed0406/alarmcore/internal/repo"
	"github.com/hamed0406/alarmcore/internal/scheduler"
)

type Server struct {
	Logger   *zap.Logger
	Store    repo.AlarmStore
	Sched    *scheduler.Scheduler
	Delivery *delivery.Controller
	Keys     middleware.Keys

	// RatePerMin caps requests per client IP on /api. Zero disables the
	// limiter (tests, trusted loopback setups).
	RatePerMin int
}

func NewServer(l *zap.Logger, store repo.AlarmStore, sched *scheduler.Scheduler, ctrl *delivery.Controller, keys middleware.Keys) *Server {
	return &Server{Logger: l, Store: store, Sched: sched, Delivery: ctrl, Keys: keys}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(s.RatePerMin, 60))
		r.Use(middleware.RequireAny(s.Keys))

		r.Get("/alarms", s.handleList)
		r.Get("/alarms/{id}", s.handleGet)
		r.Get("/active", s.handleActive)

		// Mutations need the admin key when one is configured.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(s.Keys))
			r.Post("/alarms", s.handleCreate)
			r.Put("/alarms/{id}", s.handleEdit)
			r.Delete("/alarms/{id}", s.handleDelete)
			r.Post("/alarms/{id}/toggle", s.handleToggle)
			r.Post("/active/dismiss", s.handleDismiss)
			r.Post("/active/snooze", s.handleSnooze)
		})
	})

	return r
}

type alarmPayload struct {
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	Label    string `json:"label"`
	SoundRef string `json:"sound_ref"`
	Enabled  *bool  `json:"enabled"`
}

type armedResponse struct {
	Alarm *domain.Alarm `json:"alarm"`
	Armed bool          `json:"armed"`
	At    string        `json:"at,omitempty"`
	Exact bool          `json:"exact,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var p alarmPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	a := domain.NewAlarm(p.Hour, p.Minute, p.Label)
	a.SoundRef = p.SoundRef
	if p.Enabled != nil {
		a.Enabled = *p.Enabled
	}
	if err := a.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.Store.Insert(r.Context(), a); err != nil {
		s.Logger.Error("alarm_insert_failed", zap.Error(err))
		http.Error(w, "could not store alarm", http.StatusInternalServerError)
		return
	}

	res, err := s.Sched.Arm(a)
	if err != nil {
		// The record is durable; arming failed. Surface the degraded
		// state instead of dropping the row.
		s.Logger.Warn("alarm_arm_failed", zap.Int64("alarm_id", a.ID), zap.Error(err))
		writeJSON(w, http.StatusCreated, armedResponse{Alarm: a})
		return
	}

	s.Logger.Info("alarm_created",
		zap.Int64("alarm_id", a.ID),
		zap.String("time", a.FormattedTime()),
		zap.Bool("enabled", a.Enabled),
	)
	resp := armedResponse{Alarm: a, Armed: a.Enabled, Exact: res.Exact}
	if a.Enabled {
		resp.At = res.At.Format("2006-01-02T15:04:05Z07:00")
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p alarmPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	a := domain.NewAlarm(p.Hour, p.Minute, p.Label)
	a.ID = id
	a.SoundRef = p.SoundRef
	if p.Enabled != nil {
		a.Enabled = *p.Enabled
	}
	if err := a.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.Store.Update(r.Context(), a); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		s.Logger.Error("alarm_update_failed", zap.Int64("alarm_id", id), zap.Error(err))
		http.Error(w, "could not update alarm", http.StatusInternalServerError)
		return
	}

	if _, err := s.Sched.Update(a); err != nil {
		s.Logger.Warn("alarm_rearm_failed", zap.Int64("alarm_id", id), zap.Error(err))
	}

	s.Logger.Info("alarm_updated", zap.Int64("alarm_id", id), zap.String("time", a.FormattedTime()))
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.Store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		s.Logger.Error("alarm_delete_failed", zap.Int64("alarm_id", id), zap.Error(err))
		http.Error(w, "could not delete alarm", http.StatusInternalServerError)
		return
	}
	s.Sched.Disarm(id)

	s.Logger.Info("alarm_deleted", zap.Int64("alarm_id", id))
	w.WriteHeader(http.StatusNoContent)
}

type togglePayload struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p togglePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	a, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.Logger.Error("alarm_get_failed", zap.Int64("alarm_id", id), zap.Error(err))
		http.Error(w, "could not load alarm", http.StatusInternalServerError)
		return
	}
	if a == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	a.Enabled = p.Enabled
	if err := s.Store.Update(r.Context(), a); err != nil {
		s.Logger.Error("alarm_toggle_failed", zap.Int64("alarm_id", id), zap.Error(err))
		http.Error(w, "could not update alarm", http.StatusInternalServerError)
		return
	}
	if _, err := s.Sched.Update(a); err != nil {
		s.Logger.Warn("alarm_rearm_failed", zap.Int64("alarm_id", id), zap.Error(err))
	}

	s.Logger.Info("alarm_toggled", zap.Int64("alarm_id", id), zap.Bool("enabled", p.Enabled))
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := s.Store.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "could not load alarm", http.StatusInternalServerError)
		return
	}
	if a == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	alarms, err := s.Store.ListAll(r.Context())
	if err != nil {
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}
	if alarms == nil {
		alarms = []domain.Alarm{}
	}
	writeJSON(w, http.StatusOK, alarms)
}

type activeResponse struct {
	SessionID string `json:"session_id"`
	AlarmID   int64  `json:"alarm_id"`
	Label     string `json:"label,omitempty"`
	StartedAt string `json:"started_at"`
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	sess := s.Delivery.Active()
	if sess == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, activeResponse{
		SessionID: sess.ID,
		AlarmID:   sess.AlarmID,
		Label:     sess.Label,
		StartedAt: sess.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	if err := s.Delivery.Dismiss(r.Context()); err != nil {
		if errors.Is(err, delivery.ErrNoActiveSession) {
			http.Error(w, "no active alarm", http.StatusConflict)
			return
		}
		s.Logger.Error("dismiss_failed", zap.Error(err))
		http.Error(w, "dismiss failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSnooze(w http.ResponseWriter, r *http.Request) {
	if err := s.Delivery.Snooze(r.Context()); err != nil {
		if errors.Is(err, delivery.ErrNoActiveSession) {
			http.Error(w, "no active alarm", http.StatusConflict)
			return
		}
		s.Logger.Error("snooze_failed", zap.Error(err))
		http.Error(w, "snooze failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "bad id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
