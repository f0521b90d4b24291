package main

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/thesyncim/obsctl"
	xlog "github.com/thesyncim/obsctl/internal/log"
)

const maxBodyBytes = 64 << 10

type api struct {
	ctrl   *obsctl.Controller
	logger zerolog.Logger
}

// newRouter exposes ctrl over HTTP. Every control route answers with a JSON
// obsctl.Result.
func newRouter(ctrl *obsctl.Controller, logger zerolog.Logger) http.Handler {
	a := &api{ctrl: ctrl, logger: logger}

	r := chi.NewRouter()
	r.Use(a.requestLogger)

	r.Post("/init", a.handleInit)
	r.Post("/configure", a.handleConfigure)
	r.Post("/start", a.handleStart)
	r.Post("/stop", a.handleStop)
	r.Post("/cleanup", a.handleCleanup)
	r.Get("/status", a.handleStatus)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// requestLogger attaches a request-scoped logger to the context and logs
// each request once it completes.
func (a *api) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", rid)

		l := a.logger.With().Str("request_id", rid).Logger()
		ctx := xlog.ContextWithRequestID(l.WithContext(r.Context()), rid)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		l.Debug().
			Str("event", "request.handled").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

func (a *api) handleInit(w http.ResponseWriter, r *http.Request) {
	writeResult(w, a.ctrl.Init(r.Context()))
}

type configureRequest struct {
	Service string `json:"service"`
	Server  string `json:"server"`
	Key     string `json:"key"`
}

func (a *api) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var req configureRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, obsctl.Result{
			Kind:   obsctl.ResultConfigureFailed,
			Status: obsctl.ResultConfigureFailed.String(),
			Detail: "invalid request body: " + err.Error(),
		})
		return
	}
	writeResult(w, a.ctrl.Configure(r.Context(), obsctl.ServiceCredentials{
		Service: req.Service,
		Server:  req.Server,
		Key:     req.Key,
	}))
}

func (a *api) handleStart(w http.ResponseWriter, r *http.Request) {
	writeResult(w, a.ctrl.Start(r.Context()))
}

func (a *api) handleStop(w http.ResponseWriter, r *http.Request) {
	writeResult(w, a.ctrl.Stop(r.Context()))
}

func (a *api) handleCleanup(w http.ResponseWriter, r *http.Request) {
	writeResult(w, a.ctrl.Cleanup(r.Context()))
}

type statusResponse struct {
	Initialized bool             `json:"initialized"`
	Session     *obsctl.Snapshot `json:"session,omitempty"`
	Loaded      bool             `json:"module_loaded"`
}

func (a *api) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Loaded: obsctl.ModuleOutputs.Loaded()}
	if snap, ok := a.ctrl.Snapshot(); ok {
		resp.Initialized = true
		resp.Session = &snap
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusCode maps a controller outcome to an HTTP status.
func statusCode(r obsctl.Result) int {
	switch r.Kind {
	case obsctl.ResultInitialized, obsctl.ResultConfigured, obsctl.ResultStarted,
		obsctl.ResultStopped, obsctl.ResultCleared:
		return http.StatusOK
	case obsctl.ResultAlreadyInitialized, obsctl.ResultNotInitialized, obsctl.ResultNotConfigured:
		return http.StatusConflict
	case obsctl.ResultConfigureFailed:
		return http.StatusUnprocessableEntity
	case obsctl.ResultStartFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeResult(w http.ResponseWriter, r obsctl.Result) {
	writeJSON(w, statusCode(r), r)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
