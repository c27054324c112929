// Package server exposes the conversation driver boundary over HTTP: create
// a session, inspect the active agent's tool catalogue, and dispatch tool
// calls against it.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	contractx "pieline/agent/contract"
	enginex "pieline/agent/engine"
)

type Config struct {
	Addr string `envconfig:"ADDR" split_words:"true" default:":8080"`
}

type Server struct {
	engine *enginex.Engine
}

func New(engine *enginex.Engine) *Server {
	return &Server{engine: engine}
}

// Handler builds the routed handler with CORS and request logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/healthz", s.health).Methods(http.MethodGet)
	r.HandleFunc("/api/agents", s.listAgents).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions", s.createSession).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}", s.getSession).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/{id}/tools", s.listTools).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/{id}/calls", s.dispatchCall).Methods(http.MethodPost)

	return cors.Default().Handler(logRequests(r))
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type agentSummary struct {
	Name        contractx.AgentName   `json:"name"`
	Description string                `json:"description"`
	Tools       []contractx.ToolSpec  `json:"tools"`
	Downstream  []contractx.AgentName `json:"downstream"`
}

func (s *Server) listAgents(w http.ResponseWriter, r *http.Request) {
	agents := s.engine.Agents().Agents()
	out := make([]agentSummary, 0, len(agents))
	for _, agent := range agents {
		specs, err := s.engine.Agents().Specs(agent.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		out = append(out, agentSummary{
			Name:        agent.Name,
			Description: agent.Description,
			Tools:       specs,
			Downstream:  agent.Downstream,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"agents": out})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.StartSession(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id":   sess.ID,
		"active_agent": sess.ActiveAgent,
	})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.Session(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":   sess.ID,
		"active_agent": sess.ActiveAgent,
		"order":        sess.Order.View(),
	})
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	specs, err := s.engine.ActiveTools(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": specs})
}

func (s *Server) dispatchCall(w http.ResponseWriter, r *http.Request) {
	var call contractx.ToolCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := s.engine.Dispatch(r.Context(), mux.Vars(r)["id"], call)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, contractx.ErrUnknownSession):
		status = http.StatusNotFound
	case errors.Is(err, contractx.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, contractx.ErrUnknownTool),
		errors.Is(err, contractx.ErrUnknownAgent),
		errors.Is(err, contractx.ErrIllegalTransfer):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}
