package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/facecost/internal/engine"
	"github.com/Simplici0/facecost/internal/factors"
	"github.com/Simplici0/facecost/internal/restaurant"
	"github.com/Simplici0/facecost/internal/results"
)

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "database": "disabled"}
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			status["status"], status["database"] = "degraded", "unreachable"
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req restaurant.Request
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.engine.Calculate(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req restaurant.Request
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Validate(req))
}

func (s *server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var scenarios []restaurant.Request
	if err := decodeBody(w, r, &scenarios); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(scenarios) == 0 {
		s.writeError(w, r, engine.DecodeError(errors.New("expected a non-empty array of scenarios")))
		return
	}
	writeJSON(w, http.StatusOK, s.comparer.Run(r.Context(), scenarios))
}

func (s *server) handleSessionItems(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeUnavailable(w, "result persistence is disabled")
		return
	}

	id := chi.URLParam(r, "id")
	session, err := s.sessions.GetSession(r.Context(), id)
	if errors.Is(err, results.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, &engine.Error{Kind: "not_found", Message: fmt.Sprintf("session %s not found", id)})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items, err := s.sessions.ListItems(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session": session,
		"items":   items,
	})
}

func (s *server) handleFactorsList(w http.ResponseWriter, r *http.Request) {
	if s.factors == nil {
		writeUnavailable(w, "factor store is not configured")
		return
	}

	var (
		rows []factors.CostFactor
		err  error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		rows, err = s.factors.ListByCategory(r.Context(), category)
	} else {
		rows, err = s.factors.List(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"factors": rows})
}

func (s *server) handleFactorUpsert(w http.ResponseWriter, r *http.Request) {
	if s.factors == nil {
		writeUnavailable(w, "factor store is not configured")
		return
	}

	var input struct {
		factors.CostFactor
		Active *bool `json:"active"`
	}
	if err := decodeBody(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	f := input.CostFactor
	f.Active = input.Active == nil || *input.Active
	if f.Multiplier == 0 {
		f.Multiplier = 1
	}
	if err := f.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, &engine.Error{Kind: engine.KindValidation, Message: err.Error()})
		return
	}

	inserted, err := s.factors.Upsert(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("factor.upserted", "factor", f.Key().String(), "inserted", inserted, "value", f.Value())

	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"inserted": inserted, "factor": f})
}

func (s *server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if s.cache != nil {
		s.cache.ClearCache()
	}
	s.logger.Info("factor.cache_cleared")
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return engine.DecodeError(errors.New("request body is empty"))
		}
		return engine.DecodeError(err)
	}
	if dec.More() {
		return engine.DecodeError(errors.New("request body must contain a single JSON document"))
	}
	return nil
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := engine.Classify(err)

	status := http.StatusInternalServerError
	switch e.Kind {
	case engine.KindValidation:
		status = http.StatusUnprocessableEntity
	case engine.KindDecode:
		status = http.StatusBadRequest
	case engine.KindFileNotFound:
		status = http.StatusNotFound
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("http.error", "request_id", middleware.GetReqID(r.Context()), "kind", e.Kind, "error", err)
	}

	writeJSON(w, status, e)
}

func writeUnavailable(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusServiceUnavailable, &engine.Error{Kind: "unavailable", Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
