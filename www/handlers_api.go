package www

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kartcore/auth"
	"kartcore/dispatch"
	"kartcore/engine"
	"kartcore/grid"
	"kartcore/lifecycle"
	"kartcore/queue"
	"kartcore/store"
)

func (h *Handlers) apiHealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	if c := h.engine.MsgClient(); c != nil {
		status["messaging"] = c.IsConnected()
	}
	if err := h.engine.DB().PingContext(r.Context()); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
	}
	h.jsonOK(w, status)
}

func (h *Handlers) apiGrid(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.Grid().Cells())
}

func (h *Handlers) apiListCases(w http.ResponseWriter, r *http.Request) {
	cases, err := h.engine.DB().ListCases(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, cases)
}

func (h *Handlers) apiGetCase(w http.ResponseWriter, r *http.Request) {
	c, err := h.engine.DB().GetCase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.jsonErr(w, err)
		return
	}
	h.jsonOK(w, c)
}

type queueView struct {
	CaseID     string             `json:"case_id"`
	QueueCount int                `json:"queue_count"`
	Version    int64              `json:"version"`
	Entries    []store.QueueEntry `json:"entries"`
}

func (h *Handlers) apiCaseQueue(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "id")
	if _, err := h.engine.DB().GetCase(r.Context(), caseID); err != nil {
		h.jsonErr(w, err)
		return
	}
	q, err := h.engine.Queue().Snapshot(r.Context(), caseID)
	if err != nil {
		h.jsonErr(w, err)
		return
	}
	h.jsonOK(w, queueView{
		CaseID:     q.CaseID,
		QueueCount: q.QueueCount,
		Version:    q.Version,
		Entries:    q.Ordered(),
	})
}

func (h *Handlers) apiListKarts(w http.ResponseWriter, r *http.Request) {
	karts, err := h.engine.KartState().ListKarts(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, karts)
}

func (h *Handlers) apiKartQueue(w http.ResponseWriter, r *http.Request) {
	kartID := chi.URLParam(r, "id")
	if _, err := h.engine.DB().GetKart(r.Context(), kartID); err != nil {
		h.jsonErr(w, err)
		return
	}
	jobs, err := h.engine.DB().ListKartJobs(r.Context(), kartID)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, jobs)
}

func (h *Handlers) apiListOrders(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		state = lifecycle.StateQueued
	}
	orders, err := h.engine.DB().ListOrdersByState(r.Context(), state)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, orders)
}

func (h *Handlers) apiGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.engine.DB().GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.jsonErr(w, err)
		return
	}
	h.jsonOK(w, o)
}

func queryLimit(r *http.Request, def int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, engine.ErrWrongParty):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, queue.ErrQueueContention):
		return http.StatusServiceUnavailable
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, dispatch.ErrNoKartAvailable):
		return http.StatusConflict
	case errors.Is(err, grid.ErrUnknownCell):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handlers) jsonErr(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	h.jsonError(w, err.Error(), code)
}

func (h *Handlers) jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
