package www

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kartcore/queue"
	"kartcore/store"
)

// orderResult is the reply shape mobile clients already parse for order
// placement.
type orderResult struct {
	Type    string             `json:"type"`
	Message string             `json:"message"`
	Orders  []*queue.Admission `json:"orders,omitempty"`
}

func (h *Handlers) apiPlaceOrder(w http.ResponseWriter, r *http.Request) {
	admissions, err := h.engine.PlaceOrder(r.Context(), userID(r))
	if err != nil {
		log.Printf("www: place order for %s: %v", userID(r), err)
		code := statusFor(err)
		if errors.Is(err, queue.ErrQueueContention) {
			w.Header().Set("Retry-After", "1")
		} else if code == http.StatusInternalServerError {
			code = http.StatusBadRequest
		}
		h.writeResult(w, code, orderResult{Type: "error", Message: err.Error(), Orders: admissions})
		return
	}
	h.writeResult(w, http.StatusOK, orderResult{Type: "success", Message: "Added order to queue", Orders: admissions})
}

func (h *Handlers) writeResult(w http.ResponseWriter, code int, res orderResult) {
	if code != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
	}
	h.jsonOK(w, res)
}

func (h *Handlers) apiScanOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ConfirmScan(r.Context(), chi.URLParam(r, "id"), userID(r)); err != nil {
		h.jsonErr(w, err)
		return
	}
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.engine.DB().ListOrdersByUser(r.Context(), userID(r))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, orders)
}

func (h *Handlers) apiMyHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.DB().ListHistory(r.Context(), userID(r), queryLimit(r, 50))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, entries)
}

func (h *Handlers) apiMyCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.engine.DB().ListCart(r.Context(), userID(r))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, items)
}

func (h *Handlers) apiAddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CaseID string `json:"case_id"`
	}
	if err := decodeJSON(r, &req); err != nil || req.CaseID == "" {
		h.jsonError(w, "case_id is required", http.StatusBadRequest)
		return
	}
	if err := h.engine.AddToCart(r.Context(), userID(r), req.CaseID); err != nil {
		h.jsonErr(w, err)
		return
	}
	h.apiMyCart(w, r)
}

func (h *Handlers) apiRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DB().RemoveCartItem(r.Context(), userID(r), chi.URLParam(r, "caseID")); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.apiMyCart(w, r)
}

// --- Admin ---

func (h *Handlers) apiCreateCase(w http.ResponseWriter, r *http.Request) {
	var c store.Case
	if err := decodeJSON(r, &c); err != nil || c.ID == "" {
		h.jsonError(w, "id is required", http.StatusBadRequest)
		return
	}
	if c.LastLocation != "" && !h.engine.Grid().Contains(c.LastLocation) {
		h.jsonError(w, "unknown cell "+c.LastLocation, http.StatusBadRequest)
		return
	}
	if err := h.engine.DB().CreateCase(r.Context(), &c); err != nil {
		h.jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	h.apiGetCaseByID(w, r, c.ID)
}

func (h *Handlers) apiGetCaseByID(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.engine.DB().GetCase(r.Context(), id)
	if err != nil {
		h.jsonErr(w, err)
		return
	}
	h.jsonOK(w, c)
}

func (h *Handlers) apiReleaseCase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Location string `json:"location"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.jsonError(w, "invalid body", http.StatusBadRequest)
			return
		}
	}
	caseID := chi.URLParam(r, "id")
	if err := h.engine.ReleaseCase(r.Context(), caseID, req.Location); err != nil {
		h.jsonErr(w, err)
		return
	}
	h.apiGetCaseByID(w, r, caseID)
}

func (h *Handlers) apiRegisterKart(w http.ResponseWriter, r *http.Request) {
	var k store.Kart
	if err := decodeJSON(r, &k); err != nil || k.ID == "" {
		h.jsonError(w, "id is required", http.StatusBadRequest)
		return
	}
	if err := h.engine.RegisterKart(r.Context(), &k); err != nil {
		h.jsonErr(w, err)
		return
	}
	h.jsonOK(w, k)
}

func (h *Handlers) apiMoveKart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Location string `json:"location"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.engine.MoveKart(r.Context(), chi.URLParam(r, "id"), req.Location); err != nil {
		h.jsonErr(w, err)
		return
	}
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID             string `json:"id"`
		DisplayName    string `json:"display_name"`
		DeviceToken    string `json:"device_token"`
		PickupLocation string `json:"pickup_location"`
	}
	if err := decodeJSON(r, &req); err != nil || req.ID == "" {
		h.jsonError(w, "id is required", http.StatusBadRequest)
		return
	}
	if req.PickupLocation != "" && !h.engine.Grid().Contains(req.PickupLocation) {
		h.jsonError(w, "unknown cell "+req.PickupLocation, http.StatusBadRequest)
		return
	}
	u := &store.User{
		ID:             req.ID,
		DisplayName:    req.DisplayName,
		DeviceToken:    req.DeviceToken,
		PickupLocation: req.PickupLocation,
	}
	if err := h.engine.DB().CreateUser(r.Context(), u); err != nil {
		h.jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	h.jsonOK(w, u)
}

func (h *Handlers) apiIssueToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.tokens.Issue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.jsonErr(w, err)
		return
	}
	h.jsonOK(w, map[string]string{"token": token})
}

func (h *Handlers) apiKartReceived(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.MarkKartReceived(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("kart_id")); err != nil {
		h.jsonErr(w, err)
		return
	}
	h.apiGetOrder(w, r)
}

func (h *Handlers) apiKartCompleted(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.CompleteByKart(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("kart_id")); err != nil {
		h.jsonErr(w, err)
		return
	}
	h.apiGetOrder(w, r)
}

func (h *Handlers) apiRedispatch(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Redispatch(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.jsonErr(w, err)
		return
	}
	h.apiGetOrder(w, r)
}

func (h *Handlers) apiReconcile(w http.ResponseWriter, r *http.Request) {
	n := h.engine.Reconcile(r.Context())
	h.jsonOK(w, map[string]int{"submitted": n})
}
