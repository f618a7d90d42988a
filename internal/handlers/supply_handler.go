package handlers

import (
	"net/http"

	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
)

func (h *HandlerManager) HandleGetSupplies(w http.ResponseWriter, r *http.Request) {
	supply, err := h.Svc.Supplies.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, supply)
}

type replaceSuppliesRequest struct {
	Items map[string]float64 `json:"items"`
}

func (h *HandlerManager) HandleReplaceSupplies(w http.ResponseWriter, r *http.Request) {
	var req replaceSuppliesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	supply, err := h.Svc.Supplies.Replace(r.Context(), actor(r), req.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Supplies updated successfully",
		"supplyData": supply,
	})
}

type amountRequest struct {
	Amount *float64 `json:"amount"`
}

func (req amountRequest) value() (float64, error) {
	if req.Amount == nil {
		return 0, errors.New(errors.ErrCodeValidation, "amount must be a number")
	}
	return *req.Amount, nil
}

func (h *HandlerManager) HandleSetSupplyItem(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := req.value()
	if err != nil {
		writeError(w, r, err)
		return
	}
	change, err := h.Svc.Supplies.SetItem(r.Context(), actor(r), pathParam(r, "item"), amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}

func (h *HandlerManager) HandleAddSupplyItem(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := req.value()
	if err != nil {
		writeError(w, r, err)
		return
	}
	change, err := h.Svc.Supplies.AddItem(r.Context(), actor(r), pathParam(r, "item"), amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}

func (h *HandlerManager) HandleDeleteSupplyItem(w http.ResponseWriter, r *http.Request) {
	change, err := h.Svc.Supplies.DeleteItem(r.Context(), actor(r), pathParam(r, "item"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}

func (h *HandlerManager) HandleResetSupplies(w http.ResponseWriter, r *http.Request) {
	supply, err := h.Svc.Supplies.Reset(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Supplies reset to default values",
		"supplyData": supply,
	})
}

func (h *HandlerManager) HandleSupplyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Supplies.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
