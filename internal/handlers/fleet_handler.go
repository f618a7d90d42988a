package handlers

import (
	"fmt"
	"net/http"

	"github.com/EzraBr1dger/space-map-admin/internal/services"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
)

func (h *HandlerManager) HandleListFleets(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.Fleets.List(r.Context(), actor(r), r.URL.Query().Get("faction"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *HandlerManager) HandleGetFleet(w http.ResponseWriter, r *http.Request) {
	fleet, err := h.Svc.Fleets.GetFleet(r.Context(), actor(r), pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"fleet": fleet})
}

func (h *HandlerManager) HandleCreateFleet(w http.ResponseWriter, r *http.Request) {
	var in services.FleetInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	fleet, err := h.Svc.Fleets.Create(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": fmt.Sprintf("Fleet %s created successfully", fleet.ID),
		"fleet":   fleet,
	})
}

func (h *HandlerManager) HandleUpdateFleet(w http.ResponseWriter, r *http.Request) {
	var upd services.FleetUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, r, err)
		return
	}
	fleet, err := h.Svc.Fleets.Update(r.Context(), actor(r), pathParam(r, "id"), upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Fleet updated successfully",
		"fleet":   fleet,
	})
}

func (h *HandlerManager) HandleMoveFleets(w http.ResponseWriter, r *http.Request) {
	var req services.MoveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Svc.Fleets.Move(r.Context(), actor(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *HandlerManager) HandleDeleteFleet(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if err := h.Svc.Fleets.Delete(r.Context(), actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Fleet %s deleted successfully", id)})
}

func (h *HandlerManager) HandleSettleArrivals(w http.ResponseWriter, r *http.Request) {
	settled, err := h.Svc.Fleets.SettleArrivals(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%d fleet(s) arrived", len(settled)),
		"settled": settled,
	})
}

func (h *HandlerManager) HandleTravelEstimate(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, r, errors.New(errors.ErrCodeValidation, "from and to are required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"from":       from,
		"to":         to,
		"travelDays": h.Svc.Fleets.TravelEstimate(from, to),
	})
}
