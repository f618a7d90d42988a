package handlers

import (
	"fmt"
	"net/http"

	"github.com/EzraBr1dger/space-map-admin/internal/services"
)

func (h *HandlerManager) HandleGetMapData(w http.ResponseWriter, r *http.Request) {
	data, err := h.Svc.Maps.GetMapData(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *HandlerManager) HandleUpdateMapPlanet(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	var fields map[string]interface{}
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, r, err)
		return
	}
	planet, err := h.Svc.Maps.UpdatePlanet(r.Context(), actor(r), name, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Planet %s updated successfully", name),
		"planet":  planet,
	})
}

func (h *HandlerManager) HandleUpdateSector(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	var fields map[string]interface{}
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, r, err)
		return
	}
	sector, err := h.Svc.Maps.UpdateSector(r.Context(), actor(r), name, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Sector %s updated successfully", name),
		"sector":  sector,
	})
}

func (h *HandlerManager) HandleRecalculateSectors(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.Maps.RecalculateSectors(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Sector control recalculated",
		"sectorsUpdated": res.SectorsUpdated,
		"sectors":        res.Sectors,
	})
}

func (h *HandlerManager) HandleStartBuilding(w http.ResponseWriter, r *http.Request) {
	var req services.BuildingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Svc.Buildings.Start(r.Context(), actor(r), pathParam(r, "name"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *HandlerManager) HandleCancelBuilding(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	building, err := h.Svc.Buildings.Cancel(r.Context(), actor(r), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":           fmt.Sprintf("%s construction cancelled on %s", building.Type, name),
		"cancelledBuilding": building,
	})
}
