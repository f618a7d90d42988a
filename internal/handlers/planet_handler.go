package handlers

import (
	"fmt"
	"net/http"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
)

func (h *HandlerManager) HandleListPlanets(w http.ResponseWriter, r *http.Request) {
	planets, err := h.Svc.Planets.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"planets": planets})
}

func (h *HandlerManager) HandleGetPlanet(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	planet, err := h.Svc.Planets.Get(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"planetName": name, "planet": planet})
}

func (h *HandlerManager) HandlePlanetsByFaction(w http.ResponseWriter, r *http.Request) {
	faction := pathParam(r, "faction")
	planets, err := h.Svc.Planets.ByFaction(r.Context(), faction)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"faction": faction,
		"planets": planets,
		"count":   len(planets),
	})
}

type createPlanetRequest struct {
	PlanetName string `json:"planetName"`
	models.Planet
}

func (h *HandlerManager) HandleCreatePlanet(w http.ResponseWriter, r *http.Request) {
	var req createPlanetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.PlanetName == "" {
		writeError(w, r, errors.New(errors.ErrCodeValidation, "planet name is required"))
		return
	}
	planet, err := h.Svc.Planets.Create(r.Context(), actor(r), req.PlanetName, &req.Planet)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": fmt.Sprintf("Planet %s created successfully", req.PlanetName),
		"planet":  planet,
	})
}

func (h *HandlerManager) HandleReplacePlanet(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	var planet models.Planet
	if err := decodeJSON(w, r, &planet); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.Svc.Planets.Replace(r.Context(), actor(r), name, &planet)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Planet %s updated successfully", name),
		"planet":  updated,
	})
}

func (h *HandlerManager) HandleDeletePlanet(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	if err := h.Svc.Planets.Delete(r.Context(), actor(r), name); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Planet %s deleted successfully", name)})
}

type bulkPlanetsRequest struct {
	Planets map[string]*models.Planet `json:"planets"`
}

func (h *HandlerManager) HandleBulkReplacePlanets(w http.ResponseWriter, r *http.Request) {
	var req bulkPlanetsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.Svc.Planets.BulkReplace(r.Context(), actor(r), req.Planets)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "All planets updated successfully",
		"planetCount": n,
	})
}
