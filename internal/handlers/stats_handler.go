package handlers

import (
	"net/http"
)

func (h *HandlerManager) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Svc.Stats.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *HandlerManager) HandleFactionComparison(w http.ResponseWriter, r *http.Request) {
	report, err := h.Svc.Stats.Factions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *HandlerManager) HandleProductionCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.Svc.Maps.ProductionCycles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"productionCycles": cycles})
}

func (h *HandlerManager) HandleIncrementProductionCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.Svc.Maps.IncrementProductionCycles(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":          "Production cycle incremented",
		"productionCycles": cycles,
	})
}

func (h *HandlerManager) HandleRecalculateFactionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Factions.Recompute(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	p := actor(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Faction statistics recalculated successfully",
		"factionStats":   stats,
		"recalculatedBy": p.Username,
	})
}

// HandleSystemHealth answers 503 when the store is down or core data is missing.
func (h *HandlerManager) HandleSystemHealth(w http.ResponseWriter, r *http.Request) {
	report := h.Svc.Stats.Health(r.Context())
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}
