package handlers

import (
	"net/http"
	"strconv"

	"github.com/EzraBr1dger/space-map-admin/internal/services"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
)

func (h *HandlerManager) HandleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.Announcements.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"announcements": list})
}

func (h *HandlerManager) HandleGetAnnouncement(w http.ResponseWriter, r *http.Request) {
	a, err := h.Svc.Announcements.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"announcement": a})
}

func (h *HandlerManager) HandleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var in services.AnnouncementInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.Svc.Announcements.Create(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "Announcement created successfully",
		"announcement": a,
	})
}

func (h *HandlerManager) HandleUpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var in services.AnnouncementInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.Svc.Announcements.Update(r.Context(), actor(r), pathParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Announcement updated successfully",
		"announcement": a,
	})
}

func (h *HandlerManager) HandleDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Announcements.Delete(r.Context(), actor(r), pathParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Announcement deleted successfully"})
}

// HandleLatestAnnouncements is public so the game client can show news.
func (h *HandlerManager) HandleLatestAnnouncements(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, r, errors.New(errors.ErrCodeValidation, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	list, err := h.Svc.Announcements.Latest(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"announcements": list,
		"count":         len(list),
	})
}
