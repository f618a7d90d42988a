package handlers

import (
	"fmt"
	"net/http"

	"github.com/EzraBr1dger/space-map-admin/internal/spreadsheet"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
	"github.com/EzraBr1dger/space-map-admin/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandleExportWorkbook downloads planets, fleets and supplies as one workbook.
func (h *HandlerManager) HandleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	planets, err := h.Svc.Planets.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fleets, err := h.Svc.Fleets.List(ctx, actor(r), "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	supply, err := h.Svc.Supplies.Get(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	f, err := spreadsheet.BuildWorkbook(planets, fleets.Fleets, supply)
	if err != nil {
		writeError(w, r, errors.Wrap(err, errors.ErrCodeInternalError, "failed to build workbook"))
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("space-map-%s.xlsx", h.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := f.WriteTo(w); err != nil {
		logger.Error("Failed to write workbook", "error", err)
		return
	}
	logger.Info("Workbook exported", "planets", len(planets), "fleets", len(fleets.Fleets), "username", actor(r).Username)
}
