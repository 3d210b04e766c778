package httpapi

import (
	"errors"
	"net/http"

	"pmp-reports/internal/domain"
	"pmp-reports/internal/service"

	"go.uber.org/zap"
)

// ShareHandler read-only access by share token, no authentication
type ShareHandler struct {
	svc    service.ReportService
	logger *zap.Logger
}

func NewShareHandler(svc service.ReportService, logger *zap.Logger) *ShareHandler {
	return &ShareHandler{svc: svc, logger: logger}
}

// sharedView strips the generating user from publicly served reports
func sharedView(report *domain.StoredReport) *domain.StoredReport {
	out := *report
	out.User = nil
	out.UserID = ""
	return &out
}

// GetSharedReport GET /share/api/v1/reports/{token}
func (h *ShareHandler) GetSharedReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.GetSharedReport(r.Context(), r.PathValue("token"))
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		h.logger.Error("GetSharedReport failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to load shared report"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(sharedView(report)))
}

// PresentShared GET /share/report/{token}?slide=0
func (h *ShareHandler) PresentShared(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.GetSharedReport(r.Context(), r.PathValue("token"))
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		h.logger.Error("PresentShared failed", zap.Error(err))
		http.Error(w, "failed to load shared report", http.StatusInternalServerError)
		return
	}
	writeDeckPage(w, r, report, "", h.logger)
}
