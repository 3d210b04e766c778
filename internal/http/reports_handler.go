package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"pmp-reports/internal/domain"
	"pmp-reports/internal/export"
	"pmp-reports/internal/render"
	"pmp-reports/internal/service"
	"pmp-reports/internal/slides"

	"go.uber.org/zap"
)

// ReportsHandler admin report API
type ReportsHandler struct {
	svc     service.ReportService
	pdfFont *export.PDFFont
	logger  *zap.Logger
}

func NewReportsHandler(svc service.ReportService, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{svc: svc, logger: logger}
}

// SetPDFFont font embedded into PDF exports; nil keeps the built-in one
func (h *ReportsHandler) SetPDFFont(font *export.PDFFont) {
	h.pdfFont = font
}

// SlidesResponse laid-out deck of one report
type SlidesResponse struct {
	ReportID string        `json:"reportId"`
	Period   string        `json:"period"`
	Kinds    []slides.Kind `json:"kinds"`
	Slides   []render.View `json:"slides"`
}

// ShareLinkResponse public link of a report
type ShareLinkResponse struct {
	URL string `json:"url"`
}

// failMessage user-facing message; unexpected errors are logged and kept generic
func (h *ReportsHandler) failMessage(op string, err error, fields ...zap.Field) string {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrReportNotFound),
		errors.Is(err, domain.ErrShareTokenMissing),
		errors.Is(err, domain.ErrConflict):
		h.logger.Warn(op+" rejected", append(fields, zap.Error(err))...)
		return err.Error()
	}
	h.logger.Error(op+" failed", append(fields, zap.Error(err))...)
	return fmt.Sprintf("%s failed", strings.ToLower(op))
}

// GenerateReport POST /admin/api/v1/projects/{projectId}/reports
// body: {"reportMonth":3,"reportYear":2025,"userId":"..."}
func (h *ReportsHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req service.GenerateReportRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}
	req.ProjectID = r.PathValue("projectId")
	if req.UserID == "" {
		req.UserID = r.Header.Get("X-User-Id")
	}

	resp, err := h.svc.GenerateReport(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(h.failMessage("Generate report", err, zap.String("project_id", req.ProjectID))))
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// ListReports GET /admin/api/v1/reports?q=&project_id=
func (h *ReportsHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.svc.ListReports(r.Context(), service.ListReportsRequest{
		ProjectID: q.Get("project_id"),
		Query:     q.Get("q"),
	})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(h.failMessage("List reports", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// GetReport GET /admin/api/v1/reports/{id}
func (h *ReportsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	report, err := h.svc.GetReport(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(h.failMessage("Get report", err, zap.String("report_id", id))))
		return
	}
	writeJSON(w, http.StatusOK, Ok(report))
}

// DeleteReport DELETE /admin/api/v1/reports/{id}
func (h *ReportsHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.svc.DeleteReport(r.Context(), id); err != nil {
		writeJSON(w, http.StatusOK, Fail(h.failMessage("Delete report", err, zap.String("report_id", id))))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"id": id, "deleted": true}))
}

// GetSlides GET /admin/api/v1/reports/{id}/slides
func (h *ReportsHandler) GetSlides(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	report, err := h.svc.GetReport(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(h.failMessage("Get slides", err, zap.String("report_id", id))))
		return
	}
	_, deck, err := reportDeck(report)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(h.failMessage("Get slides", err, zap.String("report_id", id))))
		return
	}
	writeJSON(w, http.StatusOK, Ok(SlidesResponse{
		ReportID: report.ReportID,
		Period:   report.Period().Label(),
		Kinds:    slides.Kinds(deck),
		Slides:   render.LayoutDeck(deck),
	}))
}

// Present GET /admin/api/v1/reports/{id}/present?slide=0&close=/reports
func (h *ReportsHandler) Present(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	report, err := h.svc.GetReport(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrReportNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, h.failMessage("Present report", err, zap.String("report_id", id)), status)
		return
	}
	writeDeckPage(w, r, report, localPath(r.URL.Query().Get("close")), h.logger)
}

// Export GET /admin/api/v1/reports/{id}/export?format=pdf|pptx|xlsx
func (h *ReportsHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	report, err := h.svc.GetReport(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(h.failMessage("Export report", err, zap.String("report_id", id))))
		return
	}
	snap, err := report.Snapshot()
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(h.failMessage("Export report", err, zap.String("report_id", id))))
		return
	}

	art, err := export.Encode(format, export.Input{
		Project:  snap.Project,
		Snapshot: snap,
		Month:    report.ReportMonth,
		Year:     report.ReportYear,
		Font:     h.pdfFont,
	})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(h.failMessage("Export report", err,
			zap.String("report_id", id),
			zap.String("format", string(format)),
		)))
		return
	}

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, art.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

// ShareLink GET /admin/api/v1/reports/{id}/share-link?origin=https://pmp.example.com
func (h *ReportsHandler) ShareLink(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	link, err := h.svc.ShareLink(r.Context(), id, r.URL.Query().Get("origin"))
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(h.failMessage("Share link", err, zap.String("report_id", id))))
		return
	}
	writeJSON(w, http.StatusOK, Ok(ShareLinkResponse{URL: link}))
}
