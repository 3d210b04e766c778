package httpapi

import (
	"fmt"
	"net/http"

	"pmp-reports/internal/domain"
	"pmp-reports/internal/render"
	"pmp-reports/internal/slides"

	"go.uber.org/zap"
)

// reportDeck snapshot and derived slides of a stored report
func reportDeck(report *domain.StoredReport) (*domain.ReportSnapshot, []slides.Slide, error) {
	snap, err := report.Snapshot()
	if err != nil {
		return nil, nil, err
	}
	return snap, slides.Generate(snap, report.Period()), nil
}

func deckTitle(report *domain.StoredReport, snap *domain.ReportSnapshot) string {
	name := snap.Project.ProjectName
	if name == "" {
		name = report.Project.ProjectName
	}
	return fmt.Sprintf("%s - %s", name, report.Period().Label())
}

// writeDeckPage renders one slide of the report as HTML; ?slide= is clamped to the deck
func writeDeckPage(w http.ResponseWriter, r *http.Request, report *domain.StoredReport, closeURL string, logger *zap.Logger) {
	snap, deck, err := reportDeck(report)
	if err != nil {
		logger.Error("Report data unreadable", zap.String("report_id", report.ReportID), zap.Error(err))
		http.Error(w, "report data is unreadable", http.StatusInternalServerError)
		return
	}

	nav := render.NewNavigator(deck)
	i := parseInt(r.URL.Query().Get("slide"), 0)
	if i >= nav.Len() {
		i = nav.Len() - 1
	}
	if i < 0 {
		i = 0
	}
	_ = nav.JumpTo(i)

	page := render.NewDeckPage(deckTitle(report, snap), nav, deck, r.URL.Path, closeURL)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.RenderHTML(w, page); err != nil {
		logger.Error("Deck render failed", zap.String("report_id", report.ReportID), zap.Error(err))
		http.Error(w, "failed to render presentation", http.StatusInternalServerError)
	}
}
