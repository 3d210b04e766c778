package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pmp-reports/internal/domain"
	"pmp-reports/internal/export"
	"pmp-reports/internal/manager"
	"pmp-reports/internal/service"
	"pmp-reports/internal/slides"
	"pmp-reports/internal/tui"
)

var (
	generateMonth int
	generateYear  int
	presentSlide  int
	listQuery     string
	listProject   string
	exportFormat  string
	exportDir     string
	exportFont    string
	exportBold    string
	shareCopy     bool
)

// reportAPI the admin API calls the commands need; *client.Client implements it
type reportAPI interface {
	GenerateReport(ctx context.Context, req service.GenerateReportRequest) (*service.GenerateReportResponse, error)
	ListReports(ctx context.Context, req service.ListReportsRequest) (*service.ListReportsResponse, error)
	GetReport(ctx context.Context, reportID string) (*domain.StoredReport, error)
	DeleteReport(ctx context.Context, reportID string) error
	ShareLink(ctx context.Context, reportID, origin string) (string, error)
}

var generateCmd = &cobra.Command{
	Use:   "generate [project-id]",
	Short: "Generate and store a new report version for a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return runGenerate(ctx, newAPI(), args[0], generateMonth, generateYear, cmd.OutOrStdout())
	},
}

var presentCmd = &cobra.Command{
	Use:   "present [report-id]",
	Short: "Present a stored report as a full-screen terminal deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return presentReport(cmd.Context(), newAPI(), args[0], presentSlide-1)
	},
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse, share and delete stored reports",
	Long: `Opens the reports manager: reports grouped by project, newest first.

  enter  expand a project / present a report
  /      filter by project code or name
  s      copy the public share link
  d      delete (asks for confirmation)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReports(cmd.Context(), newAPI())
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print stored reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return runList(ctx, newAPI(), service.ListReportsRequest{Query: listQuery, ProjectID: listProject}, cmd.OutOrStdout())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [report-id]",
	Short: "Export a stored report to PDF, PPTX or XLSX",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		path, err := runExport(ctx, newAPI(), args[0], exportFormat, exportDir)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var shareCmd = &cobra.Command{
	Use:   "share [report-id]",
	Short: "Print the public share link of a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		var clip manager.Clipboard
		if shareCopy {
			clip = manager.NewSystemClipboard(os.Stderr)
		}
		return runShare(ctx, newAPI(), args[0], origin, clip, cmd.OutOrStdout())
	},
}

func runGenerate(ctx context.Context, api reportAPI, projectID string, month, year int, w io.Writer) error {
	resp, err := api.GenerateReport(ctx, service.GenerateReportRequest{
		ProjectID:   projectID,
		ReportMonth: month,
		ReportYear:  year,
		UserID:      userID,
	})
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	r := resp.Report
	fmt.Fprintf(w, "Report %s  %s  v%d\n", r.ReportID, r.Period().Label(), r.Version)
	for _, o := range resp.Sections {
		line := fmt.Sprintf("  %-16s %s", o.Section, o.Status)
		if o.Error != "" {
			line += "  " + o.Error
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func runList(ctx context.Context, api reportAPI, req service.ListReportsRequest, w io.Writer) error {
	resp, err := api.ListReports(ctx, req)
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}
	if len(resp.Items) == 0 {
		fmt.Fprintln(w, "No reports found.")
		return nil
	}
	for _, g := range domain.GroupByProject(resp.Items) {
		fmt.Fprintf(w, "%s  %s\n", g.ProjectCode, g.ProjectName)
		for _, r := range g.Reports {
			latest := ""
			if r.Latest {
				latest = "  latest"
			}
			fmt.Fprintf(w, "  %-36s  %-14s  v%-3d  %s%s\n",
				r.ReportID, r.Period().Label(), r.Version, r.CreatedAt.Format("2006-01-02 15:04"), latest)
		}
	}
	return nil
}

// loadDeck fetches a report and derives its slides
func loadDeck(ctx context.Context, api reportAPI, reportID string) (*domain.StoredReport, *domain.ReportSnapshot, []slides.Slide, error) {
	report, err := api.GetReport(ctx, reportID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get report: %w", err)
	}
	snap, err := report.Snapshot()
	if err != nil {
		return nil, nil, nil, err
	}
	return report, snap, slides.Generate(snap, report.Period()), nil
}

func deckTitle(report *domain.StoredReport, snap *domain.ReportSnapshot) string {
	name := snap.Project.ProjectName
	if name == "" {
		name = report.Project.ProjectName
	}
	return fmt.Sprintf("%s - %s", name, report.Period().Label())
}

func presentReport(ctx context.Context, api reportAPI, reportID string, start int) error {
	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	report, snap, deck, err := loadDeck(loadCtx, api, reportID)
	cancel()
	if err != nil {
		return err
	}

	model := tui.NewDeckModel(deckTitle(report, snap), deck, start)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("presentation: %w", err)
	}
	return nil
}

func runReports(ctx context.Context, api reportAPI) error {
	shareOrigin := origin
	if shareOrigin == "" {
		shareOrigin = serverURL
	}
	mgr := manager.New(api, manager.NewSystemClipboard(os.Stderr), shareOrigin, logger)

	for {
		final, err := tea.NewProgram(tui.NewManagerModel(ctx, mgr), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		if err != nil {
			return fmt.Errorf("reports manager: %w", err)
		}
		m, ok := final.(tui.ManagerModel)
		if !ok || m.Selected() == "" {
			return nil
		}
		// back to the list once the presentation is closed
		if err := presentReport(ctx, api, m.Selected(), 0); err != nil {
			logger.Warn("Present failed", zap.String("report_id", m.Selected()), zap.Error(err))
			return err
		}
	}
}

// runExport encodes the stored snapshot locally and writes it under dir; returns the file path
func runExport(ctx context.Context, api reportAPI, reportID, format, dir string) (string, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return "", err
	}
	font, err := export.LoadPDFFont(exportFont, exportBold)
	if err != nil {
		return "", err
	}
	report, snap, _, err := loadDeck(ctx, api, reportID)
	if err != nil {
		return "", err
	}

	art, err := export.Encode(f, export.Input{
		Project:  snap.Project,
		Snapshot: snap,
		Month:    report.ReportMonth,
		Year:     report.ReportYear,
		Font:     font,
	})
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, art.Filename)
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Info("Report exported", zap.String("report_id", reportID), zap.String("path", path), zap.Int("slides", len(art.Slides)))
	return path, nil
}

func runShare(ctx context.Context, api reportAPI, reportID, shareOrigin string, clip manager.Clipboard, w io.Writer) error {
	link, err := api.ShareLink(ctx, reportID, shareOrigin)
	if err != nil {
		return fmt.Errorf("share link: %w", err)
	}
	fmt.Fprintln(w, link)
	if clip == nil {
		return nil
	}
	if err := clip.WriteText(link); err != nil {
		return fmt.Errorf("failed to copy share link: %w", err)
	}
	fmt.Fprintln(w, "Copied!")
	return nil
}
