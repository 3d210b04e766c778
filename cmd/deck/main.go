package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	commonlogger "pmp-reports/common/logger"
	"pmp-reports/internal/client"
)

var (
	// Global flags
	serverURL string
	apiToken  string
	userID    string
	origin    string
	timeout   time.Duration
	verbose   bool

	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "deck",
	Short: "Monthly project report decks: present, manage, export and share",
	Long: `deck talks to a running pmp-reports service.

Reports are generated and stored by the service; deck presents them in the
terminal, manages the stored list, exports PDF/PPTX/XLSX files locally and
copies public share links.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = zap.NewNop()
		if verbose {
			l, err := commonlogger.NewDevelopmentLogger()
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			logger = l
		}
		return nil
	},
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("DECK_SERVER", "http://localhost:8080"), "pmp-reports base URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("DECK_TOKEN"), "Bearer token for the admin API")
	rootCmd.PersistentFlags().StringVar(&userID, "user", os.Getenv("DECK_USER"), "User id sent as X-User-Id")
	rootCmd.PersistentFlags().StringVar(&origin, "origin", os.Getenv("SHARE_ORIGIN"), "Origin for share links (default: the service's)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	generateCmd.Flags().IntVar(&generateMonth, "month", int(time.Now().Month()), "Report month (1-12)")
	generateCmd.Flags().IntVar(&generateYear, "year", time.Now().Year(), "Report year")

	presentCmd.Flags().IntVar(&presentSlide, "slide", 1, "Slide to start on (1-based)")

	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Filter by project code or name")
	listCmd.Flags().StringVar(&listProject, "project", "", "Only reports of this project id")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "pdf", "pdf, pptx or xlsx")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", ".", "Output directory")
	exportCmd.Flags().StringVar(&exportFont, "pdf-font", os.Getenv("PDF_FONT_FILE"), "TrueType font for PDF text (non-Latin names)")
	exportCmd.Flags().StringVar(&exportBold, "pdf-font-bold", os.Getenv("PDF_FONT_BOLD_FILE"), "Bold TrueType font for PDF headings")

	shareCmd.Flags().BoolVar(&shareCopy, "copy", false, "Also copy the link to the clipboard")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(presentCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(shareCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// newAPI admin API client from the global flags
func newAPI() *client.Client {
	c := client.New(serverURL, apiToken, timeout)
	c.SetUserID(userID)
	return c
}
