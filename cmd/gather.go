package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"sayless/internal/auth"
	"sayless/internal/catalog"
	"sayless/internal/collector"
	"sayless/internal/exporter"
	"sayless/internal/report"
	"sayless/internal/storage"
	"sayless/pkg/config"
	"sayless/pkg/httputil"
)

var gatherDryRun bool

var gatherCmd = &cobra.Command{
	Use:   "gather",
	Short: "Collect yesterday's uploads and export them to a new sheet tab",
	Long: `Resolve every configured channel, keep the uploads published yesterday
and write them to a new tab named after that date.`,
	RunE: runGather,
}

func init() {
	addDocumentFlags(gatherCmd)
	gatherCmd.Flags().Int64Var(&overrides.MaxResults, "maxResults", 0,
		fmt.Sprintf("Uploads fetched per channel, at most %d (default %d)", config.MaxResultsLimit, config.DefaultMaxResults))
	gatherCmd.Flags().BoolVar(&gatherDryRun, "dry-run", false, "Print the rows instead of exporting them")
	rootCmd.AddCommand(gatherCmd)
}

func runGather(cmd *cobra.Command, args []string) error {
	job := newGatherJob(settings)
	job.dryRun = gatherDryRun
	job.out = cmd.OutOrStdout()

	_, err := job.run(cmd.Context())
	return err
}

type gatherJob struct {
	settings  config.Settings
	documents storage.Reader
	now       func() time.Time
	dryRun    bool
	out       io.Writer

	newCatalog func(ctx context.Context, client *http.Client) (collector.Catalog, error)
	newSheet   func(ctx context.Context, client *http.Client) (exporter.SheetWriter, error)
}

func newGatherJob(s config.Settings) *gatherJob {
	return &gatherJob{
		settings:  s,
		documents: storage.NewDocuments(),
		now:       time.Now,
		out:       os.Stdout,
		newCatalog: func(ctx context.Context, client *http.Client) (collector.Catalog, error) {
			svc, err := catalog.NewService(ctx, client)
			if err != nil {
				return nil, err
			}
			return catalog.NewClient(svc, s.Location), nil
		},
		newSheet: func(ctx context.Context, client *http.Client) (exporter.SheetWriter, error) {
			svc, err := exporter.NewService(ctx, client)
			if err != nil {
				return nil, err
			}
			return exporter.NewSheetsWriter(svc), nil
		},
	}
}

func (j *gatherJob) scopes() []string {
	if j.dryRun {
		return []string{auth.ScopeYouTubeReadOnly}
	}
	return []string{auth.ScopeYouTubeReadOnly, auth.ScopeSpreadsheets}
}

// apiClient paces every API call made on behalf of the service account.
func (j *gatherJob) apiClient(ctx context.Context, sa *auth.ServiceAccount) *http.Client {
	client := sa.Client(ctx)
	client.Transport = httputil.NewLimitedTransport(client.Transport, j.settings.RequestsPerSecond)
	return client
}

func (j *gatherJob) run(ctx context.Context) (*report.Table, error) {
	cfg, err := config.Load(ctx, j.documents, j.settings.ConfigPath)
	if err != nil {
		return nil, &phaseError{phase: phaseConfig, err: err}
	}
	slog.Debug("Loaded config",
		"spreadsheet", cfg.SpreadsheetName(),
		"channels", len(cfg.ChannelHandles),
	)

	sa, err := auth.Load(ctx, j.documents, j.settings.ServiceAccountPath, j.settings.RequestTimeout, j.scopes()...)
	if err != nil {
		return nil, &phaseError{phase: phaseCredentials, err: err}
	}
	slog.Debug("Loaded service account", "email", sa.Email())

	client := j.apiClient(ctx, sa)

	cat, err := j.newCatalog(ctx, client)
	if err != nil {
		return nil, &phaseError{phase: phaseCredentials, err: err}
	}

	c := collector.New(cat, cfg.ChannelHandles, collector.Options{
		Location: j.settings.Location,
		Now:      j.now,
	})

	tbl, err := c.Gather(ctx, j.settings.MaxResults)
	if err != nil {
		return nil, &phaseError{phase: phaseCollect, err: err}
	}

	if j.dryRun {
		printRows(j.out, tbl)
		return tbl, nil
	}

	sheet, err := j.newSheet(ctx, client)
	if err != nil {
		return nil, &phaseError{phase: phaseCredentials, err: err}
	}

	if err := exporter.New(sheet, cfg.Spreadsheet.ID, cfg.SpreadsheetName()).Export(ctx, tbl); err != nil {
		return nil, &phaseError{phase: phaseExport, err: err}
	}

	slog.Info("YouTube links collected successfully",
		"tab", tbl.SheetTitle,
		"channels", len(tbl.Channels),
		"videos", tbl.VideoCount(),
		"shorts", tbl.ShortCount(),
	)
	return tbl, nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	shortStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Padding(0, 1)
)

const isShortColumn = 2

func printRows(w io.Writer, tbl *report.Table) {
	rows := exporter.Rows(tbl)

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = fmt.Sprint(h)
	}

	body := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fmt.Sprint(cell)
		}
		body = append(body, cells)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(body...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == isShortColumn && body[row][col] == "true":
				return shortStyle
			default:
				return cellStyle
			}
		})

	fmt.Fprintln(w, titleStyle.Render("Tab "+tbl.SheetTitle))
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("%d videos, %d shorts (dry run, nothing exported)", tbl.VideoCount(), tbl.ShortCount())))
}
