package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"sayless/internal/auth"
	"sayless/internal/collector"
	"sayless/pkg/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the config, credentials and every channel handle",
	Long: `Load the config document and service account, then resolve each configured
channel handle against YouTube without writing anything.`,
	RunE: runCheck,
}

func init() {
	addDocumentFlags(checkCmd)
	rootCmd.AddCommand(checkCmd)
}

type handleStatus struct {
	handle    string
	uploadsID string
	err       error
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	job := newGatherJob(settings)

	fmt.Fprintln(out, titleStyle.Render("Sayless check"))

	cfg, err := config.Load(ctx, job.documents, settings.ConfigPath)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("✗ Config: "+err.Error()))
		return &phaseError{phase: phaseConfig, err: err}
	}
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ Config: %d channel(s) for '%s'", len(cfg.ChannelHandles), cfg.SpreadsheetName())))

	sa, err := auth.Load(ctx, job.documents, settings.ServiceAccountPath, settings.RequestTimeout, auth.ScopeYouTubeReadOnly)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("✗ Credentials: "+err.Error()))
		return &phaseError{phase: phaseCredentials, err: err}
	}
	fmt.Fprintln(out, successStyle.Render("✓ Credentials: "+sa.Email()))

	cat, err := job.newCatalog(ctx, job.apiClient(ctx, sa))
	if err != nil {
		return &phaseError{phase: phaseCredentials, err: err}
	}

	if err := ctx.Err(); err != nil {
		return &phaseError{phase: phaseCollect, err: err}
	}

	var statuses []handleStatus
	done := make(chan struct{})
	err = spinner.New().
		Title("Resolving channel handles").
		Context(ctx).
		Action(func() {
			defer close(done)
			statuses = resolveHandles(ctx, cat, cfg.ChannelHandles)
		}).
		Run()
	if err != nil {
		return &phaseError{phase: phaseCollect, err: fmt.Errorf("resolve channel handles: %w", err)}
	}
	select {
	case <-done:
	case <-ctx.Done():
		return &phaseError{phase: phaseCollect, err: ctx.Err()}
	}

	if err := reportStatuses(out, statuses, len(cfg.ChannelHandles)); err != nil {
		return &phaseError{phase: phaseCollect, err: err}
	}
	return nil
}

// reportStatuses fails unless every one of the configured handles resolved.
func reportStatuses(w io.Writer, statuses []handleStatus, handles int) error {
	failed := printStatuses(w, statuses)
	if len(statuses) != handles {
		return fmt.Errorf("checked %d of %d channel handle(s)", len(statuses), handles)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d channel handle(s) failed to resolve", failed, handles)
	}
	return nil
}

// resolveHandles keeps going past failures so every bad handle is reported.
func resolveHandles(ctx context.Context, cat collector.Catalog, handles []string) []handleStatus {
	statuses := make([]handleStatus, 0, len(handles))
	for _, h := range handles {
		if ctx.Err() != nil {
			break
		}
		uploadsID, err := cat.ResolveUploadsCollection(ctx, h)
		statuses = append(statuses, handleStatus{handle: h, uploadsID: uploadsID, err: err})
	}
	return statuses
}

func printStatuses(w io.Writer, statuses []handleStatus) int {
	failed := 0
	for _, s := range statuses {
		if s.err != nil {
			failed++
			fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("✗ %s: %v", s.handle, s.err)))
			continue
		}
		fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("✓ %s: uploads %s", s.handle, s.uploadsID)))
	}
	return failed
}
