package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sayless/internal/storage"
	"sayless/pkg/config"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively write a config document",
	Long:  `Prompt for the spreadsheet and channel handles and write them to --configPath.`,
	RunE:  runInit,
}

func init() {
	addDocumentFlags(initCmd)
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := settings.ConfigPath
	local := storage.NewLocalStorage()

	fmt.Println(titleStyle.Render("Sayless Setup"))

	if storage.KindOf(path) != storage.KindLocal {
		return fmt.Errorf("init writes local files only, got %s location %q", storage.KindOf(path), path)
	}

	if local.Exists(path) {
		var overwrite bool
		if err := huh.NewConfirm().
			Title("Found existing " + path).
			Description("Overwrite?").
			Value(&overwrite).
			Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println(infoStyle.Render("Kept existing " + path))
			return nil
		}
	}

	var (
		spreadsheetID   string
		spreadsheetName string
		rawHandles      string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Spreadsheet ID").
				Description("The long id in the spreadsheet URL").
				Value(&spreadsheetID).
				Validate(required("spreadsheet id")),
			huh.NewInput().
				Title("Spreadsheet name").
				Description("Optional, only used in logs").
				Value(&spreadsheetName),
			huh.NewText().
				Title("Channel handles").
				Description("Comma or newline separated, e.g. @exampleChannel").
				Value(&rawHandles).
				Validate(func(s string) error {
					if len(parseHandles(s)) == 0 {
						return fmt.Errorf("at least one channel handle is required")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg := &config.Config{
		Spreadsheet:    config.Spreadsheet{ID: strings.TrimSpace(spreadsheetID), Name: strings.TrimSpace(spreadsheetName)},
		ChannelHandles: parseHandles(rawHandles),
	}

	data, err := encodeConfig(cfg, path)
	if err != nil {
		return err
	}

	if err := local.Write(path, data); err != nil {
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Wrote %s with %d channel(s)", path, len(cfg.ChannelHandles))))
	if !local.Exists(settings.ServiceAccountPath) && storage.KindOf(settings.ServiceAccountPath) == storage.KindLocal {
		fmt.Println(warnStyle.Render("No service account key at " + settings.ServiceAccountPath))
	}
	fmt.Println(infoStyle.Render("Next: sayless check"))
	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func parseHandles(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	handles := make([]string, 0, len(fields))
	for _, f := range fields {
		if h := strings.TrimSpace(f); h != "" {
			handles = append(handles, h)
		}
	}
	return handles
}

// encodeConfig picks the format from the file extension; anything but .json
// is written as YAML.
func encodeConfig(cfg *config.Config, path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
		return append(data, '\n'), nil
	default:
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
		return data, nil
	}
}
