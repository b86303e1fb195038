package cmd

import (
	"reflect"
	"strings"
	"testing"

	"sayless/pkg/config"
)

func TestParseHandles(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "commaSeparated", raw: "@a, @b,@c", want: []string{"@a", "@b", "@c"}},
		{name: "newlineSeparated", raw: "@a\n@b\r\n@c\n", want: []string{"@a", "@b", "@c"}},
		{name: "mixedWithBlanks", raw: " @a ,,\n\n @b ", want: []string{"@a", "@b"}},
		{name: "empty", raw: " \n , ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseHandles(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseHandles(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEncodeConfigLoadsBack(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		cfg      *config.Config
		wantJSON bool
	}{
		{
			name:     "jsonDocument",
			path:     "local/configs.json",
			cfg:      &config.Config{Spreadsheet: config.Spreadsheet{ID: "sheet-123", Name: "Daily"}, ChannelHandles: []string{"@a", "@b"}},
			wantJSON: true,
		},
		{
			name: "yamlDocumentWithoutName",
			path: "local/configs.yaml",
			cfg:  &config.Config{Spreadsheet: config.Spreadsheet{ID: "sheet-123"}, ChannelHandles: []string{"@a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := encodeConfig(tt.cfg, tt.path)
			if err != nil {
				t.Fatalf("encodeConfig() error: %v", err)
			}
			if got := strings.HasPrefix(string(data), "{"); got != tt.wantJSON {
				t.Errorf("JSON output = %v, want %v:\n%s", got, tt.wantJSON, data)
			}

			parsed, err := config.Parse(data)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if !reflect.DeepEqual(parsed, tt.cfg) {
				t.Errorf("round trip = %+v, want %+v", parsed, tt.cfg)
			}
		})
	}
}
