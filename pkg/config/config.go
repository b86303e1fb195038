package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"sayless/internal/storage"
)

// DefaultSpreadsheetName is shown in logs when the document omits spreadsheet.name.
const DefaultSpreadsheetName = "Name Not Found"

type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

type Spreadsheet struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

type Config struct {
	Spreadsheet    Spreadsheet `yaml:"spreadsheet" json:"spreadsheet"`
	ChannelHandles []string    `yaml:"channel_handles" json:"channel_handles"`
}

// SpreadsheetName falls back to DefaultSpreadsheetName.
func (c *Config) SpreadsheetName() string {
	if c.Spreadsheet.Name == "" {
		return DefaultSpreadsheetName
	}
	return c.Spreadsheet.Name
}

// Load reads the document at path. Both JSON and YAML documents are accepted.
func Load(ctx context.Context, r storage.Reader, path string) (*Config, error) {
	data, err := r.Read(ctx, path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	return cfg, nil
}

var utf8BOM = []byte("\xef\xbb\xbf")

// Parse accepts JSON and YAML. JSON is decoded with encoding/json since
// valid JSON such as surrogate pair escapes or "\/" is not valid YAML.
func Parse(data []byte) (*Config, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	root, err := parseTree(data)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	if err := validate(root); err != nil {
		return nil, err
	}

	var cfg Config
	if err := root.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	return &cfg, nil
}

func parseTree(data []byte) (*yaml.Node, error) {
	if !isJSON(data) {
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, err
		}
		return &root, nil
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	// Re-encoding keeps the scalar tags of the JSON values, so validate
	// sees 42 as !!int and "42" as !!str.
	var content yaml.Node
	if err := content.Encode(doc); err != nil {
		return nil, err
	}
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{&content}}, nil
}

func isJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// validate checks the document shape on the node tree, where scalar tags
// are still visible, so that channel_handles: [1] is rejected instead of
// being coerced to "1".
func validate(root *yaml.Node) error {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return errors.New("empty document")
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return errors.New("document must be an object")
	}

	spreadsheet := field(doc, "spreadsheet")
	if spreadsheet == nil {
		return errors.New(`missing required field "spreadsheet"`)
	}
	if spreadsheet.Kind != yaml.MappingNode {
		return errors.New(`"spreadsheet" must be an object`)
	}

	id := field(spreadsheet, "id")
	if id == nil {
		return errors.New(`missing required field "spreadsheet.id"`)
	}
	if !isString(id) {
		return errors.New(`"spreadsheet.id" must be a string`)
	}

	if name := field(spreadsheet, "name"); name != nil && !isString(name) {
		return errors.New(`"spreadsheet.name" must be a string`)
	}

	handles := field(doc, "channel_handles")
	if handles == nil {
		return errors.New(`missing required field "channel_handles"`)
	}
	if handles.Kind != yaml.SequenceNode {
		return errors.New(`"channel_handles" must be an array`)
	}
	for i, h := range handles.Content {
		if !isString(h) {
			return fmt.Errorf(`"channel_handles[%d]" must be a string`, i)
		}
	}

	return nil
}

func field(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func isString(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}
