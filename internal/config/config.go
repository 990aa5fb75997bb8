// Package config loads keybinding configuration and turns it into a
// binding table. TOML, YAML and JSON files are supported; the format
// is chosen by file extension.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/bind"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/mode"
)

// File is the on-disk configuration shape. Keybindings entries follow
// the binding grammar: an optionally mode-scoped key string mapping to
// a command name, a {command, args} object, a list, a conditional, or
// a numeric alias. SelectBindings apply only in visual mode.
type File struct {
	Keybindings    map[string]any `json:"keybindings" toml:"keybindings" yaml:"keybindings"`
	SelectBindings map[string]any `json:"selectbindings" toml:"selectbindings" yaml:"selectbindings"`
}

// Load reads a configuration file and builds the binding table.
func Load(path string) (*bind.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes configuration data in the format implied by the
// extension (".toml", ".yaml", ".yml" or ".json").
func Parse(data []byte, ext string) (*bind.Table, error) {
	var file File
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return Build(file)
}

// Build converts a decoded File into a binding table. Any entry that
// fails to parse rejects the whole configuration; a bad config is not
// applied piecemeal.
func Build(file File) (*bind.Table, error) {
	table := bind.NewTable()
	for entry, raw := range file.Keybindings {
		spec, err := bind.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("keybinding %q: %w", entry, err)
		}
		table.BindEntry(entry, spec)
	}
	for keys, raw := range file.SelectBindings {
		spec, err := bind.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("selectbinding %q: %w", keys, err)
		}
		table.Bind([]string{mode.Visual}, keys, spec)
	}
	return table, nil
}
