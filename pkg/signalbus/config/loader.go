package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromFile loads configuration from path, selecting the parser by file
// extension. Supported extensions: .yaml, .yml, .json
func FromFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FromYAML(raw)
	case ".json":
		return FromJSON(raw)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML data into a Config. Nested sections are rewritten
// recursively so chained Sub calls behave identically regardless of the
// source format.
func FromYAML(data []byte) (Config, error) {
	m, err := decode(data, yaml.Unmarshal)
	if err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return New(sections(m)), nil
}

// FromJSON parses JSON data into a Config.
func FromJSON(data []byte) (Config, error) {
	m, err := decode(data, json.Unmarshal)
	if err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return New(m), nil
}

// decode runs one unmarshal function into the map shape Config wraps.
func decode(data []byte, unmarshal func([]byte, any) error) (map[string]any, error) {
	var m map[string]any
	if err := unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// sections normalizes nested map values in place, depth-first.
func sections(m map[string]any) map[string]any {
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			m[k] = sections(nested)
		}
	}
	return m
}
