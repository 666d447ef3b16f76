package config

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Load loads a configuration file from the given path.
// The format is determined by the file extension:
// - .json for JSON
// - .yaml or .yml for YAML
// - .hcl for HCL
// - .savesync will try both YAML and HCL formats
func Load(ctx context.Context, path string) (*Config, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var cfg *Config

	// For .savesync files, try both YAML and HCL
	if ext == ".savesync" || filepath.Base(path) == ".savesync" {
		cfg, err = loadYAML(data)
		if err != nil {
			cfg, err = loadHCL(data, path)
		}
		if err != nil {
			return nil, errors.Errorf("parsing %s as YAML or HCL: %w", path, err)
		}
	} else {
		switch ext {
		case ".json":
			cfg, err = loadJSON(data)
		case ".yaml", ".yml":
			cfg, err = loadYAML(data)
		case ".hcl":
			cfg, err = loadHCL(data, path)
		default:
			return nil, errors.Errorf("unsupported file extension %q", ext)
		}
		if err != nil {
			return nil, err
		}
	}

	cfg.location = path
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadJSON loads a configuration from JSON data
func loadJSON(data []byte) (*Config, error) {
	var cfg Config
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return &cfg, nil
}

// loadYAML loads a configuration from YAML data
func loadYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

// hclConfig mirrors Config for gohcl decoding; the destination union maps
// onto an optional `dest` attribute plus repeated `destination` blocks
type hclConfig struct {
	Workspace *hclWorkspace `hcl:"workspace,block"`
	Log       *hclLog       `hcl:"log,block"`
	Mappings  []hclMapping  `hcl:"mapping,block"`
}

type hclWorkspace struct {
	Folders []string `hcl:"folders"`
}

type hclLog struct {
	Level string `hcl:"level,optional"`
}

type hclMapping struct {
	Source       string    `hcl:"source"`
	Dest         *string   `hcl:"dest,optional"`
	Destinations []hclDest `hcl:"destination,block"`
	Ignore       []string  `hcl:"ignore,optional"`
}

type hclDest struct {
	Path   string  `hcl:"path"`
	Name   *string `hcl:"name,optional"`
	Active *bool   `hcl:"active,optional"`
}

// loadHCL loads a configuration from HCL data
func loadHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var raw hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &raw)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{}
	if raw.Workspace != nil {
		cfg.Workspace.Folders = raw.Workspace.Folders
	}
	if raw.Log != nil {
		cfg.Log.Level = raw.Log.Level
	}
	for _, m := range raw.Mappings {
		mapping := Mapping{Source: m.Source, Ignore: m.Ignore}
		if m.Dest != nil {
			mapping.Destinations = append(mapping.Destinations, Destination{Path: *m.Dest, Active: true})
		}
		for _, d := range m.Destinations {
			cond := conditionalDest{Path: d.Path, Active: d.Active}
			if d.Name != nil {
				cond.Name = *d.Name
			}
			mapping.Destinations = append(mapping.Destinations, cond.normalize())
		}
		cfg.Mappings = append(cfg.Mappings, mapping)
	}

	return cfg, nil
}
