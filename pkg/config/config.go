// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 📚 Config is the complete savesync configuration
type Config struct {
	Workspace WorkspaceConfig `json:"workspace" yaml:"workspace"`
	Mappings  []Mapping       `json:"mappings" yaml:"mappings"`
	Log       LogConfig       `json:"log,omitempty" yaml:"log,omitempty"`

	// location is the path this config was loaded from
	location string
}

// 🗂️ WorkspaceConfig declares the root folders savesync watches
type WorkspaceConfig struct {
	Folders []string `json:"folders" yaml:"folders"`
}

// 📝 LogConfig controls diagnostic output
type LogConfig struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
}

// 🔄 Mapping associates one source directory with one or more destinations.
// Sources may nest or repeat across mappings; every matching mapping fires
// independently on a save.
type Mapping struct {
	Source       string         `json:"source" yaml:"source"`
	Destinations DestinationSet `json:"destination" yaml:"destination"`
	Ignore       []string       `json:"ignore,omitempty" yaml:"ignore,omitempty"`
}

// 🎯 Destination is the normalized form every destination variant resolves to
type Destination struct {
	Path   string `json:"path" yaml:"path"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"` // display only
	Active bool   `json:"active" yaml:"active"`
}

// 📦 DestinationSet is the union-typed destination field. It accepts a single
// path string, a sequence of path strings, or a sequence of
// {path, name, active} objects, and normalizes all three at load time into an
// ordered list of Destination values. Plain entries are always active; object
// entries default to active unless they carry `active: false`.
type DestinationSet []Destination

// conditionalDest is the object form of a destination entry
type conditionalDest struct {
	Path   string `json:"path" yaml:"path"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Active *bool  `json:"active,omitempty" yaml:"active,omitempty"`
}

func (d conditionalDest) normalize() Destination {
	active := true
	if d.Active != nil {
		active = *d.Active
	}
	return Destination{Path: d.Path, Name: d.Name, Active: active}
}

// UnmarshalYAML decodes the three-way destination union from YAML
func (ds *DestinationSet) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var path string
		if err := value.Decode(&path); err != nil {
			return errors.Errorf("decoding destination path: %w", err)
		}
		*ds = DestinationSet{{Path: path, Active: true}}
		return nil
	case yaml.SequenceNode:
		out := make(DestinationSet, 0, len(value.Content))
		for i, item := range value.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				var path string
				if err := item.Decode(&path); err != nil {
					return errors.Errorf("decoding destination %d: %w", i, err)
				}
				out = append(out, Destination{Path: path, Active: true})
			case yaml.MappingNode:
				var cond conditionalDest
				if err := item.Decode(&cond); err != nil {
					return errors.Errorf("decoding destination %d: %w", i, err)
				}
				out = append(out, cond.normalize())
			default:
				return errors.Errorf("destination %d must be a path or an object", i)
			}
		}
		*ds = out
		return nil
	default:
		return errors.Errorf("destination must be a path or a list of destinations")
	}
}

// UnmarshalJSON decodes the three-way destination union from JSON
func (ds *DestinationSet) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*ds = DestinationSet{{Path: single, Active: true}}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.Errorf("destination must be a path or a list of destinations: %w", err)
	}

	out := make(DestinationSet, 0, len(items))
	for i, raw := range items {
		var path string
		if err := json.Unmarshal(raw, &path); err == nil {
			out = append(out, Destination{Path: path, Active: true})
			continue
		}
		var cond conditionalDest
		if err := json.Unmarshal(raw, &cond); err != nil {
			return errors.Errorf("decoding destination %d: %w", i, err)
		}
		out = append(out, cond.normalize())
	}
	*ds = out
	return nil
}

// Active returns the destinations that participate in sync, order preserved
func (ds DestinationSet) Active() []Destination {
	out := make([]Destination, 0, len(ds))
	for _, d := range ds {
		if d.Active {
			out = append(out, d)
		}
	}
	return out
}

// 🔍 Validate checks the configuration and cleans paths in place
func (cfg *Config) Validate() error {
	for i := range cfg.Workspace.Folders {
		if cfg.Workspace.Folders[i] == "" {
			return errors.Errorf("workspace.folders[%d] is empty", i)
		}
		cfg.Workspace.Folders[i] = filepath.Clean(cfg.Workspace.Folders[i])
	}

	for i := range cfg.Mappings {
		m := &cfg.Mappings[i]
		if m.Source == "" {
			return errors.Errorf("mappings[%d].source is required", i)
		}
		m.Source = filepath.Clean(m.Source)

		if len(m.Destinations) == 0 {
			return errors.Errorf("mappings[%d]: at least one destination is required", i)
		}
		for j := range m.Destinations {
			if m.Destinations[j].Path == "" {
				return errors.Errorf("mappings[%d].destination[%d].path is required", i, j)
			}
			m.Destinations[j].Path = filepath.Clean(m.Destinations[j].Path)
		}

		for _, pattern := range m.Ignore {
			if !doublestar.ValidatePattern(pattern) {
				return errors.Errorf("mappings[%d]: invalid ignore pattern %q", i, pattern)
			}
		}
	}

	return nil
}

// Location returns the path this config was loaded from
func (cfg *Config) Location() string {
	return cfg.location
}

// 📝 String returns a short human summary of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%d folder(s), %d mapping(s)", len(cfg.Workspace.Folders), len(cfg.Mappings))
}
