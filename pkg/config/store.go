package config

import (
	"context"

	"github.com/rs/zerolog"
)

// 🗄️ Store is a read-only accessor over the mapping configuration. It holds
// no cache: every call re-reads the file, so callers always observe the
// latest saved configuration.
type Store struct {
	path string
}

// 🏭 NewStore creates a store over the config file at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the config file path backing the store
func (s *Store) Path() string {
	return s.path
}

// 📋 Mappings returns the current mapping list. A missing or unreadable
// config is not fatal: it is logged and an empty (never nil) list returned.
func (s *Store) Mappings(ctx context.Context) []Mapping {
	cfg, err := Load(ctx, s.path)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", s.path).Msg("no usable mapping configuration")
		return []Mapping{}
	}
	if len(cfg.Mappings) == 0 {
		zerolog.Ctx(ctx).Debug().Str("path", s.path).Msg("configuration has no mappings")
		return []Mapping{}
	}
	return cfg.Mappings
}

// 🗂️ Folders returns the configured workspace folders, empty when unset
func (s *Store) Folders(ctx context.Context) []string {
	cfg, err := Load(ctx, s.path)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", s.path).Msg("no usable workspace configuration")
		return []string{}
	}
	return cfg.Workspace.Folders
}
