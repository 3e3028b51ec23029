// Package config loads the pipeline configuration file: the storage
// backend and the declarative per-source pipeline specs. Credentials
// never live in the file; sources name the environment variable that
// carries them.
package config

import (
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/errors"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/pipeline"
)

// Source kinds understood by the wiring layer.
const (
	KindSheets = "sheets"
	KindCSVAPI = "csvapi"
)

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Source is one configured source: the pipeline spec plus the adapter
// binding that tells the wiring layer where the rows come from.
type Source struct {
	pipeline.SourceConfig `yaml:",inline"`

	// Kind selects the adapter: sheets or csvapi.
	Kind string `yaml:"kind"`

	// SheetID and GID locate a spreadsheet tab (kind: sheets).
	SheetID string `yaml:"sheet_id"`
	GID     string `yaml:"gid"`

	// Endpoint is the CSV endpoint URL (kind: csvapi).
	Endpoint string `yaml:"endpoint"`

	// APIKeyEnv and TokenEnv name environment variables carrying the
	// adapter credential, keeping secrets out of the config file.
	APIKeyEnv string `yaml:"api_key_env"`
	TokenEnv  string `yaml:"token_env"`

	// LookbackRaw is the watermark safety margin as a duration string
	// ("24h"); empty means the default.
	LookbackRaw string `yaml:"lookback"`
}

// Storage selects and locates the store backend.
type Storage struct {
	// Backend is postgres, sqlite, or memory.
	Backend string `yaml:"backend"`

	// DSNEnv names the environment variable carrying the Postgres DSN.
	DSNEnv string `yaml:"dsn_env"`

	// Path is the SQLite database file.
	Path string `yaml:"path"`
}

// File is the parsed configuration file.
type File struct {
	Storage Storage  `yaml:"storage"`
	Sources []Source `yaml:"sources"`
}

// Load reads and validates a configuration file. Adapter bindings are
// validated here; the pipeline spec inside each source is validated
// again per run by the orchestrator so a bad source cannot take the
// others down.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read config", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	if len(f.Sources) == 0 {
		return nil, errors.NewConfigError("", "sources", "at least one source is required")
	}
	seen := make(map[string]bool, len(f.Sources))
	for i := range f.Sources {
		s := &f.Sources[i]
		if err := validateSource(s); err != nil {
			return nil, err
		}
		if seen[s.Name] {
			return nil, errors.NewConfigError(s.Name, "name", "duplicate source name")
		}
		seen[s.Name] = true
	}
	if err := validateStorage(f.Storage); err != nil {
		return nil, err
	}
	return &f, nil
}

func validateSource(s *Source) error {
	switch s.Kind {
	case KindSheets:
		if s.SheetID == "" {
			return errors.NewConfigError(s.Name, "sheet_id", "required for kind sheets")
		}
	case KindCSVAPI:
		if s.Endpoint == "" {
			return errors.NewConfigError(s.Name, "endpoint", "required for kind csvapi")
		}
	default:
		return errors.NewConfigError(s.Name, "kind", "must be sheets or csvapi")
	}

	if s.LookbackRaw != "" {
		d, err := time.ParseDuration(s.LookbackRaw)
		if err != nil || d < 0 {
			return errors.NewConfigError(s.Name, "lookback", "invalid duration "+s.LookbackRaw)
		}
		s.Lookback = d
	}
	return s.SourceConfig.Validate()
}

func validateStorage(st Storage) error {
	switch st.Backend {
	case BackendPostgres:
		if st.DSNEnv == "" {
			return errors.NewConfigError("", "storage.dsn_env", "required for backend postgres")
		}
	case BackendSQLite:
		if st.Path == "" {
			return errors.NewConfigError("", "storage.path", "required for backend sqlite")
		}
	case BackendMemory:
	default:
		return errors.NewConfigError("", "storage.backend", "must be postgres, sqlite, or memory")
	}
	return nil
}

// Tables returns the distinct target tables, in first-seen order.
func (f *File) Tables() []string {
	seen := make(map[string]bool, len(f.Sources))
	var tables []string
	for _, s := range f.Sources {
		if !seen[s.Table] {
			seen[s.Table] = true
			tables = append(tables, s.Table)
		}
	}
	return tables
}

// Pipelines returns the pipeline specs of all sources, in file order.
func (f *File) Pipelines() []pipeline.SourceConfig {
	cfgs := make([]pipeline.SourceConfig, len(f.Sources))
	for i, s := range f.Sources {
		cfgs[i] = s.SourceConfig
	}
	return cfgs
}
