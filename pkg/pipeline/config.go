package pipeline

import (
	"time"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/clean"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/dedupe"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/errors"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/identity"
)

// SourceAttr is the canonical attribute stamped on every record with the
// name of the source that produced it. Sources that list it in their
// dedup key scope uniqueness per source.
const SourceAttr = "source_sheet"

// TimestampConfig declares a source's primary timestamp handling. The
// parse convention is fixed per source, never auto-detected per row.
type TimestampConfig struct {
	// Column is the canonical attribute carrying the event timestamp.
	// Empty means the source has no primary timestamp (no watermark
	// filtering, no timestamp validation).
	Column string `yaml:"column"`

	// Convention is iso or day_first.
	Convention clean.Convention `yaml:"convention"`

	// Zone is the IANA zone timestamps without an explicit offset are
	// interpreted in. Empty means UTC.
	Zone string `yaml:"zone"`

	// Required drops records with a missing or invalid timestamp. When
	// false such records are kept with a null timestamp.
	Required bool `yaml:"required"`
}

// CleanConfig lists the per-attribute cleanup rules applied after column
// normalization.
type CleanConfig struct {
	// Timestamps are secondary timestamp attributes (join/leave times
	// and the like) normalized to UTC; unparseable values become null.
	Timestamps []string `yaml:"timestamps"`

	// Booleans are yes/no flags normalized to "Yes"/"No"/"".
	Booleans []string `yaml:"booleans"`

	// ProperCase attributes are word-capitalized.
	ProperCase []string `yaml:"proper_case"`

	// Lowercase attributes are lowercased (emails).
	Lowercase []string `yaml:"lowercase"`

	// Minutes are numeric duration attributes coerced to integers.
	Minutes []string `yaml:"minutes"`
}

// SourceConfig declares one source's pipeline behavior. Each source is
// data flowing through the one generic pipeline, not a type of its own.
type SourceConfig struct {
	// Name identifies the source in watermarks, summaries, and logs.
	Name string `yaml:"name"`

	// Table is the durable storage target.
	Table string `yaml:"table"`

	// Columns maps source column spellings (many-to-one) onto the
	// canonical attribute set.
	Columns map[string]string `yaml:"columns"`

	// Identity declares the identity key strategy. A zero value means
	// the source carries no per-entity identity.
	Identity identity.Config `yaml:"identity"`

	// Timestamp declares primary timestamp handling.
	Timestamp TimestampConfig `yaml:"timestamp"`

	// DedupKey lists the canonical attributes whose tuple defines
	// record equality for uniqueness purposes.
	DedupKey []string `yaml:"dedup_key"`

	// Lookback is the watermark safety margin; zero means the default.
	// Set from the config file's duration string, not decoded directly.
	Lookback time.Duration `yaml:"-"`

	// Aggregate, when set, collapses duplicate groups into one record
	// per entity-and-event scope.
	Aggregate *dedupe.GroupConfig `yaml:"aggregate"`

	// Clean lists per-attribute cleanup rules.
	Clean CleanConfig `yaml:"clean"`
}

// Validate checks the configuration before any fetch is attempted.
// Proceeding with a broken config would produce misleading summaries, so
// validation failures are fatal for the source.
func (c SourceConfig) Validate() error {
	if c.Name == "" {
		return errors.NewConfigError("", "name", "required")
	}
	if c.Table == "" {
		return errors.NewConfigError(c.Name, "table", "required")
	}
	if len(c.Columns) == 0 {
		return errors.NewConfigError(c.Name, "columns", "at least one column mapping is required")
	}
	if len(c.DedupKey) == 0 {
		return errors.NewConfigError(c.Name, "dedup_key", "at least one field is required")
	}
	if c.Identity.Strategy != "" {
		if err := c.Identity.Validate(c.Name); err != nil {
			return err
		}
	}
	if c.Timestamp.Column != "" && !c.Timestamp.Convention.Valid() {
		return errors.NewConfigError(c.Name, "timestamp.convention", "must be iso or day_first")
	}
	if c.Aggregate != nil {
		if err := c.Aggregate.Validate(c.Name); err != nil {
			return err
		}
	}
	return nil
}
