// Package identity derives the two keys every clean record carries: the
// stable per-entity identity key used for cross-run attribution, and the
// dedup key tuple that defines record equality for uniqueness purposes.
package identity

import (
	"strings"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/clean"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/errors"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
)

// Strategy selects how a source's identity key is derived.
type Strategy string

const (
	// StrategyPhone derives identity from a phone attribute
	// (country code + 10 digits).
	StrategyPhone Strategy = "phone"
	// StrategyEmail derives identity from an email attribute.
	StrategyEmail Strategy = "email"
)

// Config declares one source's identity strategy.
type Config struct {
	Strategy Strategy `yaml:"strategy"`

	// Column is the canonical attribute the strategy reads.
	Column string `yaml:"column"`

	// Fallback optionally names an email attribute used when a
	// phone-primary source has no usable phone. Without a fallback such
	// records are dropped as invalid-phone.
	Fallback string `yaml:"fallback"`

	// CountryCode prefixes phone identities; empty means "91".
	CountryCode string `yaml:"country_code"`
}

// Validate checks the config before any fetch is attempted.
func (c Config) Validate(source string) error {
	switch c.Strategy {
	case StrategyPhone, StrategyEmail:
	default:
		return errors.NewConfigError(source, "identity.strategy", "must be phone or email")
	}
	if c.Column == "" {
		return errors.NewConfigError(source, "identity.column", "required")
	}
	return nil
}

// Builder derives identity keys for one source.
type Builder struct {
	cfg Config
}

// NewBuilder creates a Builder for a validated Config.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// Apply canonicalizes the identity attributes in place and returns the
// identity key. For phone strategies the phone attribute is rewritten to
// its 10-digit form (or nulled when invalid) and emails are lowercased.
// ok=false means the record has no usable identity and must be dropped.
func (b *Builder) Apply(attrs map[string]record.Value) (string, bool) {
	switch b.cfg.Strategy {
	case StrategyEmail:
		email := canonicalEmail(attrs, b.cfg.Column)
		return email, email != ""
	default:
		return b.applyPhone(attrs)
	}
}

func (b *Builder) applyPhone(attrs map[string]record.Value) (string, bool) {
	raw := attrs[b.cfg.Column].Or("")
	phone, ok := clean.NormalizePhone(raw)
	if ok {
		attrs[b.cfg.Column] = record.String(phone)
		key, _ := clean.PhoneIdentity(phone, b.cfg.CountryCode)
		return key, true
	}

	if !attrs[b.cfg.Column].IsBlank() {
		attrs[b.cfg.Column] = record.Null()
	}

	if b.cfg.Fallback == "" {
		return "", false
	}
	email := canonicalEmail(attrs, b.cfg.Fallback)
	return email, email != ""
}

func canonicalEmail(attrs map[string]record.Value, attr string) string {
	v := attrs[attr]
	if v.IsBlank() {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(v.Str))
	attrs[attr] = record.String(email)
	return email
}

// dedupSep separates dedup key components. A control character keeps
// composite keys unambiguous for values containing commas or pipes.
const dedupSep = "\x1f"

// DedupKey joins the named attributes into the record's uniqueness key.
// Null components are coalesced to the empty-string sentinel first, so
// two independently-null fields compare equal while "Mumbai" and null do
// not.
func DedupKey(attrs map[string]record.Value, fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = attrs[f].Or("")
	}
	return strings.Join(parts, dedupSep)
}
