// Package normalize maps raw source columns onto a canonical attribute
// set. The mapping table is many-to-one: several known source spellings
// may feed one canonical attribute. Columns with no mapping are never
// discarded; they are preserved verbatim in the record's overflow so
// schema drift cannot cause silent data loss.
package normalize

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
)

// Mapper normalizes raw records for one source. A Mapper is created per
// source per run; it emits each missing-column warning at most once.
type Mapper struct {
	columns map[string]string // trimmed source header -> canonical attribute
	attrs   []string          // distinct canonical attributes, sorted
	logger  *zerolog.Logger

	warnedMissing map[string]bool
	warnedExtra   map[string]bool
}

// NewMapper creates a Mapper from a source-header -> canonical-attribute
// table. Header whitespace is trimmed on both the table and the data.
func NewMapper(columns map[string]string, logger *zerolog.Logger) *Mapper {
	trimmed := make(map[string]string, len(columns))
	attrSet := make(map[string]bool)
	for header, attr := range columns {
		trimmed[strings.TrimSpace(header)] = attr
		attrSet[attr] = true
	}

	attrs := make([]string, 0, len(attrSet))
	for attr := range attrSet {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)

	return &Mapper{
		columns:       trimmed,
		attrs:         attrs,
		logger:        logger,
		warnedMissing: make(map[string]bool),
		warnedExtra:   make(map[string]bool),
	}
}

// Attributes returns the canonical attribute set in stable order.
func (m *Mapper) Attributes() []string {
	return m.attrs
}

// Normalize maps one raw row onto the canonical attribute set. Matching
// is by column name only; column order carries no meaning. The full
// original row travels with the result for audit payloads.
func (m *Mapper) Normalize(raw record.Raw) record.Normalized {
	n := record.Normalized{
		Attrs:    make(map[string]record.Value, len(m.attrs)),
		Overflow: make(map[string]string),
		Original: make(map[string]string, len(raw.Values)),
	}

	for _, col := range raw.Columns {
		value := raw.Values[col]
		name := strings.TrimSpace(col)
		n.Original[name] = value

		attr, mapped := m.columns[name]
		if !mapped {
			n.Overflow[name] = value
			m.warnExtra(name)
			continue
		}
		if _, taken := n.Attrs[attr]; taken {
			// A second spelling of the same attribute in one row.
			// Keep the first match, preserve the extra verbatim.
			n.Overflow[name] = value
			continue
		}
		n.Attrs[attr] = record.String(value)
	}

	for _, attr := range m.attrs {
		if _, ok := n.Attrs[attr]; !ok {
			n.Attrs[attr] = record.Null()
			m.warnMissing(attr)
		}
	}

	return n
}

// NormalizeBatch maps a whole fetched batch.
func (m *Mapper) NormalizeBatch(raws []record.Raw) []record.Normalized {
	out := make([]record.Normalized, 0, len(raws))
	for _, raw := range raws {
		out = append(out, m.Normalize(raw))
	}
	return out
}

func (m *Mapper) warnMissing(attr string) {
	if m.warnedMissing[attr] || m.logger == nil {
		return
	}
	m.warnedMissing[attr] = true
	m.logger.Warn().
		Str("attribute", attr).
		Msg("Expected column missing from source; attribute will be null")
}

func (m *Mapper) warnExtra(column string) {
	if m.warnedExtra[column] || m.logger == nil {
		return
	}
	m.warnedExtra[column] = true
	m.logger.Warn().
		Str("column", column).
		Msg("Unmapped source column; preserving in overflow only")
}
