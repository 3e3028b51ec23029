// Package record defines the data carried through an ingestion pipeline:
// raw rows as delivered by a source adapter, normalized and cleaned
// records, the reconciled records written to durable storage, and the
// per-source run summary reported to operators.
package record

import (
	"encoding/json"
	"strings"
	"time"
)

// TimeLayout is the canonical string form for timestamp attributes after
// cleaning. All timestamps are normalized to UTC before formatting.
const TimeLayout = time.RFC3339

// Raw is a single row exactly as delivered by a source adapter.
// Columns preserves the source order; Values is keyed by column name.
// Raw records are consumed once per run and never retained.
type Raw struct {
	Columns []string
	Values  map[string]string
}

// NewRaw creates a Raw record from ordered column/value pairs.
func NewRaw(columns []string, values map[string]string) Raw {
	return Raw{Columns: columns, Values: values}
}

// Value is a nullable cell value. A missing source column yields a null
// Value rather than an empty string so the two can be told apart until
// dedup-key construction, where both coalesce to the empty sentinel.
type Value struct {
	Str   string
	Valid bool
}

// String returns a non-null Value.
func String(s string) Value {
	return Value{Str: s, Valid: true}
}

// Null returns a null Value.
func Null() Value {
	return Value{}
}

// IsBlank reports whether the value is null or contains only whitespace.
func (v Value) IsBlank() bool {
	return !v.Valid || strings.TrimSpace(v.Str) == ""
}

// Or returns the value's string, or def when the value is null.
func (v Value) Or(def string) string {
	if !v.Valid {
		return def
	}
	return v.Str
}

// MarshalJSON encodes null values as JSON null so stored attribute
// payloads keep the null/empty distinction.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Str)
}

// UnmarshalJSON decodes JSON null back into a null Value.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Null()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = String(s)
	return nil
}

// Normalized is a Raw record mapped onto the canonical attribute set.
// Columns with no canonical mapping are preserved verbatim in Overflow;
// canonical attributes with no matching source column are null.
// Original keeps the complete source row for audit payloads.
type Normalized struct {
	Attrs    map[string]Value
	Overflow map[string]string
	Original map[string]string
}

// Clean is a Normalized record that passed validation: phone and
// timestamp attributes are in canonical form and both keys are attached.
type Clean struct {
	Attrs    map[string]Value
	Overflow map[string]string
	Original map[string]string

	// IdentityKey is the stable per-entity identifier used for
	// cross-run attribution.
	IdentityKey string

	// DedupKey is the joined field tuple defining record equality for
	// uniqueness purposes. Null components are coalesced to "".
	DedupKey string

	// EventTime is the record's primary timestamp in UTC.
	// HasEventTime is false for sources whose storage model allows a
	// null timestamp.
	EventTime    time.Time
	HasEventTime bool
}

// Reconciled is the unit written to durable storage. For aggregating
// sources it is the collapse of a duplicate group; Sources then holds
// the original row of every group member for auditability.
type Reconciled struct {
	Attrs    map[string]Value
	Overflow map[string]string
	Sources  []map[string]string

	IdentityKey string
	DedupKey    string

	EventTime    time.Time
	HasEventTime bool
}

// FromClean converts a single Clean record into its Reconciled form.
func FromClean(c Clean) Reconciled {
	r := Reconciled{
		Attrs:       c.Attrs,
		Overflow:    c.Overflow,
		IdentityKey: c.IdentityKey,
		DedupKey:    c.DedupKey,
		EventTime:   c.EventTime,
	}
	r.HasEventTime = c.HasEventTime
	if c.Original != nil {
		r.Sources = []map[string]string{c.Original}
	}
	return r
}
