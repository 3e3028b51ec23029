package clean

import (
	"fmt"
	"strings"
	"time"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/errors"
)

// Convention selects how numeric dates are interpreted. It is declared
// per source and never auto-detected per row: silently switching
// interpretation mid-batch swaps month and day.
type Convention string

const (
	// ConventionISO parses ISO 8601 style timestamps (YYYY-MM-DD first).
	ConventionISO Convention = "iso"
	// ConventionDayFirst parses DD/MM/YYYY style timestamps.
	ConventionDayFirst Convention = "day_first"
)

// Valid reports whether the convention is one of the declared constants.
func (c Convention) Valid() bool {
	return c == ConventionISO || c == ConventionDayFirst
}

// FutureTolerance is how far ahead of the current time a timestamp may
// be before it is rejected. The persisted store enforces the same bound;
// checking here reports the bad row at ingestion time instead of as an
// opaque write failure.
const FutureTolerance = 24 * time.Hour

// ErrEmptyTimestamp marks an empty-string timestamp value. It is
// reported as a distinct count from genuinely unparseable values.
var ErrEmptyTimestamp = errors.New("empty timestamp")

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Non-padded layouts accept both "13/08/2025" and "3/8/2025".
var dayFirstLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2-1-2006",
}

// DateParser parses timestamps for one source under its declared
// convention and time zone, normalizing results to UTC.
type DateParser struct {
	convention Convention
	loc        *time.Location
}

// NewDateParser creates a parser for the given convention and IANA zone
// name. An empty zone means UTC.
func NewDateParser(convention Convention, zone string) (*DateParser, error) {
	if !convention.Valid() {
		return nil, errors.NewValidationError("convention", string(convention), "must be iso or day_first")
	}
	loc := time.UTC
	if zone != "" {
		var err error
		loc, err = time.LoadLocation(zone)
		if err != nil {
			return nil, errors.WrapValidation("zone", err)
		}
	}
	return &DateParser{convention: convention, loc: loc}, nil
}

// Parse interprets s under the parser's convention. Values without an
// explicit offset are interpreted in the source zone; the result is
// always UTC. Empty strings (and the "--" placeholder some exports use)
// return ErrEmptyTimestamp.
func (p *DateParser) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" {
		return time.Time{}, ErrEmptyTimestamp
	}

	layouts := isoLayouts
	if p.convention == ConventionDayFirst {
		layouts = dayFirstLayouts
	}

	for _, layout := range layouts {
		ts, err := time.ParseInLocation(layout, s, p.loc)
		if err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable %s timestamp %q", p.convention, s)
}

// TooFarInFuture reports whether ts exceeds now by more than
// FutureTolerance.
func TooFarInFuture(ts, now time.Time) bool {
	return ts.After(now.Add(FutureTolerance))
}
