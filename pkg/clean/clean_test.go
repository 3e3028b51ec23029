package clean

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"9876543210", "9876543210", true},
		{"+91-98765-43210", "9876543210", true},
		{"91 98765 43210", "9876543210", true},
		{"(987) 654-3210", "9876543210", true},
		{"98765", "", false},
		{"", "", false},
		{"abcdefghij", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizePhone(tt.in)
		assert.Equal(t, tt.wantOK, ok, "NormalizePhone(%q) ok", tt.in)
		assert.Equal(t, tt.want, got, "NormalizePhone(%q)", tt.in)
	}
}

func TestPhoneIdentity(t *testing.T) {
	// Both spellings of the same number must yield the same identity.
	id1, ok := PhoneIdentity("+91-98765-43210", "")
	require.True(t, ok)
	id2, ok := PhoneIdentity("9876543210", "")
	require.True(t, ok)

	assert.Equal(t, "919876543210", id1)
	assert.Equal(t, id1, id2)
	assert.True(t, ValidPhoneIdentity(id1, ""))
}

func TestValidPhoneIdentity(t *testing.T) {
	assert.True(t, ValidPhoneIdentity("919876543210", "91"))
	assert.False(t, ValidPhoneIdentity("9876543210", "91"), "missing prefix")
	assert.False(t, ValidPhoneIdentity("9198765432", "91"), "too short")
	assert.False(t, ValidPhoneIdentity("91987654321x", "91"), "non-digit")
}

func TestParseISOConvention(t *testing.T) {
	p, err := NewDateParser(ConventionISO, "")
	require.NoError(t, err)

	ts, err := p.Parse("2025-08-13T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.August, 13, 0, 0, 0, 0, time.UTC), ts)

	ts, err = p.Parse("2025-08-13")
	require.NoError(t, err)
	assert.Equal(t, time.August, ts.Month())
	assert.Equal(t, 13, ts.Day())

	// A day-first literal must not silently parse under ISO.
	_, err = p.Parse("13/08/2025")
	assert.Error(t, err)
}

func TestParseDayFirstConvention(t *testing.T) {
	p, err := NewDateParser(ConventionDayFirst, "")
	require.NoError(t, err)

	ts, err := p.Parse("13/08/2025")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.August, 13, 0, 0, 0, 0, time.UTC), ts)

	// ISO literals must not parse under the day-first convention.
	_, err = p.Parse("2025-08-13")
	assert.Error(t, err)
}

func TestParseNormalizesSourceZoneToUTC(t *testing.T) {
	p, err := NewDateParser(ConventionDayFirst, "Asia/Kolkata")
	require.NoError(t, err)

	// 10:00 IST is 04:30 UTC.
	ts, err := p.Parse("13/08/2025 10:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.August, 13, 4, 30, 0, 0, time.UTC), ts)
	assert.Equal(t, time.UTC, ts.Location())
}

func TestParseKeepsExplicitOffset(t *testing.T) {
	p, err := NewDateParser(ConventionISO, "Asia/Kolkata")
	require.NoError(t, err)

	ts, err := p.Parse("2025-08-13T10:00:00+05:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.August, 13, 4, 30, 0, 0, time.UTC), ts)
}

func TestParseEmptyIsDistinctFromUnparseable(t *testing.T) {
	p, err := NewDateParser(ConventionISO, "")
	require.NoError(t, err)

	_, err = p.Parse("")
	assert.ErrorIs(t, err, ErrEmptyTimestamp)

	_, err = p.Parse("--")
	assert.ErrorIs(t, err, ErrEmptyTimestamp)

	_, err = p.Parse("not a date")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyTimestamp)
}

func TestNewDateParserRejectsUnknownConvention(t *testing.T) {
	_, err := NewDateParser("guess", "")
	assert.Error(t, err)
}

func TestTooFarInFuture(t *testing.T) {
	now := time.Date(2025, time.August, 13, 12, 0, 0, 0, time.UTC)

	assert.False(t, TooFarInFuture(now, now))
	assert.False(t, TooFarInFuture(now.Add(23*time.Hour), now))
	assert.True(t, TooFarInFuture(now.Add(25*time.Hour), now))
}

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "Asha Rao", NormalizeSpace("  Asha   Rao "))
	assert.Equal(t, "", NormalizeSpace("   "))
}

func TestProperCase(t *testing.T) {
	assert.Equal(t, "Asha Rao", ProperCase("asha RAO"))
	assert.Equal(t, "", ProperCase(""))
}

func TestParseBool(t *testing.T) {
	for _, token := range []string{"yes", "TRUE", "1", "y"} {
		v, s := ParseBool(token)
		assert.True(t, v, token)
		assert.Equal(t, "Yes", s, token)
	}
	for _, token := range []string{"no", "False", "0", "N"} {
		v, s := ParseBool(token)
		assert.False(t, v, token)
		assert.Equal(t, "No", s, token)
	}
	v, s := ParseBool("maybe")
	assert.False(t, v)
	assert.Equal(t, "", s)
}

func TestParseMinutes(t *testing.T) {
	assert.Equal(t, 25, ParseMinutes("25"))
	assert.Equal(t, 30, ParseMinutes(" 30 "))
	assert.Equal(t, 12, ParseMinutes("12.7"))
	assert.Equal(t, 0, ParseMinutes(""))
	assert.Equal(t, 0, ParseMinutes("--"))
	assert.Equal(t, 0, ParseMinutes("n/a"))
}

func TestFirstNonBlank(t *testing.T) {
	assert.Equal(t, "b", FirstNonBlank([]string{"", "  ", "b", "c"}))
	assert.Equal(t, "", FirstNonBlank([]string{"", "   "}))
}
