package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
)

func attendanceConfig() GroupConfig {
	return GroupConfig{
		GroupBy: []string{"webinar_date", "phone_number|email"},
		Rules: map[string]MergeRule{
			"time_in_session_minutes": RuleSum,
			"join_time":               RuleMin,
			"leave_time":              RuleMax,
			"attended":                RuleAny,
			"user_name":               RuleFirst,
		},
	}
}

func attendee(phone, join, leave, minutes, attended, name string) record.Clean {
	return record.Clean{
		Attrs: map[string]record.Value{
			"webinar_date":            record.String("2025-08-13"),
			"phone_number":            record.String(phone),
			"email":                   record.Null(),
			"time_in_session_minutes": record.String(minutes),
			"join_time":               record.String(join),
			"leave_time":              record.String(leave),
			"attended":                record.String(attended),
			"user_name":               record.String(name),
		},
		Original: map[string]string{"Phone": phone, "Join Time": join},
	}
}

func TestAggregateMergesJoinLeaveDuration(t *testing.T) {
	agg := NewAggregator(attendanceConfig())

	a := attendee("9876543210",
		"2025-08-13T10:00:00Z", "2025-08-13T10:30:00Z", "25", "Yes", "")
	b := attendee("9876543210",
		"2025-08-13T10:05:00Z", "2025-08-13T11:00:00Z", "30", "No", "Asha Rao")

	out := agg.Aggregate([]record.Clean{a, b})
	require.Len(t, out, 1)

	merged := out[0]
	assert.Equal(t, record.String("55"), merged.Attrs["time_in_session_minutes"])
	assert.Equal(t, record.String("2025-08-13T10:00:00Z"), merged.Attrs["join_time"])
	assert.Equal(t, record.String("2025-08-13T11:00:00Z"), merged.Attrs["leave_time"])
	assert.Equal(t, record.String("Yes"), merged.Attrs["attended"])
	// First non-blank in original row order.
	assert.Equal(t, record.String("Asha Rao"), merged.Attrs["user_name"])
	// Every member's original row is retained for audit.
	assert.Len(t, merged.Sources, 2)
}

func TestAggregateFallsBackToEmailScope(t *testing.T) {
	agg := NewAggregator(attendanceConfig())

	noPhone := attendee("", "2025-08-13T10:00:00Z", "2025-08-13T10:30:00Z", "10", "Yes", "A")
	noPhone.Attrs["phone_number"] = record.Null()
	noPhone.Attrs["email"] = record.String("a@example.com")

	samePerson := attendee("", "2025-08-13T11:00:00Z", "2025-08-13T11:30:00Z", "15", "Yes", "A")
	samePerson.Attrs["phone_number"] = record.Null()
	samePerson.Attrs["email"] = record.String("a@example.com")

	other := attendee("9876543210", "2025-08-13T10:00:00Z", "2025-08-13T10:30:00Z", "20", "Yes", "B")

	out := agg.Aggregate([]record.Clean{noPhone, samePerson, other})
	assert.Len(t, out, 2)
	assert.Equal(t, record.String("25"), out[0].Attrs["time_in_session_minutes"])
}

func TestAggregateSingleMemberPassesThrough(t *testing.T) {
	agg := NewAggregator(attendanceConfig())

	only := attendee("9876543210", "2025-08-13T10:00:00Z", "2025-08-13T10:30:00Z", "25", "Yes", "Asha")
	only.DedupKey = "k"
	only.IdentityKey = "919876543210"

	out := agg.Aggregate([]record.Clean{only})
	require.Len(t, out, 1)
	assert.Equal(t, "919876543210", out[0].IdentityKey)
	assert.Len(t, out[0].Sources, 1)
}

func TestAggregateAnyRuleAllNo(t *testing.T) {
	agg := NewAggregator(attendanceConfig())

	a := attendee("9876543210", "2025-08-13T10:00:00Z", "2025-08-13T10:30:00Z", "5", "No", "A")
	b := attendee("9876543210", "2025-08-13T10:40:00Z", "2025-08-13T10:50:00Z", "5", "No", "A")

	out := agg.Aggregate([]record.Clean{a, b})
	require.Len(t, out, 1)
	assert.Equal(t, record.String("No"), out[0].Attrs["attended"])
}

func TestAggregateMinMaxIgnoreBlankTimes(t *testing.T) {
	agg := NewAggregator(attendanceConfig())

	a := attendee("9876543210", "", "2025-08-13T10:30:00Z", "5", "Yes", "A")
	b := attendee("9876543210", "2025-08-13T10:05:00Z", "", "5", "Yes", "A")

	out := agg.Aggregate([]record.Clean{a, b})
	require.Len(t, out, 1)
	assert.Equal(t, record.String("2025-08-13T10:05:00Z"), out[0].Attrs["join_time"])
	assert.Equal(t, record.String("2025-08-13T10:30:00Z"), out[0].Attrs["leave_time"])
}

func TestAggregatePreservesEventTimeOfFirstMember(t *testing.T) {
	agg := NewAggregator(attendanceConfig())

	ts := time.Date(2025, time.August, 13, 0, 0, 0, 0, time.UTC)
	a := attendee("9876543210", "2025-08-13T10:00:00Z", "2025-08-13T10:30:00Z", "5", "Yes", "A")
	a.EventTime, a.HasEventTime = ts, true
	b := attendee("9876543210", "2025-08-13T10:40:00Z", "2025-08-13T10:50:00Z", "5", "Yes", "A")
	b.EventTime, b.HasEventTime = ts.Add(time.Hour), true

	out := agg.Aggregate([]record.Clean{a, b})
	require.Len(t, out, 1)
	assert.True(t, out[0].HasEventTime)
	assert.Equal(t, ts, out[0].EventTime)
}

func TestGroupConfigValidate(t *testing.T) {
	assert.Error(t, GroupConfig{}.Validate("s"))
	assert.Error(t, GroupConfig{
		GroupBy: []string{"d"},
		Rules:   map[string]MergeRule{"x": "median"},
	}.Validate("s"))
	assert.NoError(t, attendanceConfig().Validate("s"))
}
