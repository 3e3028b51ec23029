package dedupe

import (
	"strconv"
	"strings"
	"time"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/clean"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/errors"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
)

// MergeRule selects how one attribute is merged across a duplicate group.
type MergeRule string

const (
	// RuleSum totals numeric duration-like attributes.
	RuleSum MergeRule = "sum"
	// RuleMin keeps the earliest timestamp (start-of-interval fields).
	RuleMin MergeRule = "min"
	// RuleMax keeps the latest timestamp (end-of-interval fields).
	RuleMax MergeRule = "max"
	// RuleAny ORs yes/no flags: true if true in any member.
	RuleAny MergeRule = "any"
	// RuleFirst keeps the first non-blank value in original row order.
	// Attributes without an explicit rule default to RuleFirst.
	RuleFirst MergeRule = "first"
)

// Valid reports whether the rule is one of the defined constants.
func (r MergeRule) Valid() bool {
	switch r {
	case RuleSum, RuleMin, RuleMax, RuleAny, RuleFirst:
		return true
	}
	return false
}

// GroupConfig declares how an aggregating source groups and merges rows.
type GroupConfig struct {
	// GroupBy names the attributes forming the entity-and-event scope.
	// An entry may list alternatives separated by "|" (e.g.
	// "phone_number|email"): the first non-blank one identifies the row.
	GroupBy []string `yaml:"group_by"`

	// Rules maps attributes to merge rules. Unlisted attributes merge
	// with RuleFirst.
	Rules map[string]MergeRule `yaml:"rules"`
}

// Validate checks the config before any fetch is attempted.
func (c GroupConfig) Validate(source string) error {
	if len(c.GroupBy) == 0 {
		return errors.NewConfigError(source, "aggregate.group_by", "required")
	}
	for attr, rule := range c.Rules {
		if !rule.Valid() {
			return errors.NewConfigError(source, "aggregate.rules."+attr, "unknown merge rule "+string(rule))
		}
	}
	return nil
}

// groupKeySep separates group key components.
const groupKeySep = "\x1f"

// GroupKey derives the grouping key for one record's attributes.
func (c GroupConfig) GroupKey(attrs map[string]record.Value) string {
	parts := make([]string, len(c.GroupBy))
	for i, entry := range c.GroupBy {
		for _, alt := range strings.Split(entry, "|") {
			if v := attrs[alt]; !v.IsBlank() {
				parts[i] = v.Str
				break
			}
		}
	}
	return strings.Join(parts, groupKeySep)
}

// Aggregator merges duplicate groups for one source.
type Aggregator struct {
	cfg GroupConfig
}

// NewAggregator creates an Aggregator for a validated GroupConfig.
func NewAggregator(cfg GroupConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate groups the batch by grouping key, preserving first-seen
// group order, and collapses every group to one reconciled record. The
// original row of each group member is retained in the result's Sources
// for auditability.
func (a *Aggregator) Aggregate(recs []record.Clean) []record.Reconciled {
	order := make([]string, 0, len(recs))
	groups := make(map[string][]record.Clean, len(recs))

	for _, r := range recs {
		key := a.cfg.GroupKey(r.Attrs)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	out := make([]record.Reconciled, 0, len(order))
	for _, key := range order {
		out = append(out, a.merge(groups[key]))
	}
	return out
}

func (a *Aggregator) merge(group []record.Clean) record.Reconciled {
	first := group[0]
	if len(group) == 1 {
		return record.FromClean(first)
	}

	merged := record.Reconciled{
		Attrs:        make(map[string]record.Value, len(first.Attrs)),
		Overflow:     make(map[string]string),
		IdentityKey:  first.IdentityKey,
		EventTime:    first.EventTime,
		HasEventTime: first.HasEventTime,
	}

	for attr := range first.Attrs {
		rule := a.cfg.Rules[attr]
		if !rule.Valid() {
			rule = RuleFirst
		}
		merged.Attrs[attr] = mergeAttr(group, attr, rule)
	}

	for _, r := range group {
		for k, v := range r.Overflow {
			if _, ok := merged.Overflow[k]; !ok && strings.TrimSpace(v) != "" {
				merged.Overflow[k] = v
			}
		}
		if r.Original != nil {
			merged.Sources = append(merged.Sources, r.Original)
		}
	}

	return merged
}

func mergeAttr(group []record.Clean, attr string, rule MergeRule) record.Value {
	switch rule {
	case RuleSum:
		total := 0
		for _, r := range group {
			total += clean.ParseMinutes(r.Attrs[attr].Or(""))
		}
		return record.String(strconv.Itoa(total))

	case RuleMin, RuleMax:
		var best time.Time
		found := false
		for _, r := range group {
			v := r.Attrs[attr]
			if v.IsBlank() {
				continue
			}
			ts, err := time.Parse(record.TimeLayout, v.Str)
			if err != nil {
				continue
			}
			if !found ||
				(rule == RuleMin && ts.Before(best)) ||
				(rule == RuleMax && ts.After(best)) {
				best = ts
				found = true
			}
		}
		if !found {
			return record.Null()
		}
		return record.String(best.UTC().Format(record.TimeLayout))

	case RuleAny:
		sawNo := false
		recognized := true
		for _, r := range group {
			v, canonical := clean.ParseBool(r.Attrs[attr].Or(""))
			if v {
				return record.String("Yes")
			}
			if canonical == "No" {
				sawNo = true
			} else {
				recognized = false
			}
		}
		if sawNo && recognized {
			return record.String("No")
		}
		return record.String("")

	default: // RuleFirst
		values := make([]string, len(group))
		for i, r := range group {
			values[i] = r.Attrs[attr].Or("")
		}
		if v := clean.FirstNonBlank(values); v != "" {
			return record.String(v)
		}
		return record.Null()
	}
}
