package store

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Fields flattens a record into its json field map. Both store
// implementations evaluate filters and sort orders against this
// normalized view so field names and value encodings stay consistent.
func Fields(doc any) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal record fields: %w", err)
	}
	return fields, nil
}

// NormalizeValue converts a filter or patch value into its json-normalized
// form, matching the encoding Fields produces.
func NormalizeValue(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

// Matches reports whether the normalized field map satisfies every filter.
func Matches(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if !matchesOne(fields, f) {
			return false
		}
	}
	return true
}

func matchesOne(fields map[string]any, f Filter) bool {
	actual := fields[f.Field]
	expected := NormalizeValue(f.Value)

	switch f.Op {
	case OpEqual, "":
		return compare(actual, expected) == 0
	case OpNotEqual:
		return compare(actual, expected) != 0
	case OpGreaterThan:
		return compare(actual, expected) > 0
	case OpGreaterThanOrEqual:
		return compare(actual, expected) >= 0
	case OpLessThan:
		return compare(actual, expected) < 0
	case OpLessThanOrEqual:
		return compare(actual, expected) <= 0
	case OpIn:
		values, ok := expected.([]any)
		if !ok {
			return false
		}
		for _, v := range values {
			if compare(actual, v) == 0 {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Less orders two normalized field maps by the given sort options.
func Less(a, b map[string]any, sort []SortOption) bool {
	for _, s := range sort {
		c := compare(a[s.Field], b[s.Field])
		if c == 0 {
			continue
		}
		if s.Order == SortDescending {
			return c > 0
		}
		return c < 0
	}
	return false
}

// compare orders json-normalized values. Timestamps marshal to RFC 3339
// strings, so lexicographic order matches chronological order for the
// UTC timestamps the stores write.
func compare(a, b any) int {
	switch av := a.(type) {
	case nil:
		if b == nil {
			return 0
		}
		return -1
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return -1
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case string:
		bv, ok := b.(string)
		if !ok {
			return -1
		}
		return strings.Compare(av, bv)
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return -1
		}
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	default:
		// Composite values only ever participate in equality checks.
		ar, _ := json.Marshal(a)
		br, _ := json.Marshal(b)
		return strings.Compare(string(ar), string(br))
	}
}
