// Package dedupe implements the list deduplication strategies of spec §4.2.
// Dedupe and Normalize are pure functions with no dependency on the model
// package, so both can be property-tested independently of the merge
// engine that calls them.
package dedupe

// Strategy selects how Dedupe removes duplicates from a list.
type Strategy int

const (
	// PreserveOrder keeps the first occurrence by exact string equality.
	PreserveOrder Strategy = iota
	// NetworkAware compares values under Normalize and keeps the first
	// occurrence's original string.
	NetworkAware
	// PriorityBased is identical to PreserveOrder; the distinct name
	// signals that callers must not reorder a priority-sensitive list such
	// as a protocol or match list.
	PriorityBased
)

// networkAwareNames and priorityNames are the list names AutoStrategy maps
// to NetworkAware and PriorityBased respectively.
var networkAwareNames = map[string]bool{
	"network": true,
	"server":  true,
	"entry":   true,
}

var priorityNames = map[string]bool{
	"proto": true,
	"match": true,
}

// AutoStrategy selects a Strategy from a list's option name per the table
// in spec §4.2. Callers may override the result.
func AutoStrategy(listName string) Strategy {
	if networkAwareNames[listName] {
		return NetworkAware
	}
	if priorityNames[listName] {
		return PriorityBased
	}
	return PreserveOrder
}

// Dedupe removes duplicates from values according to strategy, preserving
// the order of first occurrences. It never grows the input, every returned
// element appears in values, and it is idempotent:
// Dedupe(Dedupe(xs, s), s) == Dedupe(xs, s).
func Dedupe(values []string, strategy Strategy) []string {
	if len(values) <= 1 {
		out := make([]string, len(values))
		copy(out, values)
		return out
	}

	switch strategy {
	case NetworkAware:
		return dedupeBy(values, Normalize)
	case PreserveOrder, PriorityBased:
		return dedupeBy(values, func(s string) string { return s })
	default:
		return dedupeBy(values, func(s string) string { return s })
	}
}

func dedupeBy(values []string, key func(string) string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		k := key(v)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}
