package merge

import "github.com/sineer/routerconf/dedupe"

// MergeLists implements spec §4.3.1's list-merge sub-rule: concatenate live
// then overlay, preserving order, then dedupe with the strategy selected
// for listName (or the caller's override in opts).
func MergeLists(live, overlay []string, listName string, opts Options) []string {
	combined := make([]string, 0, len(live)+len(overlay))
	combined = append(combined, live...)
	combined = append(combined, overlay...)
	return dedupe.Dedupe(combined, opts.strategyFor(listName))
}
