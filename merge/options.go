package merge

import "github.com/sineer/routerconf/dedupe"

// Options controls merge behavior per spec §4.3 and §6.3. The zero value is
// not the safe default — use DefaultOptions.
type Options struct {
	// DryRun skips writing to disk; only the journal is produced.
	DryRun bool
	// PreserveNetwork activates the network-safety guard of spec §4.3.2.
	PreserveNetwork bool
	// PreserveExisting selects the conflict policy: true keeps the live
	// scalar value on conflict (the "safe-merge" preset default), false
	// overwrites with the overlay's value.
	PreserveExisting bool
	// StrategyOverride lets a caller pin a Strategy for a given list option
	// name instead of relying on dedupe.AutoStrategy.
	StrategyOverride map[string]dedupe.Strategy
}

// DefaultOptions returns the spec-mandated safe-merge preset:
// PreserveExisting=true, PreserveNetwork=true, not a dry run.
func DefaultOptions() Options {
	return Options{
		PreserveExisting: true,
		PreserveNetwork:  true,
	}
}

func (o Options) strategyFor(listName string) dedupe.Strategy {
	if o.StrategyOverride != nil {
		if s, ok := o.StrategyOverride[listName]; ok {
			return s
		}
	}
	return dedupe.AutoStrategy(listName)
}
