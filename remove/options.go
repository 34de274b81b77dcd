package remove

// Options controls remove behavior per spec §4.4 and §6.3, mirroring
// merge.Options for the options shared by both engines.
type Options struct {
	// DryRun skips writing to disk; only the journal is produced.
	DryRun bool
	// PreserveNetwork activates the network-safety guard of spec §4.3.2,
	// applied identically here per spec §4.4.
	PreserveNetwork bool
}

// DefaultOptions returns the spec default: PreserveNetwork=true, not a dry
// run.
func DefaultOptions() Options {
	return Options{PreserveNetwork: true}
}
