// Package driver composes the Config Model & Codec, List Deduplicator,
// Backup Store, Merge Engine, Remove Engine, and Service Orchestrator
// behind the single driver contract spec §6.3 requires of any caller:
// merge(overlayDir, opts), remove(overlayDir, opts), backup(name),
// validate(). It is the explicit, injected ConfigStore-equivalent of spec
// §9 — no process-wide singleton; every operation takes its Driver value.
package driver

import "time"

// Options is the full option set of spec §6.3, shared by Merge and Remove.
type Options struct {
	DryRun             bool
	PreserveNetwork    bool
	DedupeLists        bool
	PreserveExisting   bool
	NoRestart          bool
	RollbackOnFailure  bool
	LockTimeout        time.Duration
	RetentionCount     int
}

// DefaultOptions returns the spec-mandated safe defaults: PreserveNetwork,
// PreserveExisting and RollbackOnFailure all true; DedupeLists true (list
// merging always applies the deduplicator per spec §4.3.1); LockTimeout 5s
// (spec §5); RetentionCount 10 (spec §4.5).
func DefaultOptions() Options {
	return Options{
		PreserveNetwork:   true,
		DedupeLists:       true,
		PreserveExisting:  true,
		RollbackOnFailure: true,
		LockTimeout:       5 * time.Second,
		RetentionCount:    10,
	}
}
