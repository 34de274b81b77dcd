package driver

import (
	"github.com/sineer/routerconf/backup"
	"github.com/sineer/routerconf/journal"
	"github.com/sineer/routerconf/service"
)

// Summary is the stable, JSON-marshalable report a Driver operation
// returns (spec §6.4: "the core exposes the Journal and per-operation
// Summary objects"). A non-CLI caller — e.g. the out-of-scope remote
// orchestrator — consumes exactly this shape.
type Summary struct {
	// OK is false if any config failed to parse/merge, or any service
	// restart failed (whether or not the rollback that followed succeeded).
	OK bool `json:"ok"`
	// Journals holds one Journal per config processed, keyed by config
	// name.
	Journals map[string]*journal.Journal `json:"journals"`
	// Errors holds a per-config error message for configs that failed
	// outright (spec §7 propagation policy).
	Errors map[string]string `json:"errors,omitempty"`
	// ModifiedConfigs lists every config name whose on-disk form changed
	// (or would change, in dry-run).
	ModifiedConfigs []string `json:"modified_configs,omitempty"`
	// Services holds the restart outcome of every service considered.
	Services map[string]service.ServiceResult `json:"services,omitempty"`
	// ServiceWarning carries a cycle-detection fallback warning, if any
	// (spec §4.6.2).
	ServiceWarning string `json:"service_warning,omitempty"`
	// Backup is set when a rollback occurred, naming the backup that was
	// restored.
	Backup *backup.Handle `json:"backup,omitempty"`
	// RolledBack is true if a failure triggered a restore from Backup.
	RolledBack bool `json:"rolled_back"`
	// Trees holds the parsed-tree projection (model.Config.Tree) of every
	// config considered, keyed by config name — the machine-readable report
	// view "validate --format json|yaml" exposes without merging anything.
	Trees map[string][]map[string]any `json:"trees,omitempty"`
	// NonCanonical lists configs whose on-disk bytes are not in the exact
	// form Emit would produce (e.g. hand-edited spacing or option order the
	// parser nonetheless accepts).
	NonCanonical []string `json:"non_canonical,omitempty"`
}
