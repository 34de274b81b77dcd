package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/sineer/routerconf/backup"
	"github.com/sineer/routerconf/dirlock"
	"github.com/sineer/routerconf/errs"
	"github.com/sineer/routerconf/journal"
	mergepkg "github.com/sineer/routerconf/merge"
	"github.com/sineer/routerconf/model"
	removepkg "github.com/sineer/routerconf/remove"
	"github.com/sineer/routerconf/service"
)

// splitMultiError flattens the combined per-config error MergeDirectory and
// RemoveMatching return (each config's failure is wrapped as "name: err")
// into a map keyed by config name, so Summary.Errors can report one message
// per config instead of a single opaque blob.
func splitMultiError(err error) map[string]string {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	out := make(map[string]string)
	if errors.As(err, &merr) {
		for i, e := range merr.Errors {
			msg := e.Error()
			if name, rest, ok := strings.Cut(msg, ": "); ok {
				out[name] = rest
				continue
			}
			out[fmt.Sprintf("error_%d", i)] = msg
		}
		return out
	}
	out["error"] = err.Error()
	return out
}

// Driver ties together the directory lock, backup store, merge engine,
// remove engine and service orchestrator behind the spec §6.3 contract. It
// holds no package-level state; construct one per configuration directory.
type Driver struct {
	LiveDir   string
	BackupDir string
	Opts      Options
	Runner    service.Runner
}

// New returns a Driver rooted at liveDir, storing backups under
// "<liveDir>/.backups" unless BackupDir is changed by the caller afterward.
func New(liveDir string, opts Options) *Driver {
	return &Driver{
		LiveDir:   liveDir,
		BackupDir: filepath.Join(liveDir, ".backups"),
		Opts:      opts,
	}
}

func (d *Driver) store() *backup.Store {
	s := backup.NewStore(d.BackupDir)
	if d.Opts.RetentionCount > 0 {
		s.Retention = d.Opts.RetentionCount
	}
	return s
}

// Merge runs the full merge dataflow of spec §2: acquire the directory
// lock, back up, merge the overlay into the live directory, restart
// affected services, and — on any failure — restore from the backup just
// taken.
func (d *Driver) Merge(ctx context.Context, overlayDir string) (Summary, error) {
	return d.run(ctx, overlayDir, true)
}

// Remove runs the inverse dataflow using the Remove Engine.
func (d *Driver) Remove(ctx context.Context, overlayDir string) (Summary, error) {
	return d.run(ctx, overlayDir, false)
}

func (d *Driver) run(ctx context.Context, overlayDir string, isMerge bool) (Summary, error) {
	lock := dirlock.New(d.LiveDir)
	if err := lock.Acquire(ctx, d.Opts.LockTimeout); err != nil {
		return Summary{}, err
	}
	defer lock.Release()

	st := d.store()
	handle, err := st.Backup(ctx, d.LiveDir, "pre-operation")
	if err != nil {
		return Summary{}, fmt.Errorf("backup before operation: %w", err)
	}

	var modified []string
	var perConfigErr map[string]string
	var journals map[string]*journal.Journal

	if isMerge {
		opts := mergepkg.Options{
			DryRun:           d.Opts.DryRun,
			PreserveNetwork:  d.Opts.PreserveNetwork,
			PreserveExisting: d.Opts.PreserveExisting,
		}
		results, mergeErr := mergepkg.MergeDirectory(ctx, overlayDir, d.LiveDir, opts)
		journals = make(map[string]*journal.Journal, len(results))
		for name, r := range results {
			journals[name] = r.Journal
			if r.Modified {
				modified = append(modified, name)
			}
		}
		if mergeErr != nil {
			perConfigErr = splitMultiError(mergeErr)
		}
	} else {
		opts := removepkg.Options{
			DryRun:          d.Opts.DryRun,
			PreserveNetwork: d.Opts.PreserveNetwork,
		}
		results, removeErr := removepkg.RemoveMatching(ctx, overlayDir, d.LiveDir, opts)
		journals = make(map[string]*journal.Journal, len(results))
		for name, r := range results {
			journals[name] = r.Journal
			if r.Modified {
				modified = append(modified, name)
			}
		}
		if removeErr != nil {
			perConfigErr = splitMultiError(removeErr)
		}
	}

	result := Summary{
		OK:              len(perConfigErr) == 0,
		Journals:        journals,
		Errors:          perConfigErr,
		ModifiedConfigs: modified,
	}

	if len(perConfigErr) > 0 {
		if err := st.Restore(ctx, handle, d.LiveDir); err != nil {
			return result, fmt.Errorf("rollback restore after commit failure: %w", err)
		}
		result.Backup = &handle
		result.RolledBack = true
		return result, nil
	}

	if d.Opts.NoRestart || len(modified) == 0 {
		return result, nil
	}

	svcOpts := service.DefaultOptions()
	svcOpts.DryRun = d.Opts.DryRun
	svcOpts.RollbackOnFailure = d.Opts.RollbackOnFailure
	if d.Runner != nil {
		svcOpts.Runner = d.Runner
	}

	ok, svcResults, warning := service.RestartFor(ctx, modified, svcOpts)
	result.Services = svcResults
	result.ServiceWarning = warning
	result.OK = ok

	if !ok {
		if err := st.Restore(ctx, handle, d.LiveDir); err != nil {
			return result, fmt.Errorf("rollback restore after service failure: %w", err)
		}
		result.Backup = &handle
		result.RolledBack = true
	}

	return result, nil
}

// Backup takes a standalone named snapshot of the live directory, outside
// of any merge/remove operation (spec §6.3's "backup" command).
func (d *Driver) Backup(ctx context.Context, name string) (backup.Handle, error) {
	lock := dirlock.New(d.LiveDir)
	if err := lock.Acquire(ctx, d.Opts.LockTimeout); err != nil {
		return backup.Handle{}, err
	}
	defer lock.Release()

	return d.store().Backup(ctx, d.LiveDir, name)
}

// Validate parses and re-validates every regular file in the live directory
// without modifying anything, reporting a per-config error for any file
// that fails to parse or violates a model invariant (spec §6.3's "validate"
// command).
func (d *Driver) Validate(ctx context.Context) (Summary, error) {
	entries, err := os.ReadDir(d.LiveDir)
	if err != nil {
		if os.IsNotExist(err) {
			return Summary{}, errs.New(errs.KindFileNotFound, "driver.Validate", err)
		}
		return Summary{}, errs.New(errs.KindIO, "driver.Validate", err)
	}

	errsByConfig := make(map[string]string)
	trees := make(map[string][]map[string]any)
	var nonCanonical []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return Summary{}, errs.New(errs.KindCancelled, "driver.Validate", err)
		}
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		data, err := os.ReadFile(filepath.Join(d.LiveDir, name))
		if err != nil {
			errsByConfig[name] = err.Error()
			continue
		}

		var cfg model.Config
		if err := cfg.UnmarshalText(data); err != nil {
			errsByConfig[name] = err.Error()
			continue
		}
		if err := cfg.Validate(); err != nil {
			errsByConfig[name] = err.Error()
			continue
		}

		trees[name] = cfg.Tree()
		if canonical, err := cfg.MarshalText(); err == nil && string(canonical) != string(data) {
			nonCanonical = append(nonCanonical, name)
		}
	}

	return Summary{
		OK:           len(errsByConfig) == 0,
		Errors:       errsByConfig,
		Trees:        trees,
		NonCanonical: nonCanonical,
	}, nil
}
