// Package merge implements the Merge Engine of spec §4.3: combining an
// overlay Config into a live Config under well-defined conflict, list-merge
// and deduplication rules, emitting a change journal, and committing
// atomically.
package merge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sineer/routerconf/errs"
	"github.com/sineer/routerconf/internal/commitfile"
	"github.com/sineer/routerconf/journal"
	"github.com/sineer/routerconf/model"
)

// protectedTypes are the section Types the network-safety guard (spec
// §4.3.2) never allows to disappear from the network/firewall configs.
var protectedTypes = map[string]bool{
	"interface": true,
	"device":    true,
	"route":     true,
}

var networkSafetyConfigs = map[string]bool{
	"network":  true,
	"firewall": true,
}

// Result is the outcome of merging a single Config.
type Result struct {
	Config    *model.Config
	Journal   *journal.Journal
	Conflicts []journal.Conflict
	Modified  bool
}

// MergeConfig merges the overlay Config found at overlayPath into the live
// Config at livePath (absence of livePath is an empty Config), applies the
// network-safety guard if requested, and — unless opts.DryRun — commits the
// result atomically to livePath.
func MergeConfig(ctx context.Context, name, overlayPath, livePath string, opts Options) (*model.Config, *journal.Journal, []journal.Conflict, error) {
	const op = "merge.MergeConfig"
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, errs.New(errs.KindCancelled, op, err)
	}

	overlay, err := loadRequired(overlayPath)
	if err != nil {
		return nil, nil, nil, err
	}
	live, err := loadOptional(livePath)
	if err != nil {
		return nil, nil, nil, err
	}

	merged, conflicts := mergeConfigs(live, overlay, name, opts)

	if opts.PreserveNetwork && networkSafetyConfigs[name] {
		if err := networkSafetyCheck(name, live, merged); err != nil {
			return nil, nil, nil, err
		}
	}

	j := journal.New()
	j.Append(journal.Record{
		Action:        journal.ActionMergeConfig,
		Config:        name,
		OverlayPath:   overlayPath,
		LivePath:      livePath,
		ConflictCount: len(conflicts),
		Conflicts:     conflicts,
	})

	modified, err := configsDiffer(live, merged)
	if err != nil {
		return nil, nil, nil, err
	}

	if modified {
		if err := ctx.Err(); err != nil {
			return nil, nil, nil, errs.New(errs.KindCancelled, op, err)
		}
		if !opts.DryRun {
			if err := commitfile.Commit("merge.MergeConfig", livePath, merged); err != nil {
				return nil, nil, nil, err
			}
		}
		j.Append(journal.Record{Action: journal.ActionSaveConfig, Config: name})
	}

	return merged, j, conflicts, nil
}

// MergeDirectory merges every regular file in overlayDir against the
// same-named file in liveDir (subdirectories are ignored). A parse/merge
// failure for one config is recorded and does not prevent the remaining
// configs from being processed. A failed config has no entry in the returned
// map; its error ("name: err") is part of the combined error returned
// alongside it.
func MergeDirectory(ctx context.Context, overlayDir, liveDir string, opts Options) (map[string]Result, error) {
	const op = "merge.MergeDirectory"
	entries, err := os.ReadDir(overlayDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.KindFileNotFound, op, err)
		}
		return nil, errs.New(errs.KindIO, op, err)
	}

	results := make(map[string]Result)
	var combined *multiErr

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return results, errs.New(errs.KindCancelled, op, err)
		}
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		overlayPath := filepath.Join(overlayDir, name)
		livePath := filepath.Join(liveDir, name)

		cfg, j, conflicts, err := MergeConfig(ctx, name, overlayPath, livePath, opts)
		if err != nil {
			combined = combined.add(fmt.Errorf("%s: %w", name, err))
			continue
		}
		results[name] = Result{
			Config:    cfg,
			Journal:   j,
			Conflicts: conflicts,
			Modified:  len(j.ModifiedConfigs()) > 0,
		}
	}

	return results, combined.errorOrNil()
}

func loadRequired(path string) (*model.Config, error) {
	const op = "merge.loadRequired"
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.KindFileNotFound, op, err)
		}
		return nil, errs.New(errs.KindIO, op, err)
	}
	defer f.Close()
	return model.Parse(f)
}

func loadOptional(path string) (*model.Config, error) {
	const op = "merge.loadOptional"
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.New(), nil
		}
		return nil, errs.New(errs.KindIO, op, err)
	}
	defer f.Close()
	return model.Parse(f)
}

func configsDiffer(live, merged *model.Config) (bool, error) {
	liveText, err := model.EmitString(live)
	if err != nil {
		return false, err
	}
	mergedText, err := model.EmitString(merged)
	if err != nil {
		return false, err
	}
	return liveText != mergedText, nil
}

// networkSafetyCheck implements spec §4.3.2: every protected section of
// live must still be present (by Name) in merged, with its scalar options
// retained (value may change, the key may not vanish).
func networkSafetyCheck(configName string, live, merged *model.Config) error {
	const op = "merge.networkSafetyCheck"
	for _, s := range live.Sections {
		if s.Name == "" || !protectedTypes[s.Type] {
			continue
		}
		target, ok := merged.Named(s.Name)
		if !ok {
			return errs.Newf(errs.KindNetworkSafety, op,
				"%s: protected section %s %q missing after merge", configName, s.Type, s.Name)
		}
		for _, o := range s.Options {
			if !o.Value.IsScalar() {
				continue
			}
			if _, ok := target.Get(o.Key); !ok {
				return errs.Newf(errs.KindNetworkSafety, op,
					"%s: protected section %s %q lost option %q", configName, s.Type, s.Name, o.Key)
			}
		}
	}
	return nil
}

