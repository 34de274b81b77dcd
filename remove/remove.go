// Package remove implements the Remove Engine of spec §4.4: the inverse of
// merge, deleting from the live configuration the sections an overlay
// names, honoring the same network-safety guard as the merge engine.
package remove

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/sineer/routerconf/errs"
	"github.com/sineer/routerconf/internal/commitfile"
	"github.com/sineer/routerconf/journal"
	"github.com/sineer/routerconf/model"
)

var protectedTypes = map[string]bool{
	"interface": true,
	"device":    true,
	"route":     true,
}

var networkSafetyConfigs = map[string]bool{
	"network":  true,
	"firewall": true,
}

// Result reports the outcome of removing overlay-matched sections from a
// single config.
type Result struct {
	Config  *model.Config
	Journal *journal.Journal
	// Removed holds the identifier of each removed section: its Name for a
	// named section, or "type#index" for an anonymous one.
	Removed  []string
	Modified bool
}

// RemoveMatching removes, from each live file that also has a same-named
// overlay file, every section matched by an overlay section (by Name for
// named sections, by (Type, positional index) for anonymous ones). Options
// are not compared: presence in the overlay is sufficient to mark a
// section for removal.
func RemoveMatching(ctx context.Context, overlayDir, liveDir string, opts Options) (map[string]Result, error) {
	const op = "remove.RemoveMatching"
	entries, err := os.ReadDir(overlayDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.KindFileNotFound, op, err)
		}
		return nil, errs.New(errs.KindIO, op, err)
	}

	results := make(map[string]Result)
	var combined *multierror.Error

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return results, errs.New(errs.KindCancelled, op, err)
		}
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		livePath := filepath.Join(liveDir, name)
		if _, err := os.Stat(livePath); err != nil {
			if os.IsNotExist(err) {
				continue // not present in both directories; spec §4.4
			}
			combined = multierror.Append(combined, fmt.Errorf("%s: %w", name, errs.New(errs.KindIO, op, err)))
			continue
		}

		res, err := removeOne(name, filepath.Join(overlayDir, name), livePath, opts)
		if err != nil {
			combined = multierror.Append(combined, fmt.Errorf("%s: %w", name, err))
			continue
		}
		results[name] = res
	}

	return results, combined.ErrorOrNil()
}

func removeOne(name, overlayPath, livePath string, opts Options) (Result, error) {
	overlay, err := loadConfig(overlayPath)
	if err != nil {
		return Result{}, err
	}
	live, err := loadConfig(livePath)
	if err != nil {
		return Result{}, err
	}

	toRemove := make(map[*model.Section]bool)
	var removedIDs []string

	anonSeen := make(map[string]int)
	for _, o := range overlay.Sections {
		var target *model.Section
		var found bool
		var id string

		if o.Name != "" {
			target, found = live.Named(o.Name)
			id = o.Name
		} else {
			idx := anonSeen[o.Type]
			anonSeen[o.Type] = idx + 1
			target, found = live.AnonymousIndex(o.Type, idx)
			id = fmt.Sprintf("%s#%d", o.Type, idx)
		}
		if found && !toRemove[target] {
			toRemove[target] = true
			removedIDs = append(removedIDs, id)
		}
	}

	if opts.PreserveNetwork && networkSafetyConfigs[name] {
		if err := networkSafetyCheck(name, live, toRemove); err != nil {
			return Result{}, err
		}
	}

	result := model.New()
	for _, s := range live.Sections {
		if toRemove[s] {
			continue
		}
		result.Append(s.Clone())
	}

	j := journal.New()
	j.Append(journal.Record{
		Action:      journal.ActionRemoveConfig,
		Config:      name,
		OverlayPath: overlayPath,
		LivePath:    livePath,
	})

	liveText, err := model.EmitString(live)
	if err != nil {
		return Result{}, err
	}
	resultText, err := model.EmitString(result)
	if err != nil {
		return Result{}, err
	}
	modified := liveText != resultText

	if modified {
		if !opts.DryRun {
			if err := commitfile.Commit("remove.removeOne", livePath, result); err != nil {
				return Result{}, err
			}
		}
		j.Append(journal.Record{Action: journal.ActionSaveConfig, Config: name})
	}

	return Result{Config: result, Journal: j, Removed: removedIDs, Modified: modified}, nil
}

func loadConfig(path string) (*model.Config, error) {
	const op = "remove.loadConfig"
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

// networkSafetyCheck mirrors merge's guard: no section whose Type is
// protected may be removed from the network/firewall configs.
func networkSafetyCheck(configName string, live *model.Config, toRemove map[*model.Section]bool) error {
	const op = "remove.networkSafetyCheck"
	for _, s := range live.Sections {
		if !toRemove[s] || !protectedTypes[s.Type] {
			continue
		}
		return errs.Newf(errs.KindNetworkSafety, op,
			"%s: remove would delete protected section %s %q", configName, s.Type, s.Name)
	}
	return nil
}
