package merge

import (
	"github.com/sineer/routerconf/journal"
	"github.com/sineer/routerconf/model"
)

// mergeConfigs implements spec §4.3.1. It walks overlay in overlay order,
// producing result sections in the order: first all of live's sections in
// live's order (possibly with merged options), then brand-new sections from
// overlay in overlay's order.
func mergeConfigs(live, overlay *model.Config, name string, opts Options) (*model.Config, []journal.Conflict) {
	result := live.Clone()
	var conflicts []journal.Conflict

	anonSeen := make(map[string]int) // count of overlay-anonymous-sections-of-type-T processed so far

	for _, o := range overlay.Sections {
		var target *model.Section
		var found bool

		if o.Name != "" {
			target, found = result.Named(o.Name)
		} else {
			idx := anonSeen[o.Type]
			anonSeen[o.Type] = idx + 1
			target, found = result.AnonymousIndex(o.Type, idx)
		}

		if !found {
			result.Append(newSectionFromOverlay(o, opts))
			continue
		}

		conflicts = append(conflicts, mergeOptionsInto(target, o, name, opts)...)
	}

	return result, conflicts
}

// newSectionFromOverlay deep-copies an overlay section for insertion as a
// brand-new section, deduping each of its list options against itself
// (there is no live counterpart to merge against).
func newSectionFromOverlay(o *model.Section, opts Options) *model.Section {
	cp := o.Clone()
	for i, opt := range cp.Options {
		if opt.Value.IsList() {
			deduped := dedupeSolo(opt.Value.AsList(), opt.Key, opts)
			cp.Options[i].Value = model.ListValue(deduped)
		}
	}
	return cp
}

func dedupeSolo(values []string, listName string, opts Options) []string {
	return MergeLists(nil, values, listName, opts)
}

// mergeOptionsInto merges overlay section o's options into the existing
// target section in overlay iteration order, returning any conflicts
// recorded along the way. target is mutated in place.
func mergeOptionsInto(target, o *model.Section, configName string, opts Options) []journal.Conflict {
	var conflicts []journal.Conflict

	for _, opt := range o.Options {
		existing, has := target.Get(opt.Key)
		if !has {
			if opt.Value.IsList() {
				deduped := dedupeSolo(opt.Value.AsList(), opt.Key, opts)
				target.Set(opt.Key, model.ListValue(deduped))
			} else {
				target.Set(opt.Key, opt.Value)
			}
			continue
		}

		switch {
		case existing.IsScalar() && opt.Value.IsScalar():
			if existing.AsScalar() == opt.Value.AsScalar() {
				continue
			}
			conflicts = append(conflicts, journal.Conflict{
				Config:   configName,
				Section:  sectionKey(target),
				Option:   opt.Key,
				Existing: existing.AsScalar(),
				New:      opt.Value.AsScalar(),
				Kind:     journal.ScalarConflict,
			})
			if !opts.PreserveExisting {
				target.Set(opt.Key, opt.Value)
			}

		case existing.IsList() && opt.Value.IsList():
			merged := MergeLists(existing.AsList(), opt.Value.AsList(), opt.Key, opts)
			target.Set(opt.Key, model.ListValue(merged))

		default:
			conflicts = append(conflicts, journal.Conflict{
				Config:   configName,
				Section:  sectionKey(target),
				Option:   opt.Key,
				Existing: describeValue(existing),
				New:      describeValue(opt.Value),
				Kind:     journal.TypeConflict,
			})
			// keep target's existing value unconditionally (spec §4.3.1)
		}
	}

	return conflicts
}

func sectionKey(s *model.Section) string {
	if s.Name != "" {
		return s.Name
	}
	return s.Type
}

func describeValue(v model.Value) string {
	if v.IsScalar() {
		return v.AsScalar()
	}
	return "[list]"
}
