package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/sineer/routerconf/driver"
)

// renderSummary writes s to out in the requested format. "json" and "yaml"
// emit the full Summary as structured data (the supplemented machine
// interface); "text" (the default) prints the human-readable digest a
// terminal user actually reads.
func renderSummary(out io.Writer, format string, s driver.Summary) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "yaml":
		return yaml.NewEncoder(out).Encode(s)
	default:
		return renderSummaryText(out, s)
	}
}

func renderSummaryText(out io.Writer, s driver.Summary) error {
	if s.OK {
		fmt.Fprintln(out, "ok")
	} else {
		fmt.Fprintln(out, "failed")
	}

	names := make([]string, 0, len(s.Journals))
	for name := range s.Journals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		j := s.Journals[name]
		conflicts := j.AllConflicts()
		fmt.Fprintf(out, "  %s: %d record(s), %d conflict(s)\n", name, len(j.Records), len(conflicts))
		for _, c := range conflicts {
			fmt.Fprintf(out, "    conflict: %s.%s.%s: %s (existing=%q new=%q)\n",
				c.Config, c.Section, c.Option, c.Kind, c.Existing, c.New)
		}
	}

	if len(s.ModifiedConfigs) > 0 {
		fmt.Fprintf(out, "  modified: %v\n", s.ModifiedConfigs)
	}

	errNames := make([]string, 0, len(s.Errors))
	for name := range s.Errors {
		errNames = append(errNames, name)
	}
	sort.Strings(errNames)
	for _, name := range errNames {
		fmt.Fprintf(out, "  error: %s: %s\n", name, s.Errors[name])
	}

	svcNames := make([]string, 0, len(s.Services))
	for name := range s.Services {
		svcNames = append(svcNames, name)
	}
	sort.Strings(svcNames)
	for _, name := range svcNames {
		r := s.Services[name]
		status := "ok"
		if !r.Succeeded {
			status = "failed"
		}
		if r.RolledBack {
			status += ",rolled_back"
		}
		fmt.Fprintf(out, "  service %s: %s\n", name, status)
	}
	if s.ServiceWarning != "" {
		fmt.Fprintf(out, "  warning: %s\n", s.ServiceWarning)
	}

	if s.RolledBack && s.Backup != nil {
		fmt.Fprintf(out, "  rolled back to backup %s (%s)\n", s.Backup.Name, s.Backup.Path)
	}

	if len(s.NonCanonical) > 0 {
		sorted := append([]string(nil), s.NonCanonical...)
		sort.Strings(sorted)
		fmt.Fprintf(out, "  non-canonical form: %v\n", sorted)
	}

	return nil
}
