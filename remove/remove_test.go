package remove

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestRemoveMatching_NamedSection(t *testing.T) {
	overlayDir := t.TempDir()
	liveDir := t.TempDir()

	writeFile(t, liveDir, "network.conf", `
config interface 'lan'
	option proto 'static'

config interface 'wan'
	option proto 'dhcp'
`)
	writeFile(t, overlayDir, "network.conf", `
config interface 'wan'
`)

	results, err := RemoveMatching(context.Background(), overlayDir, liveDir, DefaultOptions())
	if err != nil {
		t.Fatalf("RemoveMatching: %v", err)
	}
	res, ok := results["network.conf"]
	if !ok {
		t.Fatal("expected network.conf result")
	}
	if !res.Modified {
		t.Error("expected network.conf to be modified")
	}
	if _, ok := res.Config.Named("wan"); ok {
		t.Error("expected wan section to be removed")
	}
	if _, ok := res.Config.Named("lan"); !ok {
		t.Error("expected lan section to survive")
	}
}

func TestRemoveMatching_AnonymousSectionByPositionalIndex(t *testing.T) {
	overlayDir := t.TempDir()
	liveDir := t.TempDir()

	writeFile(t, liveDir, "firewall.conf", `
config rule
	option name 'first'

config rule
	option name 'second'
`)
	writeFile(t, overlayDir, "firewall.conf", `
config rule
`)

	results, err := RemoveMatching(context.Background(), overlayDir, liveDir, DefaultOptions())
	if err != nil {
		t.Fatalf("RemoveMatching: %v", err)
	}
	res := results["firewall.conf"]
	if len(res.Config.Sections) != 1 {
		t.Fatalf("expected one surviving rule, got %d", len(res.Config.Sections))
	}
	v, _ := res.Config.Sections[0].Get("name")
	if v.AsScalar() != "second" {
		t.Errorf("expected the first positional rule removed, survivor = %q", v.AsScalar())
	}
}

func TestRemoveMatching_NetworkSafetyGuardBlocksProtectedRemoval(t *testing.T) {
	overlayDir := t.TempDir()
	liveDir := t.TempDir()

	writeFile(t, liveDir, "network.conf", `
config interface 'lan'
	option proto 'static'
`)
	writeFile(t, overlayDir, "network.conf", `
config interface 'lan'
`)

	opts := DefaultOptions()
	opts.PreserveNetwork = true
	results, err := RemoveMatching(context.Background(), overlayDir, liveDir, opts)
	if err == nil {
		t.Fatal("expected network safety violation, got nil")
	}
	if _, ok := results["network.conf"]; ok {
		t.Error("expected network.conf to be absent from results after a guard failure")
	}
}

func TestRemoveMatching_SkipsConfigsNotInLiveDir(t *testing.T) {
	overlayDir := t.TempDir()
	liveDir := t.TempDir()
	writeFile(t, overlayDir, "wireless.conf", `
config wifi-device 'radio0'
`)
	results, err := RemoveMatching(context.Background(), overlayDir, liveDir, DefaultOptions())
	if err != nil {
		t.Fatalf("RemoveMatching: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for a config absent from liveDir, got %v", results)
	}
}
