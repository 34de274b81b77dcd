package merge

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sineer/routerconf/errs"
	"github.com/sineer/routerconf/journal"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// TestMergeConfig_NewSectionAndListMerge covers scenario A of the testable
// properties: an overlay introducing a brand-new named section, and merging
// a list option against an existing one with deduplication.
func TestMergeConfig_NewSectionAndListMerge(t *testing.T) {
	dir := t.TempDir()
	livePath := writeFile(t, dir, "live.conf", `
config interface 'lan'
	option proto 'static'
	list dns '8.8.8.8'
`)
	overlayPath := writeFile(t, dir, "overlay.conf", `
config interface 'lan'
	list dns '8.8.8.8'
	list dns '1.1.1.1'

config interface 'wan'
	option proto 'dhcp'
`)

	merged, j, conflicts, err := MergeConfig(context.Background(), "network", overlayPath, livePath, DefaultOptions())
	if err != nil {
		t.Fatalf("MergeConfig: %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %v", conflicts)
	}

	lan, ok := merged.Named("lan")
	if !ok {
		t.Fatal("expected lan section to survive merge")
	}
	dns, ok := lan.Get("dns")
	if !ok || !dns.IsList() {
		t.Fatal("expected dns list option")
	}
	if got, want := dns.AsList(), []string{"8.8.8.8", "1.1.1.1"}; !equalStrings(got, want) {
		t.Errorf("dns = %v, want %v", got, want)
	}

	if _, ok := merged.Named("wan"); !ok {
		t.Error("expected new wan section to be appended")
	}

	if len(j.ModifiedConfigs()) != 1 {
		t.Errorf("expected config to be recorded modified, journal: %+v", j)
	}

	data, err := os.ReadFile(livePath)
	if err != nil {
		t.Fatalf("read committed file: %v", err)
	}
	if !strings.Contains(string(data), "wan") {
		t.Errorf("expected commit to persist wan section, got:\n%s", data)
	}
}

// TestMergeConfig_ScalarConflictPreservesExisting covers scenario B: a
// scalar conflict with PreserveExisting keeps the live value and records a
// conflict.
func TestMergeConfig_ScalarConflictPreservesExisting(t *testing.T) {
	dir := t.TempDir()
	livePath := writeFile(t, dir, "live.conf", `
config interface 'lan'
	option ipaddr '192.168.1.1'
`)
	overlayPath := writeFile(t, dir, "overlay.conf", `
config interface 'lan'
	option ipaddr '192.168.2.1'
`)

	merged, _, conflicts, err := MergeConfig(context.Background(), "network", overlayPath, livePath, DefaultOptions())
	if err != nil {
		t.Fatalf("MergeConfig: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Kind != journal.ScalarConflict {
		t.Fatalf("expected one scalar conflict, got %v", conflicts)
	}

	lan, _ := merged.Named("lan")
	v, _ := lan.Get("ipaddr")
	if v.AsScalar() != "192.168.1.1" {
		t.Errorf("ipaddr = %q, want live value preserved", v.AsScalar())
	}
}

// TestMergeConfig_TypeConflictAlwaysKeepsExisting covers scenario: a
// scalar/list type mismatch always keeps the existing value, regardless of
// PreserveExisting.
func TestMergeConfig_TypeConflictAlwaysKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	livePath := writeFile(t, dir, "live.conf", `
config dhcp 'lan'
	option dns '8.8.8.8'
`)
	overlayPath := writeFile(t, dir, "overlay.conf", `
config dhcp 'lan'
	list dns '1.1.1.1'
`)

	opts := DefaultOptions()
	opts.PreserveExisting = false

	merged, _, conflicts, err := MergeConfig(context.Background(), "dhcp", overlayPath, livePath, opts)
	if err != nil {
		t.Fatalf("MergeConfig: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Kind != journal.TypeConflict {
		t.Fatalf("expected one type conflict, got %v", conflicts)
	}
	section, _ := merged.Named("lan")
	v, _ := section.Get("dns")
	if !v.IsScalar() || v.AsScalar() != "8.8.8.8" {
		t.Errorf("expected existing scalar dns to survive a type conflict, got %+v", v)
	}
}

// TestMergeConfig_NetworkSafetyGuard covers the network-safety guard's
// passing path: with PreserveNetwork on, a merge that only extends a
// protected section's options succeeds and keeps its existing options.
func TestMergeConfig_NetworkSafetyGuard(t *testing.T) {
	dir := t.TempDir()
	livePath := writeFile(t, dir, "live.conf", `
config interface 'lan'
	option proto 'static'
`)
	// MergeConfig only adds or updates sections and options, so an overlay
	// cannot make it drop "lan"; the failing path of the guard is not
	// exercised here.
	overlayPath := writeFile(t, dir, "overlay.conf", `
config interface 'lan'
	option mtu '1500'
`)

	merged, _, _, err := MergeConfig(context.Background(), "network", overlayPath, livePath, DefaultOptions())
	if err != nil {
		t.Fatalf("MergeConfig: %v", err)
	}
	lan, ok := merged.Named("lan")
	if !ok {
		t.Fatal("expected lan section to survive")
	}
	if _, ok := lan.Get("proto"); !ok {
		t.Error("expected proto to survive the network safety guard")
	}
}

func TestMergeConfig_MissingOverlayIsFileNotFound(t *testing.T) {
	dir := t.TempDir()
	livePath := filepath.Join(dir, "live.conf")
	_, _, _, err := MergeConfig(context.Background(), "network", filepath.Join(dir, "missing.conf"), livePath, DefaultOptions())
	if !errs.Is(err, errs.KindFileNotFound) {
		t.Fatalf("expected KindFileNotFound, got %v", err)
	}
}

func TestMergeConfig_DryRunDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	livePath := writeFile(t, dir, "live.conf", `
config interface 'lan'
	option proto 'static'
`)
	overlayPath := writeFile(t, dir, "overlay.conf", `
config interface 'lan'
	option proto 'dhcp'
`)
	before, _ := os.ReadFile(livePath)

	opts := DefaultOptions()
	opts.DryRun = true
	opts.PreserveExisting = false
	_, _, _, err := MergeConfig(context.Background(), "network", overlayPath, livePath, opts)
	if err != nil {
		t.Fatalf("MergeConfig: %v", err)
	}

	after, _ := os.ReadFile(livePath)
	if string(before) != string(after) {
		t.Errorf("dry-run modified the live file on disk")
	}
}

func TestMergeConfig_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	livePath := writeFile(t, dir, "live.conf", "")
	overlayPath := writeFile(t, dir, "overlay.conf", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _, err := MergeConfig(ctx, "network", overlayPath, livePath, DefaultOptions())
	if !errs.Is(err, errs.KindCancelled) {
		t.Fatalf("expected KindCancelled, got %v", err)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
