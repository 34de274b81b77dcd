package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// fakeRunner records every Action invocation and lets a test force a named
// service to fail, to exercise the rollback path without shelling out.
type fakeRunner struct {
	failOn  string
	calls   []string
	statusBefore map[string]Status
}

func (f *fakeRunner) Status(ctx context.Context, initScriptPath string) Status {
	svc := filepath.Base(initScriptPath)
	if s, ok := f.statusBefore[svc]; ok {
		return s
	}
	return StatusRunning
}

func (f *fakeRunner) Action(ctx context.Context, initScriptPath, action string) (string, error) {
	svc := filepath.Base(initScriptPath)
	f.calls = append(f.calls, svc+":"+action)
	if action == "restart" && svc == f.failOn {
		return "failed", errFakeRestart
	}
	return "ok", nil
}

var errFakeRestart = &fakeError{"restart failed"}

type fakeError struct{ msg string }

func (e *fakeError) Error() string { return e.msg }

func makeInitScripts(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatalf("write init script %s: %v", n, err)
		}
	}
	return dir
}

func TestRestartFor_AllSucceed(t *testing.T) {
	dir := makeInitScripts(t, "network", "firewall")
	runner := &fakeRunner{}
	opts := Options{Runner: runner, InitScriptDir: dir, RollbackOnFailure: true}

	ok, results, warning := RestartFor(context.Background(), []string{"network", "firewall"}, opts)
	if !ok {
		t.Fatalf("expected success, results: %+v warning: %s", results, warning)
	}
	for _, svc := range []string{"network", "firewall"} {
		if !results[svc].Succeeded {
			t.Errorf("expected %s to succeed, got %+v", svc, results[svc])
		}
	}
}

func TestRestartFor_FailureRollsBackEarlierRestarts(t *testing.T) {
	dir := makeInitScripts(t, "network", "firewall")
	runner := &fakeRunner{failOn: "firewall", statusBefore: map[string]Status{"network": StatusRunning}}
	opts := Options{Runner: runner, InitScriptDir: dir, RollbackOnFailure: true}

	ok, results, _ := RestartFor(context.Background(), []string{"network", "firewall"}, opts)
	if ok {
		t.Fatal("expected failure")
	}
	if !results["network"].RolledBack {
		t.Errorf("expected network to be rolled back, got %+v", results["network"])
	}
	found := false
	for _, c := range runner.calls {
		if c == "network:start" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a rollback 'start' call for network, calls: %v", runner.calls)
	}
}

func TestRestartFor_UnavailableServiceSkipped(t *testing.T) {
	dir := makeInitScripts(t, "network")
	runner := &fakeRunner{}
	opts := Options{Runner: runner, InitScriptDir: dir, RollbackOnFailure: true}

	ok, results, _ := RestartFor(context.Background(), []string{"network", "firewall"}, opts)
	if !ok {
		t.Fatalf("expected overall success, results: %+v", results)
	}
	if results["firewall"].Available {
		t.Error("expected firewall to be reported unavailable (no init script on disk)")
	}
}
