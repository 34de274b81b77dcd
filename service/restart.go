package service

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sineer/routerconf/errs"
)

// Status is a service's observed run state.
type Status int

const (
	StatusUnknown Status = iota
	StatusRunning
	StatusStopped
)

// Runner invokes a service's init script. Production code uses
// ExecRunner; tests inject a fake to avoid shelling out.
type Runner interface {
	// Status reports the service's current run state.
	Status(ctx context.Context, initScriptPath string) Status
	// Action runs "<initScriptPath> <action>" (action is "start", "stop" or
	// "restart") and returns its combined output and any error.
	Action(ctx context.Context, initScriptPath, action string) (output string, err error)
}

// ExecRunner shells out to the init script via os/exec, the same mechanism
// a real OpenWrt-style /etc/init.d script is invoked with.
type ExecRunner struct{}

func (ExecRunner) Status(ctx context.Context, initScriptPath string) Status {
	out, err := exec.CommandContext(ctx, initScriptPath, "status").CombinedOutput()
	if err != nil {
		return StatusUnknown
	}
	if containsRunning(string(out)) {
		return StatusRunning
	}
	return StatusStopped
}

func (ExecRunner) Action(ctx context.Context, initScriptPath, action string) (string, error) {
	out, err := exec.CommandContext(ctx, initScriptPath, action).CombinedOutput()
	return string(out), err
}

func containsRunning(s string) bool {
	return strings.Contains(s, "running") || strings.Contains(s, "active")
}

// InitScriptDir is where service init scripts live (spec §4.6.3's "a
// well-known path"). Overridable for tests.
var InitScriptDir = "/etc/init.d"

// ServiceResult reports what happened when one service was processed by
// RestartFor.
type ServiceResult struct {
	Service      string
	Available    bool
	StatusBefore Status
	Succeeded    bool
	Output       string
	Err          error
	RolledBack   bool
}

// Options controls RestartFor's behavior (spec §4.6.3 / §6.3).
type Options struct {
	DryRun            bool
	RollbackOnFailure bool
	Runner            Runner
	InitScriptDir     string
}

// DefaultOptions returns RollbackOnFailure=true with the production
// ExecRunner.
func DefaultOptions() Options {
	return Options{RollbackOnFailure: true, Runner: ExecRunner{}, InitScriptDir: InitScriptDir}
}

type rollbackEntry struct {
	service      string
	statusBefore Status
}

// RestartFor implements spec §4.6.3/§4.6.4: map modifiedConfigs to
// services, compute a topological restart order, then restart each
// available service in order. A failure halts the loop and — when
// opts.RollbackOnFailure — rolls back every service already restarted, in
// reverse order, before returning ok=false.
func RestartFor(ctx context.Context, modifiedConfigs []string, opts Options) (ok bool, results map[string]ServiceResult, warning string) {
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	dir := opts.InitScriptDir
	if dir == "" {
		dir = InitScriptDir
	}

	services := ServicesFor(modifiedConfigs, nil)
	order, warning := TopoOrder(services, nil)

	results = make(map[string]ServiceResult, len(order))
	var stack []rollbackEntry
	ok = true

	for _, svc := range order {
		if err := ctx.Err(); err != nil {
			results[svc] = ServiceResult{Service: svc, Err: errs.New(errs.KindCancelled, "service.RestartFor", err)}
			ok = false
			break
		}

		initPath := filepath.Join(dir, svc)
		if _, err := os.Stat(initPath); err != nil {
			results[svc] = ServiceResult{Service: svc, Available: false}
			continue
		}

		statusBefore := opts.Runner.Status(ctx, initPath)

		if opts.DryRun {
			results[svc] = ServiceResult{
				Service: svc, Available: true, StatusBefore: statusBefore, Succeeded: true,
				Output: "dry-run: would restart " + svc,
			}
			stack = append(stack, rollbackEntry{service: svc, statusBefore: statusBefore})
			continue
		}

		output, err := opts.Runner.Action(ctx, initPath, "restart")
		if err != nil {
			results[svc] = ServiceResult{
				Service: svc, Available: true, StatusBefore: statusBefore, Succeeded: false,
				Output: output, Err: errs.New(errs.KindServiceFailed, "service.RestartFor", err),
			}
			ok = false
			if opts.RollbackOnFailure {
				rollback(ctx, opts, stack, results)
			}
			break
		}

		results[svc] = ServiceResult{
			Service: svc, Available: true, StatusBefore: statusBefore, Succeeded: true, Output: output,
		}
		stack = append(stack, rollbackEntry{service: svc, statusBefore: statusBefore})
	}

	return ok, results, warning
}

// rollback pops entries in reverse order, issuing "start" for a service
// that was running before, "stop" for one that was stopped, and nothing
// for "unknown". Failures are recorded but never abort further rollback
// steps (spec §4.6.4).
func rollback(ctx context.Context, opts Options, stack []rollbackEntry, results map[string]ServiceResult) {
	dir := opts.InitScriptDir
	if dir == "" {
		dir = InitScriptDir
	}
	for i := len(stack) - 1; i >= 0; i-- {
		e := stack[i]
		var action string
		switch e.statusBefore {
		case StatusRunning:
			action = "start"
		case StatusStopped:
			action = "stop"
		default:
			r := results[e.service]
			r.RolledBack = true
			results[e.service] = r
			continue
		}
		initPath := filepath.Join(dir, e.service)
		_, err := opts.Runner.Action(ctx, initPath, action) // best-effort
		r := results[e.service]
		r.RolledBack = true
		if err != nil {
			r.Err = errs.New(errs.KindServiceFailed, "service.rollback", err)
		}
		results[e.service] = r
	}
}
