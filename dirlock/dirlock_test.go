package dirlock

import (
	"context"
	"testing"
	"time"

	"github.com/sineer/routerconf/errs"
)

func TestAcquireReleaseRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	if err := l.Acquire(context.Background(), time.Second); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestAcquireFailsWhenAlreadyHeld(t *testing.T) {
	dir := t.TempDir()
	holder := New(dir)
	if err := holder.Acquire(context.Background(), time.Second); err != nil {
		t.Fatalf("Acquire (holder): %v", err)
	}
	defer holder.Release()

	contender := New(dir)
	err := contender.Acquire(context.Background(), 100*time.Millisecond)
	if !errs.Is(err, errs.KindBusy) {
		t.Fatalf("expected KindBusy, got %v", err)
	}
}
