// Package commands wraps the driver package behind the pluggable Command
// interface (spec §9), directly modeled on the teacher's Formatter registry:
// a slice of implementations selected by name, each embedding a shared base
// for the fields every implementation needs.
package commands

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sineer/routerconf/driver"
)

// Command is one CLI subcommand. Name is matched against argv; Help is a
// one-line usage summary; Execute performs the operation and writes its
// human- or machine-readable result to Out.
type Command interface {
	Name() string
	Help() string
	Execute(ctx context.Context, args []string) error
}

// CommandContext holds the fields every Command needs: the driver handle to
// operate through, a logger for progress/failure reporting (the driver
// itself never logs, per spec §6.4), and the sink commands write their
// result to. Concrete commands embed a pointer to a shared CommandContext
// the way the teacher's formatters embed BaseFormatter, so a caller can
// finish configuring Driver/Format after the Command values are built.
type CommandContext struct {
	Driver *driver.Driver
	Log    *logrus.Logger
	Out    io.Writer
	Format string // "text", "json" or "yaml"
}
