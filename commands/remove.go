package commands

import (
	"context"
	"flag"

	"github.com/sineer/routerconf/errs"
)

// RemoveCommand runs the Remove Engine dataflow, the inverse of merge.
type RemoveCommand struct {
	*CommandContext
}

func (c *RemoveCommand) Name() string { return "remove" }

func (c *RemoveCommand) Help() string {
	return "remove <overlay-dir> — remove overlay-matched sections from the live directory"
}

func (c *RemoveCommand) Execute(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "report what would change without writing")
	noRestart := fs.Bool("no-restart", false, "skip service restarts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 1 {
		return errs.Newf(errs.KindValidation, "commands.Remove", "expected exactly one overlay directory argument")
	}

	if *dryRun {
		c.Driver.Opts.DryRun = true
	}
	if *noRestart {
		c.Driver.Opts.NoRestart = true
	}

	summary, err := c.Driver.Remove(ctx, rest[0])
	if err != nil {
		return err
	}
	return renderSummary(c.Out, c.Format, summary)
}
