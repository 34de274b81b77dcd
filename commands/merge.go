package commands

import (
	"context"
	"flag"

	"github.com/sineer/routerconf/errs"
)

// MergeCommand runs the Merge Engine dataflow against an overlay directory.
type MergeCommand struct {
	*CommandContext
}

func (c *MergeCommand) Name() string { return "merge" }

func (c *MergeCommand) Help() string {
	return "merge <overlay-dir> — merge overlay config into the live directory"
}

func (c *MergeCommand) Execute(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "report what would change without writing")
	noRestart := fs.Bool("no-restart", false, "skip service restarts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 1 {
		return errs.Newf(errs.KindValidation, "commands.Merge", "expected exactly one overlay directory argument")
	}

	if *dryRun {
		c.Driver.Opts.DryRun = true
	}
	if *noRestart {
		c.Driver.Opts.NoRestart = true
	}

	summary, err := c.Driver.Merge(ctx, rest[0])
	if err != nil {
		return err
	}
	return renderSummary(c.Out, c.Format, summary)
}
