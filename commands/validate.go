package commands

import (
	"context"
	"flag"

	"github.com/sineer/routerconf/errs"
)

// ValidateCommand parses and re-validates every config in the live
// directory without modifying anything.
type ValidateCommand struct {
	*CommandContext
}

func (c *ValidateCommand) Name() string { return "validate" }

func (c *ValidateCommand) Help() string {
	return "validate — parse and check every live config file without modifying it"
}

func (c *ValidateCommand) Execute(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) != 0 {
		return errs.Newf(errs.KindValidation, "commands.Validate", "validate takes no arguments")
	}

	summary, err := c.Driver.Validate(ctx)
	if err != nil {
		return err
	}
	if err := renderSummary(c.Out, c.Format, summary); err != nil {
		return err
	}
	if !summary.OK {
		return errs.Newf(errs.KindValidation, "commands.Validate", "%d config(s) failed validation", len(summary.Errors))
	}
	return nil
}
