package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sineer/routerconf/errs"
)

// BackupCommand takes a standalone named snapshot of the live directory.
type BackupCommand struct {
	*CommandContext
}

func (c *BackupCommand) Name() string { return "backup" }

func (c *BackupCommand) Help() string {
	return "backup <name> — snapshot the live directory under the given name"
}

func (c *BackupCommand) Execute(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 1 {
		return errs.Newf(errs.KindValidation, "commands.Backup", "expected exactly one backup name argument")
	}

	handle, err := c.Driver.Backup(ctx, rest[0])
	if err != nil {
		return err
	}

	switch c.Format {
	case "json":
		enc := json.NewEncoder(c.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(handle)
	case "yaml":
		return yaml.NewEncoder(c.Out).Encode(handle)
	default:
		_, err := fmt.Fprintf(c.Out, "backup %s: %s (sha256:%s)\n", handle.Name, handle.Path, handle.Digest)
		return err
	}
}
