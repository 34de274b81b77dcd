package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sineer/routerconf/commands"
	"github.com/sineer/routerconf/driver"
	"github.com/sineer/routerconf/errs"
)

// registry lists every available Command, the same shape the teacher used
// for its formatter registry: a flat slice of implementations, selected by
// name rather than by a type switch.
func registry(cc *commands.CommandContext) []commands.Command {
	return []commands.Command{
		&commands.MergeCommand{CommandContext: cc},
		&commands.RemoveCommand{CommandContext: cc},
		&commands.BackupCommand{CommandContext: cc},
		&commands.ValidateCommand{CommandContext: cc},
	}
}

func main() {
	var (
		liveDir        string
		format         string
		logFormat      string
		lockTimeout    time.Duration
		retentionCount int
		preserveNet    bool
		preserveExist  bool
		rollbackOnFail bool
	)

	log := logrus.New()

	root := &cobra.Command{
		Use:           "routerconf",
		Short:         "Declarative router configuration management",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&liveDir, "live-dir", "/etc/config", "live configuration directory")
	root.PersistentFlags().StringVar(&format, "format", "text", "output format: text, json, yaml")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text, json")
	root.PersistentFlags().DurationVar(&lockTimeout, "lock-timeout", 5*time.Second, "directory lock acquisition timeout")
	root.PersistentFlags().IntVar(&retentionCount, "retention", 10, "number of backups to retain")
	root.PersistentFlags().BoolVar(&preserveNet, "preserve-network", true, "enforce the network-safety guard")
	root.PersistentFlags().BoolVar(&preserveExist, "preserve-existing", true, "keep existing scalar values on conflict")
	root.PersistentFlags().BoolVar(&rollbackOnFail, "rollback-on-failure", true, "roll back already-restarted services if a service restart fails")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if logFormat == "json" {
			log.SetFormatter(&logrus.JSONFormatter{})
		} else {
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cc := &commands.CommandContext{Log: log, Out: os.Stdout}

	buildDriver := func() *driver.Driver {
		opts := driver.DefaultOptions()
		opts.PreserveNetwork = preserveNet
		opts.PreserveExisting = preserveExist
		opts.RollbackOnFailure = rollbackOnFail
		opts.LockTimeout = lockTimeout
		opts.RetentionCount = retentionCount
		return driver.New(liveDir, opts)
	}

	for _, c := range registry(cc) {
		cmd := c
		sub := &cobra.Command{
			Use:   cmd.Name(),
			Short: cmd.Help(),
			RunE: func(cobraCmd *cobra.Command, args []string) error {
				cc.Driver = buildDriver()
				cc.Format = format
				return cmd.Execute(ctx, args)
			},
		}
		root.AddCommand(sub)
	}

	if err := root.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error to the spec §6.3 exit codes. Errors that never
// unwrap to an *errs.Error (e.g. cobra/flag parse failures) are treated as
// invalid-argument errors.
func exitCodeFor(err error) int {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Kind.ExitCode()
	}
	return 2
}
