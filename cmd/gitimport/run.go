package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/NicabarNimble/go-gitimport/internal/config"
	"github.com/NicabarNimble/go-gitimport/internal/errors"
	"github.com/NicabarNimble/go-gitimport/internal/git"
	"github.com/NicabarNimble/go-gitimport/internal/importer"
	"github.com/NicabarNimble/go-gitimport/internal/progress"
)

type runOptions struct {
	keepOnFailure bool
	retries       int
	quiet         bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{retries: -1}

	cmd := &cobra.Command{
		Use:   "run <organisation/repository>",
		Short: "Import one repository",
		Long: `Create the project on the destination git server, then mirror every ref of the
source repository into <GitDir>/<organisation>/<repository>.git.

A failed import is rolled back locally unless --keep-on-failure is given. The
project on the git server is never removed. Exit code 2 means the repository
was already imported.`,
		Example: `  gitimport run acme/widgets
  gitimport run acme/widgets --retries 5
  gitimport run acme/widgets --config /etc/gitimport.toml --keep-on-failure`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closer, err := loadConfig(root)
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx := cmd.Context()
			factory, err := newFactory(ctx, cfg)
			if err != nil {
				return err
			}
			return runImport(ctx, cmd.OutOrStdout(), cfg, factory, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.keepOnFailure, "keep-on-failure", false, "Leave a partial import on disk for inspection")
	cmd.Flags().IntVar(&opts.retries, "retries", -1, "Attempts when project creation fails transiently (default from config)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print transfer progress")

	return cmd
}

func runImport(ctx context.Context, out io.Writer, cfg *config.Config, factory *importer.Factory, opts *runOptions, target string) error {
	org, repo, err := config.ParseTarget(target)
	if err != nil {
		return fmt.Errorf("invalid repository: %w", err)
	}

	attempts := cfg.Retry.Attempts
	if opts.retries >= 0 {
		attempts = opts.retries
	}
	if attempts < 1 {
		attempts = 1
	}

	var tracker progress.Tracker
	if !opts.quiet {
		tracker = progress.NewConsoleTracker(os.Stderr)
	}

	var done *importer.Step
	err = retry.Do(
		func() error {
			step, err := factory.Create(org, repo)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			if err := step.DoImport(ctx, tracker); err != nil {
				if !opts.keepOnFailure && step.Rollback() {
					slog.Info("partial import removed", slog.String("path", step.Path()))
				}
				if errors.KindOf(err) == errors.KindProvisioningFailed && errors.IsRetryable(err) {
					return err
				}
				return retry.Unrecoverable(err)
			}

			done = step
			return nil
		},
		retry.Attempts(uint(attempts)),
		retry.Delay(cfg.RetryDelay()),
		retry.MaxDelay(time.Minute),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("import failed, retrying",
				"attempt", n+1,
				"max_attempts", attempts,
				"error", err,
			)
		}),
	)
	if err != nil {
		color.New(color.FgRed).Fprintf(out, "Import of %s failed (%s)\n", target, errors.KindOf(err))
		return err
	}

	printSummary(out, done)
	return nil
}

func printSummary(w io.Writer, step *importer.Step) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)

	green.Fprint(w, "Imported ")
	bold.Fprintln(w, step.ProjectName())
	fmt.Fprintf(w, "  Path: %s\n", step.Path())

	refs, err := git.ListRefs(step.Path())
	if err != nil {
		slog.Warn("failed to list imported refs", slog.Any("error", err))
		return
	}
	fmt.Fprintf(w, "  Refs: %d\n", len(refs))
}
