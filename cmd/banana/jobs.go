package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/banana-cli/internal/job"
	"github.com/jonathan/banana-cli/internal/observability"
)

// clearConcurrency bounds parallel deletes in jobs clear
const clearConcurrency = 4

var jobsCommand = &cobra.Command{
	Use:     "jobs",
	Aliases: []string{"j"},
	Short:   "List and manage generation jobs",
	Args:    cobra.NoArgs,
	RunE:    runJobsListCmd,
}

var jobsListCommand = &cobra.Command{
	Use:   "list",
	Short: "List recent jobs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runJobsListCmd,
}

var jobsShowCommand = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShowCmd,
}

var jobsDeleteCommand = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one job record",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsDeleteCmd,
}

var jobsClearCommand = &cobra.Command{
	Use:   "clear",
	Short: "Delete every job record",
	Long:  "Deletes every job record. Downloaded image files are left in place.",
	Args:  cobra.NoArgs,
	RunE:  runJobsClearCmd,
}

var (
	jobsLimit  int
	jobsStatus string
	jobsFormat string
	jobsForce  bool
)

func init() {
	for _, c := range []*cobra.Command{jobsCommand, jobsListCommand} {
		c.Flags().IntVar(&jobsLimit, "limit", job.DefaultListLimit, "Maximum number of jobs to list")
		c.Flags().StringVar(&jobsStatus, "status", "", "Only list jobs in this state (queued, running, completed, failed, cancelled)")
		c.Flags().StringVarP(&jobsFormat, "format", "f", "text", "Output format: text, json, quiet")
	}
	jobsShowCommand.Flags().StringVarP(&jobsFormat, "format", "f", "text", "Output format: text, json, quiet")
	jobsClearCommand.Flags().BoolVarP(&jobsForce, "force", "f", false, "Confirm deleting every job")

	jobsCommand.AddCommand(jobsListCommand, jobsShowCommand, jobsDeleteCommand, jobsClearCommand)
	rootCmd.AddCommand(jobsCommand)
}

// withStore runs fn with an open store
func withStore(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func runJobsListCmd(cmd *cobra.Command, _ []string) error {
	format, err := observability.ParseFormat(jobsFormat)
	if err != nil {
		return err
	}
	opts := job.ListOptions{Limit: jobsLimit}
	if jobsStatus != "" {
		if opts.State, err = job.ParseState(jobsStatus); err != nil {
			return err
		}
	}

	return withStore(cmd, func(ctx context.Context, a *app) error {
		jobs, err := a.store.List(ctx, opts)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		total, err := a.store.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count jobs: %w", err)
		}
		return observability.NewPrinter(cmd.OutOrStdout(), format).PrintJobList(jobs, total)
	})
}

func runJobsShowCmd(cmd *cobra.Command, args []string) error {
	format, err := observability.ParseFormat(jobsFormat)
	if err != nil {
		return err
	}
	return withStore(cmd, func(ctx context.Context, a *app) error {
		j, err := a.store.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get job: %w", err)
		}
		if j == nil {
			return fmt.Errorf("job not found: %s", args[0])
		}
		return observability.NewPrinter(cmd.OutOrStdout(), format).PrintJob(j)
	})
}

func runJobsDeleteCmd(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, a *app) error {
		found, err := a.store.Delete(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to delete job: %w", err)
		}
		if !found {
			return fmt.Errorf("job not found: %s", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	})
}

func runJobsClearCmd(cmd *cobra.Command, _ []string) error {
	return withStore(cmd, func(ctx context.Context, a *app) error {
		total, err := a.store.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count jobs: %w", err)
		}
		if total == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No jobs to delete.")
			return nil
		}
		if !jobsForce {
			observability.PrintWarning(cmd.ErrOrStderr(), "This will delete %d job(s). Use --force to confirm.", total)
			return nil
		}

		jobs, err := a.store.List(ctx, job.ListOptions{Limit: total})
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(clearConcurrency)
		for _, j := range jobs {
			id := j.ID
			g.Go(func() error {
				if _, err := a.store.Delete(gctx, id); err != nil {
					return fmt.Errorf("failed to delete %s: %w", id, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d job(s)\n", len(jobs))
		return nil
	})
}
