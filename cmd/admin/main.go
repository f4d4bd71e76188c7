// cmd/admin/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"commitlens/internal/app"
	"commitlens/internal/config"
	"commitlens/internal/database"
	custom_errors "commitlens/internal/errors"
)

type cli struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:          "commitlens-admin",
		Short:        "Operate the commit sync pipeline by hand",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, level := app.NewLogger(os.Stderr)
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			app.SetLogLevel(cfg.LogLevel, level)
			c.cfg, c.logger = cfg, logger
			return nil
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending database migrations",
			Args:  cobra.NoArgs,
			RunE:  c.migrate,
		},
		&cobra.Command{
			Use:   "projects",
			Short: "List active projects",
			Args:  cobra.NoArgs,
			RunE:  c.projects,
		},
		&cobra.Command{
			Use:   "sync <project-id>",
			Short: "Sync one project's commits now",
			Args:  cobra.ExactArgs(1),
			RunE:  c.sync,
		},
		&cobra.Command{
			Use:   "sync-all",
			Short: "Run one sync cycle over every active project",
			Args:  cobra.NoArgs,
			RunE:  c.syncAll,
		},
		&cobra.Command{
			Use:   "backfill <project-id>",
			Short: "Retry missing summaries for one project",
			Args:  cobra.ExactArgs(1),
			RunE:  c.backfill,
		},
	)
	return root
}

func (c *cli) migrate(cmd *cobra.Command, _ []string) error {
	if err := database.Migrate(c.cfg.DBURL); err != nil {
		return err
	}
	version, dirty, err := database.MigrationVersion(c.cfg.DBURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "schema at version %d (dirty=%t)\n", version, dirty)
	return nil
}

func (c *cli) projects(cmd *cobra.Command, _ []string) error {
	a, err := app.New(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.Close()

	projects, err := a.Store.ListActiveProjects(cmd.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tName\tRepository\tCreated\n")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.GithubUrl, p.CreatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

func (c *cli) sync(cmd *cobra.Command, args []string) error {
	a, err := app.New(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.Close()

	url, err := projectURL(cmd.Context(), a.Store, args[0])
	if err != nil {
		return err
	}
	result, err := a.Engine.SyncProject(cmd.Context(), args[0], url)
	if err != nil {
		return err
	}
	return c.printJSON(result)
}

func (c *cli) syncAll(cmd *cobra.Command, _ []string) error {
	a, err := app.New(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.NewSyncer().RunCycle(cmd.Context())
}

func (c *cli) backfill(cmd *cobra.Command, args []string) error {
	a, err := app.New(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.Close()

	url, err := projectURL(cmd.Context(), a.Store, args[0])
	if err != nil {
		return err
	}
	result, err := a.Engine.BackfillSummaries(cmd.Context(), args[0], url)
	if err != nil {
		return err
	}
	return c.printJSON(result)
}

type urlLookup interface {
	GetProjectRepositoryURL(ctx context.Context, id string) (string, error)
}

func projectURL(ctx context.Context, store urlLookup, id string) (string, error) {
	url, err := store.GetProjectRepositoryURL(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", id, custom_errors.ErrProjectNotFound)
	}
	return url, err
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
