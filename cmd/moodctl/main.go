package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"moodflow/internal/backend"
	"moodflow/internal/cli"
	"moodflow/internal/config"
	"moodflow/internal/core"
	"moodflow/internal/insights"
	applog "moodflow/internal/log"
	"moodflow/internal/render"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalOpts struct {
	backend string
	dbPath  string
	seed    string
	verbose bool
}

func newRootCmd() *cobra.Command {
	var opts globalOpts

	root := &cobra.Command{
		Use:           "moodctl",
		Short:         "Record and inspect mood entries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "data backend: sqlite|memory (default from DATA_BACKEND)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "sqlite database path (default from SQLITE_DB_PATH)")
	root.PersistentFlags().StringVar(&opts.seed, "seed", "", "JSON seed file for the memory backend")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at the configured LOG_LEVEL instead of warn")

	root.AddCommand(newAddCmd(&opts))
	root.AddCommand(newListCmd(&opts))
	root.AddCommand(newDeleteCmd(&opts))
	root.AddCommand(newStatsCmd(&opts))
	root.AddCommand(newCalendarCmd(&opts))
	return root
}

func loadBackend(ctx context.Context, opts *globalOpts) (*backend.BackendResult, error) {
	cli.LoadEnvFile()
	cfg := config.Load()
	if opts.backend != "" {
		cfg.DataBackend = opts.backend
	}
	if opts.dbPath != "" {
		cfg.SQLiteDBPath = opts.dbPath
	}
	if opts.seed != "" {
		cfg.MemorySeedFile = opts.seed
	}
	if !opts.verbose {
		cfg.LogLevel = "warn"
	}

	logger := cli.SetupLogger(cfg, applog.ComponentCLI, os.Stderr)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cli.InitBackend(ctx, logger, cfg)
}

// withBackend opens the backend for the duration of fn.
func withBackend(opts *globalOpts, fn func(ctx context.Context, res *backend.BackendResult) error) error {
	ctx := context.Background()
	res, err := loadBackend(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = res.Cleanup() }()
	return fn(ctx, res)
}

// parseOptionalDate returns nil for an empty flag value.
func parseOptionalDate(flag, value string) (*core.Date, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	d, err := core.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return &d, nil
}

func newAddCmd(opts *globalOpts) *cobra.Command {
	var moodType, notes, date string
	var score int

	cmd := &cobra.Command{
		Use:   "add --type <type> --score <1-5>",
		Short: "Record a mood entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseOptionalDate("date", date)
			if err != nil {
				return err
			}
			in := core.MoodInput{MoodType: moodType, MoodScore: score, Date: d}
			if cmd.Flags().Changed("notes") {
				in.Notes = &notes
			}
			return withBackend(opts, func(ctx context.Context, res *backend.BackendResult) error {
				e, err := res.Service.CreateEntry(ctx, in)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "recorded #%d %s (%d) on %s\n", e.ID, e.MoodType, e.MoodScore, e.Date)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&moodType, "type", "", "mood type, e.g. радость")
	cmd.Flags().IntVar(&score, "score", 0, "mood score from 1 to 5")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&date, "date", "", "entry date YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("score")
	return cmd
}

func newListCmd(opts *globalOpts) *cobra.Command {
	var date, moodType, format string
	var skip, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List mood entries, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := render.ParseFormat(format, render.FormatTable, render.FormatJSON, render.FormatYAML)
			if err != nil {
				return err
			}
			if skip < 0 {
				return fmt.Errorf("--skip must be >= 0")
			}
			if limit < 1 || limit > 100 {
				return fmt.Errorf("--limit must be between 1 and 100")
			}
			d, err := parseOptionalDate("date", date)
			if err != nil {
				return err
			}
			return withBackend(opts, func(ctx context.Context, res *backend.BackendResult) error {
				entries, err := res.Service.ListEntries(ctx, core.EntryFilter{
					From:     d,
					To:       d,
					MoodType: moodType,
					Offset:   skip,
					Limit:    limit,
					Order:    core.OrderCreatedDesc,
				})
				if err != nil {
					return err
				}
				if entries == nil {
					entries = []core.MoodEntry{}
				}
				if f == render.FormatTable {
					return render.EntriesTable(cmd.OutOrStdout(), entries)
				}
				return render.Structured(cmd.OutOrStdout(), f, entries)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "only entries on this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&moodType, "type", "", "only entries of this mood type")
	cmd.Flags().IntVar(&skip, "skip", 0, "entries to skip")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum entries to show (1-100)")
	cmd.Flags().StringVar(&format, "format", render.FormatTable, "output format: table|json|yaml")
	return cmd
}

func newDeleteCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a mood entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id < 1 {
				return fmt.Errorf("invalid entry id %q", args[0])
			}
			return withBackend(opts, func(ctx context.Context, res *backend.BackendResult) error {
				if err := res.Service.DeleteEntry(ctx, id); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted #%d\n", id)
				return nil
			})
		},
	}
}

func newStatsCmd(opts *globalOpts) *cobra.Command {
	var from, to, format string

	cmd := &cobra.Command{
		Use:   "stats --from <date> --to <date>",
		Short: "Summarize entries in an inclusive date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := render.ParseFormat(format, "text", render.FormatJSON, render.FormatYAML)
			if err != nil {
				return err
			}
			start, err := core.ParseDate(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end, err := core.ParseDate(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			return withBackend(opts, func(ctx context.Context, res *backend.BackendResult) error {
				summary, err := insights.ComputeRangeStatistics(ctx, res.Service, start, end)
				if err != nil {
					return err
				}
				if f == "text" {
					return render.StatsSummary(cmd.OutOrStdout(), start, end, summary)
				}
				return render.Structured(cmd.OutOrStdout(), f, summary)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day YYYY-MM-DD")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text|json|yaml")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newCalendarCmd(opts *globalOpts) *cobra.Command {
	var year, month int
	var format string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month of moods",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := render.ParseFormat(format, render.FormatGrid, render.FormatJSON, render.FormatYAML)
			if err != nil {
				return err
			}
			now := time.Now()
			if !cmd.Flags().Changed("year") {
				year = now.Year()
			}
			if !cmd.Flags().Changed("month") {
				month = int(now.Month())
			}
			return withBackend(opts, func(ctx context.Context, res *backend.BackendResult) error {
				view, err := insights.BuildMonthCalendar(ctx, res.Service, year, month)
				if err != nil {
					return err
				}
				if f == render.FormatGrid {
					return render.CalendarGrid(cmd.OutOrStdout(), view)
				}
				return render.Structured(cmd.OutOrStdout(), f, view)
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default current)")
	cmd.Flags().StringVar(&format, "format", render.FormatGrid, "output format: grid|json|yaml")
	return cmd
}
