package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/NguyenVietThuong2210/semir/internal/engine"
	"github.com/NguyenVietThuong2210/semir/internal/store"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database  string
	From      string
	To        string
	ShopGroup string
	Groups    string // optional shop-group YAML path

	// RunTokens allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunTokens engine.RunTokenGenerator
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the return-visit analytics report",
		Long: `Run the return-visit aggregation over the sales snapshot and print
the full report.

Example:
  semir report --db ./semir.db --from 2025-02-01 --to 2025-04-30
  semir report --db ./semir.db --shop-group "Bala Group" --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.From, "from", "", "period start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.To, "to", "", "period end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.ShopGroup, "shop-group", "", "restrict to one configured shop group")
	cmd.Flags().StringVar(&opts.Groups, "groups", "", "shop-group YAML file (defaults to built-in groups)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	from, err := parseDayFlag(opts.From, "--from")
	if err != nil {
		return err
	}
	to, err := parseDayFlag(opts.To, "--to")
	if err != nil {
		return err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return NewExitError(ExitCommandError, "--to is before --from")
	}

	groups := engine.DefaultShopGroups()
	if opts.Groups != "" {
		groups, err = engine.LoadShopGroups(opts.Groups)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load shop groups", err)
		}
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	engineOpts := []engine.Option{engine.WithShopGroups(groups)}
	if opts.RunTokens != nil {
		engineOpts = append(engineOpts, engine.WithRunTokens(opts.RunTokens))
	}
	eng := engine.New(st, st, engineOpts...)

	rep, err := eng.Run(cmd.Context(), engine.Params{From: from, To: to, ShopGroup: opts.ShopGroup})
	if err != nil {
		return WrapExitError(ExitFailure, "aggregation failed", err)
	}
	if rep == nil {
		if opts.Format == "json" {
			fmt.Fprintln(cmd.OutOrStdout(), "null")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No transactions in the requested period.")
		}
		return nil
	}

	if opts.Format == "json" {
		if err := writeReportJSON(cmd.OutOrStdout(), rep); err != nil {
			return WrapExitError(ExitFailure, "failed to encode report", err)
		}
		return nil
	}
	writeReportText(cmd.OutOrStdout(), rep)
	return nil
}

// configureLogging routes slog to stderr at the level the verbose flag
// selects, matching every other command.
func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// parseDayFlag parses an optional YYYY-MM-DD flag value.
func parseDayFlag(v, flag string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, WrapExitError(ExitCommandError, fmt.Sprintf("invalid %s date %q (want YYYY-MM-DD)", flag, v), err)
	}
	return t, nil
}
