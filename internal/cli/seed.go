package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NguyenVietThuong2210/semir/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Database string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the deterministic demo snapshot",
		Long: `Create the database if needed and load the built-in demo snapshot.

Example:
  semir seed --db ./semir.db
  semir report --db ./semir.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(opts.Verbose)

			st, err := store.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			if err := st.Seed(cmd.Context()); err != nil {
				return WrapExitError(ExitFailure, "failed to seed demo data", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "demo snapshot loaded")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
