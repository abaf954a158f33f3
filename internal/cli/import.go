package cli

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/NguyenVietThuong2210/semir/internal/engine"
	"github.com/NguyenVietThuong2210/semir/internal/store"
)

// importBatchSize rows per insert transaction.
const importBatchSize = 500

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
	Kind     string // "sales" | "customers"
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Import a sales or customers CSV into the snapshot",
		Long: `Import a CSV export into the SQLite snapshot.

Sales columns:     invoice_number,sales_date,sales_amount,shop_name,vip_id
Customer columns:  vip_id,name,vip_grade,registration_date,points

Dates are YYYY-MM-DD; blank dates and amounts are allowed and degrade
to the engine's defaults.

Example:
  semir import --db ./semir.db --kind sales ./sales_2025.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "sales", "csv kind (sales|customers)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	if opts.Kind != "sales" && opts.Kind != "customers" {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --kind %q (want sales or customers)", opts.Kind))
	}

	f, err := os.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open csv", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to parse csv", err)
	}
	if len(records) < 2 {
		return NewExitError(ExitCommandError, "csv has no data rows")
	}
	rows := records[1:] // skip header

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	bar := progressbar.Default(int64(len(rows)))
	imported := 0
	for start := 0; start < len(rows); start += importBatchSize {
		end := min(start+importBatchSize, len(rows))
		batch := rows[start:end]

		switch opts.Kind {
		case "sales":
			txns, err := parseSalesRows(batch, start+2)
			if err != nil {
				return WrapExitError(ExitCommandError, "bad sales row", err)
			}
			if err := st.InsertTransactions(cmd.Context(), txns); err != nil {
				return WrapExitError(ExitFailure, "failed to insert transactions", err)
			}
		case "customers":
			customers, err := parseCustomerRows(batch, start+2)
			if err != nil {
				return WrapExitError(ExitCommandError, "bad customer row", err)
			}
			if err := st.InsertCustomers(cmd.Context(), customers); err != nil {
				return WrapExitError(ExitFailure, "failed to insert customers", err)
			}
		}

		imported += len(batch)
		_ = bar.Add(len(batch))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d %s rows\n", imported, opts.Kind)
	return nil
}

func parseSalesRows(rows [][]string, firstLine int) ([]engine.Transaction, error) {
	txns := make([]engine.Transaction, 0, len(rows))
	for i, row := range rows {
		if len(row) < 5 {
			return nil, fmt.Errorf("line %d: want 5 columns, got %d", firstLine+i, len(row))
		}
		date, err := parseOptionalDay(row[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", firstLine+i, err)
		}
		amount := decimal.Zero
		if row[2] != "" {
			amount, err = decimal.NewFromString(row[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: amount %q: %w", firstLine+i, row[2], err)
			}
		}
		txns = append(txns, engine.Transaction{
			InvoiceNumber: row[0],
			SalesDate:     date,
			SalesAmount:   amount,
			ShopName:      row[3],
			VIPID:         row[4],
		})
	}
	return txns, nil
}

func parseCustomerRows(rows [][]string, firstLine int) ([]engine.CustomerRecord, error) {
	customers := make([]engine.CustomerRecord, 0, len(rows))
	for i, row := range rows {
		if len(row) < 5 {
			return nil, fmt.Errorf("line %d: want 5 columns, got %d", firstLine+i, len(row))
		}
		regDate, err := parseOptionalDay(row[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", firstLine+i, err)
		}
		var points int64
		if row[4] != "" {
			points, err = strconv.ParseInt(row[4], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: points %q: %w", firstLine+i, row[4], err)
			}
		}
		customers = append(customers, engine.CustomerRecord{
			VIPID:            row[0],
			Name:             row[1],
			GradeRaw:         row[2],
			RegistrationDate: regDate,
			Points:           points,
		})
	}
	return customers, nil
}

func parseOptionalDay(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q (want YYYY-MM-DD): %w", v, err)
	}
	return t, nil
}
