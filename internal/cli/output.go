package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/NguyenVietThuong2210/semir/internal/report"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Unexpected failure
	ExitCommandError = 2 // Command error (invalid flags, database not found, etc.)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// writeReportJSON renders the full report as indented JSON. This is
// the machine boundary; golden files compare exactly this output.
func writeReportJSON(w io.Writer, rep *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rep)
}

// writeReportText renders a human-readable summary of the report.
func writeReportText(w io.Writer, rep *report.Report) {
	fmt.Fprintf(w, "Run %s  period %s .. %s\n", rep.RunID, rep.DateRange.Start, rep.DateRange.End)
	if rep.SeasonHint != "" {
		fmt.Fprintf(w, "Season: %s\n", rep.SeasonHint)
	}

	ov := rep.Overview
	fmt.Fprintf(w, "\nOVERVIEW\n")
	fmt.Fprintf(w, "  active customers      %d\n", ov.ActiveCustomers)
	fmt.Fprintf(w, "  returning customers   %d (%.2f%%, all-time %.2f%%)\n", ov.ReturningCustomers, ov.ReturnRate, ov.ReturnRateAllTime)
	fmt.Fprintf(w, "  returning invoices    %d (%.2f)\n", ov.ReturningInvoices, ov.ReturningAmount)
	fmt.Fprintf(w, "  invoices / amount     %d / %.2f  (incl anonymous: %d / %.2f)\n",
		ov.TotalInvoices, ov.TotalAmount, ov.TotalInvoicesInclAnon, ov.TotalAmountInclAnon)
	fmt.Fprintf(w, "  anonymous invoices    %d\n", ov.AnonymousInvoices)
	fmt.Fprintf(w, "  new members in period %d\n", ov.NewMembersInPeriod)

	fmt.Fprintf(w, "\nBY GRADE\n")
	for _, g := range rep.ByGrade {
		fmt.Fprintf(w, "  %-10s customers=%-4d returning=%-4d rate=%6.2f%% invoices=%-5d amount=%.2f\n",
			g.Grade, g.TotalCustomers, g.ReturningCustomers, g.ReturnRate, g.TotalInvoices, g.TotalAmount)
	}

	fmt.Fprintf(w, "\nBY SEASON\n")
	for _, s := range rep.BySeason {
		fmt.Fprintf(w, "  %-16s customers=%-4d returning=%-4d rate=%6.2f%% invoices=%-5d amount=%.2f\n",
			s.Season, s.TotalCustomers, s.ReturningCustomers, s.ReturnRate, s.TotalInvoices, s.TotalAmount)
	}

	fmt.Fprintf(w, "\nBY SHOP\n")
	for _, s := range rep.ByShop {
		fmt.Fprintf(w, "  %-24s customers=%-4d returning=%-4d rate=%6.2f%% invoices=%-5d amount=%.2f\n",
			s.ShopName, s.TotalCustomers, s.ReturningCustomers, s.ReturnRate, s.TotalInvoices, s.TotalAmount)
	}

	rec := rep.Reconciliation
	fmt.Fprintf(w, "\nRECONCILIATION\n")
	fmt.Fprintf(w, "  global returning invoices %d\n", rec.GlobalReturningInvoices)
	fmt.Fprintf(w, "  shop sum %d (shortfall %d), season sum %d (shortfall %d)\n",
		rec.ShopSum, rec.ShopShortfall, rec.SeasonSum, rec.SeasonShortfall)
	for _, r := range rec.Shops {
		fmt.Fprintf(w, "  shop   %-8s %-20s short=%d pattern=%s  %v\n", r.VIPID, r.Name, r.Shortfall, r.Pattern, r.Detail)
	}
	for _, r := range rec.Seasons {
		fmt.Fprintf(w, "  season %-8s %-20s short=%d pattern=%s  %v\n", r.VIPID, r.Name, r.Shortfall, r.Pattern, r.Detail)
	}
}
