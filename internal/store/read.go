package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/NguyenVietThuong2210/semir/internal/engine"
)

// transactionColumns joins each sale to its customer row so the engine
// gets the inline reference without per-row lookups.
const transactionColumns = `
	SELECT t.invoice_number, t.sales_date, t.sales_amount, t.shop_name, t.vip_id,
	       c.vip_id, c.name, c.vip_grade, c.registration_date, c.points
	FROM sales_transactions t
	LEFT JOIN customers c ON c.vip_id = t.vip_id`

// Transactions returns the period's transactions ordered by sales
// date. Zero from/to leave that side unbounded; a nil filter matches
// every shop. The shop filter runs in Go because its matching rules
// (folded, NFC-normalized substrings) have no portable SQL form.
func (s *Store) Transactions(ctx context.Context, from, to time.Time, filter engine.ShopFilter) ([]engine.Transaction, error) {
	var conds []string
	var args []any
	if !from.IsZero() {
		conds = append(conds, "t.sales_date >= ?")
		args = append(args, from.Format(dayFormat))
	}
	if !to.IsZero() {
		conds = append(conds, "t.sales_date <= ?")
		args = append(args, to.Format(dayFormat))
	}

	query := transactionColumns
	if len(conds) > 0 {
		query += "\n\tWHERE " + strings.Join(conds, " AND ")
	}
	// Deterministic ordering: date first, then insert order.
	query += "\n\tORDER BY t.sales_date ASC, t.id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}

	if filter == nil {
		return txns, nil
	}
	filtered := txns[:0]
	for _, t := range txns {
		if filter.Match(t.ShopName) {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// AllTransactions returns every transaction regardless of period or
// shop. Feeds only the all-time anonymous-buyer block.
func (s *Store) AllTransactions(ctx context.Context) ([]engine.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, transactionColumns+"\n\tORDER BY t.sales_date ASC, t.id ASC")
	if err != nil {
		return nil, fmt.Errorf("query all transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]engine.Transaction, error) {
	var txns []engine.Transaction
	for rows.Next() {
		var (
			invoice   string
			salesDate sql.NullString
			amount    sql.NullString
			shop      sql.NullString
			vipID     sql.NullString

			custVIP    sql.NullString
			custName   sql.NullString
			custGrade  sql.NullString
			custRegDay sql.NullString
			custPoints sql.NullInt64
		)
		if err := rows.Scan(&invoice, &salesDate, &amount, &shop, &vipID,
			&custVIP, &custName, &custGrade, &custRegDay, &custPoints); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		t := engine.Transaction{
			InvoiceNumber: invoice,
			SalesDate:     parseDay(salesDate),
			SalesAmount:   parseAmount(amount),
			ShopName:      shop.String,
			VIPID:         vipID.String,
		}
		if custVIP.Valid {
			t.Customer = &engine.CustomerRecord{
				VIPID:            custVIP.String,
				Name:             custName.String,
				GradeRaw:         custGrade.String,
				RegistrationDate: parseDay(custRegDay),
				Points:           custPoints.Int64,
			}
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}
