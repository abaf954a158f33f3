package store

import (
	"context"
	"fmt"

	"github.com/NguyenVietThuong2210/semir/internal/engine"
)

// InsertCustomers upserts customer rows in one transaction.
func (s *Store) InsertCustomers(ctx context.Context, customers []engine.CustomerRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert customers: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO customers (vip_id, name, vip_grade, registration_date, points)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(vip_id) DO UPDATE SET
			name = excluded.name,
			vip_grade = excluded.vip_grade,
			registration_date = excluded.registration_date,
			points = excluded.points`)
	if err != nil {
		return fmt.Errorf("prepare insert customers: %w", err)
	}
	defer stmt.Close()

	for _, c := range customers {
		if _, err := stmt.ExecContext(ctx, c.VIPID, c.Name, c.GradeRaw, formatDay(c.RegistrationDate), c.Points); err != nil {
			return fmt.Errorf("insert customer %s: %w", c.VIPID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert customers: %w", err)
	}
	return nil
}

// InsertTransactions appends sales rows in one transaction.
func (s *Store) InsertTransactions(ctx context.Context, txns []engine.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert transactions: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales_transactions (invoice_number, sales_date, sales_amount, shop_name, vip_id)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert transactions: %w", err)
	}
	defer stmt.Close()

	for _, t := range txns {
		if _, err := stmt.ExecContext(ctx, t.InvoiceNumber, formatDay(t.SalesDate), t.SalesAmount.String(), t.ShopName, t.VIPID); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.InvoiceNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert transactions: %w", err)
	}
	return nil
}
