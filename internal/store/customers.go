package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/NguyenVietThuong2210/semir/internal/engine"
)

// Lookup returns the customer for a VIP id, or (nil, nil) on a miss.
func (s *Store) Lookup(ctx context.Context, vipID string) (*engine.CustomerRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT vip_id, name, vip_grade, registration_date, points
		FROM customers
		WHERE vip_id = ?`, vipID)

	var (
		id     string
		name   sql.NullString
		grade  sql.NullString
		regDay sql.NullString
		points sql.NullInt64
	)
	if err := row.Scan(&id, &name, &grade, &regDay, &points); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup customer: %w", err)
	}

	return &engine.CustomerRecord{
		VIPID:            id,
		Name:             name.String,
		GradeRaw:         grade.String,
		RegistrationDate: parseDay(regDay),
		Points:           points.Int64,
	}, nil
}

// GradeCounts returns all-time customer counts keyed by raw grade.
// Grade normalization is the engine's concern.
func (s *Store) GradeCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT vip_grade, COUNT(*)
		FROM customers
		GROUP BY vip_grade`)
	if err != nil {
		return nil, fmt.Errorf("query grade counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var grade sql.NullString
		var n int
		if err := rows.Scan(&grade, &n); err != nil {
			return nil, fmt.Errorf("scan grade count: %w", err)
		}
		counts[grade.String] += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grade counts: %w", err)
	}
	return counts, nil
}

// Counts returns the database-wide customer totals. Active means
// points > 0.
func (s *Store) Counts(ctx context.Context) (engine.CustomerCounts, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE points > 0),
		       COUNT(*) FILTER (WHERE points = 0)
		FROM customers`)

	var c engine.CustomerCounts
	if err := row.Scan(&c.Total, &c.Active, &c.Inactive); err != nil {
		return engine.CustomerCounts{}, fmt.Errorf("count customers: %w", err)
	}
	return c, nil
}
