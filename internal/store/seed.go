package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NguyenVietThuong2210/semir/internal/engine"
)

// Seed loads a small deterministic demo snapshot: a handful of
// customers across grades plus a sales history that exercises the
// interesting classification cases (registration-day invoices,
// cross-season returns, a registration day split across shops, missing
// shop names, anonymous buyers). The CLI golden test runs over exactly
// this fixture.
func (s *Store) Seed(ctx context.Context) error {
	day := func(v string) time.Time {
		t, err := time.Parse(dayFormat, v)
		if err != nil {
			panic(fmt.Sprintf("seed date %q: %v", v, err))
		}
		return t
	}
	amt := func(v string) decimal.Decimal {
		return decimal.RequireFromString(v)
	}

	customers := []engine.CustomerRecord{
		{VIPID: "V001", Name: "Alice Chen", GradeRaw: "Golden", RegistrationDate: day("2025-02-10"), Points: 120},
		{VIPID: "V002", Name: "Bob Lin", GradeRaw: "Member", RegistrationDate: day("2025-03-01"), Points: 0},
		{VIPID: "V003", Name: "Carol Wu", GradeRaw: "Diamond", RegistrationDate: day("2024-11-20"), Points: 300},
		{VIPID: "V004", Name: "Dora Ng", GradeRaw: "", RegistrationDate: day("2025-05-05"), Points: 10},
	}

	txns := []engine.Transaction{
		// V001: three invoices on the registration day, one later season.
		{InvoiceNumber: "INV-1001", SalesDate: day("2025-02-10"), SalesAmount: amt("199.90"), ShopName: "Semir Plaza 森马", VIPID: "V001"},
		{InvoiceNumber: "INV-1002", SalesDate: day("2025-02-10"), SalesAmount: amt("89.50"), ShopName: "Semir Plaza 森马", VIPID: "V001"},
		{InvoiceNumber: "INV-1003", SalesDate: day("2025-02-10"), SalesAmount: amt("45.00"), ShopName: "Semir Plaza 森马", VIPID: "V001"},
		{InvoiceNumber: "INV-1004", SalesDate: day("2025-05-03"), SalesAmount: amt("120.00"), ShopName: "Semir Plaza 森马", VIPID: "V001"},

		// V002: single purchase after registration.
		{InvoiceNumber: "INV-1005", SalesDate: day("2025-03-15"), SalesAmount: amt("59.90"), ShopName: "Bala Kids 巴拉", VIPID: "V002"},

		// V003: registered long before the period, two seasons.
		{InvoiceNumber: "INV-1006", SalesDate: day("2025-02-20"), SalesAmount: amt("310.00"), ShopName: "Semir Plaza 森马", VIPID: "V003"},
		{InvoiceNumber: "INV-1007", SalesDate: day("2025-06-10"), SalesAmount: amt("75.25"), ShopName: "Semir Plaza 森马", VIPID: "V003"},

		// V004: registration day at one shop, next day at another.
		{InvoiceNumber: "INV-1008", SalesDate: day("2025-05-05"), SalesAmount: amt("150.00"), ShopName: "Semir Plaza 森马", VIPID: "V004"},
		{InvoiceNumber: "INV-1009", SalesDate: day("2025-05-06"), SalesAmount: amt("65.00"), ShopName: "Bala Kids 巴拉", VIPID: "V004"},

		// V005 has sales but no customer row: resolver miss.
		{InvoiceNumber: "INV-1010", SalesDate: day("2025-06-20"), SalesAmount: amt("39.90"), ShopName: "", VIPID: "V005"},

		// Anonymous buyers, in and out of the demo period.
		{InvoiceNumber: "INV-1011", SalesDate: day("2025-03-02"), SalesAmount: amt("25.00"), ShopName: "Semir Plaza 森马", VIPID: "0"},
		{InvoiceNumber: "INV-1012", SalesDate: day("2025-06-01"), SalesAmount: amt("18.80"), ShopName: "Bala Kids 巴拉", VIPID: ""},
		{InvoiceNumber: "INV-1013", SalesDate: day("2024-12-15"), SalesAmount: amt("99.00"), ShopName: "Semir Plaza 森马", VIPID: "None"},
	}

	if err := s.InsertCustomers(ctx, customers); err != nil {
		return fmt.Errorf("seed customers: %w", err)
	}
	if err := s.InsertTransactions(ctx, txns); err != nil {
		return fmt.Errorf("seed transactions: %w", err)
	}
	return nil
}
