package main

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"shutterdesk/internal/database"
	"shutterdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

func TestParseProjectRow(t *testing.T) {
	row := []string{
		"7", "Anna Petrova", "Wedding Gold", "Wedding", "2026-06-12", "14:00",
		"Riverside Loft", "editing", "20000", "5000", "5000", "15000", "1/2",
		"2026-01-05 10:00:00", "2026-01-20 18:30:00",
	}

	legacy, err := parseProjectRow(row)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if legacy.LegacyID != 7 || legacy.ClientName != "Anna Petrova" {
		t.Errorf("unexpected identity: %+v", legacy)
	}
	if legacy.Status != models.StatusEditing {
		t.Errorf("status: want Editing, got %q", legacy.Status)
	}
	if legacy.Price != 20000 || legacy.Deposit != 5000 || legacy.Paid != 5000 {
		t.Errorf("money: %+v", legacy)
	}
	if legacy.RevisionsUsed != 1 || legacy.RevisionLimit != 2 {
		t.Errorf("revisions: %d/%d", legacy.RevisionsUsed, legacy.RevisionLimit)
	}
	if legacy.EventDate.Format("2006-01-02") != "2026-06-12" {
		t.Errorf("event date: %v", legacy.EventDate)
	}

	t.Run("ShortRowPadded", func(t *testing.T) {
		short, err := parseProjectRow([]string{"3", "Boris", "", "", "", "", "", "", "8000"})
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if short.Price != 8000 || short.RevisionLimit != models.DefaultRevisionLimit {
			t.Errorf("unexpected: %+v", short)
		}
	})

	t.Run("EmptyClient", func(t *testing.T) {
		if _, err := parseProjectRow([]string{"3", " ", "", "", "", "", "", "", "8000"}); err == nil {
			t.Errorf("expected error for empty client")
		}
	})

	t.Run("BadPrice", func(t *testing.T) {
		if _, err := parseProjectRow([]string{"3", "Boris", "", "", "", "", "", "", "oops"}); err == nil {
			t.Errorf("expected error for bad price")
		}
	})

	t.Run("BadID", func(t *testing.T) {
		if _, err := parseProjectRow([]string{"zero", "Boris", "", "", "", "", "", "", "8000"}); err == nil {
			t.Errorf("expected error for bad id")
		}
	})
}

func TestParsePaymentRow(t *testing.T) {
	row := []string{"1", "7", "Anna Petrova", "5000", "cash", "dep-1", "first half", "2026-01-10"}

	legacy, err := parsePaymentRow(row)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if legacy.LegacyProjectID != 7 || legacy.Amount != 5000 {
		t.Errorf("unexpected: %+v", legacy)
	}
	if legacy.Method != models.MethodCash {
		t.Errorf("method: got %q", legacy.Method)
	}
	if legacy.CreatedAt.Format("2006-01-02") != "2026-01-10" {
		t.Errorf("date: %v", legacy.CreatedAt)
	}

	t.Run("ZeroAmount", func(t *testing.T) {
		if _, err := parsePaymentRow([]string{"1", "7", "", "0", "cash"}); err == nil {
			t.Errorf("expected error for zero amount")
		}
	})

	t.Run("UnknownMethod", func(t *testing.T) {
		legacy, err := parsePaymentRow([]string{"1", "7", "", "100", "crypto"})
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if legacy.Method != models.MethodOther {
			t.Errorf("method: want Other, got %q", legacy.Method)
		}
	})
}

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"5000", 5000, false},
		{" 5 000 ", 5000, false},
		{"7500.0", 7500, false},
		{"", 0, false},
		{"12.5", 0, true},
		{"abc", 0, true},
	}

	for _, tc := range cases {
		got, err := parseMoney(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseMoney(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseMoney(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseMoney(%q): want %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2026-06-12", "12.06.2026", "2026-06-12 14:00:00", "12.06.2026 14:00"} {
		got, err := parseDate(in)
		if err != nil {
			t.Errorf("parseDate(%q): %v", in, err)
			continue
		}
		if got.Format("2006-01-02") != "2026-06-12" {
			t.Errorf("parseDate(%q): got %v", in, got)
		}
	}

	if got, err := parseDate("  "); err != nil || !got.IsZero() {
		t.Errorf("empty date: got %v, %v", got, err)
	}
	if _, err := parseDate("next friday"); err == nil {
		t.Errorf("expected error for unparseable date")
	}
}

func TestImportWorkbook(t *testing.T) {
	workbook := buildLegacyWorkbook(t)
	db := newImportDB(t)
	logger := zerolog.New(io.Discard)

	stats, err := importWorkbook(context.Background(), db, workbook, &logger)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if stats.Clients != 2 || stats.Packages != 2 || stats.Projects != 3 {
		t.Errorf("entity counts: %+v", stats)
	}
	if stats.Payments != 2 {
		t.Errorf("payments: want 2, got %d", stats.Payments)
	}
	// Одна строка платежа ссылается на несуществующий проект
	if stats.Skipped != 1 {
		t.Errorf("skipped: want 1, got %d", stats.Skipped)
	}
	// У третьего проекта в листе Paid=1000, а журнал пуст
	if stats.Mismatched != 1 {
		t.Errorf("mismatched: want 1, got %d", stats.Mismatched)
	}

	projects, err := db.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(projects))
	}

	byPrice := make(map[int64]*models.Project)
	for _, p := range projects {
		byPrice[p.Price] = p
	}

	wedding := byPrice[20000]
	if wedding == nil {
		t.Fatalf("wedding project missing")
	}
	if wedding.AmountPaid != 5000 || wedding.BalanceAmount != 15000 {
		t.Errorf("wedding totals: paid %d balance %d", wedding.AmountPaid, wedding.BalanceAmount)
	}
	if wedding.Status != models.StatusEditing {
		t.Errorf("wedding status: %q", wedding.Status)
	}
	if wedding.DepositPercent != 0.25 || wedding.DepositAmount != 5000 {
		t.Errorf("wedding split: %v/%d", wedding.DepositPercent, wedding.DepositAmount)
	}
	if wedding.RevisionsUsed != 1 || wedding.RevisionLimit != 2 {
		t.Errorf("wedding revisions: %d/%d", wedding.RevisionsUsed, wedding.RevisionLimit)
	}

	cancelled := byPrice[8000]
	if cancelled == nil {
		t.Fatalf("cancelled project missing")
	}
	if cancelled.Status != models.StatusCancelled {
		t.Errorf("cancelled status: %q", cancelled.Status)
	}
	// Журнал проигран до отмены: оплата легла, баланс закрыт
	if cancelled.AmountPaid != 8000 || cancelled.BalanceAmount != 0 {
		t.Errorf("cancelled totals: paid %d balance %d", cancelled.AmountPaid, cancelled.BalanceAmount)
	}

	payments, err := db.ListPayments(context.Background(), wedding.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}
	if payments[0].CreatedAt.Format("2006-01-02") != "2026-01-10" {
		t.Errorf("payment date not restored: %v", payments[0].CreatedAt)
	}
}

func buildLegacyWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	if _, err := f.NewSheet(projectsSheet); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if _, err := f.NewSheet(paymentsSheet); err != nil {
		t.Fatalf("new sheet: %v", err)
	}

	projectRows := [][]interface{}{
		{"ID", "Client", "Package", "Event Type", "Event Date", "Event Time", "Location", "Status", "Price", "Deposit", "Paid", "Balance", "Revisions", "Created At", "Updated At"},
		{1, "Anna Petrova", "Wedding Gold", "Wedding", "2026-06-12", "14:00", "Riverside Loft", "Editing", 20000, 5000, 5000, 15000, "1/2", "2026-01-05 10:00:00", "2026-01-20 18:30:00"},
		{2, "Boris Ivanov", "Portrait", "Portrait", "2026-02-01", "", "Studio", "cancelled", 8000, 4000, 8000, 0, "0/2", "", ""},
		{3, "Anna Petrova", "Wedding Gold", "Wedding", "2026-09-01", "", "", "New", 12000, 3000, 1000, 11000, "0/2", "", ""},
	}
	writeRows(t, f, projectsSheet, projectRows)

	paymentRows := [][]interface{}{
		{"ID", "Project ID", "Client", "Amount", "Method", "Reference", "Note", "Created At"},
		{1, 1, "Anna Petrova", 5000, "Cash", "dep-1", "deposit", "2026-01-10"},
		{2, 2, "Boris Ivanov", 8000, "Card", "", "paid in full", "02.01.2026"},
		{3, 99, "Nobody", 100, "Cash", "", "", ""},
	}
	writeRows(t, f, paymentsSheet, paymentRows)

	return f
}

func writeRows(t *testing.T, f *excelize.File, sheet string, rows [][]interface{}) {
	t.Helper()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
}

func newImportDB(t *testing.T) *database.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.db")
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(path, &logger)
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
