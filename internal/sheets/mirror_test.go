package sheets

import (
	"context"
	"os"
	"testing"
	"time"

	"shutterdesk/internal/models"
)

func TestProjectRowValues(t *testing.T) {
	eventDate := time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	updatedAt := time.Date(2026, 2, 1, 16, 45, 0, 0, time.UTC)

	project := &models.Project{
		ID:            123,
		ClientID:      1,
		PackageID:     2,
		EventType:     "Wedding",
		EventDate:     eventDate,
		EventTime:     "14:00",
		Location:      "Riverside Loft",
		Status:        models.StatusScheduled,
		Price:         20000,
		DepositAmount: 5000,
		AmountPaid:    5000,
		BalanceAmount: 15000,
		RevisionsUsed: 1,
		RevisionLimit: 2,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}

	values := projectRowValues(project, "Anna Petrova", "Wedding Gold")

	expected := []interface{}{
		int64(123),
		"Anna Petrova",
		"Wedding Gold",
		"Wedding",
		"2026-06-12",
		"14:00",
		"Riverside Loft",
		"Scheduled",
		int64(20000),
		int64(5000),
		int64(5000),
		int64(15000),
		"1/2",
		"2026-01-10 09:30:00",
		"2026-02-01 16:45:00",
	}

	if len(values) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(values))
	}

	for i, v := range values {
		if v != expected[i] {
			t.Errorf("At index %d: expected %v, got %v", i, expected[i], v)
		}
	}
}

func TestPaymentRowValues(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	payment := &models.Payment{
		ID:        9,
		ProjectID: 123,
		Amount:    5000,
		Method:    models.MethodBankTransfer,
		Reference: "INV-42",
		Note:      "deposit",
		CreatedAt: createdAt,
	}

	values := paymentRowValues(payment, "Anna Petrova")

	expected := []interface{}{
		int64(9),
		int64(123),
		"Anna Petrova",
		int64(5000),
		"Bank Transfer",
		"INV-42",
		"deposit",
		"2026-03-14 12:00:00",
	}

	if len(values) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(values))
	}

	for i, v := range values {
		if v != expected[i] {
			t.Errorf("At index %d: expected %v, got %v", i, expected[i], v)
		}
	}
}

func TestCacheOperations(t *testing.T) {
	m := &Mirror{
		projectRows: make(map[int64]int),
		paymentRows: make(map[int64]int),
	}

	m.setCachedRow(projectsSheet, 100, 5)
	row, ok := m.getCachedRow(projectsSheet, 100)
	if !ok || row != 5 {
		t.Errorf("Expected row 5, got %d (ok=%v)", row, ok)
	}

	// Кэши листов независимы
	if _, ok := m.getCachedRow(paymentsSheet, 100); ok {
		t.Errorf("Expected payment cache to be empty for id 100")
	}

	m.deleteCachedRow(projectsSheet, 100)
	if _, ok := m.getCachedRow(projectsSheet, 100); ok {
		t.Errorf("Expected row to be deleted from cache")
	}

	m.setCachedRow(projectsSheet, 200, 10)
	m.setCachedRow(paymentsSheet, 9, 4)
	m.ClearCache()
	if _, ok := m.getCachedRow(projectsSheet, 200); ok {
		t.Errorf("Expected project cache to be cleared")
	}
	if _, ok := m.getCachedRow(paymentsSheet, 9); ok {
		t.Errorf("Expected payment cache to be cleared")
	}
}

func TestRowFromUpdatedRange(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"Projects!A10:O10", 10},
		{"Payments!A7:H7", 7},
		{"Projects!A2", 2},
		{"garbage", 0},
		{"", 0},
	}

	for _, c := range cases {
		if got := rowFromUpdatedRange(c.in); got != c.want {
			t.Errorf("rowFromUpdatedRange(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestCellID(t *testing.T) {
	if got := cellID(float64(42)); got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}
	if got := cellID("123"); got != 123 {
		t.Errorf("Expected 123, got %d", got)
	}
	if got := cellID("ID"); got != 0 {
		t.Errorf("Expected 0 for header cell, got %d", got)
	}
	if got := cellID(true); got != 0 {
		t.Errorf("Expected 0 for bool cell, got %d", got)
	}
}

func TestFindRowZeroID(t *testing.T) {
	m := &Mirror{
		projectRows: make(map[int64]int),
		paymentRows: make(map[int64]int),
	}

	_, err := m.findRow(context.Background(), projectsSheet, 0)
	if err == nil {
		t.Error("Expected error for zero ID")
	}
}

func TestUpsertNilProject(t *testing.T) {
	m := &Mirror{
		projectRows: make(map[int64]int),
		paymentRows: make(map[int64]int),
	}

	if err := m.UpsertProject(context.Background(), nil, "", ""); err == nil {
		t.Error("Expected error for nil project")
	}
	if err := m.AppendPayment(context.Background(), nil, ""); err == nil {
		t.Error("Expected error for nil payment")
	}
}

func TestGetServiceAccountEmail(t *testing.T) {
	m := &Mirror{}
	content := `{"client_email": "test@example.com"}`
	tmpfile, err := os.CreateTemp("", "creds.json")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err = tmpfile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err = tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	email, err := m.GetServiceAccountEmail(tmpfile.Name())
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if email != "test@example.com" {
		t.Errorf("Expected test@example.com, got %s", email)
	}

	_, err = m.GetServiceAccountEmail("non-existent")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestNewMirror(t *testing.T) {
	// Skip this test as it requires real Google credentials
	t.Skip("Requires real Google credentials")
}
