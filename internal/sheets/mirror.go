package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"shutterdesk/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	projectsSheet = "Projects"
	paymentsSheet = "Payments"
)

var errRowNotFound = errors.New("mirror row not found")

// Mirror keeps the studio workbook in sync with the primary store. All
// lookups go through a per-sheet row index cache keyed by record ID.
type Mirror struct {
	service       *sheets.Service
	spreadsheetID string
	projectRows   map[int64]int
	paymentRows   map[int64]int
	cacheMu       sync.RWMutex
}

func NewMirror(credentialsFile, spreadsheetID string) (*Mirror, error) {
	ctx := context.Background()

	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	// Создаем JWT конфигурацию
	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	mirror := &Mirror{
		service:       srv,
		spreadsheetID: spreadsheetID,
		projectRows:   make(map[int64]int),
		paymentRows:   make(map[int64]int),
	}

	// Warm up cache in background
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		mirror.WarmUpCache(ctx)
	}()

	// Periodic cache refresh
	go func() {
		ticker := time.NewTicker(models.SheetsCacheTTL * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			mirror.WarmUpCache(ctx)
			cancel()
		}
	}()

	return mirror, nil
}

// TestConnection проверяет подключение к таблице
func (m *Mirror) TestConnection(ctx context.Context) error {
	_, err := m.service.Spreadsheets.Values.Get(m.spreadsheetID, projectsSheet+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// GetServiceAccountEmail возвращает email сервисного аккаунта
func (m *Mirror) GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

// EnsureHeaders writes the header row of both tabs. Safe to call on
// every start.
func (m *Mirror) EnsureHeaders(ctx context.Context) error {
	projectHeaders := []interface{}{
		"ID", "Client", "Package", "Event Type", "Event Date", "Event Time",
		"Location", "Status", "Price", "Deposit", "Paid", "Balance",
		"Revisions", "Created At", "Updated At",
	}
	_, err := m.service.Spreadsheets.Values.Update(m.spreadsheetID, projectsSheet+"!A1:O1", &sheets.ValueRange{
		Values: [][]interface{}{projectHeaders},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to write project headers: %v", err)
	}

	paymentHeaders := []interface{}{
		"ID", "Project ID", "Client", "Amount", "Method", "Reference", "Note", "Created At",
	}
	_, err = m.service.Spreadsheets.Values.Update(m.spreadsheetID, paymentsSheet+"!A1:H1", &sheets.ValueRange{
		Values: [][]interface{}{paymentHeaders},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to write payment headers: %v", err)
	}
	return nil
}

// WarmUpCache populates both row index caches by reading the ID columns.
func (m *Mirror) WarmUpCache(ctx context.Context) error {
	projectRows, err := m.scanIDColumn(ctx, projectsSheet)
	if err != nil {
		return err
	}
	paymentRows, err := m.scanIDColumn(ctx, paymentsSheet)
	if err != nil {
		return err
	}

	m.cacheMu.Lock()
	m.projectRows = projectRows
	m.paymentRows = paymentRows
	m.cacheMu.Unlock()
	return nil
}

// UpsertProject updates an existing project row or appends a new one if not found.
func (m *Mirror) UpsertProject(ctx context.Context, project *models.Project, clientName, packageName string) error {
	if project == nil {
		return fmt.Errorf("project is nil")
	}

	rowIdx, err := m.findRow(ctx, projectsSheet, project.ID)
	if err != nil {
		if errors.Is(err, errRowNotFound) {
			return m.appendProject(ctx, project, clientName, packageName)
		}
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:O%d", projectsSheet, rowIdx, rowIdx)
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{projectRowValues(project, clientName, packageName)},
	}

	_, err = m.service.Spreadsheets.Values.Update(m.spreadsheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (m *Mirror) appendProject(ctx context.Context, project *models.Project, clientName, packageName string) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{projectRowValues(project, clientName, packageName)},
	}

	resp, err := m.service.Spreadsheets.Values.Append(m.spreadsheetID, projectsSheet+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}

	if resp.Updates != nil {
		if row := rowFromUpdatedRange(resp.Updates.UpdatedRange); row > 0 {
			m.setCachedRow(projectsSheet, project.ID, row)
		}
	}
	return nil
}

// DeleteProjectRow removes the row that corresponds to projectID.
func (m *Mirror) DeleteProjectRow(ctx context.Context, projectID int64) error {
	rowIdx, err := m.findRow(ctx, projectsSheet, projectID)
	if err != nil {
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:O%d", projectsSheet, rowIdx, rowIdx)
	_, err = m.service.Spreadsheets.Values.Clear(m.spreadsheetID, rangeData, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err == nil {
		m.deleteCachedRow(projectsSheet, projectID)
	}
	return err
}

// UpdateProjectStatus updates status (and Updated At) for a project row.
func (m *Mirror) UpdateProjectStatus(ctx context.Context, projectID int64, status string) error {
	rowIdx, err := m.findRow(ctx, projectsSheet, projectID)
	if err != nil {
		return err
	}

	now := time.Now().Format("2006-01-02 15:04:05")

	statusRange := fmt.Sprintf("%s!H%d:H%d", projectsSheet, rowIdx, rowIdx)
	_, err = m.service.Spreadsheets.Values.Update(m.spreadsheetID, statusRange, &sheets.ValueRange{
		Values: [][]interface{}{{status}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}

	updatedRange := fmt.Sprintf("%s!O%d:O%d", projectsSheet, rowIdx, rowIdx)
	_, err = m.service.Spreadsheets.Values.Update(m.spreadsheetID, updatedRange, &sheets.ValueRange{
		Values: [][]interface{}{{now}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// AppendPayment appends a payment row to the journal tab. Payment rows
// are never rewritten in place.
func (m *Mirror) AppendPayment(ctx context.Context, payment *models.Payment, clientName string) error {
	if payment == nil {
		return fmt.Errorf("payment is nil")
	}

	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{paymentRowValues(payment, clientName)},
	}

	resp, err := m.service.Spreadsheets.Values.Append(m.spreadsheetID, paymentsSheet+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}

	if resp.Updates != nil {
		if row := rowFromUpdatedRange(resp.Updates.UpdatedRange); row > 0 {
			m.setCachedRow(paymentsSheet, payment.ID, row)
		}
	}
	return nil
}

// DeletePaymentRow removes the journal row of a reversed payment.
func (m *Mirror) DeletePaymentRow(ctx context.Context, paymentID int64) error {
	rowIdx, err := m.findRow(ctx, paymentsSheet, paymentID)
	if err != nil {
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:H%d", paymentsSheet, rowIdx, rowIdx)
	_, err = m.service.Spreadsheets.Values.Clear(m.spreadsheetID, rangeData, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err == nil {
		m.deleteCachedRow(paymentsSheet, paymentID)
	}
	return err
}

// findRow locates row index (1-based) for id in column A of sheet with cache.
func (m *Mirror) findRow(ctx context.Context, sheet string, id int64) (int, error) {
	if id == 0 {
		return 0, fmt.Errorf("row id is required")
	}

	if row, ok := m.getCachedRow(sheet, id); ok {
		return row, nil
	}

	resp, err := m.service.Spreadsheets.Values.Get(m.spreadsheetID, sheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if cellID(row[0]) == id {
			rowIdx := i + 1 // Values are zero-based; sheet rows are 1-based
			m.setCachedRow(sheet, id, rowIdx)
			return rowIdx, nil
		}
	}

	return 0, errRowNotFound
}

func (m *Mirror) scanIDColumn(ctx context.Context, sheet string) (map[int64]int, error) {
	resp, err := m.service.Spreadsheets.Values.Get(m.spreadsheetID, sheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	rows := make(map[int64]int)
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if id := cellID(row[0]); id > 0 {
			rows[id] = i + 1
		}
	}
	return rows, nil
}

// cellID tolerates both numeric and string cells in the ID column.
func cellID(v interface{}) int64 {
	switch val := v.(type) {
	case float64:
		return int64(val)
	case string:
		var id int64
		fmt.Sscanf(val, "%d", &id)
		return id
	}
	return 0
}

// rowFromUpdatedRange extracts the 1-based row index from an append
// response range like "Projects!A10:O10".
func rowFromUpdatedRange(updatedRange string) int {
	idx := strings.LastIndex(updatedRange, "!A")
	if idx < 0 {
		return 0
	}
	var row int
	fmt.Sscanf(updatedRange[idx+2:], "%d", &row)
	return row
}

func (m *Mirror) cacheFor(sheet string) map[int64]int {
	if sheet == paymentsSheet {
		return m.paymentRows
	}
	return m.projectRows
}

func (m *Mirror) getCachedRow(sheet string, id int64) (int, bool) {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()
	row, ok := m.cacheFor(sheet)[id]
	return row, ok
}

func (m *Mirror) setCachedRow(sheet string, id int64, row int) {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	m.cacheFor(sheet)[id] = row
}

func (m *Mirror) deleteCachedRow(sheet string, id int64) {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	delete(m.cacheFor(sheet), id)
}

// ClearCache clears both row index caches.
func (m *Mirror) ClearCache() {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	m.projectRows = make(map[int64]int)
	m.paymentRows = make(map[int64]int)
}

func projectRowValues(project *models.Project, clientName, packageName string) []interface{} {
	return []interface{}{
		project.ID,
		clientName,
		packageName,
		project.EventType,
		project.EventDate.Format("2006-01-02"),
		project.EventTime,
		project.Location,
		project.Status,
		project.Price,
		project.DepositAmount,
		project.AmountPaid,
		project.BalanceAmount,
		fmt.Sprintf("%d/%d", project.RevisionsUsed, project.RevisionLimit),
		project.CreatedAt.Format("2006-01-02 15:04:05"),
		project.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func paymentRowValues(payment *models.Payment, clientName string) []interface{} {
	return []interface{}{
		payment.ID,
		payment.ProjectID,
		clientName,
		payment.Amount,
		payment.Method,
		payment.Reference,
		payment.Note,
		payment.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
