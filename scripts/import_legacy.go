package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"shutterdesk/internal/config"
	"shutterdesk/internal/database"
	"shutterdesk/internal/ledger"
	"shutterdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// One-shot importer for the legacy studio workbook. The workbook was the old
// system of record: a Projects tab with one row per booking (financial
// snapshot included) and a Payments tab holding the payment journal.
// Projects are inserted with their recorded snapshot, payments are replayed
// through the ledger operation so the stored totals are derived from the
// journal, and the recorded Paid column is used as a parity check afterwards.

const (
	projectsSheet = "Projects"
	paymentsSheet = "Payments"
)

type legacyProject struct {
	LegacyID      int64
	ClientName    string
	PackageName   string
	EventType     string
	EventDate     time.Time
	EventTime     string
	Location      string
	Status        string
	Price         int64
	Deposit       int64
	Paid          int64
	RevisionsUsed int64
	RevisionLimit int64
}

type legacyPayment struct {
	LegacyProjectID int64
	Amount          int64
	Method          string
	Reference       string
	Note            string
	CreatedAt       time.Time
}

type importStats struct {
	Clients    int
	Packages   int
	Projects   int
	Payments   int
	Skipped    int
	Mismatched int
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		workbookPath = flag.String("workbook", "legacy.xlsx", "path to the legacy workbook")
		dbPath       = flag.String("db", "./data/studio.db", "path to sqlite db")
		backupDir    = flag.String("backup-dir", "./backups", "where to snapshot an existing db before importing")
	)
	flag.Parse()

	workbook, err := excelize.OpenFile(*workbookPath)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	// Существующую базу снимаем в бэкап до любых записей
	if _, err := os.Stat(*dbPath); err == nil {
		backup := database.NewBackupService(*dbPath, config.BackupConfig{Enabled: true, StoragePath: *backupDir}, &logger)
		if err := backup.PerformBackup(); err != nil {
			return fmt.Errorf("backup before import: %w", err)
		}
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stats, err := importWorkbook(ctx, db, workbook, &logger)
	if err != nil {
		return err
	}

	fmt.Printf("done: clients=%d packages=%d projects=%d payments=%d skipped=%d mismatched=%d\n",
		stats.Clients, stats.Packages, stats.Projects, stats.Payments, stats.Skipped, stats.Mismatched)
	return nil
}

func importWorkbook(ctx context.Context, db *database.DB, workbook *excelize.File, logger *zerolog.Logger) (importStats, error) {
	var stats importStats

	rows, err := workbook.GetRows(projectsSheet)
	if err != nil {
		return stats, fmt.Errorf("read %s sheet: %w", projectsSheet, err)
	}
	if len(rows) < 2 {
		return stats, fmt.Errorf("%s sheet has no data rows", projectsSheet)
	}

	clientIDs := make(map[string]int64)
	packageIDs := make(map[string]int64)
	projectIDs := make(map[int64]int64) // legacy id -> new id
	recordedPaid := make(map[int64]int64)
	targetStatus := make(map[int64]string)

	for i, row := range rows[1:] {
		legacy, err := parseProjectRow(row)
		if err != nil {
			logger.Warn().Err(err).Int("row", i+2).Msg("skipping project row")
			stats.Skipped++
			continue
		}

		clientID, ok := clientIDs[legacy.ClientName]
		if !ok {
			client := &models.Client{Name: legacy.ClientName}
			if err := db.CreateClient(ctx, client); err != nil {
				return stats, fmt.Errorf("create client %q: %w", legacy.ClientName, err)
			}
			clientID = client.ID
			clientIDs[legacy.ClientName] = clientID
			stats.Clients++
		}

		packageName := legacy.PackageName
		if packageName == "" {
			packageName = "Imported"
		}
		packageID, ok := packageIDs[packageName]
		if !ok {
			// Цена пакета — снимок первого встреченного проекта
			pkg := &models.Package{Name: packageName, Price: legacy.Price}
			if err := db.CreatePackage(ctx, pkg); err != nil {
				return stats, fmt.Errorf("create package %q: %w", packageName, err)
			}
			packageID = pkg.ID
			packageIDs[packageName] = packageID
			stats.Packages++
		}

		split, err := ledger.ComputeSplit(legacy.Price)
		if err != nil {
			logger.Warn().Err(err).Int("row", i+2).Msg("skipping project row")
			stats.Skipped++
			continue
		}
		deposit := legacy.Deposit
		if deposit == 0 {
			deposit = split.Deposit
		}

		// Статус ставится после проигрывания журнала: платеж в отменённый
		// проект хранилище не пропустит
		project := &models.Project{
			ClientID:       clientID,
			PackageID:      packageID,
			EventType:      legacy.EventType,
			EventDate:      legacy.EventDate,
			EventTime:      legacy.EventTime,
			Location:       legacy.Location,
			Status:         models.StatusNew,
			Price:          legacy.Price,
			DepositPercent: split.Percent,
			DepositAmount:  deposit,
			BalanceAmount:  legacy.Price,
			AmountPaid:     0,
			RevisionLimit:  legacy.RevisionLimit,
			RevisionsUsed:  legacy.RevisionsUsed,
		}
		if err := db.CreateProject(ctx, project); err != nil {
			return stats, fmt.Errorf("create project (legacy id %d): %w", legacy.LegacyID, err)
		}

		projectIDs[legacy.LegacyID] = project.ID
		recordedPaid[legacy.LegacyID] = legacy.Paid
		targetStatus[legacy.LegacyID] = legacy.Status
		stats.Projects++
	}

	if err := replayPayments(ctx, db, workbook, projectIDs, &stats, logger); err != nil {
		return stats, err
	}

	for legacyID, status := range targetStatus {
		if status == models.StatusNew {
			continue
		}
		if err := db.UpdateProjectStatusWithVersion(ctx, projectIDs[legacyID], 1, status); err != nil {
			return stats, fmt.Errorf("set status for project (legacy id %d): %w", legacyID, err)
		}
	}

	// Сверка: итоги из журнала против записанной колонки Paid
	for legacyID, newID := range projectIDs {
		project, err := db.GetProject(ctx, newID)
		if err != nil {
			return stats, fmt.Errorf("verify project (legacy id %d): %w", legacyID, err)
		}
		if project.AmountPaid != recordedPaid[legacyID] {
			logger.Warn().
				Int64("legacy_id", legacyID).
				Int64("recorded", recordedPaid[legacyID]).
				Int64("replayed", project.AmountPaid).
				Msg("paid total differs from the legacy sheet; journal wins")
			stats.Mismatched++
		}
	}

	return stats, nil
}

func replayPayments(ctx context.Context, db *database.DB, workbook *excelize.File, projectIDs map[int64]int64, stats *importStats, logger *zerolog.Logger) error {
	rows, err := workbook.GetRows(paymentsSheet)
	if err != nil {
		logger.Warn().Err(err).Msg("no payments sheet, importing projects only")
		return nil
	}
	if len(rows) < 2 {
		return nil
	}

	for i, row := range rows[1:] {
		legacy, err := parsePaymentRow(row)
		if err != nil {
			logger.Warn().Err(err).Int("row", i+2).Msg("skipping payment row")
			stats.Skipped++
			continue
		}

		newID, ok := projectIDs[legacy.LegacyProjectID]
		if !ok {
			logger.Warn().Int64("legacy_project_id", legacy.LegacyProjectID).Int("row", i+2).Msg("payment references unknown project, skipping")
			stats.Skipped++
			continue
		}

		payment := &models.Payment{
			ProjectID: newID,
			Amount:    legacy.Amount,
			Method:    legacy.Method,
			Reference: legacy.Reference,
			Note:      legacy.Note,
		}
		if _, err := db.PostPayment(ctx, payment); err != nil {
			return fmt.Errorf("replay payment (row %d): %w", i+2, err)
		}

		// Журналу возвращается исходная дата платежа
		if !legacy.CreatedAt.IsZero() {
			if _, err := db.ExecContext(ctx, `UPDATE payments SET created_at = ? WHERE id = ?`, legacy.CreatedAt, payment.ID); err != nil {
				return fmt.Errorf("restore payment date (row %d): %w", i+2, err)
			}
		}
		stats.Payments++
	}
	return nil
}

// Колонки вкладки Projects:
// ID, Client, Package, Event Type, Event Date, Event Time, Location, Status,
// Price, Deposit, Paid, Balance, Revisions, Created At, Updated At
func parseProjectRow(row []string) (legacyProject, error) {
	cols := padRow(row, 15)

	id, err := parseID(cols[0])
	if err != nil {
		return legacyProject{}, fmt.Errorf("project id: %w", err)
	}
	clientName := strings.TrimSpace(cols[1])
	if clientName == "" {
		return legacyProject{}, fmt.Errorf("project %d: client name is empty", id)
	}

	price, err := parseMoney(cols[8])
	if err != nil {
		return legacyProject{}, fmt.Errorf("project %d price: %w", id, err)
	}
	if price < 0 {
		return legacyProject{}, fmt.Errorf("project %d: price is negative", id)
	}
	deposit, err := parseMoney(cols[9])
	if err != nil {
		return legacyProject{}, fmt.Errorf("project %d deposit: %w", id, err)
	}
	paid, err := parseMoney(cols[10])
	if err != nil {
		return legacyProject{}, fmt.Errorf("project %d paid: %w", id, err)
	}

	eventDate, err := parseDate(cols[4])
	if err != nil {
		return legacyProject{}, fmt.Errorf("project %d event date: %w", id, err)
	}

	used, limit := parseRevisions(cols[12])

	return legacyProject{
		LegacyID:      id,
		ClientName:    clientName,
		PackageName:   strings.TrimSpace(cols[2]),
		EventType:     strings.TrimSpace(cols[3]),
		EventDate:     eventDate,
		EventTime:     strings.TrimSpace(cols[5]),
		Location:      strings.TrimSpace(cols[6]),
		Status:        normalizeStatus(cols[7]),
		Price:         price,
		Deposit:       deposit,
		Paid:          paid,
		RevisionsUsed: used,
		RevisionLimit: limit,
	}, nil
}

// Колонки вкладки Payments:
// ID, Project ID, Client, Amount, Method, Reference, Note, Created At
func parsePaymentRow(row []string) (legacyPayment, error) {
	cols := padRow(row, 8)

	projectID, err := parseID(cols[1])
	if err != nil {
		return legacyPayment{}, fmt.Errorf("payment project id: %w", err)
	}
	amount, err := parseMoney(cols[3])
	if err != nil {
		return legacyPayment{}, fmt.Errorf("payment amount: %w", err)
	}
	if amount <= 0 {
		return legacyPayment{}, fmt.Errorf("payment amount %d is not positive", amount)
	}

	createdAt, err := parseDate(cols[7])
	if err != nil {
		return legacyPayment{}, fmt.Errorf("payment date: %w", err)
	}

	return legacyPayment{
		LegacyProjectID: projectID,
		Amount:          amount,
		Method:          normalizeMethod(cols[4]),
		Reference:       strings.TrimSpace(cols[5]),
		Note:            strings.TrimSpace(cols[6]),
		CreatedAt:       createdAt,
	}, nil
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad id %q", s)
	}
	if id <= 0 {
		return 0, fmt.Errorf("bad id %d", id)
	}
	return id, nil
}

// parseMoney tolerates the formats seen in exported sheets: plain integers,
// group-separated digits and float-formatted cells with a zero fraction.
func parseMoney(s string) (int64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if cleaned == "" {
		return 0, nil
	}

	if v, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return v, nil
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("bad amount %q", s)
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("amount %q has a fractional part", s)
	}
	return int64(f), nil
}

var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"02.01.2006 15:04",
}

func parseDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", s)
}

func parseRevisions(s string) (used, limit int64) {
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d/%d", &used, &limit); err != nil || limit < 0 || used < 0 {
		return 0, models.DefaultRevisionLimit
	}
	return used, limit
}

func normalizeMethod(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return models.MethodCash
	case "bank transfer", "transfer":
		return models.MethodBankTransfer
	case "card":
		return models.MethodCard
	default:
		return models.MethodOther
	}
}

var knownStatuses = []string{
	models.StatusNew, models.StatusConfirmed, models.StatusDepositPaid,
	models.StatusScheduled, models.StatusShooting, models.StatusEditing,
	models.StatusReview, models.StatusDelivered, models.StatusCompleted,
	models.StatusCancelled,
}

func normalizeStatus(s string) string {
	trimmed := strings.TrimSpace(s)
	for _, status := range knownStatuses {
		if strings.EqualFold(trimmed, status) {
			return status
		}
	}
	return models.StatusNew
}
