package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"
)

const projectColumns = `id, client_id, package_id, event_type, date(event_date), event_time, location,
                 status, price, deposit_percent, deposit_amount, balance_amount, amount_paid,
                 revision_limit, revisions_used, notes, crew_assigned, drive_link, internal_path,
                 created_at, updated_at, version`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var dateStr string
	err := row.Scan(
		&p.ID, &p.ClientID, &p.PackageID, &p.EventType, &dateStr, &p.EventTime, &p.Location,
		&p.Status, &p.Price, &p.DepositPercent, &p.DepositAmount, &p.BalanceAmount, &p.AmountPaid,
		&p.RevisionLimit, &p.RevisionsUsed, &p.Notes, &p.CrewAssigned, &p.DriveLink, &p.InternalPath,
		&p.CreatedAt, &p.UpdatedAt, &p.Version,
	)
	if err != nil {
		return nil, err
	}
	p.EventDate, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event date %s: %w", dateStr, err)
	}
	return p, nil
}

// CreateProject persists a project whose financial snapshot the caller has
// already derived. Client and package are re-checked inside the transaction;
// creation races with client deletion otherwise.
func (db *DB) CreateProject(ctx context.Context, project *models.Project) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", translate(err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var clientCount int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients WHERE id = ?`, project.ClientID).Scan(&clientCount); err != nil {
		return fmt.Errorf("failed to check client in tx: %w", translate(err))
	}
	if clientCount == 0 {
		return fmt.Errorf("client %d does not exist: %w", project.ClientID, domain.ErrValidation)
	}

	var packageCount int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM packages WHERE id = ?`, project.PackageID).Scan(&packageCount); err != nil {
		return fmt.Errorf("failed to check package in tx: %w", translate(err))
	}
	if packageCount == 0 {
		return fmt.Errorf("package %d does not exist: %w", project.PackageID, domain.ErrValidation)
	}

	query := `INSERT INTO projects (
				client_id, package_id, event_type, event_date, event_time, location,
				status, price, deposit_percent, deposit_amount, balance_amount, amount_paid,
				revision_limit, revisions_used, notes, crew_assigned, drive_link, internal_path,
				created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, query,
		project.ClientID,
		project.PackageID,
		project.EventType,
		project.EventDate.Format("2006-01-02"),
		project.EventTime,
		project.Location,
		project.Status,
		project.Price,
		project.DepositPercent,
		project.DepositAmount,
		project.BalanceAmount,
		project.AmountPaid,
		project.RevisionLimit,
		project.RevisionsUsed,
		project.Notes,
		project.CrewAssigned,
		project.DriveLink,
		project.InternalPath,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project in tx: %w", translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	project.ID = id
	project.CreatedAt = now
	project.UpdatedAt = now
	project.Version = 1

	return tx.Commit()
}

func (db *DB) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	row := db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	project, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", translate(err))
	}
	return project, nil
}

func getProjectTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Project, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	project, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get project in tx: %w", translate(err))
	}
	return project, nil
}

func (db *DB) ListProjects(ctx context.Context) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, id DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", translate(err))
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateProject writes the mutable metadata only. Financial columns are out
// of reach here; they move exclusively through the payment operations.
func (db *DB) UpdateProject(ctx context.Context, project *models.Project) error {
	query := `UPDATE projects SET event_type = ?, event_date = ?, event_time = ?, location = ?,
                 revision_limit = ?, notes = ?, crew_assigned = ?, drive_link = ?, internal_path = ?, updated_at = ?
              WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		project.EventType,
		project.EventDate.Format("2006-01-02"),
		project.EventTime,
		project.Location,
		project.RevisionLimit,
		project.Notes,
		project.CrewAssigned,
		project.DriveLink,
		project.InternalPath,
		now,
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("update project %d: %w", project.ID, domain.ErrNotFound)
	}
	project.UpdatedAt = now
	return nil
}

func (db *DB) UpdateProjectStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE projects SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

// DeleteProject removes the project and every payment it owns in one
// transaction (the cascade the data model requires).
func (db *DB) DeleteProject(ctx context.Context, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", translate(err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete project payments: %w", translate(err))
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete project %d: %w", id, domain.ErrNotFound)
	}

	return tx.Commit()
}

func (db *DB) RecordRevision(ctx context.Context, projectID int64) (*models.Project, error) {
	return db.adjustRevisions(ctx, projectID, `UPDATE projects SET revisions_used = revisions_used + 1, updated_at = ? WHERE id = ?`)
}

func (db *DB) ResetRevisions(ctx context.Context, projectID int64) (*models.Project, error) {
	return db.adjustRevisions(ctx, projectID, `UPDATE projects SET revisions_used = 0, updated_at = ? WHERE id = ?`)
}

func (db *DB) adjustRevisions(ctx context.Context, projectID int64, query string) (*models.Project, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", translate(err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, query, time.Now(), projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust revisions: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("project %d: %w", projectID, domain.ErrNotFound)
	}

	project, err := getProjectTx(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", translate(err))
	}
	return project, nil
}
