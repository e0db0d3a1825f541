package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"
)

const projectColumns = `id, client_id, package_id, event_type, event_date, event_time, location,
                 status, price, deposit_percent, deposit_amount, balance_amount, amount_paid,
                 revision_limit, revisions_used, notes, crew_assigned, drive_link, internal_path,
                 created_at, updated_at, version`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	err := row.Scan(
		&p.ID, &p.ClientID, &p.PackageID, &p.EventType, &p.EventDate, &p.EventTime, &p.Location,
		&p.Status, &p.Price, &p.DepositPercent, &p.DepositAmount, &p.BalanceAmount, &p.AmountPaid,
		&p.RevisionLimit, &p.RevisionsUsed, &p.Notes, &p.CrewAssigned, &p.DriveLink, &p.InternalPath,
		&p.CreatedAt, &p.UpdatedAt, &p.Version,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", translate(err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var clientCount int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients WHERE id = $1`, project.ClientID).Scan(&clientCount); err != nil {
		return fmt.Errorf("failed to check client in tx: %w", translate(err))
	}
	if clientCount == 0 {
		return fmt.Errorf("client %d does not exist: %w", project.ClientID, domain.ErrValidation)
	}

	var packageCount int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM packages WHERE id = $1`, project.PackageID).Scan(&packageCount); err != nil {
		return fmt.Errorf("failed to check package in tx: %w", translate(err))
	}
	if packageCount == 0 {
		return fmt.Errorf("package %d does not exist: %w", project.PackageID, domain.ErrValidation)
	}

	query := `INSERT INTO projects (
				client_id, package_id, event_type, event_date, event_time, location,
				status, price, deposit_percent, deposit_amount, balance_amount, amount_paid,
				revision_limit, revisions_used, notes, crew_assigned, drive_link, internal_path, version
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, 1)
			RETURNING id, created_at, updated_at`
	err = tx.QueryRowContext(ctx, query,
		project.ClientID,
		project.PackageID,
		project.EventType,
		project.EventDate,
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
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert project in tx: %w", translate(err))
	}
	project.Version = 1

	return tx.Commit()
}

func (s *Store) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	row := s.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	project, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", translate(err))
	}
	return project, nil
}

// lockProjectTx reads the project row FOR UPDATE so concurrent payment
// postings queue behind each other instead of racing the totals.
func lockProjectTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Project, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1 FOR UPDATE`, id)
	project, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("failed to lock project in tx: %w", translate(err))
	}
	return project, nil
}

func getProjectTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Project, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	project, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get project in tx: %w", translate(err))
	}
	return project, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, id DESC`
	rows, err := s.QueryContext(ctx, query)
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

func (s *Store) UpdateProject(ctx context.Context, project *models.Project) error {
	query := `UPDATE projects SET event_type = $1, event_date = $2, event_time = $3, location = $4,
                 revision_limit = $5, notes = $6, crew_assigned = $7, drive_link = $8, internal_path = $9, updated_at = $10
              WHERE id = $11`
	now := time.Now()
	result, err := s.ExecContext(ctx, query,
		project.EventType,
		project.EventDate,
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

func (s *Store) UpdateProjectStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE projects SET status = $1, version = version + 1, updated_at = $2 WHERE id = $3 AND version = $4`
	result, err := s.ExecContext(ctx, query, status, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", translate(err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE project_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete project payments: %w", translate(err))
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete project %d: %w", id, domain.ErrNotFound)
	}

	return tx.Commit()
}

func (s *Store) RecordRevision(ctx context.Context, projectID int64) (*models.Project, error) {
	return s.adjustRevisions(ctx, projectID, `UPDATE projects SET revisions_used = revisions_used + 1, updated_at = $1 WHERE id = $2`)
}

func (s *Store) ResetRevisions(ctx context.Context, projectID int64) (*models.Project, error) {
	return s.adjustRevisions(ctx, projectID, `UPDATE projects SET revisions_used = 0, updated_at = $1 WHERE id = $2`)
}

func (s *Store) adjustRevisions(ctx context.Context, projectID int64, query string) (*models.Project, error) {
	tx, err := s.BeginTx(ctx, nil)
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
