package database

import (
	"context"
	"fmt"
	"time"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"
)

func (db *DB) CreatePackage(ctx context.Context, pkg *models.Package) error {
	query := `INSERT INTO packages (name, category, price, hours, deliverables, description, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		pkg.Name,
		pkg.Category,
		pkg.Price,
		pkg.Hours,
		pkg.Deliverables,
		pkg.Description,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create package: %w", translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	pkg.ID = id
	pkg.CreatedAt = now
	pkg.UpdatedAt = now

	return nil
}

func (db *DB) GetPackage(ctx context.Context, id int64) (*models.Package, error) {
	var pkg models.Package
	query := `SELECT id, name, category, price, hours, deliverables, description, created_at, updated_at
              FROM packages WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&pkg.ID, &pkg.Name, &pkg.Category, &pkg.Price, &pkg.Hours,
		&pkg.Deliverables, &pkg.Description, &pkg.CreatedAt, &pkg.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", translate(err))
	}
	return &pkg, nil
}

func (db *DB) ListPackages(ctx context.Context) ([]*models.Package, error) {
	query := `SELECT id, name, category, price, hours, deliverables, description, created_at, updated_at
              FROM packages ORDER BY name, id`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", translate(err))
	}
	defer rows.Close()

	var packages []*models.Package
	for rows.Next() {
		p := &models.Package{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Hours,
			&p.Deliverables, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}

// UpdatePackage edits the offering. Projects that already snapshotted the
// old price are untouched.
func (db *DB) UpdatePackage(ctx context.Context, pkg *models.Package) error {
	query := `UPDATE packages SET name = ?, category = ?, price = ?, hours = ?, deliverables = ?, description = ?, updated_at = ?
              WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		pkg.Name, pkg.Category, pkg.Price, pkg.Hours, pkg.Deliverables, pkg.Description, now, pkg.ID)
	if err != nil {
		return fmt.Errorf("failed to update package: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("update package %d: %w", pkg.ID, domain.ErrNotFound)
	}
	pkg.UpdatedAt = now
	return nil
}

func (db *DB) DeletePackage(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM packages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete package: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete package %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
