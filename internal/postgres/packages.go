package postgres

import (
	"context"
	"fmt"
	"time"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"
)

func (s *Store) CreatePackage(ctx context.Context, pkg *models.Package) error {
	query := `INSERT INTO packages (name, category, price, hours, deliverables, description)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`
	err := s.QueryRowContext(ctx, query,
		pkg.Name, pkg.Category, pkg.Price, pkg.Hours, pkg.Deliverables, pkg.Description).
		Scan(&pkg.ID, &pkg.CreatedAt, &pkg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create package: %w", translate(err))
	}
	return nil
}

func (s *Store) GetPackage(ctx context.Context, id int64) (*models.Package, error) {
	query := `SELECT id, name, category, price, hours, deliverables, description, created_at, updated_at
	          FROM packages WHERE id = $1`
	pkg := &models.Package{}
	err := s.QueryRowContext(ctx, query, id).Scan(
		&pkg.ID, &pkg.Name, &pkg.Category, &pkg.Price, &pkg.Hours,
		&pkg.Deliverables, &pkg.Description, &pkg.CreatedAt, &pkg.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", translate(err))
	}
	return pkg, nil
}

func (s *Store) ListPackages(ctx context.Context) ([]*models.Package, error) {
	query := `SELECT id, name, category, price, hours, deliverables, description, created_at, updated_at
	          FROM packages ORDER BY name`
	rows, err := s.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", translate(err))
	}
	defer rows.Close()

	var packages []*models.Package
	for rows.Next() {
		pkg := &models.Package{}
		if err := rows.Scan(
			&pkg.ID, &pkg.Name, &pkg.Category, &pkg.Price, &pkg.Hours,
			&pkg.Deliverables, &pkg.Description, &pkg.CreatedAt, &pkg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		packages = append(packages, pkg)
	}
	return packages, rows.Err()
}

// UpdatePackage changes the catalog entry only. Projects keep the snapshot
// they were priced with.
func (s *Store) UpdatePackage(ctx context.Context, pkg *models.Package) error {
	query := `UPDATE packages SET name = $1, category = $2, price = $3, hours = $4,
	          deliverables = $5, description = $6, updated_at = $7 WHERE id = $8`
	now := time.Now()
	result, err := s.ExecContext(ctx, query,
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

func (s *Store) DeletePackage(ctx context.Context, id int64) error {
	result, err := s.ExecContext(ctx, `DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete package: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete package %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
