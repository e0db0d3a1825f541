package database

import (
	"context"
	"fmt"
	"time"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"
)

func (db *DB) CreateClient(ctx context.Context, client *models.Client) error {
	query := `INSERT INTO clients (name, phone, email, address, created_at) VALUES (?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		client.Name,
		client.Phone,
		client.Email,
		client.Address,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	client.ID = id
	client.CreatedAt = now

	return nil
}

func (db *DB) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	var client models.Client
	query := `SELECT id, name, phone, email, address, created_at FROM clients WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&client.ID, &client.Name, &client.Phone, &client.Email, &client.Address, &client.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", translate(err))
	}
	return &client, nil
}

func (db *DB) ListClients(ctx context.Context) ([]*models.Client, error) {
	query := `SELECT id, name, phone, email, address, created_at FROM clients ORDER BY created_at DESC, id DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", translate(err))
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c := &models.Client{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (db *DB) UpdateClient(ctx context.Context, client *models.Client) error {
	query := `UPDATE clients SET name = ?, phone = ?, email = ?, address = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, client.Name, client.Phone, client.Email, client.Address, client.ID)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("update client %d: %w", client.ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteClient refuses to remove a client that still has projects. The
// existence check and the delete run in one transaction so a project created
// in between cannot orphan itself.
func (db *DB) DeleteClient(ctx context.Context, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", translate(err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var projectCount int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE client_id = ?`, id).Scan(&projectCount); err != nil {
		return fmt.Errorf("failed to count client projects: %w", translate(err))
	}
	if projectCount > 0 {
		return fmt.Errorf("client %d still has %d project(s): %w", id, projectCount, domain.ErrConsistency)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete client %d: %w", id, domain.ErrNotFound)
	}

	return tx.Commit()
}
