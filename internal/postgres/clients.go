package postgres

import (
	"context"
	"fmt"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"
)

func (s *Store) CreateClient(ctx context.Context, client *models.Client) error {
	query := `INSERT INTO clients (name, phone, email, address)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := s.QueryRowContext(ctx, query, client.Name, client.Phone, client.Email, client.Address).
		Scan(&client.ID, &client.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", translate(err))
	}
	return nil
}

func (s *Store) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	query := `SELECT id, name, phone, email, address, created_at FROM clients WHERE id = $1`
	client := &models.Client{}
	err := s.QueryRowContext(ctx, query, id).
		Scan(&client.ID, &client.Name, &client.Phone, &client.Email, &client.Address, &client.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", translate(err))
	}
	return client, nil
}

func (s *Store) ListClients(ctx context.Context) ([]*models.Client, error) {
	query := `SELECT id, name, phone, email, address, created_at FROM clients ORDER BY created_at DESC, id DESC`
	rows, err := s.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", translate(err))
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client := &models.Client{}
		if err := rows.Scan(&client.ID, &client.Name, &client.Phone, &client.Email, &client.Address, &client.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func (s *Store) UpdateClient(ctx context.Context, client *models.Client) error {
	query := `UPDATE clients SET name = $1, phone = $2, email = $3, address = $4 WHERE id = $5`
	result, err := s.ExecContext(ctx, query, client.Name, client.Phone, client.Email, client.Address, client.ID)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("update client %d: %w", client.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", translate(err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var projectCount int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE client_id = $1`, id).Scan(&projectCount); err != nil {
		return fmt.Errorf("failed to count client projects: %w", translate(err))
	}
	if projectCount > 0 {
		return fmt.Errorf("client %d still has %d project(s): %w", id, projectCount, domain.ErrConsistency)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete client %d: %w", id, domain.ErrNotFound)
	}

	return tx.Commit()
}
