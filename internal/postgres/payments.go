package postgres

import (
	"context"
	"fmt"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"
)

// PostPayment inserts the payment and moves the running totals in one
// transaction. The project row is locked first; two postings against the
// same project serialize on the lock.
func (s *Store) PostPayment(ctx context.Context, payment *models.Payment) (*models.Project, error) {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", translate(err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	project, err := lockProjectTx(ctx, tx, payment.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.Status == models.StatusCancelled {
		return nil, fmt.Errorf("project %d is cancelled: %w", project.ID, domain.ErrConsistency)
	}

	query := `INSERT INTO payments (project_id, amount, method, reference, note)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, query,
		payment.ProjectID, payment.Amount, payment.Method, payment.Reference, payment.Note).
		Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", translate(err))
	}

	update := `UPDATE projects SET amount_paid = amount_paid + $1, balance_amount = balance_amount - $2, updated_at = now()
	           WHERE id = $3`
	if _, err := tx.ExecContext(ctx, update, payment.Amount, payment.Amount, payment.ProjectID); err != nil {
		return nil, fmt.Errorf("failed to apply payment to project: %w", translate(err))
	}

	updated, err := getProjectTx(ctx, tx, payment.ProjectID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", translate(err))
	}
	return updated, nil
}

// ReversePayment deletes the payment and restores the totals it moved.
func (s *Store) ReversePayment(ctx context.Context, paymentID int64, expectProjectID int64) (*models.Payment, *models.Project, error) {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", translate(err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// FOR UPDATE keeps a second reversal of the same payment waiting until
	// this one commits, at which point the row is gone.
	var payment models.Payment
	query := `SELECT id, project_id, amount, method, reference, note, created_at FROM payments WHERE id = $1 FOR UPDATE`
	err = tx.QueryRowContext(ctx, query, paymentID).Scan(
		&payment.ID, &payment.ProjectID, &payment.Amount, &payment.Method,
		&payment.Reference, &payment.Note, &payment.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get payment: %w", translate(err))
	}

	if expectProjectID != 0 && payment.ProjectID != expectProjectID {
		return nil, nil, fmt.Errorf("payment %d belongs to project %d, not %d: %w",
			paymentID, payment.ProjectID, expectProjectID, domain.ErrConsistency)
	}

	project, err := lockProjectTx(ctx, tx, payment.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if project.AmountPaid-payment.Amount < 0 {
		return nil, nil, fmt.Errorf("reversing payment %d would drive amount_paid below zero: %w",
			paymentID, domain.ErrConsistency)
	}

	update := `UPDATE projects SET amount_paid = amount_paid - $1, balance_amount = balance_amount + $2, updated_at = now()
	           WHERE id = $3`
	if _, err := tx.ExecContext(ctx, update, payment.Amount, payment.Amount, payment.ProjectID); err != nil {
		return nil, nil, fmt.Errorf("failed to back out payment: %w", translate(err))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, paymentID); err != nil {
		return nil, nil, fmt.Errorf("failed to delete payment: %w", translate(err))
	}

	updated, err := getProjectTx(ctx, tx, payment.ProjectID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit: %w", translate(err))
	}
	return &payment, updated, nil
}

func (s *Store) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	query := `SELECT id, project_id, amount, method, reference, note, created_at FROM payments WHERE id = $1`
	payment := &models.Payment{}
	err := s.QueryRowContext(ctx, query, id).Scan(
		&payment.ID, &payment.ProjectID, &payment.Amount, &payment.Method,
		&payment.Reference, &payment.Note, &payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", translate(err))
	}
	return payment, nil
}

func (s *Store) ListPayments(ctx context.Context, projectID int64) ([]*models.Payment, error) {
	query := `SELECT id, project_id, amount, method, reference, note, created_at FROM payments`
	args := []interface{}{}
	if projectID != 0 {
		query += ` WHERE project_id = $1`
		args = append(args, projectID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", translate(err))
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		if err := rows.Scan(
			&payment.ID, &payment.ProjectID, &payment.Amount, &payment.Method,
			&payment.Reference, &payment.Note, &payment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}
