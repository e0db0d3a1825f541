package database

import (
	"context"
	"fmt"
	"time"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"
)

// PostPayment writes the payment row and moves the project totals in a
// single transaction. amount_paid + balance_amount == price holds on commit
// because both sides move by the same amount.
func (db *DB) PostPayment(ctx context.Context, payment *models.Payment) (*models.Project, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", translate(err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	project, err := getProjectTx(ctx, tx, payment.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.Status == models.StatusCancelled {
		return nil, fmt.Errorf("project %d is cancelled: %w", project.ID, domain.ErrConsistency)
	}

	query := `INSERT INTO payments (project_id, amount, method, reference, note, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, query,
		payment.ProjectID,
		payment.Amount,
		payment.Method,
		payment.Reference,
		payment.Note,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert payment in tx: %w", translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id in tx: %w", err)
	}

	updateQuery := `UPDATE projects SET amount_paid = amount_paid + ?, balance_amount = balance_amount - ?, updated_at = ?
                    WHERE id = ?`
	if _, err := tx.ExecContext(ctx, updateQuery, payment.Amount, payment.Amount, now, payment.ProjectID); err != nil {
		return nil, fmt.Errorf("failed to update project totals in tx: %w", translate(err))
	}

	updated, err := getProjectTx(ctx, tx, payment.ProjectID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", translate(err))
	}

	payment.ID = id
	payment.CreatedAt = now
	return updated, nil
}

// ReversePayment undoes a posting exactly: totals move back by the payment
// amount and the row disappears, all in one transaction. expectProjectID,
// when non-zero, guards against deleting a payment through the wrong project.
func (db *DB) ReversePayment(ctx context.Context, paymentID int64, expectProjectID int64) (*models.Payment, *models.Project, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", translate(err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var payment models.Payment
	row := tx.QueryRowContext(ctx,
		`SELECT id, project_id, amount, method, reference, note, created_at FROM payments WHERE id = ?`, paymentID)
	if err := row.Scan(&payment.ID, &payment.ProjectID, &payment.Amount, &payment.Method,
		&payment.Reference, &payment.Note, &payment.CreatedAt); err != nil {
		return nil, nil, fmt.Errorf("failed to get payment: %w", translate(err))
	}

	if expectProjectID != 0 && payment.ProjectID != expectProjectID {
		return nil, nil, fmt.Errorf("payment %d belongs to project %d, not %d: %w",
			paymentID, payment.ProjectID, expectProjectID, domain.ErrConsistency)
	}

	project, err := getProjectTx(ctx, tx, payment.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if project.AmountPaid-payment.Amount < 0 {
		return nil, nil, fmt.Errorf("reversal would drive amount_paid below zero on project %d: %w",
			project.ID, domain.ErrConsistency)
	}

	updateQuery := `UPDATE projects SET amount_paid = amount_paid - ?, balance_amount = balance_amount + ?, updated_at = ?
                    WHERE id = ?`
	if _, err := tx.ExecContext(ctx, updateQuery, payment.Amount, payment.Amount, time.Now(), payment.ProjectID); err != nil {
		return nil, nil, fmt.Errorf("failed to update project totals in tx: %w", translate(err))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, paymentID); err != nil {
		return nil, nil, fmt.Errorf("failed to delete payment in tx: %w", translate(err))
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

func (db *DB) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	query := `SELECT id, project_id, amount, method, reference, note, created_at FROM payments WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&payment.ID, &payment.ProjectID, &payment.Amount, &payment.Method,
		&payment.Reference, &payment.Note, &payment.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", translate(err))
	}
	return &payment, nil
}

// ListPayments returns payments newest first; projectID 0 lists them all.
func (db *DB) ListPayments(ctx context.Context, projectID int64) ([]*models.Payment, error) {
	query := `SELECT id, project_id, amount, method, reference, note, created_at FROM payments`
	args := []interface{}{}
	if projectID != 0 {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", translate(err))
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Amount, &p.Method, &p.Reference, &p.Note, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
