package database

import (
	"context"
	"fmt"
	"time"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"
)

func (db *DB) CreateTeamMember(ctx context.Context, member *models.TeamMember) error {
	query := `INSERT INTO team_members (name, role, phone, email, created_at) VALUES (?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query, member.Name, member.Role, member.Phone, member.Email, now)
	if err != nil {
		return fmt.Errorf("failed to create team member: %w", translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	member.ID = id
	member.CreatedAt = now

	return nil
}

func (db *DB) GetTeamMember(ctx context.Context, id int64) (*models.TeamMember, error) {
	var member models.TeamMember
	query := `SELECT id, name, role, phone, email, created_at FROM team_members WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&member.ID, &member.Name, &member.Role, &member.Phone, &member.Email, &member.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get team member: %w", translate(err))
	}
	return &member, nil
}

func (db *DB) ListTeamMembers(ctx context.Context) ([]*models.TeamMember, error) {
	query := `SELECT id, name, role, phone, email, created_at FROM team_members ORDER BY name, id`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", translate(err))
	}
	defer rows.Close()

	var members []*models.TeamMember
	for rows.Next() {
		m := &models.TeamMember{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &m.Phone, &m.Email, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (db *DB) UpdateTeamMember(ctx context.Context, member *models.TeamMember) error {
	query := `UPDATE team_members SET name = ?, role = ?, phone = ?, email = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, member.Name, member.Role, member.Phone, member.Email, member.ID)
	if err != nil {
		return fmt.Errorf("failed to update team member: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("update team member %d: %w", member.ID, domain.ErrNotFound)
	}
	return nil
}

func (db *DB) DeleteTeamMember(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM team_members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team member: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete team member %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
