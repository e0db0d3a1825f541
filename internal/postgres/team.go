package postgres

import (
	"context"
	"fmt"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"
)

func (s *Store) CreateTeamMember(ctx context.Context, member *models.TeamMember) error {
	query := `INSERT INTO team_members (name, role, phone, email)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := s.QueryRowContext(ctx, query, member.Name, member.Role, member.Phone, member.Email).
		Scan(&member.ID, &member.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create team member: %w", translate(err))
	}
	return nil
}

func (s *Store) GetTeamMember(ctx context.Context, id int64) (*models.TeamMember, error) {
	query := `SELECT id, name, role, phone, email, created_at FROM team_members WHERE id = $1`
	member := &models.TeamMember{}
	err := s.QueryRowContext(ctx, query, id).
		Scan(&member.ID, &member.Name, &member.Role, &member.Phone, &member.Email, &member.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get team member: %w", translate(err))
	}
	return member, nil
}

func (s *Store) ListTeamMembers(ctx context.Context) ([]*models.TeamMember, error) {
	query := `SELECT id, name, role, phone, email, created_at FROM team_members ORDER BY name`
	rows, err := s.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", translate(err))
	}
	defer rows.Close()

	var members []*models.TeamMember
	for rows.Next() {
		member := &models.TeamMember{}
		if err := rows.Scan(&member.ID, &member.Name, &member.Role, &member.Phone, &member.Email, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (s *Store) UpdateTeamMember(ctx context.Context, member *models.TeamMember) error {
	query := `UPDATE team_members SET name = $1, role = $2, phone = $3, email = $4 WHERE id = $5`
	result, err := s.ExecContext(ctx, query, member.Name, member.Role, member.Phone, member.Email, member.ID)
	if err != nil {
		return fmt.Errorf("failed to update team member: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("update team member %d: %w", member.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteTeamMember(ctx context.Context, id int64) error {
	result, err := s.ExecContext(ctx, `DELETE FROM team_members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team member: %w", translate(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete team member %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
