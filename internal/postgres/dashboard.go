package postgres

import (
	"context"
	"fmt"

	"shutterdesk/internal/models"
)

func (s *Store) GetDashboardSummary(ctx context.Context) (*models.DashboardSummary, error) {
	summary := &models.DashboardSummary{}

	if err := s.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&summary.TotalClients); err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", translate(err))
	}
	if err := s.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&summary.TotalProjects); err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", translate(err))
	}
	if err := s.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments`).Scan(&summary.TotalRevenue); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", translate(err))
	}

	pendingQuery := `SELECT COALESCE(SUM(balance_amount), 0) FROM projects WHERE status NOT IN ($1, $2)`
	if err := s.QueryRowContext(ctx, pendingQuery, models.StatusCompleted, models.StatusCancelled).Scan(&summary.TotalPending); err != nil {
		return nil, fmt.Errorf("failed to sum pending balances: %w", translate(err))
	}

	recentQuery := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := s.QueryContext(ctx, recentQuery, models.DashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent projects: %w", translate(err))
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		summary.RecentProjects = append(summary.RecentProjects, *p)
	}
	return summary, rows.Err()
}
