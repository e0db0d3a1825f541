package models

// DashboardSummary is the aggregate block behind GET /dashboard.
// TotalRevenue sums every recorded payment; TotalPending sums the open
// balance of projects that are not in a terminal status.
type DashboardSummary struct {
	TotalClients   int64     `json:"total_clients"`
	TotalProjects  int64     `json:"total_projects"`
	TotalRevenue   int64     `json:"total_revenue"`
	TotalPending   int64     `json:"total_pending"`
	RecentProjects []Project `json:"recent_projects"`
}
