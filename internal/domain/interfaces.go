package domain

import (
	"context"
	"time"

	"shutterdesk/internal/models"
)

// Repository is the storage contract the ledger runs on. Implementations
// must keep PostPayment/ReversePayment/DeleteProject atomic: either the whole
// operation lands or none of it does.
type Repository interface {
	CreateClient(ctx context.Context, client *models.Client) error
	GetClient(ctx context.Context, id int64) (*models.Client, error)
	ListClients(ctx context.Context) ([]*models.Client, error)
	UpdateClient(ctx context.Context, client *models.Client) error
	DeleteClient(ctx context.Context, id int64) error

	CreatePackage(ctx context.Context, pkg *models.Package) error
	GetPackage(ctx context.Context, id int64) (*models.Package, error)
	ListPackages(ctx context.Context) ([]*models.Package, error)
	UpdatePackage(ctx context.Context, pkg *models.Package) error
	DeletePackage(ctx context.Context, id int64) error

	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	ListProjects(ctx context.Context) ([]*models.Project, error)
	UpdateProject(ctx context.Context, project *models.Project) error
	UpdateProjectStatusWithVersion(ctx context.Context, id int64, version int64, status string) error
	DeleteProject(ctx context.Context, id int64) error
	RecordRevision(ctx context.Context, projectID int64) (*models.Project, error)
	ResetRevisions(ctx context.Context, projectID int64) (*models.Project, error)

	PostPayment(ctx context.Context, payment *models.Payment) (*models.Project, error)
	ReversePayment(ctx context.Context, paymentID int64, expectProjectID int64) (*models.Payment, *models.Project, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	ListPayments(ctx context.Context, projectID int64) ([]*models.Payment, error)

	CreateTeamMember(ctx context.Context, member *models.TeamMember) error
	GetTeamMember(ctx context.Context, id int64) (*models.TeamMember, error)
	ListTeamMembers(ctx context.Context) ([]*models.TeamMember, error)
	UpdateTeamMember(ctx context.Context, member *models.TeamMember) error
	DeleteTeamMember(ctx context.Context, id int64) error

	GetDashboardSummary(ctx context.Context) (*models.DashboardSummary, error)

	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	GetFailedSyncTasks(ctx context.Context) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error

	Ping(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// MirrorWriter applies ledger changes to the spreadsheet mirror. The mirror
// is a read-only projection; the SQL store stays the source of truth.
type MirrorWriter interface {
	UpsertProject(ctx context.Context, project *models.Project, clientName, packageName string) error
	DeleteProjectRow(ctx context.Context, projectID int64) error
	UpdateProjectStatus(ctx context.Context, projectID int64, status string) error
	AppendPayment(ctx context.Context, payment *models.Payment, clientName string) error
	DeletePaymentRow(ctx context.Context, paymentID int64) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, payload models.MirrorPayload) error
}

// SummaryCache keeps the dashboard aggregate warm between writes.
type SummaryCache interface {
	Get(ctx context.Context) (*models.DashboardSummary, error)
	Set(ctx context.Context, summary *models.DashboardSummary) error
	Invalidate(ctx context.Context) error
}

type ClientService interface {
	Create(ctx context.Context, client *models.Client) error
	Get(ctx context.Context, id int64) (*models.Client, error)
	List(ctx context.Context) ([]*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id int64) error
}

type PackageService interface {
	Create(ctx context.Context, pkg *models.Package) error
	Get(ctx context.Context, id int64) (*models.Package, error)
	List(ctx context.Context) ([]*models.Package, error)
	Update(ctx context.Context, pkg *models.Package) error
	Delete(ctx context.Context, id int64) error
}

type ProjectService interface {
	Create(ctx context.Context, input *models.ProjectInput) (*models.Project, error)
	Get(ctx context.Context, id int64) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Update(ctx context.Context, id int64, input *models.ProjectUpdate) (*models.Project, error)
	ChangeStatus(ctx context.Context, id int64, status string) (*models.Project, error)
	Delete(ctx context.Context, id int64) error
	RecordRevision(ctx context.Context, id int64) (*models.RevisionResult, error)
	ResetRevisions(ctx context.Context, id int64) (*models.Project, error)
}

type PaymentService interface {
	Post(ctx context.Context, input *models.PaymentInput) (*models.Payment, *models.Project, error)
	Reverse(ctx context.Context, paymentID, expectProjectID int64) (*models.Project, error)
	Get(ctx context.Context, id int64) (*models.Payment, error)
	List(ctx context.Context, projectID int64) ([]*models.Payment, error)
}

type TeamService interface {
	Create(ctx context.Context, member *models.TeamMember) error
	Get(ctx context.Context, id int64) (*models.TeamMember, error)
	List(ctx context.Context) ([]*models.TeamMember, error)
	Update(ctx context.Context, member *models.TeamMember) error
	Delete(ctx context.Context, id int64) error
}

type DashboardService interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}
