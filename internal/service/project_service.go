package service

import (
	"context"
	"errors"
	"fmt"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/events"
	"shutterdesk/internal/ledger"
	"shutterdesk/internal/models"

	"github.com/rs/zerolog"
)

// ProjectService owns the booking lifecycle: creation with the one-time
// deposit split, metadata updates, status transitions and the revision
// counter. Financial totals never move here; that is PaymentService territory.
type ProjectService struct {
	repo                 domain.Repository
	eventBus             domain.EventPublisher
	mirrorWorker         domain.SyncWorker
	cache                domain.SummaryCache
	defaultRevisionLimit int64
	logger               *zerolog.Logger
}

func NewProjectService(repo domain.Repository, eventBus domain.EventPublisher, mirrorWorker domain.SyncWorker, cache domain.SummaryCache, defaultRevisionLimit int64, logger *zerolog.Logger) *ProjectService {
	if defaultRevisionLimit <= 0 {
		defaultRevisionLimit = models.DefaultRevisionLimit
	}
	return &ProjectService{
		repo:                 repo,
		eventBus:             eventBus,
		mirrorWorker:         mirrorWorker,
		cache:                cache,
		defaultRevisionLimit: defaultRevisionLimit,
		logger:               logger,
	}
}

func (s *ProjectService) Create(ctx context.Context, input *models.ProjectInput) (*models.Project, error) {
	// Проверяем ссылки: имена нужны и для зеркала
	client, err := s.repo.GetClient(ctx, input.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("client %d does not exist: %w", input.ClientID, domain.ErrValidation)
		}
		return nil, err
	}

	pkg, err := s.repo.GetPackage(ctx, input.PackageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("package %d does not exist: %w", input.PackageID, domain.ErrValidation)
		}
		return nil, err
	}

	// Цена снимается с пакета один раз; override имеет приоритет
	price := pkg.Price
	if input.PriceOverride != nil {
		price = *input.PriceOverride
	}

	split, err := ledger.ComputeSplit(price)
	if err != nil {
		return nil, fmt.Errorf("project price %d is invalid: %w", price, domain.ErrValidation)
	}

	revisionLimit := s.defaultRevisionLimit
	if input.RevisionLimit != nil {
		if *input.RevisionLimit < 0 {
			return nil, fmt.Errorf("revision limit must not be negative: %w", domain.ErrValidation)
		}
		revisionLimit = *input.RevisionLimit
	}

	// Хранимый balance_amount стартует с полной цены: amount_paid +
	// balance_amount == price должно выполняться с момента создания.
	// Выход калькулятора (остаток после депозита) — справочный.
	project := &models.Project{
		ClientID:       input.ClientID,
		PackageID:      input.PackageID,
		EventType:      input.EventType,
		EventDate:      input.EventDate,
		EventTime:      input.EventTime,
		Location:       input.Location,
		Status:         models.StatusNew,
		Price:          price,
		DepositPercent: split.Percent,
		DepositAmount:  split.Deposit,
		BalanceAmount:  price,
		AmountPaid:     0,
		RevisionLimit:  revisionLimit,
		Notes:          input.Notes,
		CrewAssigned:   input.CrewAssigned,
		DriveLink:      input.DriveLink,
		InternalPath:   input.InternalPath,
	}

	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	// Публикуем событие
	s.publishProject(events.EventProjectCreated, project, client.Name, "")

	// Ставим задачу на синхронизацию зеркала
	s.enqueueMirror(ctx, models.TaskUpsert, models.MirrorPayload{
		ProjectID:   project.ID,
		Project:     project,
		ClientName:  client.Name,
		PackageName: pkg.Name,
	})

	s.invalidateSummary(ctx)
	return project, nil
}

func (s *ProjectService) Get(ctx context.Context, id int64) (*models.Project, error) {
	return s.repo.GetProject(ctx, id)
}

func (s *ProjectService) List(ctx context.Context) ([]*models.Project, error) {
	return s.repo.ListProjects(ctx)
}

// Update applies the mutable metadata set. Price, deposit split and the
// running totals are untouchable here even if the package was repriced.
func (s *ProjectService) Update(ctx context.Context, id int64, input *models.ProjectUpdate) (*models.Project, error) {
	if input.RevisionLimit < 0 {
		return nil, fmt.Errorf("revision limit must not be negative: %w", domain.ErrValidation)
	}

	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	project.EventType = input.EventType
	project.EventDate = input.EventDate
	project.EventTime = input.EventTime
	project.Location = input.Location
	project.RevisionLimit = input.RevisionLimit
	project.Notes = input.Notes
	project.CrewAssigned = input.CrewAssigned
	project.DriveLink = input.DriveLink
	project.InternalPath = input.InternalPath

	if err := s.repo.UpdateProject(ctx, project); err != nil {
		return nil, err
	}

	s.publishProject(events.EventProjectUpdated, project, "", "")

	clientName, packageName := s.mirrorNames(ctx, project)
	s.enqueueMirror(ctx, models.TaskUpsert, models.MirrorPayload{
		ProjectID:   project.ID,
		Project:     project,
		ClientName:  clientName,
		PackageName: packageName,
	})

	s.invalidateSummary(ctx)
	return project, nil
}

// ChangeStatus moves the project to any member of the status set; adjacency
// is not enforced. Completed and Cancelled are terminal. A concurrent writer
// between the read and the versioned update surfaces as a consistency error;
// retry policy belongs to the caller.
func (s *ProjectService) ChangeStatus(ctx context.Context, id int64, status string) (*models.Project, error) {
	if !models.IsValidStatus(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, domain.ErrValidation)
	}

	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalStatus(project.Status) {
		return nil, fmt.Errorf("project %d is %s and its status is final: %w", id, project.Status, domain.ErrValidation)
	}

	oldStatus := project.Status
	if err := s.repo.UpdateProjectStatusWithVersion(ctx, id, project.Version, status); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	// Публикуем событие
	s.publishProject(events.EventStatusChanged, updated, "", oldStatus)

	s.enqueueMirror(ctx, models.TaskUpdateStatus, models.MirrorPayload{
		ProjectID: id,
		Status:    status,
	})

	s.invalidateSummary(ctx)
	return updated, nil
}

func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return err
	}

	s.publishProject(events.EventProjectDeleted, project, "", "")

	s.enqueueMirror(ctx, models.TaskDelete, models.MirrorPayload{ProjectID: id})

	s.invalidateSummary(ctx)
	return nil
}

// RecordRevision charges one revision against the allotment and reports
// whether the booking is now over its limit. Billing the overage is a manual
// follow-up, not something this call does.
func (s *ProjectService) RecordRevision(ctx context.Context, id int64) (*models.RevisionResult, error) {
	project, err := s.repo.RecordRevision(ctx, id)
	if err != nil {
		return nil, err
	}

	overLimit := project.RevisionsUsed > project.RevisionLimit
	s.publishRevision(events.EventRevisionRecorded, project, overLimit)

	clientName, packageName := s.mirrorNames(ctx, project)
	s.enqueueMirror(ctx, models.TaskUpsert, models.MirrorPayload{
		ProjectID:   project.ID,
		Project:     project,
		ClientName:  clientName,
		PackageName: packageName,
	})

	return &models.RevisionResult{Project: project, OverLimit: overLimit}, nil
}

func (s *ProjectService) ResetRevisions(ctx context.Context, id int64) (*models.Project, error) {
	project, err := s.repo.ResetRevisions(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishRevision(events.EventRevisionsReset, project, false)

	clientName, packageName := s.mirrorNames(ctx, project)
	s.enqueueMirror(ctx, models.TaskUpsert, models.MirrorPayload{
		ProjectID:   project.ID,
		Project:     project,
		ClientName:  clientName,
		PackageName: packageName,
	})

	return project, nil
}

func (s *ProjectService) publishProject(eventType string, project *models.Project, clientName, oldStatus string) {
	if s.eventBus == nil {
		return
	}

	payload := events.ProjectEventPayload{
		ProjectID:  project.ID,
		ClientID:   project.ClientID,
		ClientName: clientName,
		EventType:  project.EventType,
		EventDate:  project.EventDate,
		Status:     project.Status,
		OldStatus:  oldStatus,
		Price:      project.Price,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("project_id", project.ID).Msg("publish event error")
	}
}

func (s *ProjectService) publishRevision(eventType string, project *models.Project, overLimit bool) {
	if s.eventBus == nil {
		return
	}

	payload := events.RevisionEventPayload{
		ProjectID:     project.ID,
		RevisionsUsed: project.RevisionsUsed,
		RevisionLimit: project.RevisionLimit,
		OverLimit:     overLimit,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("project_id", project.ID).Msg("publish event error")
	}
}

func (s *ProjectService) enqueueMirror(ctx context.Context, taskType string, payload models.MirrorPayload) {
	if s.mirrorWorker == nil {
		return
	}

	if err := s.mirrorWorker.EnqueueTask(ctx, taskType, payload); err != nil {
		s.logger.Error().Err(err).Str("task", taskType).Int64("project_id", payload.ProjectID).Msg("mirror enqueue error")
	}
}

// mirrorNames resolves display names for the mirror row. Lookups that fail
// leave the name empty; the mirror tolerates that.
func (s *ProjectService) mirrorNames(ctx context.Context, project *models.Project) (string, string) {
	var clientName, packageName string
	if client, err := s.repo.GetClient(ctx, project.ClientID); err == nil {
		clientName = client.Name
	}
	if pkg, err := s.repo.GetPackage(ctx, project.PackageID); err == nil {
		packageName = pkg.Name
	}
	return clientName, packageName
}

func (s *ProjectService) invalidateSummary(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("dashboard cache invalidate error")
	}
}
