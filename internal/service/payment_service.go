package service

import (
	"context"
	"fmt"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/events"
	"shutterdesk/internal/models"

	"github.com/rs/zerolog"
)

// PaymentService is the only write path into a project's financial totals
// after creation. Posting and reversal are single repository transactions;
// this layer adds validation, events and mirror bookkeeping around them.
type PaymentService struct {
	repo         domain.Repository
	eventBus     domain.EventPublisher
	mirrorWorker domain.SyncWorker
	cache        domain.SummaryCache
	logger       *zerolog.Logger
}

func NewPaymentService(repo domain.Repository, eventBus domain.EventPublisher, mirrorWorker domain.SyncWorker, cache domain.SummaryCache, logger *zerolog.Logger) *PaymentService {
	return &PaymentService{
		repo:         repo,
		eventBus:     eventBus,
		mirrorWorker: mirrorWorker,
		cache:        cache,
		logger:       logger,
	}
}

func (s *PaymentService) Post(ctx context.Context, input *models.PaymentInput) (*models.Payment, *models.Project, error) {
	if input.ProjectID == 0 {
		return nil, nil, fmt.Errorf("project id is required: %w", domain.ErrValidation)
	}
	if input.Amount <= 0 {
		return nil, nil, fmt.Errorf("payment amount must be positive: %w", domain.ErrValidation)
	}
	if !models.IsValidMethod(input.Method) {
		return nil, nil, fmt.Errorf("unknown payment method %q: %w", input.Method, domain.ErrValidation)
	}

	payment := &models.Payment{
		ProjectID: input.ProjectID,
		Amount:    input.Amount,
		Method:    input.Method,
		Reference: input.Reference,
		Note:      input.Note,
	}

	project, err := s.repo.PostPayment(ctx, payment)
	if err != nil {
		return nil, nil, err
	}

	// Публикуем событие
	s.publishPayment(events.EventPaymentPosted, payment, project)

	// Зеркалу нужны и строка платежа, и обновлённые итоги проекта
	clientName, packageName := s.mirrorNames(ctx, project)
	s.enqueueMirror(ctx, models.TaskPaymentAppend, models.MirrorPayload{
		ProjectID:  project.ID,
		Payment:    payment,
		ClientName: clientName,
	})
	s.enqueueMirror(ctx, models.TaskUpsert, models.MirrorPayload{
		ProjectID:   project.ID,
		Project:     project,
		ClientName:  clientName,
		PackageName: packageName,
	})

	s.invalidateSummary(ctx)
	return payment, project, nil
}

// Reverse undoes a posted payment exactly and removes its record.
// expectProjectID, when non-zero, rejects a reversal addressed through the
// wrong project.
func (s *PaymentService) Reverse(ctx context.Context, paymentID, expectProjectID int64) (*models.Project, error) {
	payment, project, err := s.repo.ReversePayment(ctx, paymentID, expectProjectID)
	if err != nil {
		return nil, err
	}

	s.publishPayment(events.EventPaymentReversed, payment, project)

	clientName, packageName := s.mirrorNames(ctx, project)
	s.enqueueMirror(ctx, models.TaskPaymentDelete, models.MirrorPayload{
		ProjectID: project.ID,
		PaymentID: paymentID,
	})
	s.enqueueMirror(ctx, models.TaskUpsert, models.MirrorPayload{
		ProjectID:   project.ID,
		Project:     project,
		ClientName:  clientName,
		PackageName: packageName,
	})

	s.invalidateSummary(ctx)
	return project, nil
}

func (s *PaymentService) Get(ctx context.Context, id int64) (*models.Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

func (s *PaymentService) List(ctx context.Context, projectID int64) ([]*models.Payment, error) {
	return s.repo.ListPayments(ctx, projectID)
}

func (s *PaymentService) publishPayment(eventType string, payment *models.Payment, project *models.Project) {
	if s.eventBus == nil {
		return
	}

	payload := events.PaymentEventPayload{
		PaymentID:     payment.ID,
		ProjectID:     payment.ProjectID,
		Amount:        payment.Amount,
		Method:        payment.Method,
		AmountPaid:    project.AmountPaid,
		BalanceAmount: project.BalanceAmount,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("payment_id", payment.ID).Msg("publish event error")
	}
}

func (s *PaymentService) enqueueMirror(ctx context.Context, taskType string, payload models.MirrorPayload) {
	if s.mirrorWorker == nil {
		return
	}

	if err := s.mirrorWorker.EnqueueTask(ctx, taskType, payload); err != nil {
		s.logger.Error().Err(err).Str("task", taskType).Int64("project_id", payload.ProjectID).Msg("mirror enqueue error")
	}
}

func (s *PaymentService) mirrorNames(ctx context.Context, project *models.Project) (string, string) {
	var clientName, packageName string
	if client, err := s.repo.GetClient(ctx, project.ClientID); err == nil {
		clientName = client.Name
	}
	if pkg, err := s.repo.GetPackage(ctx, project.PackageID); err == nil {
		packageName = pkg.Name
	}
	return clientName, packageName
}

func (s *PaymentService) invalidateSummary(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("dashboard cache invalidate error")
	}
}
