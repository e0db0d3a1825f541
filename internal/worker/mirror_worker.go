package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// MirrorWorker consumes sync_queue tasks and applies them to the spreadsheet
// mirror. Every task is persisted before dispatch, so a crash or shutdown
// loses nothing: the poll loop picks pending rows back up on the next start.
type MirrorWorker struct {
	repo          domain.Repository
	mirror        domain.MirrorWriter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.SyncTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *zerolog.Logger
}

// NewMirrorWorker builds a worker with sane defaults.
func NewMirrorWorker(repo domain.Repository, mirror domain.MirrorWriter, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *MirrorWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &MirrorWorker{
		repo:          repo,
		mirror:        mirror,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.SyncTask, models.WorkerQueueSize),
		redisQueueKey: "mirror:queue",
		deadLetterKey: "mirror:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// EnqueueTask persists the task and schedules it via redis or the in-memory
// queue. Implements domain.SyncWorker.
func (w *MirrorWorker) EnqueueTask(ctx context.Context, taskType string, payload models.MirrorPayload) error {
	if taskType == "" {
		return errors.New("task type is required")
	}
	if payload.ProjectID == 0 && payload.Project != nil {
		payload.ProjectID = payload.Project.ID
	}
	if payload.ProjectID == 0 {
		return errors.New("project id is required")
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := models.SyncTask{
		TaskType:  taskType,
		ProjectID: payload.ProjectID,
		Payload:   string(payloadBytes),
		Status:    "pending",
		CreatedAt: time.Now(),
	}

	if err := w.repo.CreateSyncTask(ctx, &task); err != nil {
		return fmt.Errorf("persist sync task: %w", err)
	}

	// Сначала redis; без него живём на локальной очереди и поллинге
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Int64("task_id", task.ID).Msg("redis push failed, falling back to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
	default:
		w.logger.Warn().Int64("task_id", task.ID).Msg("memory queue full, task left to polling")
	}

	return nil
}

// Start launches the main loop; it returns when ctx is done.
func (w *MirrorWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("mirror worker started")
	defer w.logger.Info().Msg("mirror worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.repo.GetPendingSyncTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("fetch pending tasks error")
			w.sleep(ctx)
			continue
		}
		if len(tasks) == 0 {
			w.sleep(ctx)
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *MirrorWorker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.pollInterval):
	}
}

func (w *MirrorWorker) tryLocalQueue() (models.SyncTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.SyncTask{}, false
	}
}

func (w *MirrorWorker) tryRedis(ctx context.Context) (models.SyncTask, bool) {
	if w.redis == nil {
		return models.SyncTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return models.SyncTask{}, false
		}
		w.logger.Error().Err(err).Msg("redis BRPOP error")
		return models.SyncTask{}, false
	}
	if len(res) != 2 {
		return models.SyncTask{}, false
	}
	var task models.SyncTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("decode redis task error")
		return models.SyncTask{}, false
	}
	return task, true
}

func (w *MirrorWorker) processTask(ctx context.Context, task *models.SyncTask) {
	payload, err := w.decodePayload(task.Payload)
	if err != nil {
		w.failTask(ctx, task, fmt.Errorf("decode payload: %w", err))
		return
	}

	if err := w.handleMirrorTask(ctx, task.TaskType, payload); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	if err := w.repo.UpdateSyncTaskStatus(ctx, task.ID, "completed", "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark completed error")
	}
}

func (w *MirrorWorker) handleMirrorTask(ctx context.Context, taskType string, payload models.MirrorPayload) error {
	switch taskType {
	case models.TaskUpsert:
		if payload.Project == nil {
			return errors.New("project payload missing")
		}
		return w.mirror.UpsertProject(ctx, payload.Project, payload.ClientName, payload.PackageName)
	case models.TaskDelete:
		if payload.ProjectID == 0 {
			return errors.New("project id missing")
		}
		return w.mirror.DeleteProjectRow(ctx, payload.ProjectID)
	case models.TaskUpdateStatus:
		if payload.ProjectID == 0 || payload.Status == "" {
			return errors.New("project id or status missing")
		}
		return w.mirror.UpdateProjectStatus(ctx, payload.ProjectID, payload.Status)
	case models.TaskPaymentAppend:
		if payload.Payment == nil {
			return errors.New("payment payload missing")
		}
		return w.mirror.AppendPayment(ctx, payload.Payment, payload.ClientName)
	case models.TaskPaymentDelete:
		if payload.PaymentID == 0 {
			return errors.New("payment id missing")
		}
		return w.mirror.DeletePaymentRow(ctx, payload.PaymentID)
	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}
}

func (w *MirrorWorker) retryOrFail(ctx context.Context, task *models.SyncTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		if err := w.repo.UpdateSyncTaskStatus(ctx, task.ID, "failed", cause.Error(), nil); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark failed error")
		}
		w.pushDeadLetter(ctx, task)
		return
	}

	nextDelay := w.retryPolicy.NextDelay(attempt)
	nextTime := time.Now().Add(nextDelay)
	if err := w.repo.UpdateSyncTaskStatus(ctx, task.ID, "retry", cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark retry error")
	}
}

func (w *MirrorWorker) failTask(ctx context.Context, task *models.SyncTask, cause error) {
	if err := w.repo.UpdateSyncTaskStatus(ctx, task.ID, "failed", cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark failed error")
	}
	w.pushDeadLetter(ctx, task)
}

func (w *MirrorWorker) decodePayload(raw string) (models.MirrorPayload, error) {
	var payload models.MirrorPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

func (w *MirrorWorker) pushRedis(ctx context.Context, task models.SyncTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *MirrorWorker) pushDeadLetter(ctx context.Context, task *models.SyncTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("encode deadletter error")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("deadletter push error")
	}
}
