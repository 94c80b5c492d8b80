package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"zapys/internal/domain"
	"zapys/internal/models"
)

// ExportWriter renders the booking list into a file and returns its path.
type ExportWriter interface {
	Write(bookings []*models.Booking) (string, error)
}

// ExportWorker consumes export jobs, renders the spreadsheet and sends
// it back to the requesting chat. Jobs go through redis when available,
// with an in-memory queue as fallback.
type ExportWorker struct {
	repo          domain.BookingRepository
	writer        ExportWriter
	sender        domain.TelegramSender
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.ExportJob
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        *zerolog.Logger
}

// NewExportWorker builds a worker with sane defaults.
func NewExportWorker(repo domain.BookingRepository, writer ExportWriter, sender domain.TelegramSender, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *ExportWorker {
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

	return &ExportWorker{
		repo:          repo,
		writer:        writer,
		sender:        sender,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.ExportJob, models.WorkerQueueSize),
		redisQueueKey: "exports:queue",
		deadLetterKey: "exports:deadletter",
		pollInterval:  2 * time.Second,
		logger:        logger,
	}
}

// Enqueue schedules a job via redis or the in-memory queue.
func (w *ExportWorker) Enqueue(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		return errors.New("job id is required")
	}

	// Redis первым, для надежности
	if w.redis != nil {
		if err := w.pushRedis(ctx, *job); err != nil {
			w.logger.Warn().Err(err).Str("job_id", job.ID).Msg("redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- *job:
		return nil
	default:
		return errors.New("export queue is full")
	}
}

// Start launches the main loop; stops when ctx is done.
func (w *ExportWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("export worker started")
	defer w.logger.Info().Msg("export worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if job, ok := w.tryLocalQueue(); ok {
			w.processJob(ctx, &job)
			continue
		}

		if job, ok := w.tryRedis(ctx); ok {
			w.processJob(ctx, &job)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *ExportWorker) tryLocalQueue() (models.ExportJob, bool) {
	select {
	case job := <-w.queue:
		return job, true
	default:
		return models.ExportJob{}, false
	}
}

func (w *ExportWorker) tryRedis(ctx context.Context) (models.ExportJob, bool) {
	if w.redis == nil {
		return models.ExportJob{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return models.ExportJob{}, false
		}
		w.logger.Error().Err(err).Msg("redis BRPOP error")
		return models.ExportJob{}, false
	}
	if len(res) != 2 {
		return models.ExportJob{}, false
	}
	var job models.ExportJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		w.logger.Error().Err(err).Msg("decode redis job")
		return models.ExportJob{}, false
	}
	return job, true
}

func (w *ExportWorker) processJob(ctx context.Context, job *models.ExportJob) {
	if err := w.runExport(ctx, job); err != nil {
		w.retryOrFail(ctx, job, err)
		return
	}

	w.logger.Info().Str("job_id", job.ID).Int64("chat_id", job.ChatID).Msg("export delivered")
}

func (w *ExportWorker) runExport(ctx context.Context, job *models.ExportJob) error {
	bookings, err := w.repo.GetAllBookings(ctx)
	if err != nil {
		return fmt.Errorf("load bookings: %w", err)
	}

	path, err := w.writer.Write(bookings)
	if err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	if err := w.sender.SendDocument(job.ChatID, path); err != nil {
		return fmt.Errorf("send export: %w", err)
	}
	return nil
}

func (w *ExportWorker) retryOrFail(ctx context.Context, job *models.ExportJob, cause error) {
	job.Attempts++
	if job.Attempts >= w.retryPolicy.MaxRetries {
		w.logger.Error().Err(cause).Str("job_id", job.ID).Int("attempts", job.Attempts).Msg("export failed, moving to dead letter")
		w.pushDeadLetter(ctx, job)
		return
	}

	delay := w.retryPolicy.NextDelay(job.Attempts)
	w.logger.Warn().Err(cause).Str("job_id", job.ID).Dur("delay", delay).Msg("export failed, will retry")

	select {
	case <-ctx.Done():
		return
	case <-time.After(delay):
	}

	if err := w.Enqueue(ctx, job); err != nil {
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("re-enqueue failed")
		w.pushDeadLetter(ctx, job)
	}
}

func (w *ExportWorker) pushRedis(ctx context.Context, job models.ExportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *ExportWorker) pushDeadLetter(ctx context.Context, job *models.ExportJob) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(job)
	if err != nil {
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("deadletter push")
	}
}
