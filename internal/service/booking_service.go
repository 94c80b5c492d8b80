package service

import (
	"context"
	"errors"
	"time"

	"zapys/internal/database"
	"zapys/internal/domain"
	"zapys/internal/events"
	"zapys/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNotOwner запись принадлежит другому пользователю
var ErrNotOwner = errors.New("booking belongs to another owner")

type BookingService struct {
	repo        domain.BookingRepository
	eventBus    domain.EventPublisher
	exportQueue domain.ExportQueue
	logger      *zerolog.Logger
}

func NewBookingService(repo domain.BookingRepository, eventBus domain.EventPublisher, exportQueue domain.ExportQueue, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:        repo,
		eventBus:    eventBus,
		exportQueue: exportQueue,
		logger:      logger,
	}
}

// CreateBooking reserves the slot and stores the booking. The slot
// check and the insert are one atomic step in the repository.
func (s *BookingService) CreateBooking(ctx context.Context, owner, date, timeStr string) (*models.Booking, error) {
	if owner == "" {
		owner = models.AnonymousOwner
	}

	booking := &models.Booking{
		Owner: owner,
		Date:  date,
		Time:  timeStr,
	}
	if err := s.repo.CreateBookingWithLock(ctx, booking); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingCreated, booking)
	return booking, nil
}

// RescheduleBooking moves a booking to a new slot. Moving onto the
// booking's own current slot always succeeds.
func (s *BookingService) RescheduleBooking(ctx context.Context, id int64, date, timeStr string) (*models.Booking, error) {
	if err := s.repo.UpdateBookingWithLock(ctx, id, date, timeStr); err != nil {
		return nil, err
	}

	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingRescheduled, booking)
	return booking, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, id int64) error {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingCancelled, booking)
	return nil
}

// GetBookingForOwner loads a booking and verifies ownership.
func (s *BookingService) GetBookingForOwner(ctx context.Context, id int64, owner string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if owner == "" {
		owner = models.AnonymousOwner
	}
	if booking.Owner != owner {
		return nil, ErrNotOwner
	}
	return booking, nil
}

func (s *BookingService) GetUserBookings(ctx context.Context, owner string) ([]*models.Booking, error) {
	if owner == "" {
		owner = models.AnonymousOwner
	}
	return s.repo.GetUserBookings(ctx, owner)
}

func (s *BookingService) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	return s.repo.GetAllBookings(ctx)
}

func (s *BookingService) IsSlotTaken(ctx context.Context, date, timeStr string) (bool, error) {
	return s.repo.IsSlotTaken(ctx, date, timeStr)
}

func (s *BookingService) CountBookings(ctx context.Context) (int64, error) {
	return s.repo.CountBookings(ctx)
}

// RequestExport puts an export job on the worker queue.
func (s *BookingService) RequestExport(ctx context.Context, requestedBy, chatID int64) error {
	if s.exportQueue == nil {
		return errors.New("export queue is not configured")
	}

	job := &models.ExportJob{
		ID:          uuid.NewString(),
		RequestedBy: requestedBy,
		ChatID:      chatID,
		CreatedAt:   time.Now().UTC(),
	}
	return s.exportQueue.Enqueue(ctx, job)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		Owner:     booking.Owner,
		Date:      booking.Date,
		Time:      booking.Time,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

// IsNotFound reports whether the error means the booking does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}

// IsSlotConflict reports whether the error means the slot is occupied.
func IsSlotConflict(err error) bool {
	return errors.Is(err, database.ErrSlotTaken)
}
