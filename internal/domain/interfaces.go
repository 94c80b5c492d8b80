package domain

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"zapys/internal/models"
)

// BookingRepository is the persistence boundary for bookings. The slot
// invariant lives behind CreateBookingWithLock and UpdateBookingWithLock.
type BookingRepository interface {
	CreateBookingWithLock(ctx context.Context, booking *models.Booking) error
	UpdateBookingWithLock(ctx context.Context, id int64, date, time string) error
	DeleteBooking(ctx context.Context, id int64) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetUserBookings(ctx context.Context, owner string) ([]*models.Booking, error)
	GetAllBookings(ctx context.Context) ([]*models.Booking, error)
	IsSlotTaken(ctx context.Context, date, time string) (bool, error)
	CountBookings(ctx context.Context) (int64, error)
}

// StateRepository stores per-user dialogue state.
type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

// StateManager is the dialogue-facing view over StateRepository.
type StateManager interface {
	Get(ctx context.Context, userID int64) (*models.UserState, error)
	Begin(ctx context.Context, userID int64, flow, step string) (*models.UserState, error)
	Advance(ctx context.Context, state *models.UserState, step string) error
	Clear(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64) (bool, error)
}

// BookingService is the use-case layer consumed by the dialogue
// handlers and the HTTP API.
type BookingService interface {
	CreateBooking(ctx context.Context, owner, date, time string) (*models.Booking, error)
	RescheduleBooking(ctx context.Context, id int64, date, time string) (*models.Booking, error)
	CancelBooking(ctx context.Context, id int64) error
	GetBookingForOwner(ctx context.Context, id int64, owner string) (*models.Booking, error)
	GetUserBookings(ctx context.Context, owner string) ([]*models.Booking, error)
	ListBookings(ctx context.Context) ([]*models.Booking, error)
	IsSlotTaken(ctx context.Context, date, time string) (bool, error)
	CountBookings(ctx context.Context) (int64, error)
	RequestExport(ctx context.Context, requestedBy, chatID int64) error
}

// EventPublisher fan-outs domain events to subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ExportQueue hands export jobs to the background worker.
type ExportQueue interface {
	Enqueue(ctx context.Context, job *models.ExportJob) error
}

// TelegramSender abstracts the bot API client for tests.
type TelegramSender interface {
	SendMessage(chatID int64, text string) error
	SendDocument(chatID int64, path string) error
}

// TelegramService is the full client surface the update loop needs.
type TelegramService interface {
	TelegramSender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}
