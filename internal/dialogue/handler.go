package dialogue

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"zapys/internal/models"
	"zapys/internal/service"
)

// Форматы проверяются только по шаблону, без календарной валидации
var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)
	l := zerolog.Ctx(ctx)

	l.Debug().
		Int64("user_id", userID).
		Str("username", update.Message.From.UserName).
		Str("text", text).
		Msg("Handling message")

	if b.metrics != nil {
		b.metrics.MessagesTotal.Inc()
	}

	switch text {
	case "/start", "/help":
		b.clearState(ctx, userID)
		b.sendMessage(chatID, msgHelp)
		return

	case "/book":
		// Новая команда заменяет незавершенный диалог
		if _, err := b.stateService.Begin(ctx, userID, models.FlowCreate, models.StepAwaitingDate); err != nil {
			l.Error().Err(err).Int64("user_id", userID).Msg("failed to begin flow")
			b.sendMessage(chatID, msgInternalError)
			return
		}
		b.sendMessage(chatID, msgAskDate)
		return

	case "/view":
		b.clearState(ctx, userID)
		b.showUserBookings(ctx, update)
		return

	case "/cancel":
		if _, err := b.stateService.Begin(ctx, userID, models.FlowCancel, models.StepAwaitingCancelID); err != nil {
			l.Error().Err(err).Int64("user_id", userID).Msg("failed to begin flow")
			b.sendMessage(chatID, msgInternalError)
			return
		}
		b.sendMessage(chatID, msgAskCancelID)
		return

	case "/change":
		if _, err := b.stateService.Begin(ctx, userID, models.FlowChange, models.StepAwaitingChangeID); err != nil {
			l.Error().Err(err).Int64("user_id", userID).Msg("failed to begin flow")
			b.sendMessage(chatID, msgInternalError)
			return
		}
		b.sendMessage(chatID, msgAskChangeID)
		return

	case "/export":
		b.handleExport(ctx, update)
		return

	case "/stats":
		b.handleStats(ctx, update)
		return
	}

	state, err := b.stateService.Get(ctx, userID)
	if err != nil {
		b.sendMessage(chatID, msgInternalError)
		return
	}
	if state == nil {
		b.sendMessage(chatID, msgUnknown)
		return
	}

	b.handleStep(ctx, update, state, text)
}

func (b *Bot) handleStep(ctx context.Context, update tgbotapi.Update, state *models.UserState, text string) {
	switch state.CurrentStep {
	case models.StepAwaitingDate:
		b.handleDateInput(ctx, update, state, text)
	case models.StepAwaitingTime:
		b.handleTimeInput(ctx, update, state, text)
	case models.StepAwaitingCancelID:
		b.handleCancelID(ctx, update, state, text)
	case models.StepAwaitingChangeID:
		b.handleChangeID(ctx, update, state, text)
	default:
		b.clearState(ctx, state.UserID)
		b.sendMessage(update.Message.Chat.ID, msgUnknown)
	}
}

func (b *Bot) handleDateInput(ctx context.Context, update tgbotapi.Update, state *models.UserState, text string) {
	chatID := update.Message.Chat.ID

	if !dateRe.MatchString(text) {
		// Шаг не меняется, ждем корректный ввод
		b.sendMessage(chatID, msgBadDate)
		return
	}

	state.Set(models.FieldDate, text)
	if err := b.stateService.Advance(ctx, state, models.StepAwaitingTime); err != nil {
		b.sendMessage(chatID, msgInternalError)
		return
	}
	b.sendMessage(chatID, msgAskTime)
}

func (b *Bot) handleTimeInput(ctx context.Context, update tgbotapi.Update, state *models.UserState, text string) {
	chatID := update.Message.Chat.ID
	l := zerolog.Ctx(ctx)

	if !timeRe.MatchString(text) {
		b.sendMessage(chatID, msgBadTime)
		return
	}

	// Дата обязана быть собрана на предыдущем шаге
	date := state.GetString(models.FieldDate)
	if date == "" {
		l.Error().Int64("user_id", state.UserID).Str("flow", state.Flow).Msg("session has no collected date at time step")
		b.clearState(ctx, state.UserID)
		b.sendMessage(chatID, msgInternalError)
		return
	}

	switch state.Flow {
	case models.FlowCreate:
		booking, err := b.bookingService.CreateBooking(ctx, ownerOf(update), date, text)
		if err != nil {
			if service.IsSlotConflict(err) {
				// Слот занят, остаемся на шаге выбора времени
				b.sendMessage(chatID, msgSlotTaken)
				return
			}
			l.Error().Err(err).Msg("failed to create booking")
			b.clearState(ctx, state.UserID)
			b.sendMessage(chatID, b.getErrorMessage(err))
			return
		}

		if b.metrics != nil {
			b.metrics.BookingsCreated.Inc()
		}
		b.clearState(ctx, state.UserID)
		b.sendMessage(chatID, fmt.Sprintf(msgCreatedFmt, booking.Date, booking.Time, booking.ID))

	case models.FlowChange:
		id := state.GetInt64(models.FieldTargetID)
		if id == 0 {
			l.Error().Int64("user_id", state.UserID).Msg("session has no target booking id at time step")
			b.clearState(ctx, state.UserID)
			b.sendMessage(chatID, msgInternalError)
			return
		}
		booking, err := b.bookingService.RescheduleBooking(ctx, id, date, text)
		if err != nil {
			if service.IsSlotConflict(err) {
				b.sendMessage(chatID, msgSlotTaken)
				return
			}
			l.Error().Err(err).Int64("booking_id", id).Msg("failed to reschedule booking")
			b.clearState(ctx, state.UserID)
			b.sendMessage(chatID, b.getErrorMessage(err))
			return
		}

		b.clearState(ctx, state.UserID)
		b.sendMessage(chatID, fmt.Sprintf(msgRescheduledFmt, booking.ID, booking.Date, booking.Time))

	default:
		b.clearState(ctx, state.UserID)
		b.sendMessage(chatID, msgUnknown)
	}
}

func (b *Bot) handleCancelID(ctx context.Context, update tgbotapi.Update, state *models.UserState, text string) {
	chatID := update.Message.Chat.ID
	l := zerolog.Ctx(ctx)

	// Любая ошибка ввода завершает диалог
	defer b.clearState(ctx, state.UserID)

	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		b.sendMessage(chatID, msgBadID)
		return
	}

	if err := b.bookingService.CancelBooking(ctx, id); err != nil {
		if !service.IsNotFound(err) {
			l.Error().Err(err).Int64("booking_id", id).Msg("failed to cancel booking")
		}
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.sendMessage(chatID, msgCancelled)
}

func (b *Bot) handleChangeID(ctx context.Context, update tgbotapi.Update, state *models.UserState, text string) {
	chatID := update.Message.Chat.ID

	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		b.clearState(ctx, state.UserID)
		b.sendMessage(chatID, msgBadID)
		return
	}

	// Переносить можно только собственный запис
	if _, err := b.bookingService.GetBookingForOwner(ctx, id, ownerOf(update)); err != nil {
		if !service.IsNotFound(err) && !errors.Is(err, service.ErrNotOwner) {
			zerolog.Ctx(ctx).Error().Err(err).Int64("booking_id", id).Msg("failed to load booking for reschedule")
		}
		b.clearState(ctx, state.UserID)
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	state.Set(models.FieldTargetID, id)
	if err := b.stateService.Advance(ctx, state, models.StepAwaitingDate); err != nil {
		b.clearState(ctx, state.UserID)
		b.sendMessage(chatID, msgInternalError)
		return
	}
	b.sendMessage(chatID, msgAskNewDate)
}

func (b *Bot) showUserBookings(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	bookings, err := b.bookingService.GetUserBookings(ctx, ownerOf(update))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list user bookings")
		b.sendMessage(chatID, msgInternalError)
		return
	}

	if len(bookings) == 0 {
		b.sendMessage(chatID, msgNoBookings)
		return
	}

	var sb strings.Builder
	sb.WriteString(msgBookingsHeader)
	for _, booking := range bookings {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf(msgBookingLineFmt, booking.ID, booking.Date, booking.Time))
	}
	b.sendMessage(chatID, sb.String())
}

func (b *Bot) handleExport(ctx context.Context, update tgbotapi.Update) {
	if !b.isManager(update.Message.From.ID) {
		b.sendMessage(update.Message.Chat.ID, msgUnknown)
		return
	}

	if err := b.bookingService.RequestExport(ctx, update.Message.From.ID, update.Message.Chat.ID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to enqueue export")
		b.sendMessage(update.Message.Chat.ID, msgInternalError)
		return
	}
	b.sendMessage(update.Message.Chat.ID, msgExportQueued)
}

func (b *Bot) handleStats(ctx context.Context, update tgbotapi.Update) {
	if !b.isManager(update.Message.From.ID) {
		b.sendMessage(update.Message.Chat.ID, msgUnknown)
		return
	}

	count, err := b.bookingService.CountBookings(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to count bookings")
		b.sendMessage(update.Message.Chat.ID, msgInternalError)
		return
	}
	b.sendMessage(update.Message.Chat.ID, fmt.Sprintf(msgStatsFmt, count))
}
