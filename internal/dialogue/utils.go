package dialogue

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"zapys/internal/models"
)

func (b *Bot) isBlacklisted(userID int64) bool {
	for _, blacklistedID := range b.config.Blacklist {
		if userID == blacklistedID {
			return true
		}
	}
	return false
}

func (b *Bot) isManager(userID int64) bool {
	for _, managerID := range b.config.Managers {
		if userID == managerID {
			return true
		}
	}
	return false
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (b *Bot) clearState(ctx context.Context, userID int64) {
	if err := b.stateService.Clear(ctx, userID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to clear state")
	}
}

// ownerOf returns the booking owner identity for the message author.
func ownerOf(update tgbotapi.Update) string {
	if update.Message == nil || update.Message.From == nil || update.Message.From.UserName == "" {
		return models.AnonymousOwner
	}
	return update.Message.From.UserName
}
