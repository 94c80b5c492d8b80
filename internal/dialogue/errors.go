package dialogue

import (
	"errors"

	"zapys/internal/service"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if service.IsSlotConflict(err) {
		return msgSlotTaken
	}

	if service.IsNotFound(err) {
		return msgNotFound
	}

	if errors.Is(err, service.ErrNotOwner) {
		return msgNotYours
	}

	return msgInternalError
}
