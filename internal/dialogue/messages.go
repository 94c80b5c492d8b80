package dialogue

// Тексты ответов бота (украинский, как общается аудитория)

const (
	msgHelp = `Привіт! Я бот для запису.

Доступні команди:
/book - записатися
/view - переглянути свої записи
/change - перенести запис
/cancel - скасувати запис
/help - довідка`

	msgAskDate    = "Введіть дату запису у форматі РРРР-ММ-ДД:"
	msgBadDate    = "Невірний формат дати. Спробуйте ще раз (РРРР-ММ-ДД):"
	msgAskTime    = "Введіть час запису у форматі ГГ:ХХ:"
	msgBadTime    = "Невірний формат часу. Спробуйте ще раз (ГГ:ХХ):"
	msgSlotTaken  = "Цей час вже зайнято. Оберіть інший час:"
	msgAskNewDate = "Введіть нову дату у форматі РРРР-ММ-ДД:"

	msgCreatedFmt     = "Вас записано на %s о %s. Ваш ID запису: %d"
	msgRescheduledFmt = "Запис %d перенесено на %s о %s."
	msgCancelled      = "Запис скасовано."

	msgNoBookings     = "У вас немає активних записів."
	msgBookingsHeader = "Ваші записи:"
	msgBookingLineFmt = "ID: %d, Дата: %s, Час: %s"

	msgAskCancelID = "Введіть ID запису, який бажаєте скасувати:"
	msgAskChangeID = "Введіть ID запису, який бажаєте змінити:"
	msgBadID       = "Невірний ID запису."
	msgNotFound    = "Запис не знайдено."
	msgNotYours    = "Запис не знайдено або він не належить вам."

	msgUnknown       = "Невідома команда. Скористайтесь /help."
	msgRateLimited   = "Забагато повідомлень. Зачекайте хвилину."
	msgInternalError = "Сталася помилка. Спробуйте пізніше."

	msgExportQueued = "Експорт запущено, файл надійде незабаром."
	msgStatsFmt     = "Всього записів: %d"
)
