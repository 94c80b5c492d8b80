package models

// Flow kinds: which overall operation a dialogue session is executing.
const (
	FlowCreate = "create"
	FlowChange = "change"
	FlowCancel = "cancel"
)

// Dialogue steps.
const (
	StepAwaitingDate     = "awaiting_date"
	StepAwaitingTime     = "awaiting_time"
	StepAwaitingCancelID = "awaiting_cancel_id"
	StepAwaitingChangeID = "awaiting_change_id"
)

// TempData keys accumulated by the dialogue.
const (
	FieldDate     = "date"
	FieldTargetID = "target_id"
)

// AnonymousOwner is used when the transport supplies no username.
const AnonymousOwner = "анонім"

const (
	// DefaultRedisTTL время жизни состояния пользователя в Redis
	DefaultRedisTTL = 24 * 60 * 60 // 24 часа в секундах

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 128

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений
	RateLimitWindow = 60 // 1 минута в секундах
)
