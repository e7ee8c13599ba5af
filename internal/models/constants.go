package models

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

const (
	// DateLayout — формат дат в записях клиента (контракт HTML date-input).
	DateLayout = "2006-01-02"

	// ContractLayout — формат генерируемого номера договора ГГММДД-ЧЧММСС.
	ContractLayout = "060102-150405"
)

const (
	// RateLimitMessages сообщений в окне на один чат
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений, секунд
	RateLimitWindow = 60

	// WorkerQueueSize размер локальной очереди воркера
	WorkerQueueSize = 128

	// ReminderDaysBefore за сколько дней до окончания напоминать
	ReminderDaysBefore = 7
)
