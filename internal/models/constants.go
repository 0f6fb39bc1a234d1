package models

// Статусы ячеек
const (
	CellStatusAvailable = "available"
	CellStatusReserved  = "reserved"
	CellStatusOccupied  = "occupied"
)

// Статусы аренд
const (
	RentalStatusActive  = "active"
	RentalStatusExpired = "expired"
	// RentalStatusCancelled объявлен в домене, но ни один обработчик его
	// не выставляет: досрочное завершение проходит через release -> expired.
	RentalStatusCancelled = "cancelled"
)

// Типы клиентов
const (
	CustomerTypeIndividual = "individual"
	CustomerTypeCompany    = "company"
)

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

// Шаги диалога в боте
const (
	StateMainMenu     = "main_menu"
	StateSharePhone   = "share_phone"
	StateEnterName    = "enter_name"
	StateBrowseCells  = "browse_cells"
	StateMyRentals    = "my_rentals"
	StateEnterCode    = "enter_code"
	StateConfirmation = "confirmation"
)

const (
	// DefaultRedisTTL время жизни состояния пользователя в Redis
	DefaultRedisTTL = 24 * 60 * 60 // 24 часа в секундах

	// ReminderHour час, в который отправляются напоминания об истекающих арендах
	ReminderHour = 9

	// ExpiryNoticeDays за сколько дней до конца аренды шлем напоминание
	ExpiryNoticeDays = 7

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 1000

	// DefaultPaginationSize размер пагинации по умолчанию
	DefaultPaginationSize = 8

	// DefaultRentalsPaginationSize размер пагинации для списка аренд
	DefaultRentalsPaginationSize = 5

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений
	RateLimitWindow = 60 // 1 минута в секундах

	// AuthTokenTTLMinutes время жизни одноразового кода входа
	AuthTokenTTLMinutes = 10

	// MaxPhotoSizeBytes предельный размер загружаемой фотографии
	MaxPhotoSizeBytes = 10 << 20 // 10 MB
)
