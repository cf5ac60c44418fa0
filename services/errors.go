package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrUserNotFound        = errors.New("user not found")
	ErrRaceNotFound        = errors.New("race not found")
	ErrDriverNotFound      = errors.New("driver not found")
	ErrConstructorNotFound = errors.New("constructor not found")

	// Конфликты уникальности
	ErrUsernameConflict    = errors.New("username is already registered")
	ErrDriverConflict      = errors.New("driver is already created")
	ErrConstructorConflict = errors.New("constructor is already created")
	ErrRaceConflict        = errors.New("race with this name and format already exists")
	ErrPredictionConflict  = errors.New("prediction for this race is already submitted")
	ErrResultConflict      = errors.New("result for this driver and position is already recorded")

	// Ошибки валидации и бизнес-правил
	ErrDeadlinePassed   = errors.New("prediction deadline has passed")
	ErrDuplicateDriver  = errors.New("prediction names the same driver more than once")
	ErrNoDrivers        = errors.New("prediction must name at least one driver")
	ErrRaceNameRequired = errors.New("race name is required")
	ErrInvalidFormat    = errors.New("invalid race format")
	ErrInvalidUsername  = errors.New("username must be 5-64 characters, start with a letter and contain only letters, digits, dots and underscores")
	ErrInvalidPassword  = errors.New("password must be an ASCII string between 8 and 72 characters")
	ErrInvalidPosition  = errors.New("finishing position must be positive")
	ErrNegativePoints   = errors.New("points must not be negative")

	// Аутентификация
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNoScoreAvailable — это не сбой, а явное «счёта нет»: у гонки ещё
	// нет очковых финишёров либо у пользователя нет прогноза. Отличается
	// от нулевого счёта и никогда не попадает в сумму.
	ErrNoScoreAvailable = errors.New("no score available")
)
