package models

import "time"

// Prediction — одна строка прогноза: (user, race, driver) уникальны вместе.
// Полный прогноз пользователя на гонку — набор строк с позициями 1..N.
type Prediction struct {
	ID          int       `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id"`
	RaceID      int       `json:"race_id" db:"race_id"`
	DriverID    int       `json:"driver_id" db:"driver_id"`
	Position    int       `json:"position" db:"position"`
	PredictedAt time.Time `json:"predicted_at" db:"predicted_at"`
}
