package models

// Result — фактический финиш одного пилота в одной гонке.
// Пара (driver_id, position) уникальна в пределах гонки.
type Result struct {
	ID            int `json:"id" db:"id"`
	RaceID        int `json:"race_id" db:"race_id"`
	DriverID      int `json:"driver_id" db:"driver_id"`
	ConstructorID int `json:"constructor_id" db:"constructor_id"`
	Position      int `json:"position" db:"position"`
	Points        int `json:"points" db:"points"`
}
