package models

import "time"

// RaceFormat представляет формат гонки, соответствующий ENUM в БД.
type RaceFormat string

const (
	FormatGrandPrix RaceFormat = "grand_prix"
	FormatSprint    RaceFormat = "sprint"
)

func (f RaceFormat) Valid() bool {
	switch f {
	case FormatGrandPrix, FormatSprint:
		return true
	}
	return false
}

// Race идентифицируется парой (name, format), уникальной вместе.
type Race struct {
	ID              int        `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Format          RaceFormat `json:"race_format" db:"race_format"`
	CircuitName     *string    `json:"circuit_name,omitempty" db:"circuit_name"`
	CircuitLocation *string    `json:"circuit_location,omitempty" db:"circuit_location"`
	Country         *string    `json:"country,omitempty" db:"country"`
	Date            time.Time  `json:"race_date" db:"race_date"`

	PosterKey *string `json:"-" db:"poster_key"`
	PosterURL *string `json:"poster_url,omitempty" db:"-"`
}
