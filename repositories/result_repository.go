package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/prediction-league/models"
	"github.com/lib/pq"
)

var (
	ErrResultConflict    = errors.New("result already recorded for this driver and position")
	ErrResultRaceInvalid = errors.New("result race, driver or constructor invalid")
)

type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
	// ListPointScorerNames возвращает фактический порядок финиша для подсчёта
	// очков: пилоты с points > 0 по возрастанию позиции. Финишёр без очков
	// в метрике не участвует.
	ListPointScorerNames(ctx context.Context, raceID int) ([]string, error)
	ListByRace(ctx context.Context, raceID int) ([]models.Result, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) Create(ctx context.Context, result *models.Result) error {
	query := `
		INSERT INTO results (race_id, driver_id, constructor_id, position, points)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		result.RaceID,
		result.DriverID,
		result.ConstructorID,
		result.Position,
		result.Points,
	).Scan(&result.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "results_race_id_driver_id_position_key" {
					return ErrResultConflict
				}
			case "23503": // foreign_key_violation
				return ErrResultRaceInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresResultRepository) ListPointScorerNames(ctx context.Context, raceID int) ([]string, error) {
	query := `
		SELECT d.name
		FROM results res
		JOIN drivers d ON res.driver_id = d.id
		WHERE res.race_id = $1 AND res.points > 0
		ORDER BY res.position ASC`

	rows, err := r.db.QueryContext(ctx, query, raceID)
	if err != nil {
		return nil, err
	}
	return scanNames(rows)
}

func (r *postgresResultRepository) ListByRace(ctx context.Context, raceID int) ([]models.Result, error) {
	query := `
		SELECT id, race_id, driver_id, constructor_id, position, points
		FROM results
		WHERE race_id = $1
		ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.Result, 0)
	for rows.Next() {
		var res models.Result
		scanErr := rows.Scan(
			&res.ID,
			&res.RaceID,
			&res.DriverID,
			&res.ConstructorID,
			&res.Position,
			&res.Points,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
