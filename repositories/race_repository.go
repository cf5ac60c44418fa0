package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/prediction-league/models"
	"github.com/lib/pq"
)

var (
	ErrRaceNotFound = errors.New("race not found")
	ErrRaceConflict = errors.New("race name and format conflict")
)

type RaceRepository interface {
	Create(ctx context.Context, race *models.Race) error
	GetByID(ctx context.Context, id int) (*models.Race, error)
	GetByNameAndFormat(ctx context.Context, name string, format models.RaceFormat) (*models.Race, error)
	// List возвращает все гонки в порядке календаря (по дате).
	List(ctx context.Context) ([]models.Race, error)
	UpdatePosterKey(ctx context.Context, id int, posterKey *string) error
}

type postgresRaceRepository struct {
	db *sql.DB
}

func NewPostgresRaceRepository(db *sql.DB) RaceRepository {
	return &postgresRaceRepository{db: db}
}

func (r *postgresRaceRepository) Create(ctx context.Context, race *models.Race) error {
	query := `
		INSERT INTO races (name, race_format, circuit_name, circuit_location, country, race_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		race.Name,
		race.Format,
		race.CircuitName,
		race.CircuitLocation,
		race.Country,
		race.Date,
	).Scan(&race.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "races_name_race_format_key" {
				return ErrRaceConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresRaceRepository) GetByID(ctx context.Context, id int) (*models.Race, error) {
	query := `
		SELECT id, name, race_format, circuit_name, circuit_location, country, race_date, poster_key
		FROM races
		WHERE id = $1`
	return r.scanRace(ctx, query, id)
}

func (r *postgresRaceRepository) GetByNameAndFormat(ctx context.Context, name string, format models.RaceFormat) (*models.Race, error) {
	query := `
		SELECT id, name, race_format, circuit_name, circuit_location, country, race_date, poster_key
		FROM races
		WHERE name = $1 AND race_format = $2`
	return r.scanRace(ctx, query, name, format)
}

func (r *postgresRaceRepository) List(ctx context.Context) ([]models.Race, error) {
	query := `
		SELECT id, name, race_format, circuit_name, circuit_location, country, race_date, poster_key
		FROM races
		ORDER BY race_date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	races := make([]models.Race, 0)
	for rows.Next() {
		var race models.Race
		scanErr := rows.Scan(
			&race.ID,
			&race.Name,
			&race.Format,
			&race.CircuitName,
			&race.CircuitLocation,
			&race.Country,
			&race.Date,
			&race.PosterKey,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		races = append(races, race)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return races, nil
}

func (r *postgresRaceRepository) UpdatePosterKey(ctx context.Context, id int, posterKey *string) error {
	query := `UPDATE races SET poster_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, posterKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRaceNotFound)
}

func (r *postgresRaceRepository) scanRace(ctx context.Context, query string, args ...interface{}) (*models.Race, error) {
	race := &models.Race{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&race.ID,
		&race.Name,
		&race.Format,
		&race.CircuitName,
		&race.CircuitLocation,
		&race.Country,
		&race.Date,
		&race.PosterKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRaceNotFound
		}
		return nil, err
	}
	return race, nil
}
