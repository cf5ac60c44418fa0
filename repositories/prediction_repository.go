package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/prediction-league/models"
	"github.com/lib/pq"
)

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	ErrPredictionConflict = errors.New("prediction already exists for this user, race and driver")
)

// RacePredictionRow — строка выборки всех прогнозов на гонку:
// имя пользователя и имя пилота в порядке (username, position).
type RacePredictionRow struct {
	Username   string
	DriverName string
}

type PredictionRepository interface {
	// CreateBatch вставляет все строки одного прогноза атомарно: либо
	// записана вся пачка, либо ничего. Если exec == nil, репозиторий
	// открывает собственную транзакцию; иначе работает внутри переданной.
	CreateBatch(ctx context.Context, exec SQLExecutor, predictions []*models.Prediction) error
	DeleteByUserAndRace(ctx context.Context, userID, raceID int) error
	// ListDriverNamesByUserAndRace возвращает прогноз пользователя на гонку:
	// имена пилотов по возрастанию позиции.
	ListDriverNamesByUserAndRace(ctx context.Context, userID, raceID int) ([]string, error)
	ListByRace(ctx context.Context, raceID int) ([]RacePredictionRow, error)
}

type postgresPredictionRepository struct {
	db *sql.DB
}

func NewPostgresPredictionRepository(db *sql.DB) PredictionRepository {
	return &postgresPredictionRepository{db: db}
}

func (r *postgresPredictionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPredictionRepository) CreateBatch(ctx context.Context, exec SQLExecutor, predictions []*models.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	executor := r.getExecutor(exec)
	if exec == nil {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("CreateBatch failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		if err := r.insertBatch(ctx, tx, predictions); err != nil {
			return err
		}
		return tx.Commit()
	}

	return r.insertBatch(ctx, executor, predictions)
}

func (r *postgresPredictionRepository) insertBatch(ctx context.Context, executor SQLExecutor, predictions []*models.Prediction) error {
	query := `
		INSERT INTO predictions (user_id, race_id, driver_id, position, predicted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	for _, prediction := range predictions {
		err := executor.QueryRowContext(ctx, query,
			prediction.UserID,
			prediction.RaceID,
			prediction.DriverID,
			prediction.Position,
			prediction.PredictedAt,
		).Scan(&prediction.ID)

		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				if pqErr.Code == "23505" && pqErr.Constraint == "predictions_user_id_race_id_driver_id_key" {
					return ErrPredictionConflict
				}
			}
			return fmt.Errorf("failed to insert prediction row (position %d): %w", prediction.Position, err)
		}
	}
	return nil
}

// DeleteByUserAndRace удаляет все строки прогноза пользователя на гонку.
// Идемпотентна: отсутствие строк не является ошибкой.
func (r *postgresPredictionRepository) DeleteByUserAndRace(ctx context.Context, userID, raceID int) error {
	query := `DELETE FROM predictions WHERE user_id = $1 AND race_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, raceID)
	return err
}

func (r *postgresPredictionRepository) ListDriverNamesByUserAndRace(ctx context.Context, userID, raceID int) ([]string, error) {
	query := `
		SELECT d.name
		FROM predictions p
		JOIN drivers d ON p.driver_id = d.id
		WHERE p.user_id = $1 AND p.race_id = $2
		ORDER BY p.position ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, raceID)
	if err != nil {
		return nil, err
	}
	return scanNames(rows)
}

func (r *postgresPredictionRepository) ListByRace(ctx context.Context, raceID int) ([]RacePredictionRow, error) {
	query := `
		SELECT u.username, d.name
		FROM predictions p
		JOIN users u ON p.user_id = u.id
		JOIN drivers d ON p.driver_id = d.id
		WHERE p.race_id = $1
		ORDER BY u.username ASC, p.position ASC`

	rows, err := r.db.QueryContext(ctx, query, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]RacePredictionRow, 0)
	for rows.Next() {
		var row RacePredictionRow
		if scanErr := rows.Scan(&row.Username, &row.DriverName); scanErr != nil {
			return nil, scanErr
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
