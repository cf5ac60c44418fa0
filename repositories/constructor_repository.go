package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/prediction-league/models"
	"github.com/lib/pq"
)

var (
	ErrConstructorNotFound     = errors.New("constructor not found")
	ErrConstructorNameConflict = errors.New("constructor name conflict")
)

type ConstructorRepository interface {
	Create(ctx context.Context, constructor *models.Constructor) error
	GetByName(ctx context.Context, name string) (*models.Constructor, error)
	List(ctx context.Context) ([]models.Constructor, error)
}

type postgresConstructorRepository struct {
	db *sql.DB
}

func NewPostgresConstructorRepository(db *sql.DB) ConstructorRepository {
	return &postgresConstructorRepository{db: db}
}

func (r *postgresConstructorRepository) Create(ctx context.Context, constructor *models.Constructor) error {
	query := `
		INSERT INTO constructors (name)
		VALUES ($1)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, constructor.Name).Scan(&constructor.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "constructors_name_key" {
				return ErrConstructorNameConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresConstructorRepository) GetByName(ctx context.Context, name string) (*models.Constructor, error) {
	query := `
		SELECT id, name
		FROM constructors
		WHERE name = $1`

	constructor := &models.Constructor{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(&constructor.ID, &constructor.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConstructorNotFound
		}
		return nil, err
	}
	return constructor, nil
}

func (r *postgresConstructorRepository) List(ctx context.Context) ([]models.Constructor, error) {
	query := `
		SELECT id, name
		FROM constructors
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	constructors := make([]models.Constructor, 0)
	for rows.Next() {
		var constructor models.Constructor
		if scanErr := rows.Scan(&constructor.ID, &constructor.Name); scanErr != nil {
			return nil, scanErr
		}
		constructors = append(constructors, constructor)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return constructors, nil
}
