package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/prediction-league/models"
	"github.com/lib/pq"
)

var (
	ErrDriverNotFound     = errors.New("driver not found")
	ErrDriverNameConflict = errors.New("driver name conflict")
)

type DriverRepository interface {
	Create(ctx context.Context, driver *models.Driver) error
	GetByID(ctx context.Context, id int) (*models.Driver, error)
	GetByName(ctx context.Context, name string) (*models.Driver, error)
	List(ctx context.Context) ([]models.Driver, error)
	UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error
}

type postgresDriverRepository struct {
	db *sql.DB
}

func NewPostgresDriverRepository(db *sql.DB) DriverRepository {
	return &postgresDriverRepository{db: db}
}

func (r *postgresDriverRepository) Create(ctx context.Context, driver *models.Driver) error {
	query := `
		INSERT INTO drivers (name, country)
		VALUES ($1, $2)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, driver.Name, driver.Country).Scan(&driver.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "drivers_name_key" {
				return ErrDriverNameConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresDriverRepository) GetByID(ctx context.Context, id int) (*models.Driver, error) {
	query := `
		SELECT id, name, country, photo_key
		FROM drivers
		WHERE id = $1`
	return r.scanDriver(ctx, query, id)
}

func (r *postgresDriverRepository) GetByName(ctx context.Context, name string) (*models.Driver, error) {
	query := `
		SELECT id, name, country, photo_key
		FROM drivers
		WHERE name = $1`
	return r.scanDriver(ctx, query, name)
}

func (r *postgresDriverRepository) List(ctx context.Context) ([]models.Driver, error) {
	query := `
		SELECT id, name, country, photo_key
		FROM drivers
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drivers := make([]models.Driver, 0)
	for rows.Next() {
		var driver models.Driver
		if scanErr := rows.Scan(&driver.ID, &driver.Name, &driver.Country, &driver.PhotoKey); scanErr != nil {
			return nil, scanErr
		}
		drivers = append(drivers, driver)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *postgresDriverRepository) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	query := `UPDATE drivers SET photo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, photoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrDriverNotFound)
}

func (r *postgresDriverRepository) scanDriver(ctx context.Context, query string, args ...interface{}) (*models.Driver, error) {
	driver := &models.Driver{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&driver.ID,
		&driver.Name,
		&driver.Country,
		&driver.PhotoKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}
	return driver, nil
}
