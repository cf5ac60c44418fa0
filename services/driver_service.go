package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/storage"
)

var ErrDriverNameRequired = errors.New("driver name is required")

type CreateDriverInput struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

type DriverService interface {
	CreateDriver(ctx context.Context, input CreateDriverInput) (*models.Driver, error)
	ListDrivers(ctx context.Context) ([]models.Driver, error)
	UploadPhoto(ctx context.Context, driverID int, contentType string, file io.Reader) (*models.Driver, error)
}

type driverService struct {
	driverRepo repositories.DriverRepository
	uploader   storage.FileUploader
}

func NewDriverService(driverRepo repositories.DriverRepository, uploader storage.FileUploader) DriverService {
	return &driverService{
		driverRepo: driverRepo,
		uploader:   uploader,
	}
}

func (s *driverService) CreateDriver(ctx context.Context, input CreateDriverInput) (*models.Driver, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrDriverNameRequired
	}

	driver := &models.Driver{
		Name:    name,
		Country: strings.TrimSpace(input.Country),
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		if errors.Is(err, repositories.ErrDriverNameConflict) {
			return nil, ErrDriverConflict
		}
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}
	return driver, nil
}

func (s *driverService) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	drivers, err := s.driverRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	for i := range drivers {
		populateDriverPhotoURL(&drivers[i], s.uploader)
	}
	return drivers, nil
}

func (s *driverService) UploadPhoto(ctx context.Context, driverID int, contentType string, file io.Reader) (*models.Driver, error) {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repositories.ErrDriverNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, fmt.Errorf("failed to get driver %d: %w", driverID, err)
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	oldKey := driver.PhotoKey
	key := fmt.Sprintf("drivers/%d/photo%s", driver.ID, ext)

	uploadResult, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload driver photo: %w", err)
	}

	if err := s.driverRepo.UpdatePhotoKey(ctx, driver.ID, &uploadResult.Key); err != nil {
		return nil, fmt.Errorf("failed to store driver photo key: %w", err)
	}

	if oldKey != nil && *oldKey != uploadResult.Key {
		// Старый файл лучше убрать, но его отсутствие не должно ломать запрос.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	driver.PhotoKey = &uploadResult.Key
	populateDriverPhotoURL(driver, s.uploader)
	return driver, nil
}
