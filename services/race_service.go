package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Dosada05/prediction-league/game"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/storage"
)

var ErrRaceDateRequired = errors.New("race date is required")

type CreateRaceInput struct {
	Name            string            `json:"name"`
	Format          models.RaceFormat `json:"race_format"`
	CircuitName     *string           `json:"circuit_name,omitempty"`
	CircuitLocation *string           `json:"circuit_location,omitempty"`
	Country         *string           `json:"country,omitempty"`
	Date            time.Time         `json:"race_date"`
}

// RaceView — гонка вместе с вычисленным дедлайном прогнозов.
type RaceView struct {
	models.Race
	PredictionDeadline time.Time `json:"prediction_deadline"`
}

type RaceService interface {
	CreateRace(ctx context.Context, input CreateRaceInput) (*models.Race, error)
	ListRaces(ctx context.Context) ([]RaceView, error)
	UploadPoster(ctx context.Context, raceID int, contentType string, file io.Reader) (*models.Race, error)
}

type raceService struct {
	raceRepo repositories.RaceRepository
	uploader storage.FileUploader
}

func NewRaceService(raceRepo repositories.RaceRepository, uploader storage.FileUploader) RaceService {
	return &raceService{
		raceRepo: raceRepo,
		uploader: uploader,
	}
}

func (s *raceService) CreateRace(ctx context.Context, input CreateRaceInput) (*models.Race, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrRaceNameRequired
	}
	if !input.Format.Valid() {
		return nil, ErrInvalidFormat
	}
	if input.Date.IsZero() {
		return nil, ErrRaceDateRequired
	}

	race := &models.Race{
		Name:            name,
		Format:          input.Format,
		CircuitName:     input.CircuitName,
		CircuitLocation: input.CircuitLocation,
		Country:         input.Country,
		Date:            input.Date,
	}

	if err := s.raceRepo.Create(ctx, race); err != nil {
		if errors.Is(err, repositories.ErrRaceConflict) {
			return nil, ErrRaceConflict
		}
		return nil, fmt.Errorf("failed to create race: %w", err)
	}
	return race, nil
}

func (s *raceService) ListRaces(ctx context.Context) ([]RaceView, error) {
	races, err := s.raceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list races: %w", err)
	}

	views := make([]RaceView, 0, len(races))
	for _, race := range races {
		populateRacePosterURL(&race, s.uploader)
		views = append(views, RaceView{
			Race:               race,
			PredictionDeadline: game.PredictionDeadline(race.Date),
		})
	}
	return views, nil
}

func (s *raceService) UploadPoster(ctx context.Context, raceID int, contentType string, file io.Reader) (*models.Race, error) {
	race, err := s.raceRepo.GetByID(ctx, raceID)
	if err != nil {
		if errors.Is(err, repositories.ErrRaceNotFound) {
			return nil, ErrRaceNotFound
		}
		return nil, fmt.Errorf("failed to get race %d: %w", raceID, err)
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	oldKey := race.PosterKey
	key := fmt.Sprintf("races/%d/poster%s", race.ID, ext)

	uploadResult, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload race poster: %w", err)
	}

	if err := s.raceRepo.UpdatePosterKey(ctx, race.ID, &uploadResult.Key); err != nil {
		return nil, fmt.Errorf("failed to store race poster key: %w", err)
	}

	if oldKey != nil && *oldKey != uploadResult.Key {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	race.PosterKey = &uploadResult.Key
	populateRacePosterURL(race, s.uploader)
	return race, nil
}
