package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/prediction-league/game"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
)

type SubmitPredictionInput struct {
	RaceName string            `json:"race_name"`
	Format   models.RaceFormat `json:"race_format"`
	Drivers  []string          `json:"drivers"`
}

type RecordResultInput struct {
	RaceName    string            `json:"race_name"`
	Format      models.RaceFormat `json:"race_format"`
	Driver      string            `json:"driver"`
	Constructor string            `json:"constructor"`
	Position    int               `json:"position"`
	Points      int               `json:"points"`
}

// StandingsPublisher получает свежую таблицу лидеров после записи результата.
// Реализуется websocket-хабом; nil-паблишер допустим (например, в тестах).
type StandingsPublisher interface {
	PublishStandings(entries []models.StandingsEntry)
}

// PredictionService — журнал прогнозов: единственный сервис, пишущий в
// хранилище прогнозы и результаты.
type PredictionService interface {
	SubmitPrediction(ctx context.Context, username string, input SubmitPredictionInput, submittedAt time.Time) error
	DeletePredictions(ctx context.Context, username, raceName string, format models.RaceFormat) error
	RecordResult(ctx context.Context, input RecordResultInput) (*models.Result, error)
	PredictedOrderFor(ctx context.Context, username, raceName string, format models.RaceFormat) ([]string, error)
	ActualOrderFor(ctx context.Context, raceName string, format models.RaceFormat) ([]string, error)
	RaceResults(ctx context.Context, raceName string, format models.RaceFormat) ([]models.Result, error)
	RacePredictions(ctx context.Context, raceName string, format models.RaceFormat) (map[string][]string, error)
}

type predictionService struct {
	userRepo        repositories.UserRepository
	raceRepo        repositories.RaceRepository
	driverRepo      repositories.DriverRepository
	constructorRepo repositories.ConstructorRepository
	predictionRepo  repositories.PredictionRepository
	resultRepo      repositories.ResultRepository
	scoringService  ScoringService
	publisher       StandingsPublisher
	logger          *slog.Logger
}

func NewPredictionService(
	userRepo repositories.UserRepository,
	raceRepo repositories.RaceRepository,
	driverRepo repositories.DriverRepository,
	constructorRepo repositories.ConstructorRepository,
	predictionRepo repositories.PredictionRepository,
	resultRepo repositories.ResultRepository,
	scoringService ScoringService,
	publisher StandingsPublisher,
	logger *slog.Logger,
) PredictionService {
	return &predictionService{
		userRepo:        userRepo,
		raceRepo:        raceRepo,
		driverRepo:      driverRepo,
		constructorRepo: constructorRepo,
		predictionRepo:  predictionRepo,
		resultRepo:      resultRepo,
		scoringService:  scoringService,
		publisher:       publisher,
		logger:          logger,
	}
}

func (s *predictionService) SubmitPrediction(ctx context.Context, username string, input SubmitPredictionInput, submittedAt time.Time) error {
	user, err := s.getUser(ctx, username)
	if err != nil {
		return err
	}

	race, err := s.getRace(ctx, input.RaceName, input.Format)
	if err != nil {
		return err
	}

	if len(input.Drivers) == 0 {
		return ErrNoDrivers
	}

	seen := make(map[string]struct{}, len(input.Drivers))
	for _, name := range input.Drivers {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateDriver, name)
		}
		seen[name] = struct{}{}
	}

	submittedAt = submittedAt.UTC()
	if !game.PredictionOpen(submittedAt, race.Date) {
		deadline := game.PredictionDeadline(race.Date)
		return fmt.Errorf("%w: deadline was %s", ErrDeadlinePassed, deadline.Format("2006-01-02"))
	}

	predictions := make([]*models.Prediction, 0, len(input.Drivers))
	for ix, driverName := range input.Drivers {
		driver, err := s.driverRepo.GetByName(ctx, driverName)
		if err != nil {
			if errors.Is(err, repositories.ErrDriverNotFound) {
				return fmt.Errorf("%w: %s", ErrDriverNotFound, driverName)
			}
			return fmt.Errorf("failed to look up driver %q: %w", driverName, err)
		}

		predictions = append(predictions, &models.Prediction{
			UserID:      user.ID,
			RaceID:      race.ID,
			DriverID:    driver.ID,
			Position:    ix + 1,
			PredictedAt: submittedAt,
		})
	}

	// Репозиторий пишет все строки прогноза в одной транзакции: либо
	// записан весь прогноз, либо ничего.
	if err := s.predictionRepo.CreateBatch(ctx, nil, predictions); err != nil {
		if errors.Is(err, repositories.ErrPredictionConflict) {
			return ErrPredictionConflict
		}
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

func (s *predictionService) DeletePredictions(ctx context.Context, username, raceName string, format models.RaceFormat) error {
	user, err := s.getUser(ctx, username)
	if err != nil {
		return err
	}

	race, err := s.getRace(ctx, raceName, format)
	if err != nil {
		return err
	}

	if err := s.predictionRepo.DeleteByUserAndRace(ctx, user.ID, race.ID); err != nil {
		return fmt.Errorf("failed to delete predictions: %w", err)
	}
	return nil
}

func (s *predictionService) RecordResult(ctx context.Context, input RecordResultInput) (*models.Result, error) {
	if input.Position <= 0 {
		return nil, ErrInvalidPosition
	}
	if input.Points < 0 {
		return nil, ErrNegativePoints
	}

	race, err := s.getRace(ctx, input.RaceName, input.Format)
	if err != nil {
		return nil, err
	}

	driver, err := s.driverRepo.GetByName(ctx, input.Driver)
	if err != nil {
		if errors.Is(err, repositories.ErrDriverNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDriverNotFound, input.Driver)
		}
		return nil, fmt.Errorf("failed to look up driver %q: %w", input.Driver, err)
	}

	constructor, err := s.constructorRepo.GetByName(ctx, input.Constructor)
	if err != nil {
		if errors.Is(err, repositories.ErrConstructorNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrConstructorNotFound, input.Constructor)
		}
		return nil, fmt.Errorf("failed to look up constructor %q: %w", input.Constructor, err)
	}

	result := &models.Result{
		RaceID:        race.ID,
		DriverID:      driver.ID,
		ConstructorID: constructor.ID,
		Position:      input.Position,
		Points:        input.Points,
	}

	if err := s.resultRepo.Create(ctx, result); err != nil {
		switch {
		case errors.Is(err, repositories.ErrResultConflict):
			return nil, ErrResultConflict
		case errors.Is(err, repositories.ErrResultRaceInvalid):
			return nil, ErrRaceNotFound
		}
		return nil, fmt.Errorf("failed to record result: %w", err)
	}

	s.publishStandings(ctx)
	return result, nil
}

func (s *predictionService) PredictedOrderFor(ctx context.Context, username, raceName string, format models.RaceFormat) ([]string, error) {
	user, err := s.getUser(ctx, username)
	if err != nil {
		return nil, err
	}

	race, err := s.getRace(ctx, raceName, format)
	if err != nil {
		return nil, err
	}

	names, err := s.predictionRepo.ListDriverNamesByUserAndRace(ctx, user.ID, race.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load predicted order: %w", err)
	}
	return names, nil
}

func (s *predictionService) ActualOrderFor(ctx context.Context, raceName string, format models.RaceFormat) ([]string, error) {
	race, err := s.getRace(ctx, raceName, format)
	if err != nil {
		return nil, err
	}

	names, err := s.resultRepo.ListPointScorerNames(ctx, race.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load actual order: %w", err)
	}
	return names, nil
}

// RaceResults возвращает полную классификацию гонки по позициям, включая
// финишёров без очков — в отличие от ActualOrderFor, который отдаёт только
// очковый порядок для метрики.
func (s *predictionService) RaceResults(ctx context.Context, raceName string, format models.RaceFormat) ([]models.Result, error) {
	race, err := s.getRace(ctx, raceName, format)
	if err != nil {
		return nil, err
	}

	results, err := s.resultRepo.ListByRace(ctx, race.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load race results: %w", err)
	}
	return results, nil
}

func (s *predictionService) RacePredictions(ctx context.Context, raceName string, format models.RaceFormat) (map[string][]string, error) {
	race, err := s.getRace(ctx, raceName, format)
	if err != nil {
		return nil, err
	}

	rows, err := s.predictionRepo.ListByRace(ctx, race.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load race predictions: %w", err)
	}

	predictions := make(map[string][]string)
	for _, row := range rows {
		predictions[row.Username] = append(predictions[row.Username], row.DriverName)
	}
	return predictions, nil
}

func (s *predictionService) getUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
		}
		return nil, fmt.Errorf("failed to look up user %q: %w", username, err)
	}
	return user, nil
}

func (s *predictionService) getRace(ctx context.Context, name string, format models.RaceFormat) (*models.Race, error) {
	race, err := s.raceRepo.GetByNameAndFormat(ctx, name, format)
	if err != nil {
		if errors.Is(err, repositories.ErrRaceNotFound) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrRaceNotFound, name, format)
		}
		return nil, fmt.Errorf("failed to look up race %q (%s): %w", name, format, err)
	}
	return race, nil
}

// publishStandings пересчитывает таблицу лидеров и отдаёт её подписчикам
// live-ленты. Ошибка пересчёта не должна ломать запись результата.
func (s *predictionService) publishStandings(ctx context.Context) {
	if s.publisher == nil || s.scoringService == nil {
		return
	}

	entries, err := s.scoringService.Standings(context.WithoutCancel(ctx))
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to refresh standings after result", slog.Any("error", err))
		}
		return
	}
	s.publisher.PublishStandings(entries)
}
