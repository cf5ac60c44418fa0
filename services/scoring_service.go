package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/prediction-league/game"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"golang.org/x/sync/errgroup"
)

// standingsConcurrency ограничивает число одновременных подсчётов при
// построении таблицы лидеров.
const standingsConcurrency = 8

// ScoringService агрегирует дистанции прогнозов в счёт за гонку, суммарный
// счёт пользователя и таблицу лидеров. Только читает хранилище.
//
// «Нет счёта» (ErrNoScoreAvailable) — ожидаемое состояние, а не сбой:
// такие гонки исключаются из суммы, такие пользователи — из таблицы.
// Любая другая ошибка означает недоступность хранилища и поднимается наверх.
type ScoringService interface {
	ScoreForRace(ctx context.Context, username, raceName string, format models.RaceFormat) (float64, error)
	TotalScore(ctx context.Context, username string) (float64, error)
	Standings(ctx context.Context) ([]models.StandingsEntry, error)
}

type scoringService struct {
	userRepo       repositories.UserRepository
	raceRepo       repositories.RaceRepository
	predictionRepo repositories.PredictionRepository
	resultRepo     repositories.ResultRepository
}

func NewScoringService(
	userRepo repositories.UserRepository,
	raceRepo repositories.RaceRepository,
	predictionRepo repositories.PredictionRepository,
	resultRepo repositories.ResultRepository,
) ScoringService {
	return &scoringService{
		userRepo:       userRepo,
		raceRepo:       raceRepo,
		predictionRepo: predictionRepo,
		resultRepo:     resultRepo,
	}
}

func (s *scoringService) ScoreForRace(ctx context.Context, username, raceName string, format models.RaceFormat) (float64, error) {
	race, err := s.raceRepo.GetByNameAndFormat(ctx, raceName, format)
	if err != nil {
		if errors.Is(err, repositories.ErrRaceNotFound) {
			return 0, ErrNoScoreAvailable
		}
		return 0, fmt.Errorf("failed to look up race %q (%s): %w", raceName, format, err)
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return 0, ErrNoScoreAvailable
		}
		return 0, fmt.Errorf("failed to look up user %q: %w", username, err)
	}

	return s.scoreRaceForUser(ctx, user.ID, race.ID)
}

func (s *scoringService) TotalScore(ctx context.Context, username string) (float64, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return 0, ErrNoScoreAvailable
		}
		return 0, fmt.Errorf("failed to look up user %q: %w", username, err)
	}

	races, err := s.raceRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list races: %w", err)
	}

	return s.totalForUser(ctx, user.ID, races)
}

// Standings считает суммарный счёт каждого пользователя и сортирует по
// возрастанию (меньшая дистанция — лучший прогноз). Пользователи без единой
// оценённой гонки в таблицу не попадают. Подсчёты по пользователям идут
// конкурентно: это независимые read-only запросы.
func (s *scoringService) Standings(ctx context.Context) ([]models.StandingsEntry, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	races, err := s.raceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list races: %w", err)
	}

	totals := make([]*float64, len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(standingsConcurrency)
	for i, user := range users {
		i, user := i, user
		g.Go(func() error {
			total, err := s.totalForUser(gctx, user.ID, races)
			if err != nil {
				if errors.Is(err, ErrNoScoreAvailable) {
					return nil
				}
				return err
			}
			totals[i] = &total
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]models.StandingsEntry, 0, len(users))
	for i, user := range users {
		if totals[i] == nil {
			continue
		}
		entries = append(entries, models.StandingsEntry{
			Username: user.Username,
			Total:    *totals[i],
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total < entries[j].Total
		}
		return entries[i].Username < entries[j].Username
	})

	return entries, nil
}

func (s *scoringService) totalForUser(ctx context.Context, userID int, races []models.Race) (float64, error) {
	total := 0.0
	scored := false

	for _, race := range races {
		score, err := s.scoreRaceForUser(ctx, userID, race.ID)
		if err != nil {
			if errors.Is(err, ErrNoScoreAvailable) {
				continue
			}
			return 0, err
		}
		total += score
		scored = true
	}

	if !scored {
		return 0, ErrNoScoreAvailable
	}
	return total, nil
}

func (s *scoringService) scoreRaceForUser(ctx context.Context, userID, raceID int) (float64, error) {
	actual, err := s.resultRepo.ListPointScorerNames(ctx, raceID)
	if err != nil {
		return 0, fmt.Errorf("failed to load point scorers for race %d: %w", raceID, err)
	}
	if len(actual) == 0 {
		return 0, ErrNoScoreAvailable
	}

	predicted, err := s.predictionRepo.ListDriverNamesByUserAndRace(ctx, userID, raceID)
	if err != nil {
		return 0, fmt.Errorf("failed to load prediction for race %d: %w", raceID, err)
	}
	if len(predicted) == 0 {
		return 0, ErrNoScoreAvailable
	}

	dist, ok := game.Distance(predicted, actual)
	if !ok {
		return 0, ErrNoScoreAvailable
	}
	return dist, nil
}
