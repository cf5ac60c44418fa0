package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	users        *fakeUserRepo
	races        *fakeRaceRepo
	drivers      *fakeDriverRepo
	constructors *fakeConstructorRepo
	predictions  *fakePredictionRepo
	results      *fakeResultRepo
	publisher    *fakePublisher

	scoring ScoringService
	service PredictionService
}

func newTestEnv() *testEnv {
	users := &fakeUserRepo{}
	races := &fakeRaceRepo{}
	drivers := &fakeDriverRepo{}
	constructors := &fakeConstructorRepo{}
	predictions := &fakePredictionRepo{drivers: drivers, users: users}
	results := &fakeResultRepo{drivers: drivers}
	publisher := &fakePublisher{}

	scoring := NewScoringService(users, races, predictions, results)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewPredictionService(users, races, drivers, constructors, predictions, results, scoring, publisher, logger)

	return &testEnv{
		users:        users,
		races:        races,
		drivers:      drivers,
		constructors: constructors,
		predictions:  predictions,
		results:      results,
		publisher:    publisher,
		scoring:      scoring,
		service:      service,
	}
}

func (e *testEnv) addUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

func (e *testEnv) addRace(t *testing.T, name string, format models.RaceFormat, date time.Time) *models.Race {
	t.Helper()
	race := &models.Race{Name: name, Format: format, Date: date}
	require.NoError(t, e.races.Create(context.Background(), race))
	return race
}

func (e *testEnv) addDrivers(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, e.drivers.Create(context.Background(), &models.Driver{Name: name}))
	}
}

func (e *testEnv) addConstructor(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, e.constructors.Create(context.Background(), &models.Constructor{Name: name}))
}

// recordScorers записывает очковый финиш гонки в заданном порядке.
func (e *testEnv) recordScorers(t *testing.T, race *models.Race, constructor string, names ...string) {
	t.Helper()
	for i, name := range names {
		_, err := e.service.RecordResult(context.Background(), RecordResultInput{
			RaceName:    race.Name,
			Format:      race.Format,
			Driver:      name,
			Constructor: constructor,
			Position:    i + 1,
			Points:      10 - i,
		})
		require.NoError(t, err)
	}
}

var raceDate = time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)

// onTime — момент на границе дедлайна (за два дня до гонки, конец дня).
var onTime = time.Date(2024, 6, 7, 23, 59, 59, 0, time.UTC)

func TestSubmitPredictionStoresOrderedRows(t *testing.T) {
	env := newTestEnv()
	user := env.addUser(t, "alice")
	race := env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen", "Leclerc", "Norris")

	err := env.service.SubmitPrediction(context.Background(), "alice", SubmitPredictionInput{
		RaceName: "Monaco Grand Prix",
		Format:   models.FormatGrandPrix,
		Drivers:  []string{"Leclerc", "Verstappen", "Norris"},
	}, onTime)
	require.NoError(t, err)

	require.Len(t, env.predictions.rows, 3)
	for i, row := range env.predictions.rows {
		assert.Equal(t, user.ID, row.UserID)
		assert.Equal(t, race.ID, row.RaceID)
		assert.Equal(t, i+1, row.Position)
		assert.Equal(t, time.UTC, row.PredictedAt.Location())
	}

	order, err := env.service.PredictedOrderFor(context.Background(), "alice", "Monaco Grand Prix", models.FormatGrandPrix)
	require.NoError(t, err)
	assert.Equal(t, []string{"Leclerc", "Verstappen", "Norris"}, order)
}

func TestSubmitPredictionRejectsDuplicateDriver(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen", "Leclerc")

	err := env.service.SubmitPrediction(context.Background(), "alice", SubmitPredictionInput{
		RaceName: "Monaco Grand Prix",
		Format:   models.FormatGrandPrix,
		Drivers:  []string{"Verstappen", "Leclerc", "Verstappen"},
	}, onTime)
	require.ErrorIs(t, err, ErrDuplicateDriver)

	// Дубликат отклоняется до записи: ни одной строки и ни одного обращения
	// к репозиторию.
	assert.Empty(t, env.predictions.rows)
	assert.Zero(t, env.predictions.createCalls)
}

func TestSubmitPredictionRejectsEmptyList(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)

	err := env.service.SubmitPrediction(context.Background(), "alice", SubmitPredictionInput{
		RaceName: "Monaco Grand Prix",
		Format:   models.FormatGrandPrix,
	}, onTime)
	require.ErrorIs(t, err, ErrNoDrivers)
}

func TestSubmitPredictionDeadline(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen")

	input := SubmitPredictionInput{
		RaceName: "Monaco Grand Prix",
		Format:   models.FormatGrandPrix,
		Drivers:  []string{"Verstappen"},
	}

	// Последняя секунда дня дедлайна — прогноз принимается.
	require.NoError(t, env.service.SubmitPrediction(context.Background(), "alice", input, onTime))

	require.NoError(t, env.service.DeletePredictions(context.Background(), "alice", "Monaco Grand Prix", models.FormatGrandPrix))

	// Первая секунда следующего дня — уже нет.
	late := time.Date(2024, 6, 8, 0, 0, 1, 0, time.UTC)
	err := env.service.SubmitPrediction(context.Background(), "alice", input, late)
	require.ErrorIs(t, err, ErrDeadlinePassed)
	assert.Contains(t, err.Error(), "2024-06-07")
	assert.Empty(t, env.predictions.rows)
}

func TestSubmitPredictionDeadlineNormalizesTimezone(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen")

	// 2024-06-07 20:00 EST — это уже 2024-06-08 01:00 UTC, дедлайн прошёл.
	est := time.FixedZone("EST", -5*60*60)
	late := time.Date(2024, 6, 7, 20, 0, 0, 0, est)

	err := env.service.SubmitPrediction(context.Background(), "alice", SubmitPredictionInput{
		RaceName: "Monaco Grand Prix",
		Format:   models.FormatGrandPrix,
		Drivers:  []string{"Verstappen"},
	}, late)
	require.ErrorIs(t, err, ErrDeadlinePassed)
}

func TestSubmitPredictionUnknownEntities(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen")

	input := SubmitPredictionInput{
		RaceName: "Monaco Grand Prix",
		Format:   models.FormatGrandPrix,
		Drivers:  []string{"Verstappen"},
	}

	err := env.service.SubmitPrediction(context.Background(), "nobody", input, onTime)
	require.ErrorIs(t, err, ErrUserNotFound)

	err = env.service.SubmitPrediction(context.Background(), "alice", SubmitPredictionInput{
		RaceName: "Monaco Grand Prix",
		Format:   models.FormatSprint,
		Drivers:  []string{"Verstappen"},
	}, onTime)
	require.ErrorIs(t, err, ErrRaceNotFound)

	err = env.service.SubmitPrediction(context.Background(), "alice", SubmitPredictionInput{
		RaceName: "Monaco Grand Prix",
		Format:   models.FormatGrandPrix,
		Drivers:  []string{"Verstappen", "Unknown"},
	}, onTime)
	require.ErrorIs(t, err, ErrDriverNotFound)
	assert.Empty(t, env.predictions.rows)
}

func TestSubmitPredictionTwiceConflicts(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen", "Leclerc")

	input := SubmitPredictionInput{
		RaceName: "Monaco Grand Prix",
		Format:   models.FormatGrandPrix,
		Drivers:  []string{"Verstappen", "Leclerc"},
	}

	require.NoError(t, env.service.SubmitPrediction(context.Background(), "alice", input, onTime))

	err := env.service.SubmitPrediction(context.Background(), "alice", input, onTime)
	require.ErrorIs(t, err, ErrPredictionConflict)
	assert.Len(t, env.predictions.rows, 2)
}

func TestDeletePredictionsIsIdempotent(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen")

	// Удаление при отсутствии прогноза — не ошибка.
	require.NoError(t, env.service.DeletePredictions(context.Background(), "alice", "Monaco Grand Prix", models.FormatGrandPrix))

	require.NoError(t, env.service.SubmitPrediction(context.Background(), "alice", SubmitPredictionInput{
		RaceName: "Monaco Grand Prix",
		Format:   models.FormatGrandPrix,
		Drivers:  []string{"Verstappen"},
	}, onTime))

	require.NoError(t, env.service.DeletePredictions(context.Background(), "alice", "Monaco Grand Prix", models.FormatGrandPrix))
	assert.Empty(t, env.predictions.rows)

	require.NoError(t, env.service.DeletePredictions(context.Background(), "alice", "Monaco Grand Prix", models.FormatGrandPrix))
}

func TestRecordResult(t *testing.T) {
	env := newTestEnv()
	race := env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen")
	env.addConstructor(t, "Red Bull")

	input := RecordResultInput{
		RaceName:    "Monaco Grand Prix",
		Format:      models.FormatGrandPrix,
		Driver:      "Verstappen",
		Constructor: "Red Bull",
		Position:    1,
		Points:      25,
	}

	result, err := env.service.RecordResult(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, race.ID, result.RaceID)
	assert.Equal(t, 1, result.Position)
	assert.Equal(t, 25, result.Points)

	// Каждый записанный результат публикует свежую таблицу лидеров.
	assert.Len(t, env.publisher.published, 1)

	_, err = env.service.RecordResult(context.Background(), input)
	require.ErrorIs(t, err, ErrResultConflict)
	assert.Len(t, env.publisher.published, 1)
}

func TestRecordResultValidation(t *testing.T) {
	env := newTestEnv()
	env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen")
	env.addConstructor(t, "Red Bull")

	_, err := env.service.RecordResult(context.Background(), RecordResultInput{
		RaceName: "Monaco Grand Prix", Format: models.FormatGrandPrix,
		Driver: "Verstappen", Constructor: "Red Bull", Position: 0, Points: 25,
	})
	require.ErrorIs(t, err, ErrInvalidPosition)

	_, err = env.service.RecordResult(context.Background(), RecordResultInput{
		RaceName: "Monaco Grand Prix", Format: models.FormatGrandPrix,
		Driver: "Verstappen", Constructor: "Red Bull", Position: 1, Points: -1,
	})
	require.ErrorIs(t, err, ErrNegativePoints)

	_, err = env.service.RecordResult(context.Background(), RecordResultInput{
		RaceName: "Monaco Grand Prix", Format: models.FormatGrandPrix,
		Driver: "Verstappen", Constructor: "Mystery", Position: 1, Points: 25,
	})
	require.ErrorIs(t, err, ErrConstructorNotFound)
}

func TestRacePredictionsGroupsByUser(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "bob")
	env.addUser(t, "alice")
	env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen", "Leclerc")

	require.NoError(t, env.service.SubmitPrediction(context.Background(), "alice", SubmitPredictionInput{
		RaceName: "Monaco Grand Prix",
		Format:   models.FormatGrandPrix,
		Drivers:  []string{"Leclerc", "Verstappen"},
	}, onTime))
	require.NoError(t, env.service.SubmitPrediction(context.Background(), "bob", SubmitPredictionInput{
		RaceName: "Monaco Grand Prix",
		Format:   models.FormatGrandPrix,
		Drivers:  []string{"Verstappen", "Leclerc"},
	}, onTime))

	predictions, err := env.service.RacePredictions(context.Background(), "Monaco Grand Prix", models.FormatGrandPrix)
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"alice": {"Leclerc", "Verstappen"},
		"bob":   {"Verstappen", "Leclerc"},
	}, predictions)
}

func TestActualOrderFor(t *testing.T) {
	env := newTestEnv()
	race := env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen", "Leclerc", "Norris")
	env.addConstructor(t, "Red Bull")
	env.recordScorers(t, race, "Red Bull", "Leclerc", "Norris", "Verstappen")

	order, err := env.service.ActualOrderFor(context.Background(), "Monaco Grand Prix", models.FormatGrandPrix)
	require.NoError(t, err)
	assert.Equal(t, []string{"Leclerc", "Norris", "Verstappen"}, order)

	_, err = env.service.ActualOrderFor(context.Background(), "Monaco Grand Prix", models.FormatSprint)
	require.ErrorIs(t, err, ErrRaceNotFound)
}

func TestScorelessFinisherExcludedFromActualOrder(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	race := env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen", "Leclerc", "Stroll")
	env.addConstructor(t, "Red Bull")

	env.submit(t, "alice", race, "Verstappen", "Leclerc")

	finishes := []RecordResultInput{
		{RaceName: race.Name, Format: race.Format, Driver: "Verstappen", Constructor: "Red Bull", Position: 1, Points: 25},
		{RaceName: race.Name, Format: race.Format, Driver: "Leclerc", Constructor: "Red Bull", Position: 2, Points: 18},
		{RaceName: race.Name, Format: race.Format, Driver: "Stroll", Constructor: "Red Bull", Position: 3, Points: 0},
	}
	for _, finish := range finishes {
		_, err := env.service.RecordResult(context.Background(), finish)
		require.NoError(t, err)
	}

	// Финишёр без очков не входит в фактический порядок и не влияет на метрику.
	order, err := env.service.ActualOrderFor(context.Background(), race.Name, race.Format)
	require.NoError(t, err)
	assert.Equal(t, []string{"Verstappen", "Leclerc"}, order)

	score, err := env.scoring.ScoreForRace(context.Background(), "alice", race.Name, race.Format)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestRaceResultsListsFullClassification(t *testing.T) {
	env := newTestEnv()
	race := env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen", "Leclerc", "Stroll")
	env.addConstructor(t, "Red Bull")

	finishes := []RecordResultInput{
		{RaceName: race.Name, Format: race.Format, Driver: "Verstappen", Constructor: "Red Bull", Position: 1, Points: 25},
		{RaceName: race.Name, Format: race.Format, Driver: "Leclerc", Constructor: "Red Bull", Position: 2, Points: 18},
		{RaceName: race.Name, Format: race.Format, Driver: "Stroll", Constructor: "Red Bull", Position: 3, Points: 0},
	}
	for _, finish := range finishes {
		_, err := env.service.RecordResult(context.Background(), finish)
		require.NoError(t, err)
	}

	// Полная классификация содержит и нулевые строки, в порядке позиций.
	results, err := env.service.RaceResults(context.Background(), race.Name, race.Format)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, result := range results {
		assert.Equal(t, i+1, result.Position)
		assert.Equal(t, race.ID, result.RaceID)
	}
	assert.Equal(t, 0, results[2].Points)

	_, err = env.service.RaceResults(context.Background(), race.Name, models.FormatSprint)
	require.ErrorIs(t, err, ErrRaceNotFound)
}

func TestRecordResultPublishFailureDoesNotFailWrite(t *testing.T) {
	env := newTestEnv()
	race := env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen")
	env.addConstructor(t, "Red Bull")

	// Пересчёт таблицы падает, но результат всё равно записан.
	env.users.listErr = errors.New("storage down")

	result, err := env.service.RecordResult(context.Background(), RecordResultInput{
		RaceName:    "Monaco Grand Prix",
		Format:      models.FormatGrandPrix,
		Driver:      "Verstappen",
		Constructor: "Red Bull",
		Position:    1,
		Points:      25,
	})
	require.NoError(t, err)
	assert.Equal(t, race.ID, result.RaceID)
	assert.Empty(t, env.publisher.published)
}
