package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) submit(t *testing.T, username string, race *models.Race, drivers ...string) {
	t.Helper()
	err := e.service.SubmitPrediction(context.Background(), username, SubmitPredictionInput{
		RaceName: race.Name,
		Format:   race.Format,
		Drivers:  drivers,
	}, onTime)
	require.NoError(t, err)
}

func TestScoreForRace(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addUser(t, "bob")
	race := env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen", "Leclerc", "Norris")
	env.addConstructor(t, "Red Bull")

	env.submit(t, "alice", race, "Verstappen", "Leclerc", "Norris")
	env.submit(t, "bob", race, "Leclerc", "Verstappen", "Norris")
	env.recordScorers(t, race, "Red Bull", "Verstappen", "Leclerc", "Norris")

	score, err := env.scoring.ScoreForRace(context.Background(), "alice", race.Name, race.Format)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)

	// Два соседних пилота переставлены: 2 / 5 при n = 3.
	score, err = env.scoring.ScoreForRace(context.Background(), "bob", race.Name, race.Format)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, score, 1e-9)
}

func TestScoreForRaceUnavailable(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	race := env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen")
	env.addConstructor(t, "Red Bull")

	// Результатов ещё нет — счёта нет.
	_, err := env.scoring.ScoreForRace(context.Background(), "alice", race.Name, race.Format)
	require.ErrorIs(t, err, ErrNoScoreAvailable)

	env.recordScorers(t, race, "Red Bull", "Verstappen")

	// Результаты есть, но прогноза нет — счёта по-прежнему нет.
	_, err = env.scoring.ScoreForRace(context.Background(), "alice", race.Name, race.Format)
	require.ErrorIs(t, err, ErrNoScoreAvailable)

	// Неизвестный пользователь или гонка — тоже «нет счёта», не сбой.
	_, err = env.scoring.ScoreForRace(context.Background(), "nobody", race.Name, race.Format)
	require.ErrorIs(t, err, ErrNoScoreAvailable)

	_, err = env.scoring.ScoreForRace(context.Background(), "alice", "Imaginary Grand Prix", models.FormatGrandPrix)
	require.ErrorIs(t, err, ErrNoScoreAvailable)
}

func TestTotalScoreSkipsUnscoredRaces(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	monaco := env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	silverstone := env.addRace(t, "British Grand Prix", models.FormatGrandPrix, raceDate.AddDate(0, 1, 0))
	env.addDrivers(t, "Verstappen", "Leclerc", "Norris")
	env.addConstructor(t, "Red Bull")

	env.submit(t, "alice", monaco, "Leclerc", "Verstappen", "Norris")
	env.submit(t, "alice", silverstone, "Verstappen", "Leclerc", "Norris")

	// Оценена только Монако: Сильверстоун без результатов в сумму не входит.
	env.recordScorers(t, monaco, "Red Bull", "Verstappen", "Leclerc", "Norris")

	total, err := env.scoring.TotalScore(context.Background(), "alice")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, total, 1e-9)

	env.recordScorers(t, silverstone, "Red Bull", "Verstappen", "Leclerc", "Norris")

	total, err = env.scoring.TotalScore(context.Background(), "alice")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, total, 1e-9)
}

func TestTotalScoreUndefinedWithoutScoredRaces(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	race := env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen")

	env.submit(t, "alice", race, "Verstappen")

	// Прогноз есть, результатов нет: суммарный счёт не определён и не равен нулю.
	_, err := env.scoring.TotalScore(context.Background(), "alice")
	require.ErrorIs(t, err, ErrNoScoreAvailable)

	_, err = env.scoring.TotalScore(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrNoScoreAvailable)
}

func TestStandingsSortedAscendingWithUsernameTieBreak(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "carol")
	env.addUser(t, "alice")
	env.addUser(t, "bob")
	env.addUser(t, "dave")
	race := env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen", "Leclerc", "Norris")
	env.addConstructor(t, "Red Bull")

	env.submit(t, "alice", race, "Verstappen", "Leclerc", "Norris")
	env.submit(t, "bob", race, "Leclerc", "Verstappen", "Norris")
	env.submit(t, "carol", race, "Verstappen", "Norris", "Leclerc")
	// dave без прогноза — в таблицу не попадает.

	env.recordScorers(t, race, "Red Bull", "Verstappen", "Leclerc", "Norris")

	entries, err := env.scoring.Standings(context.Background())
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, 0.0, entries[0].Total)
	// bob и carol делят 0.4 — порядок решает имя.
	assert.Equal(t, "bob", entries[1].Username)
	assert.Equal(t, "carol", entries[2].Username)
	assert.InDelta(t, 0.4, entries[1].Total, 1e-9)
	assert.InDelta(t, 0.4, entries[2].Total, 1e-9)
}

func TestStandingsEmptyWithoutScoredRaces(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC))

	entries, err := env.scoring.Standings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStandingsPropagatesStoreErrors(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	race := env.addRace(t, "Monaco Grand Prix", models.FormatGrandPrix, raceDate)
	env.addDrivers(t, "Verstappen")
	env.addConstructor(t, "Red Bull")

	env.submit(t, "alice", race, "Verstappen")
	env.recordScorers(t, race, "Red Bull", "Verstappen")

	storeErr := errors.New("connection reset")
	env.predictions.listErr = storeErr

	// Недоступность хранилища — сбой, а не «нет счёта».
	_, err := env.scoring.Standings(context.Background())
	require.ErrorIs(t, err, storeErr)
}
