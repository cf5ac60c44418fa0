package services

import (
	"context"
	"sort"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
)

// Фейковые репозитории для тестов сервисного слоя: хранят всё в памяти и
// воспроизводят контракт postgres-реализаций, включая ошибки уникальности.

type fakeUserRepo struct {
	users   []models.User
	nextID  int
	listErr error
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return repositories.ErrUserUsernameConflict
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) List(_ context.Context) ([]models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	users := make([]models.User, len(f.users))
	copy(users, f.users)
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

type fakeRaceRepo struct {
	races  []models.Race
	nextID int
}

func (f *fakeRaceRepo) Create(_ context.Context, race *models.Race) error {
	for _, r := range f.races {
		if r.Name == race.Name && r.Format == race.Format {
			return repositories.ErrRaceConflict
		}
	}
	f.nextID++
	race.ID = f.nextID
	f.races = append(f.races, *race)
	return nil
}

func (f *fakeRaceRepo) GetByID(_ context.Context, id int) (*models.Race, error) {
	for _, r := range f.races {
		if r.ID == id {
			race := r
			return &race, nil
		}
	}
	return nil, repositories.ErrRaceNotFound
}

func (f *fakeRaceRepo) GetByNameAndFormat(_ context.Context, name string, format models.RaceFormat) (*models.Race, error) {
	for _, r := range f.races {
		if r.Name == name && r.Format == format {
			race := r
			return &race, nil
		}
	}
	return nil, repositories.ErrRaceNotFound
}

func (f *fakeRaceRepo) List(_ context.Context) ([]models.Race, error) {
	races := make([]models.Race, len(f.races))
	copy(races, f.races)
	sort.Slice(races, func(i, j int) bool { return races[i].Date.Before(races[j].Date) })
	return races, nil
}

func (f *fakeRaceRepo) UpdatePosterKey(_ context.Context, id int, posterKey *string) error {
	for i := range f.races {
		if f.races[i].ID == id {
			f.races[i].PosterKey = posterKey
			return nil
		}
	}
	return repositories.ErrRaceNotFound
}

type fakeDriverRepo struct {
	drivers []models.Driver
	nextID  int
}

func (f *fakeDriverRepo) Create(_ context.Context, driver *models.Driver) error {
	for _, d := range f.drivers {
		if d.Name == driver.Name {
			return repositories.ErrDriverNameConflict
		}
	}
	f.nextID++
	driver.ID = f.nextID
	f.drivers = append(f.drivers, *driver)
	return nil
}

func (f *fakeDriverRepo) GetByID(_ context.Context, id int) (*models.Driver, error) {
	for _, d := range f.drivers {
		if d.ID == id {
			driver := d
			return &driver, nil
		}
	}
	return nil, repositories.ErrDriverNotFound
}

func (f *fakeDriverRepo) GetByName(_ context.Context, name string) (*models.Driver, error) {
	for _, d := range f.drivers {
		if d.Name == name {
			driver := d
			return &driver, nil
		}
	}
	return nil, repositories.ErrDriverNotFound
}

func (f *fakeDriverRepo) List(_ context.Context) ([]models.Driver, error) {
	drivers := make([]models.Driver, len(f.drivers))
	copy(drivers, f.drivers)
	return drivers, nil
}

func (f *fakeDriverRepo) UpdatePhotoKey(_ context.Context, id int, photoKey *string) error {
	for i := range f.drivers {
		if f.drivers[i].ID == id {
			f.drivers[i].PhotoKey = photoKey
			return nil
		}
	}
	return repositories.ErrDriverNotFound
}

func (f *fakeDriverRepo) nameByID(id int) string {
	for _, d := range f.drivers {
		if d.ID == id {
			return d.Name
		}
	}
	return ""
}

type fakeConstructorRepo struct {
	constructors []models.Constructor
	nextID       int
}

func (f *fakeConstructorRepo) Create(_ context.Context, constructor *models.Constructor) error {
	for _, c := range f.constructors {
		if c.Name == constructor.Name {
			return repositories.ErrConstructorNameConflict
		}
	}
	f.nextID++
	constructor.ID = f.nextID
	f.constructors = append(f.constructors, *constructor)
	return nil
}

func (f *fakeConstructorRepo) GetByName(_ context.Context, name string) (*models.Constructor, error) {
	for _, c := range f.constructors {
		if c.Name == name {
			constructor := c
			return &constructor, nil
		}
	}
	return nil, repositories.ErrConstructorNotFound
}

func (f *fakeConstructorRepo) List(_ context.Context) ([]models.Constructor, error) {
	constructors := make([]models.Constructor, len(f.constructors))
	copy(constructors, f.constructors)
	return constructors, nil
}

type fakePredictionRepo struct {
	rows    []models.Prediction
	drivers *fakeDriverRepo
	users   *fakeUserRepo
	nextID  int

	createCalls int
	listErr     error
}

func (f *fakePredictionRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, predictions []*models.Prediction) error {
	f.createCalls++

	// Проверка уникальности до записи: пачка вставляется целиком или никак.
	seen := make(map[[3]int]struct{})
	for _, p := range f.rows {
		seen[[3]int{p.UserID, p.RaceID, p.DriverID}] = struct{}{}
	}
	for _, p := range predictions {
		key := [3]int{p.UserID, p.RaceID, p.DriverID}
		if _, ok := seen[key]; ok {
			return repositories.ErrPredictionConflict
		}
		seen[key] = struct{}{}
	}

	for _, p := range predictions {
		f.nextID++
		p.ID = f.nextID
		f.rows = append(f.rows, *p)
	}
	return nil
}

func (f *fakePredictionRepo) DeleteByUserAndRace(_ context.Context, userID, raceID int) error {
	kept := f.rows[:0]
	for _, p := range f.rows {
		if p.UserID != userID || p.RaceID != raceID {
			kept = append(kept, p)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakePredictionRepo) ListDriverNamesByUserAndRace(_ context.Context, userID, raceID int) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	rows := make([]models.Prediction, 0)
	for _, p := range f.rows {
		if p.UserID == userID && p.RaceID == raceID {
			rows = append(rows, p)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })

	names := make([]string, 0, len(rows))
	for _, p := range rows {
		names = append(names, f.drivers.nameByID(p.DriverID))
	}
	return names, nil
}

func (f *fakePredictionRepo) ListByRace(_ context.Context, raceID int) ([]repositories.RacePredictionRow, error) {
	rows := make([]models.Prediction, 0)
	for _, p := range f.rows {
		if p.RaceID == raceID {
			rows = append(rows, p)
		}
	}

	usernames := make(map[int]string)
	for _, u := range f.users.users {
		usernames[u.ID] = u.Username
	}
	sort.Slice(rows, func(i, j int) bool {
		if usernames[rows[i].UserID] != usernames[rows[j].UserID] {
			return usernames[rows[i].UserID] < usernames[rows[j].UserID]
		}
		return rows[i].Position < rows[j].Position
	})

	result := make([]repositories.RacePredictionRow, 0, len(rows))
	for _, p := range rows {
		result = append(result, repositories.RacePredictionRow{
			Username:   usernames[p.UserID],
			DriverName: f.drivers.nameByID(p.DriverID),
		})
	}
	return result, nil
}

type fakeResultRepo struct {
	results []models.Result
	// scorers: raceID → имена очковых финишёров в порядке финиша.
	scorers map[int][]string
	drivers *fakeDriverRepo
	nextID  int
	listErr error
}

func (f *fakeResultRepo) Create(_ context.Context, result *models.Result) error {
	for _, r := range f.results {
		if r.RaceID == result.RaceID && r.DriverID == result.DriverID && r.Position == result.Position {
			return repositories.ErrResultConflict
		}
	}
	f.nextID++
	result.ID = f.nextID
	f.results = append(f.results, *result)

	if result.Points > 0 {
		if f.scorers == nil {
			f.scorers = make(map[int][]string)
		}
		f.scorers[result.RaceID] = append(f.scorers[result.RaceID], f.drivers.nameByID(result.DriverID))
	}
	return nil
}

func (f *fakeResultRepo) ListPointScorerNames(_ context.Context, raceID int) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.scorers[raceID], nil
}

func (f *fakeResultRepo) ListByRace(_ context.Context, raceID int) ([]models.Result, error) {
	results := make([]models.Result, 0)
	for _, r := range f.results {
		if r.RaceID == raceID {
			results = append(results, r)
		}
	}
	return results, nil
}

type fakePublisher struct {
	published [][]models.StandingsEntry
}

func (f *fakePublisher) PublishStandings(entries []models.StandingsEntry) {
	f.published = append(f.published, entries)
}
