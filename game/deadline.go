package game

import "time"

// PredictionWindowDays — за сколько дней до гонки закрывается приём прогнозов.
const PredictionWindowDays = 2

// PredictionDeadline возвращает последнюю дату (UTC), в которую прогноз на
// гонку ещё принимается.
func PredictionDeadline(raceDate time.Time) time.Time {
	return toUTCDate(raceDate).AddDate(0, 0, -PredictionWindowDays)
}

// PredictionOpen сообщает, принимается ли прогноз в момент now для гонки,
// назначенной на raceDate. Сравниваются только даты: время now сначала
// нормализуется к UTC. Граница включительная — в сам день дедлайна прогноз
// ещё принимается.
func PredictionOpen(now time.Time, raceDate time.Time) bool {
	return !toUTCDate(now).After(PredictionDeadline(raceDate))
}

func toUTCDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
