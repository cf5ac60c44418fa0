package models

// StandingsEntry — строка таблицы лидеров. Total — сумма дистанций по гонкам,
// меньше — лучше (гольф-счёт).
type StandingsEntry struct {
	Username string  `json:"username"`
	Total    float64 `json:"total"`
}
