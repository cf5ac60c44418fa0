package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/services"
	"github.com/go-chi/chi/v5"
)

type ScoringHandler struct {
	scoringService services.ScoringService
}

func NewScoringHandler(scoringService services.ScoringService) *ScoringHandler {
	return &ScoringHandler{
		scoringService: scoringService,
	}
}

// ScoreForRace отдаёт счёт пользователя за гонку. «Счёта нет» — это не
// ошибка: в ответе будет null.
func (h *ScoringHandler) ScoreForRace(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string            `json:"username"`
		RaceName string            `json:"race_name"`
		Format   models.RaceFormat `json:"race_format"`
	}

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Username == "" || input.RaceName == "" || !input.Format.Valid() {
		badRequestResponse(w, r, errors.New("username, race_name and a valid race_format are required"))
		return
	}

	score, err := h.scoringService.ScoreForRace(r.Context(), input.Username, input.RaceName, input.Format)
	response := jsonResponse{"score": nil}
	switch {
	case err == nil:
		response["score"] = score
	case errors.Is(err, services.ErrNoScoreAvailable):
	default:
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TotalScore отдаёт суммарный счёт пользователя по всем оценённым гонкам,
// либо null, если не оценена ни одна.
func (h *ScoringHandler) TotalScore(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		badRequestResponse(w, r, errors.New("missing username in URL path"))
		return
	}

	total, err := h.scoringService.TotalScore(r.Context(), username)
	response := jsonResponse{"total": nil}
	switch {
	case err == nil:
		response["total"] = total
	case errors.Is(err, services.ErrNoScoreAvailable):
	default:
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScoringHandler) Standings(w http.ResponseWriter, r *http.Request) {
	entries, err := h.scoringService.Standings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"standings": entries,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
