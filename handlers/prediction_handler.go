package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Dosada05/prediction-league/middleware"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/services"
)

type PredictionHandler struct {
	predictionService services.PredictionService
}

func NewPredictionHandler(predictionService services.PredictionService) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
	}
}

// Submit принимает прогноз текущего пользователя на гонку. Пользователь
// берётся из JWT, момент подачи — серверное время.
func (h *PredictionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	username, err := middleware.GetUsernameFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.SubmitPredictionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.RaceName == "" {
		badRequestResponse(w, r, errors.New("race_name is required"))
		return
	}
	if !input.Format.Valid() {
		badRequestResponse(w, r, errors.New("race_format must be grand_prix or sprint"))
		return
	}

	if err := h.predictionService.SubmitPrediction(r.Context(), username, input, time.Now().UTC()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"message": "prediction accepted",
	}

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete удаляет весь прогноз текущего пользователя на гонку. Идемпотентен.
func (h *PredictionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username, err := middleware.GetUsernameFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input struct {
		RaceName string            `json:"race_name"`
		Format   models.RaceFormat `json:"race_format"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.RaceName == "" || !input.Format.Valid() {
		badRequestResponse(w, r, errors.New("race_name and a valid race_format are required"))
		return
	}

	if err := h.predictionService.DeletePredictions(r.Context(), username, input.RaceName, input.Format); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"message": "prediction deleted",
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RacePredictions отдаёт все прогнозы на гонку: пользователь → порядок пилотов.
func (h *PredictionHandler) RacePredictions(w http.ResponseWriter, r *http.Request) {
	raceName := r.URL.Query().Get("name")
	format := models.RaceFormat(r.URL.Query().Get("format"))

	if raceName == "" || !format.Valid() {
		badRequestResponse(w, r, errors.New("query parameters name and format are required"))
		return
	}

	predictions, err := h.predictionService.RacePredictions(r.Context(), raceName, format)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"predictions": predictions,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
