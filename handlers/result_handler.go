package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/services"
)

type ResultHandler struct {
	predictionService services.PredictionService
}

func NewResultHandler(predictionService services.PredictionService) *ResultHandler {
	return &ResultHandler{
		predictionService: predictionService,
	}
}

// Record фиксирует финиш одного пилота в гонке.
func (h *ResultHandler) Record(w http.ResponseWriter, r *http.Request) {
	var input services.RecordResultInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.RaceName == "" || input.Driver == "" || input.Constructor == "" {
		badRequestResponse(w, r, errors.New("race_name, driver and constructor are required"))
		return
	}
	if !input.Format.Valid() {
		badRequestResponse(w, r, errors.New("race_format must be grand_prix or sprint"))
		return
	}

	result, err := h.predictionService.RecordResult(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"result": result,
	}

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByRace отдаёт полную классификацию гонки, включая финишёров без очков.
func (h *ResultHandler) ListByRace(w http.ResponseWriter, r *http.Request) {
	raceName := r.URL.Query().Get("name")
	format := models.RaceFormat(r.URL.Query().Get("format"))

	if raceName == "" || !format.Valid() {
		badRequestResponse(w, r, errors.New("query parameters name and format are required"))
		return
	}

	results, err := h.predictionService.RaceResults(r.Context(), raceName, format)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"results": results,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
