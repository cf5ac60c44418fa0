package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/prediction-league/services"
)

type RaceHandler struct {
	raceService services.RaceService
}

func NewRaceHandler(raceService services.RaceService) *RaceHandler {
	return &RaceHandler{
		raceService: raceService,
	}
}

func (h *RaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateRaceInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	race, err := h.raceService.CreateRace(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"race": race,
	}

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RaceHandler) List(w http.ResponseWriter, r *http.Request) {
	races, err := h.raceService.ListRaces(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"races": races,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RaceHandler) UploadPoster(w http.ResponseWriter, r *http.Request) {
	raceID, err := idFromURL(r, "raceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("poster")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content type required"))
		return
	}

	race, err := h.raceService.UploadPoster(r.Context(), raceID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"race": race,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
