package handlers

import (
	"net/http"

	"github.com/Dosada05/prediction-league/services"
)

type ConstructorHandler struct {
	constructorService services.ConstructorService
}

func NewConstructorHandler(constructorService services.ConstructorService) *ConstructorHandler {
	return &ConstructorHandler{
		constructorService: constructorService,
	}
}

func (h *ConstructorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	constructor, err := h.constructorService.CreateConstructor(r.Context(), input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"constructor": constructor,
	}

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ConstructorHandler) List(w http.ResponseWriter, r *http.Request) {
	constructors, err := h.constructorService.ListConstructors(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"constructors": constructors,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
