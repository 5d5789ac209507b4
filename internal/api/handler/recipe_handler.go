package handler

import (
	"encoding/json"
	"net/http"

	"recipedia/internal/api/middleware"
	"recipedia/internal/core/apperr"
	"recipedia/internal/core/service"
)

type RecipeHandler struct {
	recipeService service.RecipeService
}

func NewRecipeHandler(recipeService service.RecipeService) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
	}
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateRecipeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, r, apperr.New(apperr.Validation, "Invalid request body"))
		return
	}

	recipe, err := h.recipeService.Create(r.Context(), middleware.ActorFrom(r), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, recipe)
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipeService.List(r.Context(), middleware.ActorFrom(r), r.URL.Query().Get("category"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) Latest(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipeService.Latest(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) Search(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipeService.Search(r.Context(), middleware.ActorFrom(r), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Recipe not found")
	if err != nil {
		respondError(w, r, err)
		return
	}

	recipe, err := h.recipeService.Get(r.Context(), middleware.ActorFrom(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) Mine(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipeService.Mine(r.Context(), middleware.ActorFrom(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipeService.Favorites(r.Context(), middleware.ActorFrom(r), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Recipe not found")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var input service.UpdateRecipeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, r, apperr.New(apperr.Validation, "Invalid request body"))
		return
	}

	recipe, err := h.recipeService.Update(r.Context(), middleware.ActorFrom(r), id, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Recipe not found")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.recipeService.Delete(r.Context(), middleware.ActorFrom(r), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Recipe deleted"})
}

func (h *RecipeHandler) Like(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Recipe not found")
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.recipeService.ToggleLike(r.Context(), middleware.ActorFrom(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type rateRequest struct {
	Value int `json:"value"`
}

func (h *RecipeHandler) Rate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Recipe not found")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperr.New(apperr.Validation, "Invalid request body"))
		return
	}

	result, err := h.recipeService.Rate(r.Context(), middleware.ActorFrom(r), id, req.Value)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
