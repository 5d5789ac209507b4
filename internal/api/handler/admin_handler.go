package handler

import (
	"encoding/json"
	"net/http"

	"recipedia/internal/api/middleware"
	"recipedia/internal/core/apperr"
	"recipedia/internal/core/service"
)

// AdminHandler serves the admin console: user management and the
// all-recipes listing. Authorization lives in the services, which deny
// every non-admin actor.
type AdminHandler struct {
	userService   service.UserService
	recipeService service.RecipeService
}

func NewAdminHandler(userService service.UserService, recipeService service.RecipeService) *AdminHandler {
	return &AdminHandler{
		userService:   userService,
		recipeService: recipeService,
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.SearchUsers(r.Context(), middleware.ActorFrom(r), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "User not found")
	if err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.userService.GetUser(r.Context(), middleware.ActorFrom(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type updateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "User not found")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperr.New(apperr.Validation, "Invalid request body"))
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), middleware.ActorFrom(r), id, service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "User not found")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.userService.DeleteUser(r.Context(), middleware.ActorFrom(r), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "User and their recipes deleted"})
}

func (h *AdminHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipeService.AdminSearch(r.Context(), middleware.ActorFrom(r), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, recipes)
}
