package handler

import (
	"encoding/json"
	"net/http"

	"recipedia/internal/api/middleware"
	"recipedia/internal/core/apperr"
	"recipedia/internal/core/auth"
	"recipedia/internal/core/model"
	"recipedia/internal/core/service"
)

type AuthHandler struct {
	userService service.UserService
	tokens      *auth.TokenService
}

func NewAuthHandler(userService service.UserService, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	Token    string     `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperr.New(apperr.Validation, "Invalid request body"))
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperr.New(apperr.Validation, "Invalid request body"))
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
}

// Me returns the authenticated caller's own record.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r)
	user, err := h.userService.GetUser(r.Context(), actor, actor.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *model.User) {
	token, err := h.tokens.Sign(user.ID)
	if err != nil {
		respondError(w, r, apperr.Wrap(apperr.Internal, "sign token", err))
		return
	}

	respondJSON(w, status, authResponse{
		ID:       user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Token:    token,
	})
}
