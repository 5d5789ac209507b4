package router

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"recipedia/internal/api/handler"
	"recipedia/internal/api/middleware"
	"recipedia/internal/core/auth"
	"recipedia/internal/core/repository"
	"recipedia/internal/core/service"
)

func New(
	userService service.UserService,
	recipeService service.RecipeService,
	tokens *auth.TokenService,
	userRepo repository.UserRepository,
) http.Handler {
	authHandler := handler.NewAuthHandler(userService, tokens)
	recipeHandler := handler.NewRecipeHandler(recipeService)
	adminHandler := handler.NewAdminHandler(userService, recipeService)
	gate := middleware.NewAccessGate(tokens, userRepo)

	r := mux.NewRouter()
	r.Use(middleware.CORSMiddleware, middleware.LoggingMiddleware)

	// Browser preflights carry no method the routes below declare, and
	// mux skips Use middleware entirely when no route matches. This
	// catch-all gives OPTIONS a match so the CORS middleware can answer.
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Auth
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods(http.MethodPost)
	r.Handle("/api/auth/me", gate.Require(http.HandlerFunc(authHandler.Me))).Methods(http.MethodGet)

	// Recipes, public reads with the optional gate. Fixed paths are
	// registered before the {id} routes so they never match as ids.
	r.Handle("/api/recipes/latest", http.HandlerFunc(recipeHandler.Latest)).Methods(http.MethodGet)
	r.Handle("/api/recipes/search", gate.Optional(http.HandlerFunc(recipeHandler.Search))).Methods(http.MethodGet)
	r.Handle("/api/recipes/my", gate.Require(http.HandlerFunc(recipeHandler.Mine))).Methods(http.MethodGet)
	r.Handle("/api/recipes/favorites", gate.Require(http.HandlerFunc(recipeHandler.Favorites))).Methods(http.MethodGet)
	r.Handle("/api/recipes", gate.Optional(http.HandlerFunc(recipeHandler.List))).Methods(http.MethodGet)
	r.Handle("/api/recipes", gate.Require(http.HandlerFunc(recipeHandler.Create))).Methods(http.MethodPost)
	r.Handle("/api/recipes/{id}", gate.Optional(http.HandlerFunc(recipeHandler.Get))).Methods(http.MethodGet)
	r.Handle("/api/recipes/{id}", gate.Require(http.HandlerFunc(recipeHandler.Update))).Methods(http.MethodPut)
	r.Handle("/api/recipes/{id}", gate.Require(http.HandlerFunc(recipeHandler.Delete))).Methods(http.MethodDelete)
	r.Handle("/api/recipes/{id}/like", gate.Require(http.HandlerFunc(recipeHandler.Like))).Methods(http.MethodPost)
	r.Handle("/api/recipes/{id}/rate", gate.Require(http.HandlerFunc(recipeHandler.Rate))).Methods(http.MethodPost)

	// Admin console. The services deny non-admin actors.
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(gate.Require)
	admin.HandleFunc("/users", adminHandler.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", adminHandler.GetUser).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", adminHandler.UpdateUser).Methods(http.MethodPut)
	admin.HandleFunc("/users/{id}", adminHandler.DeleteUser).Methods(http.MethodDelete)
	admin.HandleFunc("/recipes", adminHandler.ListRecipes).Methods(http.MethodGet)
	admin.HandleFunc("/recipes/{id}", recipeHandler.Get).Methods(http.MethodGet)
	admin.HandleFunc("/recipes/{id}", recipeHandler.Update).Methods(http.MethodPut)
	admin.HandleFunc("/recipes/{id}", recipeHandler.Delete).Methods(http.MethodDelete)

	return r
}
