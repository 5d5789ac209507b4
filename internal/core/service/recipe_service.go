package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipedia/internal/cache"
	"recipedia/internal/core/apperr"
	"recipedia/internal/core/model"
	"recipedia/internal/core/policy"
	"recipedia/internal/core/repository"
)

const (
	latestRecipesLimit = 3
	latestCacheTTL     = time.Minute
)

// RecipeAuthor is the owner's public identity, embedded in the
// single-recipe view so clients can show the author without a second
// lookup.
type RecipeAuthor struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
}

// RecipeView is a recipe annotated with whether the acting user has
// liked it. The annotation is always false for anonymous actors.
// Author is populated on single-recipe reads only; it is nil in
// listings and when the owning account no longer exists.
type RecipeView struct {
	model.Recipe
	LikedByUser bool          `json:"likedByUser"`
	Author      *RecipeAuthor `json:"author,omitempty"`
}

// CreateRecipeInput carries the client-supplied recipe fields. The
// image is a URL to already-hosted storage; this service never touches
// image bytes.
type CreateRecipeInput struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Category     string   `json:"category"`
	CookingTime  int      `json:"cookingTime"`
	Image        string   `json:"image"`
}

// UpdateRecipeInput holds partial edits. Zero-valued fields are left
// unchanged; ownership is immutable and not represented here.
type UpdateRecipeInput struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Category     string   `json:"category"`
	CookingTime  int      `json:"cookingTime"`
	Image        string   `json:"image"`
}

type LikeResult struct {
	Likes       int  `json:"likes"`
	LikedByUser bool `json:"likedByUser"`
}

type RateResult struct {
	Rating     float64 `json:"rating"`
	UserRating int     `json:"userRating"`
}

type RecipeService interface {
	Create(ctx context.Context, actor policy.Actor, input CreateRecipeInput) (*model.Recipe, error)
	Get(ctx context.Context, actor policy.Actor, id primitive.ObjectID) (*RecipeView, error)
	List(ctx context.Context, actor policy.Actor, category string) ([]*RecipeView, error)
	Latest(ctx context.Context) ([]*model.Recipe, error)
	Search(ctx context.Context, actor policy.Actor, q string) ([]*RecipeView, error)
	Mine(ctx context.Context, actor policy.Actor) ([]*model.Recipe, error)
	Favorites(ctx context.Context, actor policy.Actor, q string) ([]*model.Recipe, error)
	Update(ctx context.Context, actor policy.Actor, id primitive.ObjectID, input UpdateRecipeInput) (*model.Recipe, error)
	Delete(ctx context.Context, actor policy.Actor, id primitive.ObjectID) error
	ToggleLike(ctx context.Context, actor policy.Actor, id primitive.ObjectID) (*LikeResult, error)
	Rate(ctx context.Context, actor policy.Actor, id primitive.ObjectID, value int) (*RateResult, error)
	AdminSearch(ctx context.Context, actor policy.Actor, q string) ([]*model.Recipe, error)
}

type recipeService struct {
	recipeRepo repository.RecipeRepository
	userRepo   repository.UserRepository
}

func NewRecipeService(recipeRepo repository.RecipeRepository, userRepo repository.UserRepository) RecipeService {
	return &recipeService{
		recipeRepo: recipeRepo,
		userRepo:   userRepo,
	}
}

func (s *recipeService) Create(ctx context.Context, actor policy.Actor, input CreateRecipeInput) (*model.Recipe, error) {
	if !actor.Authenticated {
		return nil, denyErr(actor)
	}

	ingredients := trimNonEmpty(input.Ingredients)
	if strings.TrimSpace(input.Title) == "" || len(ingredients) == 0 ||
		strings.TrimSpace(input.Instructions) == "" || strings.TrimSpace(input.Category) == "" ||
		input.Image == "" {
		return nil, apperr.New(apperr.Validation, "Please fill all required fields")
	}
	if input.CookingTime < 1 {
		return nil, apperr.New(apperr.Validation, "Cooking time must be at least 1 minute")
	}

	now := time.Now()
	recipe := &model.Recipe{
		ID:           primitive.NewObjectID(),
		Title:        strings.TrimSpace(input.Title),
		Ingredients:  ingredients,
		Instructions: strings.TrimSpace(input.Instructions),
		Category:     strings.TrimSpace(input.Category),
		CookingTime:  input.CookingTime,
		Image:        input.Image,
		CreatedBy:    actor.ID,
		LikedBy:      []primitive.ObjectID{},
		Ratings:      []model.Rating{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "create recipe", err)
	}
	s.invalidateListings(ctx)
	return recipe, nil
}

func (s *recipeService) Get(ctx context.Context, actor policy.Actor, id primitive.ObjectID) (*RecipeView, error) {
	recipe, err := s.findRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	view := s.annotate(actor, recipe)
	owner, err := s.userRepo.FindByID(ctx, recipe.CreatedBy)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "lookup recipe author", err)
	}
	if owner != nil {
		view.Author = &RecipeAuthor{ID: owner.ID, Username: owner.Username, Email: owner.Email}
	}
	return view, nil
}

func (s *recipeService) List(ctx context.Context, actor policy.Actor, category string) ([]*RecipeView, error) {
	recipes, err := s.recipeRepo.Find(ctx, repository.RecipeFilter{Category: category})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list recipes", err)
	}
	return s.annotateAll(actor, recipes), nil
}

// Latest serves the small home-page listing through the cache. The
// listing carries no per-user annotation, so one cached copy serves
// every caller.
func (s *recipeService) Latest(ctx context.Context) ([]*model.Recipe, error) {
	var cached []*model.Recipe
	if err := cache.Get(ctx, cache.KeyLatestRecipes, &cached); err == nil {
		return cached, nil
	}

	recipes, err := s.recipeRepo.Find(ctx, repository.RecipeFilter{Limit: latestRecipesLimit})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list latest recipes", err)
	}

	if err := cache.Set(ctx, cache.KeyLatestRecipes, recipes, latestCacheTTL); err != nil {
		logrus.WithError(err).Warn("Failed to cache latest recipes")
	}
	return recipes, nil
}

func (s *recipeService) Search(ctx context.Context, actor policy.Actor, q string) ([]*RecipeView, error) {
	recipes, err := s.recipeRepo.Find(ctx, repository.RecipeFilter{Title: q})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "search recipes", err)
	}
	return s.annotateAll(actor, recipes), nil
}

func (s *recipeService) Mine(ctx context.Context, actor policy.Actor) ([]*model.Recipe, error) {
	if !actor.Authenticated {
		return nil, denyErr(actor)
	}

	recipes, err := s.recipeRepo.Find(ctx, repository.RecipeFilter{CreatedBy: actor.ID})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list own recipes", err)
	}
	return recipes, nil
}

func (s *recipeService) Favorites(ctx context.Context, actor policy.Actor, q string) ([]*model.Recipe, error) {
	if !actor.Authenticated {
		return nil, denyErr(actor)
	}

	recipes, err := s.recipeRepo.Find(ctx, repository.RecipeFilter{LikedBy: actor.ID, Title: q})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list liked recipes", err)
	}
	return recipes, nil
}

func (s *recipeService) Update(ctx context.Context, actor policy.Actor, id primitive.ObjectID, input UpdateRecipeInput) (*model.Recipe, error) {
	recipe, err := s.findRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Decide(actor, policy.ActionEditRecipe, policy.Resource{OwnerID: recipe.CreatedBy}) {
		return nil, denyErr(actor)
	}

	if strings.TrimSpace(input.Title) != "" {
		recipe.Title = strings.TrimSpace(input.Title)
	}
	if ingredients := trimNonEmpty(input.Ingredients); len(ingredients) > 0 {
		recipe.Ingredients = ingredients
	}
	if strings.TrimSpace(input.Instructions) != "" {
		recipe.Instructions = strings.TrimSpace(input.Instructions)
	}
	if strings.TrimSpace(input.Category) != "" {
		recipe.Category = strings.TrimSpace(input.Category)
	}
	if input.CookingTime > 0 {
		recipe.CookingTime = input.CookingTime
	}
	if input.Image != "" {
		recipe.Image = input.Image
	}
	recipe.UpdatedAt = time.Now()

	if err := s.recipeRepo.Update(ctx, recipe); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "update recipe", err)
	}
	s.invalidateListings(ctx)
	return recipe, nil
}

func (s *recipeService) Delete(ctx context.Context, actor policy.Actor, id primitive.ObjectID) error {
	recipe, err := s.findRecipe(ctx, id)
	if err != nil {
		return err
	}
	if !policy.Decide(actor, policy.ActionDeleteRecipe, policy.Resource{OwnerID: recipe.CreatedBy}) {
		return denyErr(actor)
	}

	if err := s.recipeRepo.Delete(ctx, id); err != nil {
		return apperr.Wrap(apperr.Internal, "delete recipe", err)
	}
	s.invalidateListings(ctx)
	return nil
}

// ToggleLike flips the actor's membership in the like set. Repeated
// calls alternate state; the returned LikedByUser reflects the state
// after this call.
func (s *recipeService) ToggleLike(ctx context.Context, actor policy.Actor, id primitive.ObjectID) (*LikeResult, error) {
	if !policy.Decide(actor, policy.ActionLike, policy.Resource{}) {
		return nil, denyErr(actor)
	}

	recipe, err := s.recipeRepo.ToggleLike(ctx, id, actor.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "toggle like", err)
	}
	if recipe == nil {
		return nil, apperr.New(apperr.NotFound, "Recipe not found")
	}

	s.invalidateListings(ctx)
	return &LikeResult{Likes: recipe.Likes, LikedByUser: recipe.IsLikedBy(actor.ID)}, nil
}

// Rate records or replaces the actor's rating. Out-of-range values are
// rejected before any store access.
func (s *recipeService) Rate(ctx context.Context, actor policy.Actor, id primitive.ObjectID, value int) (*RateResult, error) {
	if !policy.Decide(actor, policy.ActionRate, policy.Resource{}) {
		return nil, denyErr(actor)
	}
	if value < 1 || value > 5 {
		return nil, apperr.New(apperr.Validation, "Rating must be between 1 and 5")
	}

	recipe, err := s.recipeRepo.UpsertRating(ctx, id, actor.ID, value)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "upsert rating", err)
	}
	if recipe == nil {
		return nil, apperr.New(apperr.NotFound, "Recipe not found")
	}

	s.invalidateListings(ctx)
	return &RateResult{Rating: recipe.AvgRating, UserRating: value}, nil
}

// AdminSearch is the admin-console listing: title or category match,
// every recipe regardless of owner.
func (s *recipeService) AdminSearch(ctx context.Context, actor policy.Actor, q string) ([]*model.Recipe, error) {
	if !actor.IsAdmin() {
		return nil, denyErr(actor)
	}

	recipes, err := s.recipeRepo.Find(ctx, repository.RecipeFilter{Keyword: q})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "search recipes", err)
	}
	return recipes, nil
}

func (s *recipeService) findRecipe(ctx context.Context, id primitive.ObjectID) (*model.Recipe, error) {
	recipe, err := s.recipeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "lookup recipe", err)
	}
	if recipe == nil {
		return nil, apperr.New(apperr.NotFound, "Recipe not found")
	}
	return recipe, nil
}

func (s *recipeService) annotate(actor policy.Actor, recipe *model.Recipe) *RecipeView {
	view := &RecipeView{Recipe: *recipe}
	if actor.Authenticated {
		view.LikedByUser = recipe.IsLikedBy(actor.ID)
	}
	return view
}

func (s *recipeService) annotateAll(actor policy.Actor, recipes []*model.Recipe) []*RecipeView {
	views := make([]*RecipeView, 0, len(recipes))
	for _, recipe := range recipes {
		views = append(views, s.annotate(actor, recipe))
	}
	return views
}

func (s *recipeService) invalidateListings(ctx context.Context) {
	if err := cache.Delete(ctx, cache.KeyLatestRecipes); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate recipe cache")
	}
}

func trimNonEmpty(items []string) []string {
	var out []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
