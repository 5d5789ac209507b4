package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipedia/internal/core/model"
)

type inMemoryRecipeRepository struct {
	recipes map[primitive.ObjectID]model.Recipe
	mutex   sync.RWMutex
}

func NewInMemoryRecipeRepository() RecipeRepository {
	return &inMemoryRecipeRepository{
		recipes: make(map[primitive.ObjectID]model.Recipe),
	}
}

func (r *inMemoryRecipeRepository) Create(_ context.Context, recipe *model.Recipe) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.recipes[recipe.ID]; exists {
		return fmt.Errorf("recipe %s already exists", recipe.ID.Hex())
	}
	r.recipes[recipe.ID] = copyRecipe(*recipe)
	return nil
}

func (r *inMemoryRecipeRepository) Update(_ context.Context, recipe *model.Recipe) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.recipes[recipe.ID]; !exists {
		return fmt.Errorf("recipe %s not found", recipe.ID.Hex())
	}
	r.recipes[recipe.ID] = copyRecipe(*recipe)
	return nil
}

func (r *inMemoryRecipeRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.recipes, id)
	return nil
}

func (r *inMemoryRecipeRepository) DeleteByOwner(_ context.Context, ownerID primitive.ObjectID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for id, recipe := range r.recipes {
		if recipe.CreatedBy == ownerID {
			delete(r.recipes, id)
		}
	}
	return nil
}

func (r *inMemoryRecipeRepository) FindByID(_ context.Context, id primitive.ObjectID) (*model.Recipe, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if recipe, exists := r.recipes[id]; exists {
		recipe = copyRecipe(recipe)
		return &recipe, nil
	}
	return nil, nil
}

func (r *inMemoryRecipeRepository) Find(_ context.Context, filter RecipeFilter) ([]*model.Recipe, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*model.Recipe
	for _, recipe := range r.recipes {
		if !matchesFilter(&recipe, filter) {
			continue
		}
		recipe := copyRecipe(recipe)
		result = append(result, &recipe)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter.Limit > 0 && int64(len(result)) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func matchesFilter(recipe *model.Recipe, filter RecipeFilter) bool {
	if filter.Category != "" && recipe.Category != filter.Category {
		return false
	}
	if filter.Title != "" &&
		!strings.Contains(strings.ToLower(recipe.Title), strings.ToLower(filter.Title)) {
		return false
	}
	if filter.Keyword != "" {
		kw := strings.ToLower(filter.Keyword)
		if !strings.Contains(strings.ToLower(recipe.Title), kw) &&
			!strings.Contains(strings.ToLower(recipe.Category), kw) {
			return false
		}
	}
	if !filter.LikedBy.IsZero() && !recipe.IsLikedBy(filter.LikedBy) {
		return false
	}
	if !filter.CreatedBy.IsZero() && recipe.CreatedBy != filter.CreatedBy {
		return false
	}
	return true
}

func (r *inMemoryRecipeRepository) ToggleLike(_ context.Context, recipeID, userID primitive.ObjectID) (*model.Recipe, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	recipe, exists := r.recipes[recipeID]
	if !exists {
		return nil, nil
	}

	if recipe.IsLikedBy(userID) {
		kept := recipe.LikedBy[:0:0]
		for _, id := range recipe.LikedBy {
			if id != userID {
				kept = append(kept, id)
			}
		}
		recipe.LikedBy = kept
	} else {
		recipe.LikedBy = append(recipe.LikedBy, userID)
	}
	// Counter derived from the set, same as the Mongo pipeline.
	recipe.Likes = len(recipe.LikedBy)

	r.recipes[recipeID] = recipe
	recipe = copyRecipe(recipe)
	return &recipe, nil
}

func (r *inMemoryRecipeRepository) UpsertRating(_ context.Context, recipeID, userID primitive.ObjectID, value int) (*model.Recipe, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	recipe, exists := r.recipes[recipeID]
	if !exists {
		return nil, nil
	}

	kept := recipe.Ratings[:0:0]
	for _, rt := range recipe.Ratings {
		if rt.User != userID {
			kept = append(kept, rt)
		}
	}
	recipe.Ratings = append(kept, model.Rating{User: userID, Value: value})

	sum := 0
	for _, rt := range recipe.Ratings {
		sum += rt.Value
	}
	recipe.AvgRating = float64(sum) / float64(len(recipe.Ratings))

	r.recipes[recipeID] = recipe
	recipe = copyRecipe(recipe)
	return &recipe, nil
}

func copyRecipe(recipe model.Recipe) model.Recipe {
	recipe.Ingredients = append([]string(nil), recipe.Ingredients...)
	recipe.LikedBy = append([]primitive.ObjectID(nil), recipe.LikedBy...)
	recipe.Ratings = append([]model.Rating(nil), recipe.Ratings...)
	return recipe
}
