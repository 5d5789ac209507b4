package service

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipedia/internal/core/apperr"
	"recipedia/internal/core/model"
	"recipedia/internal/core/policy"
	"recipedia/internal/core/repository"
)

func memberActor() policy.Actor {
	return policy.Actor{ID: primitive.NewObjectID(), Role: model.RoleMember, Authenticated: true}
}

func adminActor() policy.Actor {
	return policy.Actor{ID: primitive.NewObjectID(), Role: model.RoleAdmin, Authenticated: true}
}

func validInput() CreateRecipeInput {
	return CreateRecipeInput{
		Title:        "Pancakes",
		Ingredients:  []string{"flour", "milk", "eggs"},
		Instructions: "Mix and fry.",
		Category:     "Breakfast",
		CookingTime:  15,
		Image:        "https://images.example.com/pancakes.jpg",
	}
}

func newRecipeFixture(t *testing.T) (RecipeService, policy.Actor, *model.Recipe) {
	t.Helper()
	svc := NewRecipeService(repository.NewInMemoryRecipeRepository(), repository.NewInMemoryUserRepository())
	owner := memberActor()
	recipe, err := svc.Create(context.Background(), owner, validInput())
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	return svc, owner, recipe
}

func TestCreateValidation(t *testing.T) {
	svc := NewRecipeService(repository.NewInMemoryRecipeRepository(), repository.NewInMemoryUserRepository())
	actor := memberActor()

	tests := []struct {
		name   string
		mutate func(*CreateRecipeInput)
	}{
		{"missing title", func(in *CreateRecipeInput) { in.Title = " " }},
		{"empty ingredients", func(in *CreateRecipeInput) { in.Ingredients = nil }},
		{"blank ingredients", func(in *CreateRecipeInput) { in.Ingredients = []string{" ", ""} }},
		{"missing instructions", func(in *CreateRecipeInput) { in.Instructions = "" }},
		{"missing category", func(in *CreateRecipeInput) { in.Category = "" }},
		{"missing image", func(in *CreateRecipeInput) { in.Image = "" }},
		{"zero cooking time", func(in *CreateRecipeInput) { in.CookingTime = 0 }},
		{"negative cooking time", func(in *CreateRecipeInput) { in.CookingTime = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)
			_, err := svc.Create(context.Background(), actor, input)
			if apperr.KindOf(err) != apperr.Validation {
				t.Errorf("error kind = %v, want Validation (err=%v)", apperr.KindOf(err), err)
			}
		})
	}

	t.Run("anonymous denied", func(t *testing.T) {
		_, err := svc.Create(context.Background(), policy.Anonymous, validInput())
		if apperr.KindOf(err) != apperr.Unauthenticated {
			t.Errorf("error kind = %v, want Unauthenticated", apperr.KindOf(err))
		}
	})
}

func TestToggleLikeAlternates(t *testing.T) {
	svc, _, recipe := newRecipeFixture(t)
	liker := memberActor()
	ctx := context.Background()

	res, err := svc.ToggleLike(ctx, liker, recipe.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if res.Likes != 1 || !res.LikedByUser {
		t.Errorf("after first toggle: likes=%d likedByUser=%v, want 1/true", res.Likes, res.LikedByUser)
	}

	res, err = svc.ToggleLike(ctx, liker, recipe.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if res.Likes != 0 || res.LikedByUser {
		t.Errorf("after second toggle: likes=%d likedByUser=%v, want 0/false", res.Likes, res.LikedByUser)
	}

	// An even number of toggles restores the pre-call state.
	for i := 0; i < 4; i++ {
		if res, err = svc.ToggleLike(ctx, liker, recipe.ID); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
	}
	if res.Likes != 0 || res.LikedByUser {
		t.Errorf("after even toggles: likes=%d likedByUser=%v, want 0/false", res.Likes, res.LikedByUser)
	}
}

func TestToggleLikeCountEqualsSetSize(t *testing.T) {
	svc, _, recipe := newRecipeFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.ToggleLike(ctx, memberActor(), recipe.ID); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}

	view, err := svc.Get(ctx, policy.Anonymous, recipe.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Likes != len(view.LikedBy) {
		t.Errorf("likes=%d but |likedBy|=%d", view.Likes, len(view.LikedBy))
	}
	if view.Likes != 3 {
		t.Errorf("likes=%d, want 3", view.Likes)
	}
	if view.LikedByUser {
		t.Error("likedByUser true for anonymous reader")
	}
}

func TestToggleLikeDenied(t *testing.T) {
	svc, _, recipe := newRecipeFixture(t)

	_, err := svc.ToggleLike(context.Background(), policy.Anonymous, recipe.ID)
	if apperr.KindOf(err) != apperr.Unauthenticated {
		t.Errorf("error kind = %v, want Unauthenticated", apperr.KindOf(err))
	}
}

func TestToggleLikeUnknownRecipe(t *testing.T) {
	svc, _, _ := newRecipeFixture(t)

	_, err := svc.ToggleLike(context.Background(), memberActor(), primitive.NewObjectID())
	if apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("error kind = %v, want NotFound", apperr.KindOf(err))
	}
}

func TestRateUpsert(t *testing.T) {
	svc, _, recipe := newRecipeFixture(t)
	ctx := context.Background()
	alice := memberActor()
	bob := memberActor()

	res, err := svc.Rate(ctx, alice, recipe.ID, 4)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if res.Rating != 4 || res.UserRating != 4 {
		t.Errorf("rating=%v userRating=%d, want 4/4", res.Rating, res.UserRating)
	}

	res, err = svc.Rate(ctx, bob, recipe.ID, 2)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if res.Rating != 3 {
		t.Errorf("rating=%v, want mean 3", res.Rating)
	}

	// Re-rating replaces, never appends.
	res, err = svc.Rate(ctx, alice, recipe.ID, 5)
	if err != nil {
		t.Fatalf("re-rate: %v", err)
	}
	if res.Rating != 3.5 {
		t.Errorf("rating=%v, want 3.5", res.Rating)
	}

	view, err := svc.Get(ctx, alice, recipe.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Ratings) != 2 {
		t.Fatalf("ratings list has %d entries, want 2", len(view.Ratings))
	}
	if got := view.RatingBy(alice.ID); got != 5 {
		t.Errorf("alice's recorded value = %d, want 5", got)
	}
}

func TestRateOutOfRangeRejectedBeforeStore(t *testing.T) {
	svc, _, recipe := newRecipeFixture(t)
	ctx := context.Background()
	actor := memberActor()

	for _, value := range []int{0, 6, -1, 100} {
		_, err := svc.Rate(ctx, actor, recipe.ID, value)
		if apperr.KindOf(err) != apperr.Validation {
			t.Errorf("Rate(%d) kind = %v, want Validation", value, apperr.KindOf(err))
		}
	}

	view, err := svc.Get(ctx, actor, recipe.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Ratings) != 0 || view.AvgRating != 0 {
		t.Errorf("rating list mutated by rejected values: %v avg=%v", view.Ratings, view.AvgRating)
	}
}

func TestGetIncludesAuthor(t *testing.T) {
	userRepo := repository.NewInMemoryUserRepository()
	svc := NewRecipeService(repository.NewInMemoryRecipeRepository(), userRepo)
	ctx := context.Background()

	owner := model.NewUser("alice", "alice@example.com", "hash")
	if err := userRepo.Create(ctx, owner); err != nil {
		t.Fatalf("create user: %v", err)
	}
	ownerActor := policy.Actor{ID: owner.ID, Role: model.RoleMember, Authenticated: true}

	recipe, err := svc.Create(ctx, ownerActor, validInput())
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	view, err := svc.Get(ctx, policy.Anonymous, recipe.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Author == nil {
		t.Fatal("single-recipe view missing author")
	}
	if view.Author.ID != owner.ID || view.Author.Username != "alice" || view.Author.Email != "alice@example.com" {
		t.Errorf("author = %+v", view.Author)
	}

	// Listings stay un-populated; the author belongs to the detail view.
	views, err := svc.List(ctx, policy.Anonymous, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || views[0].Author != nil {
		t.Errorf("listing populated author: %+v", views)
	}

	// A recipe whose owner was since removed still reads fine.
	if err := userRepo.Delete(ctx, owner.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	view, err = svc.Get(ctx, policy.Anonymous, recipe.ID)
	if err != nil {
		t.Fatalf("get after owner delete: %v", err)
	}
	if view.Author != nil {
		t.Error("author populated for deleted owner")
	}
}

func TestUpdatePolicy(t *testing.T) {
	svc, owner, recipe := newRecipeFixture(t)
	ctx := context.Background()

	if _, err := svc.Update(ctx, memberActor(), recipe.ID, UpdateRecipeInput{Title: "Stolen"}); apperr.KindOf(err) != apperr.Forbidden {
		t.Errorf("non-owner update kind = %v, want Forbidden", apperr.KindOf(err))
	}

	updated, err := svc.Update(ctx, owner, recipe.ID, UpdateRecipeInput{Title: "Crepes", CookingTime: 10})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "Crepes" || updated.CookingTime != 10 {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.CreatedBy != owner.ID {
		t.Error("ownership changed on update")
	}
	if updated.Instructions != "Mix and fry." {
		t.Error("unset field overwritten")
	}

	if _, err := svc.Update(ctx, adminActor(), recipe.ID, UpdateRecipeInput{Category: "Brunch"}); err != nil {
		t.Errorf("admin update: %v", err)
	}
}

func TestDeletePolicy(t *testing.T) {
	svc, owner, recipe := newRecipeFixture(t)
	ctx := context.Background()

	if err := svc.Delete(ctx, memberActor(), recipe.ID); apperr.KindOf(err) != apperr.Forbidden {
		t.Errorf("non-owner delete kind = %v, want Forbidden", apperr.KindOf(err))
	}
	if err := svc.Delete(ctx, policy.Anonymous, recipe.ID); apperr.KindOf(err) != apperr.Unauthenticated {
		t.Errorf("anonymous delete kind = %v, want Unauthenticated", apperr.KindOf(err))
	}

	if err := svc.Delete(ctx, owner, recipe.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Get(ctx, owner, recipe.ID); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("deleted recipe still resolves: %v", err)
	}
}

func TestListingsAndFavorites(t *testing.T) {
	repo := repository.NewInMemoryRecipeRepository()
	svc := NewRecipeService(repo, repository.NewInMemoryUserRepository())
	ctx := context.Background()
	owner := memberActor()
	liker := memberActor()

	breakfast := validInput()
	dinner := validInput()
	dinner.Title = "Roast Chicken"
	dinner.Category = "Dinner"

	first, err := svc.Create(ctx, owner, breakfast)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, owner, dinner); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.ToggleLike(ctx, liker, first.ID); err != nil {
		t.Fatalf("like: %v", err)
	}

	views, err := svc.List(ctx, liker, "Breakfast")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || !views[0].LikedByUser {
		t.Errorf("category listing = %d items, likedByUser=%v", len(views), len(views) > 0 && views[0].LikedByUser)
	}

	found, err := svc.Search(ctx, policy.Anonymous, "roast")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].Title != "Roast Chicken" {
		t.Errorf("search returned %d items", len(found))
	}

	favorites, err := svc.Favorites(ctx, liker, "")
	if err != nil {
		t.Fatalf("favorites: %v", err)
	}
	if len(favorites) != 1 || favorites[0].ID != first.ID {
		t.Errorf("favorites = %d items", len(favorites))
	}

	mine, err := svc.Mine(ctx, owner)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("mine = %d items, want 2", len(mine))
	}

	if _, err := svc.Favorites(ctx, policy.Anonymous, ""); apperr.KindOf(err) != apperr.Unauthenticated {
		t.Errorf("anonymous favorites kind = %v", apperr.KindOf(err))
	}
}

func TestAdminSearch(t *testing.T) {
	svc, owner, _ := newRecipeFixture(t)
	ctx := context.Background()

	if _, err := svc.AdminSearch(ctx, owner, ""); apperr.KindOf(err) != apperr.Forbidden {
		t.Errorf("member admin search kind = %v, want Forbidden", apperr.KindOf(err))
	}

	recipes, err := svc.AdminSearch(ctx, adminActor(), "breakfast")
	if err != nil {
		t.Fatalf("admin search: %v", err)
	}
	if len(recipes) != 1 {
		t.Errorf("admin search = %d items, want 1 (category keyword match)", len(recipes))
	}
}
