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

func newUserFixture(t *testing.T) (UserService, RecipeService) {
	t.Helper()
	userRepo := repository.NewInMemoryUserRepository()
	recipeRepo := repository.NewInMemoryRecipeRepository()
	return NewUserService(userRepo, recipeRepo), NewRecipeService(recipeRepo, userRepo)
}

func TestRegister(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != model.RoleMember {
		t.Errorf("new user role = %s, want member", user.Role)
	}
	if user.Password == "secret123" {
		t.Error("password stored in clear")
	}

	if _, err := svc.Register(ctx, "alice2", "alice@example.com", "x"); apperr.KindOf(err) != apperr.Validation {
		t.Errorf("duplicate email kind = %v, want Validation", apperr.KindOf(err))
	}
	if _, err := svc.Register(ctx, "alice", "other@example.com", "x"); apperr.KindOf(err) != apperr.Validation {
		t.Errorf("duplicate username kind = %v, want Validation", apperr.KindOf(err))
	}
	if _, err := svc.Register(ctx, "", "e@example.com", "x"); apperr.KindOf(err) != apperr.Validation {
		t.Errorf("missing username kind = %v, want Validation", apperr.KindOf(err))
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := svc.Authenticate(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != registered.ID {
		t.Error("authenticated as wrong user")
	}

	if _, err := svc.Authenticate(ctx, "alice@example.com", "wrong"); apperr.KindOf(err) != apperr.Unauthenticated {
		t.Errorf("bad password kind = %v, want Unauthenticated", apperr.KindOf(err))
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "x"); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("unknown email kind = %v, want NotFound", apperr.KindOf(err))
	}
}

func TestUpdateUserRequiresAdmin(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	member := policy.Actor{ID: user.ID, Role: model.RoleMember, Authenticated: true}
	if _, err := svc.UpdateUser(ctx, member, user.ID, UpdateUserInput{Username: "al"}); apperr.KindOf(err) != apperr.Forbidden {
		t.Errorf("member update kind = %v, want Forbidden", apperr.KindOf(err))
	}

	admin := adminActor()
	if _, err := svc.UpdateUser(ctx, admin, user.ID, UpdateUserInput{Role: "superuser"}); apperr.KindOf(err) != apperr.Validation {
		t.Errorf("invalid role kind = %v, want Validation", apperr.KindOf(err))
	}

	updated, err := svc.UpdateUser(ctx, admin, user.ID, UpdateUserInput{Role: "admin", Username: "al"})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Role != model.RoleAdmin || updated.Username != "al" {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Email != "alice@example.com" {
		t.Error("unset field overwritten")
	}
}

func TestDeleteUserCascades(t *testing.T) {
	userSvc, recipeSvc := newUserFixture(t)
	ctx := context.Background()

	victim, err := userSvc.Register(ctx, "bob", "bob@example.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	victimActor := policy.Actor{ID: victim.ID, Role: model.RoleMember, Authenticated: true}
	recipe, err := recipeSvc.Create(ctx, victimActor, validInput())
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	admin := adminActor()
	if err := userSvc.DeleteUser(ctx, victimActor, victim.ID); apperr.KindOf(err) != apperr.Forbidden {
		t.Errorf("member delete kind = %v, want Forbidden", apperr.KindOf(err))
	}
	if err := userSvc.DeleteUser(ctx, admin, admin.ID); apperr.KindOf(err) != apperr.Validation {
		t.Errorf("self-delete kind = %v, want Validation", apperr.KindOf(err))
	}

	if err := userSvc.DeleteUser(ctx, admin, victim.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := userSvc.GetUser(ctx, admin, victim.ID); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("deleted user still resolves: %v", err)
	}
	if _, err := recipeSvc.Get(ctx, admin, recipe.ID); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("cascade left recipe behind: %v", err)
	}

	if err := userSvc.DeleteUser(ctx, admin, primitive.NewObjectID()); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("unknown user delete kind = %v, want NotFound", apperr.KindOf(err))
	}
}

func TestSearchUsers(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "x1234"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "bob", "bob@example.com", "x1234"); err != nil {
		t.Fatalf("register: %v", err)
	}

	admin := adminActor()
	users, err := svc.SearchUsers(ctx, admin, "ali")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(users) != 1 || users[0].Username != "alice" {
		t.Errorf("search returned %d users", len(users))
	}

	all, err := svc.SearchUsers(ctx, admin, "")
	if err != nil {
		t.Fatalf("search all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("search all returned %d users, want 2", len(all))
	}

	if _, err := svc.SearchUsers(ctx, memberActor(), ""); apperr.KindOf(err) != apperr.Forbidden {
		t.Errorf("member search kind = %v, want Forbidden", apperr.KindOf(err))
	}
}
