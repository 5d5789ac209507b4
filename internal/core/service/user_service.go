package service

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"recipedia/internal/core/apperr"
	"recipedia/internal/core/model"
	"recipedia/internal/core/policy"
	"recipedia/internal/core/repository"
)

// UpdateUserInput carries the admin-editable user fields. Empty fields
// are left unchanged.
type UpdateUserInput struct {
	Username string
	Email    string
	Role     string
}

type UserService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	GetUser(ctx context.Context, actor policy.Actor, id primitive.ObjectID) (*model.User, error)
	SearchUsers(ctx context.Context, actor policy.Actor, q string) ([]*model.User, error)
	UpdateUser(ctx context.Context, actor policy.Actor, id primitive.ObjectID, input UpdateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, actor policy.Actor, id primitive.ObjectID) error
}

type userService struct {
	userRepo   repository.UserRepository
	recipeRepo repository.RecipeRepository
}

func NewUserService(userRepo repository.UserRepository, recipeRepo repository.RecipeRepository) UserService {
	return &userService{
		userRepo:   userRepo,
		recipeRepo: recipeRepo,
	}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, apperr.New(apperr.Validation, "Please fill all fields")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "lookup by email", err)
	}
	if existing != nil {
		return nil, apperr.New(apperr.Validation, "User already exists")
	}

	existing, err = s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "lookup by username", err)
	}
	if existing != nil {
		return nil, apperr.New(apperr.Validation, "Username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "hash password", err)
	}

	user := model.NewUser(username, email, string(hash))
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "create user", err)
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, apperr.New(apperr.Validation, "Please fill all fields")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "lookup by email", err)
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "User not found")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperr.New(apperr.Unauthenticated, "Invalid credentials")
	}
	return user, nil
}

// GetUser returns a user record. Callers may always read themselves;
// reading anyone else is an admin operation.
func (s *userService) GetUser(ctx context.Context, actor policy.Actor, id primitive.ObjectID) (*model.User, error) {
	self := actor.Authenticated && actor.ID == id
	if !self && !policy.Decide(actor, policy.ActionEditUser, policy.Resource{}) {
		return nil, denyErr(actor)
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "lookup user", err)
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "User not found")
	}
	return user, nil
}

func (s *userService) SearchUsers(ctx context.Context, actor policy.Actor, q string) ([]*model.User, error) {
	if !policy.Decide(actor, policy.ActionEditUser, policy.Resource{}) {
		return nil, denyErr(actor)
	}

	users, err := s.userRepo.Search(ctx, q)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "search users", err)
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor policy.Actor, id primitive.ObjectID, input UpdateUserInput) (*model.User, error) {
	if !policy.Decide(actor, policy.ActionEditUser, policy.Resource{}) {
		return nil, denyErr(actor)
	}
	if input.Role != "" && !model.ValidRole(input.Role) {
		return nil, apperr.New(apperr.Validation, "Invalid role")
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "lookup user", err)
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "User not found")
	}

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Role != "" {
		user.Role = model.Role(input.Role)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "update user", err)
	}
	return user, nil
}

// DeleteUser removes a user and all recipes they own.
func (s *userService) DeleteUser(ctx context.Context, actor policy.Actor, id primitive.ObjectID) error {
	if !policy.Decide(actor, policy.ActionDeleteUser, policy.Resource{}) {
		return denyErr(actor)
	}
	if actor.ID == id {
		return apperr.New(apperr.Validation, "Admin cannot delete themselves")
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "lookup user", err)
	}
	if user == nil {
		return apperr.New(apperr.NotFound, "User not found")
	}

	if err := s.recipeRepo.DeleteByOwner(ctx, id); err != nil {
		return apperr.Wrap(apperr.Internal, "delete user recipes", err)
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return apperr.Wrap(apperr.Internal, "delete user", err)
	}
	return nil
}

// denyErr turns a policy deny into the caller-visible failure: 401 for
// anonymous actors, 403 for authenticated ones.
func denyErr(actor policy.Actor) error {
	if !actor.Authenticated {
		return apperr.New(apperr.Unauthenticated, "Not authorized")
	}
	return apperr.New(apperr.Forbidden, "Not authorized")
}
