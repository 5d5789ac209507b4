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

// inMemoryUserRepository backs tests and local runs without Mongo.
// Documents are copied in and out so callers cannot mutate stored state
// except through Update, matching the store's whole-document semantics.
type inMemoryUserRepository struct {
	users map[primitive.ObjectID]model.User
	mutex sync.RWMutex
}

func NewInMemoryUserRepository() UserRepository {
	return &inMemoryUserRepository{
		users: make(map[primitive.ObjectID]model.User),
	}
}

func (r *inMemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return fmt.Errorf("user %s already exists", user.ID.Hex())
	}
	r.users[user.ID] = *user
	return nil
}

func (r *inMemoryUserRepository) Update(_ context.Context, user *model.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.users[user.ID]; !exists {
		return fmt.Errorf("user %s not found", user.ID.Hex())
	}
	r.users[user.ID] = *user
	return nil
}

func (r *inMemoryUserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.users, id)
	return nil
}

func (r *inMemoryUserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if user, exists := r.users[id]; exists {
		return &user, nil
	}
	return nil, nil
}

func (r *inMemoryUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			user := user
			return &user, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepository) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			user := user
			return &user, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepository) Search(_ context.Context, q string) ([]*model.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	q = strings.ToLower(q)
	var result []*model.User
	for _, user := range r.users {
		if q == "" ||
			strings.Contains(strings.ToLower(user.Username), q) ||
			strings.Contains(strings.ToLower(user.Email), q) {
			user := user
			result = append(result, &user)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
