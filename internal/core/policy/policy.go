// Package policy holds the single access decision used by every
// mutation handler. It is a pure function over data the access gate has
// already resolved; it touches no store.
package policy

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipedia/internal/core/model"
)

type Action string

const (
	ActionEditRecipe   Action = "edit-recipe"
	ActionDeleteRecipe Action = "delete-recipe"
	ActionEditUser     Action = "edit-user"
	ActionDeleteUser   Action = "delete-user"
	ActionLike         Action = "like"
	ActionRate         Action = "rate"
	ActionRead         Action = "read"
)

// Actor is the identity the access gate resolved for a request. The
// zero value is the anonymous actor.
type Actor struct {
	ID            primitive.ObjectID
	Role          model.Role
	Authenticated bool
}

var Anonymous = Actor{}

func NewActor(u *model.User) Actor {
	return Actor{ID: u.ID, Role: u.Role, Authenticated: true}
}

func (a Actor) IsAdmin() bool {
	return a.Authenticated && a.Role == model.RoleAdmin
}

// Resource is the slice of a stored record the policy needs: who owns
// it. User records have no owner distinct from themselves.
type Resource struct {
	OwnerID primitive.ObjectID
}

// Decide returns true when actor may perform action on resource. Rules
// are evaluated in order, first match wins.
func Decide(actor Actor, action Action, resource Resource) bool {
	switch action {
	case ActionEditRecipe, ActionDeleteRecipe:
		return actor.IsAdmin() || (actor.Authenticated && actor.ID == resource.OwnerID)
	case ActionEditUser, ActionDeleteUser:
		return actor.IsAdmin()
	case ActionLike, ActionRate:
		return actor.Authenticated
	case ActionRead:
		return true
	default:
		return false
	}
}
