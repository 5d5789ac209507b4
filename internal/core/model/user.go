package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// ValidRole reports whether s is one of the known role values.
func ValidRole(s string) bool {
	return Role(s) == RoleMember || Role(s) == RoleAdmin
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash, never serialized
	Role      Role               `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

func NewUser(username, email, passwordHash string) *User {
	return &User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		Role:      RoleMember,
		CreatedAt: time.Now(),
	}
}
