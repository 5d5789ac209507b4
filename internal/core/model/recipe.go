package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is one user's score for a recipe. A user appears at most once
// in Recipe.Ratings.
type Rating struct {
	User  primitive.ObjectID `bson:"user" json:"user"`
	Value int                `bson:"value" json:"value"`
}

type Recipe struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title        string               `bson:"title" json:"title"`
	Ingredients  []string             `bson:"ingredients" json:"ingredients"`
	Instructions string               `bson:"instructions" json:"instructions"`
	Category     string               `bson:"category" json:"category"`
	CookingTime  int                  `bson:"cookingTime" json:"cookingTime"`
	Image        string               `bson:"image" json:"image"`
	CreatedBy    primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	Likes        int                  `bson:"likes" json:"likes"`
	LikedBy      []primitive.ObjectID `bson:"likedBy" json:"likedBy"`
	Ratings      []Rating             `bson:"ratings" json:"ratings"`
	AvgRating    float64              `bson:"rating" json:"rating"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsLikedBy reports whether userID is in the recipe's like set.
func (r *Recipe) IsLikedBy(userID primitive.ObjectID) bool {
	for _, id := range r.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// RatingBy returns the value userID recorded for the recipe, or 0.
func (r *Recipe) RatingBy(userID primitive.ObjectID) int {
	for _, rt := range r.Ratings {
		if rt.User == userID {
			return rt.Value
		}
	}
	return 0
}
