package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"recipedia/internal/core/model"
)

// RecipeFilter narrows Find. Zero-valued fields are ignored.
type RecipeFilter struct {
	Category  string             // exact match
	Title     string             // case-insensitive substring
	Keyword   string             // title or category substring
	LikedBy   primitive.ObjectID // member of the like set
	CreatedBy primitive.ObjectID
	Limit     int64
}

type RecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe) error
	Update(ctx context.Context, recipe *model.Recipe) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByOwner(ctx context.Context, ownerID primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Recipe, error)
	Find(ctx context.Context, filter RecipeFilter) ([]*model.Recipe, error)
	ToggleLike(ctx context.Context, recipeID, userID primitive.ObjectID) (*model.Recipe, error)
	UpsertRating(ctx context.Context, recipeID, userID primitive.ObjectID, value int) (*model.Recipe, error)
}

type MongoRecipeRepository struct {
	collection *mongo.Collection
}

func NewMongoRecipeRepository(db *mongo.Database) *MongoRecipeRepository {
	return &MongoRecipeRepository{
		collection: db.Collection("recipes"),
	}
}

func (r *MongoRecipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, recipe)
	return err
}

func (r *MongoRecipeRepository) Update(ctx context.Context, recipe *model.Recipe) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": recipe.ID}, recipe)
	return err
}

func (r *MongoRecipeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *MongoRecipeRepository) DeleteByOwner(ctx context.Context, ownerID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"createdBy": ownerID})
	return err
}

func (r *MongoRecipeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var recipe model.Recipe
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&recipe)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *MongoRecipeRepository) Find(ctx context.Context, filter RecipeFilter) ([]*model.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Title != "" {
		query["title"] = primitive.Regex{Pattern: filter.Title, Options: "i"}
	}
	if filter.Keyword != "" {
		regex := primitive.Regex{Pattern: filter.Keyword, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": regex},
			bson.M{"category": regex},
		}
	}
	if !filter.LikedBy.IsZero() {
		query["likedBy"] = filter.LikedBy
	}
	if !filter.CreatedBy.IsZero() {
		query["createdBy"] = filter.CreatedBy
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recipes []*model.Recipe
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// ToggleLike flips userID's membership in the like set and recomputes
// the counter from the set size, all in one document update so
// concurrent toggles cannot desynchronize likes from likedBy.
func (r *MongoRecipeRepository) ToggleLike(ctx context.Context, recipeID, userID primitive.ObjectID) (*model.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"likedBy": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{userID, bson.M{"$ifNull": bson.A{"$likedBy", bson.A{}}}}},
				bson.M{"$setDifference": bson.A{"$likedBy", bson.A{userID}}},
				bson.M{"$concatArrays": bson.A{bson.M{"$ifNull": bson.A{"$likedBy", bson.A{}}}, bson.A{userID}}},
			}},
		}},
		bson.M{"$set": bson.M{"likes": bson.M{"$size": "$likedBy"}}},
	}

	return r.findOneAndUpdate(ctx, recipeID, pipeline)
}

// UpsertRating replaces or appends userID's rating entry and recomputes
// the average in the same document update.
func (r *MongoRecipeRepository) UpsertRating(ctx context.Context, recipeID, userID primitive.ObjectID, value int) (*model.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	entry := bson.M{"user": userID, "value": value}
	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"ratings": bson.M{"$concatArrays": bson.A{
				bson.M{"$filter": bson.M{
					"input": bson.M{"$ifNull": bson.A{"$ratings", bson.A{}}},
					"as":    "r",
					"cond":  bson.M{"$ne": bson.A{"$$r.user", userID}},
				}},
				bson.A{entry},
			}},
		}},
		bson.M{"$set": bson.M{"rating": bson.M{"$ifNull": bson.A{bson.M{"$avg": "$ratings.value"}, 0}}}},
	}

	return r.findOneAndUpdate(ctx, recipeID, pipeline)
}

func (r *MongoRecipeRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, pipeline bson.A) (*model.Recipe, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var recipe model.Recipe
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&recipe)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}
