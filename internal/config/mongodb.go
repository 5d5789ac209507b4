package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoConfig struct {
	URI      string
	Database string
}

func NewMongoConfig() *MongoConfig {
	uri := getEnv("MONGODB_URI", "")
	if uri == "" {
		logrus.Fatal("MONGODB_URI environment variable is required")
	}

	return &MongoConfig{
		URI:      uri,
		Database: getEnv("MONGODB_DATABASE", "recipedia"),
	}
}

func ConnectMongoDB(cfg *MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logrus.WithField("database", cfg.Database).Info("Connected to MongoDB")
	return client.Database(cfg.Database), nil
}
