package main

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"recipedia/internal/api/router"
	"recipedia/internal/cache"
	"recipedia/internal/config"
	"recipedia/internal/core/auth"
	"recipedia/internal/core/repository"
	"recipedia/internal/core/service"
)

func main() {
	cfg := config.Load()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	mongoConfig := config.NewMongoConfig()
	db, err := config.ConnectMongoDB(mongoConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to MongoDB")
	}

	cache.Initialize(cfg.RedisURL)
	defer cache.Close()

	userRepo := repository.NewMongoUserRepository(db)
	recipeRepo := repository.NewMongoRecipeRepository(db)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	userService := service.NewUserService(userRepo, recipeRepo)
	recipeService := service.NewRecipeService(recipeRepo, userRepo)

	r := router.New(userService, recipeService, tokens, userRepo)

	addr := cfg.Host + ":" + cfg.Port
	logrus.WithField("addr", addr).Info("Server starting")
	if err := http.ListenAndServe(addr, r); err != nil {
		logrus.WithError(err).Fatal("Server failed")
	}
}
