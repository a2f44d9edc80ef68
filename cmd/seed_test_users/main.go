package main

import (
	"context"
	"errors"
	"os"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// testUsers are development accounts. They all share one password, taken
// from SEED_PASSWORD when set.
var testUsers = []types.RegisterRequest{
	{Email: "john.doe@example.com", Username: "johndoe", FirstName: "John", LastName: "Doe"},
	{Email: "jane.smith@example.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith"},
	{Email: "bob.wilson@example.com", Username: "bobwilson", FirstName: "Bob", LastName: "Wilson"},
	{Email: "alice.cooper@example.com", Username: "alicecooper", FirstName: "Alice", LastName: "Cooper"},
}

func main() {
	if config.IsProduction() {
		logging.Fatal().Msg("refusing to seed test users in production")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "testpassword123"
	}

	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, nil)
	ctx := context.Background()
	for _, u := range testUsers {
		u.Password = password
		user, err := auth.Register(ctx, &u)
		switch {
		case errors.Is(err, service.ErrConflict):
			logging.Info().Str("username", u.Username).Msg("user already exists, skipping")
		case err != nil:
			logging.Fatal().Err(err).Str("username", u.Username).Msg("failed to create user")
		default:
			logging.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("created test user")
		}
	}
}
