package main

import (
	"context"
	"errors"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/meetup-api/config"
	"github.com/oksasatya/meetup-api/internal/application"
	pginfra "github.com/oksasatya/meetup-api/internal/infrastructure/postgres"
	"github.com/oksasatya/meetup-api/pkg/helpers"
)

// seed creates the demo account through the same path as POST /register.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	svc := application.NewAuthService(
		pginfra.NewUserRepository(pool),
		helpers.NewHasher(cfg.BcryptCost),
		nil, // seeding issues no tokens
		logger,
	)

	in := application.RegisterInput{
		Username: "alice",
		Email:    "a@x.com",
		Password: "secret1",
		Nickname: "Al",
	}
	u, err := svc.Register(ctx, in)
	var conflict *application.ConflictError
	switch {
	case errors.As(err, &conflict):
		log.Printf("demo user already present (%s)", conflict.Error())
		return
	case err != nil:
		log.Fatalf("failed to seed user: %v", err)
	}
	log.Printf("seeded user: id=%s username=%s email=%s password=%s", u.ID, in.Username, in.Email, in.Password)
}
