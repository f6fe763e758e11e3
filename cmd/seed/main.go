package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-jwt-account-service/config"
	"github.com/oksasatya/go-jwt-account-service/internal/domain/entity"
	"github.com/oksasatya/go-jwt-account-service/internal/domain/repository"
	pginfra "github.com/oksasatya/go-jwt-account-service/internal/infrastructure/postgres"
	"github.com/oksasatya/go-jwt-account-service/pkg/helpers"
)

// seeds a verified demo account that can log in right away
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, time.Minute)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	repo := pginfra.NewUserRepository(pool)
	email := "demo@example.com"
	password := "password123"
	name := "demoUser"

	existing, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		fmt.Printf("user already seeded: id=%s email=%s\n", existing.ID, existing.Email)
		return
	case !errors.Is(err, repository.ErrNotFound):
		log.Fatalf("failed to look up demo user: %v", err)
	}

	hash, err := helpers.NewHasher(cfg.BcryptCost).Hash(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	u := &entity.User{
		ID:              uuid.NewString(),
		Name:            name,
		Email:           email,
		PasswordHash:    hash,
		EmailVerified:   true,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := repo.Insert(ctx, u); err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", u.ID, email, name, password)
}
