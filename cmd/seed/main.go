// Command seed provisions the bootstrap accounts: an ADMIN from
// ADMIN_EMAIL/ADMIN_PASSWORD and a fixed test USER. Existing accounts are
// left untouched, so the command is safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/userdir/directory-system/internal/core/domain"
	"github.com/userdir/directory-system/internal/core/service"
	"github.com/userdir/directory-system/internal/infrastructure/config"
	mongodb "github.com/userdir/directory-system/internal/infrastructure/db/mongo"
	"github.com/userdir/directory-system/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	repo := mongodb.NewUserRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.AdminPassword), cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("password hashing failed")
	}

	seed := []*domain.User{
		{
			Email: service.NormalizeEmail(cfg.Auth.AdminEmail),
			Name:  "Admin User",
			Role:  domain.RoleAdmin,
		},
		{
			Email: "user@example.com",
			Name:  "Test User",
			Role:  domain.RoleUser,
		},
	}

	now := time.Now().UTC()
	for _, u := range seed {
		u.PasswordHash = string(hash)
		u.EmailVerified = &now
		u.CreatedAt = now
		u.UpdatedAt = now

		if existing, ferr := repo.FindByEmail(ctx, u.Email); ferr == nil {
			log.Info().Str("email", existing.Email).Str("role", string(existing.Role)).Msg("account already present, skipped")
			continue
		} else if !errors.Is(ferr, domain.ErrUserNotFound) {
			log.Fatal().Err(ferr).Msg("lookup failed")
		}

		created, cerr := repo.Create(ctx, u)
		if cerr != nil {
			log.Fatal().Err(cerr).Str("email", u.Email).Msg("seed insert failed")
		}
		log.Info().Str("email", created.Email).Str("role", string(created.Role)).Msg("account seeded")
	}

	log.Info().Msg("seeding complete")
}
