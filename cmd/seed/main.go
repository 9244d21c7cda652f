// Seeds the users table with sample profiles for local development.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/dittoaji/user-profile-service/config"
	"github.com/dittoaji/user-profile-service/internal/domain/entity"
	pginfra "github.com/dittoaji/user-profile-service/internal/infrastructure/postgres"
)

var sampleNames = []string{
	"Ayu Lestari", "Budi Santoso", "Citra Dewi", "Dimas Putra",
	"Eka Wijaya", "Fitri Handayani", "Gilang Ramadhan", "Hana Safitri",
}

var roles = []string{entity.RoleUser, entity.RoleUser, entity.RoleModerator, entity.RoleAdmin}
var statuses = []string{entity.StatusActive, entity.StatusActive, entity.StatusInactive, entity.StatusSuspended}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	repo := pginfra.NewUserRepository(pool)
	for i, name := range sampleNames {
		n := name
		email := fmt.Sprintf("%s+%s@example.com", slug(name), uuid.NewString()[:8])
		u, err := repo.Create(ctx, entity.CreateUserInput{
			Email:  email,
			Name:   &n,
			Role:   roles[rand.Intn(len(roles))],
			Status: statuses[rand.Intn(len(statuses))],
		})
		if err != nil {
			log.Fatalf("seed user %d: %v", i, err)
		}
		log.Printf("created %s (%s)", u.Email, u.ID)
	}
}

func slug(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		}
	}
	return string(out)
}
