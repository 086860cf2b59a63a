package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"garmenthr/internal/domain/auth"
	"garmenthr/internal/domain/tasks"
	"garmenthr/internal/platform/config"
)

const defaultSeedPassword = "admin123"

type UserSeeder interface {
	EnsureUser(ctx context.Context, user auth.NewUser) (string, bool, error)
}

type TaskTypeSeeder interface {
	EnsureType(ctx context.Context, in tasks.NewTaskType) (bool, error)
}

type seedTaskType struct {
	name        string
	description string
	price       int64
}

var defaultTaskTypes = []seedTaskType{
	{name: "Back Pocket Outline", description: "Outline stitching for back pocket", price: 25},
	{name: "Band Attach", description: "Attach band to garment", price: 30},
	{name: "Zipper Install", description: "Install zipper", price: 35},
	{name: "Button Attach", description: "Attach buttons", price: 15},
	{name: "Hem Finish", description: "Finish hem", price: 20},
}

// Seed creates the super admin and, when enabled, the default task types.
// Existing rows are left untouched so it is safe to run on every start.
func Seed(ctx context.Context, users UserSeeder, taskTypes TaskTypeSeeder, cfg config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	if email != "" {
		password := cfg.SeedAdminPassword
		if strings.TrimSpace(password) == "" {
			password = defaultSeedPassword
		}
		_, created, err := users.EnsureUser(ctx, auth.NewUser{
			Email:     email,
			Password:  password,
			FirstName: "Admin",
			LastName:  "User",
			Role:      auth.RoleSuperAdmin,
		})
		if err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}
		if created {
			log.Ctx(ctx).Info().Str("email", email).Msg("seeded admin user")
		}
	}

	if !cfg.SeedTaskTypes {
		return nil
	}
	for _, tt := range defaultTaskTypes {
		description := tt.description
		created, err := taskTypes.EnsureType(ctx, tasks.NewTaskType{
			Name:        tt.name,
			Description: &description,
			Price:       decimal.NewFromInt(tt.price),
			Status:      tasks.StatusActive,
		})
		if err != nil {
			return fmt.Errorf("seed task type %q: %w", tt.name, err)
		}
		if created {
			log.Ctx(ctx).Info().Str("name", tt.name).Msg("seeded task type")
		}
	}
	return nil
}
