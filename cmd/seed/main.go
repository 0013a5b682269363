package main

import (
	"context"
	"log/slog"
	"os"

	"publazer/internal/apperrors"
	"publazer/internal/config"
	"publazer/internal/database"
	"publazer/internal/models"
	"publazer/internal/users"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}

	cfg := config.New()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	ctx := context.Background()

	db, err := database.NewConnection(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	service := users.NewService(database.NewUserStore(db), cfg.BcryptCost, logger)

	accounts := []models.CreateUserRequest{
		{Name: "Alice Student", Email: "student@publazer.edu", Password: "password123", Role: models.RoleStudent, Department: "Computer Science"},
		{Name: "Dr. Bob Faculty", Email: "faculty@publazer.edu", Password: "password123", Role: models.RoleFaculty, Department: "Computer Science"},
		{Name: "Carol Admin", Email: "admin@publazer.edu", Password: "password123", Role: models.RoleAdmin, Department: "Library"},
	}

	for _, a := range accounts {
		u, err := service.Create(ctx, a)
		switch {
		case apperrors.Is(err, apperrors.KindDuplicate):
			logger.Info("user already exists", "email", a.Email)
		case err != nil:
			logger.Error("failed to create user", "email", a.Email, "error", err)
		default:
			logger.Info("user created", "email", u.Email, "role", u.Role)
		}
	}

	logger.Info("seeding completed")
}
