package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"publazer/internal/config"
	"publazer/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}

	cfg := config.New()
	ctx := context.Background()

	db, err := database.NewConnection(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	users, err := database.NewUserStore(db).List(ctx)
	if err != nil {
		slog.Error("failed to list users", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Total users in database: %d\n\n", len(users))
	for i, u := range users {
		fmt.Printf("%d. %s (%s)\n", i+1, u.Name, u.Role)
		fmt.Printf("   Email: %s\n", u.Email)
		fmt.Printf("   Department: %s\n", u.Department)
		fmt.Printf("   ID: %s\n\n", u.ID)
	}
}
