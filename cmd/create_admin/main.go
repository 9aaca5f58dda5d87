package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/smartparking/backend/internal/config"
	"github.com/smartparking/backend/internal/db"
	"github.com/smartparking/backend/internal/logging"
	"github.com/smartparking/backend/internal/models"
	"github.com/smartparking/backend/internal/repository"
	"github.com/smartparking/backend/internal/utils"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: go run ./cmd/create_admin <username> <email> <password>")
		fmt.Println("Example: go run ./cmd/create_admin admin admin@example.com password123")
		os.Exit(1)
	}

	username := utils.SanitizeString(os.Args[1])
	email := utils.SanitizeString(os.Args[2])
	password := os.Args[3]

	if valid, msg := utils.ValidatePassword(password); !valid {
		fmt.Println(msg)
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	// Connect to database
	gormDB, err := db.Open(db.Config{
		DatabaseURL:     cfg.DatabaseURL,
		PoolSize:        cfg.PoolSize,
		PoolRecycle:     cfg.PoolRecycle,
		PoolPrePing:     cfg.PoolPrePing,
		ConnectTimeout:  cfg.ConnectTimeout,
		ApplicationName: cfg.ApplicationName,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.Migrate(gormDB); err != nil {
		logging.Fatal().Err(err).Msg("failed to migrate schema")
	}

	accounts := repository.NewAccountRepository(gormDB)
	ctx := context.Background()

	exists, err := accounts.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to check existing accounts")
	}
	if exists {
		fmt.Printf("Account with username %s or email %s already exists\n", username, email)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to hash password")
	}

	admin := models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := accounts.Create(ctx, &admin); err != nil {
		logging.Fatal().Err(err).Msg("failed to create admin account")
	}

	fmt.Printf("Admin account created\n")
	fmt.Printf("Username: %s\n", username)
	fmt.Printf("Email: %s\n", email)
	fmt.Printf("ID: %d\n", admin.ID)
}
