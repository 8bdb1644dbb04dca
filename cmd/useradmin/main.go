// Command useradmin grants or revokes the admin flag of a registered user.
//
//	useradmin -email jane@example.com          # grant
//	useradmin -email jane@example.com -admin=false
//
// It reads the same environment (and optional .env file) as the server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/video-rental/internal/config"
	"github.com/iliyamo/video-rental/internal/database"
	"github.com/iliyamo/video-rental/internal/logger"
	"github.com/iliyamo/video-rental/internal/repository"
)

func main() {
	email := flag.String("email", "", "email of the user to change")
	admin := flag.Bool("admin", true, "admin flag to set")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.Load()
	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl, *email, *admin); err != nil {
		zl.Error("useradmin failed", zap.String("email", *email), zap.Error(err))
		os.Exit(1)
	}
	zl.Info("user updated", zap.String("email", *email), zap.Bool("admin", *admin))
}

func run(cfg config.Config, zl *zap.Logger, email string, admin bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		db  *sql.DB
		err error
	)
	if cfg.DBDriver == database.DriverSQLite {
		db, err = database.OpenSQLite(cfg.SQLitePath)
	} else {
		db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.DBDriver, zl); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	err = repository.NewUserRepo(db).SetAdmin(ctx, email, admin)
	if errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("no user registered with email %q", email)
	}
	return err
}
