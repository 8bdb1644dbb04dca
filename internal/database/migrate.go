package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Supported values for the driver argument of Migrate.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Migrate applies every embedded migration for the given driver in file
// name order.  Each file may hold several statements separated by ";".
// All statements are written with IF NOT EXISTS so reruns are harmless.
func Migrate(ctx context.Context, db *sql.DB, driver string, log *zap.Logger) error {
	dir := "migrations/" + driver
	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("unknown driver %q: %w", driver, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		log.Debug("applying migration", zap.String("driver", driver), zap.String("file", name))
		body, err := migrationsFS.ReadFile(dir + "/" + name)
		if err != nil {
			return err
		}
		for _, stmt := range strings.Split(string(body), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration %s: %w", name, err)
			}
		}
	}
	return nil
}
