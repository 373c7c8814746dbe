package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// goose guarda el dialecte i el FS en variables globals
var migrateMu sync.Mutex

var gooseDialects = map[string]string{
	"sqlite":   "sqlite3",
	"mysql":    "mysql",
	"postgres": "postgres",
}

// runMigrations aplica les migracions pendents de migrations/<dir>.
func runMigrations(conn *sql.DB, dir string) error {
	if conn == nil {
		return fmt.Errorf("BD no connectada")
	}
	dialect, ok := gooseDialects[dir]
	if !ok {
		return fmt.Errorf("sense migracions per %s", dir)
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := goose.UpContext(context.Background(), conn, "migrations/"+dir); err != nil {
		logErrorf("migracions %s: %v", dir, err)
		return err
	}
	logInfof("Migracions %s aplicades", dir)
	return nil
}
