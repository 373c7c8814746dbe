package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// SQLite implementa DB per SQLite. Pure=true fa servir el driver modernc.org/sqlite
// (sense cgo) en lloc de mattn/go-sqlite3.
type SQLite struct {
	Path string
	Pure bool
	Conn *sql.DB
	sqlHelper
}

func (s *SQLite) Connect() error {
	path := strings.TrimSpace(s.Path)
	if path == "" {
		path = "./heritagepress.db"
	}
	driver := "sqlite3"
	dsn := path
	if s.Pure {
		driver = "sqlite"
	}
	if path != ":memory:" {
		if s.Pure {
			dsn = "file:" + path + "?_pragma=busy_timeout(5000)"
		} else {
			dsn = "file:" + path + "?_busy_timeout=5000"
		}
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("error connectant a SQLite: %w", err)
	}
	// una sola connexió: :memory: i les transaccions comparteixen la mateixa BD
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(5 * time.Minute)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("error connectant a SQLite: %w", err)
	}
	s.Conn = conn
	s.sqlHelper = newSQLHelper(conn, "sqlite")
	logInfof("Connectat a SQLite (%s, driver %s)", path, driver)
	return nil
}

// Close tanca la connexió activa
func (s *SQLite) Close() {
	if s.Conn != nil {
		s.Conn.Close()
	}
}

func (s *SQLite) Engine() string {
	if s.Pure {
		return "sqlite-pure"
	}
	return "sqlite"
}

// SQL retorna la connexió SQL neta
func (s *SQLite) SQL() *sql.DB { return s.Conn }

func (s *SQLite) Migrate() error {
	return runMigrations(s.Conn, "sqlite")
}
