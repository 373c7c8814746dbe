package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

type PostgreSQL struct {
	Host   string
	Port   string
	User   string
	Pass   string
	DBName string
	Conn   *sql.DB
	sqlHelper
}

func (p *PostgreSQL) Connect() error {
	port := p.Port
	if port == "" {
		port = "5432"
	}
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		p.Host, port, p.User, p.Pass, p.DBName)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("error connectant a PostgreSQL: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("error connectant a PostgreSQL: %w", err)
	}
	p.Conn = conn
	p.sqlHelper = newSQLHelper(conn, "postgres")
	logInfof("Connectat a PostgreSQL")
	return nil
}

func (p *PostgreSQL) Close() {
	if p.Conn != nil {
		p.Conn.Close()
	}
}

func (p *PostgreSQL) Engine() string { return "postgres" }

func (p *PostgreSQL) SQL() *sql.DB { return p.Conn }

func (p *PostgreSQL) Migrate() error {
	return runMigrations(p.Conn, "postgres")
}
