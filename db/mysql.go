package db

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

type MySQL struct {
	Host   string
	Port   string
	User   string
	Pass   string
	DBName string
	Conn   *sql.DB
	sqlHelper
}

func (d *MySQL) Connect() error {
	port := d.Port
	if port == "" {
		port = "3306"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&multiStatements=true", d.User, d.Pass, d.Host, port, d.DBName)
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("error connectant a MySQL: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("error connectant a MySQL: %w", err)
	}
	d.Conn = conn
	d.sqlHelper = newSQLHelper(conn, "mysql")
	logInfof("Connectat a MySQL")
	return nil
}

func (d *MySQL) Close() {
	if d.Conn != nil {
		d.Conn.Close()
	}
}

func (d *MySQL) Engine() string { return "mysql" }

func (d *MySQL) SQL() *sql.DB { return d.Conn }

func (d *MySQL) Migrate() error {
	return runMigrations(d.Conn, "mysql")
}
