package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// formatPlaceholders converteix '?' a placeholders de l'estil PostgreSQL ($1, $2...) si cal.
func formatPlaceholders(style, query string) string {
	if strings.ToLower(style) != "postgres" {
		return query
	}
	var b strings.Builder
	idx := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			b.WriteString(fmt.Sprintf("$%d", idx))
			idx++
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}

// querier és el que tenen en comú *sql.DB i *sql.Tx.
type querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

type sqlHelper struct {
	db    *sql.DB
	style string
	now   func() time.Time
}

func newSQLHelper(db *sql.DB, style string) sqlHelper {
	return sqlHelper{db: db, style: strings.ToLower(style), now: time.Now}
}

func (h sqlHelper) q(query string) string {
	return formatPlaceholders(h.style, query)
}

func (h sqlHelper) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}

// insertID executa un INSERT i retorna l'id autoincremental.
func (h sqlHelper) insertID(qr querier, stmt string, args ...interface{}) (int, error) {
	if h.style == "postgres" {
		stmt += " RETURNING id"
	}
	stmt = h.q(stmt)
	if h.style == "postgres" {
		var id int
		if err := qr.QueryRow(stmt, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := qr.Exec(stmt, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// execCount executa i retorna les files afectades.
func (h sqlHelper) execCount(qr querier, stmt string, args ...interface{}) (int, error) {
	res, err := qr.Exec(h.q(stmt), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (h sqlHelper) exists(qr querier, query string, args ...interface{}) (bool, error) {
	var n int
	if err := qr.QueryRow(h.q(query), args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// withTx obre una transacció, executa fn i fa commit; qualsevol error fa rollback.
func (h sqlHelper) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := h.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (h sqlHelper) queryStrings(qr querier, query string, args ...interface{}) ([]string, error) {
	rows, err := qr.Query(h.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toNullInt64(v sql.NullInt64) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Int64
}

func inPlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
