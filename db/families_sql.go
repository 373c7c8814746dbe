package db

import (
	"database/sql"
)

const familyColumns = `id, gedcom, family_id, husband, wife, marr_date, marr_date_tr, marr_place, marr_type,
	div_date, div_date_tr, div_place, living, private, changed_by, changed_at`

func scanFamily(rs rowScanner) (*Family, error) {
	var f Family
	var living, private int
	err := rs.Scan(&f.ID, &f.Gedcom, &f.FamilyID, &f.Husband, &f.Wife, &f.MarrDate, &f.MarrDateTr,
		&f.MarrPlace, &f.MarrType, &f.DivDate, &f.DivDateTr, &f.DivPlace, &living, &private,
		&f.ChangedBy, &f.ChangedAt)
	if err != nil {
		return nil, err
	}
	f.Living = living == 1
	f.Private = private == 1
	return &f, nil
}

func (h sqlHelper) queryFamilies(query string, args ...interface{}) ([]Family, error) {
	rows, err := h.db.Query(h.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Family
	for rows.Next() {
		f, err := scanFamily(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *f)
	}
	return res, rows.Err()
}

// CreateFamily insereix la família i, si els cònjuges no tenen família pròpia
// (fams), hi apunta aquesta.
func (h sqlHelper) CreateFamily(f *Family) (int, error) {
	if f.ChangedAt == "" {
		f.ChangedAt = h.timestamp()
	}
	var id int
	err := h.withTx(func(tx *sql.Tx) error {
		dup, err := h.exists(tx, `SELECT COUNT(*) FROM hp_families WHERE gedcom = ? AND family_id = ?`, f.Gedcom, f.FamilyID)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicate
		}
		id, err = h.insertID(tx, `INSERT INTO hp_families (gedcom, family_id, husband, wife, marr_date, marr_date_tr,
			marr_place, marr_type, div_date, div_date_tr, div_place, living, private, changed_by, changed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.Gedcom, f.FamilyID, f.Husband, f.Wife, f.MarrDate, f.MarrDateTr, f.MarrPlace, f.MarrType,
			f.DivDate, f.DivDateTr, f.DivPlace, boolToInt(f.Living), boolToInt(f.Private), f.ChangedBy, f.ChangedAt)
		if err != nil {
			return err
		}
		for _, spouse := range []string{f.Husband, f.Wife} {
			if spouse == "" {
				continue
			}
			if _, err := tx.Exec(h.q(`UPDATE hp_people SET fams = ? WHERE gedcom = ? AND person_id = ? AND fams = ''`),
				f.FamilyID, f.Gedcom, spouse); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	f.ID = id
	return id, nil
}

func (h sqlHelper) GetFamilyByDBID(id int) (*Family, error) {
	row := h.db.QueryRow(h.q(`SELECT `+familyColumns+` FROM hp_families WHERE id = ?`), id)
	return scanFamily(row)
}

func (h sqlHelper) GetFamily(gedcom, familyID string) (*Family, error) {
	row := h.db.QueryRow(h.q(`SELECT `+familyColumns+` FROM hp_families WHERE gedcom = ? AND family_id = ?`), gedcom, familyID)
	return scanFamily(row)
}

func (h sqlHelper) UpdateFamily(f *Family) error {
	f.ChangedAt = h.timestamp()
	n, err := h.execCount(h.db, `UPDATE hp_families SET husband = ?, wife = ?, marr_date = ?, marr_date_tr = ?,
		marr_place = ?, marr_type = ?, div_date = ?, div_date_tr = ?, div_place = ?, living = ?, private = ?,
		changed_by = ?, changed_at = ? WHERE gedcom = ? AND family_id = ?`,
		f.Husband, f.Wife, f.MarrDate, f.MarrDateTr, f.MarrPlace, f.MarrType, f.DivDate, f.DivDateTr, f.DivPlace,
		boolToInt(f.Living), boolToInt(f.Private), f.ChangedBy, f.ChangedAt, f.Gedcom, f.FamilyID)
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteFamily esborra la família amb els seus vincles de fill i esdeveniments.
// Les persones es conserven; les seves referències famc/fams a la família queden buides.
func (h sqlHelper) DeleteFamily(gedcom, familyID string) (bool, error) {
	deleted := false
	err := h.withTx(func(tx *sql.Tx) error {
		n, err := h.deleteFamilyTx(tx, gedcom, familyID)
		deleted = n > 0
		return err
	})
	return deleted, err
}

func (h sqlHelper) deleteFamilyTx(tx *sql.Tx, gedcom, familyID string) (int, error) {
	n, err := h.execCount(tx, `DELETE FROM hp_families WHERE gedcom = ? AND family_id = ?`, gedcom, familyID)
	if err != nil || n == 0 {
		return n, err
	}
	stmts := []string{
		`DELETE FROM hp_children WHERE gedcom = ? AND family_id = ?`,
		`DELETE FROM hp_events WHERE gedcom = ? AND owner_kind = 'F' AND owner_id = ?`,
		`UPDATE hp_people SET famc = '' WHERE gedcom = ? AND famc = ?`,
		`UPDATE hp_people SET fams = '' WHERE gedcom = ? AND fams = ?`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(h.q(stmt), gedcom, familyID); err != nil {
			return 0, err
		}
	}
	return n, nil
}

func (h sqlHelper) ListFamilies(gedcom string) ([]Family, error) {
	return h.queryFamilies(`SELECT `+familyColumns+` FROM hp_families WHERE gedcom = ? ORDER BY id`, gedcom)
}

func (h sqlHelper) ListFamiliesBySpouse(gedcom, personID string) ([]Family, error) {
	return h.queryFamilies(`SELECT `+familyColumns+` FROM hp_families
		WHERE gedcom = ? AND (husband = ? OR wife = ?) ORDER BY marr_date_tr, id`, gedcom, personID, personID)
}

// ListTrees retorna els arbres amb persones o famílies.
func (h sqlHelper) ListTrees() ([]string, error) {
	return h.queryStrings(h.db, `SELECT gedcom FROM hp_people UNION SELECT gedcom FROM hp_families ORDER BY 1`)
}
