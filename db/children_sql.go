package db

import (
	"database/sql"
)

func scanChild(rs rowScanner) (*ChildLink, error) {
	var c ChildLink
	var parentOrder int
	if err := rs.Scan(&c.ID, &c.Gedcom, &c.FamilyID, &c.PersonID, &c.OrderNum, &parentOrder); err != nil {
		return nil, err
	}
	c.ParentOrder = parentOrder == 1
	return &c, nil
}

// AddChild vincula el fill a la família. Retorna ErrDuplicate si ja hi era.
// OrderNum <= 0 vol dir "al final" (màxim actual + 1). El famc del fill
// s'omple si era buit.
func (h sqlHelper) AddChild(c *ChildLink) error {
	return h.withTx(func(tx *sql.Tx) error {
		dup, err := h.exists(tx, `SELECT COUNT(*) FROM hp_children WHERE gedcom = ? AND family_id = ? AND person_id = ?`,
			c.Gedcom, c.FamilyID, c.PersonID)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicate
		}
		if c.OrderNum <= 0 {
			var max sql.NullInt64
			if err := tx.QueryRow(h.q(`SELECT MAX(ordernum) FROM hp_children WHERE gedcom = ? AND family_id = ?`),
				c.Gedcom, c.FamilyID).Scan(&max); err != nil {
				return err
			}
			c.OrderNum = int(max.Int64) + 1
		}
		id, err := h.insertID(tx, `INSERT INTO hp_children (gedcom, family_id, person_id, ordernum, parent_order)
			VALUES (?, ?, ?, ?, ?)`, c.Gedcom, c.FamilyID, c.PersonID, c.OrderNum, boolToInt(c.ParentOrder))
		if err != nil {
			return err
		}
		c.ID = id
		_, err = tx.Exec(h.q(`UPDATE hp_people SET famc = ? WHERE gedcom = ? AND person_id = ? AND famc = ''`),
			c.FamilyID, c.Gedcom, c.PersonID)
		return err
	})
}

func (h sqlHelper) RemoveChild(gedcom, familyID, personID string) (bool, error) {
	removed := false
	err := h.withTx(func(tx *sql.Tx) error {
		n, err := h.execCount(tx, `DELETE FROM hp_children WHERE gedcom = ? AND family_id = ? AND person_id = ?`,
			gedcom, familyID, personID)
		if err != nil || n == 0 {
			return err
		}
		removed = true
		_, err = tx.Exec(h.q(`UPDATE hp_people SET famc = '' WHERE gedcom = ? AND person_id = ? AND famc = ?`),
			gedcom, personID, familyID)
		return err
	})
	return removed, err
}

func (h sqlHelper) queryChildren(query string, args ...interface{}) ([]ChildLink, error) {
	rows, err := h.db.Query(h.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []ChildLink
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *c)
	}
	return res, rows.Err()
}

func (h sqlHelper) ListChildren(gedcom, familyID string) ([]ChildLink, error) {
	return h.queryChildren(`SELECT id, gedcom, family_id, person_id, ordernum, parent_order FROM hp_children
		WHERE gedcom = ? AND family_id = ? ORDER BY ordernum, id`, gedcom, familyID)
}

func (h sqlHelper) ListChildLinks(gedcom string) ([]ChildLink, error) {
	return h.queryChildren(`SELECT id, gedcom, family_id, person_id, ordernum, parent_order FROM hp_children
		WHERE gedcom = ? ORDER BY family_id, ordernum, id`, gedcom)
}
