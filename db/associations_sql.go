package db

import "database/sql"

func scanAssociation(rs rowScanner) (*Association, error) {
	var a Association
	if err := rs.Scan(&a.ID, &a.Gedcom, &a.PersonID, &a.PassocID, &a.Relationship, &a.RelType); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAssociation insereix l'associació i, si reverse no és nil, la inversa a
// la mateixa transacció. Després són files independents.
func (h sqlHelper) CreateAssociation(a *Association, reverse *Association) (int, error) {
	const stmt = `INSERT INTO hp_assoc (gedcom, person_id, passoc_id, relationship, reltype) VALUES (?, ?, ?, ?, ?)`
	err := h.withTx(func(tx *sql.Tx) error {
		id, err := h.insertID(tx, stmt, a.Gedcom, a.PersonID, a.PassocID, a.Relationship, a.RelType)
		if err != nil {
			return err
		}
		a.ID = id
		if reverse == nil {
			return nil
		}
		rid, err := h.insertID(tx, stmt, reverse.Gedcom, reverse.PersonID, reverse.PassocID, reverse.Relationship, reverse.RelType)
		if err != nil {
			return err
		}
		reverse.ID = rid
		return nil
	})
	if err != nil {
		return 0, err
	}
	return a.ID, nil
}

func (h sqlHelper) GetAssociation(id int) (*Association, error) {
	row := h.db.QueryRow(h.q(`SELECT id, gedcom, person_id, passoc_id, relationship, reltype FROM hp_assoc WHERE id = ?`), id)
	return scanAssociation(row)
}

func (h sqlHelper) ListAssociations(gedcom, personID string) ([]Association, error) {
	rows, err := h.db.Query(h.q(`SELECT id, gedcom, person_id, passoc_id, relationship, reltype FROM hp_assoc
		WHERE gedcom = ? AND person_id = ? ORDER BY relationship, id`), gedcom, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Association
	for rows.Next() {
		a, err := scanAssociation(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *a)
	}
	return res, rows.Err()
}

// DeleteAssociation només esborra la fila si pertany a l'arbre.
func (h sqlHelper) DeleteAssociation(gedcom string, id int) (bool, error) {
	n, err := h.execCount(h.db, `DELETE FROM hp_assoc WHERE id = ? AND gedcom = ?`, id, gedcom)
	return n > 0, err
}
