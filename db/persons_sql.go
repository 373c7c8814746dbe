package db

import (
	"database/sql"
	"errors"
	"strings"
)

const personColumns = `id, gedcom, person_id, first_name, last_name, lnprefix, prefix, suffix, nickname, sex,
	birth_date, birth_date_tr, birth_place, death_date, death_date_tr, death_place,
	burial_date, burial_date_tr, burial_place, bapt_date, bapt_date_tr, bapt_place,
	living, private, famc, fams, soundex, placeholder, changed_by, changed_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPerson(rs rowScanner) (*Person, error) {
	var p Person
	var living, private, placeholder int
	err := rs.Scan(&p.ID, &p.Gedcom, &p.PersonID, &p.FirstName, &p.LastName, &p.LNPrefix, &p.Prefix,
		&p.Suffix, &p.Nickname, &p.Sex,
		&p.BirthDate, &p.BirthDateTr, &p.BirthPlace, &p.DeathDate, &p.DeathDateTr, &p.DeathPlace,
		&p.BurialDate, &p.BurialDateTr, &p.BurialPlace, &p.BaptDate, &p.BaptDateTr, &p.BaptPlace,
		&living, &private, &p.Famc, &p.Fams, &p.Soundex, &placeholder, &p.ChangedBy, &p.ChangedAt)
	if err != nil {
		return nil, err
	}
	p.Living = living == 1
	p.Private = private == 1
	p.Placeholder = placeholder == 1
	return &p, nil
}

func personValues(p *Person) []interface{} {
	return []interface{}{p.FirstName, p.LastName, p.LNPrefix, p.Prefix, p.Suffix, p.Nickname, p.Sex,
		p.BirthDate, p.BirthDateTr, p.BirthPlace, p.DeathDate, p.DeathDateTr, p.DeathPlace,
		p.BurialDate, p.BurialDateTr, p.BurialPlace, p.BaptDate, p.BaptDateTr, p.BaptPlace,
		boolToInt(p.Living), boolToInt(p.Private), p.Famc, p.Fams, p.Soundex, p.ChangedBy, p.ChangedAt}
}

const personSetClause = `first_name = ?, last_name = ?, lnprefix = ?, prefix = ?, suffix = ?, nickname = ?, sex = ?,
	birth_date = ?, birth_date_tr = ?, birth_place = ?, death_date = ?, death_date_tr = ?, death_place = ?,
	burial_date = ?, burial_date_tr = ?, burial_place = ?, bapt_date = ?, bapt_date_tr = ?, bapt_place = ?,
	living = ?, private = ?, famc = ?, fams = ?, soundex = ?, changed_by = ?, changed_at = ?`

// CreatePerson insereix la persona. Si el seu ID estava reservat amb LockPersonID,
// la fila reservada se sobreescriu; si ja existia una persona real, retorna ErrDuplicate.
func (h sqlHelper) CreatePerson(p *Person) (int, error) {
	if p.ChangedAt == "" {
		p.ChangedAt = h.timestamp()
	}
	var id int
	err := h.withTx(func(tx *sql.Tx) error {
		var existingID, placeholder int
		err := tx.QueryRow(h.q(`SELECT id, placeholder FROM hp_people WHERE gedcom = ? AND person_id = ?`),
			p.Gedcom, p.PersonID).Scan(&existingID, &placeholder)
		switch {
		case err == nil && placeholder == 1:
			args := append(personValues(p), existingID)
			if _, err := tx.Exec(h.q(`UPDATE hp_people SET `+personSetClause+`, placeholder = 0 WHERE id = ?`), args...); err != nil {
				return err
			}
			id = existingID
			return nil
		case err == nil:
			return ErrDuplicate
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}
		args := append([]interface{}{p.Gedcom, p.PersonID}, personValues(p)...)
		id, err = h.insertID(tx, `INSERT INTO hp_people (gedcom, person_id, first_name, last_name, lnprefix, prefix,
			suffix, nickname, sex, birth_date, birth_date_tr, birth_place, death_date, death_date_tr, death_place,
			burial_date, burial_date_tr, burial_place, bapt_date, bapt_date_tr, bapt_place,
			living, private, famc, fams, soundex, changed_by, changed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
		return err
	})
	if err != nil {
		return 0, err
	}
	p.ID = id
	p.Placeholder = false
	return id, nil
}

// GetPerson retorna sql.ErrNoRows si no existeix; les reserves també es retornen
// (Placeholder=true) perquè el cridador decideixi.
func (h sqlHelper) GetPerson(gedcom, personID string) (*Person, error) {
	row := h.db.QueryRow(h.q(`SELECT `+personColumns+` FROM hp_people WHERE gedcom = ? AND person_id = ?`), gedcom, personID)
	return scanPerson(row)
}

func (h sqlHelper) UpdatePerson(p *Person) error {
	p.ChangedAt = h.timestamp()
	args := append(personValues(p), p.Gedcom, p.PersonID)
	n, err := h.execCount(h.db, `UPDATE hp_people SET `+personSetClause+` WHERE gedcom = ? AND person_id = ?`, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeletePerson esborra la persona i les files que en depenen: vincles de fill,
// esdeveniments, associacions on és el subjecte i vincles de branca. Les
// referències com a cònjuge queden buides.
func (h sqlHelper) DeletePerson(gedcom, personID string) (bool, error) {
	deleted := false
	err := h.withTx(func(tx *sql.Tx) error {
		n, err := h.execCount(tx, `DELETE FROM hp_people WHERE gedcom = ? AND person_id = ?`, gedcom, personID)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		deleted = true
		stmts := []string{
			`DELETE FROM hp_children WHERE gedcom = ? AND person_id = ?`,
			`DELETE FROM hp_events WHERE gedcom = ? AND owner_kind = 'I' AND owner_id = ?`,
			`DELETE FROM hp_assoc WHERE gedcom = ? AND person_id = ?`,
			`DELETE FROM hp_assoc WHERE gedcom = ? AND reltype = 'I' AND passoc_id = ?`,
			`DELETE FROM hp_branchlinks WHERE gedcom = ? AND person_id = ?`,
			`UPDATE hp_families SET husband = '' WHERE gedcom = ? AND husband = ?`,
			`UPDATE hp_families SET wife = '' WHERE gedcom = ? AND wife = ?`,
		}
		for _, stmt := range stmts {
			if _, err := tx.Exec(h.q(stmt), gedcom, personID); err != nil {
				return err
			}
		}
		return nil
	})
	return deleted, err
}

// ListPersons retorna les persones reals (sense reserves), per cognom i nom.
func (h sqlHelper) ListPersons(gedcom string) ([]Person, error) {
	rows, err := h.db.Query(h.q(`SELECT `+personColumns+` FROM hp_people
		WHERE gedcom = ? AND placeholder = 0 ORDER BY last_name, first_name, id`), gedcom)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *p)
	}
	return res, rows.Err()
}

// LockPersonID reserva l'identificador amb una fila privada i no vivent.
func (h sqlHelper) LockPersonID(gedcom, personID, changedBy string) error {
	exists, err := h.IDExists(IDPerson, gedcom, personID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicate
	}
	_, err = h.insertID(h.db, `INSERT INTO hp_people (gedcom, person_id, living, private, placeholder, changed_by, changed_at)
		VALUES (?, ?, 0, 1, 1, ?, ?)`, gedcom, strings.TrimSpace(personID), changedBy, h.timestamp())
	return err
}
