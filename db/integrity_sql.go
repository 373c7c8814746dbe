package db

import (
	"database/sql"
	"fmt"
)

// MergeFamilies mou els fills de source a target dins d'una transacció. Els fills
// que ja eren a target no es dupliquen. Si keepSource és fals, també es mouen els
// esdeveniments i s'esborra la família origen. Retorna quants fills s'han mogut.
func (h sqlHelper) MergeFamilies(gedcom, source, target string, keepSource bool) (int, error) {
	moved := 0
	err := h.withTx(func(tx *sql.Tx) error {
		for _, id := range []string{source, target} {
			ok, err := h.exists(tx, `SELECT COUNT(*) FROM hp_families WHERE gedcom = ? AND family_id = ?`, gedcom, id)
			if err != nil {
				return err
			}
			if !ok {
				return sql.ErrNoRows
			}
		}

		rows, err := tx.Query(h.q(`SELECT person_id FROM hp_children WHERE gedcom = ? AND family_id = ? ORDER BY ordernum, id`),
			gedcom, source)
		if err != nil {
			return err
		}
		var kids []string
		for rows.Next() {
			var pid string
			if err := rows.Scan(&pid); err != nil {
				rows.Close()
				return err
			}
			kids = append(kids, pid)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		var max sql.NullInt64
		if err := tx.QueryRow(h.q(`SELECT MAX(ordernum) FROM hp_children WHERE gedcom = ? AND family_id = ?`),
			gedcom, target).Scan(&max); err != nil {
			return err
		}
		order := int(max.Int64)
		for _, pid := range kids {
			already, err := h.exists(tx, `SELECT COUNT(*) FROM hp_children WHERE gedcom = ? AND family_id = ? AND person_id = ?`,
				gedcom, target, pid)
			if err != nil {
				return err
			}
			if already {
				if _, err := tx.Exec(h.q(`DELETE FROM hp_children WHERE gedcom = ? AND family_id = ? AND person_id = ?`),
					gedcom, source, pid); err != nil {
					return err
				}
				continue
			}
			order++
			if _, err := tx.Exec(h.q(`UPDATE hp_children SET family_id = ?, ordernum = ? WHERE gedcom = ? AND family_id = ? AND person_id = ?`),
				target, order, gedcom, source, pid); err != nil {
				return err
			}
			moved++
		}

		if _, err := tx.Exec(h.q(`UPDATE hp_people SET famc = ? WHERE gedcom = ? AND famc = ?`), target, gedcom, source); err != nil {
			return err
		}
		if keepSource {
			return nil
		}
		stmts := []string{
			`UPDATE hp_people SET fams = ? WHERE gedcom = ? AND fams = ?`,
			`UPDATE hp_events SET owner_id = ? WHERE gedcom = ? AND owner_kind = 'F' AND owner_id = ?`,
			`UPDATE hp_assoc SET passoc_id = ? WHERE gedcom = ? AND reltype = 'F' AND passoc_id = ?`,
		}
		for _, stmt := range stmts {
			if _, err := tx.Exec(h.q(stmt), target, gedcom, source); err != nil {
				return err
			}
		}
		_, err = tx.Exec(h.q(`DELETE FROM hp_families WHERE gedcom = ? AND family_id = ?`), gedcom, source)
		return err
	})
	if err != nil {
		logErrorf("fusió %s -> %s a %s desfeta: %v", source, target, gedcom, err)
		return 0, err
	}
	return moved, nil
}

// DeleteFamilies esborra un lot de famílies en una sola transacció i retorna
// quantes existien realment.
func (h sqlHelper) DeleteFamilies(gedcom string, familyIDs []string) (int, error) {
	total := 0
	err := h.withTx(func(tx *sql.Tx) error {
		for _, id := range familyIDs {
			n, err := h.deleteFamilyTx(tx, gedcom, id)
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// RenumberFamilies aplica el mapa old → new a totes les referències de família
// de l'arbre. Es fa en dues passades (old → temporal → new) perquè el mapa pot
// encadenar identificadors (F3→F2, F2→F1).
func (h sqlHelper) RenumberFamilies(gedcom string, changes []IDChange) error {
	if len(changes) == 0 {
		return nil
	}
	return h.withTx(func(tx *sql.Tx) error {
		for i, c := range changes {
			if err := h.rewriteFamilyID(tx, gedcom, c.OldID, tempFamilyID(i)); err != nil {
				return err
			}
		}
		for i, c := range changes {
			if err := h.rewriteFamilyID(tx, gedcom, tempFamilyID(i), c.NewID); err != nil {
				return err
			}
		}
		return nil
	})
}

func tempFamilyID(i int) string {
	return fmt.Sprintf("~renum~%d", i)
}

func (h sqlHelper) rewriteFamilyID(tx *sql.Tx, gedcom, from, to string) error {
	stmts := []string{
		`UPDATE hp_families SET family_id = ? WHERE gedcom = ? AND family_id = ?`,
		`UPDATE hp_children SET family_id = ? WHERE gedcom = ? AND family_id = ?`,
		`UPDATE hp_people SET famc = ? WHERE gedcom = ? AND famc = ?`,
		`UPDATE hp_people SET fams = ? WHERE gedcom = ? AND fams = ?`,
		`UPDATE hp_events SET owner_id = ? WHERE gedcom = ? AND owner_kind = 'F' AND owner_id = ?`,
		`UPDATE hp_assoc SET passoc_id = ? WHERE gedcom = ? AND reltype = 'F' AND passoc_id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(h.q(stmt), to, gedcom, from); err != nil {
			return err
		}
	}
	return nil
}
