package db

import "fmt"

func idTable(kind IDKind) (table, column string, err error) {
	switch kind {
	case IDPerson:
		return "hp_people", "person_id", nil
	case IDFamily:
		return "hp_families", "family_id", nil
	case IDBranch:
		return "hp_branches", "branch", nil
	}
	return "", "", fmt.Errorf("tipus d'identificador desconegut: %d", kind)
}

// ListIDsWithPrefix retorna els identificadors de l'arbre que comencen per prefix.
// El filtre numèric estricte el fa el cridador.
func (h sqlHelper) ListIDsWithPrefix(kind IDKind, gedcom, prefix string) ([]string, error) {
	table, column, err := idTable(kind)
	if err != nil {
		return nil, err
	}
	return h.queryStrings(h.db, `SELECT `+column+` FROM `+table+` WHERE gedcom = ? AND `+column+` LIKE ? ESCAPE '!'`,
		gedcom, escapeLike(prefix)+"%")
}

func (h sqlHelper) IDExists(kind IDKind, gedcom, id string) (bool, error) {
	table, column, err := idTable(kind)
	if err != nil {
		return false, err
	}
	return h.exists(h.db, `SELECT COUNT(*) FROM `+table+` WHERE gedcom = ? AND `+column+` = ?`, gedcom, id)
}

// escapeLike escapa els comodins de LIKE amb '!' (els codis de branca poden portar '_').
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '!' {
			out = append(out, '!')
		}
		out = append(out, r)
	}
	return string(out)
}
