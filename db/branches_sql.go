package db

import "database/sql"

const branchColumns = `gedcom, branch, description, person_id, agens, dgens, dagens, inclspouses, changed_by, changed_at`

func scanBranch(rs rowScanner) (*Branch, error) {
	var b Branch
	var spouses int
	if err := rs.Scan(&b.Gedcom, &b.Branch, &b.Description, &b.PersonID, &b.Agens, &b.Dgens, &b.Dagens,
		&spouses, &b.ChangedBy, &b.ChangedAt); err != nil {
		return nil, err
	}
	b.IncludeSpouses = spouses == 1
	return &b, nil
}

func (h sqlHelper) CreateBranch(b *Branch) error {
	b.ChangedAt = h.timestamp()
	return h.withTx(func(tx *sql.Tx) error {
		dup, err := h.exists(tx, `SELECT COUNT(*) FROM hp_branches WHERE gedcom = ? AND branch = ?`, b.Gedcom, b.Branch)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicate
		}
		_, err = tx.Exec(h.q(`INSERT INTO hp_branches (`+branchColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			b.Gedcom, b.Branch, b.Description, b.PersonID, b.Agens, b.Dgens, b.Dagens,
			boolToInt(b.IncludeSpouses), b.ChangedBy, b.ChangedAt)
		return err
	})
}

func (h sqlHelper) UpdateBranch(b *Branch) error {
	b.ChangedAt = h.timestamp()
	n, err := h.execCount(h.db, `UPDATE hp_branches SET description = ?, person_id = ?, agens = ?, dgens = ?, dagens = ?,
		inclspouses = ?, changed_by = ?, changed_at = ? WHERE gedcom = ? AND branch = ?`,
		b.Description, b.PersonID, b.Agens, b.Dgens, b.Dagens, boolToInt(b.IncludeSpouses), b.ChangedBy, b.ChangedAt,
		b.Gedcom, b.Branch)
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteBranch esborra la branca i els seus vincles.
func (h sqlHelper) DeleteBranch(gedcom, branch string) (bool, error) {
	deleted := false
	err := h.withTx(func(tx *sql.Tx) error {
		n, err := h.execCount(tx, `DELETE FROM hp_branches WHERE gedcom = ? AND branch = ?`, gedcom, branch)
		if err != nil || n == 0 {
			return err
		}
		deleted = true
		_, err = tx.Exec(h.q(`DELETE FROM hp_branchlinks WHERE gedcom = ? AND branch = ?`), gedcom, branch)
		return err
	})
	return deleted, err
}

func (h sqlHelper) GetBranch(gedcom, branch string) (*Branch, error) {
	row := h.db.QueryRow(h.q(`SELECT `+branchColumns+` FROM hp_branches WHERE gedcom = ? AND branch = ?`), gedcom, branch)
	return scanBranch(row)
}

func (h sqlHelper) ListBranches(gedcom string) ([]Branch, error) {
	rows, err := h.db.Query(h.q(`SELECT `+branchColumns+` FROM hp_branches WHERE gedcom = ? ORDER BY branch`), gedcom)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *b)
	}
	return res, rows.Err()
}

// ReplaceBranchLinks substitueix tots els membres de la branca.
func (h sqlHelper) ReplaceBranchLinks(gedcom, branch string, personIDs []string) error {
	return h.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(h.q(`DELETE FROM hp_branchlinks WHERE gedcom = ? AND branch = ?`), gedcom, branch); err != nil {
			return err
		}
		seen := make(map[string]bool, len(personIDs))
		for _, pid := range personIDs {
			if pid == "" || seen[pid] {
				continue
			}
			seen[pid] = true
			if _, err := tx.Exec(h.q(`INSERT INTO hp_branchlinks (gedcom, branch, person_id) VALUES (?, ?, ?)`),
				gedcom, branch, pid); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h sqlHelper) ListBranchLinks(gedcom, branch string) ([]BranchLink, error) {
	rows, err := h.db.Query(h.q(`SELECT id, gedcom, branch, person_id FROM hp_branchlinks
		WHERE gedcom = ? AND branch = ? ORDER BY person_id`), gedcom, branch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []BranchLink
	for rows.Next() {
		var l BranchLink
		if err := rows.Scan(&l.ID, &l.Gedcom, &l.Branch, &l.PersonID); err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}
