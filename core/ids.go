package core

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/marcmoiagese/HeritagePress/db"
)

// Límits de reintents de l'assignador.
const (
	maxIDRetries       = 100000
	maxBranchIDRetries = 1000
)

const (
	PersonPrefix = "I"
	FamilyPrefix = "F"
)

func idRetries(kind db.IDKind) int {
	if kind == db.IDBranch {
		return maxBranchIDRetries
	}
	return maxIDRetries
}

func idKindName(kind db.IDKind) string {
	switch kind {
	case db.IDPerson:
		return "persona"
	case db.IDFamily:
		return "família"
	}
	return "branca"
}

// NextID retorna prefix + (sufix numèric màxim + 1), comprovant que no existeixi.
// No és segur davant d'assignadors concurrents: la comprovació final és l'única protecció.
func (a *App) NextID(tree string, kind db.IDKind, prefix string) (string, error) {
	ids, err := a.DB.ListIDsWithPrefix(kind, tree, prefix)
	if err != nil {
		return "", storageErr("llistant identificadors", idKindName(kind), prefix, err)
	}
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `([0-9]+)$`)
	max := 0
	for _, id := range ids {
		m := re.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	retries := idRetries(kind)
	for i := 1; i <= retries; i++ {
		candidate := prefix + strconv.Itoa(max+i)
		taken, err := a.DB.IDExists(kind, tree, candidate)
		if err != nil {
			return "", storageErr("comprovant identificador", idKindName(kind), candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		Debugf("identificador %s ocupat a %s, reintentant", candidate, tree)
	}
	return "", ErrIDExhausted
}

// IsAvailable indica si l'ID no existeix a l'arbre.
func (a *App) IsAvailable(tree string, kind db.IDKind, id string) (bool, error) {
	taken, err := a.DB.IDExists(kind, tree, strings.TrimSpace(id))
	if err != nil {
		return false, storageErr("comprovant identificador", idKindName(kind), id, err)
	}
	return !taken, nil
}

// LockPersonID reserva un ID de persona abans d'escriure el registre real.
func (a *App) LockPersonID(actor Actor, tree, id string) error {
	if !actor.CanWrite() {
		return ErrForbidden
	}
	id = strings.TrimSpace(id)
	if tree == "" || id == "" {
		return newValidationError("cal l'arbre i l'identificador")
	}
	return storageErr("reservant identificador", "persona", id, a.DB.LockPersonID(tree, id, actor.Name))
}
