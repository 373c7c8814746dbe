package core

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/marcmoiagese/HeritagePress/db"
)

var branchCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type BranchInput struct {
	Branch         string `json:"branch"`
	Description    string `json:"description"`
	PersonID       string `json:"person_id"`
	Agens          int    `json:"agens"`
	Dgens          int    `json:"dgens"`
	Dagens         int    `json:"dagens"`
	IncludeSpouses bool   `json:"inclspouses"`
}

// ValidateBranch comprova camps, format del codi, unicitat (si és nova), que la
// persona arrel existeixi i que les generacions no siguin negatives.
func (a *App) ValidateBranch(tree string, in BranchInput, isNew bool) []string {
	var errs []string
	if strings.TrimSpace(in.Description) == "" {
		errs = append(errs, "cal description")
	}
	if in.Branch != "" && !branchCodePattern.MatchString(in.Branch) {
		errs = append(errs, fmt.Sprintf("codi de branca invàlid: %q", in.Branch))
	}
	if isNew && in.Branch != "" && branchCodePattern.MatchString(in.Branch) {
		exists, err := a.BranchExists(tree, in.Branch)
		if err != nil {
			errs = append(errs, err.Error())
		} else if exists {
			errs = append(errs, fmt.Sprintf("la branca %s ja existeix", in.Branch))
		}
	}
	if strings.TrimSpace(in.PersonID) == "" {
		errs = append(errs, "cal person_id")
	} else if _, err := a.GetPerson(tree, in.PersonID); err != nil {
		errs = append(errs, fmt.Sprintf("persona %s no existeix", in.PersonID))
	}
	if in.Agens < 0 || in.Dgens < 0 || in.Dagens < 0 {
		errs = append(errs, "les generacions no poden ser negatives")
	}
	return errs
}

func (a *App) BranchExists(tree, branch string) (bool, error) {
	ok, err := a.DB.IDExists(db.IDBranch, tree, branch)
	if err != nil {
		return false, storageErr("comprovant branca", "branca", branch, err)
	}
	return ok, nil
}

// GenerateBranchID fa servir base (netejada) com a prefix i hi afegeix el
// següent sufix numèric lliure.
func (a *App) GenerateBranchID(tree, base string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(stripDiacritics(strings.TrimSpace(base))) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	prefix := b.String()
	if prefix == "" {
		prefix = "branch"
	}
	return a.NextID(tree, db.IDBranch, prefix)
}

// AddBranch crea la branca; sense codi se'n genera un a partir del cognom de l'arrel.
func (a *App) AddBranch(actor Actor, tree string, in BranchInput) (string, error) {
	if !actor.CanWrite() {
		return "", ErrForbidden
	}
	in.Branch = strings.TrimSpace(in.Branch)
	in.PersonID = strings.TrimSpace(in.PersonID)
	if errs := a.ValidateBranch(tree, in, true); len(errs) > 0 {
		return "", &ValidationError{Errors: errs}
	}
	if in.Branch == "" {
		base := ""
		if p, err := a.GetPerson(tree, in.PersonID); err == nil {
			base = p.LastName
		}
		id, err := a.GenerateBranchID(tree, base)
		if err != nil {
			return "", err
		}
		in.Branch = id
	}
	b := &db.Branch{Gedcom: tree, Branch: in.Branch, Description: strings.TrimSpace(in.Description),
		PersonID: in.PersonID, Agens: in.Agens, Dgens: in.Dgens, Dagens: in.Dagens,
		IncludeSpouses: in.IncludeSpouses, ChangedBy: actor.Name}
	if err := a.DB.CreateBranch(b); err != nil {
		return "", storageErr("creant branca", "branca", in.Branch, err)
	}
	return b.Branch, nil
}

func (a *App) UpdateBranch(actor Actor, tree string, in BranchInput) error {
	if !actor.CanWrite() {
		return ErrForbidden
	}
	if _, err := a.GetBranch(tree, in.Branch); err != nil {
		return err
	}
	if errs := a.ValidateBranch(tree, in, false); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	b := &db.Branch{Gedcom: tree, Branch: in.Branch, Description: strings.TrimSpace(in.Description),
		PersonID: strings.TrimSpace(in.PersonID), Agens: in.Agens, Dgens: in.Dgens, Dagens: in.Dagens,
		IncludeSpouses: in.IncludeSpouses, ChangedBy: actor.Name}
	return storageErr("actualitzant branca", "branca", in.Branch, a.DB.UpdateBranch(b))
}

func (a *App) DeleteBranch(actor Actor, tree, branch string) error {
	if !actor.CanWrite() {
		return ErrForbidden
	}
	ok, err := a.DB.DeleteBranch(tree, branch)
	if err != nil {
		return storageErr("esborrant branca", "branca", branch, err)
	}
	if !ok {
		return &NotFoundError{Kind: "branca", ID: branch}
	}
	return nil
}

func (a *App) GetBranch(tree, branch string) (*db.Branch, error) {
	b, err := a.DB.GetBranch(tree, branch)
	if err != nil {
		return nil, storageErr("llegint branca", "branca", branch, err)
	}
	return b, nil
}

func (a *App) ListBranches(tree string) ([]db.Branch, error) {
	list, err := a.DB.ListBranches(tree)
	if err != nil {
		return nil, storageErr("llistant branques", "arbre", tree, err)
	}
	return list, nil
}

func (a *App) BranchMembers(tree, branch string) ([]string, error) {
	links, err := a.DB.ListBranchLinks(tree, branch)
	if err != nil {
		return nil, storageErr("llistant membres", "branca", branch, err)
	}
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.PersonID)
	}
	return ids, nil
}

// kinship és el graf pares/fills/cònjuges d'un arbre.
type kinship struct {
	parents  map[string][]string
	children map[string][]string
	spouses  map[string][]string
}

func (a *App) loadKinship(tree string) (*kinship, error) {
	families, err := a.ListFamilies(tree)
	if err != nil {
		return nil, err
	}
	links, err := a.DB.ListChildLinks(tree)
	if err != nil {
		return nil, storageErr("llistant fills", "arbre", tree, err)
	}
	byID := make(map[string]*db.Family, len(families))
	k := &kinship{parents: map[string][]string{}, children: map[string][]string{}, spouses: map[string][]string{}}
	for i := range families {
		f := &families[i]
		byID[f.FamilyID] = f
		if f.Husband != "" && f.Wife != "" {
			k.spouses[f.Husband] = append(k.spouses[f.Husband], f.Wife)
			k.spouses[f.Wife] = append(k.spouses[f.Wife], f.Husband)
		}
	}
	for _, l := range links {
		f := byID[l.FamilyID]
		if f == nil {
			continue
		}
		for _, parent := range []string{f.Husband, f.Wife} {
			if parent == "" {
				continue
			}
			k.parents[l.PersonID] = append(k.parents[l.PersonID], parent)
			k.children[parent] = append(k.children[parent], l.PersonID)
		}
	}
	return k, nil
}

// walk recorre el graf des de start fins a limit generacions (0 = sense límit).
// El node stop no s'expandeix.
func walk(start []string, next map[string][]string, limit int, stop string) map[string]bool {
	seen := map[string]bool{}
	frontier := start
	for gen := 1; len(frontier) > 0 && (limit == 0 || gen <= limit); gen++ {
		var nextFrontier []string
		for _, id := range frontier {
			if id == stop {
				continue
			}
			for _, n := range next[id] {
				if !seen[n] {
					seen[n] = true
					nextFrontier = append(nextFrontier, n)
				}
			}
		}
		frontier = nextFrontier
	}
	return seen
}

// ApplyBranch recalcula els membres de la branca: l'arrel, els seus avantpassats
// (agens), descendents (dgens), avantpassats dels descendents (dagens) i, amb
// inclspouses, els cònjuges de l'arrel i dels descendents.
func (a *App) ApplyBranch(actor Actor, tree, branch string) ([]string, error) {
	if !actor.CanWrite() {
		return nil, ErrForbidden
	}
	b, err := a.GetBranch(tree, branch)
	if err != nil {
		return nil, err
	}
	k, err := a.loadKinship(tree)
	if err != nil {
		return nil, err
	}

	members := map[string]bool{b.PersonID: true}
	for id := range walk([]string{b.PersonID}, k.parents, b.Agens, "") {
		members[id] = true
	}
	descendants := walk([]string{b.PersonID}, k.children, b.Dgens, "")
	descList := make([]string, 0, len(descendants))
	for id := range descendants {
		members[id] = true
		descList = append(descList, id)
	}
	// la línia de l'arrel ja la cobreix agens
	for id := range walk(descList, k.parents, b.Dagens, b.PersonID) {
		members[id] = true
	}
	if b.IncludeSpouses {
		for _, id := range append(descList, b.PersonID) {
			for _, s := range k.spouses[id] {
				members[s] = true
			}
		}
	}

	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if err := a.DB.ReplaceBranchLinks(tree, branch, ids); err != nil {
		return nil, storageErr("aplicant branca", "branca", branch, err)
	}
	Infof("branca %s/%s aplicada: %d persones", tree, branch, len(ids))
	return ids, nil
}
