package core

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/marcmoiagese/HeritagePress/db"
)

type MergeResult struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	MergedCount int    `json:"merged_count"`
	KeptSource  bool   `json:"kept_source"`
}

// MergeFamilies mou tots els fills de source a target. Tot passa en una
// transacció: si falla, no queda cap canvi a mitges.
func (a *App) MergeFamilies(actor Actor, tree, source, target string, keepSource bool) (*MergeResult, error) {
	if !actor.CanWrite() {
		return nil, ErrForbidden
	}
	source, target = strings.TrimSpace(source), strings.TrimSpace(target)
	var errs []string
	if source == "" || target == "" {
		errs = append(errs, "cal source i target")
	}
	if source != "" && source == target {
		errs = append(errs, "source i target han de ser diferents")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	n, err := a.DB.MergeFamilies(tree, source, target, keepSource)
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return nil, &NotFoundError{Kind: "família", ID: source + "/" + target}
		}
		return nil, storageErr("fusionant famílies", "família", source, err)
	}
	Infof("fusió %s -> %s a %s: %d fills moguts", source, target, tree, n)
	return &MergeResult{Source: source, Target: target, MergedCount: n, KeptSource: keepSource}, nil
}

// DeleteFamilies esborra el lot sencer en una transacció i retorna quantes existien.
func (a *App) DeleteFamilies(actor Actor, tree string, ids []string) (int, error) {
	if !actor.CanWrite() {
		return 0, ErrForbidden
	}
	var clean []string
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 {
		return 0, newValidationError("cal almenys una família")
	}
	n, err := a.DB.DeleteFamilies(tree, clean)
	if err != nil {
		return 0, storageErr("esborrant famílies", "arbre", tree, err)
	}
	Infof("%d famílies esborrades de %s per %s", n, tree, actor.Name)
	return n, nil
}

type RenumberResult struct {
	Mapping      []db.IDChange `json:"mapping"`
	ChangedCount int           `json:"changed_count"`
	DryRun       bool          `json:"dry_run"`
}

func familyNumber(id string) (int, bool) {
	if !familyIDPattern.MatchString(id) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(FamilyPrefix):])
	return n, err == nil
}

// PlanRenumber calcula el mapa old → new recorrent les famílies en ordre
// numèric a partir de start. Les famílies amb ID no numèric van al final.
func PlanRenumber(families []db.Family, start int) []db.IDChange {
	ids := make([]string, 0, len(families))
	for _, f := range families {
		ids = append(ids, f.FamilyID)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		ni, oki := familyNumber(ids[i])
		nj, okj := familyNumber(ids[j])
		switch {
		case oki && okj:
			return ni < nj
		case oki != okj:
			return oki
		}
		return ids[i] < ids[j]
	})
	var changes []db.IDChange
	for i, id := range ids {
		newID := FamilyPrefix + strconv.Itoa(start+i)
		if newID != id {
			changes = append(changes, db.IDChange{OldID: id, NewID: newID})
		}
	}
	return changes
}

// RenumberFamilies renumera les famílies des de start. Amb dryRun només
// retorna el mapa. Altrament reescriu famílies, fills, famc/fams, esdeveniments
// i associacions de família en una transacció.
func (a *App) RenumberFamilies(actor Actor, tree string, start int, dryRun bool) (*RenumberResult, error) {
	if !dryRun && !actor.CanWrite() {
		return nil, ErrForbidden
	}
	if start < 1 {
		return nil, newValidationError("start ha de ser >= 1")
	}
	families, err := a.ListFamilies(tree)
	if err != nil {
		return nil, err
	}
	changes := PlanRenumber(families, start)
	res := &RenumberResult{Mapping: changes, ChangedCount: len(changes), DryRun: dryRun}
	if res.Mapping == nil {
		res.Mapping = []db.IDChange{}
	}
	if dryRun || len(changes) == 0 {
		return res, nil
	}
	if err := a.DB.RenumberFamilies(tree, changes); err != nil {
		return nil, storageErr("renumerant famílies", "arbre", tree, err)
	}
	Infof("renumeració %s: %d famílies canviades", tree, len(changes))
	return res, nil
}

// ValidateFamilies cerca referències penjades i IDs de família duplicats.
// No modifica res.
func (a *App) ValidateFamilies(tree string) ([]Issue, error) {
	persons, err := a.personLookup(tree)
	if err != nil {
		return nil, err
	}
	families, err := a.ListFamilies(tree)
	if err != nil {
		return nil, err
	}
	links, err := a.DB.ListChildLinks(tree)
	if err != nil {
		return nil, storageErr("llistant fills", "arbre", tree, err)
	}

	issues := []Issue{}
	famCount := map[string]int{}
	for _, f := range families {
		famCount[f.FamilyID]++
		for _, spouse := range []struct{ role, id string }{{"husband", f.Husband}, {"wife", f.Wife}} {
			if spouse.id == "" {
				continue
			}
			if _, ok := persons[spouse.id]; !ok {
				issues = append(issues, Issue{
					Type:    IssueInvalidSpouse,
					Message: fmt.Sprintf("la família %s té %s %s, que no existeix", f.FamilyID, spouse.role, spouse.id),
					Subject: spouse.id,
				})
			}
		}
	}
	ids := make([]string, 0, len(famCount))
	for id, n := range famCount {
		if n > 1 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		issues = append(issues, Issue{
			Type:    IssueDuplicateFamilyID,
			Message: fmt.Sprintf("l'ID de família %s apareix %d vegades", id, famCount[id]),
			Subject: id,
		})
	}

	personIDs := make([]string, 0, len(persons))
	for id := range persons {
		personIDs = append(personIDs, id)
	}
	sort.Strings(personIDs)
	for _, id := range personIDs {
		p := persons[id]
		if p.Famc != "" && famCount[p.Famc] == 0 {
			issues = append(issues, Issue{
				Type:    IssueInvalidFamc,
				Message: fmt.Sprintf("%s és fill de %s, que no existeix", p.PersonID, p.Famc),
				Subject: p.PersonID,
			})
		}
	}
	for _, l := range links {
		if _, ok := persons[l.PersonID]; !ok {
			issues = append(issues, Issue{
				Type:    IssueInvalidChild,
				Message: fmt.Sprintf("la família %s té el fill %s, que no existeix", l.FamilyID, l.PersonID),
				Subject: l.PersonID,
			})
		}
	}
	return issues, nil
}
