package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/marcmoiagese/HeritagePress/db"
)

var familyIDPattern = regexp.MustCompile(`^F[0-9]+$`)

type FamilyInput struct {
	FamilyID  string `json:"family_id"`
	Husband   string `json:"husband"`
	Wife      string `json:"wife"`
	MarrDate  string `json:"marr_date"`
	MarrPlace string `json:"marr_place"`
	MarrType  string `json:"marr_type"`
	DivDate   string `json:"div_date"`
	DivPlace  string `json:"div_place"`
	Living    bool   `json:"living"`
	Private   bool   `json:"private"`
}

type FamilyPatch struct {
	Husband   *string `json:"husband"`
	Wife      *string `json:"wife"`
	MarrDate  *string `json:"marr_date"`
	MarrPlace *string `json:"marr_place"`
	MarrType  *string `json:"marr_type"`
	DivDate   *string `json:"div_date"`
	DivPlace  *string `json:"div_place"`
	Living    *bool   `json:"living"`
	Private   *bool   `json:"private"`
}

// EventInfo és la vista d'un casament o divorci.
type EventInfo struct {
	Date     string `json:"date"`
	Sortable string `json:"sortable"`
	Place    string `json:"place"`
	Type     string `json:"type,omitempty"`
}

func MarriageInfo(f *db.Family) EventInfo {
	return EventInfo{Date: f.MarrDate, Sortable: f.MarrDateTr, Place: f.MarrPlace, Type: f.MarrType}
}

func DivorceInfo(f *db.Family) EventInfo {
	return EventInfo{Date: f.DivDate, Sortable: f.DivDateTr, Place: f.DivPlace}
}

// FamilyView és una família amb els noms dels cònjuges resolts per a l'actor.
type FamilyView struct {
	*db.Family
	Label       string         `json:"label,omitempty"`
	HusbandName string         `json:"husband_name"`
	WifeName    string         `json:"wife_name"`
	Children    []db.ChildLink `json:"children,omitempty"`
	Redacted    bool           `json:"redacted"`
}

// IsFamilyHiddenFor indica si l'actor no pot veure les dades del casament:
// famílies privades o vives per a qui no veu els vius.
func IsFamilyHiddenFor(f *db.Family, actor Actor) bool {
	return !actor.SeesLiving() && (f.Private || f.Living)
}

// withoutEventDetails retorna una còpia sense dates ni llocs de casament i divorci.
func withoutEventDetails(f *db.Family) *db.Family {
	cp := *f
	cp.MarrDate, cp.MarrDateTr, cp.MarrPlace = "", "", ""
	cp.DivDate, cp.DivDateTr, cp.DivPlace = "", "", ""
	return &cp
}

func (in FamilyInput) dateFields() []dateField {
	return []dateField{{"marr_date", in.MarrDate}, {"div_date", in.DivDate}}
}

func (p FamilyPatch) dateFields() []dateField {
	var res []dateField
	if p.MarrDate != nil {
		res = append(res, dateField{"marr_date", *p.MarrDate})
	}
	if p.DivDate != nil {
		res = append(res, dateField{"div_date", *p.DivDate})
	}
	return res
}

func (a *App) fillFamilyDates(f *db.Family, errs *[]string) {
	a.applyDate("marr_date", f.MarrDate, &f.MarrDate, &f.MarrDateTr, errs)
	a.applyDate("div_date", f.DivDate, &f.DivDate, &f.DivDateTr, errs)
}

func (a *App) validateFamily(f *db.Family) []string {
	var errs []string
	for _, spouse := range []struct{ role, id string }{{"husband", f.Husband}, {"wife", f.Wife}} {
		if spouse.id == "" {
			continue
		}
		if _, err := a.GetPerson(f.Gedcom, spouse.id); err != nil {
			if isNotFound(err) {
				errs = append(errs, fmt.Sprintf("%s %s no existeix", spouse.role, spouse.id))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", spouse.role, err))
			}
		}
	}
	if f.Husband != "" && f.Husband == f.Wife {
		errs = append(errs, "husband i wife no poden ser la mateixa persona")
	}
	a.fillFamilyDates(f, &errs)
	return errs
}

// CreateFamily valida i crea la família; sense family_id se n'assigna un de
// seqüencial amb el mateix assignador que les persones.
func (a *App) CreateFamily(actor Actor, tree string, in FamilyInput) (string, error) {
	if !actor.CanWrite() {
		return "", ErrForbidden
	}
	tree = strings.TrimSpace(tree)
	if tree == "" {
		return "", newValidationError("cal l'arbre")
	}
	f := &db.Family{
		Gedcom: tree, FamilyID: strings.TrimSpace(in.FamilyID),
		Husband: strings.TrimSpace(in.Husband), Wife: strings.TrimSpace(in.Wife),
		MarrDate: in.MarrDate, MarrPlace: strings.TrimSpace(in.MarrPlace), MarrType: strings.TrimSpace(in.MarrType),
		DivDate: in.DivDate, DivPlace: strings.TrimSpace(in.DivPlace),
		Living: in.Living, Private: in.Private, ChangedBy: actor.Name,
	}
	errs := a.validateFamily(f)
	if f.FamilyID != "" && !familyIDPattern.MatchString(f.FamilyID) {
		errs = append(errs, fmt.Sprintf("family_id invàlid: %q (F<número>)", f.FamilyID))
	}
	if len(errs) > 0 {
		return "", &ValidationError{Errors: errs}
	}
	if f.FamilyID == "" {
		id, err := a.NextID(tree, db.IDFamily, FamilyPrefix)
		if err != nil {
			return "", err
		}
		f.FamilyID = id
	}
	if _, err := a.DB.CreateFamily(f); err != nil {
		return "", storageErr("creant família", "família", f.FamilyID, err)
	}
	Infof("família %s creada a %s per %s", f.FamilyID, tree, actor.Name)
	return f.FamilyID, nil
}

func (a *App) GetFamily(tree, id string) (*db.Family, error) {
	f, err := a.DB.GetFamily(tree, id)
	if err != nil {
		return nil, storageErr("llegint família", "família", id, err)
	}
	return f, nil
}

func (a *App) GetFamilyByDBID(id int) (*db.Family, error) {
	f, err := a.DB.GetFamilyByDBID(id)
	if err != nil {
		return nil, storageErr("llegint família", "família", fmt.Sprint(id), err)
	}
	return f, nil
}

func (a *App) ListFamilies(tree string) ([]db.Family, error) {
	fams, err := a.DB.ListFamilies(tree)
	if err != nil {
		return nil, storageErr("llistant famílies", "arbre", tree, err)
	}
	return fams, nil
}

// FindFamiliesBySpouse retorna les famílies on la persona és marit o muller.
func (a *App) FindFamiliesBySpouse(tree, personID string) ([]db.Family, error) {
	fams, err := a.DB.ListFamiliesBySpouse(tree, personID)
	if err != nil {
		return nil, storageErr("cercant famílies", "persona", personID, err)
	}
	return fams, nil
}

// ViewFamily resol els noms dels cònjuges i els fills. Una família privada
// només mostra l'ID a qui no veu els vius; una de viva hi perd dates i llocs.
func (a *App) ViewFamily(actor Actor, f *db.Family) (FamilyView, error) {
	if IsFamilyHiddenFor(f, actor) && f.Private {
		return FamilyView{
			Family:   &db.Family{ID: f.ID, Gedcom: f.Gedcom, FamilyID: f.FamilyID, Living: f.Living, Private: f.Private},
			Label:    PrivateLabel(f.FamilyID),
			Redacted: true,
		}, nil
	}
	v := FamilyView{Family: f}
	if IsFamilyHiddenFor(f, actor) {
		v.Family = withoutEventDetails(f)
		v.Redacted = true
	}
	var err error
	if v.HusbandName, err = a.spouseLabel(actor, f.Gedcom, f.Husband); err != nil {
		return v, err
	}
	if v.WifeName, err = a.spouseLabel(actor, f.Gedcom, f.Wife); err != nil {
		return v, err
	}
	v.Children, err = a.ListChildren(f.Gedcom, f.FamilyID)
	return v, err
}

func (a *App) spouseLabel(actor Actor, tree, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	p, err := a.GetPerson(tree, id)
	if isNotFound(err) {
		return id, nil
	}
	if err != nil {
		return "", err
	}
	return PersonLabel(p, actor), nil
}

func (a *App) UpdateFamily(actor Actor, tree, id string, patch FamilyPatch) (*db.Family, error) {
	if !actor.CanWrite() {
		return nil, ErrForbidden
	}
	f, err := a.GetFamily(tree, id)
	if err != nil {
		return nil, err
	}
	setString(&f.Husband, patch.Husband)
	setString(&f.Wife, patch.Wife)
	setString(&f.MarrDate, patch.MarrDate)
	setString(&f.MarrPlace, patch.MarrPlace)
	setString(&f.MarrType, patch.MarrType)
	setString(&f.DivDate, patch.DivDate)
	setString(&f.DivPlace, patch.DivPlace)
	if patch.Living != nil {
		f.Living = *patch.Living
	}
	if patch.Private != nil {
		f.Private = *patch.Private
	}
	if errs := a.validateFamily(f); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	f.ChangedBy = actor.Name
	if err := a.DB.UpdateFamily(f); err != nil {
		return nil, storageErr("actualitzant família", "família", id, err)
	}
	return f, nil
}

// DeleteFamily esborra la família amb els vincles de fill i els esdeveniments.
func (a *App) DeleteFamily(actor Actor, tree, id string) error {
	if !actor.CanWrite() {
		return ErrForbidden
	}
	ok, err := a.DB.DeleteFamily(tree, id)
	if err != nil {
		return storageErr("esborrant família", "família", id, err)
	}
	if !ok {
		return &NotFoundError{Kind: "família", ID: id}
	}
	Infof("família %s esborrada de %s per %s", id, tree, actor.Name)
	return nil
}

// AddChild afegeix el fill a la família. order <= 0 el posa al final. Un fill
// que ja hi és retorna ConflictError i no es duplica.
func (a *App) AddChild(actor Actor, tree, familyID, personID string, order int) error {
	if !actor.CanWrite() {
		return ErrForbidden
	}
	var errs []string
	f, err := a.GetFamily(tree, familyID)
	if err != nil && !isNotFound(err) {
		return err
	}
	if f == nil {
		errs = append(errs, fmt.Sprintf("família %s no existeix", familyID))
	}
	if _, err := a.GetPerson(tree, personID); err != nil {
		if !isNotFound(err) {
			return err
		}
		errs = append(errs, fmt.Sprintf("persona %s no existeix", personID))
	}
	if f != nil && (personID == f.Husband || personID == f.Wife) {
		errs = append(errs, fmt.Sprintf("%s és cònjuge de %s", personID, familyID))
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	err = a.DB.AddChild(&db.ChildLink{Gedcom: tree, FamilyID: familyID, PersonID: personID, OrderNum: order})
	if err != nil {
		if isDuplicate(err) {
			return &ConflictError{Reason: fmt.Sprintf("%s ja és fill de %s", personID, familyID)}
		}
		return storageErr("afegint fill", "família", familyID, err)
	}
	return nil
}

func (a *App) RemoveChild(actor Actor, tree, familyID, personID string) error {
	if !actor.CanWrite() {
		return ErrForbidden
	}
	ok, err := a.DB.RemoveChild(tree, familyID, personID)
	if err != nil {
		return storageErr("traient fill", "família", familyID, err)
	}
	if !ok {
		return &NotFoundError{Kind: "fill", ID: familyID + "/" + personID}
	}
	return nil
}

func (a *App) ListChildren(tree, familyID string) ([]db.ChildLink, error) {
	kids, err := a.DB.ListChildren(tree, familyID)
	if err != nil {
		return nil, storageErr("llistant fills", "família", familyID, err)
	}
	return kids, nil
}
