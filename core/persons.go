package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/marcmoiagese/HeritagePress/db"
)

var personIDPattern = regexp.MustCompile(`^I[0-9]+$`)

// PersonInput són els camps editables d'una persona. Les dates es guarden tal com
// les normalitza core/dates, amb la forma ordenable al camp *_tr.
type PersonInput struct {
	PersonID    string `json:"person_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	LNPrefix    string `json:"lnprefix"`
	Prefix      string `json:"prefix"`
	Suffix      string `json:"suffix"`
	Nickname    string `json:"nickname"`
	Sex         string `json:"sex"`
	BirthDate   string `json:"birth_date"`
	BirthPlace  string `json:"birth_place"`
	DeathDate   string `json:"death_date"`
	DeathPlace  string `json:"death_place"`
	BurialDate  string `json:"burial_date"`
	BurialPlace string `json:"burial_place"`
	BaptDate    string `json:"bapt_date"`
	BaptPlace   string `json:"bapt_place"`
	Living      bool   `json:"living"`
	Private     bool   `json:"private"`
	Famc        string `json:"famc"`
}

// PersonPatch conté només els camps a canviar (nil = no tocar).
type PersonPatch struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	LNPrefix    *string `json:"lnprefix"`
	Prefix      *string `json:"prefix"`
	Suffix      *string `json:"suffix"`
	Nickname    *string `json:"nickname"`
	Sex         *string `json:"sex"`
	BirthDate   *string `json:"birth_date"`
	BirthPlace  *string `json:"birth_place"`
	DeathDate   *string `json:"death_date"`
	DeathPlace  *string `json:"death_place"`
	BurialDate  *string `json:"burial_date"`
	BurialPlace *string `json:"burial_place"`
	BaptDate    *string `json:"bapt_date"`
	BaptPlace   *string `json:"bapt_place"`
	Living      *bool   `json:"living"`
	Private     *bool   `json:"private"`
	Famc        *string `json:"famc"`
}

// PersonView és la persona tal com la veu un actor concret.
type PersonView struct {
	*db.Person
	DisplayName string `json:"display_name"`
	Redacted    bool   `json:"redacted"`
}

// DisplayName uneix prefix, nom, partícula, cognom i sufix; sense cap part, retorna l'ID.
func DisplayName(p *db.Person) string {
	if p == nil {
		return ""
	}
	var parts []string
	for _, s := range []string{p.Prefix, p.FirstName, p.LNPrefix, p.LastName, p.Suffix} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return p.PersonID
	}
	return strings.Join(parts, " ")
}

// IsPrivateFor indica si cal amagar la persona a l'actor.
func IsPrivateFor(p *db.Person, actor Actor) bool {
	return p.Private || (p.Living && !actor.SeesLiving())
}

// PrivateLabel és l'etiqueta que substitueix el nom d'una persona privada.
func PrivateLabel(id string) string {
	return fmt.Sprintf("[Private] (%s)", id)
}

// PersonLabel retorna el nom visible per a l'actor.
func PersonLabel(p *db.Person, actor Actor) string {
	if IsPrivateFor(p, actor) {
		return PrivateLabel(p.PersonID)
	}
	return DisplayName(p)
}

// ViewPerson aplica la privacitat: una persona privada només mostra l'ID.
func ViewPerson(p *db.Person, actor Actor) PersonView {
	if !IsPrivateFor(p, actor) {
		return PersonView{Person: p, DisplayName: DisplayName(p)}
	}
	return PersonView{
		Person:      &db.Person{ID: p.ID, Gedcom: p.Gedcom, PersonID: p.PersonID, Living: p.Living, Private: p.Private},
		DisplayName: PrivateLabel(p.PersonID),
		Redacted:    true,
	}
}

func normalizeSex(s string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "M":
		return "M", true
	case "F":
		return "F", true
	case "", "U":
		return "U", true
	}
	return "", false
}

// applyDate normalitza raw i l'escriu als dos camps; en mode estricte una data
// impossible afegeix un error.
func (a *App) applyDate(field, raw string, display, sortable *string, errs *[]string) {
	r := a.Dates.Normalize(raw)
	if a.Dates.Strict && r.Impossible() {
		*errs = append(*errs, fmt.Sprintf("%s: data impossible %q", field, raw))
		return
	}
	*display, *sortable = r.Display, r.Sortable
}

// dateField és un camp de data tal com arriba de l'entrada.
type dateField struct {
	name, raw string
}

// dateWarnings recull els avisos del normalitzador (data futura amb la política
// warn, data impossible fora del mode estricte) en l'ordre dels camps.
func (a *App) dateWarnings(fields ...dateField) []string {
	var warns []string
	for _, f := range fields {
		for _, w := range a.Dates.Normalize(f.raw).Warnings {
			warns = append(warns, fmt.Sprintf("%s: %s (%q)", f.name, w, strings.TrimSpace(f.raw)))
		}
	}
	return warns
}

func (in PersonInput) dateFields() []dateField {
	return []dateField{
		{"birth_date", in.BirthDate}, {"death_date", in.DeathDate},
		{"burial_date", in.BurialDate}, {"bapt_date", in.BaptDate},
	}
}

func (p PersonPatch) dateFields() []dateField {
	var res []dateField
	for _, f := range []struct {
		name string
		v    *string
	}{{"birth_date", p.BirthDate}, {"death_date", p.DeathDate}, {"burial_date", p.BurialDate}, {"bapt_date", p.BaptDate}} {
		if f.v != nil {
			res = append(res, dateField{f.name, *f.v})
		}
	}
	return res
}

func (a *App) fillPersonDates(p *db.Person, errs *[]string) {
	a.applyDate("birth_date", p.BirthDate, &p.BirthDate, &p.BirthDateTr, errs)
	a.applyDate("death_date", p.DeathDate, &p.DeathDate, &p.DeathDateTr, errs)
	a.applyDate("burial_date", p.BurialDate, &p.BurialDate, &p.BurialDateTr, errs)
	a.applyDate("bapt_date", p.BaptDate, &p.BaptDate, &p.BaptDateTr, errs)
}

func (a *App) validatePerson(p *db.Person) []string {
	var errs []string
	sex, ok := normalizeSex(p.Sex)
	if !ok {
		errs = append(errs, fmt.Sprintf("sex invàlid: %q (M|F|U)", p.Sex))
	}
	p.Sex = sex
	if p.Famc != "" {
		exists, err := a.DB.IDExists(db.IDFamily, p.Gedcom, p.Famc)
		if err != nil {
			errs = append(errs, "no s'ha pogut comprovar famc: "+err.Error())
		} else if !exists {
			errs = append(errs, fmt.Sprintf("famc %s no existeix", p.Famc))
		}
	}
	a.fillPersonDates(p, &errs)
	p.Soundex = Soundex(p.LastName)
	return errs
}

// CreatePerson valida i crea la persona; sense person_id se n'assigna un de nou.
func (a *App) CreatePerson(actor Actor, tree string, in PersonInput) (string, error) {
	if !actor.CanWrite() {
		return "", ErrForbidden
	}
	tree = strings.TrimSpace(tree)
	if tree == "" {
		return "", newValidationError("cal l'arbre")
	}
	p := &db.Person{
		Gedcom: tree, PersonID: strings.TrimSpace(in.PersonID),
		FirstName: strings.TrimSpace(in.FirstName), LastName: strings.TrimSpace(in.LastName),
		LNPrefix: strings.TrimSpace(in.LNPrefix), Prefix: strings.TrimSpace(in.Prefix),
		Suffix: strings.TrimSpace(in.Suffix), Nickname: strings.TrimSpace(in.Nickname), Sex: in.Sex,
		BirthDate: in.BirthDate, BirthPlace: strings.TrimSpace(in.BirthPlace),
		DeathDate: in.DeathDate, DeathPlace: strings.TrimSpace(in.DeathPlace),
		BurialDate: in.BurialDate, BurialPlace: strings.TrimSpace(in.BurialPlace),
		BaptDate: in.BaptDate, BaptPlace: strings.TrimSpace(in.BaptPlace),
		Living: in.Living, Private: in.Private, Famc: strings.TrimSpace(in.Famc),
		ChangedBy: actor.Name,
	}
	errs := a.validatePerson(p)
	if p.PersonID != "" && !personIDPattern.MatchString(p.PersonID) {
		errs = append(errs, fmt.Sprintf("person_id invàlid: %q (I<número>)", p.PersonID))
	}
	if len(errs) > 0 {
		return "", &ValidationError{Errors: errs}
	}
	if p.PersonID == "" {
		id, err := a.NextID(tree, db.IDPerson, PersonPrefix)
		if err != nil {
			return "", err
		}
		p.PersonID = id
	}
	if _, err := a.DB.CreatePerson(p); err != nil {
		return "", storageErr("creant persona", "persona", p.PersonID, err)
	}
	Infof("persona %s creada a %s per %s", p.PersonID, tree, actor.Name)
	return p.PersonID, nil
}

// GetPerson retorna la persona; les reserves de LockPersonID compten com a inexistents.
func (a *App) GetPerson(tree, id string) (*db.Person, error) {
	p, err := a.DB.GetPerson(tree, id)
	if err != nil {
		return nil, storageErr("llegint persona", "persona", id, err)
	}
	if p.Placeholder {
		return nil, &NotFoundError{Kind: "persona", ID: id}
	}
	return p, nil
}

func (a *App) ListPersons(tree string) ([]db.Person, error) {
	persons, err := a.DB.ListPersons(tree)
	if err != nil {
		return nil, storageErr("llistant persones", "arbre", tree, err)
	}
	return persons, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// UpdatePerson aplica el patch i torna a validar el registre sencer.
func (a *App) UpdatePerson(actor Actor, tree, id string, patch PersonPatch) (*db.Person, error) {
	if !actor.CanWrite() {
		return nil, ErrForbidden
	}
	p, err := a.GetPerson(tree, id)
	if err != nil {
		return nil, err
	}
	setString(&p.FirstName, patch.FirstName)
	setString(&p.LastName, patch.LastName)
	setString(&p.LNPrefix, patch.LNPrefix)
	setString(&p.Prefix, patch.Prefix)
	setString(&p.Suffix, patch.Suffix)
	setString(&p.Nickname, patch.Nickname)
	setString(&p.Sex, patch.Sex)
	setString(&p.BirthDate, patch.BirthDate)
	setString(&p.BirthPlace, patch.BirthPlace)
	setString(&p.DeathDate, patch.DeathDate)
	setString(&p.DeathPlace, patch.DeathPlace)
	setString(&p.BurialDate, patch.BurialDate)
	setString(&p.BurialPlace, patch.BurialPlace)
	setString(&p.BaptDate, patch.BaptDate)
	setString(&p.BaptPlace, patch.BaptPlace)
	setString(&p.Famc, patch.Famc)
	if patch.Living != nil {
		p.Living = *patch.Living
	}
	if patch.Private != nil {
		p.Private = *patch.Private
	}
	if errs := a.validatePerson(p); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	p.ChangedBy = actor.Name
	if err := a.DB.UpdatePerson(p); err != nil {
		return nil, storageErr("actualitzant persona", "persona", id, err)
	}
	return p, nil
}

func (a *App) DeletePerson(actor Actor, tree, id string) error {
	if !actor.CanWrite() {
		return ErrForbidden
	}
	ok, err := a.DB.DeletePerson(tree, id)
	if err != nil {
		return storageErr("esborrant persona", "persona", id, err)
	}
	if !ok {
		return &NotFoundError{Kind: "persona", ID: id}
	}
	Infof("persona %s esborrada de %s per %s", id, tree, actor.Name)
	return nil
}

// personLookup carrega totes les persones de l'arbre indexades per ID.
func (a *App) personLookup(tree string) (map[string]*db.Person, error) {
	persons, err := a.ListPersons(tree)
	if err != nil {
		return nil, err
	}
	res := make(map[string]*db.Person, len(persons))
	for i := range persons {
		res[persons[i].PersonID] = &persons[i]
	}
	return res, nil
}

// FixDates torna a normalitzar les dates de persones, famílies i esdeveniments
// de l'arbre i retorna quants registres han canviat.
func (a *App) FixDates(actor Actor, tree string) (int, error) {
	if !actor.CanWrite() {
		return 0, ErrForbidden
	}
	changed := 0
	persons, err := a.ListPersons(tree)
	if err != nil {
		return 0, err
	}
	for i := range persons {
		p := persons[i]
		before := p
		var errs []string
		a.fillPersonDates(&p, &errs)
		if len(errs) > 0 || p == before {
			continue
		}
		p.ChangedBy = actor.Name
		if err := a.DB.UpdatePerson(&p); err != nil {
			return changed, storageErr("corregint dates", "persona", p.PersonID, err)
		}
		changed++
	}

	families, err := a.ListFamilies(tree)
	if err != nil {
		return changed, err
	}
	for i := range families {
		f := families[i]
		before := f
		var errs []string
		a.fillFamilyDates(&f, &errs)
		if len(errs) > 0 || f == before {
			continue
		}
		f.ChangedBy = actor.Name
		if err := a.DB.UpdateFamily(&f); err != nil {
			return changed, storageErr("corregint dates", "família", f.FamilyID, err)
		}
		changed++
	}

	events, err := a.DB.ListTreeEvents(tree)
	if err != nil {
		return changed, storageErr("corregint dates", "arbre", tree, err)
	}
	for _, e := range events {
		r := a.Dates.Normalize(e.EventDate)
		if (a.Dates.Strict && r.Impossible()) || (r.Display == e.EventDate && r.Sortable == e.EventDateTr) {
			continue
		}
		if err := a.DB.UpdateEventDate(e.ID, r.Display, r.Sortable); err != nil {
			return changed, storageErr("corregint dates", "esdeveniment", fmt.Sprint(e.ID), err)
		}
		changed++
	}
	Infof("fix-dates %s: %d registres actualitzats", tree, changed)
	return changed, nil
}

// RebuildSoundex recalcula la clau soundex de totes les persones de l'arbre.
func (a *App) RebuildSoundex(actor Actor, tree string) (int, error) {
	if !actor.CanWrite() {
		return 0, ErrForbidden
	}
	persons, err := a.ListPersons(tree)
	if err != nil {
		return 0, err
	}
	changed := 0
	for i := range persons {
		p := persons[i]
		code := Soundex(p.LastName)
		if code == p.Soundex {
			continue
		}
		p.Soundex = code
		if err := a.DB.UpdatePerson(&p); err != nil {
			return changed, storageErr("recalculant soundex", "persona", p.PersonID, err)
		}
		changed++
	}
	return changed, nil
}
