package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/cacack/gedcom-go/decoder"
	"github.com/cacack/gedcom-go/gedcom"

	"github.com/marcmoiagese/HeritagePress/db"
)

// GedcomImportSummary resumeix una importació.
type GedcomImportSummary struct {
	Persons   int               `json:"persons"`
	Families  int               `json:"families"`
	Relations int               `json:"relations"`
	Events    int               `json:"events"`
	IDMap     map[string]string `json:"id_map"`
	Warnings  []string          `json:"warnings,omitempty"`
}

type gedcomEvent struct {
	Tag   string
	Date  string
	Place string
	Type  string
	Value string
}

type gedcomPerson struct {
	XRef      string
	GivenName string
	Surname   string
	Prefix    string
	Suffix    string
	Nickname  string
	Sex       string
	Events    []gedcomEvent
}

type gedcomFamily struct {
	XRef     string
	Husband  string
	Wife     string
	Children []string
	Events   []gedcomEvent
}

type gedcomParseResult struct {
	Persons  []gedcomPerson
	Families []gedcomFamily
}

// parseGedcom descodifica el fitxer amb gedcom-go i en treu persones i famílies.
func parseGedcom(r io.Reader) (*gedcomParseResult, error) {
	doc, err := decoder.Decode(r)
	if err != nil {
		return nil, err
	}
	res := &gedcomParseResult{}
	for _, rec := range doc.Records {
		if rec == nil {
			continue
		}
		switch rec.Type {
		case gedcom.RecordTypeIndividual:
			res.Persons = append(res.Persons, parseGedcomPerson(rec))
		case gedcom.RecordTypeFamily:
			res.Families = append(res.Families, parseGedcomFamily(rec))
		}
	}
	return res, nil
}

// splitGedcomName separa "Joan /Puig/ Jr." en nom, cognom i sufix.
func splitGedcomName(value string) (given, surname, suffix string) {
	start := strings.Index(value, "/")
	if start < 0 {
		return strings.TrimSpace(value), "", ""
	}
	given = strings.TrimSpace(value[:start])
	rest := value[start+1:]
	end := strings.Index(rest, "/")
	if end < 0 {
		return given, strings.TrimSpace(rest), ""
	}
	return given, strings.TrimSpace(rest[:end]), strings.TrimSpace(rest[end+1:])
}

// collectEvent agrupa els subtags DATE/PLAC/TYPE sota cada tag de nivell 1.
func collectEvent(tags []*gedcom.Tag, i int) (gedcomEvent, int) {
	ev := gedcomEvent{Tag: tags[i].Tag, Value: strings.TrimSpace(tags[i].Value)}
	j := i + 1
	for ; j < len(tags) && tags[j].Level > 1; j++ {
		if tags[j].Level != 2 {
			continue
		}
		switch tags[j].Tag {
		case "DATE":
			ev.Date = strings.TrimSpace(tags[j].Value)
		case "PLAC":
			ev.Place = strings.TrimSpace(tags[j].Value)
		case "TYPE":
			ev.Type = strings.TrimSpace(tags[j].Value)
		}
	}
	return ev, j
}

var gedcomPersonEvents = map[string]bool{
	"BIRT": true, "DEAT": true, "BURI": true, "BAPM": true, "CHR": true, "OCCU": true, "RESI": true,
}

var gedcomFamilyEvents = map[string]bool{"MARR": true, "DIV": true, "ENGA": true}

func parseGedcomPerson(rec *gedcom.Record) gedcomPerson {
	p := gedcomPerson{XRef: rec.XRef}
	nameSeen := false
	for i := 0; i < len(rec.Tags); {
		t := rec.Tags[i]
		if t.Level != 1 {
			i++
			continue
		}
		switch {
		case t.Tag == "NAME" && !nameSeen:
			nameSeen = true
			p.GivenName, p.Surname, p.Suffix = splitGedcomName(t.Value)
			j := i + 1
			for ; j < len(rec.Tags) && rec.Tags[j].Level > 1; j++ {
				sub := rec.Tags[j]
				switch sub.Tag {
				case "GIVN":
					p.GivenName = strings.TrimSpace(sub.Value)
				case "SURN":
					p.Surname = strings.TrimSpace(sub.Value)
				case "NPFX":
					p.Prefix = strings.TrimSpace(sub.Value)
				case "NSFX":
					p.Suffix = strings.TrimSpace(sub.Value)
				case "NICK":
					p.Nickname = strings.TrimSpace(sub.Value)
				}
			}
			i = j
		case t.Tag == "SEX":
			p.Sex = strings.ToUpper(strings.TrimSpace(t.Value))
			i++
		case gedcomPersonEvents[t.Tag]:
			var ev gedcomEvent
			ev, i = collectEvent(rec.Tags, i)
			p.Events = append(p.Events, ev)
		default:
			i++
		}
	}
	return p
}

func parseGedcomFamily(rec *gedcom.Record) gedcomFamily {
	f := gedcomFamily{XRef: rec.XRef}
	for i := 0; i < len(rec.Tags); {
		t := rec.Tags[i]
		if t.Level != 1 {
			i++
			continue
		}
		switch {
		case t.Tag == "HUSB":
			f.Husband = strings.TrimSpace(t.Value)
			i++
		case t.Tag == "WIFE":
			f.Wife = strings.TrimSpace(t.Value)
			i++
		case t.Tag == "CHIL":
			f.Children = append(f.Children, strings.TrimSpace(t.Value))
			i++
		case gedcomFamilyEvents[t.Tag]:
			var ev gedcomEvent
			ev, i = collectEvent(rec.Tags, i)
			f.Events = append(f.Events, ev)
		default:
			i++
		}
	}
	return f
}

// importID conserva l'ID del fitxer si té el format de l'arbre i està lliure;
// si no, n'assigna un de nou.
func (a *App) importID(tree string, kind db.IDKind, prefix, xref string) (string, error) {
	id := strings.Trim(xref, "@")
	pattern := personIDPattern
	if kind == db.IDFamily {
		pattern = familyIDPattern
	}
	if pattern.MatchString(id) {
		free, err := a.IsAvailable(tree, kind, id)
		if err != nil {
			return "", err
		}
		if free {
			return id, nil
		}
	}
	return a.NextID(tree, kind, prefix)
}

// ImportGedcom crea persones, famílies, vincles de fill i esdeveniments a partir
// d'un fitxer GEDCOM. Cada registre s'escriu per separat: els que fallen es
// reporten com a avisos i la importació continua.
func (a *App) ImportGedcom(actor Actor, tree string, r io.Reader) (*GedcomImportSummary, error) {
	if !actor.CanWrite() {
		return nil, ErrForbidden
	}
	tree = strings.TrimSpace(tree)
	if tree == "" {
		return nil, newValidationError("cal l'arbre")
	}
	parsed, err := parseGedcom(r)
	if err != nil {
		return nil, newValidationError("GEDCOM invàlid: " + err.Error())
	}
	sum := &GedcomImportSummary{IDMap: map[string]string{}}
	warn := func(format string, v ...interface{}) {
		sum.Warnings = append(sum.Warnings, fmt.Sprintf(format, v...))
	}

	for _, gp := range parsed.Persons {
		id, err := a.importID(tree, db.IDPerson, PersonPrefix, gp.XRef)
		if err != nil {
			return sum, err
		}
		in := PersonInput{
			PersonID:  id,
			FirstName: sanitizeImportedName(gp.GivenName),
			LastName:  sanitizeImportedName(gp.Surname),
			Prefix:    gp.Prefix,
			Suffix:    gp.Suffix,
			Nickname:  gp.Nickname,
			Sex:       gp.Sex,
		}
		died := false
		var extra []gedcomEvent
		for _, ev := range gp.Events {
			switch ev.Tag {
			case "BIRT":
				in.BirthDate, in.BirthPlace = ev.Date, ev.Place
			case "DEAT":
				in.DeathDate, in.DeathPlace = ev.Date, ev.Place
				died = true
			case "BURI":
				in.BurialDate, in.BurialPlace = ev.Date, ev.Place
				died = true
			case "BAPM", "CHR":
				in.BaptDate, in.BaptPlace = ev.Date, ev.Place
			default:
				extra = append(extra, ev)
			}
		}
		in.Living = !died && a.presumedLiving(in.BirthDate)
		if _, ok := normalizeSex(in.Sex); !ok {
			warn("%s: sexe desconegut %q", gp.XRef, in.Sex)
			in.Sex = "U"
		}
		if _, err := a.CreatePerson(actor, tree, in); err != nil {
			warn("%s: %v", gp.XRef, err)
			continue
		}
		sum.IDMap[gp.XRef] = id
		sum.Persons++
		sum.Events += a.importEvents(actor, tree, db.OwnerPerson, id, extra, warn)
	}

	for _, gf := range parsed.Families {
		id, err := a.importID(tree, db.IDFamily, FamilyPrefix, gf.XRef)
		if err != nil {
			return sum, err
		}
		in := FamilyInput{FamilyID: id, Husband: sum.IDMap[gf.Husband], Wife: sum.IDMap[gf.Wife]}
		if gf.Husband != "" && in.Husband == "" {
			warn("%s: marit %s desconegut", gf.XRef, gf.Husband)
		}
		if gf.Wife != "" && in.Wife == "" {
			warn("%s: muller %s desconeguda", gf.XRef, gf.Wife)
		}
		var extra []gedcomEvent
		for _, ev := range gf.Events {
			switch ev.Tag {
			case "MARR":
				in.MarrDate, in.MarrPlace, in.MarrType = ev.Date, ev.Place, ev.Type
			case "DIV":
				in.DivDate, in.DivPlace = ev.Date, ev.Place
			default:
				extra = append(extra, ev)
			}
		}
		if _, err := a.CreateFamily(actor, tree, in); err != nil {
			warn("%s: %v", gf.XRef, err)
			continue
		}
		sum.IDMap[gf.XRef] = id
		sum.Families++
		for _, child := range gf.Children {
			pid, ok := sum.IDMap[child]
			if !ok {
				warn("%s: fill %s desconegut", gf.XRef, child)
				continue
			}
			if err := a.AddChild(actor, tree, id, pid, 0); err != nil {
				warn("%s: fill %s: %v", gf.XRef, child, err)
				continue
			}
			sum.Relations++
		}
		sum.Events += a.importEvents(actor, tree, db.OwnerFamily, id, extra, warn)
	}
	Infof("GEDCOM importat a %s: %d persones, %d famílies, %d fills, %d esdeveniments, %d avisos",
		tree, sum.Persons, sum.Families, sum.Relations, sum.Events, len(sum.Warnings))
	return sum, nil
}

func (a *App) importEvents(actor Actor, tree, kind, owner string, events []gedcomEvent, warn func(string, ...interface{})) int {
	n := 0
	for _, ev := range events {
		et, err := a.eventTypeByTag(ev.Tag, kind)
		if err != nil {
			warn("%s: tipus %s no disponible", owner, ev.Tag)
			continue
		}
		_, err = a.AddEvent(actor, tree, EventInput{OwnerKind: kind, OwnerID: owner, EventTypeID: et.ID,
			Date: ev.Date, Place: ev.Place, Info: ev.Value})
		if err != nil {
			warn("%s: %s: %v", owner, ev.Tag, err)
			continue
		}
		n++
	}
	return n
}

// livingYears: sense data de defunció, algú nascut fa menys anys es considera viu.
const livingYears = 110

func (a *App) presumedLiving(birth string) bool {
	year, _, _, ok := splitSortable(a.Dates.Normalize(birth).Sortable)
	if !ok {
		return true
	}
	return a.now().Year()-year < livingYears
}

// sanitizeImportedName neteja el nom però el conserva si la neteja el buidaria.
func sanitizeImportedName(s string) string {
	if clean := sanitizeNameLiteral(s); clean != "" {
		return clean
	}
	return strings.TrimSpace(s)
}
