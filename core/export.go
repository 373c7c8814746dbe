package core

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cacack/gedcom-go/encoder"
	"github.com/cacack/gedcom-go/gedcom"
)

// Formats d'exportació.
const (
	ExportCSV  = "csv"
	ExportJSON = "json"
	ExportXML  = "xml"
	ExportGED  = "ged"
)

// ExportFormats és la llista per validar i per a l'ajuda de la CLI.
var ExportFormats = []string{ExportCSV, ExportJSON, ExportXML, ExportGED}

// FamilyExport és una família desnormalitzada amb els noms dels cònjuges.
type FamilyExport struct {
	FamilyID    string   `json:"family_id" xml:"id,attr"`
	Husband     string   `json:"husband" xml:"husband"`
	HusbandName string   `json:"husband_name" xml:"husband_name"`
	Wife        string   `json:"wife" xml:"wife"`
	WifeName    string   `json:"wife_name" xml:"wife_name"`
	MarrDate    string   `json:"marr_date" xml:"marr_date"`
	MarrDateTr  string   `json:"marr_date_tr" xml:"marr_date_tr"`
	MarrPlace   string   `json:"marr_place" xml:"marr_place"`
	MarrType    string   `json:"marr_type" xml:"marr_type"`
	DivDate     string   `json:"div_date" xml:"div_date"`
	DivPlace    string   `json:"div_place" xml:"div_place"`
	Living      bool     `json:"living" xml:"living"`
	Private     bool     `json:"private" xml:"private"`
	Children    []string `json:"children" xml:"children>child"`
}

// FamilyExportDoc és l'arrel dels formats JSON i XML.
type FamilyExportDoc struct {
	XMLName  xml.Name       `json:"-" xml:"families"`
	Tree     string         `json:"tree" xml:"tree,attr"`
	Families []FamilyExport `json:"families" xml:"family"`
}

func validExportFormat(format string) bool {
	for _, f := range ExportFormats {
		if f == format {
			return true
		}
	}
	return false
}

// showAll: només un editor pot demanar els registres privats.
func showAll(actor Actor, includePrivate bool) bool {
	return includePrivate && actor.CanWrite()
}

// CollectFamilyExport prepara les files; sense includePrivate s'ometen les
// famílies privades, les vives perden dates i llocs i els noms segueixen la
// regla de privacitat.
func (a *App) CollectFamilyExport(actor Actor, tree string, includePrivate bool) (*FamilyExportDoc, error) {
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
	kids := map[string][]string{}
	for _, l := range links {
		kids[l.FamilyID] = append(kids[l.FamilyID], l.PersonID)
	}
	all := showAll(actor, includePrivate)
	name := func(id string) string {
		p, ok := persons[id]
		switch {
		case id == "":
			return ""
		case !ok:
			return id
		case all:
			return DisplayName(p)
		}
		return PersonLabel(p, actor)
	}

	doc := &FamilyExportDoc{Tree: tree, Families: []FamilyExport{}}
	for _, f := range families {
		if f.Private && !all {
			continue
		}
		if f.Living && !all {
			f = *withoutEventDetails(&f)
		}
		children := kids[f.FamilyID]
		if children == nil {
			children = []string{}
		}
		doc.Families = append(doc.Families, FamilyExport{
			FamilyID: f.FamilyID, Husband: f.Husband, HusbandName: name(f.Husband),
			Wife: f.Wife, WifeName: name(f.Wife),
			MarrDate: f.MarrDate, MarrDateTr: f.MarrDateTr, MarrPlace: f.MarrPlace, MarrType: f.MarrType,
			DivDate: f.DivDate, DivPlace: f.DivPlace, Living: f.Living, Private: f.Private,
			Children: children,
		})
	}
	return doc, nil
}

// ExportFamilies escriu les famílies de l'arbre a w en el format demanat.
func (a *App) ExportFamilies(actor Actor, tree, format string, includePrivate bool, w io.Writer) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if !validExportFormat(format) {
		return newValidationError(fmt.Sprintf("format invàlid: %q (%s)", format, strings.Join(ExportFormats, "|")))
	}
	if format == ExportGED {
		return a.exportGEDCOM(actor, tree, includePrivate, w)
	}
	doc, err := a.CollectFamilyExport(actor, tree, includePrivate)
	if err != nil {
		return err
	}
	switch format {
	case ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case ExportXML:
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}
	cw := csv.NewWriter(w)
	header := []string{"family_id", "husband", "husband_name", "wife", "wife_name", "marr_date", "marr_date_tr",
		"marr_place", "marr_type", "div_date", "div_place", "living", "private", "children"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, f := range doc.Families {
		row := []string{f.FamilyID, f.Husband, f.HusbandName, f.Wife, f.WifeName, f.MarrDate, f.MarrDateTr,
			f.MarrPlace, f.MarrType, f.DivDate, f.DivPlace, strconv.FormatBool(f.Living), strconv.FormatBool(f.Private),
			strings.Join(f.Children, " ")}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func xref(id string) string { return "@" + id + "@" }

func gedTag(level int, tag, value string) *gedcom.Tag {
	return &gedcom.Tag{Level: level, Tag: tag, Value: value}
}

func appendGedEvent(tags []*gedcom.Tag, tag, date, place string) []*gedcom.Tag {
	if date == "" && place == "" {
		return tags
	}
	tags = append(tags, gedTag(1, tag, ""))
	if date != "" {
		tags = append(tags, gedTag(2, "DATE", date))
	}
	if place != "" {
		tags = append(tags, gedTag(2, "PLAC", place))
	}
	return tags
}

// exportGEDCOM escriu l'arbre sencer (INDI i FAM) amb gedcom-go. Les persones
// privades per a l'actor només conserven l'ID i el nom "Private".
func (a *App) exportGEDCOM(actor Actor, tree string, includePrivate bool, w io.Writer) error {
	persons, err := a.ListPersons(tree)
	if err != nil {
		return err
	}
	families, err := a.ListFamilies(tree)
	if err != nil {
		return err
	}
	links, err := a.DB.ListChildLinks(tree)
	if err != nil {
		return storageErr("llistant fills", "arbre", tree, err)
	}
	all := showAll(actor, includePrivate)
	doc := &gedcom.Document{
		Header: &gedcom.Header{Version: "5.5.1", Encoding: "UTF-8"},
	}

	exported := map[string]bool{}
	for i := range persons {
		p := &persons[i]
		exported[p.PersonID] = true
		rec := &gedcom.Record{XRef: xref(p.PersonID), Type: gedcom.RecordTypeIndividual}
		if !all && IsPrivateFor(p, actor) {
			rec.Tags = []*gedcom.Tag{gedTag(1, "NAME", "Private //")}
			doc.Records = append(doc.Records, rec)
			continue
		}
		given := strings.TrimSpace(strings.Join([]string{p.Prefix, p.FirstName}, " "))
		surname := strings.TrimSpace(strings.Join([]string{p.LNPrefix, p.LastName}, " "))
		name := strings.TrimSpace(given + " /" + surname + "/ " + p.Suffix)
		rec.Tags = append(rec.Tags, gedTag(1, "NAME", name))
		if p.FirstName != "" {
			rec.Tags = append(rec.Tags, gedTag(2, "GIVN", p.FirstName))
		}
		if p.LastName != "" {
			rec.Tags = append(rec.Tags, gedTag(2, "SURN", p.LastName))
		}
		if p.Nickname != "" {
			rec.Tags = append(rec.Tags, gedTag(2, "NICK", p.Nickname))
		}
		if p.Sex != "" {
			rec.Tags = append(rec.Tags, gedTag(1, "SEX", p.Sex))
		}
		rec.Tags = appendGedEvent(rec.Tags, "BIRT", p.BirthDate, p.BirthPlace)
		rec.Tags = appendGedEvent(rec.Tags, "BAPM", p.BaptDate, p.BaptPlace)
		rec.Tags = appendGedEvent(rec.Tags, "DEAT", p.DeathDate, p.DeathPlace)
		rec.Tags = appendGedEvent(rec.Tags, "BURI", p.BurialDate, p.BurialPlace)
		if p.Famc != "" {
			rec.Tags = append(rec.Tags, gedTag(1, "FAMC", xref(p.Famc)))
		}
		if p.Fams != "" {
			rec.Tags = append(rec.Tags, gedTag(1, "FAMS", xref(p.Fams)))
		}
		doc.Records = append(doc.Records, rec)
	}

	kids := map[string][]string{}
	for _, l := range links {
		kids[l.FamilyID] = append(kids[l.FamilyID], l.PersonID)
	}
	for i := range families {
		f := &families[i]
		if f.Private && !all {
			continue
		}
		if f.Living && !all {
			f = withoutEventDetails(f)
		}
		rec := &gedcom.Record{XRef: xref(f.FamilyID), Type: gedcom.RecordTypeFamily}
		if f.Husband != "" && exported[f.Husband] {
			rec.Tags = append(rec.Tags, gedTag(1, "HUSB", xref(f.Husband)))
		}
		if f.Wife != "" && exported[f.Wife] {
			rec.Tags = append(rec.Tags, gedTag(1, "WIFE", xref(f.Wife)))
		}
		for _, c := range kids[f.FamilyID] {
			if exported[c] {
				rec.Tags = append(rec.Tags, gedTag(1, "CHIL", xref(c)))
			}
		}
		rec.Tags = appendGedEvent(rec.Tags, "MARR", f.MarrDate, f.MarrPlace)
		if f.MarrType != "" && (f.MarrDate != "" || f.MarrPlace != "") {
			rec.Tags = append(rec.Tags, gedTag(2, "TYPE", f.MarrType))
		}
		rec.Tags = appendGedEvent(rec.Tags, "DIV", f.DivDate, f.DivPlace)
		doc.Records = append(doc.Records, rec)
	}
	return encoder.Encode(w, doc)
}
