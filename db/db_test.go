package db

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestDB(t *testing.T) DB {
	t.Helper()
	d, err := NewDB(map[string]string{
		"DB_ENGINE":    "sqlite",
		"DB_PATH":      filepath.Join(t.TempDir(), "test.db"),
		"AUTO_MIGRATE": "true",
	})
	if err != nil {
		t.Fatalf("no s'ha pogut obrir la BD: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func mustPerson(t *testing.T, d DB, tree, id, first, last string) {
	t.Helper()
	if _, err := d.CreatePerson(&Person{Gedcom: tree, PersonID: id, FirstName: first, LastName: last, Sex: "U"}); err != nil {
		t.Fatalf("CreatePerson %s: %v", id, err)
	}
}

func TestNewDBUnknownEngine(t *testing.T) {
	if _, err := NewDB(map[string]string{"DB_ENGINE": "oracle"}); err == nil {
		t.Fatalf("esperava error per motor desconegut")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	d := newTestDB(t)
	if err := d.Migrate(); err != nil {
		t.Fatalf("segona migració: %v", err)
	}
	types, err := d.ListEventTypes()
	if err != nil {
		t.Fatalf("ListEventTypes: %v", err)
	}
	if len(types) != 9 {
		t.Fatalf("esperava 9 tipus d'esdeveniment sembrats, n'hi ha %d", len(types))
	}
}

func TestMigrationsLogThroughZap(t *testing.T) {
	obs, logs := observer.New(zap.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(obs))
	defer restore()

	newTestDB(t)
	found := false
	for _, e := range logs.FilterLoggerName("db").All() {
		if strings.Contains(e.Message, "goose") || strings.Contains(e.Message, "00001_schema") {
			found = true
		}
		if strings.HasSuffix(e.Message, "\n") {
			t.Errorf("missatge amb salt de línia final: %q", e.Message)
		}
	}
	if !found {
		t.Fatalf("els missatges de goose no passen per zap: %v", logs.All())
	}
}

func TestPersonLifecycle(t *testing.T) {
	d := newTestDB(t)
	mustPerson(t, d, "main", "I1", "Joan", "Puig")

	if _, err := d.CreatePerson(&Person{Gedcom: "main", PersonID: "I1"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("esperava ErrDuplicate, tinc %v", err)
	}
	p, err := d.GetPerson("main", "I1")
	if err != nil {
		t.Fatalf("GetPerson: %v", err)
	}
	if p.FirstName != "Joan" || p.ChangedAt == "" {
		t.Fatalf("persona inesperada: %+v", p)
	}
	if _, err := d.GetPerson("altre", "I1"); !errors.Is(err, ErrNoRows) {
		t.Fatalf("els arbres han d'estar aïllats, err=%v", err)
	}

	p.Living = true
	p.BirthDate = "2 OCT 1822"
	if err := d.UpdatePerson(p); err != nil {
		t.Fatalf("UpdatePerson: %v", err)
	}
	p, _ = d.GetPerson("main", "I1")
	if !p.Living || p.BirthDate != "2 OCT 1822" {
		t.Fatalf("update no aplicat: %+v", p)
	}

	ok, err := d.DeletePerson("main", "I1")
	if err != nil || !ok {
		t.Fatalf("DeletePerson: %v %v", ok, err)
	}
	ok, _ = d.DeletePerson("main", "I1")
	if ok {
		t.Fatalf("el segon esborrat no hauria de trobar res")
	}
}

func TestLockPersonIDIsOverwritten(t *testing.T) {
	d := newTestDB(t)
	if err := d.LockPersonID("main", "I7", "admin"); err != nil {
		t.Fatalf("LockPersonID: %v", err)
	}
	if err := d.LockPersonID("main", "I7", "admin"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("doble reserva: %v", err)
	}
	persons, _ := d.ListPersons("main")
	if len(persons) != 0 {
		t.Fatalf("les reserves no surten als llistats: %+v", persons)
	}
	mustPerson(t, d, "main", "I7", "Maria", "Vila")
	p, err := d.GetPerson("main", "I7")
	if err != nil || p.Placeholder || p.FirstName != "Maria" {
		t.Fatalf("la reserva no s'ha sobreescrit: %+v %v", p, err)
	}
}

func TestAddChildConflictAndOrder(t *testing.T) {
	d := newTestDB(t)
	for _, id := range []string{"I1", "I2", "I3", "I4"} {
		mustPerson(t, d, "main", id, id, "Test")
	}
	if _, err := d.CreateFamily(&Family{Gedcom: "main", FamilyID: "F1", Husband: "I1", Wife: "I2"}); err != nil {
		t.Fatalf("CreateFamily: %v", err)
	}
	husband, _ := d.GetPerson("main", "I1")
	if husband.Fams != "F1" {
		t.Fatalf("fams del marit = %q", husband.Fams)
	}

	if err := d.AddChild(&ChildLink{Gedcom: "main", FamilyID: "F1", PersonID: "I3"}); err != nil {
		t.Fatalf("AddChild: %v", err)
	}
	if err := d.AddChild(&ChildLink{Gedcom: "main", FamilyID: "F1", PersonID: "I3"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("esperava ErrDuplicate, tinc %v", err)
	}
	c := &ChildLink{Gedcom: "main", FamilyID: "F1", PersonID: "I4"}
	if err := d.AddChild(c); err != nil {
		t.Fatalf("AddChild I4: %v", err)
	}
	if c.OrderNum != 2 {
		t.Fatalf("ordre assignat = %d, vull 2", c.OrderNum)
	}
	kids, _ := d.ListChildren("main", "F1")
	if len(kids) != 2 {
		t.Fatalf("fills = %d", len(kids))
	}
	child, _ := d.GetPerson("main", "I3")
	if child.Famc != "F1" {
		t.Fatalf("famc = %q", child.Famc)
	}

	ok, err := d.RemoveChild("main", "F1", "I3")
	if err != nil || !ok {
		t.Fatalf("RemoveChild: %v %v", ok, err)
	}
	child, _ = d.GetPerson("main", "I3")
	if child.Famc != "" {
		t.Fatalf("famc hauria de quedar buit: %q", child.Famc)
	}
}

func TestDeleteFamilyCascades(t *testing.T) {
	d := newTestDB(t)
	mustPerson(t, d, "main", "I1", "A", "B")
	mustPerson(t, d, "main", "I3", "C", "B")
	d.CreateFamily(&Family{Gedcom: "main", FamilyID: "F1", Husband: "I1"})
	d.AddChild(&ChildLink{Gedcom: "main", FamilyID: "F1", PersonID: "I3"})
	if _, err := d.CreateEvent(&Event{Gedcom: "main", EventTypeID: 7, Owner: FamilyOwner("F1"), EventDate: "1850"}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	ok, err := d.DeleteFamily("main", "F1")
	if err != nil || !ok {
		t.Fatalf("DeleteFamily: %v %v", ok, err)
	}
	if kids, _ := d.ListChildLinks("main"); len(kids) != 0 {
		t.Fatalf("queden vincles: %+v", kids)
	}
	if evs, _ := d.ListEvents("main", FamilyOwner("F1")); len(evs) != 0 {
		t.Fatalf("queden esdeveniments: %+v", evs)
	}
	if _, err := d.GetPerson("main", "I3"); err != nil {
		t.Fatalf("les persones no s'esborren: %v", err)
	}
}

func TestMergeFamiliesMovesChildren(t *testing.T) {
	d := newTestDB(t)
	for _, id := range []string{"I1", "I2", "I3"} {
		mustPerson(t, d, "main", id, id, "X")
	}
	d.CreateFamily(&Family{Gedcom: "main", FamilyID: "F1"})
	d.CreateFamily(&Family{Gedcom: "main", FamilyID: "F2"})
	d.AddChild(&ChildLink{Gedcom: "main", FamilyID: "F1", PersonID: "I1"})
	d.AddChild(&ChildLink{Gedcom: "main", FamilyID: "F1", PersonID: "I2"})
	d.AddChild(&ChildLink{Gedcom: "main", FamilyID: "F2", PersonID: "I2"})

	moved, err := d.MergeFamilies("main", "F1", "F2", false)
	if err != nil {
		t.Fatalf("MergeFamilies: %v", err)
	}
	if moved != 1 {
		t.Fatalf("moguts = %d, vull 1", moved)
	}
	if _, err := d.GetFamily("main", "F1"); !errors.Is(err, ErrNoRows) {
		t.Fatalf("F1 hauria d'haver desaparegut: %v", err)
	}
	kids, _ := d.ListChildren("main", "F2")
	if len(kids) != 2 {
		t.Fatalf("F2 hauria de tenir 2 fills: %+v", kids)
	}
	if _, err := d.MergeFamilies("main", "F9", "F2", false); !errors.Is(err, ErrNoRows) {
		t.Fatalf("origen inexistent: %v", err)
	}
}

func TestRenumberFamiliesChained(t *testing.T) {
	d := newTestDB(t)
	mustPerson(t, d, "main", "I1", "A", "B")
	d.CreateFamily(&Family{Gedcom: "main", FamilyID: "F2", Husband: "I1"})
	d.CreateFamily(&Family{Gedcom: "main", FamilyID: "F3"})
	d.AddChild(&ChildLink{Gedcom: "main", FamilyID: "F3", PersonID: "I1"})

	err := d.RenumberFamilies("main", []IDChange{{OldID: "F2", NewID: "F1"}, {OldID: "F3", NewID: "F2"}})
	if err != nil {
		t.Fatalf("RenumberFamilies: %v", err)
	}
	p, _ := d.GetPerson("main", "I1")
	if p.Fams != "F1" || p.Famc != "F2" {
		t.Fatalf("referències no reescrites: fams=%q famc=%q", p.Fams, p.Famc)
	}
	kids, _ := d.ListChildren("main", "F2")
	if len(kids) != 1 || kids[0].PersonID != "I1" {
		t.Fatalf("vincles no reescrits: %+v", kids)
	}
}

func TestAssociationsAreIndependent(t *testing.T) {
	d := newTestDB(t)
	a := &Association{Gedcom: "main", PersonID: "I1", PassocID: "I2", Relationship: "Godparent", RelType: "I"}
	r := &Association{Gedcom: "main", PersonID: "I2", PassocID: "I1", Relationship: "Godparent", RelType: "I"}
	if _, err := d.CreateAssociation(a, r); err != nil {
		t.Fatalf("CreateAssociation: %v", err)
	}
	if ok, _ := d.DeleteAssociation("altre", a.ID); ok {
		t.Fatalf("no es pot esborrar des d'un altre arbre")
	}
	if ok, _ := d.DeleteAssociation("main", a.ID); !ok {
		t.Fatalf("no s'ha esborrat")
	}
	if _, err := d.GetAssociation(r.ID); err != nil {
		t.Fatalf("la inversa ha de sobreviure: %v", err)
	}
}

func TestBranchLinks(t *testing.T) {
	d := newTestDB(t)
	b := &Branch{Gedcom: "main", Branch: "puig", PersonID: "I1", Agens: 2}
	if err := d.CreateBranch(b); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := d.CreateBranch(b); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicada: %v", err)
	}
	if err := d.ReplaceBranchLinks("main", "puig", []string{"I1", "I2", "I1"}); err != nil {
		t.Fatalf("ReplaceBranchLinks: %v", err)
	}
	links, _ := d.ListBranchLinks("main", "puig")
	if len(links) != 2 {
		t.Fatalf("vincles = %+v", links)
	}
	if ok, _ := d.DeleteBranch("main", "puig"); !ok {
		t.Fatalf("DeleteBranch")
	}
	if links, _ := d.ListBranchLinks("main", "puig"); len(links) != 0 {
		t.Fatalf("els vincles s'havien d'esborrar: %+v", links)
	}
}

func TestFormatPlaceholders(t *testing.T) {
	got := formatPlaceholders("postgres", "SELECT * FROM t WHERE a = ? AND b = ?")
	if got != "SELECT * FROM t WHERE a = $1 AND b = $2" {
		t.Fatalf("got %q", got)
	}
	if got := formatPlaceholders("mysql", "a = ?"); got != "a = ?" {
		t.Fatalf("mysql no ha de canviar: %q", got)
	}
}
