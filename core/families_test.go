package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/marcmoiagese/HeritagePress/db"
)

func childIDs(t *testing.T, a *App, familyID string) []string {
	t.Helper()
	kids, err := a.ListChildren(testTree, familyID)
	require.NoError(t, err)
	ids := []string{}
	for _, k := range kids {
		ids = append(ids, k.PersonID)
	}
	return ids
}

func TestAddChildTwiceIsConflict(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)

	require.NoError(t, a.AddChild(LocalActor, testTree, "F1", "I3", 0))
	err := a.AddChild(LocalActor, testTree, "F1", "I3", 0)
	require.ErrorIs(t, err, ErrConflict)
	require.Equal(t, []string{"I3"}, childIDs(t, a, "F1"))

	p, err := a.GetPerson(testTree, "I3")
	require.NoError(t, err)
	require.Equal(t, "F1", p.Famc)
	husband, err := a.GetPerson(testTree, "I1")
	require.NoError(t, err)
	require.Equal(t, "F1", husband.Fams)
}

func TestAddChildValidation(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)

	var verr *ValidationError
	require.ErrorAs(t, a.AddChild(LocalActor, testTree, "F9", "I3", 0), &verr)
	require.ErrorAs(t, a.AddChild(LocalActor, testTree, "F1", "I99", 0), &verr)
	require.ErrorAs(t, a.AddChild(LocalActor, testTree, "F1", "I1", 0), &verr)
	require.Empty(t, childIDs(t, a, "F1"))
}

func TestChildOrder(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	mustCreatePerson(t, a, PersonInput{PersonID: "I4", FirstName: "Ann"})
	mustCreatePerson(t, a, PersonInput{PersonID: "I5", FirstName: "Bob"})

	require.NoError(t, a.AddChild(LocalActor, testTree, "F1", "I3", 0))
	require.NoError(t, a.AddChild(LocalActor, testTree, "F1", "I4", 0))
	require.NoError(t, a.AddChild(LocalActor, testTree, "F1", "I5", 0))
	require.Equal(t, []string{"I3", "I4", "I5"}, childIDs(t, a, "F1"))

	require.NoError(t, a.RemoveChild(LocalActor, testTree, "F1", "I4"))
	require.ErrorIs(t, a.RemoveChild(LocalActor, testTree, "F1", "I4"), ErrNotFound)
	require.Equal(t, []string{"I3", "I5"}, childIDs(t, a, "F1"))
}

func TestCreateFamilyValidation(t *testing.T) {
	a := newTestApp(t)
	mustCreatePerson(t, a, PersonInput{PersonID: "I1"})

	_, err := a.CreateFamily(LocalActor, testTree, FamilyInput{Husband: "I1", Wife: "I1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = a.CreateFamily(LocalActor, testTree, FamilyInput{Husband: "I999"})
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Errors[0], "I999")

	fams, err := a.ListFamilies(testTree)
	require.NoError(t, err)
	require.Empty(t, fams)
}

func TestFamilyViewAndSpouseSearch(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	living := true
	_, err := a.UpdatePerson(LocalActor, testTree, "I2", PersonPatch{Living: &living})
	require.NoError(t, err)

	f, err := a.GetFamily(testTree, "F1")
	require.NoError(t, err)
	require.Equal(t, "2 OCT 1822", f.MarrDate)
	require.Equal(t, "1822-10-02", f.MarrDateTr)
	require.Equal(t, EventInfo{Date: "2 OCT 1822", Sortable: "1822-10-02", Place: "Vic"}, MarriageInfo(f))

	v, err := a.ViewFamily(viewer, f)
	require.NoError(t, err)
	require.Equal(t, "John Smith", v.HusbandName)
	require.Equal(t, "[Private] (I2)", v.WifeName)

	fams, err := a.FindFamiliesBySpouse(testTree, "I2")
	require.NoError(t, err)
	require.Len(t, fams, 1)
	byDB, err := a.GetFamilyByDBID(fams[0].ID)
	require.NoError(t, err)
	require.Equal(t, "F1", byDB.FamilyID)
}

func TestFamilyViewHidesPrivateAndLivingFamilies(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	mustCreateFamily(t, a, FamilyInput{FamilyID: "F2", Husband: "I3", MarrDate: "3 MAR 1900", MarrPlace: "Secret", Private: true})
	living := true
	_, err := a.UpdateFamily(LocalActor, testTree, "F1", FamilyPatch{Living: &living})
	require.NoError(t, err)

	f2, err := a.GetFamily(testTree, "F2")
	require.NoError(t, err)
	v, err := a.ViewFamily(viewer, f2)
	require.NoError(t, err)
	require.True(t, v.Redacted)
	require.Equal(t, "[Private] (F2)", v.Label)
	require.Equal(t, "F2", v.FamilyID)
	require.Empty(t, v.MarrDate)
	require.Empty(t, v.MarrPlace)
	require.Empty(t, v.Husband)
	require.Empty(t, v.HusbandName)
	require.Empty(t, v.Children)
	require.Equal(t, "3 MAR 1900", f2.MarrDate, "la vista no toca el registre")

	f1, err := a.GetFamily(testTree, "F1")
	require.NoError(t, err)
	v, err = a.ViewFamily(viewer, f1)
	require.NoError(t, err)
	require.True(t, v.Redacted)
	require.Equal(t, "I1", v.Husband)
	require.Equal(t, "John Smith", v.HusbandName)
	require.Empty(t, v.MarrDate)
	require.Empty(t, v.MarrDateTr)
	require.Empty(t, v.MarrPlace)
	require.Equal(t, "Vic", f1.MarrPlace)

	v, err = a.ViewFamily(LocalActor, f2)
	require.NoError(t, err)
	require.False(t, v.Redacted)
	require.Equal(t, "Secret", v.MarrPlace)
}

func TestUpdateFamily(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	date, bad := "1830", "I77"
	f, err := a.UpdateFamily(LocalActor, testTree, "F1", FamilyPatch{DivDate: &date})
	require.NoError(t, err)
	require.Equal(t, "1830-00-00", f.DivDateTr)

	_, err = a.UpdateFamily(LocalActor, testTree, "F1", FamilyPatch{Wife: &bad})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDeleteFamilyRemovesChildLinks(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	require.NoError(t, a.AddChild(LocalActor, testTree, "F1", "I3", 0))
	_, err := a.AddEvent(LocalActor, testTree, EventInput{OwnerKind: "F", OwnerID: "F1", EventTypeID: 7, Date: "1822"})
	require.NoError(t, err)

	require.NoError(t, a.DeleteFamily(LocalActor, testTree, "F1"))
	require.Empty(t, childIDs(t, a, "F1"))
	events, err := a.ListEvents(testTree, db.FamilyOwner("F1"))
	require.NoError(t, err)
	require.Empty(t, events)
	p, err := a.GetPerson(testTree, "I3")
	require.NoError(t, err)
	require.Empty(t, p.Famc)
	require.ErrorIs(t, a.DeleteFamily(LocalActor, testTree, "F1"), ErrNotFound)
}

func TestMergeFamiliesMovesEveryChild(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	mustCreatePerson(t, a, PersonInput{PersonID: "I4", FirstName: "Ann"})
	mustCreatePerson(t, a, PersonInput{PersonID: "I5", FirstName: "Bob"})
	mustCreateFamily(t, a, FamilyInput{FamilyID: "F2", Husband: "I1", Wife: "I2"})
	require.NoError(t, a.AddChild(LocalActor, testTree, "F1", "I3", 0))
	require.NoError(t, a.AddChild(LocalActor, testTree, "F2", "I4", 0))
	require.NoError(t, a.AddChild(LocalActor, testTree, "F2", "I5", 0))

	res, err := a.MergeFamilies(LocalActor, testTree, "F2", "F1", false)
	require.NoError(t, err)
	require.Equal(t, 2, res.MergedCount)

	require.Equal(t, []string{"I3", "I4", "I5"}, childIDs(t, a, "F1"))
	require.Empty(t, childIDs(t, a, "F2"))
	_, err = a.GetFamily(testTree, "F2")
	require.ErrorIs(t, err, ErrNotFound)
	p, err := a.GetPerson(testTree, "I4")
	require.NoError(t, err)
	require.Equal(t, "F1", p.Famc)

	issues, err := a.ValidateFamilies(testTree)
	require.NoError(t, err)
	require.Empty(t, issues)
}

func TestMergeFamiliesKeepSourceAndErrors(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	mustCreateFamily(t, a, FamilyInput{FamilyID: "F2"})
	require.NoError(t, a.AddChild(LocalActor, testTree, "F2", "I3", 0))

	res, err := a.MergeFamilies(LocalActor, testTree, "F2", "F1", true)
	require.NoError(t, err)
	require.True(t, res.KeptSource)
	_, err = a.GetFamily(testTree, "F2")
	require.NoError(t, err, "amb keep_source la família origen es conserva")
	require.Equal(t, []string{"I3"}, childIDs(t, a, "F1"))

	_, err = a.MergeFamilies(LocalActor, testTree, "F1", "F1", false)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	_, err = a.MergeFamilies(LocalActor, testTree, "F8", "F1", false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFamiliesBatch(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	mustCreateFamily(t, a, FamilyInput{FamilyID: "F2"})

	n, err := a.DeleteFamilies(LocalActor, testTree, []string{"F1", "F2", "F3", " "})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	fams, err := a.ListFamilies(testTree)
	require.NoError(t, err)
	require.Empty(t, fams)

	_, err = a.DeleteFamilies(LocalActor, testTree, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestPlanRenumber(t *testing.T) {
	families := []db.Family{{FamilyID: "F10"}, {FamilyID: "F2"}, {FamilyID: "Fx"}, {FamilyID: "F1"}}
	got := PlanRenumber(families, 1)
	// F1 i F2 ja són correctes i no surten al pla
	want := []db.IDChange{{OldID: "F10", NewID: "F3"}, {OldID: "Fx", NewID: "F4"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("pla inesperat (-vull +tinc):\n%s", diff)
	}
}

func TestRenumberDryRunThenApply(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	mustCreateFamily(t, a, FamilyInput{FamilyID: "F5", Husband: "I3"})
	mustCreateFamily(t, a, FamilyInput{FamilyID: "F9"})
	mustCreatePerson(t, a, PersonInput{PersonID: "I4", FirstName: "Ann"})
	require.NoError(t, a.AddChild(LocalActor, testTree, "F9", "I4", 0))
	_, err := a.AddAssociation(LocalActor, testTree, AssociationInput{PersonID: "I4", PassocID: "F9",
		Relationship: "Witness", RelType: AssocFamily})
	require.NoError(t, err)

	dry, err := a.RenumberFamilies(viewer, testTree, 1, true)
	require.NoError(t, err)
	require.True(t, dry.DryRun)
	newIDs := map[string]bool{}
	for _, c := range dry.Mapping {
		require.False(t, newIDs[c.NewID], "new_id repetit: %s", c.NewID)
		newIDs[c.NewID] = true
	}
	require.Equal(t, []db.IDChange{{OldID: "F5", NewID: "F2"}, {OldID: "F9", NewID: "F3"}}, dry.Mapping)
	_, err = a.GetFamily(testTree, "F5")
	require.NoError(t, err, "el dry-run no escriu")

	_, err = a.RenumberFamilies(viewer, testTree, 1, false)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = a.RenumberFamilies(LocalActor, testTree, 0, true)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	res, err := a.RenumberFamilies(LocalActor, testTree, 1, false)
	require.NoError(t, err)
	require.Equal(t, 2, res.ChangedCount)

	require.Equal(t, []string{"I4"}, childIDs(t, a, "F3"))
	p, err := a.GetPerson(testTree, "I4")
	require.NoError(t, err)
	require.Equal(t, "F3", p.Famc)
	assocs, err := a.AssociationsForPerson(LocalActor, testTree, "I4")
	require.NoError(t, err)
	require.Len(t, assocs, 1)
	require.Equal(t, "F3", assocs[0].PassocID)

	issues, err := a.ValidateFamilies(testTree)
	require.NoError(t, err)
	require.Empty(t, issues)
}

func TestValidateFamiliesReportsDanglingSpouse(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	_, err := a.DB.CreateFamily(&db.Family{Gedcom: testTree, FamilyID: "F2", Husband: "I999"})
	require.NoError(t, err)

	issues, err := a.ValidateFamilies(testTree)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Equal(t, IssueInvalidSpouse, issues[0].Type)
	require.Equal(t, "I999", issues[0].Subject)
	require.Contains(t, issues[0].Message, "I999")
}

func TestValidateFamiliesReportsDanglingChildAndFamc(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	require.NoError(t, a.DB.AddChild(&db.ChildLink{Gedcom: testTree, FamilyID: "F1", PersonID: "I42"}))
	_, err := a.DB.CreatePerson(&db.Person{Gedcom: testTree, PersonID: "I8", Sex: "U", Famc: "F77"})
	require.NoError(t, err)

	issues, err := a.ValidateFamilies(testTree)
	require.NoError(t, err)
	types := map[string]string{}
	for _, is := range issues {
		types[is.Type] = is.Subject
	}
	require.Equal(t, map[string]string{IssueInvalidFamc: "I8", IssueInvalidChild: "I42"}, types)
}
