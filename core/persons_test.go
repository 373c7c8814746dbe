package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marcmoiagese/HeritagePress/db"
)

func TestCreatePersonAssignsSequentialIDs(t *testing.T) {
	a := newTestApp(t)
	mustCreatePerson(t, a, PersonInput{PersonID: "I5", FirstName: "Anna"})
	id := mustCreatePerson(t, a, PersonInput{FirstName: "Pere"})
	require.Equal(t, "I6", id)

	p, err := a.GetPerson(testTree, "I6")
	require.NoError(t, err)
	require.Equal(t, "U", p.Sex)
	require.Equal(t, "local", p.ChangedBy)
	require.NotEmpty(t, p.ChangedAt)
}

func TestNextIDNeverReturnsExistingID(t *testing.T) {
	a := newTestApp(t)
	for _, id := range []string{"I1", "I2", "I10"} {
		mustCreatePerson(t, a, PersonInput{PersonID: id, FirstName: "X"})
	}
	require.NoError(t, a.LockPersonID(LocalActor, testTree, "I11"))

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		id, err := a.NextID(testTree, db.IDPerson, PersonPrefix)
		require.NoError(t, err)
		free, err := a.IsAvailable(testTree, db.IDPerson, id)
		require.NoError(t, err)
		require.True(t, free, "NextID ha retornat %s, que ja existeix", id)
		require.False(t, seen[id])
		seen[id] = true
		mustCreatePerson(t, a, PersonInput{PersonID: id, FirstName: "Y"})
	}
	require.True(t, seen["I12"], "esperava començar per I12: %v", seen)
}

func TestNextIDIgnoresNonNumericSuffixes(t *testing.T) {
	a := newTestApp(t)
	_, err := a.DB.CreatePerson(&db.Person{Gedcom: testTree, PersonID: "IX7", Sex: "U"})
	require.NoError(t, err)
	id, err := a.NextID(testTree, db.IDPerson, PersonPrefix)
	require.NoError(t, err)
	require.Equal(t, "I1", id)
}

func TestCreatePersonValidation(t *testing.T) {
	a := newTestApp(t)
	_, err := a.CreatePerson(LocalActor, testTree, PersonInput{PersonID: "P1", Sex: "X", Famc: "F99"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 3)

	persons, err := a.ListPersons(testTree)
	require.NoError(t, err)
	require.Empty(t, persons, "una validació fallida no pot escriure res")
}

func TestCreatePersonDuplicateIsConflict(t *testing.T) {
	a := newTestApp(t)
	mustCreatePerson(t, a, PersonInput{PersonID: "I1"})
	_, err := a.CreatePerson(LocalActor, testTree, PersonInput{PersonID: "I1"})
	require.ErrorIs(t, err, ErrConflict)
}

func TestViewerCannotWrite(t *testing.T) {
	a := newTestApp(t)
	_, err := a.CreatePerson(viewer, testTree, PersonInput{FirstName: "Anna"})
	require.ErrorIs(t, err, ErrForbidden)
	require.ErrorIs(t, a.DeletePerson(viewer, testTree, "I1"), ErrForbidden)
}

func TestLockedIDIsHiddenUntilWritten(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.LockPersonID(LocalActor, testTree, "I4"))
	require.ErrorIs(t, a.LockPersonID(LocalActor, testTree, "I4"), ErrConflict)

	_, err := a.GetPerson(testTree, "I4")
	require.ErrorIs(t, err, ErrNotFound)
	free, err := a.IsAvailable(testTree, db.IDPerson, "I4")
	require.NoError(t, err)
	require.False(t, free)

	mustCreatePerson(t, a, PersonInput{PersonID: "I4", FirstName: "Marta"})
	p, err := a.GetPerson(testTree, "I4")
	require.NoError(t, err)
	require.Equal(t, "Marta", p.FirstName)
	require.False(t, p.Private, "el registre real substitueix la reserva")
}

func TestPersonDatesAreNormalized(t *testing.T) {
	a := newTestApp(t)
	mustCreatePerson(t, a, PersonInput{PersonID: "I1", BirthDate: "abt 1820", DeathDate: "2 October 1822"})
	p, err := a.GetPerson(testTree, "I1")
	require.NoError(t, err)
	require.Equal(t, "ABT 1820", p.BirthDate)
	require.Equal(t, "1820-00-00", p.BirthDateTr)
	require.Equal(t, "2 OCT 1822", p.DeathDate)
	require.Equal(t, "1822-10-02", p.DeathDateTr)
	require.Equal(t, "S530", Soundex("Smith"))
}

func TestStrictDatesRejectImpossible(t *testing.T) {
	a := newTestAppWith(t, map[string]string{"DATE_STRICT": "true"})
	_, err := a.CreatePerson(LocalActor, testTree, PersonInput{BirthDate: "31 FEB 1900"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUpdatePersonAppliesPatch(t *testing.T) {
	a := newTestApp(t)
	mustCreatePerson(t, a, PersonInput{PersonID: "I1", FirstName: "Joan", LastName: "Puig"})
	name, living := "Jaume", true
	p, err := a.UpdatePerson(LocalActor, testTree, "I1", PersonPatch{FirstName: &name, Living: &living})
	require.NoError(t, err)
	require.Equal(t, "Jaume", p.FirstName)
	require.Equal(t, "Puig", p.LastName)
	require.True(t, p.Living)

	_, err = a.UpdatePerson(LocalActor, testTree, "I9", PersonPatch{FirstName: &name})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPrivacyLabels(t *testing.T) {
	living := &db.Person{PersonID: "I1", FirstName: "Joan", LastName: "Puig", Living: true}
	private := &db.Person{PersonID: "I2", FirstName: "Anna", Private: true}
	dead := &db.Person{PersonID: "I3", Prefix: "Dr.", FirstName: "Pere", LNPrefix: "de", LastName: "Vic"}

	require.Equal(t, "Joan Puig", PersonLabel(living, LocalActor))
	require.Equal(t, "[Private] (I1)", PersonLabel(living, viewer))
	require.Equal(t, "[Private] (I2)", PersonLabel(private, LocalActor))
	require.Equal(t, "Dr. Pere de Vic", PersonLabel(dead, viewer))
	require.Equal(t, "I4", DisplayName(&db.Person{PersonID: "I4"}))

	v := ViewPerson(living, viewer)
	require.True(t, v.Redacted)
	require.Empty(t, v.FirstName)
	require.Equal(t, "I1", v.PersonID)
}

func TestDeletePersonClearsSpouseAndChildLinks(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	require.NoError(t, a.AddChild(LocalActor, testTree, "F1", "I3", 0))

	require.NoError(t, a.DeletePerson(LocalActor, testTree, "I1"))
	f, err := a.GetFamily(testTree, "F1")
	require.NoError(t, err)
	require.Empty(t, f.Husband)

	require.NoError(t, a.DeletePerson(LocalActor, testTree, "I3"))
	kids, err := a.ListChildren(testTree, "F1")
	require.NoError(t, err)
	require.Empty(t, kids)

	err = a.DeletePerson(LocalActor, testTree, "I3")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestDeletePersonRemovesAssociationsPointingToIt(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	_, err := a.AddAssociation(LocalActor, testTree, AssociationInput{
		PersonID: "I3", PassocID: "I1", Relationship: "Godparent", RelType: "I",
	})
	require.NoError(t, err)
	_, err = a.AddAssociation(LocalActor, testTree, AssociationInput{
		PersonID: "I3", PassocID: "F1", Relationship: "Witness", RelType: "F",
	})
	require.NoError(t, err)

	require.NoError(t, a.DeletePerson(LocalActor, testTree, "I1"))
	list, err := a.AssociationsForPerson(LocalActor, testTree, "I3")
	require.NoError(t, err)
	require.Len(t, list, 1, "només queda l'associació amb la família")
	require.Equal(t, "F1", list[0].PassocID)
}

func TestFixDatesRewritesStaleValues(t *testing.T) {
	a := newTestApp(t)
	_, err := a.DB.CreatePerson(&db.Person{Gedcom: testTree, PersonID: "I1", Sex: "U", BirthDate: "abt 1820"})
	require.NoError(t, err)
	mustCreatePerson(t, a, PersonInput{PersonID: "I2", BirthDate: "1900"})

	n, err := a.FixDates(LocalActor, testTree)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	p, err := a.GetPerson(testTree, "I1")
	require.NoError(t, err)
	require.Equal(t, "ABT 1820", p.BirthDate)
	require.Equal(t, "1820-00-00", p.BirthDateTr)

	n, err = a.FixDates(LocalActor, testTree)
	require.NoError(t, err)
	require.Zero(t, n, "una segona passada no ha de canviar res")
}

func TestRebuildSoundex(t *testing.T) {
	a := newTestApp(t)
	_, err := a.DB.CreatePerson(&db.Person{Gedcom: testTree, PersonID: "I1", Sex: "U", LastName: "Robert"})
	require.NoError(t, err)
	n, err := a.RebuildSoundex(LocalActor, testTree)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	p, err := a.GetPerson(testTree, "I1")
	require.NoError(t, err)
	require.Equal(t, "R163", p.Soundex)
}
