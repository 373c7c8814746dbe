package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReverseAssociationSurvivesPrimaryDelete(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)

	id, err := a.AddAssociation(LocalActor, testTree, AssociationInput{
		PersonID: "I1", PassocID: "I2", Relationship: "Godparent", RelType: "I", CreateReverse: true,
	})
	require.NoError(t, err)

	fromI1, err := a.AssociationsForPerson(LocalActor, testTree, "I1")
	require.NoError(t, err)
	require.Len(t, fromI1, 1)
	require.Equal(t, "I2", fromI1[0].PassocID)
	require.Equal(t, "Godparent", fromI1[0].Relationship)
	require.Equal(t, "Jane Doe", fromI1[0].DisplayName)

	fromI2, err := a.AssociationsForPerson(LocalActor, testTree, "I2")
	require.NoError(t, err)
	require.Len(t, fromI2, 1)
	require.Equal(t, "I1", fromI2[0].PassocID)

	require.ErrorIs(t, a.DeleteAssociation(LocalActor, "altre", id), ErrNotFound, "un altre arbre no la pot esborrar")
	require.NoError(t, a.DeleteAssociation(LocalActor, testTree, id))
	_, err = a.GetAssociation(id)
	require.ErrorIs(t, err, ErrNotFound)

	fromI2, err = a.AssociationsForPerson(LocalActor, testTree, "I2")
	require.NoError(t, err)
	require.Len(t, fromI2, 1, "la inversa és independent")
	require.ErrorIs(t, a.DeleteAssociation(LocalActor, testTree, id), ErrNotFound)
}

func TestFamilyAssociationHasNoReverse(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	_, err := a.AddAssociation(LocalActor, testTree, AssociationInput{
		PersonID: "I3", PassocID: "F1", Relationship: "Witness", RelType: "f", CreateReverse: true,
	})
	require.NoError(t, err)

	list, err := a.AssociationsForPerson(LocalActor, testTree, "I3")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Family of John Smith and Jane Doe", list[0].DisplayName)

	none, err := a.AssociationsForPerson(LocalActor, testTree, "F1")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestAssociationValidation(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	_, err := a.AddAssociation(LocalActor, testTree, AssociationInput{PersonID: "I50", RelType: "X"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 4)
}

func TestAssociationDisplayNameFallbacks(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)
	mustCreateFamily(t, a, FamilyInput{FamilyID: "F2", Wife: "I2"})
	mustCreateFamily(t, a, FamilyInput{FamilyID: "F3"})

	cases := map[string]string{
		"F2": "Family of Jane Doe",
		"F3": "Family F3",
		"F9": "F9",
	}
	for id, want := range cases {
		got, err := a.AssociationDisplayName(LocalActor, testTree, id, AssocFamily)
		require.NoError(t, err)
		require.Equal(t, want, got, id)
	}
	got, err := a.AssociationDisplayName(LocalActor, testTree, "I77", AssocIndividual)
	require.NoError(t, err)
	require.Equal(t, "I77", got)
}
