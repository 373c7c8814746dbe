package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// seedLineage: I7+I8 -> I1; I1+I2 -> I3; I9+I10 -> I5; I3+I5 -> I6.
func seedLineage(t *testing.T, a *App) {
	t.Helper()
	people := map[string]string{
		"I1": "Smith", "I2": "Doe", "I3": "Smith", "I5": "Brown", "I6": "Smith",
		"I7": "Smith", "I8": "Black", "I9": "Brown", "I10": "White",
	}
	for id, last := range people {
		mustCreatePerson(t, a, PersonInput{PersonID: id, FirstName: "N" + id, LastName: last})
	}
	family := func(id, husband, wife, child string) {
		mustCreateFamily(t, a, FamilyInput{FamilyID: id, Husband: husband, Wife: wife})
		require.NoError(t, a.AddChild(LocalActor, testTree, id, child, 0))
	}
	family("F1", "I1", "I2", "I3")
	family("F2", "I3", "I5", "I6")
	family("F3", "I7", "I8", "I1")
	family("F4", "I9", "I10", "I5")
}

func TestApplyBranchWalksGenerations(t *testing.T) {
	a := newTestApp(t)
	seedLineage(t, a)

	code, err := a.AddBranch(LocalActor, testTree, BranchInput{Branch: "smiths", Description: "Branca Smith",
		PersonID: "I1", Agens: 1, Dgens: 2, Dagens: 1, IncludeSpouses: true})
	require.NoError(t, err)
	require.Equal(t, "smiths", code)

	ids, err := a.ApplyBranch(LocalActor, testTree, "smiths")
	require.NoError(t, err)
	require.Equal(t, []string{"I1", "I2", "I3", "I5", "I6", "I7", "I8"}, ids)

	members, err := a.BranchMembers(testTree, "smiths")
	require.NoError(t, err)
	require.ElementsMatch(t, ids, members)

	// dagens=2 arriba als pares de la nora
	require.NoError(t, a.UpdateBranch(LocalActor, testTree, BranchInput{Branch: "smiths", Description: "Branca Smith",
		PersonID: "I1", Agens: 1, Dgens: 2, Dagens: 2, IncludeSpouses: true}))
	ids, err = a.ApplyBranch(LocalActor, testTree, "smiths")
	require.NoError(t, err)
	require.Contains(t, ids, "I9")
	require.Contains(t, ids, "I10")
}

func TestApplyBranchWithoutSpouses(t *testing.T) {
	a := newTestApp(t)
	seedLineage(t, a)
	_, err := a.AddBranch(LocalActor, testTree, BranchInput{Branch: "direct", Description: "Línia directa",
		PersonID: "I1", Agens: 1, Dgens: 1, Dagens: 1})
	require.NoError(t, err)

	ids, err := a.ApplyBranch(LocalActor, testTree, "direct")
	require.NoError(t, err)
	require.Equal(t, []string{"I1", "I2", "I3", "I7", "I8"}, ids)
}

func TestAddBranchGeneratesCode(t *testing.T) {
	a := newTestApp(t)
	seedLineage(t, a)
	first, err := a.AddBranch(LocalActor, testTree, BranchInput{Description: "u", PersonID: "I1"})
	require.NoError(t, err)
	second, err := a.AddBranch(LocalActor, testTree, BranchInput{Description: "dos", PersonID: "I6"})
	require.NoError(t, err)
	require.Equal(t, "smith1", first)
	require.Equal(t, "smith2", second)

	id, err := a.GenerateBranchID(testTree, "Puig i Sàlas")
	require.NoError(t, err)
	require.Equal(t, "puig_i_salas1", id)
}

func TestBranchValidation(t *testing.T) {
	a := newTestApp(t)
	seedLineage(t, a)
	_, err := a.AddBranch(LocalActor, testTree, BranchInput{Branch: "dup", Description: "x", PersonID: "I1"})
	require.NoError(t, err)

	_, err = a.AddBranch(LocalActor, testTree, BranchInput{Branch: "dup", Description: "x", PersonID: "I1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	errs := a.ValidateBranch(testTree, BranchInput{Branch: "mal codi", PersonID: "I404", Agens: -1}, true)
	require.Len(t, errs, 4)

	require.NoError(t, a.DeleteBranch(LocalActor, testTree, "dup"))
	require.ErrorIs(t, a.DeleteBranch(LocalActor, testTree, "dup"), ErrNotFound)
	_, err = a.ApplyBranch(LocalActor, testTree, "dup")
	require.ErrorIs(t, err, ErrNotFound)
}
