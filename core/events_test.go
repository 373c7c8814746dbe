package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marcmoiagese/HeritagePress/db"
)

func TestAddEventChecksOwnerAndKind(t *testing.T) {
	a := newTestApp(t)
	seedCouple(t, a)

	occu, err := a.eventTypeByTag("OCCU", db.OwnerPerson)
	require.NoError(t, err)
	addr := int64(12)
	id, err := a.AddEvent(LocalActor, testTree, EventInput{OwnerKind: "i", OwnerID: "I1", EventTypeID: occu.ID,
		Date: "abt 1850", Place: "Manresa", Info: "Pagès", AddressID: &addr})
	require.NoError(t, err)

	events, err := a.ListEvents(testTree, db.PersonOwner("I1"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, id, events[0].ID)
	require.Equal(t, "ABT 1850", events[0].EventDate)
	require.Equal(t, "1850-00-00", events[0].EventDateTr)
	require.Equal(t, int64(12), events[0].AddressID.Int64)

	marr, err := a.eventTypeByTag("MARR", db.OwnerFamily)
	require.NoError(t, err)
	_, err = a.AddEvent(LocalActor, testTree, EventInput{OwnerKind: "I", OwnerID: "I1", EventTypeID: marr.ID})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr, "un tipus de família no s'aplica a una persona")

	_, err = a.AddEvent(LocalActor, testTree, EventInput{OwnerKind: "F", OwnerID: "F7", EventTypeID: marr.ID})
	require.ErrorAs(t, err, &verr)
	_, err = a.AddEvent(LocalActor, testTree, EventInput{OwnerKind: "X", OwnerID: "I1", EventTypeID: 999})
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 2)

	require.ErrorIs(t, a.DeleteEvent(LocalActor, "altre", id), ErrNotFound, "un altre arbre no el pot esborrar")
	require.NoError(t, a.DeleteEvent(LocalActor, testTree, id))
	require.ErrorIs(t, a.DeleteEvent(LocalActor, testTree, id), ErrNotFound)
}

func TestEventTypeCatalog(t *testing.T) {
	a := newTestApp(t)
	types, err := a.ListEventTypes()
	require.NoError(t, err)
	require.Len(t, types, 9)

	id, err := a.AddEventType(LocalActor, "grad", "Graduation", "i")
	require.NoError(t, err)
	et, err := a.DB.GetEventType(id)
	require.NoError(t, err)
	require.Equal(t, "GRAD", et.Tag)
	require.Equal(t, db.OwnerPerson, et.Kind)

	_, err = a.AddEventType(LocalActor, "GRAD", "Again", "I")
	require.ErrorIs(t, err, ErrConflict)
	_, err = a.AddEventType(LocalActor, "", "x", "Z")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	_, err = a.AddEventType(viewer, "X", "x", "I")
	require.ErrorIs(t, err, ErrForbidden)
}
