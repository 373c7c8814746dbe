package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marcmoiagese/HeritagePress/db"
)

type EventInput struct {
	OwnerKind   string `json:"owner_kind"`
	OwnerID     string `json:"owner_id"`
	EventTypeID int    `json:"eventtype_id"`
	Date        string `json:"date"`
	Place       string `json:"place"`
	Age         string `json:"age"`
	Agency      string `json:"agency"`
	Cause       string `json:"cause"`
	Info        string `json:"info"`
	AddressID   *int64 `json:"address_id"`
}

// AddEvent afegeix un esdeveniment a una persona o família. El tipus ha de ser
// del mateix àmbit que el propietari (I o F).
func (a *App) AddEvent(actor Actor, tree string, in EventInput) (int, error) {
	if !actor.CanWrite() {
		return 0, ErrForbidden
	}
	owner := db.EventOwner{Kind: strings.ToUpper(strings.TrimSpace(in.OwnerKind)), ID: strings.TrimSpace(in.OwnerID)}
	var errs []string
	switch owner.Kind {
	case db.OwnerPerson:
		if _, err := a.GetPerson(tree, owner.ID); err != nil {
			errs = append(errs, fmt.Sprintf("persona %s no existeix", owner.ID))
		}
	case db.OwnerFamily:
		if _, err := a.GetFamily(tree, owner.ID); err != nil {
			errs = append(errs, fmt.Sprintf("família %s no existeix", owner.ID))
		}
	default:
		errs = append(errs, fmt.Sprintf("owner_kind invàlid: %q (I|F)", in.OwnerKind))
	}
	et, err := a.DB.GetEventType(in.EventTypeID)
	switch {
	case err != nil:
		errs = append(errs, fmt.Sprintf("tipus d'esdeveniment %d no existeix", in.EventTypeID))
	case owner.Kind != "" && et.Kind != owner.Kind:
		errs = append(errs, fmt.Sprintf("el tipus %s no s'aplica a %s", et.Tag, owner.Kind))
	}
	e := &db.Event{Gedcom: tree, EventTypeID: in.EventTypeID, Owner: owner,
		EventPlace: strings.TrimSpace(in.Place), Age: strings.TrimSpace(in.Age),
		Agency: strings.TrimSpace(in.Agency), Cause: strings.TrimSpace(in.Cause), Info: strings.TrimSpace(in.Info)}
	a.applyDate("date", in.Date, &e.EventDate, &e.EventDateTr, &errs)
	if in.AddressID != nil {
		e.AddressID.Int64, e.AddressID.Valid = *in.AddressID, true
	}
	if len(errs) > 0 {
		return 0, &ValidationError{Errors: errs}
	}
	id, err := a.DB.CreateEvent(e)
	if err != nil {
		return 0, storageErr("creant esdeveniment", "esdeveniment", owner.ID, err)
	}
	return id, nil
}

func (a *App) ListEvents(tree string, owner db.EventOwner) ([]db.Event, error) {
	list, err := a.DB.ListEvents(tree, owner)
	if err != nil {
		return nil, storageErr("llistant esdeveniments", "propietari", owner.ID, err)
	}
	return list, nil
}

func (a *App) DeleteEvent(actor Actor, tree string, id int) error {
	if !actor.CanWrite() {
		return ErrForbidden
	}
	ok, err := a.DB.DeleteEvent(tree, id)
	if err != nil {
		return storageErr("esborrant esdeveniment", "esdeveniment", strconv.Itoa(id), err)
	}
	if !ok {
		return &NotFoundError{Kind: "esdeveniment", ID: strconv.Itoa(id)}
	}
	return nil
}

func (a *App) ListEventTypes() ([]db.EventType, error) {
	list, err := a.DB.ListEventTypes()
	if err != nil {
		return nil, storageErr("llistant tipus", "tipus", "", err)
	}
	return list, nil
}

// AddEventType afegeix un tipus al catàleg; el tag es guarda en majúscules.
func (a *App) AddEventType(actor Actor, tag, description, kind string) (int, error) {
	if !actor.CanWrite() {
		return 0, ErrForbidden
	}
	et := &db.EventType{Tag: strings.ToUpper(strings.TrimSpace(tag)), Description: strings.TrimSpace(description),
		Kind: strings.ToUpper(strings.TrimSpace(kind))}
	var errs []string
	if et.Tag == "" {
		errs = append(errs, "cal tag")
	}
	if et.Kind != db.OwnerPerson && et.Kind != db.OwnerFamily {
		errs = append(errs, fmt.Sprintf("kind invàlid: %q (I|F)", kind))
	}
	if len(errs) > 0 {
		return 0, &ValidationError{Errors: errs}
	}
	id, err := a.DB.CreateEventType(et)
	if err != nil {
		return 0, storageErr("creant tipus", "tipus", et.Tag, err)
	}
	return id, nil
}

// eventTypeByTag busca un tipus del catàleg pel tag GEDCOM i l'àmbit.
func (a *App) eventTypeByTag(tag, kind string) (*db.EventType, error) {
	list, err := a.ListEventTypes()
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Tag == tag && list[i].Kind == kind {
			return &list[i], nil
		}
	}
	return nil, &NotFoundError{Kind: "tipus", ID: tag}
}
