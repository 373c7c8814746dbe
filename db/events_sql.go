package db

import "database/sql"

const eventColumns = `id, gedcom, eventtype_id, owner_kind, owner_id, event_date, event_date_tr, event_place,
	age, agency, cause, info, address_id`

func scanEvent(rs rowScanner) (*Event, error) {
	var e Event
	if err := rs.Scan(&e.ID, &e.Gedcom, &e.EventTypeID, &e.Owner.Kind, &e.Owner.ID, &e.EventDate, &e.EventDateTr,
		&e.EventPlace, &e.Age, &e.Agency, &e.Cause, &e.Info, &e.AddressID); err != nil {
		return nil, err
	}
	return &e, nil
}

func (h sqlHelper) CreateEvent(e *Event) (int, error) {
	id, err := h.insertID(h.db, `INSERT INTO hp_events (gedcom, eventtype_id, owner_kind, owner_id, event_date,
		event_date_tr, event_place, age, agency, cause, info, address_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Gedcom, e.EventTypeID, e.Owner.Kind, e.Owner.ID, e.EventDate, e.EventDateTr, e.EventPlace,
		e.Age, e.Agency, e.Cause, e.Info, toNullInt64(e.AddressID))
	if err != nil {
		return 0, err
	}
	e.ID = id
	return id, nil
}

func (h sqlHelper) GetEvent(id int) (*Event, error) {
	row := h.db.QueryRow(h.q(`SELECT `+eventColumns+` FROM hp_events WHERE id = ?`), id)
	return scanEvent(row)
}

func (h sqlHelper) UpdateEventDate(id int, date, dateTr string) error {
	n, err := h.execCount(h.db, `UPDATE hp_events SET event_date = ?, event_date_tr = ? WHERE id = ?`, date, dateTr, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (h sqlHelper) queryEvents(query string, args ...interface{}) ([]Event, error) {
	rows, err := h.db.Query(h.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *e)
	}
	return res, rows.Err()
}

// ListEvents retorna els esdeveniments d'una persona o família en ordre cronològic.
func (h sqlHelper) ListEvents(gedcom string, owner EventOwner) ([]Event, error) {
	return h.queryEvents(`SELECT `+eventColumns+` FROM hp_events
		WHERE gedcom = ? AND owner_kind = ? AND owner_id = ? ORDER BY event_date_tr, id`, gedcom, owner.Kind, owner.ID)
}

func (h sqlHelper) ListTreeEvents(gedcom string) ([]Event, error) {
	return h.queryEvents(`SELECT `+eventColumns+` FROM hp_events WHERE gedcom = ? ORDER BY id`, gedcom)
}

func (h sqlHelper) DeleteEvent(gedcom string, id int) (bool, error) {
	n, err := h.execCount(h.db, `DELETE FROM hp_events WHERE id = ? AND gedcom = ?`, id, gedcom)
	return n > 0, err
}

func (h sqlHelper) ListEventTypes() ([]EventType, error) {
	rows, err := h.db.Query(h.q(`SELECT id, tag, description, kind FROM hp_eventtypes ORDER BY kind, tag`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []EventType
	for rows.Next() {
		var et EventType
		if err := rows.Scan(&et.ID, &et.Tag, &et.Description, &et.Kind); err != nil {
			return nil, err
		}
		res = append(res, et)
	}
	return res, rows.Err()
}

func (h sqlHelper) GetEventType(id int) (*EventType, error) {
	var et EventType
	err := h.db.QueryRow(h.q(`SELECT id, tag, description, kind FROM hp_eventtypes WHERE id = ?`), id).
		Scan(&et.ID, &et.Tag, &et.Description, &et.Kind)
	if err != nil {
		return nil, err
	}
	return &et, nil
}

func (h sqlHelper) CreateEventType(et *EventType) (int, error) {
	dup, err := h.exists(h.db, `SELECT COUNT(*) FROM hp_eventtypes WHERE tag = ? AND kind = ?`, et.Tag, et.Kind)
	if err != nil {
		return 0, err
	}
	if dup {
		return 0, ErrDuplicate
	}
	id, err := h.insertID(h.db, `INSERT INTO hp_eventtypes (tag, description, kind) VALUES (?, ?, ?)`,
		et.Tag, et.Description, et.Kind)
	if err != nil {
		return 0, err
	}
	et.ID = id
	return id, nil
}
