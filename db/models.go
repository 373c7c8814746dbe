package db

import (
	"database/sql"
	"errors"
)

// ErrDuplicate es retorna quan una fila ja existeix (p.ex. un fill ja vinculat a la família).
var ErrDuplicate = errors.New("registre duplicat")

// ErrNoRows és sql.ErrNoRows, reexportat per comoditat dels cridadors.
var ErrNoRows = sql.ErrNoRows

type Person struct {
	ID           int    `json:"id"`
	Gedcom       string `json:"gedcom"`
	PersonID     string `json:"person_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	LNPrefix     string `json:"lnprefix"`
	Prefix       string `json:"prefix"`
	Suffix       string `json:"suffix"`
	Nickname     string `json:"nickname"`
	Sex          string `json:"sex"`
	BirthDate    string `json:"birth_date"`
	BirthDateTr  string `json:"birth_date_tr"`
	BirthPlace   string `json:"birth_place"`
	DeathDate    string `json:"death_date"`
	DeathDateTr  string `json:"death_date_tr"`
	DeathPlace   string `json:"death_place"`
	BurialDate   string `json:"burial_date"`
	BurialDateTr string `json:"burial_date_tr"`
	BurialPlace  string `json:"burial_place"`
	BaptDate     string `json:"bapt_date"`
	BaptDateTr   string `json:"bapt_date_tr"`
	BaptPlace    string `json:"bapt_place"`
	Living       bool   `json:"living"`
	Private      bool   `json:"private"`
	Famc         string `json:"famc"`
	Fams         string `json:"fams"`
	Soundex      string `json:"soundex"`
	Placeholder  bool   `json:"-"`
	ChangedBy    string `json:"changed_by"`
	ChangedAt    string `json:"changed_at"`
}

type Family struct {
	ID         int    `json:"id"`
	Gedcom     string `json:"gedcom"`
	FamilyID   string `json:"family_id"`
	Husband    string `json:"husband"`
	Wife       string `json:"wife"`
	MarrDate   string `json:"marr_date"`
	MarrDateTr string `json:"marr_date_tr"`
	MarrPlace  string `json:"marr_place"`
	MarrType   string `json:"marr_type"`
	DivDate    string `json:"div_date"`
	DivDateTr  string `json:"div_date_tr"`
	DivPlace   string `json:"div_place"`
	Living     bool   `json:"living"`
	Private    bool   `json:"private"`
	ChangedBy  string `json:"changed_by"`
	ChangedAt  string `json:"changed_at"`
}

// ChildLink vincula una persona (fill) a una família.
type ChildLink struct {
	ID          int    `json:"id"`
	Gedcom      string `json:"gedcom"`
	FamilyID    string `json:"family_id"`
	PersonID    string `json:"person_id"`
	OrderNum    int    `json:"ordernum"`
	ParentOrder bool   `json:"parent_order"`
}

type Association struct {
	ID           int    `json:"id"`
	Gedcom       string `json:"gedcom"`
	PersonID     string `json:"person_id"`
	PassocID     string `json:"passoc_id"`
	Relationship string `json:"relationship"`
	RelType      string `json:"reltype"`
}

type Branch struct {
	Gedcom         string `json:"gedcom"`
	Branch         string `json:"branch"`
	Description    string `json:"description"`
	PersonID       string `json:"person_id"`
	Agens          int    `json:"agens"`
	Dgens          int    `json:"dgens"`
	Dagens         int    `json:"dagens"`
	IncludeSpouses bool   `json:"inclspouses"`
	ChangedBy      string `json:"changed_by"`
	ChangedAt      string `json:"changed_at"`
}

type BranchLink struct {
	ID       int    `json:"id"`
	Gedcom   string `json:"gedcom"`
	Branch   string `json:"branch"`
	PersonID string `json:"person_id"`
}

// Tipus de propietari d'un esdeveniment.
const (
	OwnerPerson = "I"
	OwnerFamily = "F"
)

// EventOwner identifica a qui pertany un esdeveniment: una persona o una família.
type EventOwner struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func PersonOwner(id string) EventOwner { return EventOwner{Kind: OwnerPerson, ID: id} }
func FamilyOwner(id string) EventOwner { return EventOwner{Kind: OwnerFamily, ID: id} }

type Event struct {
	ID          int           `json:"id"`
	Gedcom      string        `json:"gedcom"`
	EventTypeID int           `json:"eventtype_id"`
	Owner       EventOwner    `json:"owner"`
	EventDate   string        `json:"event_date"`
	EventDateTr string        `json:"event_date_tr"`
	EventPlace  string        `json:"event_place"`
	Age         string        `json:"age"`
	Agency      string        `json:"agency"`
	Cause       string        `json:"cause"`
	Info        string        `json:"info"`
	AddressID   sql.NullInt64 `json:"-"`
}

type EventType struct {
	ID          int    `json:"id"`
	Tag         string `json:"tag"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
}

// IDKind selecciona la taula i la columna d'un identificador de l'arbre.
type IDKind int

const (
	IDPerson IDKind = iota
	IDFamily
	IDBranch
)

// IDChange és una entrada del mapa de renumeració old → new.
type IDChange struct {
	OldID string `json:"old_id"`
	NewID string `json:"new_id"`
}
