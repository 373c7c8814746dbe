package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// DB és la interfície comuna de tots els motors (sqlite, sqlite-pure, mysql, postgres).
type DB interface {
	Connect() error
	Close()
	Engine() string
	SQL() *sql.DB
	Migrate() error

	// Persones
	CreatePerson(p *Person) (int, error)
	GetPerson(gedcom, personID string) (*Person, error)
	UpdatePerson(p *Person) error
	DeletePerson(gedcom, personID string) (bool, error)
	ListPersons(gedcom string) ([]Person, error)
	LockPersonID(gedcom, personID, changedBy string) error

	// Identificadors
	ListIDsWithPrefix(kind IDKind, gedcom, prefix string) ([]string, error)
	IDExists(kind IDKind, gedcom, id string) (bool, error)

	// Famílies
	CreateFamily(f *Family) (int, error)
	GetFamilyByDBID(id int) (*Family, error)
	GetFamily(gedcom, familyID string) (*Family, error)
	UpdateFamily(f *Family) error
	DeleteFamily(gedcom, familyID string) (bool, error)
	ListFamilies(gedcom string) ([]Family, error)
	ListFamiliesBySpouse(gedcom, personID string) ([]Family, error)
	ListTrees() ([]string, error)

	// Fills
	AddChild(c *ChildLink) error
	RemoveChild(gedcom, familyID, personID string) (bool, error)
	ListChildren(gedcom, familyID string) ([]ChildLink, error)
	ListChildLinks(gedcom string) ([]ChildLink, error)

	// Operacions d'integritat (transaccionals)
	MergeFamilies(gedcom, source, target string, keepSource bool) (int, error)
	DeleteFamilies(gedcom string, familyIDs []string) (int, error)
	RenumberFamilies(gedcom string, changes []IDChange) error

	// Associacions
	CreateAssociation(a *Association, reverse *Association) (int, error)
	GetAssociation(id int) (*Association, error)
	ListAssociations(gedcom, personID string) ([]Association, error)
	DeleteAssociation(gedcom string, id int) (bool, error)

	// Branques
	CreateBranch(b *Branch) error
	UpdateBranch(b *Branch) error
	DeleteBranch(gedcom, branch string) (bool, error)
	GetBranch(gedcom, branch string) (*Branch, error)
	ListBranches(gedcom string) ([]Branch, error)
	ReplaceBranchLinks(gedcom, branch string, personIDs []string) error
	ListBranchLinks(gedcom, branch string) ([]BranchLink, error)

	// Esdeveniments
	CreateEvent(e *Event) (int, error)
	GetEvent(id int) (*Event, error)
	UpdateEventDate(id int, date, dateTr string) error
	ListEvents(gedcom string, owner EventOwner) ([]Event, error)
	ListTreeEvents(gedcom string) ([]Event, error)
	DeleteEvent(gedcom string, id int) (bool, error)
	ListEventTypes() ([]EventType, error)
	GetEventType(id int) (*EventType, error)
	CreateEventType(et *EventType) (int, error)
}

// NewDB obre una connexió segons DB_ENGINE i, si AUTO_MIGRATE=true, aplica les migracions.
func NewDB(config map[string]string) (DB, error) {
	var dbInstance DB
	engine := strings.ToLower(strings.TrimSpace(config["DB_ENGINE"]))
	if engine == "" {
		engine = "sqlite"
	}

	switch engine {
	case "sqlite":
		dbInstance = &SQLite{Path: config["DB_PATH"]}
	case "sqlite-pure":
		dbInstance = &SQLite{Path: config["DB_PATH"], Pure: true}
	case "postgres", "postgresql":
		dbInstance = &PostgreSQL{
			Host:   config["DB_HOST"],
			Port:   config["DB_PORT"],
			User:   config["DB_USR"],
			Pass:   config["DB_PASS"],
			DBName: config["DB_NAME"],
		}
	case "mysql":
		dbInstance = &MySQL{
			Host:   config["DB_HOST"],
			Port:   config["DB_PORT"],
			User:   config["DB_USR"],
			Pass:   config["DB_PASS"],
			DBName: config["DB_NAME"],
		}
	default:
		return nil, fmt.Errorf("motor de BD desconegut: %s", engine)
	}

	if err := dbInstance.Connect(); err != nil {
		return nil, err
	}

	if strings.EqualFold(strings.TrimSpace(config["AUTO_MIGRATE"]), "true") {
		if err := dbInstance.Migrate(); err != nil {
			dbInstance.Close()
			return nil, fmt.Errorf("error aplicant migracions amb %s: %w", engine, err)
		}
	}

	return dbInstance, nil
}
