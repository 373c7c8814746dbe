package core

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/marcmoiagese/HeritagePress/db"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testTree = "main"

var viewer = Actor{Name: "lector", Role: RoleViewer}

func fixedNow() time.Time {
	return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
}

// newTestAppWith obre una BD SQLite temporal amb les migracions aplicades.
func newTestAppWith(t *testing.T, extra map[string]string) *App {
	t.Helper()
	cfg := map[string]string{
		"DB_ENGINE":    "sqlite",
		"DB_PATH":      filepath.Join(t.TempDir(), "core.db"),
		"AUTO_MIGRATE": "true",
	}
	for k, v := range extra {
		cfg[k] = v
	}
	database, err := db.NewDB(cfg)
	require.NoError(t, err, "no s'ha pogut obrir la BD de proves")
	app, err := NewApp(cfg, database)
	if err != nil {
		database.Close()
		t.Fatalf("NewApp: %v", err)
	}
	app.Dates.Now = fixedNow
	t.Cleanup(app.Close)
	return app
}

func newTestApp(t *testing.T) *App {
	return newTestAppWith(t, nil)
}

func mustCreatePerson(t *testing.T, a *App, in PersonInput) string {
	t.Helper()
	id, err := a.CreatePerson(LocalActor, testTree, in)
	require.NoError(t, err, "CreatePerson %+v", in)
	return id
}

func mustCreateFamily(t *testing.T, a *App, in FamilyInput) string {
	t.Helper()
	id, err := a.CreateFamily(LocalActor, testTree, in)
	require.NoError(t, err, "CreateFamily %+v", in)
	return id
}

// seedCouple crea I1 (John), I2 (Jane), el fill I3 i la família F1.
func seedCouple(t *testing.T, a *App) {
	t.Helper()
	mustCreatePerson(t, a, PersonInput{PersonID: "I1", FirstName: "John", LastName: "Smith", Sex: "M"})
	mustCreatePerson(t, a, PersonInput{PersonID: "I2", FirstName: "Jane", LastName: "Doe", Sex: "F"})
	mustCreatePerson(t, a, PersonInput{PersonID: "I3", FirstName: "Tom", LastName: "Smith", Sex: "M"})
	fam := mustCreateFamily(t, a, FamilyInput{Husband: "I1", Wife: "I2", MarrDate: "2 OCT 1822", MarrPlace: "Vic"})
	require.Equal(t, "F1", fam)
}
