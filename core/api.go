package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marcmoiagese/HeritagePress/db"
)

type contextKey string

const (
	actorKey     contextKey = "actor"
	requestIDKey contextKey = "request_id"
)

// APIKeyHeader és la capçalera amb la clau de l'API.
const APIKeyHeader = "X-API-Key"

// maxImportBytes limita la mida d'un GEDCOM pujat per HTTP.
const maxImportBytes = 50 << 20

type envelope struct {
	OK       bool        `json:"ok"`
	Data     interface{} `json:"data,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
	Error    string      `json:"error,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeOK(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{OK: true, Data: data})
}

// writeOKWarn respon èxit amb els avisos de dates que no impedeixen l'escriptura.
func writeOKWarn(w http.ResponseWriter, status int, data interface{}, warnings []string) {
	writeJSON(w, status, envelope{OK: true, Data: data, Warnings: warnings})
}

// writeError tradueix la taxonomia d'errors a codis HTTP.
func writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Error: "validation failed", Errors: verr.Errors})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Error: err.Error()})
	case errors.Is(err, ErrConflict):
		writeJSON(w, http.StatusConflict, envelope{Error: err.Error()})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, envelope{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, envelope{Error: err.Error()})
	}
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return newValidationError("JSON invàlid: " + err.Error())
	}
	return nil
}

func actorFrom(r *http.Request) Actor {
	if a, ok := r.Context().Value(actorKey).(Actor); ok {
		return a
	}
	return Actor{Role: RoleViewer}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// requestLogger assigna un request id i registra mètode, ruta, estat i durada.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		sw.Header().Set("X-Request-ID", id)
		next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
		Infof("[%s] %s %s %d %s", id, r.Method, r.URL.Path, sw.status, time.Since(start))
	})
}

// requireActor resol l'actor per la clau; sense claus configurades tothom és editor.
func (a *App) requireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := a.ResolveActor(r.Header.Get(APIKeyHeader))
		if !ok {
			writeJSON(w, http.StatusUnauthorized, envelope{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

// Router munta l'API JSON.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, http.StatusOK, map[string]string{"engine": a.DB.Engine()})
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(a.requireActor)
		api.Get("/trees", a.handleListTrees)
		api.Get("/event-types", a.handleListEventTypes)
		api.Post("/event-types", a.handleCreateEventType)

		api.Route("/trees/{tree}", func(t chi.Router) {
			t.Get("/persons", a.handleListPersons)
			t.Post("/persons", a.handleCreatePerson)
			t.Get("/persons/{id}", a.handleGetPerson)
			t.Patch("/persons/{id}", a.handleUpdatePerson)
			t.Delete("/persons/{id}", a.handleDeletePerson)
			t.Post("/persons/{id}/lock", a.handleLockPerson)
			t.Get("/persons/{id}/families", a.handlePersonFamilies)
			t.Get("/persons/{id}/associations", a.handlePersonAssociations)
			t.Get("/persons/{id}/events", a.handleOwnerEvents(db.OwnerPerson))

			t.Get("/ids/next", a.handleNextID)
			t.Get("/ids/{id}/available", a.handleIDAvailable)

			t.Get("/families", a.handleListFamilies)
			t.Post("/families", a.handleCreateFamily)
			t.Post("/families/merge", a.handleMergeFamilies)
			t.Post("/families/delete", a.handleDeleteFamilies)
			t.Post("/families/renumber", a.handleRenumberFamilies)
			t.Get("/families/validate", a.handleValidateFamilies)
			t.Get("/families/export", a.handleExportFamilies)
			t.Get("/families/{id}", a.handleGetFamily)
			t.Patch("/families/{id}", a.handleUpdateFamily)
			t.Delete("/families/{id}", a.handleDeleteFamily)
			t.Post("/families/{id}/children", a.handleAddChild)
			t.Delete("/families/{id}/children/{person}", a.handleRemoveChild)
			t.Get("/families/{id}/events", a.handleOwnerEvents(db.OwnerFamily))

			t.Post("/associations", a.handleAddAssociation)
			t.Delete("/associations/{assocID}", a.handleDeleteAssociation)

			t.Get("/branches", a.handleListBranches)
			t.Post("/branches", a.handleAddBranch)
			t.Get("/branches/{branch}", a.handleGetBranch)
			t.Put("/branches/{branch}", a.handleUpdateBranch)
			t.Delete("/branches/{branch}", a.handleDeleteBranch)
			t.Post("/branches/{branch}/apply", a.handleApplyBranch)
			t.Get("/branches/{branch}/members", a.handleBranchMembers)

			t.Post("/events", a.handleAddEvent)
			t.Delete("/events/{eventID}", a.handleDeleteEvent)

			t.Get("/duplicates", a.handleDuplicates)
			t.Get("/stats", a.handleStats)
			t.Get("/stats/marriages", a.handleMarriageDistribution)
			t.Get("/stats/marriage-dates", a.handleCommonMarriageDates)
			t.Get("/stats/cross-tree", a.handleCrossTree)
			t.Post("/utilities/fix-dates", a.handleFixDates)
			t.Post("/utilities/soundex", a.handleRebuildSoundex)
			t.Post("/import/gedcom", a.handleImportGedcom)
		})
	})
	return r
}

func treeParam(r *http.Request) string { return chi.URLParam(r, "tree") }

func intParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, newValidationError(fmt.Sprintf("%s ha de ser un enter", name))
	}
	return n, nil
}

func (a *App) handleListTrees(w http.ResponseWriter, r *http.Request) {
	trees, err := a.DB.ListTrees()
	if err != nil {
		writeError(w, storageErr("llistant arbres", "arbre", "", err))
		return
	}
	if trees == nil {
		trees = []string{}
	}
	writeOK(w, http.StatusOK, trees)
}

func (a *App) handleListEventTypes(w http.ResponseWriter, r *http.Request) {
	list, err := a.ListEventTypes()
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, list)
}

func (a *App) handleCreateEventType(w http.ResponseWriter, r *http.Request) {
	var in db.EventType
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	id, err := a.AddEventType(actorFrom(r), in.Tag, in.Description, in.Kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]int{"id": id})
}

// Persones

func (a *App) handleListPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := a.ListPersons(treeParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	actor := actorFrom(r)
	views := make([]PersonView, 0, len(persons))
	for i := range persons {
		views = append(views, ViewPerson(&persons[i], actor))
	}
	writeOK(w, http.StatusOK, views)
}

func (a *App) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var in PersonInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	id, err := a.CreatePerson(actorFrom(r), treeParam(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOKWarn(w, http.StatusCreated, map[string]string{"person_id": id}, a.dateWarnings(in.dateFields()...))
}

func (a *App) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	p, err := a.GetPerson(treeParam(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, ViewPerson(p, actorFrom(r)))
}

func (a *App) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	var patch PersonPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	p, err := a.UpdatePerson(actorFrom(r), treeParam(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOKWarn(w, http.StatusOK, ViewPerson(p, actorFrom(r)), a.dateWarnings(patch.dateFields()...))
}

func (a *App) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := a.DeletePerson(actorFrom(r), treeParam(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (a *App) handleLockPerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.LockPersonID(actorFrom(r), treeParam(r), id); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]string{"person_id": id})
}

func (a *App) handlePersonFamilies(w http.ResponseWriter, r *http.Request) {
	fams, err := a.FindFamiliesBySpouse(treeParam(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	a.writeFamilies(w, r, fams)
}

func (a *App) handlePersonAssociations(w http.ResponseWriter, r *http.Request) {
	list, err := a.AssociationsForPerson(actorFrom(r), treeParam(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, list)
}

func (a *App) handleOwnerEvents(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := a.ListEvents(treeParam(r), db.EventOwner{Kind: kind, ID: chi.URLParam(r, "id")})
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []db.Event{}
		}
		writeOK(w, http.StatusOK, list)
	}
}

// Identificadors

func parseIDKind(s string) (db.IDKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "person":
		return db.IDPerson, nil
	case "family":
		return db.IDFamily, nil
	case "branch":
		return db.IDBranch, nil
	}
	return 0, newValidationError(fmt.Sprintf("kind invàlid: %q (person|family|branch)", s))
}

func (a *App) handleNextID(w http.ResponseWriter, r *http.Request) {
	kind, err := parseIDKind(r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, err)
		return
	}
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		switch kind {
		case db.IDPerson:
			prefix = PersonPrefix
		case db.IDFamily:
			prefix = FamilyPrefix
		default:
			prefix = "branch"
		}
	}
	id, err := a.NextID(treeParam(r), kind, prefix)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]string{"id": id})
}

func (a *App) handleIDAvailable(w http.ResponseWriter, r *http.Request) {
	kind, err := parseIDKind(r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, err)
		return
	}
	ok, err := a.IsAvailable(treeParam(r), kind, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]bool{"available": ok})
}

// Famílies

func (a *App) writeFamilies(w http.ResponseWriter, r *http.Request, fams []db.Family) {
	actor := actorFrom(r)
	views := make([]FamilyView, 0, len(fams))
	for i := range fams {
		v, err := a.ViewFamily(actor, &fams[i])
		if err != nil {
			writeError(w, err)
			return
		}
		views = append(views, v)
	}
	writeOK(w, http.StatusOK, views)
}

func (a *App) handleListFamilies(w http.ResponseWriter, r *http.Request) {
	fams, err := a.ListFamilies(treeParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	a.writeFamilies(w, r, fams)
}

func (a *App) handleCreateFamily(w http.ResponseWriter, r *http.Request) {
	var in FamilyInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	id, err := a.CreateFamily(actorFrom(r), treeParam(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOKWarn(w, http.StatusCreated, map[string]string{"family_id": id}, a.dateWarnings(in.dateFields()...))
}

func (a *App) handleGetFamily(w http.ResponseWriter, r *http.Request) {
	f, err := a.GetFamily(treeParam(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := a.ViewFamily(actorFrom(r), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, v)
}

func (a *App) handleUpdateFamily(w http.ResponseWriter, r *http.Request) {
	var patch FamilyPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	f, err := a.UpdateFamily(actorFrom(r), treeParam(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOKWarn(w, http.StatusOK, f, a.dateWarnings(patch.dateFields()...))
}

func (a *App) handleDeleteFamily(w http.ResponseWriter, r *http.Request) {
	if err := a.DeleteFamily(actorFrom(r), treeParam(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (a *App) handleAddChild(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PersonID string `json:"person_id"`
		Order    int    `json:"order"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := a.AddChild(actorFrom(r), treeParam(r), chi.URLParam(r, "id"), in.PersonID, in.Order); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]bool{"added": true})
}

func (a *App) handleRemoveChild(w http.ResponseWriter, r *http.Request) {
	err := a.RemoveChild(actorFrom(r), treeParam(r), chi.URLParam(r, "id"), chi.URLParam(r, "person"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]bool{"removed": true})
}

func (a *App) handleMergeFamilies(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Source     string `json:"source"`
		Target     string `json:"target"`
		KeepSource bool   `json:"keep_source"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	res, err := a.MergeFamilies(actorFrom(r), treeParam(r), in.Source, in.Target, in.KeepSource)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, res)
}

func (a *App) handleDeleteFamilies(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IDs []string `json:"ids"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	n, err := a.DeleteFamilies(actorFrom(r), treeParam(r), in.IDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]int{"deleted_count": n})
}

func (a *App) handleRenumberFamilies(w http.ResponseWriter, r *http.Request) {
	in := struct {
		Start  int  `json:"start"`
		DryRun bool `json:"dry_run"`
	}{Start: 1, DryRun: true}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	res, err := a.RenumberFamilies(actorFrom(r), treeParam(r), in.Start, in.DryRun)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, res)
}

func (a *App) handleValidateFamilies(w http.ResponseWriter, r *http.Request) {
	issues, err := a.ValidateFamilies(treeParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"issues": issues})
}

var exportContentTypes = map[string]string{
	ExportCSV:  "text/csv; charset=utf-8",
	ExportJSON: "application/json",
	ExportXML:  "application/xml",
	ExportGED:  "text/plain; charset=utf-8",
}

func (a *App) handleExportFamilies(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = ExportJSON
	}
	if !validExportFormat(format) {
		writeError(w, newValidationError(fmt.Sprintf("format invàlid: %q", format)))
		return
	}
	includePrivate, _ := strconv.ParseBool(r.URL.Query().Get("private"))
	var buf strings.Builder
	if err := a.ExportFamilies(actorFrom(r), treeParam(r), format, includePrivate, &buf); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", exportContentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", treeParam(r)+"."+format))
	_, _ = io.WriteString(w, buf.String())
}

// Associacions

func (a *App) handleAddAssociation(w http.ResponseWriter, r *http.Request) {
	var in AssociationInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	id, err := a.AddAssociation(actorFrom(r), treeParam(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]int{"id": id})
}

func (a *App) handleDeleteAssociation(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "assocID")
	if err == nil {
		err = a.DeleteAssociation(actorFrom(r), treeParam(r), id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Branques

func (a *App) handleListBranches(w http.ResponseWriter, r *http.Request) {
	list, err := a.ListBranches(treeParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []db.Branch{}
	}
	writeOK(w, http.StatusOK, list)
}

func (a *App) handleAddBranch(w http.ResponseWriter, r *http.Request) {
	var in BranchInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	code, err := a.AddBranch(actorFrom(r), treeParam(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]string{"branch": code})
}

func (a *App) handleGetBranch(w http.ResponseWriter, r *http.Request) {
	b, err := a.GetBranch(treeParam(r), chi.URLParam(r, "branch"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, b)
}

func (a *App) handleUpdateBranch(w http.ResponseWriter, r *http.Request) {
	var in BranchInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	in.Branch = chi.URLParam(r, "branch")
	if err := a.UpdateBranch(actorFrom(r), treeParam(r), in); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]string{"branch": in.Branch})
}

func (a *App) handleDeleteBranch(w http.ResponseWriter, r *http.Request) {
	if err := a.DeleteBranch(actorFrom(r), treeParam(r), chi.URLParam(r, "branch")); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (a *App) handleApplyBranch(w http.ResponseWriter, r *http.Request) {
	ids, err := a.ApplyBranch(actorFrom(r), treeParam(r), chi.URLParam(r, "branch"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"members": ids, "count": len(ids)})
}

func (a *App) handleBranchMembers(w http.ResponseWriter, r *http.Request) {
	ids, err := a.BranchMembers(treeParam(r), chi.URLParam(r, "branch"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, ids)
}

// Esdeveniments

func (a *App) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var in EventInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	id, err := a.AddEvent(actorFrom(r), treeParam(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOKWarn(w, http.StatusCreated, map[string]int{"id": id}, a.dateWarnings(dateField{"date", in.Date}))
}

func (a *App) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "eventID")
	if err == nil {
		err = a.DeleteEvent(actorFrom(r), treeParam(r), id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Utilitats i estadístiques

func (a *App) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	list, err := a.FindDuplicates(actorFrom(r), treeParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []DuplicateCandidate{}
	}
	writeOK(w, http.StatusOK, list)
}

func (a *App) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.FamilyStats(treeParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, st)
}

func (a *App) handleMarriageDistribution(w http.ResponseWriter, r *http.Request) {
	d, err := a.MarriageDistribution(treeParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, d)
}

func (a *App) handleCommonMarriageDates(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}
	list, err := a.CommonMarriageDates(treeParam(r), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, list)
}

func (a *App) handleCrossTree(w http.ResponseWriter, r *http.Request) {
	other := strings.TrimSpace(r.URL.Query().Get("other"))
	if other == "" {
		writeError(w, newValidationError("cal el paràmetre other"))
		return
	}
	list, err := a.CrossTreeDuplicates(treeParam(r), other)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, list)
}

func (a *App) handleFixDates(w http.ResponseWriter, r *http.Request) {
	n, err := a.FixDates(actorFrom(r), treeParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]int{"changed": n})
}

func (a *App) handleRebuildSoundex(w http.ResponseWriter, r *http.Request) {
	n, err := a.RebuildSoundex(actorFrom(r), treeParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]int{"changed": n})
}

func (a *App) handleImportGedcom(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	sum, err := a.ImportGedcom(actorFrom(r), treeParam(r), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, sum)
}
