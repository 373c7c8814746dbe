package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/marcmoiagese/HeritagePress/db"
)

var (
	ErrNotFound  = errors.New("no trobat")
	ErrConflict  = errors.New("conflicte")
	ErrForbidden = errors.New("accés denegat")
	// ErrIDExhausted: l'assignador ha esgotat els reintents sense trobar un ID lliure.
	ErrIDExhausted = errors.New("no s'ha pogut assignar un identificador lliure")
)

// ValidationError agrupa tots els errors de validació d'una petició; mai hi ha
// hagut escriptura quan es retorna.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validació: " + strings.Join(e.Errors, "; ")
}

func newValidationError(errs ...string) *ValidationError {
	return &ValidationError{Errors: errs}
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no trobat", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return "conflicte: " + e.Reason }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// StorageError embolcalla un error del motor de BD.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

// Issue és una troballa de la validació d'integritat.
type Issue struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Subject string `json:"subject,omitempty"`
}

const (
	IssueInvalidSpouse     = "invalid_spouse"
	IssueInvalidFamc       = "invalid_famc"
	IssueDuplicateFamilyID = "duplicate_family_id"
	IssueInvalidChild      = "invalid_child"
)

// storageErr tradueix els errors de db a la taxonomia de core.
func storageErr(op, kind, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNoRows):
		return &NotFoundError{Kind: kind, ID: id}
	case errors.Is(err, db.ErrDuplicate):
		return &ConflictError{Reason: fmt.Sprintf("%s %s ja existeix", kind, id)}
	}
	Errorf("%s: %v", op, err)
	return &StorageError{Op: op, Err: err}
}

func isDuplicate(err error) bool { return errors.Is(err, db.ErrDuplicate) }

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
