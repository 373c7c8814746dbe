package core

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
)

// Actor és qui fa la petició.
type Actor struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// LocalActor s'utilitza quan no hi ha claus configurades i a la CLI.
var LocalActor = Actor{Name: "local", Role: RoleEditor}

func (a Actor) CanWrite() bool { return a.Role == RoleEditor }

// SeesLiving indica si l'actor pot veure el nom de persones vives.
func (a Actor) SeesLiving() bool { return a.Role == RoleEditor }

// AuthEnabled és fals quan no hi ha cap clau: mode local.
func (a *App) AuthEnabled() bool { return len(a.keys) > 0 }

// ResolveActor compara la clau amb els hashes bcrypt configurats.
func (a *App) ResolveActor(key string) (Actor, bool) {
	if !a.AuthEnabled() {
		return LocalActor, true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return Actor{}, false
	}
	for _, k := range a.keys {
		if bcrypt.CompareHashAndPassword([]byte(k.Hash), []byte(key)) == nil {
			return Actor{Name: k.Name, Role: k.Role}, true
		}
	}
	return Actor{}, false
}

// HashAPIKey genera el hash que cal posar a API_KEYS.
func HashAPIKey(key string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
