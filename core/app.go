package core

import (
	"time"

	"github.com/marcmoiagese/HeritagePress/cnf"
	"github.com/marcmoiagese/HeritagePress/core/dates"
	"github.com/marcmoiagese/HeritagePress/db"
)

// App encapsula les dependències compartides: connexió, normalitzador de dates i claus.
type App struct {
	Config    map[string]string
	Settings  cnf.AppConfig
	DB        db.DB
	Dates     *dates.Normalizer
	Threshold int
	keys      []cnf.APIKey
}

// NewApp valida la configuració i munta l'App sobre una BD ja connectada.
func NewApp(cfg map[string]string, database db.DB) (*App, error) {
	settings, err := cnf.ParseConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &App{
		Config:    cfg,
		Settings:  settings,
		DB:        database,
		Dates:     dates.New(settings.DateStrict, settings.DateFuture, settings.DateMonthFormat),
		Threshold: settings.DuplicateThreshold,
		keys:      settings.APIKeys,
	}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// now fa servir el rellotge del normalitzador perquè els tests el puguin fixar.
func (a *App) now() time.Time {
	if a.Dates != nil && a.Dates.Now != nil {
		return a.Dates.Now()
	}
	return time.Now()
}
