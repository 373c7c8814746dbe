package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcmoiagese/HeritagePress/cnf"
	"github.com/marcmoiagese/HeritagePress/core"
	"github.com/marcmoiagese/HeritagePress/db"
)

var (
	configPath string
	treeFlag   string
)

var rootCmd = &cobra.Command{
	Use:           "heritagepress",
	Short:         "Backend genealògic: persones, famílies, branques i esdeveniments",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "cnf/config.cfg", "Fitxer de configuració (.cfg o .yaml)")
	rootCmd.PersistentFlags().StringVarP(&treeFlag, "tree", "t", "", "Arbre (gedcom) sobre el qual treballar")

	rootCmd.AddCommand(serveCmd, migrateCmd, validateCmd, renumberCmd, exportCmd,
		importCmd, duplicatesCmd, fixDatesCmd, hashKeyCmd)
}

// loadConfig llegeix el fitxer i prepara el logger.
func loadConfig() (map[string]string, error) {
	path := configPath
	if _, err := os.Stat(path); err != nil {
		// sense fitxer només es fa servir l'entorn
		path = ""
	}
	cfg, err := cnf.Load(path)
	if err != nil {
		return nil, err
	}
	settings, err := cnf.ParseConfig(cfg)
	if err != nil {
		return nil, err
	}
	core.SetLogLevel(settings.LogLevel)
	core.SetLogEnvironment(settings.Env)
	return cfg, nil
}

// openApp connecta la BD i munta l'App.
func openApp() (*core.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	database, err := db.NewDB(cfg)
	if err != nil {
		return nil, err
	}
	app, err := core.NewApp(cfg, database)
	if err != nil {
		database.Close()
		return nil, err
	}
	return app, nil
}

// requireTree pren l'arbre de l'argument posicional o, si no n'hi ha, de --tree.
func requireTree(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if treeFlag == "" {
		return "", fmt.Errorf("cal indicar l'arbre (TREE o --tree)")
	}
	return treeFlag, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
