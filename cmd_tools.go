package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcmoiagese/HeritagePress/core"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica les migracions pendents",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()
		if err := app.DB.Migrate(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migracions aplicades")
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [TREE]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Comprova la integritat de les famílies d'un arbre",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := requireTree(args)
		if err != nil {
			return err
		}
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()
		issues, err := app.ValidateFamilies(tree)
		if err != nil {
			return err
		}
		for _, is := range issues {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", is.Type, is.Subject, is.Message)
		}
		if len(issues) > 0 {
			return fmt.Errorf("%d problemes d'integritat", len(issues))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cap problema")
		return nil
	},
}

var (
	renumberStart int
	renumberApply bool
)

var renumberCmd = &cobra.Command{
	Use:   "renumber [TREE]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Renumera les famílies (per defecte només mostra el pla)",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := requireTree(args)
		if err != nil {
			return err
		}
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()
		res, err := app.RenumberFamilies(core.LocalActor, tree, renumberStart, !renumberApply)
		if err != nil {
			return err
		}
		for _, c := range res.Mapping {
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", c.OldID, c.NewID)
		}
		verb := "canviarien"
		if !res.DryRun {
			verb = "s'han canviat"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d identificadors %s\n", res.ChangedCount, verb)
		return nil
	},
}

var (
	exportFormat  string
	exportPrivate bool
	exportOutput  string
)

var exportCmd = &cobra.Command{
	Use:   "export [TREE]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Exporta les famílies (csv, json, xml, ged)",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := requireTree(args)
		if err != nil {
			return err
		}
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()
		out := cmd.OutOrStdout()
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return app.ExportFamilies(core.LocalActor, tree, strings.ToLower(exportFormat), exportPrivate, out)
	},
}

var importCmd = &cobra.Command{
	Use:   "import-gedcom [TREE] <fitxer>",
	Short: "Importa un fitxer GEDCOM a l'arbre",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := args[len(args)-1]
		tree, err := requireTree(args[:len(args)-1])
		if err != nil {
			return err
		}
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()
		sum, err := app.ImportGedcom(core.LocalActor, tree, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "persones: %d, famílies: %d, relacions: %d, esdeveniments: %d\n",
			sum.Persons, sum.Families, sum.Relations, sum.Events)
		for _, w := range sum.Warnings {
			fmt.Fprintln(cmd.ErrOrStderr(), "avís:", w)
		}
		return nil
	},
}

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates [TREE]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Llista possibles persones duplicades",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := requireTree(args)
		if err != nil {
			return err
		}
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()
		list, err := app.FindDuplicates(core.LocalActor, tree)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	},
}

var fixDatesCmd = &cobra.Command{
	Use:   "fix-dates [TREE]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Recalcula les dates ordenables i el soundex de l'arbre",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := requireTree(args)
		if err != nil {
			return err
		}
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()
		n, err := app.FixDates(core.LocalActor, tree)
		if err != nil {
			return err
		}
		s, err := app.RebuildSoundex(core.LocalActor, tree)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "dates corregides: %d, soundex actualitzats: %d\n", n, s)
		return nil
	},
}

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key <clau>",
	Short: "Genera el hash bcrypt d'una clau per a API_KEYS",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := core.HashAPIKey(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

func init() {
	renumberCmd.Flags().IntVar(&renumberStart, "start", 1, "Primer número de família")
	renumberCmd.Flags().BoolVar(&renumberApply, "apply", false, "Aplica els canvis (sense, només simula)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", core.ExportJSON, "Format: csv, json, xml o ged")
	exportCmd.Flags().BoolVar(&exportPrivate, "private", false, "Inclou les dades privades")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "Fitxer de sortida")
}
