package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRequireTree(t *testing.T) {
	defer func() { treeFlag = "" }()

	treeFlag = ""
	if _, err := requireTree(nil); err == nil {
		t.Fatalf("sense arbre hauria de fallar")
	}
	if got, err := requireTree([]string{"main"}); err != nil || got != "main" {
		t.Fatalf("argument posicional: %q, %v", got, err)
	}
	treeFlag = "flag"
	if got, _ := requireTree(nil); got != "flag" {
		t.Fatalf("sense argument s'ha de fer servir --tree, tinc %q", got)
	}
	if got, _ := requireTree([]string{"main"}); got != "main" {
		t.Fatalf("l'argument té prioritat sobre --tree, tinc %q", got)
	}
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestCLITreeAsArgument(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.cfg")
	cfg := "DB_ENGINE=sqlite\nDB_PATH=" + filepath.Join(dir, "hp.db") + "\nAUTO_MIGRATE=true\nLOG_LEVEL=silent\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("no s'ha pogut escriure la config: %v", err)
	}
	ged := filepath.Join(dir, "arbre.ged")
	gedData := "0 HEAD\n1 GEDC\n2 VERS 5.5.1\n1 CHAR UTF-8\n0 @I1@ INDI\n1 NAME Joan /Puig/\n1 SEX M\n0 TRLR\n"
	if err := os.WriteFile(ged, []byte(gedData), 0o644); err != nil {
		t.Fatalf("no s'ha pogut escriure el GEDCOM: %v", err)
	}

	if out := runCLI(t, "--config", cfgPath, "import-gedcom", "main", ged); !strings.Contains(out, "persones: 1") {
		t.Fatalf("import-gedcom: %q", out)
	}
	if out := runCLI(t, "--config", cfgPath, "validate", "main"); !strings.Contains(out, "cap problema") {
		t.Fatalf("validate: %q", out)
	}
	if out := runCLI(t, "--config", cfgPath, "renumber", "main"); !strings.Contains(out, "0 identificadors canviarien") {
		t.Fatalf("renumber: %q", out)
	}
}
