package cnf

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config – Variable pública amb les opcions de configuració
var Config map[string]string

// EnvPrefix és el prefix de les variables d'entorn que sobreescriuen el fitxer.
const EnvPrefix = "HP_"

// AppConfig – Configuració tipada per facilitar l'ús
type AppConfig struct {
	DBEngine           string
	DBPath             string
	DBHost             string
	DBUser             string
	DBPass             string
	DBPort             string
	DBName             string
	AutoMigrate        bool
	LogLevel           string
	Env                string
	ListenAddr         string
	DateStrict         bool
	DateFuture         string
	DateMonthFormat    string
	DuplicateThreshold int
	APIKeys            []APIKey
}

// APIKey descriu una clau d'accés a l'API: nom, rol i hash bcrypt.
type APIKey struct {
	Name string
	Role string
	Hash string
}

// LoadConfig carrega el fitxer en format clau=valor, ignorant línies buides o comentaris.
func LoadConfig(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("no s'ha pogut obrir el fitxer de configuració: %w", err)
	}
	defer file.Close()

	config := make(map[string]string)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.Contains(line, "=") {
			parts := strings.SplitN(line, "=", 2)
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			if value != "" {
				commentIdx := -1
				for _, marker := range []string{" #", "\t#", " ;", "\t;"} {
					if idx := strings.Index(value, marker); idx >= 0 && (commentIdx == -1 || idx < commentIdx) {
						commentIdx = idx
					}
				}
				if commentIdx >= 0 {
					value = strings.TrimSpace(value[:commentIdx])
				}
			}
			config[key] = value
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error llegint config: %w", err)
	}

	Config = config
	return config, nil
}

// Load tria el format segons l'extensió del fitxer i hi aplica les variables HP_*.
// Un path buit retorna només el que ve de l'entorn.
func Load(path string) (map[string]string, error) {
	cfg := map[string]string{}
	if strings.TrimSpace(path) != "" {
		var err error
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			cfg, err = LoadYAMLConfig(path)
		default:
			cfg, err = LoadConfig(path)
		}
		if err != nil {
			return nil, err
		}
	}
	ApplyEnv(cfg, os.Environ())
	Config = cfg
	return cfg, nil
}

// ApplyEnv sobreescriu les claus amb les variables d'entorn HP_<CLAU>.
func ApplyEnv(cfg map[string]string, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimPrefix(parts[0], EnvPrefix)
		if key == "" {
			continue
		}
		cfg[key] = strings.TrimSpace(parts[1])
	}
}

// ParseConfig converteix map[string]string en AppConfig amb valors per defecte.
func ParseConfig(cfg map[string]string) (AppConfig, error) {
	ac := AppConfig{
		DBEngine:        strings.ToLower(strings.TrimSpace(cfg["DB_ENGINE"])),
		DBPath:          cfg["DB_PATH"],
		LogLevel:        strings.TrimSpace(cfg["LOG_LEVEL"]),
		Env:             strings.TrimSpace(cfg["ENVIRONMENT"]),
		DBHost:          cfg["DB_HOST"],
		DBUser:          cfg["DB_USR"],
		DBPass:          cfg["DB_PASS"],
		DBPort:          cfg["DB_PORT"],
		DBName:          cfg["DB_NAME"],
		ListenAddr:      strings.TrimSpace(cfg["LISTEN_ADDR"]),
		DateFuture:      strings.ToLower(strings.TrimSpace(cfg["DATE_FUTURE"])),
		DateMonthFormat: strings.ToLower(strings.TrimSpace(cfg["DATE_MONTH_FORMAT"])),
	}

	if ac.DBEngine == "" {
		ac.DBEngine = "sqlite"
	}
	if ac.DBPath == "" {
		ac.DBPath = "./heritagepress.db"
	}
	if ac.LogLevel == "" {
		ac.LogLevel = "info"
	}
	if ac.Env == "" {
		ac.Env = os.Getenv("ENVIRONMENT")
		if ac.Env == "" {
			ac.Env = "development"
		}
	}
	if ac.ListenAddr == "" {
		ac.ListenAddr = ":8080"
	}

	switch ac.DateFuture {
	case "":
		ac.DateFuture = "warn"
	case "warn", "accept":
	default:
		return ac, fmt.Errorf("DATE_FUTURE invàlid: %q (warn|accept)", ac.DateFuture)
	}
	switch ac.DateMonthFormat {
	case "":
		ac.DateMonthFormat = "abbr"
	case "abbr", "full", "numeric":
	default:
		return ac, fmt.Errorf("DATE_MONTH_FORMAT invàlid: %q (abbr|full|numeric)", ac.DateMonthFormat)
	}

	if v, ok := cfg["AUTO_MIGRATE"]; ok {
		ac.AutoMigrate, _ = strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := cfg["DATE_STRICT"]; ok {
		ac.DateStrict, _ = strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
	}

	ac.DuplicateThreshold = 70
	if v := strings.TrimSpace(cfg["DUPLICATE_THRESHOLD"]); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 100 {
			return ac, fmt.Errorf("DUPLICATE_THRESHOLD invàlid: %q (0-100)", v)
		}
		ac.DuplicateThreshold = n
	}

	keys, err := ParseAPIKeys(cfg["API_KEYS"])
	if err != nil {
		return ac, err
	}
	ac.APIKeys = keys

	return ac, nil
}

// ParseAPIKeys llegeix una llista "nom:rol:hash,nom:rol:hash".
func ParseAPIKeys(raw string) ([]APIKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var keys []APIKey
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.SplitN(item, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("API_KEYS: entrada mal formada %q", item)
		}
		role := strings.ToLower(strings.TrimSpace(parts[1]))
		if role != "viewer" && role != "editor" {
			return nil, fmt.Errorf("API_KEYS: rol desconegut %q", role)
		}
		keys = append(keys, APIKey{
			Name: strings.TrimSpace(parts[0]),
			Role: role,
			Hash: strings.TrimSpace(parts[2]),
		})
	}
	return keys, nil
}
