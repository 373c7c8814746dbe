package cnf

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type YamlConfig struct {
	Database struct {
		Type     string `yaml:"type"`
		Postgres struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
		} `yaml:"postgresql"`
		MySQL struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
		} `yaml:"mysql"`
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		AutoMigrate *bool `yaml:"auto_migrate"`
	} `yaml:"database"`
	Server struct {
		Listen string `yaml:"listen"`
	} `yaml:"server"`
	Log struct {
		Level       string `yaml:"level"`
		Environment string `yaml:"environment"`
	} `yaml:"log"`
	Dates struct {
		Strict      *bool  `yaml:"strict"`
		Future      string `yaml:"future"`
		MonthFormat string `yaml:"month_format"`
	} `yaml:"dates"`
	Duplicates struct {
		Threshold *int `yaml:"threshold"`
	} `yaml:"duplicates"`
	Auth struct {
		Keys []struct {
			Name string `yaml:"name"`
			Role string `yaml:"role"`
			Hash string `yaml:"hash"`
		} `yaml:"keys"`
	} `yaml:"auth"`
}

// LoadYAMLConfig llegeix la configuració YAML i la converteix al mateix mapa
// de claus que fa servir LoadConfig.
func LoadYAMLConfig(path string) (map[string]string, error) {
	config := &YamlConfig{}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error obrint fitxer de configuració: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("error decodificant YAML: %w", err)
	}

	cfg := config.Flatten()
	Config = cfg
	return cfg, nil
}

// Flatten converteix l'estructura YAML a claus DB_ENGINE, DB_PATH, ...
func (c *YamlConfig) Flatten() map[string]string {
	cfg := map[string]string{}
	set := func(key, value string) {
		if value != "" {
			cfg[key] = value
		}
	}
	port := func(p int) string {
		if p <= 0 {
			return ""
		}
		return strconv.Itoa(p)
	}

	engine := c.Database.Type
	if engine == "postgresql" {
		engine = "postgres"
	}
	set("DB_ENGINE", engine)
	set("DB_PATH", c.Database.SQLite.Path)
	switch engine {
	case "postgres":
		set("DB_HOST", c.Database.Postgres.Host)
		set("DB_PORT", port(c.Database.Postgres.Port))
		set("DB_USR", c.Database.Postgres.User)
		set("DB_PASS", c.Database.Postgres.Password)
		set("DB_NAME", c.Database.Postgres.DBName)
	case "mysql":
		set("DB_HOST", c.Database.MySQL.Host)
		set("DB_PORT", port(c.Database.MySQL.Port))
		set("DB_USR", c.Database.MySQL.User)
		set("DB_PASS", c.Database.MySQL.Password)
		set("DB_NAME", c.Database.MySQL.DBName)
	}
	if c.Database.AutoMigrate != nil {
		cfg["AUTO_MIGRATE"] = strconv.FormatBool(*c.Database.AutoMigrate)
	}
	set("LISTEN_ADDR", c.Server.Listen)
	set("LOG_LEVEL", c.Log.Level)
	set("ENVIRONMENT", c.Log.Environment)
	if c.Dates.Strict != nil {
		cfg["DATE_STRICT"] = strconv.FormatBool(*c.Dates.Strict)
	}
	set("DATE_FUTURE", c.Dates.Future)
	set("DATE_MONTH_FORMAT", c.Dates.MonthFormat)
	if c.Duplicates.Threshold != nil {
		cfg["DUPLICATE_THRESHOLD"] = strconv.Itoa(*c.Duplicates.Threshold)
	}
	if len(c.Auth.Keys) > 0 {
		keys := ""
		for i, k := range c.Auth.Keys {
			if i > 0 {
				keys += ","
			}
			keys += k.Name + ":" + k.Role + ":" + k.Hash
		}
		cfg["API_KEYS"] = keys
	}
	return cfg
}
