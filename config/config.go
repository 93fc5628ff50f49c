package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Values are resolved in order:
// built-in defaults, optional config file, then environment (.env included).
type Config struct {
	PostgresHost     string `envconfig:"POSTGRES_HOST" yaml:"postgres_host" toml:"postgres_host" json:"postgres_host" validate:"required"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" yaml:"postgres_port" toml:"postgres_port" json:"postgres_port" validate:"required,numeric"`
	PostgresUser     string `envconfig:"POSTGRES_USER" yaml:"postgres_user" toml:"postgres_user" json:"postgres_user"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" yaml:"postgres_password" toml:"postgres_password" json:"postgres_password"`
	PostgresDB       string `envconfig:"POSTGRES_DB" yaml:"postgres_db" toml:"postgres_db" json:"postgres_db" validate:"required"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" yaml:"postgres_sslmode" toml:"postgres_sslmode" json:"postgres_sslmode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	PostgresTable    string `envconfig:"POSTGRES_TABLE" yaml:"postgres_table" toml:"postgres_table" json:"postgres_table" validate:"required"`
	DBMaxRetries     int    `envconfig:"DB_MAX_RETRIES" yaml:"db_max_retries" toml:"db_max_retries" json:"db_max_retries" validate:"gte=1,lte=20"`

	HTTPAddr       string `envconfig:"HTTP_ADDR" yaml:"http_addr" toml:"http_addr" json:"http_addr" validate:"required"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" yaml:"max_upload_bytes" toml:"max_upload_bytes" json:"max_upload_bytes" validate:"gt=0"`

	TopCustomers int    `envconfig:"TOP_CUSTOMERS" yaml:"top_customers" toml:"top_customers" json:"top_customers" validate:"gte=0"`
	ExportDir    string `envconfig:"EXPORT_DIR" yaml:"export_dir" toml:"export_dir" json:"export_dir"`
	LogLevel     string `envconfig:"LOG_LEVEL" yaml:"log_level" toml:"log_level" json:"log_level" validate:"oneof=trace debug info warn warning error"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		PostgresHost:    "localhost",
		PostgresPort:    "5432",
		PostgresUser:    "analyzer",
		PostgresDB:      "rental_db",
		PostgresSSLMode: "disable",
		PostgresTable:   "transactions",
		DBMaxRetries:    5,

		HTTPAddr:       ":8080",
		MaxUploadBytes: 32 << 20,

		TopCustomers: 5,
		ExportDir:    "./output",
		LogLevel:     "info",
	}
}

// Load reads the .env file, an optional config file (TOML, YAML or JSON) and
// the process environment, and returns a validated Config.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("config: read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	parts := []string{
		"host=" + quoteDSN(c.PostgresHost),
		"port=" + quoteDSN(c.PostgresPort),
		"dbname=" + quoteDSN(c.PostgresDB),
		"sslmode=" + quoteDSN(c.PostgresSSLMode),
	}
	if c.PostgresUser != "" {
		parts = append(parts, "user="+quoteDSN(c.PostgresUser))
	}
	if c.PostgresPassword != "" {
		parts = append(parts, "password="+quoteDSN(c.PostgresPassword))
	}
	return strings.Join(parts, " ")
}

// quoteDSN quotes a keyword/value connection parameter when it contains
// spaces, quotes or backslashes.
func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

func (c *Config) mergeFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("config: access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config: %s is a directory, not a file", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".json":
		err = json.Unmarshal(data, c)
	default:
		return fmt.Errorf("config: unsupported file format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}
