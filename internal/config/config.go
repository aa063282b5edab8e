package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/bryanwahyu/text-analyzer/internal/domain/analysis"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMinio    = "minio"
)

type Config struct {
	Server      Server      `yaml:"server"`
	Persistence Persistence `yaml:"persistence"`
	Log         Log         `yaml:"log"`
}

type Server struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	CORSOrigins     []string      `yaml:"corsOrigins"`
	// APIKeys empty means anonymous access
	APIKeys   []string  `yaml:"apiKeys"`
	RateLimit RateLimit `yaml:"rateLimit"`
}

// RateLimit is disabled when Capacity is 0
type RateLimit struct {
	Capacity        int `yaml:"capacity"`
	RefillPerSecond int `yaml:"refillPerSecond"`
}

// Persistence addresses the document store holding analysis records.
type Persistence struct {
	Driver     string `yaml:"driver"`
	Endpoint   string `yaml:"endpoint"`
	User       string `yaml:"user"`
	Key        string `yaml:"key"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
	UseSSL     bool   `yaml:"useSSL"`
}

type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Load baca file config.yaml lalu override dari environment.
// A missing file is not an error; every setting can come from the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the settings used when neither file nor environment say otherwise.
func Default() *Config {
	return &Config{
		Server: Server{
			Port:            7071,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Persistence: Persistence{Driver: DriverMySQL},
		Log:         Log{Level: "info"},
	}
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("COSMOS_ENDPOINT", &c.Persistence.Endpoint)
	str("COSMOS_KEY", &c.Persistence.Key)
	str("COSMOS_DATABASE", &c.Persistence.Database)
	str("COSMOS_CONTAINER", &c.Persistence.Collection)
	str("PERSISTENCE_DRIVER", &c.Persistence.Driver)
	str("PERSISTENCE_USER", &c.Persistence.User)
	str("LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup("PERSISTENCE_USE_SSL"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PERSISTENCE_USE_SSL: %w", err)
		}
		c.Persistence.UseSSL = b
	}
	if v, ok := lookup("SERVER_PORT"); ok && v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SERVER_PORT: %w", err)
		}
		c.Server.Port = p
	}
	return nil
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// Validate reports missing settings as *domain.ConfigurationError.
func (p Persistence) Validate() error {
	driver := p.driver()
	switch driver {
	case DriverMySQL, DriverPostgres, DriverSQLite, DriverMinio:
	default:
		return fmt.Errorf("unknown persistence driver %q", p.Driver)
	}

	required := []struct {
		name, value string
	}{
		{"endpoint", p.Endpoint},
		{"key", p.Key},
		{"database", p.Database},
		{"collection", p.Collection},
	}
	var missing []string
	for _, r := range required {
		// sqlite is a local file: no credential, no database name
		if driver == DriverSQLite && (r.name == "key" || r.name == "database") {
			continue
		}
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return &domain.ConfigurationError{Missing: missing}
	}

	if driver != DriverMinio && !identRe.MatchString(p.Collection) {
		return fmt.Errorf("collection %q is not a valid table name", p.Collection)
	}
	return nil
}

func (p Persistence) driver() string {
	if p.Driver == "" {
		return DriverMySQL
	}
	return strings.ToLower(p.Driver)
}

// DriverName returns the normalised driver, defaulting to mysql.
func (p Persistence) DriverName() string { return p.driver() }

// Helper untuk build DSN MySQL
func (p Persistence) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		p.User,
		p.Key,
		p.Endpoint,
		p.Database,
	)
}

// PostgresDSN builds a lib/pq key/value connection string.
func (p Persistence) PostgresDSN() string {
	host, port := p.Endpoint, "5432"
	if i := strings.LastIndex(p.Endpoint, ":"); i > 0 {
		host, port = p.Endpoint[:i], p.Endpoint[i+1:]
	}
	sslmode := "disable"
	if p.UseSSL {
		sslmode = "require"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, quoteDSN(p.User), quoteDSN(p.Key), quoteDSN(p.Database), sslmode)
}

func quoteDSN(v string) string {
	if v == "" || strings.ContainsAny(v, ` '\`) {
		v = strings.ReplaceAll(v, `\`, `\\`)
		v = strings.ReplaceAll(v, `'`, `\'`)
		return "'" + v + "'"
	}
	return v
}
