package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig   `mapstructure:"server"`
	Database  DatabaseConfig `mapstructure:"database"`
	Auth      AuthConfig     `mapstructure:"auth"`
	Admin     AdminConfig    `mapstructure:"admin"`
	Study     StudyConfig    `mapstructure:"study"`
	Logging   LoggingConfig  `mapstructure:"logging"`
	TasksFile string         `mapstructure:"tasks_file"`

	// Dir is the directory config.json and the tasks file were read from.
	Dir string `mapstructure:"-"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	SessionSecret  string   `mapstructure:"session_secret"`
	SecureCookies  bool     `mapstructure:"secure_cookies"`
	TLSCertFile    string   `mapstructure:"tls_cert_file"`
	TLSKeyFile     string   `mapstructure:"tls_key_file"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	LoginRateLimit uint     `mapstructure:"login_rate_limit"` // attempts per minute and client
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // sqlite or postgres
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	TokenTTLMinutes int    `mapstructure:"token_ttl_minutes"`
}

// AdminConfig carries the credentials of the first administrator. Both empty
// means no account is seeded.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type StudyConfig struct {
	Name               string `mapstructure:"name"`
	Description        string `mapstructure:"description"`
	PrototypeURL       string `mapstructure:"prototype_url"`
	PrototypeImagePath string `mapstructure:"prototype_image_path"`
}

type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// legacyKeys maps the flat keys of the older config.json onto the
// nested configuration.
var legacyKeys = map[string]string{
	"url_path":      "study.prototype_url",
	"img_path":      "study.prototype_image_path",
	"port":          "server.port",
	"database_path": "database.path",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5001")
	v.SetDefault("server.session_secret", "dev-secret-key-change-in-production")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("server.tls_cert_file", "")
	v.SetDefault("server.tls_key_file", "")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.login_rate_limit", 5)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "instance/usergazetrack.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "usergazetrack")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("auth.jwt_secret", "supersecret_change_me")
	v.SetDefault("auth.token_ttl_minutes", 60)

	v.SetDefault("admin.username", "")
	v.SetDefault("admin.password", "")

	v.SetDefault("study.name", "")
	v.SetDefault("study.description", "")
	v.SetDefault("study.prototype_url", "")
	v.SetDefault("study.prototype_image_path", "")

	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7)
	v.SetDefault("logging.compress", true)

	v.SetDefault("tasks_file", "tasks.json")
}

// Load reads config.json (or config.yaml) from dir, then applies
// GAZETRACK_* environment overrides. A missing file is not an error.
func Load(dir string, log *zap.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(dir)
	v.SetConfigName("config")

	v.SetEnvPrefix("GAZETRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	for legacy, key := range legacyKeys {
		if v.InConfig(legacy) {
			v.SetDefault(key, v.Get(legacy))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.Dir = dir

	if v.ConfigFileUsed() != "" && log != nil {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			log.Warn("Configuration file changed, restart the server to apply it", zap.String("file", e.Name))
		})
	}
	return &cfg, nil
}

// Optional turns an empty or literal "null" value into nil.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}

// TasksPath is the location of the task definitions served to the tracker.
func (c *Config) TasksPath() string {
	if filepath.IsAbs(c.TasksFile) {
		return c.TasksFile
	}
	return filepath.Join(c.Dir, c.TasksFile)
}

// DatabaseDSN returns the connection string for the configured driver.
// Relative sqlite paths are resolved against root.
func (c *Config) DatabaseDSN(root string) string {
	db := c.Database
	if db.Driver == "postgres" {
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			db.Host, db.User, db.Password, db.Name, db.Port, db.SSLMode,
		)
	}
	if db.Path == ":memory:" {
		return "file::memory:?_foreign_keys=on"
	}
	path := db.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return "file:" + path + "?_foreign_keys=on"
}

// LoadTasks reads the tasks file. JSON and YAML are both accepted.
func LoadTasks(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks file: %w", err)
	}
	var tasks any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &tasks)
	default:
		err = json.Unmarshal(data, &tasks)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse tasks file: %w", err)
	}
	return tasks, nil
}
