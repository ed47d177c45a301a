package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Transport TransportConfig `yaml:"transport"`
	Board     BoardConfig     `yaml:"board"`
	GenAI     GenAIConfig     `yaml:"genai"`
	Public    PublicConfig    `yaml:"public"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "http" or "stdio"
}

type BoardConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type GenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// PublicConfig holds settings the front end reads from /api/config. They are
// not secrets.
type PublicConfig struct {
	SupabaseURL     string `yaml:"supabase_url"`
	SupabaseAnonKey string `yaml:"supabase_anon_key"`
	N8NBaseURL      string `yaml:"n8n_base_url"`
}

// Map returns the public settings under their front-end variable names,
// skipping empty ones.
func (p PublicConfig) Map() map[string]string {
	out := map[string]string{}
	for k, v := range map[string]string{
		"VITE_SUPABASE_URL":      p.SupabaseURL,
		"VITE_SUPABASE_ANON_KEY": p.SupabaseAnonKey,
		"VITE_N8N_BASE_URL":      p.N8NBaseURL,
	} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "postflow.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Board: BoardConfig{
			RefreshInterval: 10 * time.Second,
		},
		GenAI: GenAIConfig{
			Model: "gemini-2.5-flash",
		},
	}
}

// Load reads configuration from an optional .env file, an optional YAML file
// and environment variables, in increasing precedence.
func Load() (Config, error) {
	envFile := os.Getenv("POSTFLOW_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("POSTFLOW_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Board.RefreshInterval < 0 {
		return fmt.Errorf("invalid refresh interval %s", c.Board.RefreshInterval)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("POSTFLOW_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("POSTFLOW_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid POSTFLOW_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("POSTFLOW_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("POSTFLOW_LOG_LEVEL"); level != "" {
		cfg.Log.Level = strings.ToLower(level)
	}
	if path := os.Getenv("POSTFLOW_LOG_PATH"); path != "" {
		cfg.Log.Path = path
	}
	if v := os.Getenv("POSTFLOW_AUTH_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid POSTFLOW_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = enabled
	}
	if mode := os.Getenv("POSTFLOW_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = strings.ToLower(mode)
	}
	if v := os.Getenv("POSTFLOW_REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid POSTFLOW_REFRESH_INTERVAL: %w", err)
		}
		cfg.Board.RefreshInterval = d
	}
	if key := os.Getenv("GOOGLE_GENAI_API_KEY"); key != "" {
		cfg.GenAI.APIKey = key
	}
	if model := os.Getenv("GOOGLE_GENAI_MODEL"); model != "" {
		cfg.GenAI.Model = model
	}
	if v := os.Getenv("VITE_SUPABASE_URL"); v != "" {
		cfg.Public.SupabaseURL = v
	}
	if v := os.Getenv("VITE_SUPABASE_ANON_KEY"); v != "" {
		cfg.Public.SupabaseAnonKey = v
	}
	if v := os.Getenv("VITE_N8N_BASE_URL"); v != "" {
		cfg.Public.N8NBaseURL = v
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
