/*
 * Copyright 2026 keelstack.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported DB_TYPE values.
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
)

const minPoolSize = 5

// Settings is the immutable process-wide database configuration, assembled
// once at startup from environment variables (optionally seeded from a .env
// file or a YAML config file). Environment variables always win over file
// values.
type Settings struct {
	Environment string `env:"ENVIRONMENT" yaml:"environment"`

	// DatabaseURL, when set, is used verbatim and skips DSN assembly.
	DatabaseURL string `env:"DATABASE_URL" yaml:"database_url"`

	Type     string `env:"DB_TYPE" yaml:"type"`
	Host     string `env:"DB_HOST" yaml:"host"`
	Port     int    `env:"DB_PORT" yaml:"port"`
	User     string `env:"DB_USER" yaml:"user"`
	Password string `env:"DB_PASSWORD" yaml:"password"`
	Name     string `env:"DB_NAME" yaml:"name"`
	SSLMode  string `env:"DB_SSLMODE" yaml:"sslmode"`

	PoolSize       int  `env:"DB_POOL_SIZE" yaml:"pool_size"`
	WebConcurrency int  `env:"WEB_CONCURRENCY" yaml:"web_concurrency"`
	MaxOverflow    int  `env:"DB_MAX_OVERFLOW" yaml:"max_overflow"`
	Echo           bool `env:"DB_ECHO" yaml:"echo"`

	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" yaml:"connect_timeout"`
	ReadTimeout    time.Duration `env:"DB_READ_TIMEOUT" yaml:"read_timeout"`
	WriteTimeout   time.Duration `env:"DB_WRITE_TIMEOUT" yaml:"write_timeout"`
	SlowQueryTime  time.Duration `env:"DB_SLOW_QUERY_TIME" yaml:"slow_query_time"`

	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" yaml:"auto_migrate"`
	SeedPath    string `env:"DB_SEED_PATH" yaml:"seed_path"`
}

// DefaultSettings returns the baseline configuration. Load and LoadFile start
// from these values; defaults live here instead of struct tags so that file
// values are not clobbered when the corresponding variable is unset.
func DefaultSettings() *Settings {
	return &Settings{
		Environment:    "development",
		Type:           TypeSQLite,
		Host:           "localhost",
		User:           "user",
		Password:       "changeme",
		Name:           "app",
		SSLMode:        "disable",
		PoolSize:       83,
		WebConcurrency: 9,
		MaxOverflow:    64,
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		SlowQueryTime:  2 * time.Second,
		SeedPath:       "configs/sql",
	}
}

// ConfigError reports a missing or invalid configuration setting. It is
// fatal at process start.
type ConfigError struct {
	Setting string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
}

func newConfigError(setting, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Setting: setting, Reason: fmt.Sprintf(format, args...)}
}

// Load assembles Settings from the process environment. A .env file in the
// working directory is loaded first when present; real environment variables
// take precedence over it.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	s := DefaultSettings()
	if err := env.Parse(s); err != nil {
		return nil, newConfigError("environment", "%v", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile assembles Settings from a YAML file, then overlays environment
// variables on top.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newConfigError("config file", "read %s: %v", path, err)
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, newConfigError("config file", "parse %s: %v", path, err)
	}
	_ = godotenv.Load()
	if err := env.Parse(s); err != nil {
		return nil, newConfigError("environment", "%v", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	switch s.Type {
	case TypeSQLite, TypePostgres, TypeMySQL:
	default:
		return newConfigError("DB_TYPE", "unsupported database type %q, supported types: %s, %s, %s",
			s.Type, TypeSQLite, TypePostgres, TypeMySQL)
	}
	if s.DatabaseURL != "" {
		return nil
	}
	if s.Name == "" {
		return newConfigError("DB_NAME", "database name is required")
	}
	if s.Type != TypeSQLite {
		if s.Host == "" {
			return newConfigError("DB_HOST", "host is required for %s", s.Type)
		}
		if s.User == "" {
			return newConfigError("DB_USER", "user is required for %s", s.Type)
		}
	}
	if s.PoolSize < 1 {
		return newConfigError("DB_POOL_SIZE", "pool size must be positive, got %d", s.PoolSize)
	}
	if s.WebConcurrency < 1 {
		return newConfigError("WEB_CONCURRENCY", "concurrency must be positive, got %d", s.WebConcurrency)
	}
	if s.MaxOverflow < 0 {
		return newConfigError("DB_MAX_OVERFLOW", "overflow must not be negative, got %d", s.MaxOverflow)
	}
	return nil
}

// IsDevelopment reports whether the process runs in the development
// environment; query echo defaults on in development.
func (s *Settings) IsDevelopment() bool {
	return s.Environment != "production"
}

// EffectivePoolSize divides the configured pool across web workers, with a
// floor so a misconfigured worker count cannot starve the pool.
func (s *Settings) EffectivePoolSize() int {
	size := s.PoolSize / s.WebConcurrency
	if size < minPoolSize {
		return minPoolSize
	}
	return size
}

func (s *Settings) port() int {
	if s.Port != 0 {
		return s.Port
	}
	switch s.Type {
	case TypePostgres:
		return 5432
	case TypeMySQL:
		return 3306
	default:
		return 0
	}
}

// DSN assembles the driver-specific connection string, unless DATABASE_URL
// overrides it.
func (s *Settings) DSN() string {
	if s.DatabaseURL != "" {
		return s.DatabaseURL
	}
	switch s.Type {
	case TypePostgres:
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
			url.QueryEscape(s.User),
			url.QueryEscape(s.Password),
			s.Host,
			s.port(),
			s.Name,
			s.SSLMode,
			int(s.ConnectTimeout.Seconds()),
		)
	case TypeMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%s&readTimeout=%s&writeTimeout=%s",
			s.User,
			s.Password,
			s.Host,
			s.port(),
			s.Name,
			s.ConnectTimeout,
			s.ReadTimeout,
			s.WriteTimeout,
		)
	default:
		return sqliteDSN(s.Name)
	}
}

func sqliteDSN(name string) string {
	if name == ":memory:" || strings.HasPrefix(name, "file:") {
		return name
	}
	if strings.HasSuffix(name, ".db") {
		return name
	}
	return name + ".db"
}

// ConnectionConfig translates Settings into the manager's connection and
// pool parameters. The SQLAlchemy-style pool_size/max_overflow pair maps to
// database/sql as MaxIdleConns/MaxOpenConns.
func (s *Settings) ConnectionConfig() *ConnectionConfig {
	pool := s.EffectivePoolSize()
	cfg := DefaultConnectionConfig()
	cfg.Type = s.Type
	cfg.DSN = s.DSN()
	cfg.MaxIdleConns = pool
	cfg.MaxOpenConns = pool + s.MaxOverflow
	cfg.ConnectTimeout = s.ConnectTimeout
	cfg.EnableQueryLog = s.Echo || s.IsDevelopment()
	cfg.SlowQueryTime = s.SlowQueryTime
	return cfg
}
