// Package config reads the server settings from flags, the environment and
// an optional .env file, plus the YAML file holding the default rules.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/DoyleJ11/volley-scoreboard/internal/engine"
)

type Config struct {
	Addr        string
	DataDir     string
	DatabaseURL string
	RulesFile   string
	LogLevel    zapcore.Level
	Dev         bool

	// Rules are proposed when a match starts without explicit rules.
	Rules engine.Rules
}

// LoadDotEnv loads .env into the process environment. A missing file is not
// an error worth stopping for, so the caller only logs it.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load parses args (without the program name). Flags win over the
// environment, which wins over the built-in defaults.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("scoreboard", flag.ContinueOnError)

	cfg := Config{}
	var level string
	fs.StringVar(&cfg.Addr, "addr", getEnv("SCOREBOARD_ADDR", ":8080"), "listen address")
	fs.StringVar(&cfg.DataDir, "data-dir", getEnv("SCOREBOARD_DATA_DIR", "./data"), "directory for the file store")
	fs.StringVar(&cfg.DatabaseURL, "database-url", getEnv("DATABASE_URL", ""), "postgres DSN; selects the SQL store")
	fs.StringVar(&cfg.RulesFile, "rules", getEnv("SCOREBOARD_RULES_FILE", ""), "YAML file with default rules")
	fs.StringVar(&level, "log-level", getEnv("SCOREBOARD_LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.BoolVar(&cfg.Dev, "dev", getEnvAsBool("SCOREBOARD_DEV", false), "development logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return Config{}, fmt.Errorf("log level: %w", err)
	}
	cfg.LogLevel = lvl

	cfg.Rules = engine.DefaultRules()
	if cfg.RulesFile != "" {
		cfg.Rules, err = LoadRules(cfg.RulesFile)
		if err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// LoadRules reads a YAML rules file. Keys it omits keep their defaults.
func LoadRules(path string) (engine.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (engine.Rules, error) {
	rules := engine.DefaultRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return engine.Rules{}, fmt.Errorf("failed to parse rules: %w", err)
	}
	return engine.NormalizeRules(rules), nil
}

// Logger builds the process logger for cfg.
func (c Config) Logger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Dev {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(c.LogLevel)
	return zc.Build()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
