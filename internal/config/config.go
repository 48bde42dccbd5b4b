// Package config loads solver defaults and service wiring options from
// environment variables and a YAML defaults file.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arenadelta/pdptw-solver/internal/pdptw"
)

// SolverDefaults mirrors pdptw.Config, expressed with YAML tags so it can
// be loaded from config/solver.yaml and merged over pdptw.DefaultConfig.
type SolverDefaults struct {
	TimeLimitS        int `yaml:"time_limit_s"`
	MaxILSIterations  int `yaml:"max_ils_iterations"`
	LNSIterations     int `yaml:"lns_iterations"`
	DestroyMin        int `yaml:"destroy_min"`
	DestroyMax        int `yaml:"destroy_max"`
	LAHCHistory       int `yaml:"lahc_history"`
	LocalSearchEvery  int `yaml:"local_search_every"`
	NoImprovementStop int `yaml:"no_improvement_stop"`
	Seed              int64 `yaml:"seed"`
}

// LoadSolverDefaults reads and parses a YAML defaults file. A missing
// file is not an error; callers get pdptw.DefaultConfig() untouched.
func LoadSolverDefaults(path string) (SolverDefaults, error) {
	var d SolverDefaults
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return d, nil
	}
	if err != nil {
		return d, err
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return d, err
	}
	return d, nil
}

// ToPDPTWConfig overlays non-zero fields of d onto pdptw.DefaultConfig().
func (d SolverDefaults) ToPDPTWConfig() pdptw.Config {
	cfg := pdptw.DefaultConfig()
	if d.TimeLimitS > 0 {
		cfg.TimeLimit = time.Duration(d.TimeLimitS) * time.Second
	}
	if d.MaxILSIterations > 0 {
		cfg.MaxILSIterations = d.MaxILSIterations
	}
	if d.LNSIterations > 0 {
		cfg.LNSIterations = d.LNSIterations
	}
	if d.DestroyMin > 0 {
		cfg.DestroyMin = d.DestroyMin
	}
	if d.DestroyMax > 0 {
		cfg.DestroyMax = d.DestroyMax
	}
	if d.LAHCHistory > 0 {
		cfg.LAHCHistory = d.LAHCHistory
	}
	if d.LocalSearchEvery > 0 {
		cfg.LocalSearchEvery = d.LocalSearchEvery
	}
	if d.NoImprovementStop > 0 {
		cfg.NoImprovementStop = d.NoImprovementStop
	}
	cfg.Seed = d.Seed
	return cfg
}

// ServiceConfig holds environment-derived wiring for cmd/server: database
// and broker connection strings, listen port, and rate-limit knobs. The
// teacher's debug.go names RATE_RPS/RATE_BURST without ever constructing a
// limiter from them; this repo wires them into a real rate.Limiter.
type ServiceConfig struct {
	DatabaseURL string
	RedisURL    string
	Port        string
	RateRPS     float64
	RateBurst   int
}

func LoadServiceConfig() ServiceConfig {
	return ServiceConfig{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Port:        envOr("PORT", "8080"),
		RateRPS:     envFloat("RATE_RPS", 10),
		RateBurst:   envInt("RATE_BURST", 20),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
