package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings. Connection details come from the
// environment; scoring policy can additionally be tuned through an optional
// YAML file named by SCORING_CONFIG_FILE.
type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string
	CORSOrigins []string
	LogLevel    slog.Level
	CacheTTL    time.Duration

	ROASMode        string  // "spend" or "impressions"
	ForcedCPMAgency string  // agency whose campaigns always bill at $7 CPM
	Scoring         Scoring // anomaly thresholds + health weights
}

// Scoring mirrors the YAML scoring file.
type Scoring struct {
	HealthWeights struct {
		ROAS      float64 `yaml:"roas"`
		Pacing    float64 `yaml:"pacing"`
		BurnRate  float64 `yaml:"burn_rate"`
		CTR       float64 `yaml:"ctr"`
		Overspend float64 `yaml:"overspend"`
	} `yaml:"health_weights"`
	Anomaly struct {
		ImpressionChangePct float64 `yaml:"impression_change_pct"`
		TransactionDropPct  float64 `yaml:"transaction_drop_pct"`
		ZeroStreakDays      int     `yaml:"zero_streak_days"`
	} `yaml:"anomaly"`
}

// Load reads .env (when present), then the environment, then the optional
// scoring YAML. Missing values fall back to defaults; only an unreadable
// scoring file is an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	ttl := 5 * time.Minute
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			ttl = time.Duration(n) * time.Second
		}
	}

	cfg := Config{
		Port:            envOr("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		CORSOrigins:     splitNonEmpty(envOr("CORS_ORIGINS", "*")),
		LogLevel:        lvl,
		CacheTTL:        ttl,
		ROASMode:        envOr("ROAS_MODE", "spend"),
		ForcedCPMAgency: envOr("FORCED_CPM_AGENCY", "OMG"),
	}
	if cfg.ROASMode != "spend" && cfg.ROASMode != "impressions" {
		return Config{}, fmt.Errorf("invalid ROAS_MODE %q (want spend or impressions)", cfg.ROASMode)
	}

	if path := os.Getenv("SCORING_CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read scoring config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg.Scoring); err != nil {
			return Config{}, fmt.Errorf("parse scoring config: %w", err)
		}
	}
	return cfg, nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
