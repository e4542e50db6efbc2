package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port        string
	PublicURL   string
	AdminToken  string
	DatabaseURL string

	BasePointsPerCorrect  int
	PositionBonusFirst    int
	PositionBonusSecond   int
	PositionBonusThird    int
	RevealPenaltyEnabled  bool
	RevealPenaltyPercent  int
	MinimumPointsPercent  int
	SpeedBonusEnabled     bool
	SpeedBonusMaxPoints   int
	SpeedBonusTimeLimitMS int

	GracePeriodSeconds int
	SweepTickSeconds   int

	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		Port:                     "8080",
		PublicURL:                "http://localhost:8080",
		BasePointsPerCorrect:     100,
		PositionBonusFirst:       50,
		PositionBonusSecond:      30,
		PositionBonusThird:       20,
		RevealPenaltyPercent:     10,
		MinimumPointsPercent:     20,
		SpeedBonusMaxPoints:      50,
		SpeedBonusTimeLimitMS:    30000,
		GracePeriodSeconds:       60,
		SweepTickSeconds:         30,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if raw := os.Getenv("PUBLIC_URL"); raw != "" {
		cfg.PublicURL = raw
	}
	if raw := os.Getenv("ADMIN_TOKEN"); raw != "" {
		cfg.AdminToken = raw
	}
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.DatabaseURL = raw
	}
	if raw := os.Getenv("BASE_POINTS_PER_CORRECT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.BasePointsPerCorrect = value
		}
	}
	if raw := os.Getenv("POSITION_BONUS_FIRST"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.PositionBonusFirst = value
		}
	}
	if raw := os.Getenv("POSITION_BONUS_SECOND"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.PositionBonusSecond = value
		}
	}
	if raw := os.Getenv("POSITION_BONUS_THIRD"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.PositionBonusThird = value
		}
	}
	if raw := os.Getenv("REVEAL_PENALTY_ENABLED"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.RevealPenaltyEnabled = value
		}
	}
	if raw := os.Getenv("REVEAL_PENALTY_PERCENT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.RevealPenaltyPercent = value
		}
	}
	if raw := os.Getenv("MINIMUM_POINTS_PERCENT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.MinimumPointsPercent = value
		}
	}
	if raw := os.Getenv("SPEED_BONUS_ENABLED"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.SpeedBonusEnabled = value
		}
	}
	if raw := os.Getenv("SPEED_BONUS_MAX_POINTS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.SpeedBonusMaxPoints = value
		}
	}
	if raw := os.Getenv("SPEED_BONUS_TIME_LIMIT_MS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.SpeedBonusTimeLimitMS = value
		}
	}
	if raw := os.Getenv("GRACE_PERIOD_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.GracePeriodSeconds = value
		}
	}
	if raw := os.Getenv("SWEEP_TICK_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.SweepTickSeconds = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	return cfg
}
