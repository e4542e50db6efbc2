package server

import (
	"strconv"

	"beamer-quiz/internal/db"

	"gorm.io/gorm"
)

// Settings persisted in the key/value store. Scoring and protection values
// are read at the start of each reveal/auth operation, never cached.
const (
	settingBasePoints           = "base_points_per_correct"
	settingRevealPenaltyEnabled = "reveal_penalty_enabled"
	settingRevealPenaltyPercent = "reveal_penalty_percent"
	settingMinimumPointsPercent = "minimum_points_percent"
	settingPositionBonusFirst   = "position_bonus_first"
	settingPositionBonusSecond  = "position_bonus_second"
	settingPositionBonusThird   = "position_bonus_third"
	settingSpeedBonusEnabled    = "speed_bonus_enabled"
	settingSpeedBonusMaxPoints  = "speed_bonus_max_points"
	settingSpeedBonusTimeLimit  = "speed_bonus_time_limit_ms"
	settingProtectionEnabled    = "protection_enabled"
	settingProtectionPIN        = "protection_pin"
	settingProtectionExpiresAt  = "protection_expires_at"
	settingSpotlightRadius      = "spotlight_radius"
)

const defaultSpotlightRadius = 120

var updatableSettings = map[string]struct{}{
	settingBasePoints:           {},
	settingRevealPenaltyEnabled: {},
	settingRevealPenaltyPercent: {},
	settingMinimumPointsPercent: {},
	settingPositionBonusFirst:   {},
	settingPositionBonusSecond:  {},
	settingPositionBonusThird:   {},
	settingSpeedBonusEnabled:    {},
	settingSpeedBonusMaxPoints:  {},
	settingSpeedBonusTimeLimit:  {},
	settingProtectionEnabled:    {},
	settingProtectionPIN:        {},
	settingProtectionExpiresAt:  {},
	settingSpotlightRadius:      {},
}

func (s *Server) scoringConfig(conn *gorm.DB) scoringConfig {
	cfg := scoringConfig{
		BasePoints:            settingInt(conn, settingBasePoints, s.cfg.BasePointsPerCorrect),
		RevealPenaltyEnabled:  settingBool(conn, settingRevealPenaltyEnabled, s.cfg.RevealPenaltyEnabled),
		RevealPenaltyPercent:  settingInt(conn, settingRevealPenaltyPercent, s.cfg.RevealPenaltyPercent),
		MinimumPointsPercent:  settingInt(conn, settingMinimumPointsPercent, s.cfg.MinimumPointsPercent),
		SpeedBonusEnabled:     settingBool(conn, settingSpeedBonusEnabled, s.cfg.SpeedBonusEnabled),
		SpeedBonusMaxPoints:   settingInt(conn, settingSpeedBonusMaxPoints, s.cfg.SpeedBonusMaxPoints),
		SpeedBonusTimeLimitMS: settingInt(conn, settingSpeedBonusTimeLimit, s.cfg.SpeedBonusTimeLimitMS),
	}
	cfg.PositionBonuses = [3]int{
		settingInt(conn, settingPositionBonusFirst, s.cfg.PositionBonusFirst),
		settingInt(conn, settingPositionBonusSecond, s.cfg.PositionBonusSecond),
		settingInt(conn, settingPositionBonusThird, s.cfg.PositionBonusThird),
	}
	return cfg
}

func settingInt(conn *gorm.DB, key string, fallback int) int {
	raw := db.GetSetting(conn, key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func settingBool(conn *gorm.DB, key string, fallback bool) bool {
	raw := db.GetSetting(conn, key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
