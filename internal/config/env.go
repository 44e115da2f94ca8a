package config

import (
	"os"
	"strconv"
)

// applyEnv overlays environment variables on top of file/default values.
// Unset or unparsable variables leave the existing value alone.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("WORLD_APP_ID"); v != "" {
		c.WorldID.AppID = v
	}
	if v := os.Getenv("CLAIM_SIGN_KEY"); v != "" {
		c.WorldID.ClaimSignKey = v
	}
	if v := os.Getenv("WORLD_ID_DEV_MODE"); v == "1" || v == "true" {
		c.WorldID.DevMode = true
	}
	if v := getEnvFloat("COST_GROWTH_RATE"); v > 0 {
		c.Balance.CostGrowthRate = v
	}
	if v := getEnvFloat("HUMAN_BOOST_FACTOR"); v > 0 {
		c.Balance.HumanBoostFactor = v
	}
	if v := getEnvInt("OFFLINE_CAP_SECONDS"); v > 0 {
		c.Balance.OfflineCapSeconds = int64(v)
	}
	if v := getEnvInt("AUTOSAVE_DEBOUNCE_SECONDS"); v > 0 {
		c.Balance.Autosave.DebounceSeconds = v
	}
	if v := getEnvInt("AUTOSAVE_PERIODIC_SECONDS"); v > 0 {
		c.Balance.Autosave.PeriodicSeconds = v
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func getEnvFloat(key string) float64 {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}
	return num
}
