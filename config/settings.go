// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific model lookup

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Settings holds all application configuration.
type Settings struct {
	LLM    LLMConfig
	Agent  AgentConfig
	Screen ScreenConfig
	Audit  AuditConfig
}

// LLMConfig holds model provider configuration.
type LLMConfig struct {
	Provider    string
	Model       string
	BaseURL     string // local provider only
	MaxTokens   uint32
	Temperature float64
}

// AgentConfig holds the run loop's tuning knobs.
type AgentConfig struct {
	MaxSteps              int
	ReviewInterval        int
	CompactionThreshold   int
	RecoveryEnabled       bool
	RecoveryAfterFailures int
	RecoveryCooldown      int
	MinEvidenceRunes      int
	SettleDelay           time.Duration
	TurnDelay             time.Duration
}

// ScreenConfig holds the snapshot encoding knobs.
type ScreenConfig struct {
	TargetWidth  int
	TargetHeight int
	JPEGQuality  int
}

// AuditConfig points at the one-way audit trail.
type AuditConfig struct {
	Path    string
	Enabled bool
}

// New creates settings for the specified provider, loading values from
// environment variables. The provider's own API-key and model env vars
// are resolved later by the llm package; GOLEM_MODEL overrides them all.
func New(provider string) (Settings, error) {
	maxTokens, err := getEnvUint32("GOLEM_MAX_TOKENS", 2048)
	if err != nil {
		return Settings{}, err
	}
	temperature, err := getEnvFloat64("GOLEM_TEMPERATURE", 0.2)
	if err != nil {
		return Settings{}, err
	}

	maxSteps, err := getEnvInt("GOLEM_MAX_STEPS", 50)
	if err != nil {
		return Settings{}, err
	}
	reviewInterval, err := getEnvInt("GOLEM_REVIEW_INTERVAL", 7)
	if err != nil {
		return Settings{}, err
	}
	compactionThreshold, err := getEnvInt("GOLEM_COMPACTION_THRESHOLD", 12)
	if err != nil {
		return Settings{}, err
	}
	recoveryEnabled, err := getEnvBool("GOLEM_RECOVERY_ENABLED", false)
	if err != nil {
		return Settings{}, err
	}
	recoveryAfterFailures, err := getEnvInt("GOLEM_RECOVERY_AFTER_FAILURES", 3)
	if err != nil {
		return Settings{}, err
	}
	recoveryCooldown, err := getEnvInt("GOLEM_RECOVERY_COOLDOWN", 3)
	if err != nil {
		return Settings{}, err
	}
	minEvidence, err := getEnvInt("GOLEM_MIN_EVIDENCE", 100)
	if err != nil {
		return Settings{}, err
	}
	settleMS, err := getEnvInt("GOLEM_SETTLE_DELAY_MS", 500)
	if err != nil {
		return Settings{}, err
	}
	turnMS, err := getEnvInt("GOLEM_TURN_DELAY_MS", 2000)
	if err != nil {
		return Settings{}, err
	}

	screenWidth, err := getEnvInt("GOLEM_SCREEN_WIDTH", 1280)
	if err != nil {
		return Settings{}, err
	}
	screenHeight, err := getEnvInt("GOLEM_SCREEN_HEIGHT", 800)
	if err != nil {
		return Settings{}, err
	}
	jpegQuality, err := getEnvInt("GOLEM_JPEG_QUALITY", 80)
	if err != nil {
		return Settings{}, err
	}

	auditEnabled, err := getEnvBool("GOLEM_AUDIT_ENABLED", true)
	if err != nil {
		return Settings{}, err
	}
	auditPath := os.Getenv("GOLEM_AUDIT_DB")
	if auditPath == "" {
		auditPath = ".golem/audit.db"
	}

	return Settings{
		LLM: LLMConfig{
			Provider:    provider,
			Model:       os.Getenv("GOLEM_MODEL"),
			BaseURL:     os.Getenv("GOLEM_BASE_URL"),
			MaxTokens:   maxTokens,
			Temperature: temperature,
		},
		Agent: AgentConfig{
			MaxSteps:              maxSteps,
			ReviewInterval:        reviewInterval,
			CompactionThreshold:   compactionThreshold,
			RecoveryEnabled:       recoveryEnabled,
			RecoveryAfterFailures: recoveryAfterFailures,
			RecoveryCooldown:      recoveryCooldown,
			MinEvidenceRunes:      minEvidence,
			SettleDelay:           time.Duration(settleMS) * time.Millisecond,
			TurnDelay:             time.Duration(turnMS) * time.Millisecond,
		},
		Screen: ScreenConfig{
			TargetWidth:  screenWidth,
			TargetHeight: screenHeight,
			JPEGQuality:  jpegQuality,
		},
		Audit: AuditConfig{
			Path:    auditPath,
			Enabled: auditEnabled,
		},
	}, nil
}

// MustNew creates settings for the specified provider.
// Panics if environment variables are invalid.
// Use this only when configuration errors should be fatal.
func MustNew(provider string) Settings {
	settings, err := New(provider)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// Environment variable helpers with proper error handling

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return b, nil
}
