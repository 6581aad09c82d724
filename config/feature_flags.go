package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles and gradual rollouts. Supports
// per-account targeting and percentage-based rollout buckets.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	accountOverrides map[string]map[string]bool // accountID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Accounts are assigned based on hash of their ID
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	AccountID string
	IsAdmin   bool
}

// Predefined feature flag names.
const (
	// === Leaderboard Features ===
	FeatureLeaderboardCache    = "leaderboard.cache"     // Serve from Redis snapshot
	FeatureLeaderboardMyRank   = "leaderboard.my_rank"   // Include caller's own row
	FeatureLeaderboardLiveRank = "leaderboard.live_rank" // Fall back to live query on cache miss

	// === Notification Features ===
	FeatureNotifyLevelUp        = "notify.level_up"        // Tier promotion messages
	FeatureNotifyBadgeUnlocked  = "notify.badge_unlocked"  // Badge award messages
	FeatureNotifyStreakReminder = "notify.streak_reminder" // Evening streak-at-risk digest
	FeatureNotifyWelcome        = "notify.welcome"         // First-login greeting

	// === Gamification Features ===
	FeatureGamificationStreaks = "gamification.streaks" // Daily practice streaks
	FeatureGamificationBadges  = "gamification.badges"  // Badge evaluation on commit
	FeatureGamificationLocks   = "gamification.locks"   // Rating-gated pro drills

	// === Experimental Features ===
	FeatureExperimentalWeeklyReport = "experimental.weekly_report" // Weekly summary notification
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:         make(map[string]*Feature),
		accountOverrides: make(map[string]map[string]bool),
	}

	// Initialize all features with defaults
	ff.initializeDefaults()

	// Load overrides from environment
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureLeaderboardCache] = &Feature{
		Name:           FeatureLeaderboardCache,
		Description:    "Serve leaderboard from the cached snapshot",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureLeaderboardMyRank] = &Feature{
		Name:           FeatureLeaderboardMyRank,
		Description:    "Show the caller's own rank row",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureLeaderboardLiveRank] = &Feature{
		Name:           FeatureLeaderboardLiveRank,
		Description:    "Recompute rankings live when the cache is cold",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Notification features - tuned for motivation, not spam
	ff.features[FeatureNotifyLevelUp] = &Feature{
		Name:           FeatureNotifyLevelUp,
		Description:    "Notify on tier promotion",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyBadgeUnlocked] = &Feature{
		Name:           FeatureNotifyBadgeUnlocked,
		Description:    "Notify when a badge unlocks",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyStreakReminder] = &Feature{
		Name:           FeatureNotifyStreakReminder,
		Description:    "Remind accounts whose streak is about to break",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyWelcome] = &Feature{
		Name:           FeatureNotifyWelcome,
		Description:    "Greet freshly provisioned accounts",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Gamification features
	ff.features[FeatureGamificationStreaks] = &Feature{
		Name:           FeatureGamificationStreaks,
		Description:    "Track daily practice streaks",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureGamificationBadges] = &Feature{
		Name:           FeatureGamificationBadges,
		Description:    "Evaluate badge rules after each attempt",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureGamificationLocks] = &Feature{
		Name:           FeatureGamificationLocks,
		Description:    "Gate pro drills behind DUPR rating",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Experimental features - disabled by default
	ff.features[FeatureExperimentalWeeklyReport] = &Feature{
		Name:           FeatureExperimentalWeeklyReport,
		Description:    "Weekly practice summary notification",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_NOTIFY_STREAK_REMINDER=true
// Example: FEATURE_EXPERIMENTAL_WEEKLY_REPORT=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "notify.streak_reminder" -> "FEATURE_NOTIFY_STREAK_REMINDER"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check account overrides first
	if ctx != nil && ctx.AccountID != "" {
		if overrides, ok := ff.accountOverrides[ctx.AccountID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Admin accounts get all features
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	// Check if feature is enabled at all
	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.AccountID != "" {
		return ff.isInRollout(ctx.AccountID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if an account is in the rollout percentage.
// Uses consistent hashing so accounts stay in their bucket.
func (ff *FeatureFlags) isInRollout(accountID string, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(accountID))
	hash := h.Sum32()

	// Map to 0-99 range
	bucket := int(hash % 100)

	return bucket < percent
}

// SetAccountOverride sets a feature override for a specific account.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetAccountOverride(accountID string, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.accountOverrides[accountID]; !ok {
		ff.accountOverrides[accountID] = make(map[string]bool)
	}
	ff.accountOverrides[accountID][featureName] = enabled
}

// ClearAccountOverrides removes all overrides for an account.
func (ff *FeatureFlags) ClearAccountOverrides(accountID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.accountOverrides, accountID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Convenience methods for common checks ---

// NotificationsEnabled checks if any notifications are enabled.
func (ff *FeatureFlags) NotificationsEnabled(ctx *FeatureContext) bool {
	return ff.IsEnabled(FeatureNotifyLevelUp, ctx) ||
		ff.IsEnabled(FeatureNotifyBadgeUnlocked, ctx) ||
		ff.IsEnabled(FeatureNotifyStreakReminder, ctx) ||
		ff.IsEnabled(FeatureNotifyWelcome, ctx)
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
