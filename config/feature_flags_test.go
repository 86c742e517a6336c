package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFeatureFlags_DefaultsAllEnabled(t *testing.T) {
	ff := LoadFeatureFlags()

	for _, name := range []string{
		FeatureGamificationStreaks,
		FeatureGamificationStreakBonus,
		FeatureGamificationReadingExp,
		FeatureGamificationQuizExp,
		FeatureContentCategories,
		FeatureCacheStreakView,
	} {
		assert.True(t, ff.IsEnabled(name, nil), "feature %s should default on", name)
	}
}

func TestLoadFeatureFlags_EnvOverride(t *testing.T) {
	t.Setenv("FEATURE_GAMIFICATION_STREAK_BONUS", "false")
	ff := LoadFeatureFlags()

	assert.False(t, ff.IsEnabled(FeatureGamificationStreakBonus, nil))
	assert.True(t, ff.IsEnabled(FeatureGamificationStreaks, nil))
}

func TestLoadFeatureFlags_EnvPercentRollout(t *testing.T) {
	t.Setenv("FEATURE_CACHE_STREAK_VIEW", "50")
	ff := LoadFeatureFlags()

	features := ff.GetAllFeatures()
	require.Contains(t, features, FeatureCacheStreakView)
	assert.Equal(t, 50, features[FeatureCacheStreakView].RolloutPercent)
}

func TestIsEnabled_UnknownFeature(t *testing.T) {
	ff := LoadFeatureFlags()
	assert.False(t, ff.IsEnabled("does.not.exist", nil))
}

func TestIsEnabled_RolloutIsDeterministicPerUser(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureCacheStreakView, 50))

	ctx := &FeatureContext{UserID: "user1"}
	first := ff.IsEnabled(FeatureCacheStreakView, ctx)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ff.IsEnabled(FeatureCacheStreakView, ctx))
	}
}

func TestIsEnabled_RolloutBounds(t *testing.T) {
	ff := LoadFeatureFlags()

	require.NoError(t, ff.SetRolloutPercent(FeatureCacheStreakView, 0))
	assert.False(t, ff.IsEnabled(FeatureCacheStreakView, &FeatureContext{UserID: "user1"}))

	require.NoError(t, ff.SetRolloutPercent(FeatureCacheStreakView, 100))
	assert.True(t, ff.IsEnabled(FeatureCacheStreakView, &FeatureContext{UserID: "user1"}))

	assert.ErrorIs(t, ff.SetRolloutPercent(FeatureCacheStreakView, 101), ErrInvalidRolloutPercent)
	assert.ErrorIs(t, ff.SetRolloutPercent("does.not.exist", 10), ErrFeatureNotFound)
}

func TestIsEnabled_UserOverrideWins(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.DisableFeature(FeatureGamificationQuizExp))

	ctx := &FeatureContext{UserID: "user1"}
	assert.False(t, ff.IsEnabled(FeatureGamificationQuizExp, ctx))

	ff.SetUserOverride("user1", FeatureGamificationQuizExp, true)
	assert.True(t, ff.IsEnabled(FeatureGamificationQuizExp, ctx))
	assert.False(t, ff.IsEnabled(FeatureGamificationQuizExp, &FeatureContext{UserID: "user2"}))

	ff.ClearUserOverrides("user1")
	assert.False(t, ff.IsEnabled(FeatureGamificationQuizExp, ctx))
}

func TestIsEnabled_AdminBypassesDisable(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.DisableFeature(FeatureGamificationQuizExp))

	assert.True(t, ff.IsEnabled(FeatureGamificationQuizExp, &FeatureContext{UserID: "admin", IsAdmin: true}))
}
