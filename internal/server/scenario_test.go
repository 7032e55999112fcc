package server

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/trackpass/internal/logging"
	"github.com/dmitrijs2005/trackpass/internal/server/config"
	"github.com/dmitrijs2005/trackpass/internal/server/entitlements"
	"github.com/dmitrijs2005/trackpass/internal/server/kv"
	"github.com/dmitrijs2005/trackpass/internal/server/models"
	"github.com/dmitrijs2005/trackpass/internal/server/progress"
	"github.com/dmitrijs2005/trackpass/internal/server/users"
)

// TestFullTrackLifecycle walks one user through the whole journey:
// signup with default records, a grant, starting the track, completing
// all thirty days and ending back in the idle state with the track on
// the completed list.
func TestFullTrackLifecycle(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	store := kv.NewMemoryStore()
	locks := kv.NewKeyLock()

	entitlementSvc := entitlements.NewService(store, locks, logger)
	userSvc := users.NewService(store, locks, cfg, logger)
	progressSvc := progress.NewService(store, locks, entitlementSvc, logger)

	user, err := userSvc.SignUp(ctx, "runner@example.com", "Runner", "hunter2hunter2")
	require.NoError(t, err)

	// signup created the default records
	profile, err := progressSvc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, profile.Idle())
	assert.False(t, profile.OnboardingCompleted)

	owned, err := entitlementSvc.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)

	// starting without an entitlement is refused
	_, err = progressSvc.StartTrack(ctx, user.ID, models.TrackEgo)
	require.Error(t, err)

	_, added, err := entitlementSvc.Grant(ctx, user.ID, []models.Track{models.TrackEgo})
	require.NoError(t, err)
	require.Equal(t, []models.Track{models.TrackEgo}, added)

	profile, err = progressSvc.StartTrack(ctx, user.ID, models.TrackEgo)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.CurrentDay)

	for day := 1; day <= models.TrackDays; day++ {
		result, err := progressSvc.RecordDayCompletion(ctx, user.ID, models.TrackEgo, day)
		require.NoError(t, err, "day %d", day)
		assert.Equal(t, day == models.TrackDays, result.TrackCompleted, "day %d", day)
	}

	profile, err = progressSvc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, profile.Idle())
	assert.Equal(t, []models.Track{models.TrackEgo}, profile.CompletedTracks)
	assert.Equal(t, models.TrackDays, profile.TotalDaysCompleted)
	assert.Equal(t, models.TrackDays, profile.Streak)

	// the finished track is no longer active
	_, err = progressSvc.RecordDayCompletion(ctx, user.ID, models.TrackEgo, 1)
	require.Error(t, err)
}
