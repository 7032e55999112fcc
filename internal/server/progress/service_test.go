package progress

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/trackpass/internal/common"
	"github.com/dmitrijs2005/trackpass/internal/logging"
	"github.com/dmitrijs2005/trackpass/internal/server/entitlements"
	"github.com/dmitrijs2005/trackpass/internal/server/kv"
	"github.com/dmitrijs2005/trackpass/internal/server/models"
)

type fixture struct {
	svc   *Service
	ents  *entitlements.Service
	store kv.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := kv.NewMemoryStore()
	locks := kv.NewKeyLock()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ents := entitlements.NewService(store, locks, logger)
	return &fixture{
		svc:   NewService(store, locks, ents, logger),
		ents:  ents,
		store: store,
	}
}

func (f *fixture) createProfile(t *testing.T, userID string) {
	t.Helper()
	require.NoError(t, f.store.Set(context.Background(), kv.ProfileKey(userID), models.NewProfile(userID)))
}

func (f *fixture) grant(t *testing.T, userID string, tracks ...models.Track) {
	t.Helper()
	_, _, err := f.ents.Grant(context.Background(), userID, tracks)
	require.NoError(t, err)
}

func TestStartTrack_RequiresEntitlement(t *testing.T) {
	f := newFixture(t)
	f.createProfile(t, "u1")

	_, err := f.svc.StartTrack(context.Background(), "u1", models.TrackMoney)
	assert.ErrorIs(t, err, common.ErrorNotEntitled)
}

func TestStartTrack_RequiresProfile(t *testing.T) {
	f := newFixture(t)
	f.grant(t, "u1", models.TrackMoney)

	_, err := f.svc.StartTrack(context.Background(), "u1", models.TrackMoney)
	assert.ErrorIs(t, err, common.ErrorProfileMissing)
}

func TestStartTrack_SetsDayOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createProfile(t, "u1")
	f.grant(t, "u1", models.TrackMoney)

	profile, err := f.svc.StartTrack(ctx, "u1", models.TrackMoney)
	require.NoError(t, err)
	assert.Equal(t, models.TrackMoney, profile.CurrentTrack)
	assert.Equal(t, 1, profile.CurrentDay)
}

func TestStartTrack_ReissuePreservesDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createProfile(t, "u1")
	f.grant(t, "u1", models.TrackMoney)

	_, err := f.svc.StartTrack(ctx, "u1", models.TrackMoney)
	require.NoError(t, err)
	_, err = f.svc.RecordDayCompletion(ctx, "u1", models.TrackMoney, 1)
	require.NoError(t, err)

	profile, err := f.svc.StartTrack(ctx, "u1", models.TrackMoney)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.CurrentDay, "re-issuing start must not reset progress")
}

func TestStartTrack_CompletedTrackRestartsAtDayOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createProfile(t, "u1")
	f.grant(t, "u1", models.TrackEgo)

	completeWholeTrack(t, f, "u1", models.TrackEgo)

	profile, err := f.svc.StartTrack(ctx, "u1", models.TrackEgo)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.CurrentDay)
	assert.Equal(t, models.TrackEgo, profile.CurrentTrack)
}

func TestRecordDayCompletion_Advances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createProfile(t, "u1")
	f.grant(t, "u1", models.TrackMoney)

	_, err := f.svc.StartTrack(ctx, "u1", models.TrackMoney)
	require.NoError(t, err)

	res, err := f.svc.RecordDayCompletion(ctx, "u1", models.TrackMoney, 1)
	require.NoError(t, err)
	assert.False(t, res.TrackCompleted)
	assert.Equal(t, 2, res.Profile.CurrentDay)
	assert.Equal(t, 1, res.Profile.Streak)
	assert.Equal(t, 1, res.Profile.TotalDaysCompleted)
}

func TestRecordDayCompletion_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createProfile(t, "u1")
	f.grant(t, "u1", models.TrackMoney, models.TrackEgo)

	_, err := f.svc.RecordDayCompletion(ctx, "ghost", models.TrackMoney, 1)
	assert.ErrorIs(t, err, common.ErrorProfileMissing)

	_, err = f.svc.RecordDayCompletion(ctx, "u1", models.TrackMoney, 1)
	assert.ErrorIs(t, err, common.ErrorNotActiveTrack, "idle profile has no active track")

	_, err = f.svc.StartTrack(ctx, "u1", models.TrackMoney)
	require.NoError(t, err)

	_, err = f.svc.RecordDayCompletion(ctx, "u1", models.TrackEgo, 1)
	assert.ErrorIs(t, err, common.ErrorNotActiveTrack)

	_, err = f.svc.RecordDayCompletion(ctx, "u1", models.TrackMoney, 5)
	assert.ErrorIs(t, err, common.ErrorWrongDay)
}

func completeWholeTrack(t *testing.T, f *fixture, userID string, track models.Track) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.StartTrack(ctx, userID, track)
	require.NoError(t, err)
	for day := 1; day <= models.TrackDays; day++ {
		_, err := f.svc.RecordDayCompletion(ctx, userID, track, day)
		require.NoError(t, err)
	}
}

func TestRecordDayCompletion_FinishingTrack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createProfile(t, "u1")
	f.grant(t, "u1", models.TrackEgo)

	_, err := f.svc.StartTrack(ctx, "u1", models.TrackEgo)
	require.NoError(t, err)
	for day := 1; day < models.TrackDays; day++ {
		res, err := f.svc.RecordDayCompletion(ctx, "u1", models.TrackEgo, day)
		require.NoError(t, err)
		assert.Equal(t, day+1, res.Profile.CurrentDay)
		assert.Equal(t, day, res.Profile.TotalDaysCompleted)
	}

	res, err := f.svc.RecordDayCompletion(ctx, "u1", models.TrackEgo, models.TrackDays)
	require.NoError(t, err)
	assert.True(t, res.TrackCompleted)
	assert.True(t, res.Profile.Idle())
	assert.Equal(t, 0, res.Profile.CurrentDay)
	assert.Equal(t, []models.Track{models.TrackEgo}, res.Profile.CompletedTracks)
	assert.Equal(t, models.TrackDays, res.Profile.TotalDaysCompleted)

	// replaying the final day on the now-idle profile is rejected
	_, err = f.svc.RecordDayCompletion(ctx, "u1", models.TrackEgo, models.TrackDays)
	assert.ErrorIs(t, err, common.ErrorNotActiveTrack)
}

func TestRecordDayCompletion_NoDuplicateCompletedTrack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createProfile(t, "u1")
	f.grant(t, "u1", models.TrackEgo)

	completeWholeTrack(t, f, "u1", models.TrackEgo)
	completeWholeTrack(t, f, "u1", models.TrackEgo)

	profile, err := f.svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []models.Track{models.TrackEgo}, profile.CompletedTracks,
		"replaying a full track must not duplicate the completed entry")
	assert.Equal(t, 2*models.TrackDays, profile.TotalDaysCompleted)
}

func TestSaveJournalEntry_Upsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.SaveJournalEntry(ctx, "u1", models.TrackMoney, 5, "day five")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	second, err := f.svc.SaveJournalEntry(ctx, "u1", models.TrackMoney, 5, "day five, revised")
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix(), "created_at is preserved")
	assert.True(t, second.UpdatedAt.After(second.CreatedAt))
	assert.Equal(t, "day five, revised", second.Text)

	entries, err := f.svc.ListJournal(ctx, "u1", models.TrackMoney)
	require.NoError(t, err)
	require.Len(t, entries, 1, "exactly one stored entry for day 5")
}

func TestSaveJournalEntry_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveJournalEntry(ctx, "u1", "Sleep", 5, "text")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.svc.SaveJournalEntry(ctx, "u1", models.TrackMoney, 0, "text")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.svc.SaveJournalEntry(ctx, "u1", models.TrackMoney, 31, "text")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.svc.SaveJournalEntry(ctx, "u1", models.TrackMoney, 5, "   ")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestSaveJournalEntry_AnyValidDayAllowed(t *testing.T) {
	f := newFixture(t)

	// no active track required; entries may run ahead of progress
	_, err := f.svc.SaveJournalEntry(context.Background(), "u1", models.TrackFocus, 30, "ahead of myself")
	require.NoError(t, err)
}

func TestListJournal_DayOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, day := range []int{12, 2, 30, 1} {
		_, err := f.svc.SaveJournalEntry(ctx, "u1", models.TrackMoney, day, "entry")
		require.NoError(t, err)
	}

	entries, err := f.svc.ListJournal(ctx, "u1", models.TrackMoney)
	require.NoError(t, err)
	days := make([]int, 0, len(entries))
	for _, e := range entries {
		days = append(days, e.Day)
	}
	assert.Equal(t, []int{1, 2, 12, 30}, days)
}

func TestGetProfile_MissingVsPresent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetProfile(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorProfileMissing)

	f.createProfile(t, "u1")
	profile, err := f.svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, profile.Idle())
	assert.Equal(t, 0, profile.CurrentDay)
	assert.Equal(t, 0, profile.Streak)
}

func TestCompleteOnboarding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createProfile(t, "u1")

	profile, err := f.svc.CompleteOnboarding(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, profile.OnboardingCompleted)

	profile, err = f.svc.CompleteOnboarding(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, profile.OnboardingCompleted)
}
