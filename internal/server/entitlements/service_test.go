package entitlements

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/trackpass/internal/common"
	"github.com/dmitrijs2005/trackpass/internal/logging"
	"github.com/dmitrijs2005/trackpass/internal/server/kv"
	"github.com/dmitrijs2005/trackpass/internal/server/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewService(kv.NewMemoryStore(), kv.NewKeyLock(), logger)
}

func TestGrant_Idempotent(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	set, added, err := s.Grant(ctx, "u1", []models.Track{models.TrackMoney, models.TrackEgo})
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.Track{models.TrackMoney, models.TrackEgo}, added)
	assert.ElementsMatch(t, []models.Track{models.TrackMoney, models.TrackEgo}, set.Tracks)

	set, added, err = s.Grant(ctx, "u1", []models.Track{models.TrackMoney, models.TrackEgo})
	require.NoError(t, err)
	assert.Empty(t, added, "repeat grant reports zero newly-added tracks")
	assert.ElementsMatch(t, []models.Track{models.TrackMoney, models.TrackEgo}, set.Tracks)
}

func TestGrant_Commutative(t *testing.T) {
	ctx := context.Background()

	a := newTestService(t)
	_, _, err := a.Grant(ctx, "u", []models.Track{models.TrackMoney})
	require.NoError(t, err)
	setA, _, err := a.Grant(ctx, "u", []models.Track{models.TrackEgo})
	require.NoError(t, err)

	b := newTestService(t)
	_, _, err = b.Grant(ctx, "u", []models.Track{models.TrackEgo})
	require.NoError(t, err)
	setB, _, err := b.Grant(ctx, "u", []models.Track{models.TrackMoney})
	require.NoError(t, err)

	assert.ElementsMatch(t, setA.Tracks, setB.Tracks)
}

func TestGrant_RejectsUnknownTracksWholly(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, _, err := s.Grant(ctx, "u1", []models.Track{models.TrackMoney, "Sleep"})
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Contains(t, err.Error(), "Sleep")

	tracks, err := s.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, tracks, "no partial grant on validation failure")
}

func TestGrant_EmptyUserID(t *testing.T) {
	s := newTestService(t)

	_, _, err := s.Grant(context.Background(), "", []models.Track{models.TrackMoney})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestRevoke(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, _, err := s.Grant(ctx, "u1", []models.Track{models.TrackMoney, models.TrackEgo})
	require.NoError(t, err)

	set, removed, err := s.Revoke(ctx, "u1", []models.Track{models.TrackEgo, models.TrackFocus})
	require.NoError(t, err)
	assert.Equal(t, []models.Track{models.TrackEgo}, removed, "only held tracks are reported removed")
	assert.Equal(t, []models.Track{models.TrackMoney}, set.Tracks)
}

func TestList_EmptyWithoutRecord(t *testing.T) {
	s := newTestService(t)

	tracks, err := s.List(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, tracks)
}
