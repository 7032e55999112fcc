// Package progress owns the per-user profile: the start/advance/complete
// state machine over the 30-day tracks, streak bookkeeping, and the
// per-day journal.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/trackpass/internal/common"
	"github.com/dmitrijs2005/trackpass/internal/logging"
	"github.com/dmitrijs2005/trackpass/internal/server/kv"
	"github.com/dmitrijs2005/trackpass/internal/server/models"
)

// EntitlementSource is the slice of the entitlement store the ledger needs
// to authorize starting a track.
type EntitlementSource interface {
	List(ctx context.Context, userID string) ([]models.Track, error)
}

type Service struct {
	store        kv.Store
	locks        *kv.KeyLock
	entitlements EntitlementSource
	logger       logging.Logger
}

func NewService(store kv.Store, locks *kv.KeyLock, entitlements EntitlementSource, logger logging.Logger) *Service {
	return &Service{
		store:        store,
		locks:        locks,
		entitlements: entitlements,
		logger:       logger.With("module", "progress"),
	}
}

// StartTrack makes track the user's active track.
//
// Restart semantics: a previously completed track restarts at day 1; if
// the track is already active, re-issuing start leaves the current day
// unchanged; switching from another track starts at day 1.
func (s *Service) StartTrack(ctx context.Context, userID string, track models.Track) (*models.Profile, error) {
	if !track.IsValid() {
		return nil, fmt.Errorf("%w: unknown track %q", common.ErrorValidation, track)
	}

	owned, err := s.entitlements.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checking entitlements: %w", err)
	}
	if !models.ContainsTrack(owned, track) {
		return nil, common.ErrorNotEntitled
	}

	unlock := s.locks.Lock(kv.ProfileKey(userID))
	defer unlock()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch {
	case profile.Completed(track):
		// replay of a finished track
		profile.CurrentDay = 1
	case profile.CurrentTrack == track:
		// re-issuing start is a no-op on day
	default:
		profile.CurrentDay = 1
	}
	profile.CurrentTrack = track
	profile.UpdatedAt = time.Now()

	if err := s.store.Set(ctx, kv.ProfileKey(userID), profile); err != nil {
		return nil, fmt.Errorf("persisting profile: %w", err)
	}

	s.logger.Info(ctx, "started track", "user_id", userID, "track", track, "day", profile.CurrentDay)
	return profile, nil
}

// DayResult reports a recorded day completion.
type DayResult struct {
	Profile        *models.Profile `json:"profile"`
	TrackCompleted bool            `json:"track_completed"`
}

// RecordDayCompletion marks day of track as done. The day must be the
// profile's current day of its active track. Completing day 30 finishes
// the track: the profile returns to idle and the track is appended to the
// completed list at most once, so a replayed final request cannot
// duplicate it.
func (s *Service) RecordDayCompletion(ctx context.Context, userID string, track models.Track, day int) (*DayResult, error) {
	unlock := s.locks.Lock(kv.ProfileKey(userID))
	defer unlock()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profile.CurrentTrack != track {
		return nil, common.ErrorNotActiveTrack
	}
	if profile.CurrentDay != day {
		return nil, common.ErrorWrongDay
	}

	completed := day == models.TrackDays
	if completed {
		profile.CurrentTrack = ""
		profile.CurrentDay = 0
		if !profile.Completed(track) {
			profile.CompletedTracks = append(profile.CompletedTracks, track)
		}
	} else {
		profile.CurrentDay = day + 1
	}
	profile.TotalDaysCompleted++
	profile.Streak++
	profile.UpdatedAt = time.Now()

	if err := s.store.Set(ctx, kv.ProfileKey(userID), profile); err != nil {
		return nil, fmt.Errorf("persisting profile: %w", err)
	}

	s.logger.Info(ctx, "recorded day completion",
		"user_id", userID, "track", track, "day", day, "track_completed", completed)
	return &DayResult{Profile: profile, TrackCompleted: completed}, nil
}

// SaveJournalEntry upserts the entry for (track, day). The day does not
// have to match current progress; entries may be written ahead of or
// behind it. Re-saving a day overwrites the text and updated_at while
// preserving the original created_at.
func (s *Service) SaveJournalEntry(ctx context.Context, userID string, track models.Track, day int, text string) (*models.JournalEntry, error) {
	if !track.IsValid() {
		return nil, fmt.Errorf("%w: unknown track %q", common.ErrorValidation, track)
	}
	if day < 1 || day > models.TrackDays {
		return nil, fmt.Errorf("%w: day must be between 1 and %d", common.ErrorValidation, models.TrackDays)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty journal text", common.ErrorValidation)
	}

	key := kv.JournalKey(userID, track, day)
	unlock := s.locks.Lock(key)
	defer unlock()

	now := time.Now()
	entry := &models.JournalEntry{}
	if err := s.store.Get(ctx, key, entry); err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("loading journal entry: %w", err)
		}
		entry = &models.JournalEntry{Track: track, Day: day, CreatedAt: now}
	}
	entry.Text = text
	entry.UpdatedAt = now

	if err := s.store.Set(ctx, key, entry); err != nil {
		return nil, fmt.Errorf("persisting journal entry: %w", err)
	}
	return entry, nil
}

// ListJournal returns the user's entries for track in day order.
func (s *Service) ListJournal(ctx context.Context, userID string, track models.Track) ([]*models.JournalEntry, error) {
	if !track.IsValid() {
		return nil, fmt.Errorf("%w: unknown track %q", common.ErrorValidation, track)
	}

	items, err := s.store.ScanPrefix(ctx, kv.JournalPrefix(userID, track))
	if err != nil {
		return nil, fmt.Errorf("scanning journal: %w", err)
	}

	entries := make([]*models.JournalEntry, 0, len(items))
	for _, it := range items {
		entry := &models.JournalEntry{}
		if err := json.Unmarshal(it.Value, entry); err != nil {
			return nil, fmt.Errorf("unmarshalling journal entry %q: %w", it.Key, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetProfile returns the user's profile. A missing record yields
// ErrorProfileMissing; a storage failure on this read path falls back to
// the default profile instead of failing the whole request.
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile := &models.Profile{}
	err := s.store.Get(ctx, kv.ProfileKey(userID), profile)
	if err == nil {
		return profile, nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorProfileMissing
	}

	s.logger.Warn(ctx, "profile read failed, serving defaults", "user_id", userID, "error", err)
	return models.NewProfile(userID), nil
}

// CompleteOnboarding flips the one-way onboarding flag.
func (s *Service) CompleteOnboarding(ctx context.Context, userID string) (*models.Profile, error) {
	unlock := s.locks.Lock(kv.ProfileKey(userID))
	defer unlock()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !profile.OnboardingCompleted {
		profile.OnboardingCompleted = true
		profile.UpdatedAt = time.Now()
		if err := s.store.Set(ctx, kv.ProfileKey(userID), profile); err != nil {
			return nil, fmt.Errorf("persisting profile: %w", err)
		}
	}
	return profile, nil
}

func (s *Service) loadProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile := &models.Profile{}
	if err := s.store.Get(ctx, kv.ProfileKey(userID), profile); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorProfileMissing
		}
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return profile, nil
}
