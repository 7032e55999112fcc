// Package entitlements owns the per-user set of purchased tracks and the
// idempotent grant operation every payment-completion path converges on.
package entitlements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/trackpass/internal/common"
	"github.com/dmitrijs2005/trackpass/internal/logging"
	"github.com/dmitrijs2005/trackpass/internal/server/kv"
	"github.com/dmitrijs2005/trackpass/internal/server/models"
)

type Service struct {
	store  kv.Store
	locks  *kv.KeyLock
	logger logging.Logger
}

func NewService(store kv.Store, locks *kv.KeyLock, logger logging.Logger) *Service {
	return &Service{
		store:  store,
		locks:  locks,
		logger: logger.With("module", "entitlements"),
	}
}

// Grant adds tracks to the user's entitlement set and returns the updated
// set together with the ids that were newly added. Repeating a grant with
// the same tracks changes nothing and reports zero newly-added tracks, so
// webhook retries and double confirmations are safe.
//
// Unknown track ids reject the whole call; there is no partial grant.
func (s *Service) Grant(ctx context.Context, userID string, tracks []models.Track) (*models.EntitlementSet, []models.Track, error) {
	if userID == "" {
		return nil, nil, fmt.Errorf("%w: empty user id", common.ErrorValidation)
	}
	if err := models.ValidateTracks(tracks); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	unlock := s.locks.Lock(kv.EntitlementsKey(userID))
	defer unlock()

	set, err := s.load(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	added := []models.Track{}
	for _, t := range tracks {
		if set.Add(t) {
			added = append(added, t)
		}
	}

	if len(added) > 0 {
		set.UpdatedAt = time.Now()
		if err := s.store.Set(ctx, kv.EntitlementsKey(userID), set); err != nil {
			return nil, nil, fmt.Errorf("persisting entitlements: %w", err)
		}
		s.logger.Info(ctx, "granted tracks", "user_id", userID, "added", added)
	}

	return set, added, nil
}

// Revoke removes tracks from the set and returns the updated set together
// with the ids that were actually removed. Revoking absent tracks is a
// no-op on those ids.
func (s *Service) Revoke(ctx context.Context, userID string, tracks []models.Track) (*models.EntitlementSet, []models.Track, error) {
	if userID == "" {
		return nil, nil, fmt.Errorf("%w: empty user id", common.ErrorValidation)
	}
	if err := models.ValidateTracks(tracks); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	unlock := s.locks.Lock(kv.EntitlementsKey(userID))
	defer unlock()

	set, err := s.load(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	removed := []models.Track{}
	for _, t := range tracks {
		if set.Remove(t) {
			removed = append(removed, t)
		}
	}

	if len(removed) > 0 {
		set.UpdatedAt = time.Now()
		if err := s.store.Set(ctx, kv.EntitlementsKey(userID), set); err != nil {
			return nil, nil, fmt.Errorf("persisting entitlements: %w", err)
		}
		s.logger.Info(ctx, "revoked tracks", "user_id", userID, "removed", removed)
	}

	return set, removed, nil
}

// List returns the user's current entitlements, or an empty set if none
// has been stored yet.
func (s *Service) List(ctx context.Context, userID string) ([]models.Track, error) {
	set, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return set.Tracks, nil
}

func (s *Service) load(ctx context.Context, userID string) (*models.EntitlementSet, error) {
	set := &models.EntitlementSet{}
	err := s.store.Get(ctx, kv.EntitlementsKey(userID), set)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &models.EntitlementSet{UserID: userID, Tracks: []models.Track{}}, nil
		}
		return nil, fmt.Errorf("loading entitlements: %w", err)
	}
	return set, nil
}
