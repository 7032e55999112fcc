// Package accesscodes owns redeemable codes: creation, administrative
// listing and deactivation, and the redeem protocol that converts a code
// into entitlement grants.
package accesscodes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/trackpass/internal/common"
	"github.com/dmitrijs2005/trackpass/internal/logging"
	"github.com/dmitrijs2005/trackpass/internal/server/kv"
	"github.com/dmitrijs2005/trackpass/internal/server/models"
)

// codeTokenBytes controls the entropy of generated codes: 16 random bytes,
// rendered as 32 hex characters. Collisions are controlled by entropy, not
// by checking existing codes.
const codeTokenBytes = 16

// Granter is the slice of the entitlement store the registry needs.
type Granter interface {
	Grant(ctx context.Context, userID string, tracks []models.Track) (*models.EntitlementSet, []models.Track, error)
}

type Service struct {
	store   kv.Store
	locks   *kv.KeyLock
	granter Granter
	logger  logging.Logger
}

func NewService(store kv.Store, locks *kv.KeyLock, granter Granter, logger logging.Logger) *Service {
	return &Service{
		store:   store,
		locks:   locks,
		granter: granter,
		logger:  logger.With("module", "accesscodes"),
	}
}

// Create generates a new code covering tracks, valid for ttlDays and
// redeemable usageLimit times.
func (s *Service) Create(ctx context.Context, tracks []models.Track, usageLimit, ttlDays int) (*models.AccessCode, error) {
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks", common.ErrorValidation)
	}
	if err := models.ValidateTracks(tracks); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	if usageLimit < 1 {
		return nil, fmt.Errorf("%w: usage limit must be at least 1", common.ErrorValidation)
	}
	if ttlDays < 1 {
		return nil, fmt.Errorf("%w: ttl must be at least 1 day", common.ErrorValidation)
	}

	token, err := common.MakeRandHexString(codeTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generating code token: %w", err)
	}

	now := time.Now()
	code := &models.AccessCode{
		Code:       token,
		Tracks:     tracks,
		UsageLimit: usageLimit,
		ExpiresAt:  now.AddDate(0, 0, ttlDays),
		Active:     true,
		CreatedAt:  now,
	}

	if err := s.store.Set(ctx, kv.AccessCodeKey(code.Code), code); err != nil {
		return nil, fmt.Errorf("persisting access code: %w", err)
	}

	s.logger.Info(ctx, "created access code", "tracks", tracks, "usage_limit", usageLimit, "expires_at", code.ExpiresAt)
	return code, nil
}

// RedeemResult reports the outcome of a successful redemption.
type RedeemResult struct {
	AddedTracks []models.Track `json:"added_tracks"`
	TotalTracks int            `json:"total_tracks"`
}

// Redeem validates the code and converts it into a grant for userID.
//
// Validation order is fixed so error reporting is deterministic:
// existence, active flag, expiry, usage cap. On success the code's usage
// count is incremented and its last-used fields stamped. Redeeming a code
// whose tracks the user already owns succeeds and reports zero added
// tracks; it still consumes a use.
func (s *Service) Redeem(ctx context.Context, codeToken, userID string) (*RedeemResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", common.ErrorValidation)
	}

	unlock := s.locks.Lock(kv.AccessCodeKey(codeToken))
	defer unlock()

	code := &models.AccessCode{}
	if err := s.store.Get(ctx, kv.AccessCodeKey(codeToken), code); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("loading access code: %w", err)
	}

	now := time.Now()
	switch {
	case !code.Active:
		return nil, common.ErrorCodeDeactivated
	case code.Expired(now):
		return nil, common.ErrorCodeExpired
	case code.Exhausted():
		return nil, common.ErrorCodeExhausted
	}

	set, added, err := s.granter.Grant(ctx, userID, code.Tracks)
	if err != nil {
		return nil, fmt.Errorf("granting tracks for code: %w", err)
	}

	code.UsageCount++
	code.LastUsedBy = userID
	code.LastUsedAt = &now
	if err := s.store.Set(ctx, kv.AccessCodeKey(codeToken), code); err != nil {
		return nil, fmt.Errorf("persisting access code: %w", err)
	}

	s.logger.Info(ctx, "redeemed access code", "user_id", userID, "added", added, "usage_count", code.UsageCount)
	return &RedeemResult{AddedTracks: added, TotalTracks: len(set.Tracks)}, nil
}

// Deactivate turns the code off. Redemption cannot reactivate it.
func (s *Service) Deactivate(ctx context.Context, codeToken string) (*models.AccessCode, error) {
	unlock := s.locks.Lock(kv.AccessCodeKey(codeToken))
	defer unlock()

	code := &models.AccessCode{}
	if err := s.store.Get(ctx, kv.AccessCodeKey(codeToken), code); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("loading access code: %w", err)
	}

	code.Active = false
	if err := s.store.Set(ctx, kv.AccessCodeKey(codeToken), code); err != nil {
		return nil, fmt.Errorf("persisting access code: %w", err)
	}
	return code, nil
}

// List returns all codes, ordered by code token. Administrative read only.
func (s *Service) List(ctx context.Context) ([]*models.AccessCode, error) {
	items, err := s.store.ScanPrefix(ctx, kv.AccessCodePrefix)
	if err != nil {
		return nil, fmt.Errorf("scanning access codes: %w", err)
	}

	codes := make([]*models.AccessCode, 0, len(items))
	for _, it := range items {
		code := &models.AccessCode{}
		if err := json.Unmarshal(it.Value, code); err != nil {
			return nil, fmt.Errorf("unmarshalling access code %q: %w", it.Key, err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}
