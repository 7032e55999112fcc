// Package users handles accounts: signup with profile bootstrap, login and
// token minting, and per-user preferences.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/trackpass/internal/common"
	"github.com/dmitrijs2005/trackpass/internal/logging"
	"github.com/dmitrijs2005/trackpass/internal/server/auth"
	"github.com/dmitrijs2005/trackpass/internal/server/config"
	"github.com/dmitrijs2005/trackpass/internal/server/kv"
	"github.com/dmitrijs2005/trackpass/internal/server/models"
)

const minPasswordLength = 8

// emailIndex maps a lowercased email to the owning user id.
type emailIndex struct {
	UserID string `json:"user_id"`
}

type Service struct {
	store                       kv.Store
	locks                       *kv.KeyLock
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	logger                      logging.Logger
}

func NewService(store kv.Store, locks *kv.KeyLock, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		store:                       store,
		locks:                       locks,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		logger:                      logger.With("module", "users"),
	}
}

// SignUp creates the account plus its default profile and empty
// entitlement set. If the follow-up initialization fails, the just-created
// account records are deleted again and the error is surfaced; a
// half-initialized account must not survive.
func (s *Service) SignUp(ctx context.Context, email, name, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: malformed email", common.ErrorValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLength)
	}

	unlock := s.locks.Lock(kv.UserEmailKey(email))
	defer unlock()

	var idx emailIndex
	err := s.store.Get(ctx, kv.UserEmailKey(email), &idx)
	if err == nil {
		return nil, common.ErrorEmailTaken
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("checking email index: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.store.Set(ctx, kv.UserKey(user.ID), user); err != nil {
		return nil, fmt.Errorf("persisting user: %w", err)
	}
	if err := s.store.Set(ctx, kv.UserEmailKey(email), &emailIndex{UserID: user.ID}); err != nil {
		s.rollbackSignup(ctx, user)
		return nil, fmt.Errorf("persisting email index: %w", err)
	}

	if err := s.initDefaults(ctx, user.ID); err != nil {
		s.rollbackSignup(ctx, user)
		return nil, fmt.Errorf("initializing profile: %w", err)
	}

	s.logger.Info(ctx, "user signed up", "user_id", user.ID)
	return user, nil
}

func (s *Service) initDefaults(ctx context.Context, userID string) error {
	if err := s.store.Set(ctx, kv.ProfileKey(userID), models.NewProfile(userID)); err != nil {
		return err
	}
	set := &models.EntitlementSet{UserID: userID, Tracks: []models.Track{}, UpdatedAt: time.Now()}
	if err := s.store.Set(ctx, kv.EntitlementsKey(userID), set); err != nil {
		return err
	}
	return s.store.Set(ctx, kv.PreferencesKey(userID), models.DefaultPreferences())
}

// rollbackSignup is the compensating delete for a failed signup. Cleanup
// failures are logged, not surfaced; the original error matters more.
func (s *Service) rollbackSignup(ctx context.Context, user *models.User) {
	for _, key := range []string{
		kv.UserKey(user.ID),
		kv.UserEmailKey(user.Email),
		kv.ProfileKey(user.ID),
		kv.EntitlementsKey(user.ID),
		kv.PreferencesKey(user.ID),
	} {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Error(ctx, "signup rollback delete failed", "key", key, "error", err)
		}
	}
	s.logger.Warn(ctx, "signup rolled back", "user_id", user.ID)
}

// LogIn verifies the credentials and mints an access token.
func (s *Service) LogIn(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var idx emailIndex
	if err := s.store.Get(ctx, kv.UserEmailKey(email), &idx); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, common.ErrorInternal
	}

	user, err := s.Get(ctx, idx.UserID)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	return token, user, nil
}

// Get returns the user record by id.
func (s *Service) Get(ctx context.Context, userID string) (*models.User, error) {
	user := &models.User{}
	if err := s.store.Get(ctx, kv.UserKey(userID), user); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return user, nil
}

// GetPreferences returns the stored preferences, falling back to defaults
// when no record exists or the read fails; a default is preferable to an
// error on this path.
func (s *Service) GetPreferences(ctx context.Context, userID string) *models.Preferences {
	prefs := &models.Preferences{}
	if err := s.store.Get(ctx, kv.PreferencesKey(userID), prefs); err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "preferences read failed, serving defaults", "user_id", userID, "error", err)
		}
		return models.DefaultPreferences()
	}
	return prefs
}

// UpdatePreferences merges the patch into the stored preferences one field
// at a time. Unlike the read path, write failures are surfaced.
func (s *Service) UpdatePreferences(ctx context.Context, userID string, patch *models.PreferencesPatch) (*models.Preferences, error) {
	unlock := s.locks.Lock(kv.PreferencesKey(userID))
	defer unlock()

	prefs := s.GetPreferences(ctx, userID)
	prefs.Apply(patch)

	if err := s.store.Set(ctx, kv.PreferencesKey(userID), prefs); err != nil {
		return nil, fmt.Errorf("persisting preferences: %w", err)
	}
	return prefs, nil
}
