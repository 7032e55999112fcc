package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/trackpass/internal/common"
	"github.com/dmitrijs2005/trackpass/internal/logging"
	"github.com/dmitrijs2005/trackpass/internal/server/config"
	"github.com/dmitrijs2005/trackpass/internal/server/models"
)

// Metadata keys stamped on intents and sessions at purchase time and read
// back when a completion signal arrives.
const (
	metaUserID  = "user_id"
	metaTrackID = "track_id"
	metaBundle  = "bundle"
)

// Granter is the slice of the entitlement store every completion path
// converges on.
type Granter interface {
	Grant(ctx context.Context, userID string, tracks []models.Track) (*models.EntitlementSet, []models.Track, error)
}

// Service initiates purchases against the payment provider and normalizes
// the distinct completion signals (webhook event, client confirmations)
// into idempotent grants, so replaying any signal is safe.
type Service struct {
	provider         Provider
	granter          Granter
	trackPriceCents  int64
	bundlePriceCents int64
	currency         string
	logger           logging.Logger
}

func NewService(provider Provider, granter Granter, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		provider:         provider,
		granter:          granter,
		trackPriceCents:  cfg.TrackPriceCents,
		bundlePriceCents: cfg.BundlePriceCents,
		currency:         cfg.Currency,
		logger:           logger.With("module", "payments"),
	}
}

// CreateTrackIntent starts a single-track purchase. The user and track are
// stamped into the intent metadata for later confirmation matching.
func (s *Service) CreateTrackIntent(ctx context.Context, userID string, track models.Track) (*Intent, error) {
	if !track.IsValid() {
		return nil, fmt.Errorf("%w: unknown track %q", common.ErrorValidation, track)
	}

	intent, err := s.provider.CreateIntent(ctx, s.trackPriceCents, s.currency, map[string]string{
		metaUserID:  userID,
		metaTrackID: string(track),
	})
	if err != nil {
		return nil, fmt.Errorf("creating payment intent: %w", err)
	}
	return intent, nil
}

// CreateTrackCheckout starts a hosted-checkout purchase for one or more
// tracks. A multi-track purchase is priced as the bundle.
func (s *Service) CreateTrackCheckout(ctx context.Context, userID string, tracks []models.Track, successURL, cancelURL string) (*Session, error) {
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks", common.ErrorValidation)
	}
	if err := models.ValidateTracks(tracks); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	metadata := map[string]string{metaUserID: userID}
	var items []LineItem
	if len(tracks) == 1 {
		metadata[metaTrackID] = string(tracks[0])
		items = []LineItem{{Name: string(tracks[0]) + " track", AmountCents: s.trackPriceCents, Quantity: 1}}
	} else {
		metadata[metaBundle] = joinTracks(tracks)
		items = []LineItem{{Name: "Track bundle", AmountCents: s.bundlePriceCents, Quantity: 1}}
	}

	session, err := s.provider.CreateCheckoutSession(ctx, items, successURL, cancelURL, metadata)
	if err != nil {
		return nil, fmt.Errorf("creating checkout session: %w", err)
	}
	return session, nil
}

// HandleWebhookEvent processes a provider webhook. Events other than
// checkout completion are acknowledged and ignored. Returns the tracks
// newly added by the grant; a retried event grants nothing further.
func (s *Service) HandleWebhookEvent(ctx context.Context, event *Event) ([]models.Track, error) {
	if event.Type != EventCheckoutCompleted {
		s.logger.Debug(ctx, "ignoring webhook event", "type", event.Type)
		return nil, nil
	}

	session := &Session{}
	if err := json.Unmarshal(event.Data.Object, session); err != nil {
		return nil, fmt.Errorf("%w: malformed event object: %v", common.ErrorValidation, err)
	}

	userID, tracks, err := tracksFromMetadata(session.Metadata)
	if err != nil {
		return nil, err
	}

	_, added, err := s.granter.Grant(ctx, userID, tracks)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "webhook grant applied", "event_id", event.ID, "user_id", userID, "added", added)
	return added, nil
}

// ConfirmIntent is the client-side completion path for a payment intent.
// The intent must have succeeded and its stored metadata must match the
// caller's identity and requested track.
func (s *Service) ConfirmIntent(ctx context.Context, userID, intentID string, track models.Track) ([]models.Track, error) {
	intent, err := s.provider.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("retrieving payment intent: %w", err)
	}

	if intent.Status != IntentStatusSucceeded {
		return nil, fmt.Errorf("%w: intent status %q", common.ErrorPaymentNotCompleted, intent.Status)
	}
	if intent.Metadata[metaUserID] != userID || intent.Metadata[metaTrackID] != string(track) {
		return nil, common.ErrorMetadataMismatch
	}

	_, added, err := s.granter.Grant(ctx, userID, []models.Track{track})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// ConfirmSession is the client-side completion path for a checkout
// session, covering both single-track and bundle purchases.
func (s *Service) ConfirmSession(ctx context.Context, userID, sessionID string) ([]models.Track, error) {
	session, err := s.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieving checkout session: %w", err)
	}

	if session.PaymentStatus != SessionStatusPaid {
		return nil, fmt.Errorf("%w: session payment status %q", common.ErrorPaymentNotCompleted, session.PaymentStatus)
	}

	metaUser, tracks, err := tracksFromMetadata(session.Metadata)
	if err != nil {
		return nil, err
	}
	if metaUser != userID {
		return nil, common.ErrorMetadataMismatch
	}

	_, added, err := s.granter.Grant(ctx, userID, tracks)
	if err != nil {
		return nil, err
	}
	return added, nil
}

// tracksFromMetadata extracts the purchase target: a single track_id or a
// comma-joined bundle list.
func tracksFromMetadata(metadata map[string]string) (string, []models.Track, error) {
	userID := metadata[metaUserID]
	if userID == "" {
		return "", nil, fmt.Errorf("%w: missing user id", common.ErrorMetadataMismatch)
	}

	if t := metadata[metaTrackID]; t != "" {
		return userID, []models.Track{models.Track(t)}, nil
	}
	if b := metadata[metaBundle]; b != "" {
		var tracks []models.Track
		for _, part := range strings.Split(b, ",") {
			tracks = append(tracks, models.Track(strings.TrimSpace(part)))
		}
		return userID, tracks, nil
	}
	return "", nil, fmt.Errorf("%w: no track metadata", common.ErrorMetadataMismatch)
}

func joinTracks(tracks []models.Track) string {
	parts := make([]string, len(tracks))
	for i, t := range tracks {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}
