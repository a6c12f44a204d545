package webhook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/message-relay/webhook/mapping"
	"github.com/marcelsud/message-relay/webhook/payload"
	"github.com/marcelsud/message-relay/webhook/signature"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries an explicit idempotency key
const RequestIDHeader = "X-Request-ID"

// UseCase defines the receiver's business operation
type UseCase interface {
	Handle(ctx context.Context, webhookID string, body []byte, headers map[string]string) (Result, error)
}

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */
type Service struct {
	Repo    Repository
	Actions *Registry
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService creates a new receiver service with dependency injection
func NewService(repo Repository, actions *Registry, logger zerolog.Logger) *Service {
	if actions == nil {
		actions = NewRegistry()
	}
	return &Service{
		Repo:    repo,
		Actions: actions,
		logger:  logger.With().Str("component", "receiver").Logger(),
		now:     time.Now,
	}
}

/* Handle processes one inbound call
 * Every internal failure happens before the request id is claimed.
 * Rejections return a sentinel error (ErrConfigNotFound, ErrConfigInactive,
 * ErrInvalidPayload, ErrInvalidSignature, ErrMissingPhone); any other error is
 * an internal failure. Duplicates are accepted without running actions.
 */
func (s *Service) Handle(ctx context.Context, webhookID string, body []byte, headers map[string]string) (Result, error) {
	config, err := s.Repo.GetConfig(ctx, webhookID)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			return Result{}, ErrConfigNotFound
		}
		return Result{}, fmt.Errorf("getting config: %w", err)
	}
	if !config.IsActive {
		return Result{}, ErrConfigInactive
	}

	doc, err := payload.Parse(body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	log := s.logger.With().Str("webhook_id", webhookID).Logger()

	if provided := header(headers, signature.Header); config.Secret != "" && provided != "" {
		if !signature.Verify(config.Secret, body, provided) {
			log.Warn().Msg("signature mismatch")
			return Result{}, ErrInvalidSignature
		}
	}

	// Resolved before the claim: a failed lookup must leave the request id free for a retry
	account, err := s.Repo.GetAccount(ctx, config.AccountID)
	if err != nil {
		return Result{}, fmt.Errorf("getting account: %w", err)
	}

	requestID := header(headers, RequestIDHeader)
	if requestID == "" {
		requestID = payload.RequestID(doc)
	}
	if requestID != "" {
		log = log.With().Str("request_id", requestID).Logger()
		claimed, err := s.Repo.ClaimRequest(ctx, IdempotencyRecord{
			WebhookID:         webhookID,
			ExternalRequestID: requestID,
			ReceivedPayload:   body,
			CreatedAt:         s.now(),
		})
		if err != nil {
			return Result{}, fmt.Errorf("claiming request: %w", err)
		}
		if !claimed {
			log.Info().Msg("duplicate request, skipping actions")
			return Result{Accepted: true, Duplicate: true}, nil
		}
	}

	if err := s.Repo.RecordReceipt(ctx, webhookID, body, s.now()); err != nil {
		log.Warn().Err(err).Msg("recording receipt")
	}

	var fields mapping.Fields
	if len(config.FieldMapping) > 0 {
		fields = mapping.Map(config.FieldMapping, doc)
	} else {
		fields = mapping.Guess(doc)
	}
	if fields.Phone == "" {
		log.Info().Msg("phone could not be resolved")
		return Result{Accepted: false, Error: ErrMissingPhone.Error()}, ErrMissingPhone
	}

	inv := &Invocation{
		Config:    config,
		Account:   account,
		RequestID: requestID,
		Raw:       body,
		Payload:   doc,
		Contact: Contact{
			Phone:  fields.Phone,
			Name:   fields.Name,
			Email:  fields.Email,
			Fields: fields.Extra,
		},
	}

	outcomes := s.runActions(ctx, log, inv)

	record := ResultRecord{
		ID:        uuid.New().String(),
		WebhookID: webhookID,
		RequestID: requestID,
		ContactID: inv.ContactID,
		Actions:   outcomes,
		CreatedAt: s.now(),
	}
	if err := s.Repo.SaveResult(ctx, record); err != nil {
		log.Warn().Err(err).Msg("saving result")
	}

	return Result{
		Accepted:  true,
		ContactID: inv.ContactID,
		Actions:   outcomes,
	}, nil
}

// runActions executes config.Actions in order; a failing action never stops the next one
func (s *Service) runActions(ctx context.Context, log zerolog.Logger, inv *Invocation) []ActionOutcome {
	outcomes := make([]ActionOutcome, 0, len(inv.Config.Actions))
	for _, name := range inv.Config.Actions {
		outcome := ActionOutcome{Action: name, OK: true}

		a, ok := s.Actions.Get(name)
		if !ok {
			outcome.OK = false
			outcome.Error = "unknown action"
			log.Warn().Str("action", name).Msg("unknown action")
			outcomes = append(outcomes, outcome)
			continue
		}

		if err := run(ctx, a, inv); err != nil {
			outcome.OK = false
			outcome.Error = err.Error()
			log.Error().Err(err).Str("action", name).Msg("action failed")
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// header does a case-insensitive lookup in a flattened header map
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
