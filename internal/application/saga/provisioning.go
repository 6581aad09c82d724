// Package saga contains multi-step business processes that orchestrate
// several domain operations and handle compensation on failures.
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/paddle-hub/paddle-practice-hub/internal/application/command"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/notification"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROVISIONING SAGA
// First-contact flow for an authenticated account that has no profile
// row yet. Flow: Validate -> Check Existence -> Hash Credential ->
// Create Profile -> Seed Ledger -> Send Welcome -> Publish Event.
// Identity verification itself is external; this saga only materializes
// the local profile.
// ══════════════════════════════════════════════════════════════════════════════

// ProvisioningInput carries everything needed to provision a profile.
type ProvisioningInput struct {
	// AccountID is the externally authenticated account (required).
	AccountID shared.AccountID

	// Username overrides the default display name (optional).
	Username string

	// Password is the local credential to hash and store (optional;
	// empty when the account authenticates purely upstream).
	Password string

	// Rating is the self-reported starting DUPR (0 = default).
	Rating float64
}

// Validate checks the input.
func (i ProvisioningInput) Validate() error {
	if !i.AccountID.IsValid() {
		return shared.NewDomainError("saga", "Provisioning", shared.ErrInvalidID, "account id is required")
	}
	if i.Rating != 0 && (i.Rating < 2.0 || i.Rating > 8.0) {
		return shared.NewDomainError("saga", "Provisioning", shared.ErrOutOfRange, "rating out of DUPR range")
	}
	return nil
}

// ProvisioningResult reports a finished saga.
type ProvisioningResult struct {
	// Profile is the committed profile (pre-existing or freshly created).
	Profile *player.Profile

	// Created is false when the profile already existed and the saga
	// short-circuited.
	Created bool

	// WelcomeSent reports whether the welcome notification went out.
	WelcomeSent bool

	// ProvisionedAt is when the saga completed.
	ProvisionedAt time.Time
}

// Step names a stage of the saga, recorded on failure.
type Step string

const (
	StepValidate       Step = "validate"
	StepCheckExistence Step = "check_existence"
	StepHashCredential Step = "hash_credential"
	StepCreateProfile  Step = "create_profile"
	StepSeedLedger     Step = "seed_ledger"
	StepSendWelcome    Step = "send_welcome"
	StepPublishEvent   Step = "publish_event"
)

// Error wraps a saga failure with the step it died on.
type Error struct {
	Step Step
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provisioning failed at %s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ProvisioningSaga orchestrates profile creation.
type ProvisioningSaga struct {
	profiles player.Repository
	ledgers  *command.LedgerRegistry
	sender   notification.Sender
	events   shared.EventPublisher
}

// NewProvisioningSaga creates a new ProvisioningSaga.
func NewProvisioningSaga(
	profiles player.Repository,
	ledgers *command.LedgerRegistry,
	sender notification.Sender,
	events shared.EventPublisher,
) *ProvisioningSaga {
	return &ProvisioningSaga{
		profiles: profiles,
		ledgers:  ledgers,
		sender:   sender,
		events:   events,
	}
}

// Execute runs the saga. Idempotent: an already-provisioned account
// returns its existing profile with Created=false.
func (s *ProvisioningSaga) Execute(ctx context.Context, input ProvisioningInput) (*ProvisioningResult, error) {
	if err := input.Validate(); err != nil {
		return nil, &Error{Step: StepValidate, Err: err}
	}

	existing, err := s.profiles.GetByID(ctx, input.AccountID)
	switch {
	case err == nil:
		return &ProvisioningResult{Profile: existing, ProvisionedAt: time.Now().UTC()}, nil
	case errors.Is(err, shared.ErrNotFound):
		// Proceed to create.
	default:
		return nil, &Error{Step: StepCheckExistence, Err: err}
	}

	profile, err := player.NewProfile(input.AccountID)
	if err != nil {
		return nil, &Error{Step: StepCreateProfile, Err: err}
	}
	if input.Username != "" {
		profile.Username = input.Username
	}
	if input.Rating != 0 {
		profile.Rating = input.Rating
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, &Error{Step: StepHashCredential, Err: err}
		}
		profile.PasswordHash = string(hash)
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Lost a provisioning race; the other writer's row wins.
			existing, gerr := s.profiles.GetByID(ctx, input.AccountID)
			if gerr != nil {
				return nil, &Error{Step: StepCreateProfile, Err: gerr}
			}
			return &ProvisioningResult{Profile: existing, ProvisionedAt: time.Now().UTC()}, nil
		}
		return nil, &Error{Step: StepCreateProfile, Err: err}
	}

	s.ledgers.Register(profile)

	result := &ProvisioningResult{
		Profile:       profile,
		Created:       true,
		ProvisionedAt: time.Now().UTC(),
	}

	// Welcome delivery is best effort; a dead webhook must not undo the
	// provisioned profile.
	if s.sender != nil {
		if welcome, werr := notification.Welcome(profile.ID, profile.Username); werr == nil {
			if derr := s.sender.Deliver(ctx, welcome); derr == nil {
				result.WelcomeSent = true
			}
		}
	}

	_ = s.events.Publish(shared.NewProfileProvisionedEvent(string(profile.ID), profile.Username))
	return result, nil
}
