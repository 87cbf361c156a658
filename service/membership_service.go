// service/membership_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/model"
	"github.com/dev-mohitbeniwal/tokengate/util"
)

// Registry is the membership store the service reads and writes.
type Registry interface {
	GetUser(ctx context.Context, userID string) (*model.UserRecord, error)
	SetWallet(ctx context.Context, user model.UserRecord) error
	ListUsers(ctx context.Context) ([]model.UserRecord, error)
}

// AccessEvaluator produces access decisions for registered users.
type AccessEvaluator interface {
	Evaluate(ctx context.Context, userID string) (*model.AccessDecision, error)
	Policy() model.Policy
}

// BalanceProvider is used for the pre-registration wallet check.
type BalanceProvider interface {
	GetBalance(ctx context.Context, wallet, mint string) (float64, error)
}

// IMembershipService defines the command-level operations behind the chat
// commands and admin endpoints.
type IMembershipService interface {
	RegisterWallet(ctx context.Context, user model.UserRecord, wallet string) (*model.AccessDecision, error)
	CheckBalance(ctx context.Context, userID, trigger string) (*model.AccessDecision, error)
	RequestAccess(ctx context.Context, userID string) (*model.AccessDecision, string, error)
	GetUser(ctx context.Context, userID string) (*model.UserRecord, error)
	ListUsers(ctx context.Context) ([]model.UserRecord, error)
}

// MembershipService orchestrates registration, balance checks, and access
// requests. The evaluator stays read-only; enforcement side effects
// (invite links) and event publication happen here.
type MembershipService struct {
	registry        Registry
	validationUtil  *util.ValidationUtil
	evaluator       AccessEvaluator
	balances        BalanceProvider
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IMembershipService = &MembershipService{}

func NewMembershipService(
	registry Registry,
	validationUtil *util.ValidationUtil,
	evaluator AccessEvaluator,
	balances BalanceProvider,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) *MembershipService {
	return &MembershipService{
		registry:        registry,
		validationUtil:  validationUtil,
		evaluator:       evaluator,
		balances:        balances,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}
}

// RegisterWallet validates and stores a user's wallet, then evaluates
// access with the fresh registration. Used by both first registration and
// /change; the new wallet overwrites the old one.
func (s *MembershipService) RegisterWallet(ctx context.Context, user model.UserRecord, wallet string) (*model.AccessDecision, error) {
	if err := s.validationUtil.ValidateWalletAddress(wallet); err != nil {
		return nil, err
	}

	// The wallet must be resolvable before we persist it, so a user cannot
	// register an address no source can answer for.
	policy := s.evaluator.Policy()
	if _, err := s.balances.GetBalance(ctx, wallet, policy.TokenMint); err != nil {
		if errors.Is(err, gate_errors.ErrBalanceUnavailable) {
			return nil, gate_errors.ErrBalanceUnavailable
		}
		logger.Error("Wallet verification failed", zap.Error(err), zap.String("userID", user.ID))
		return nil, fmt.Errorf("verify wallet: %w", err)
	}

	user.Wallet = wallet
	if err := s.registry.SetWallet(ctx, user); err != nil {
		return nil, err
	}
	s.eventBus.Publish(ctx, util.EventWalletRegistered, user)

	decision, err := s.evaluate(ctx, user, model.TriggerRegistration)
	if err != nil {
		return nil, err
	}
	return decision, nil
}

// CheckBalance re-evaluates a user's access without any enforcement side
// effect. trigger distinguishes /verify, /checkme, and admin re-checks in
// the audit trail.
func (s *MembershipService) CheckBalance(ctx context.Context, userID, trigger string) (*model.AccessDecision, error) {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, *user, trigger)
}

// RequestAccess evaluates the user and, when granted, mints a fresh invite
// link for the gated channel. Administrative notification fires on both
// outcomes via the access.evaluated event so a human can audit the call.
func (s *MembershipService) RequestAccess(ctx context.Context, userID string) (*model.AccessDecision, string, error) {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	decision, err := s.evaluate(ctx, *user, model.TriggerVIPRequest)
	if err != nil {
		return nil, "", err
	}
	if !decision.Granted {
		return decision, "", nil
	}

	link, err := s.notificationSvc.VIPInviteLink(ctx)
	if err != nil {
		// Access stands; only link delivery failed. The user is told to
		// contact an admin instead.
		logger.Warn("Granted access but invite link creation failed",
			zap.Error(err), zap.String("userID", userID))
		return decision, "", nil
	}
	return decision, link, nil
}

func (s *MembershipService) GetUser(ctx context.Context, userID string) (*model.UserRecord, error) {
	return s.registry.GetUser(ctx, userID)
}

func (s *MembershipService) ListUsers(ctx context.Context) ([]model.UserRecord, error) {
	return s.registry.ListUsers(ctx)
}

func (s *MembershipService) lookup(ctx context.Context, userID string) (*model.UserRecord, error) {
	user, err := s.registry.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrUserNotFound) {
			return nil, gate_errors.ErrNoWalletRegistered
		}
		return nil, err
	}
	if user.Wallet == "" {
		return nil, gate_errors.ErrNoWalletRegistered
	}
	return user, nil
}

func (s *MembershipService) evaluate(ctx context.Context, user model.UserRecord, trigger string) (*model.AccessDecision, error) {
	decision, err := s.evaluator.Evaluate(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.eventBus.Publish(ctx, util.EventAccessEvaluated, model.AccessEvent{
		User:     user,
		Decision: *decision,
		Trigger:  trigger,
	})
	return decision, nil
}
