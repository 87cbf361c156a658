// engine/evaluator.go
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/model"
)

// Registry is the membership lookup the evaluator reads from.
type Registry interface {
	GetUser(ctx context.Context, userID string) (*model.UserRecord, error)
}

// BalanceProvider answers balance queries for (wallet, mint).
type BalanceProvider interface {
	GetBalance(ctx context.Context, wallet, mint string) (float64, error)
}

// Evaluator turns a user ID into an access decision against the configured
// policy. It is read-only with respect to membership: it never removes or
// invites anyone. Enforcement and notification are side effects of the
// caller, driven by the returned decision.
type Evaluator struct {
	registry Registry
	balances BalanceProvider
	policy   model.Policy
}

func NewEvaluator(registry Registry, balances BalanceProvider, policy model.Policy) *Evaluator {
	return &Evaluator{
		registry: registry,
		balances: balances,
		policy:   policy,
	}
}

// Policy returns the gate policy the evaluator decides against.
func (e *Evaluator) Policy() model.Policy {
	return e.policy
}

// Evaluate computes the current access decision for a user. A user with no
// registered wallet is denied without any balance lookup. An unavailable
// balance is a soft failure: the decision is a deny, but flagged so
// callers retry on the next cycle instead of revoking membership.
func (e *Evaluator) Evaluate(ctx context.Context, userID string) (*model.AccessDecision, error) {
	user, err := e.registry.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrUserNotFound) {
			return &model.AccessDecision{
				Granted:   false,
				Rationale: "no wallet registered",
			}, nil
		}
		return nil, err
	}
	if user.Wallet == "" {
		return &model.AccessDecision{
			Granted:   false,
			Rationale: "no wallet registered",
		}, nil
	}

	balance, err := e.balances.GetBalance(ctx, user.Wallet, e.policy.TokenMint)
	if err != nil {
		if errors.Is(err, gate_errors.ErrBalanceUnavailable) {
			logger.Warn("Balance unavailable for evaluation",
				zap.String("userID", userID),
				zap.String("wallet", model.ShortWallet(user.Wallet)))
			return &model.AccessDecision{
				Granted:     false,
				Unavailable: true,
				Rationale:   "balance unavailable",
			}, nil
		}
		return nil, err
	}

	decision := &model.AccessDecision{
		Balance:    balance,
		HasBalance: true,
	}

	// The threshold is inclusive: balance == minimum grants access.
	if balance >= e.policy.MinTokenAmount {
		decision.Granted = true
		decision.Rationale = fmt.Sprintf("balance %.2f meets minimum %.2f", balance, e.policy.MinTokenAmount)
	} else {
		decision.Shortfall = e.policy.MinTokenAmount - balance
		decision.WithinGrace = e.policy.GraceMargin > 0 &&
			balance >= e.policy.MinTokenAmount-e.policy.GraceMargin
		decision.Rationale = fmt.Sprintf("balance %.2f below minimum %.2f, missing %.2f",
			balance, e.policy.MinTokenAmount, decision.Shortfall)
	}

	logger.Info("Access evaluated",
		zap.String("userID", userID),
		zap.Bool("granted", decision.Granted),
		zap.String("rationale", decision.Rationale))
	return decision, nil
}
