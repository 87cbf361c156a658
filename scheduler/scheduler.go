// scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/model"
	"github.com/dev-mohitbeniwal/tokengate/util"
)

// Registry enumerates registered users. Channel membership is audited over
// this same set: the Bot API offers no full member enumeration, so the
// registered-user list is the roster proxy.
type Registry interface {
	ListUsers(ctx context.Context) ([]model.UserRecord, error)
}

// Evaluator produces the access decision for one user.
type Evaluator interface {
	Evaluate(ctx context.Context, userID string) (*model.AccessDecision, error)
}

// Notifier delivers sweep outcomes. Satisfied by util.NotificationService.
type Notifier interface {
	NotifyUser(ctx context.Context, userChatID, text string) error
	NotifyAdmin(ctx context.Context, text string) error
}

// Scheduler drives the two periodic reconciliation tasks: the per-user
// sweep (direct shortfall alerts to users) and the channel audit (one
// admin alert per below-threshold user per cycle). It never removes
// members; removal stays an out-of-band human action.
type Scheduler struct {
	registry  Registry
	evaluator Evaluator
	notifier  Notifier
	eventBus  *util.EventBus
	policy    model.Policy

	userSweepInterval    time.Duration
	channelAuditInterval time.Duration
	workers              int

	sweepRunning atomic.Bool
	auditRunning atomic.Bool
}

func New(
	registry Registry,
	evaluator Evaluator,
	notifier Notifier,
	eventBus *util.EventBus,
	policy model.Policy,
	userSweepInterval, channelAuditInterval time.Duration,
	workers int,
) *Scheduler {
	if workers <= 0 {
		workers = 1
	}
	return &Scheduler{
		registry:             registry,
		evaluator:            evaluator,
		notifier:             notifier,
		eventBus:             eventBus,
		policy:               policy,
		userSweepInterval:    userSweepInterval,
		channelAuditInterval: channelAuditInterval,
		workers:              workers,
	}
}

// Start launches both periodic tasks and returns. They stop when ctx is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx, s.userSweepInterval, s.RunUserSweep)
	go s.loop(ctx, s.channelAuditInterval, s.RunChannelAudit)
	logger.Info("Reconciliation scheduler started",
		zap.Duration("userSweepInterval", s.userSweepInterval),
		zap.Duration("channelAuditInterval", s.channelAuditInterval))
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, task func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			task(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunUserSweep evaluates every registered user and notifies those denied
// for an insufficient balance directly, with the shortfall. Users whose
// balance is unavailable are skipped silently and retried next sweep.
func (s *Scheduler) RunUserSweep(ctx context.Context) {
	if !s.sweepRunning.CompareAndSwap(false, true) {
		logger.Warn("Previous user sweep still running, skipping this cycle")
		return
	}
	defer s.sweepRunning.Store(false)

	s.forEachUser(ctx, model.TriggerUserSweep, func(ctx context.Context, user model.UserRecord, decision *model.AccessDecision) {
		if decision.Granted || !decision.HasBalance || decision.WithinGrace {
			return
		}
		text := fmt.Sprintf(
			"Balance alert\n\nYour wallet: %s\nCurrent balance: %.2f tokens\nMinimum required: %.2f tokens\nMissing: %.2f tokens\n\nYour channel access will be revoked if you don't add more tokens.",
			model.ShortWallet(user.Wallet), decision.Balance, s.policy.MinTokenAmount, decision.Shortfall)
		if err := s.notifier.NotifyUser(ctx, user.ID, text); err != nil {
			logger.Warn("Failed to deliver sweep alert",
				zap.String("userID", user.ID), zap.Error(err))
		}
	})
}

// RunChannelAudit evaluates the same user set and emits exactly one
// administrative alert per below-threshold user per cycle.
func (s *Scheduler) RunChannelAudit(ctx context.Context) {
	if !s.auditRunning.CompareAndSwap(false, true) {
		logger.Warn("Previous channel audit still running, skipping this cycle")
		return
	}
	defer s.auditRunning.Store(false)

	var lowBalance atomic.Int64
	s.forEachUser(ctx, model.TriggerChannelAudit, func(ctx context.Context, user model.UserRecord, decision *model.AccessDecision) {
		if decision.Granted || !decision.HasBalance || decision.WithinGrace {
			return
		}
		lowBalance.Add(1)
		text := fmt.Sprintf(
			"Low token alert\n\nUser: %s (@%s)\nWallet: %s\nBalance: %.2f tokens\nRequired: %.2f tokens\nMissing: %.2f tokens\n\nAction required: remove this user from the channel manually if needed. The bot does not remove users automatically.",
			user.Name, user.Username, model.ShortWallet(user.Wallet),
			decision.Balance, s.policy.MinTokenAmount, decision.Shortfall)
		if err := s.notifier.NotifyAdmin(ctx, text); err != nil {
			logger.Warn("Failed to deliver audit alert",
				zap.String("userID", user.ID), zap.Error(err))
		}
	})

	logger.Info("Channel audit complete", zap.Int64("lowBalanceUsers", lowBalance.Load()))
}

// forEachUser runs one reconciliation pass: every registered user is
// evaluated through a bounded worker pool, and the per-user action runs
// inside the same task so a user's notifications are never reordered. A
// failure (or panic) in one user's evaluation never aborts the rest of
// the pass.
func (s *Scheduler) forEachUser(ctx context.Context, trigger string, act func(context.Context, model.UserRecord, *model.AccessDecision)) {
	users, err := s.registry.ListUsers(ctx)
	if err != nil {
		logger.Error("Failed to list users for reconciliation", zap.Error(err))
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, user := range users {
		user := user
		if user.Wallet == "" {
			continue
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Recovered panic during user evaluation",
						zap.String("userID", user.ID), zap.Any("panic", r))
				}
			}()

			decision, err := s.evaluator.Evaluate(gctx, user.ID)
			if err != nil {
				logger.Warn("Evaluation failed during sweep",
					zap.String("userID", user.ID), zap.Error(err))
				return nil
			}
			if s.eventBus != nil {
				s.eventBus.Publish(gctx, util.EventAccessEvaluated, model.AccessEvent{
					User:     user,
					Decision: *decision,
					Trigger:  trigger,
				})
			}
			// Soft failure: skip silently, retried next cycle.
			if decision.Unavailable {
				return nil
			}
			act(gctx, user, decision)
			return nil
		})
	}
	// Workers never return errors; failures are isolated per user.
	_ = g.Wait()
}
