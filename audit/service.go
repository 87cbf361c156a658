// audit/service.go
package audit

import (
	"context"
	"time"
)

type Service interface {
	LogDecision(ctx context.Context, log DecisionLog) error
	QueryLogs(ctx context.Context, from, to time.Time, userID string) ([]DecisionLog, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) LogDecision(ctx context.Context, log DecisionLog) error {
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}
	return s.repo.LogDecision(ctx, log)
}

func (s *service) QueryLogs(ctx context.Context, from, to time.Time, userID string) ([]DecisionLog, error) {
	return s.repo.QueryLogs(ctx, from, to, userID)
}
