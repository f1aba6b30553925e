package storage

import (
	"context"
	"errors"

	"github.com/user/inventory-service/internal/domain"
	"go.uber.org/zap"
)

// RunHistory is the durable side of the run log.
type RunHistory interface {
	Ping(ctx context.Context) error
	RecordRun(ctx context.Context, run domain.RunRecord) error
	LastRun(ctx context.Context, source string) (*domain.RunRecord, error)
}

// StreakCounter is the fast side of the run log.
type StreakCounter interface {
	Ping(ctx context.Context) error
	IncrementFailureStreak(ctx context.Context, source string) (int64, error)
	ResetFailureStreak(ctx context.Context, source string) error
	FailureStreak(ctx context.Context, source string) (int64, error)
}

// RunLog combines run history and failure streaks. Either part may be nil,
// in which case it is skipped.
type RunLog struct {
	history RunHistory
	streaks StreakCounter
	logger  *zap.Logger
}

func NewRunLog(h RunHistory, c StreakCounter, l *zap.Logger) *RunLog {
	return &RunLog{history: h, streaks: c, logger: l}
}

// Enabled reports whether at least one store is configured.
func (rl *RunLog) Enabled() bool {
	return rl.history != nil || rl.streaks != nil
}

// RecordRun writes run to both stores. Both writes are attempted even if the
// first fails.
func (rl *RunLog) RecordRun(ctx context.Context, run domain.RunRecord) error {
	var errs []error
	if rl.history != nil {
		if err := rl.history.RecordRun(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	if rl.streaks != nil {
		if run.Status == domain.RunCompleted {
			if err := rl.streaks.ResetFailureStreak(ctx, run.Source); err != nil {
				errs = append(errs, err)
			}
		} else {
			n, err := rl.streaks.IncrementFailureStreak(ctx, run.Source)
			if err != nil {
				errs = append(errs, err)
			} else if n > 1 {
				rl.logger.Warn("upstream failing repeatedly",
					zap.String("source", run.Source),
					zap.Int64("streak", n),
					zap.String("status", run.Status),
				)
			}
		}
	}
	return errors.Join(errs...)
}

// Status returns the last run and current failure streak for source.
func (rl *RunLog) Status(ctx context.Context, source string) (*domain.RunStatusResponse, error) {
	if !rl.Enabled() {
		return nil, domain.ErrRunLogDisabled
	}
	resp := &domain.RunStatusResponse{}
	if rl.history != nil {
		run, err := rl.history.LastRun(ctx, source)
		if err != nil {
			return nil, err
		}
		resp.LastRun = run
	}
	if rl.streaks != nil {
		n, err := rl.streaks.FailureStreak(ctx, source)
		if err != nil {
			return nil, err
		}
		resp.FailureStreak = n
	}
	return resp, nil
}

// Health pings each configured store.
func (rl *RunLog) Health(ctx context.Context) map[string]string {
	health := make(map[string]string)
	if rl.history != nil {
		health["postgres"] = pingStatus(ctx, rl.history.Ping, "postgres", rl.logger)
	}
	if rl.streaks != nil {
		health["redis"] = pingStatus(ctx, rl.streaks.Ping, "redis", rl.logger)
	}
	return health
}

func pingStatus(ctx context.Context, ping func(context.Context) error, name string, l *zap.Logger) string {
	if err := ping(ctx); err != nil {
		l.Error("health check failed for "+name, zap.Error(err))
		return "unhealthy"
	}
	return "healthy"
}
