package sweeper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ivanmatek/ember/internal/domain/model"
)

type MatchStore interface {
	ListExpired(ctx context.Context, now time.Time) ([]model.Match, error)
	Deactivate(ctx context.Context, id string) (bool, error)
}

type ProfileStore interface {
	SetMatched(ctx context.Context, id string, matched bool) error
}

// Job deactivates matches past their expiry and returns both participants to
// the unmatched pool. Safe to run from several places at once: the expiry
// filter excludes already-deactivated records, so repeated or overlapping
// sweeps are no-ops.
type Job struct {
	matches  MatchStore
	profiles ProfileStore
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func New(matches MatchStore, profiles ProfileStore, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		matches:  matches,
		profiles: profiles,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// Sweep processes every expired active match independently: a failure on one
// record is logged and skipped, the rest of the batch continues. Returns the
// number of matches fully released.
func (j *Job) Sweep(ctx context.Context) (int, error) {
	if j.matches == nil || j.profiles == nil {
		return 0, fmt.Errorf("sweeper dependencies are not configured")
	}

	expired, err := j.matches.ListExpired(ctx, j.now())
	if err != nil {
		return 0, fmt.Errorf("list expired matches: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	released := 0
	for _, match := range expired {
		deactivated, err := j.matches.Deactivate(ctx, match.ID)
		if err != nil {
			j.logger.Warn("failed to deactivate expired match", zap.Error(err), zap.String("match_id", match.ID))
			continue
		}
		if !deactivated {
			// Another sweep got here first.
			continue
		}

		ok := true
		for _, userID := range []string{match.UserAID, match.UserBID} {
			if err := j.profiles.SetMatched(ctx, userID, false); err != nil {
				j.logger.Warn("failed to release participant of expired match",
					zap.Error(err),
					zap.String("match_id", match.ID),
					zap.String("user_id", userID),
				)
				ok = false
			}
		}
		if ok {
			released++
		}
	}

	j.logger.Info("expiry sweep completed", zap.Int("expired", len(expired)), zap.Int("released", released))
	return released, nil
}

// Run sweeps once immediately, then on every interval tick until the context
// is cancelled. Consumed by cmd/sweeper.
func (j *Job) Run(ctx context.Context) error {
	if _, err := j.Sweep(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil {
				return err
			}
		}
	}
}
