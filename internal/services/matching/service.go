package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ivanmatek/ember/internal/domain/model"
	pgrepo "github.com/ivanmatek/ember/internal/repo/postgres"
	"github.com/ivanmatek/ember/internal/services/candidates"
)

var (
	ErrValidation = errors.New("validation error")

	// ErrNoCandidates reports an empty (or, without the zero-score
	// fallback, fully incompatible) unmatched pool. Recoverable: retry
	// later.
	ErrNoCandidates = errors.New("no candidates available")

	// ErrCandidateStale reports that the chosen candidate was matched by a
	// concurrent attempt between ranking and pairing. Recoverable: retry
	// immediately from ranking.
	ErrCandidateStale = errors.New("candidate no longer unmatched")

	// ErrPersistence reports a failed store write. Recoverable: retry with
	// backoff.
	ErrPersistence = errors.New("persistence error")
)

// TooManyAttemptsError is returned when the attempt limiter denies entry to
// the pipeline.
type TooManyAttemptsError struct {
	RetryAfterSec int64
}

func (e TooManyAttemptsError) Error() string {
	return fmt.Sprintf("too many match attempts, retry after %ds", e.RetryAfterSec)
}

func IsTooManyAttempts(err error) (TooManyAttemptsError, bool) {
	var target TooManyAttemptsError
	if errors.As(err, &target) {
		return target, true
	}
	return TooManyAttemptsError{}, false
}

type ProfileStore interface {
	Get(ctx context.Context, id string) (model.Profile, error)
	ListUnmatched(ctx context.Context, excludeID string) ([]model.Profile, error)
	SetMatched(ctx context.Context, id string, matched bool) error
}

type MatchStore interface {
	GetActiveBetween(ctx context.Context, userA, userB string) (model.Match, error)
	CreatePair(ctx context.Context, userA, userB string, expiresAt time.Time) (model.Match, error)
}

type Selector interface {
	RankFor(ctx context.Context, self model.Profile) ([]candidates.Candidate, error)
}

type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type AttemptLimiter interface {
	AllowAttempt(ctx context.Context, userID string) (int64, bool, error)
}

type Config struct {
	// MatchTTL is how long a pairing lives before the sweeper releases both
	// participants. Defaults to 48 hours.
	MatchTTL time.Duration

	// AllowZeroScoreFallback pairs the top candidate even at score 0. With
	// the flag off, a zero-score pool behaves like an empty one.
	AllowZeroScoreFallback bool
}

type Service struct {
	profiles ProfileStore
	matches  MatchStore
	selector Selector
	sweeper  Sweeper
	limiter  AttemptLimiter
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

type Dependencies struct {
	ProfileStore ProfileStore
	MatchStore   MatchStore
	Selector     Selector
	Sweeper      Sweeper
	Limiter      AttemptLimiter
	Logger       *zap.Logger
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.MatchTTL <= 0 {
		cfg.MatchTTL = 48 * time.Hour
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		profiles: deps.ProfileStore,
		matches:  deps.MatchStore,
		selector: deps.Selector,
		sweeper:  deps.Sweeper,
		limiter:  deps.Limiter,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Attempt runs one pass of the matching pipeline for the user. The step
// order matters for safety under concurrent and duplicate invocations:
// an existing active match short-circuits to success before any write, the
// pool is re-checked right before pairing, and the pairing itself is a
// conditional write that loses cleanly to a faster arbiter. Attempt never
// retries; retry policy belongs to the caller.
func (s *Service) Attempt(ctx context.Context, userID string) (model.Match, error) {
	if userID == "" {
		return model.Match{}, ErrValidation
	}
	if s.profiles == nil || s.matches == nil || s.selector == nil {
		return model.Match{}, fmt.Errorf("matching dependencies are not configured")
	}

	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowAttempt(ctx, userID)
		if err != nil {
			return model.Match{}, fmt.Errorf("apply attempt limiter: %w", err)
		}
		if !allowed {
			return model.Match{}, TooManyAttemptsError{RetryAfterSec: retryAfter}
		}
	}

	// Opportunistic sweep so a user whose previous match just expired is
	// eligible again without waiting for the background loop. Best effort.
	if s.sweeper != nil {
		if _, err := s.sweeper.Sweep(ctx); err != nil {
			s.logger.Warn("pre-attempt sweep failed", zap.Error(err))
		}
	}

	self, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Match{}, fmt.Errorf("%w: unknown user %s", ErrValidation, userID)
		}
		return model.Match{}, fmt.Errorf("load requesting profile: %w", err)
	}

	ranked, err := s.selector.RankFor(ctx, self)
	if err != nil {
		return model.Match{}, fmt.Errorf("rank candidates: %w", err)
	}
	if len(ranked) == 0 {
		return model.Match{}, ErrNoCandidates
	}

	best := ranked[0]
	if best.Score == 0 && !s.cfg.AllowZeroScoreFallback {
		return model.Match{}, ErrNoCandidates
	}

	// A duplicate attempt racing an earlier one may find the pair already
	// linked. Treat that as success and repair the matched flags, which the
	// earlier attempt may not have committed yet.
	existing, err := s.matches.GetActiveBetween(ctx, userID, best.Profile.ID)
	if err == nil {
		if err := s.repairFlags(ctx, existing); err != nil {
			return model.Match{}, err
		}
		return existing, nil
	}
	if !errors.Is(err, pgrepo.ErrMatchNotFound) {
		return model.Match{}, fmt.Errorf("check existing match: %w", err)
	}

	// Re-check the pool: another arbiter may have matched best to someone
	// else since ranking.
	pool, err := s.profiles.ListUnmatched(ctx, userID)
	if err != nil {
		return model.Match{}, fmt.Errorf("re-check unmatched pool: %w", err)
	}
	if !containsProfile(pool, best.Profile.ID) {
		return model.Match{}, ErrCandidateStale
	}

	match, err := s.matches.CreatePair(ctx, userID, best.Profile.ID, s.now().Add(s.cfg.MatchTTL))
	if err != nil {
		if errors.Is(err, pgrepo.ErrCandidateTaken) {
			return model.Match{}, ErrCandidateStale
		}
		return model.Match{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.logger.Info("match created",
		zap.String("match_id", match.ID),
		zap.String("user_a", match.UserAID),
		zap.String("user_b", match.UserBID),
		zap.Int("score", best.Score),
		zap.Time("expires_at", match.ExpiresAt),
	)

	return match, nil
}

func (s *Service) repairFlags(ctx context.Context, match model.Match) error {
	for _, id := range []string{match.UserAID, match.UserBID} {
		if err := s.profiles.SetMatched(ctx, id, true); err != nil {
			return fmt.Errorf("%w: repair matched flag for %s: %w", ErrPersistence, id, err)
		}
	}
	return nil
}

func containsProfile(pool []model.Profile, id string) bool {
	for _, p := range pool {
		if p.ID == id {
			return true
		}
	}
	return false
}
