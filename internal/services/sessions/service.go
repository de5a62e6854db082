package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ivanmatek/ember/internal/domain/model"
	pgrepo "github.com/ivanmatek/ember/internal/repo/postgres"
	"github.com/ivanmatek/ember/internal/services/matching"
)

var (
	ErrValidation = errors.New("validation error")

	// ErrProfileNotFound invalidates the session: the stored user id no
	// longer resolves to a profile.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrSearchExhausted is the terminal failure of the bounded retry loop.
	ErrSearchExhausted = errors.New("match search exhausted")
)

type State string

const (
	StateResume        State = "resume"
	StateEnterMatching State = "enter_matching"
)

// Resolution tells the client where to land: back into an active chat, or
// into the matching pipeline.
type Resolution struct {
	State   State
	Match   *model.Match
	Partner *model.Profile
}

type ProfileStore interface {
	Get(ctx context.Context, id string) (model.Profile, error)
}

type MatchStore interface {
	GetActiveForUser(ctx context.Context, userID string) (model.Match, error)
}

type Arbiter interface {
	Attempt(ctx context.Context, userID string) (model.Match, error)
}

type RetryConfig struct {
	// MaxAttempts bounds the search loop so a request cannot poll the
	// pool forever.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

type Service struct {
	profiles ProfileStore
	matches  MatchStore
	arbiter  Arbiter
	retry    RetryConfig
	logger   *zap.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

type Dependencies struct {
	ProfileStore ProfileStore
	MatchStore   MatchStore
	Arbiter      Arbiter
	Logger       *zap.Logger
}

func NewService(deps Dependencies, retry RetryConfig) *Service {
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 10
	}
	if retry.BaseDelay <= 0 {
		retry.BaseDelay = 2 * time.Second
	}
	if retry.MaxDelay <= 0 {
		retry.MaxDelay = 30 * time.Second
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		profiles: deps.ProfileStore,
		matches:  deps.MatchStore,
		arbiter:  deps.Arbiter,
		retry:    retry,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Resolve decides whether the user resumes an existing chat or enters the
// matching pipeline. Read-only.
func (s *Service) Resolve(ctx context.Context, userID string) (Resolution, error) {
	if userID == "" {
		return Resolution{}, ErrValidation
	}
	if s.profiles == nil || s.matches == nil {
		return Resolution{}, fmt.Errorf("session dependencies are not configured")
	}

	if _, err := s.profiles.Get(ctx, userID); err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return Resolution{}, ErrProfileNotFound
		}
		return Resolution{}, fmt.Errorf("load session profile: %w", err)
	}

	match, err := s.matches.GetActiveForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return Resolution{State: StateEnterMatching}, nil
		}
		return Resolution{}, fmt.Errorf("look up active match: %w", err)
	}

	// An expired match the sweeper has not released yet must not resume:
	// the chat would refuse every send. Route the user back to matching.
	if match.ExpiredAt(s.now()) {
		return Resolution{State: StateEnterMatching}, nil
	}

	partnerID := match.PartnerOf(userID)
	partner, err := s.profiles.Get(ctx, partnerID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return Resolution{}, fmt.Errorf("%w: partner %s", ErrProfileNotFound, partnerID)
		}
		return Resolution{}, fmt.Errorf("load partner profile: %w", err)
	}

	return Resolution{
		State:   StateResume,
		Match:   &match,
		Partner: &partner,
	}, nil
}

// FindMatch drives the arbiter until a match lands or the retry budget runs
// out. A lost pairing race retries immediately; an empty pool or a failed
// store write backs off exponentially. The arbiter itself never retries —
// this loop is the caller-level policy.
func (s *Service) FindMatch(ctx context.Context, userID string) (model.Match, error) {
	if userID == "" {
		return model.Match{}, ErrValidation
	}
	if s.arbiter == nil {
		return model.Match{}, fmt.Errorf("session dependencies are not configured")
	}

	delay := s.retry.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		match, err := s.arbiter.Attempt(ctx, userID)
		if err == nil {
			return match, nil
		}
		lastErr = err

		// The arbiter's attempt limiter throttles each pass through the
		// pipeline, including the immediate re-attempt after a lost
		// pairing race. Inside this loop that is pacing, not failure:
		// sleep out the advertised window and go again.
		if limited, ok := matching.IsTooManyAttempts(err); ok {
			if attempt == s.retry.MaxAttempts {
				break
			}
			wait := time.Duration(limited.RetryAfterSec) * time.Second
			if wait <= 0 {
				wait = s.retry.BaseDelay
			}
			if err := s.sleep(ctx, wait); err != nil {
				return model.Match{}, err
			}
			continue
		}

		switch {
		case errors.Is(err, matching.ErrCandidateStale):
			// Pool changed under us; re-ranking right away is cheap.
			continue
		case errors.Is(err, matching.ErrNoCandidates), errors.Is(err, matching.ErrPersistence):
			if attempt == s.retry.MaxAttempts {
				break
			}
			s.logger.Debug("match attempt failed, backing off",
				zap.String("user_id", userID),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
			if err := s.sleep(ctx, delay); err != nil {
				return model.Match{}, err
			}
			delay *= 2
			if delay > s.retry.MaxDelay {
				delay = s.retry.MaxDelay
			}
		default:
			return model.Match{}, err
		}
	}

	return model.Match{}, fmt.Errorf("%w after %d attempts: %w", ErrSearchExhausted, s.retry.MaxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
