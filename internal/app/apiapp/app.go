package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivanmatek/ember/internal/config"
	"github.com/ivanmatek/ember/internal/jobs/sweeper"
	pgrepo "github.com/ivanmatek/ember/internal/repo/postgres"
	redrepo "github.com/ivanmatek/ember/internal/repo/redis"
	candidatessvc "github.com/ivanmatek/ember/internal/services/candidates"
	matchingsvc "github.com/ivanmatek/ember/internal/services/matching"
	messagessvc "github.com/ivanmatek/ember/internal/services/messages"
	profilesvc "github.com/ivanmatek/ember/internal/services/profiles"
	ratesvc "github.com/ivanmatek/ember/internal/services/rate"
	sessionssvc "github.com/ivanmatek/ember/internal/services/sessions"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	sweepJob   *sweeper.Job
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	profileRepo := pgrepo.NewProfileRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)

	profileService := profilesvc.NewService(profileRepo)
	candidateService := candidatessvc.NewService(profileRepo)
	attemptLimiter := ratesvc.NewLimiter(rateRepo, cfg.Matching.AttemptsPerWindow, cfg.Matching.AttemptWindow)
	sweepJob := sweeper.New(matchRepo, profileRepo, cfg.Sweep.Interval, log)
	matchingService := matchingsvc.NewService(matchingsvc.Dependencies{
		ProfileStore: profileRepo,
		MatchStore:   matchRepo,
		Selector:     candidateService,
		Sweeper:      sweepJob,
		Limiter:      attemptLimiter,
		Logger:       log,
	}, matchingsvc.Config{
		MatchTTL:               cfg.Matching.TTL,
		AllowZeroScoreFallback: cfg.Matching.AllowZeroScoreFallback,
	})
	sessionService := sessionssvc.NewService(sessionssvc.Dependencies{
		ProfileStore: profileRepo,
		MatchStore:   matchRepo,
		Arbiter:      matchingService,
		Logger:       log,
	}, sessionssvc.RetryConfig{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
	})
	messageHub := messagessvc.NewHub()
	messageService := messagessvc.NewService(matchRepo, messageRepo, messageHub)

	RegisterRoutes(r, Dependencies{
		ProfileService:  profileService,
		SessionService:  sessionService,
		MatchingService: matchingService,
		MessageService:  messageService,
		MessageHub:      messageHub,
		MatchRepo:       matchRepo,
		SweepJob:        sweepJob,
		Logger:          log,
		Config:          cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		sweepJob:   sweepJob,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// RunSweeper drives the background expiry loop until ctx is cancelled.
func (a *App) RunSweeper(ctx context.Context) error {
	return a.sweepJob.Run(ctx)
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
