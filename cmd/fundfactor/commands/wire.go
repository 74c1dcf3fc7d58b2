package commands

import (
	"context"
	"fmt"

	"github.com/wonny/fundfactor/internal/external/famafrench"
	"github.com/wonny/fundfactor/internal/external/spreadsheet"
	"github.com/wonny/fundfactor/internal/external/yahoo"
	"github.com/wonny/fundfactor/internal/factors"
	"github.com/wonny/fundfactor/internal/fund"
	"github.com/wonny/fundfactor/pkg/config"
	"github.com/wonny/fundfactor/pkg/httputil"
	"github.com/wonny/fundfactor/pkg/logger"
	"github.com/wonny/fundfactor/pkg/redis"
)

// app holds the collaborators shared by every command
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	redis   *redis.Client
	french  *famafrench.Client
	service *fund.Service
}

// newApp wires config, providers and the fund service
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.New(cfg)

	redisClient, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	if redisClient.Enabled() {
		log.Info("Connected to Redis")
	}

	// One transport per provider so each gets its own shared limit
	yahooHTTP := httputil.New(cfg, log)
	frenchHTTP := httputil.New(cfg, log)
	if redisClient.Enabled() {
		limiter := redis.NewRateLimiter(redisClient, "fundfactor")
		yahooHTTP.WithRateLimiter(limiter, redis.YahooRateLimit)
		frenchHTTP.WithRateLimiter(limiter, redis.FrenchRateLimit)
	}

	market := yahoo.NewClient(yahooHTTP, log, cfg.Yahoo.BaseURL)
	french := famafrench.NewClient(frenchHTTP, log, cfg.French.BaseURL)

	provider := factors.NewProvider(french, log).
		WithCache(redis.NewCache(redisClient, "fundfactor"), cfg.FactorCacheTTL)

	service := fund.NewService(fund.Deps{
		Market:       market,
		Spreadsheet:  spreadsheet.NewLoader(log),
		Factors:      provider,
		Logger:       log,
		HistoryStart: cfg.HistoryStart,
	})

	return &app{
		cfg:     cfg,
		log:     log,
		redis:   redisClient,
		french:  french,
		service: service,
	}, nil
}

// Close releases the Redis connection
func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close Redis")
	}
}
