// @title                       Ventes API
// @version                     1.0
// @description                 Sales records behind username/password authentication and bearer tokens.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gestion-ventes/ventes-api/internal/api"
	"github.com/gestion-ventes/ventes-api/internal/api/metrics"
	"github.com/gestion-ventes/ventes-api/internal/api/middleware"
	"github.com/gestion-ventes/ventes-api/internal/core/ports"
	"github.com/gestion-ventes/ventes-api/internal/core/service"
	"github.com/gestion-ventes/ventes-api/internal/infrastructure/db/mongo"
	"github.com/gestion-ventes/ventes-api/internal/infrastructure/db/postgres"
	"github.com/gestion-ventes/ventes-api/internal/infrastructure/db/redis"
	"github.com/gestion-ventes/ventes-api/internal/infrastructure/http/handlers"
	"github.com/gestion-ventes/ventes-api/internal/infrastructure/memory"
	"github.com/gestion-ventes/ventes-api/internal/infrastructure/security/password"
	"github.com/gestion-ventes/ventes-api/internal/infrastructure/security/token"
	"github.com/gestion-ventes/ventes-api/internal/pkg/config"
	"github.com/gestion-ventes/ventes-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ventes-api: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "ventes-api",
	})

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	checks := st.checks
	var rdb *goredis.Client
	if cfg.RateLimit.Backend == config.RateLimitBackendRedis {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks = append(checks, handlers.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	hasher, err := password.New(password.Config{
		Algorithm:  cfg.Auth.PasswordAlgorithm,
		Iterations: cfg.Auth.PasswordIterations,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	if err != nil {
		return err
	}
	tokens, err := token.NewService(cfg.Auth.JWTSecret)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(st.users, hasher, tokens, cfg.Auth.TokenTTL, log)
	saleService := service.NewSaleService(st.sales, log)

	if cfg.Bootstrap.Enabled {
		if _, err := authService.BootstrapAdmin(ctx, service.BootstrapConfig{
			Username:     cfg.Bootstrap.Username,
			Password:     cfg.Bootstrap.Password,
			PasswordFile: cfg.Bootstrap.PasswordFile,
		}); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	registerLimiter, loginLimiter, apiLimiter := newLimiters(cfg.RateLimit, rdb)
	keyFunc := middleware.KeyByIP
	if cfg.RateLimit.KeyStrategy == config.RateLimitKeyUsername {
		keyFunc = middleware.KeyByUsername
	}

	trusted, err := cfg.TrustedProxyRanges()
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		AuthService:     authService,
		SaleService:     saleService,
		Verifier:        tokens,
		RegisterLimiter: registerLimiter,
		LoginLimiter:    loginLimiter,
		APILimiter:      apiLimiter,
		RateLimitKey:    keyFunc,
		TrustedProxies:  trusted,
		CORSOrigins:     cfg.CORSOrigins,
		Checks:          checks,
		Registry:        reg,
		Metrics:         metrics.New(reg),
		Logger:          log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.StoreDriver).
			Str("rate_limit_backend", cfg.RateLimit.Backend).
			Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// store is the persistence backend chosen by STORE_DRIVER.
type store struct {
	users  ports.UserRepository
	sales  ports.SaleRepository
	checks []handlers.Check
	close  func()
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		ms, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := ms.EnsureIndexes(ctx); err != nil {
			_ = ms.Close(context.Background())
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")
		return &store{
			users:  mongo.NewUserRepository(ms.DB, cfg.Mongo.QueryTimeout),
			sales:  mongo.NewSaleRepository(ms.DB, cfg.Mongo.QueryTimeout),
			checks: []handlers.Check{{Name: "mongodb", Ping: ms.Ping}},
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = ms.Close(ctx)
			},
		}, nil

	default:
		db, err := postgres.Connect(ctx, postgres.Config{
			DSN:             cfg.Postgres.DSN,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Msg("postgres connected")
		return &store{
			users:  postgres.NewUserRepository(db, cfg.Postgres.QueryTimeout),
			sales:  postgres.NewSaleRepository(db, cfg.Postgres.QueryTimeout),
			checks: []handlers.Check{{Name: "postgres", Ping: db.PingContext}},
			close:  func() { _ = db.Close() },
		}, nil
	}
}

func newLimiters(cfg config.RateLimitConfig, rdb *goredis.Client) (register, login, apiLimiter ports.RateLimiter) {
	if rdb != nil {
		return redis.NewRateLimiter(rdb, "register", cfg.RegisterLimit, cfg.RegisterWindow),
			redis.NewRateLimiter(rdb, "login", cfg.LoginLimit, cfg.LoginWindow),
			redis.NewRateLimiter(rdb, "api", cfg.APILimit, cfg.APIWindow)
	}
	return memory.NewRateLimiter(cfg.RegisterLimit, cfg.RegisterWindow),
		memory.NewRateLimiter(cfg.LoginLimit, cfg.LoginWindow),
		memory.NewRateLimiter(cfg.APILimit, cfg.APIWindow)
}
