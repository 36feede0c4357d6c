// Package bootstrap wires configuration into the catalog's services.
package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/bazarromero/catalog/app/controllers"
	appgraphql "github.com/bazarromero/catalog/app/graphql"
	"github.com/bazarromero/catalog/app/repositories"
	"github.com/bazarromero/catalog/app/routes"
	"github.com/bazarromero/catalog/app/services"
	"github.com/bazarromero/catalog/config"
	_ "github.com/bazarromero/catalog/database/migrations"
	"github.com/bazarromero/catalog/internal/kernel"
	"github.com/bazarromero/catalog/pkg/auth"
	"github.com/bazarromero/catalog/pkg/database"
	"github.com/bazarromero/catalog/pkg/logger"
	"github.com/bazarromero/catalog/pkg/migration"
	"github.com/bazarromero/catalog/pkg/ratelimit"
	"github.com/bazarromero/catalog/pkg/storage"
)

// App holds the booted services. Call Close when done.
type App struct {
	Deps    routes.Dependencies
	Options kernel.Options

	closers []func()
}

// Boot loads config, connects the configured stores and builds services.
// The database driver migrates on boot. Either driver creates the default
// admin when no account exists.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a := &App{Options: kernel.Options{
		AllowedOrigins: config.AllowedOrigins(),
		TrustProxy:     config.TrustProxy(),
		Driver:         config.CatalogDriver(),
	}}

	if uri := config.LogMongoURI(); uri != "" {
		if err := logger.AttachMongo(uri, config.LogMongoDB(), config.LogMongoCollection()); err != nil {
			logger.Warn("mongo log sink unavailable", "error", err)
		} else {
			a.closers = append(a.closers, logger.Detach)
		}
	}

	if err := storage.Connect(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("connect storage: %w", err)
	}

	tokens, err := auth.NewTokenService(config.JWTSecret(), config.JWTTTL())
	if err != nil {
		a.Close()
		return nil, err
	}
	if tokens.Ephemeral() {
		logger.Warn("JWT_SECRET is not set; using a random secret, tokens will not survive a restart")
	}

	limiter, err := a.limiter(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	products, users, err := a.repositories()
	if err != nil {
		a.Close()
		return nil, err
	}

	imageDisk, err := storage.Use(config.StorageDefault())
	if err != nil {
		a.Close()
		return nil, err
	}

	authService := services.NewAuthService(users, tokens, limiter)
	productService := services.NewProductService(products)

	created, err := authService.EnsureAdmin(ctx, config.AdminUsername(), config.AdminPassword())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logger.Warn("default admin created, change its password", "username", config.AdminUsername())
	}

	schema, err := appgraphql.NewSchema(productService)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}

	a.Deps = routes.Dependencies{
		Products: productService,
		Auth:     authService,
		Images:   services.NewImageService(imageDisk, config.UploadMaxBytes()),
		Limiter:  limiter,
		GraphQL:  schema,
	}
	return a, nil
}

// Kernel builds the HTTP kernel for the booted services.
func (a *App) Kernel() *kernel.HTTPKernel {
	return kernel.NewHTTPKernel(a.Deps, a.Options)
}

// Close releases connections and background goroutines in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) limiter(ctx context.Context) (ratelimit.Limiter, error) {
	max, window := config.LoginMaxAttempts(), config.LoginWindow()

	if config.RateLimitDriver() == "redis" {
		client, err := ratelimit.Dial(ctx, config.RedisAddr(), config.RedisPassword())
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		logger.Info("login limiter: redis", "addr", config.RedisAddr())
		return ratelimit.NewRedisLimiter(client, max, window), nil
	}

	l := ratelimit.NewMemoryLimiter(max, window)
	a.closers = append(a.closers, l.Stop)
	return l, nil
}

func (a *App) repositories() (repositories.ProductRepository, repositories.UserRepository, error) {
	if config.CatalogDriver() == "database" {
		if err := database.Connect(); err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		a.closers = append(a.closers, func() { _ = database.Close() })

		sqlDB, err := database.DB.DB()
		if err != nil {
			return nil, nil, err
		}
		if err := migration.New(database.DB).WithOutput(io.Discard).Run(); err != nil {
			return nil, nil, err
		}
		a.Options.Ping = controllers.Pinger(sqlDB.PingContext)
		logger.Info("catalog store: database", "driver", config.DatabaseDriver())
		return repositories.NewGormProductRepository(database.DB), repositories.NewGormUserRepository(database.DB), nil
	}

	disk, err := storage.Use(config.CatalogDisk())
	if err != nil {
		return nil, nil, err
	}
	logger.Info("catalog store: file", "disk", config.CatalogDisk())
	return repositories.NewFileProductRepository(disk), repositories.NewFileUserRepository(disk), nil
}
