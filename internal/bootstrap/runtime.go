// Package bootstrap wires process-wide clients from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs migrations per DB_SCHEMA_MODE after connecting.
	ApplySchema bool
	// SeedDemo fills an empty development database with demo data.
	SeedDemo bool
}

// InitRuntime connects to the database and Redis. Redis is optional: when it
// cannot be reached the returned client is nil and a warning is logged.
func InitRuntime(ctx context.Context, cfg *config.Config, log *slog.Logger, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg, log); err != nil {
			_ = database.Close(db)
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	rdb, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable; caching, rate limiting and token revocation disabled",
			slog.String("error", err.Error()))
		rdb = nil
	}

	if opts.SeedDemo {
		if err := seedDemoData(ctx, cfg, db, log); err != nil {
			return nil, nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	return db, rdb, nil
}

func seedDemoData(ctx context.Context, cfg *config.Config, db *gorm.DB, log *slog.Logger) error {
	if !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Table("users").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	res, err := seed.Seed(ctx, db, seed.Options{NumUsers: 5, NumPosts: 40})
	if err != nil {
		return err
	}
	log.Info("seeded demo data",
		slog.Int("users", len(res.Users)),
		slog.Int("posts", res.Posts),
	)
	return nil
}
