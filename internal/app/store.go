package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/mealmap/internal/config"
	"github.com/hitoshi/mealmap/internal/database"
	"github.com/hitoshi/mealmap/internal/handler"
	"github.com/hitoshi/mealmap/internal/repository"
)

// dbPingTimeout は起動時のDB疎通確認のタイムアウト。
const dbPingTimeout = 5 * time.Second

// stores はSTORE_DRIVERに応じて構築したリポジトリ群。
type stores struct {
	restaurants repository.RestaurantRepository
	users       repository.UserRepository
	follows     repository.FollowRepository
	health      handler.HealthChecker
	close       func() error
}

// openStores はcfg.StoreDriverに対応するストアを開く。
// postgresの場合は接続を確認し、MigrateOnStartが有効ならマイグレーションを適用する。
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		mem := repository.NewMemoryStore()
		slog.Warn("using in-memory store; data will be lost on restart")
		return &stores{
			restaurants: mem.Restaurants(),
			users:       mem.Users(),
			follows:     mem.Follows(),
			health:      mem,
			close:       func() error { return nil },
		}, nil

	case config.StoreDriverPostgres:
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		retry := database.RetryConfig{
			Attempts:    cfg.DBConnectAttempts,
			PingTimeout: dbPingTimeout,
		}
		if err := database.WaitForReady(ctx, db, retry); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		slog.Info("database connection established")

		if cfg.MigrateOnStart {
			if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
				db.Close()
				return nil, fmt.Errorf("migration failed: %w", err)
			}
			slog.Info("database migrations applied on start")
		}

		return postgresStores(db), nil

	default:
		return nil, fmt.Errorf("unsupported store driver: %q", cfg.StoreDriver)
	}
}

func postgresStores(db *sql.DB) *stores {
	return &stores{
		restaurants: repository.NewPostgresRestaurantRepo(db),
		users:       repository.NewPostgresUserRepo(db),
		follows:     repository.NewPostgresFollowRepo(db),
		health:      db,
		close:       db.Close,
	}
}
