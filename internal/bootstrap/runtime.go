// Package bootstrap wires the process-level dependencies shared by the server
// and the command line tools.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"devcircle/internal/cache"
	"devcircle/internal/config"
	"devcircle/internal/database"
	"devcircle/internal/events"
	"devcircle/internal/middleware"
	"devcircle/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Runtime bundles the connections a process needs.
type Runtime struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Publisher events.Publisher
}

// InitRuntime connects to the database and Redis, builds the event publisher
// and ensures the development root admin when enabled.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// A nil client means caching, revocation and rate limits degrade.
	cache.InitRedis(cfg.RedisURL)

	if err := EnsureDevRootAdmin(ctx, cfg, db); err != nil {
		return nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	return &Runtime{
		DB:        db,
		Redis:     cache.GetClient(),
		Publisher: events.NewPublisher(cfg.Brokers(), cfg.KafkaTopic),
	}, nil
}

// EnsureDevRootAdmin creates or promotes the configured root account in
// development. It is a no-op anywhere else.
func EnsureDevRootAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	username := strings.TrimSpace(cfg.DevRootUsername)
	if username == "" {
		username = "devcircle_root"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@devcircle.local"
	}
	if cfg.DevRootPassword == "" {
		return errors.New("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.DevRootPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	var root models.User
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("username = ?", username).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				Username: username,
				Email:    email,
				Password: string(hashed),
				Role:     models.RoleAdmin,
			}
			return tx.Create(&root).Error
		case findErr != nil:
			return findErr
		}

		updates := map[string]any{"role": models.RoleAdmin}
		if cfg.DevRootForceCredentials {
			updates["email"] = email
			updates["password"] = string(hashed)
		}
		return tx.Model(&root).Updates(updates).Error
	})
	if err != nil {
		return err
	}

	cache.InvalidateUser(ctx, root.ID)
	middleware.Logger.InfoContext(ctx, "development root admin ensured",
		slog.String("username", username), slog.Uint64("user_id", uint64(root.ID)))
	return nil
}
