package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/TechTitans1233/FORUMweb-sub000/config"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/auth"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/database"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/dedupe"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/forum"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/images"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/server"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		} else {
			slog.Info("database closed")
		}
	}()

	srv, closeDeps, err := buildServer(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeDeps()
	return srv.Run(ctx)
}

// buildServer wires every collaborator of the API from cfg. The returned
// func releases what was opened here.
func buildServer(ctx context.Context, cfg *config.Config, db *gorm.DB) (*server.Server, func(), error) {
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.UserTokenTTL, cfg.Auth.AdminTokenTTL)

	img, err := images.NewLocalStore(cfg.Images.Dir, tokens, cfg.Images.URLTTL, cfg.Images.MaxUploadBytes)
	if err != nil {
		return nil, nil, err
	}

	closeDeps := func() {}
	var guard dedupe.Guard
	switch cfg.Dedupe.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis at %s: %w", cfg.Redis.Addr, err)
		}
		guard = dedupe.NewRedisGuard(client, cfg.Dedupe.Window)
		closeDeps = func() { client.Close() }
		slog.Info("duplicate guard on redis", "addr", cfg.Redis.Addr)
	default:
		guard = dedupe.NewMemoryGuard(cfg.Dedupe.Window, cfg.Dedupe.MaxEntries)
	}

	if cfg.Auth.AdminSecret == "" {
		slog.Warn("DWS_ADMIN_SECRET not set, administrator login disabled")
	}

	st := store.New(db)
	svc := forum.New(forum.Deps{
		Store:       st,
		Identity:    auth.NewLocalProvider(st.DB()),
		Tokens:      tokens,
		Guard:       guard,
		AdminSecret: cfg.Auth.AdminSecret,
	})
	srv := server.New(server.Deps{Config: cfg, Service: svc, Tokens: tokens, Images: img})
	return srv, closeDeps, nil
}
