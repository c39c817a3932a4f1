package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmehdipour/workflow-relay/internal/config"
	"github.com/jmehdipour/workflow-relay/internal/db"
	httpSrv "github.com/jmehdipour/workflow-relay/internal/http"
	"github.com/jmehdipour/workflow-relay/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		log := logger.Init(cfg.Log.Level)
		defer func() { _ = log.Sync() }()

		var redisClient *redis.Client
		redisClient, err = db.NewRedisClient(cmd.Context(), db.RedisOpts{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		switch {
		case errors.Is(err, db.ErrRedisNotConfigured):
			log.Info("redis not configured, rate limiting disabled")
		case err != nil:
			return fmt.Errorf("redis connect: %w", err)
		default:
			defer func() { _ = redisClient.Close() }()
		}

		client := newRelayClient(cfg, log)
		server := httpSrv.NewServer(cfg, client, redisClient, log.Named("http"))

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server exited", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}
