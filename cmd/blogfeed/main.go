// @title Blog Feed API
// @version 1.0
// @description 博客时间线与关注关系服务
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
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

	"github.com/fatih/color"
	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/d60-Lab/blog-feed/config"
	"github.com/d60-Lab/blog-feed/internal/api/handler"
	"github.com/d60-Lab/blog-feed/internal/api/router"
	"github.com/d60-Lab/blog-feed/internal/cache"
	"github.com/d60-Lab/blog-feed/internal/repository"
	"github.com/d60-Lab/blog-feed/internal/service"
	"github.com/d60-Lab/blog-feed/pkg/database"
	"github.com/d60-Lab/blog-feed/pkg/logger"
	"github.com/d60-Lab/blog-feed/pkg/tracing"
)

func main() {
	root := &cobra.Command{
		Use:           "blogfeed",
		Short:         "Blog timelines and follow graph",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd())
	if err := root.Execute(); err != nil {
		color.Red("blogfeed: %v", err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Auto-migrate all tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.InitDB(cfg)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			color.Green("migrated %d tables", len(database.AutoMaintainRange))
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "override server.port")
	return cmd
}

// setup 加载配置并初始化日志与 sentry
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			return nil, fmt.Errorf("init sentry: %w", err)
		}
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.Cache.Backend == config.CacheRedis {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
	}
	timelineCache, err := cache.New(cfg, rdb)
	if err != nil {
		return err
	}
	if closer, ok := timelineCache.(interface{ Close() }); ok {
		defer closer.Close()
	}

	repos := repository.NewRepositories(db)
	h := handler.New(
		service.NewFeedService(repos, timelineCache, cfg.Feed.PageSize),
		service.NewPostService(repos, timelineCache),
		service.NewCommentService(repos),
		service.NewRelationshipService(repos.Users, repos.Follows),
		service.NewGroupService(repos.Groups, timelineCache),
		cfg.Feed.PageSize,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router.Setup(cfg, h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	banner(cfg)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	sentry.Flush(2 * time.Second)
	return nil
}

func banner(cfg *config.Config) {
	color.Cyan("blog-feed listening on :%d", cfg.Server.Port)
	fmt.Printf("  database  %s\n", color.YellowString(cfg.Database.Driver))
	fmt.Printf("  cache     %s (ttl %s)\n", color.YellowString(cfg.Cache.Backend), cfg.Cache.TTL)
	fmt.Printf("  page size %d\n", cfg.Feed.PageSize)
	fmt.Printf("  docs      http://localhost:%d/swagger/index.html\n", cfg.Server.Port)
}
