package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goversion "github.com/caarlos0/go-version"

	"github.com/msomdec/user-directory/internal/config"
	"github.com/msomdec/user-directory/internal/domain"
	"github.com/msomdec/user-directory/internal/handler"
	"github.com/msomdec/user-directory/internal/remote"
	"github.com/msomdec/user-directory/internal/repository/redis"
	"github.com/msomdec/user-directory/internal/repository/sqlite"
	"github.com/msomdec/user-directory/internal/service"
)

// Set through -ldflags at release time.
var (
	version   = "dev"
	commit    = ""
	treeState = ""
	date      = ""
	builtBy   = ""
)

func main() {
	showVersion := flag.Bool("version", false, "Print version information and exit.")
	flag.Parse()

	info := buildVersion(version, commit, date, builtBy, treeState)
	if *showVersion {
		fmt.Println(info.String())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.Log.SlogLevel()
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	db, slots, err := openStore(cfg.Store)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to prepare store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	slog.Info("store ready", "backend", cfg.Store.Backend)

	client := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout)

	visitors := service.NewVisitorService(cfg.Visitor.Secret, cfg.Visitor.TokenTTL)
	additions := service.NewAdditionService(slots, service.NewIDGenerator(nil))
	directory := service.NewDirectoryService(client, additions)
	favorites := service.NewFavoriteService(slots, cfg.Directory.PersistFavorites)
	listings := service.NewListingService(directory, favorites, cfg.Directory.ViewTTL)
	limiter := service.NewTokenBucket(cfg.Directory.SubmitRate, cfg.Directory.SubmitBurst)
	defer limiter.Stop()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, visitors, directory, listings, additions, limiter, cfg.HTTP.CookieSecure, info)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           handler.LogRequests(handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go listings.Run(ctx)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "version", info.GitVersion, "users_api", cfg.Remote.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore opens the configured slot backend.
func openStore(cfg config.StoreConfig) (domain.Database, domain.SlotStore, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		return store, store, nil
	default:
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Slots(), nil
	}
}

func buildVersion(version, commit, date, builtBy, treeState string) goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("user-directory", "Browse, search and extend a remote user directory.", "https://github.com/msomdec/user-directory"),
		func(i *goversion.Info) {
			if commit != "" {
				i.GitCommit = commit
			}
			if version != "" {
				i.GitVersion = version
			}
			if treeState != "" {
				i.GitTreeState = treeState
			}
			if date != "" {
				i.BuildDate = date
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}
