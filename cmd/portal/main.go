package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"jobportal/internal/apiclient"
	"jobportal/internal/config"
	"jobportal/internal/events"
	"jobportal/internal/lookup"
	"jobportal/internal/scheduler"
	"jobportal/internal/secrets"
	"jobportal/internal/store"
	"jobportal/internal/web"
)

func main() {
	if err := config.LoadDotenv(".env", ".env.local"); err != nil {
		log.Fatalf("dotenv: %v", err)
	}

	// PORTAL_HOME holds the editable config; runtime files go to app.data_dir
	home := os.Getenv("PORTAL_HOME")
	if home == "" {
		home = "."
	}
	userCfgPath, err := config.Bootstrap(home, filepath.Join("config", "config.yml"))
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// file first, then PORTAL_* overrides, then normalization; hot reload uses the same path
	loadCfg := func() (config.Config, error) {
		cfg, warnings, err := config.Resolve(userCfgPath, os.LookupEnv)
		for _, w := range warnings {
			log.Printf("level=warn msg=\"config\" detail=%q", w)
		}
		return cfg, err
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(cfg)

	if err := os.MkdirAll(cfg.App.DataDir, 0o755); err != nil {
		log.Fatal(err)
	}
	lock := flock.New(cfg.DataPath("portal.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock data dir: %v", err)
	}
	if !locked {
		log.Fatalf("another portal instance is using %s", cfg.App.DataDir)
	}
	defer func() { _ = lock.Unlock() }()

	if err := useReportFonts(cfg); err != nil {
		log.Fatalf("report fonts: %v", err)
	}

	dbPath := cfg.DataPath("portal.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("open %s: %v", dbPath, err)
	}
	defer db.Close()

	serviceToken, err := secrets.GetServiceToken(secrets.ServiceAccount(cfg.API.BaseURL))
	if err != nil && !errors.Is(err, secrets.ErrNoToken) {
		log.Printf("level=warn msg=\"service token unavailable\" err=%v", err)
	}
	client, err := apiclient.New(apiclient.Options{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.APITimeout(),
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		ServiceToken:      serviceToken,
	})
	if err != nil {
		log.Fatalf("api client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqliteCache := lookup.NewSQLiteCache(db.Pool)
	var cache lookup.Cache = sqliteCache
	if cfg.Cache.Backend == "redis" {
		rc, err := lookup.NewRedisCache(ctx, cfg.Cache.RedisAddr, os.Getenv("PORTAL_REDIS_PASSWORD"), cfg.Cache.RedisDB)
		if err != nil {
			log.Printf("level=warn msg=\"redis unavailable, using sqlite cache\" addr=%s err=%v", cfg.Cache.RedisAddr, err)
		} else {
			defer rc.Close()
			cache = rc
		}
	}
	lookups := lookup.New(lookup.APISource{Client: client, Limit: cfg.Pagination.MaxPageSize * 10}, cache, cfg.CacheTTL())

	hub := events.NewHub()
	limiter := web.NewIPLimiter(cfg.Login.AttemptsPerMinute, cfg.Login.Burst)

	// one token guards every /internal endpoint; local tooling reads it from the data dir
	opsToken, err := randomToken(32)
	if err != nil {
		log.Fatal(err)
	}
	tokenPath := cfg.DataPath("shutdown.token")
	if err := os.WriteFile(tokenPath, []byte(opsToken), 0o600); err != nil {
		log.Fatalf("write %s: %v", tokenPath, err)
	}
	defer os.Remove(tokenPath)

	deps := web.Deps{
		DB:           db.Pool,
		API:          client,
		Lookup:       lookups,
		Hub:          hub,
		CfgVal:       &cfgVal,
		UserCfgPath:  userCfgPath,
		LoadCfg:      loadCfg,
		LoginLimiter: limiter,
		OpsToken:     opsToken,
	}
	mux, err := web.NewMux(deps)
	if err != nil {
		log.Fatalf("templates: %v", err)
	}

	startTasks(ctx, cfg, db, lookups, sqliteCache, limiter)

	addr := net.JoinHostPort("", strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	// no WriteTimeout: /admin/events streams for as long as the console is open
	srv := &http.Server{
		Handler:           web.Wrap(deps, mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	mux.HandleFunc("/internal/shutdown", shutdownHandler(&opsToken, srv))

	log.Printf("level=info msg=\"portal listening\" addr=%s api=%s db=%s cache=%s", ln.Addr(), cfg.API.BaseURL, dbPath, cfg.Cache.Backend)

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		log.Printf("level=info msg=\"shutting down\"")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Printf("level=warn msg=\"shutdown\" err=%v", err)
		}
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}
}

// startTasks launches the background maintenance loops; they stop with ctx.
func startTasks(ctx context.Context, cfg config.Config, db *store.DB, lookups *lookup.Service, sc *lookup.SQLiteCache, limiter *web.IPLimiter) {
	cleanup := time.Duration(cfg.Scheduler.SessionCleanupMinutes) * time.Minute
	go scheduler.Every(ctx, cleanup, "sessions", func(ctx context.Context) error {
		n, err := store.DeleteExpiredSessions(ctx, db.Pool, time.Now())
		if err != nil {
			return err
		}
		if n > 0 {
			log.Printf("[sessions] removed %d expired", n)
		}
		if swept := limiter.Sweep(10 * time.Minute); swept > 0 {
			log.Printf("[sessions] forgot %d idle login buckets", swept)
		}
		return nil
	})

	warm := time.Duration(cfg.Scheduler.LookupWarmMinutes) * time.Minute
	go scheduler.Every(ctx, warm, "lookups", func(ctx context.Context) error {
		if _, err := sc.Purge(ctx); err != nil {
			return fmt.Errorf("purge: %w", err)
		}
		return lookups.Warm(ctx)
	})
}
