package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/practiceboard/internal/board"
	"github.com/meltforce/practiceboard/internal/catalog"
	"github.com/meltforce/practiceboard/internal/config"
	"github.com/meltforce/practiceboard/internal/configcache"
	"github.com/meltforce/practiceboard/internal/configsrc"
	"github.com/meltforce/practiceboard/internal/export"
	pbmcp "github.com/meltforce/practiceboard/internal/mcp"
	"github.com/meltforce/practiceboard/internal/roster"
	"github.com/meltforce/practiceboard/internal/schedule"
	"github.com/meltforce/practiceboard/internal/server"
	"github.com/meltforce/practiceboard/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before the config")
	flag.Parse()

	// A missing .env is normal outside development.
	_ = godotenv.Load(*envFile)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.Log.Level)}))
	log.Info("practiceboard starting", "version", Version)

	ctx := context.Background()

	// Database is optional: without it menus and roster come from files or
	// URLs and exports are not recorded.
	var db *storage.DB
	if cfg.Database.Enabled() {
		dsn := cfg.Database.DSN()
		version, err := storage.RunMigrations(dsn, "migrations")
		if err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied", "schema_version", version)

		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		db, err = storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		log.Info("database connected")
	} else if *migrateOnly {
		log.Error("migrate-only requires a database")
		os.Exit(1)
	}

	var cache *configcache.Cache
	if cfg.Cache.Dir != "" {
		cache, err = configcache.Open(cfg.Cache.Dir, log)
		if err != nil {
			log.Warn("config cache unavailable", "dir", cfg.Cache.Dir, "error", err)
		} else {
			defer cache.Close()
		}
	}

	catalogSrc := openSource(cfg.Catalog.Source, db, cache, catalog.Validate, func(db *storage.DB) configsrc.Source {
		return db.CatalogSource()
	})
	rosterSrc := openSource(cfg.Roster.Source, db, cache, roster.Validate, func(db *storage.DB) configsrc.Source {
		return db.RosterSource()
	})

	cat := catalog.New(catalogSrc, log)
	cat.Load(ctx)
	ros := roster.New(rosterSrc, log)
	ros.Load(ctx)

	sched := schedule.New(cfg.Board.StepMinutes, time.Now())
	if err := sched.SetWindow(cfg.Board.DefaultStart, cfg.Board.DefaultEnd); err != nil {
		log.Error("invalid default session window", "error", err)
		os.Exit(1)
	}
	b := board.New(cat, ros, sched, log)

	renderer, err := export.NewRenderer(cfg.Export.FontPath, cfg.Export.Quality)
	if err != nil {
		log.Error("failed to load export font", "path", cfg.Export.FontPath, "error", err)
		os.Exit(1)
	}
	if cfg.Export.FontPath == "" {
		log.Warn("no export font configured, using the built-in bitmap face")
	}

	srv := server.New(b, renderer, db, cfg.Auth.APIKey, log)

	if cfg.Server.StaticDir != "" {
		srv.SetFrontend(os.DirFS(cfg.Server.StaticDir))
		log.Info("serving frontend", "dir", cfg.Server.StaticDir)
	}

	// MCP over streamable HTTP, sharing the board and identity middleware.
	mcpSrv := pbmcp.New(b, Version, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return pbmcp.WithUser(ctx, server.UserFromRequest(r).Login)
		}),
	))

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// openSource resolves a configured location to a Source. "db" reads from
// PostgreSQL; anything else goes through configsrc.Open. Non-nil sources
// are wrapped by the cache when one is open.
func openSource(location string, db *storage.DB, cache *configcache.Cache, validate func([]byte) error, fromDB func(*storage.DB) configsrc.Source) configsrc.Source {
	var src configsrc.Source
	if location == config.SourceDB {
		src = fromDB(db)
	} else {
		src = configsrc.Open(location)
	}
	if src == nil || cache == nil {
		return src
	}
	return cache.Wrap(src, validate)
}

func logLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
