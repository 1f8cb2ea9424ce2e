package main // Entry point of the layout API server

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/rs/zerolog/log"

    "github.com/iliyamo/seating-designer/internal/client"
    "github.com/iliyamo/seating-designer/internal/config"
    "github.com/iliyamo/seating-designer/internal/database"
    "github.com/iliyamo/seating-designer/internal/editor"
    "github.com/iliyamo/seating-designer/internal/handler"
    "github.com/iliyamo/seating-designer/internal/logging"
    "github.com/iliyamo/seating-designer/internal/middleware"
    "github.com/iliyamo/seating-designer/internal/queue"
    "github.com/iliyamo/seating-designer/internal/repository"
    "github.com/iliyamo/seating-designer/internal/router"
    "github.com/iliyamo/seating-designer/internal/service"
)

func main() {
    cfg := config.Load() // Load environment config
    if err := logging.Setup(cfg.Env, cfg.LogLevel, os.Stdout); err != nil {
        log.Fatal().Err(err).Msg("invalid LOG_LEVEL")
    }
    lg := logging.Component("server")

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    db, err := database.Open(ctx, database.Options{
        User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
    })
    if err != nil {
        lg.Fatal().Err(err).Msg("database unavailable")
    }
    defer db.Close()
    if err := database.Migrate(ctx, db); err != nil {
        lg.Fatal().Err(err).Msg("migrations failed")
    }

    // Redis is optional: without it the cache and the rate limiter are off.
    rdb := config.NewRedisClient()
    if rdb != nil {
        defer rdb.Close()
    }
    layouts := repository.NewCachedLayouts(
        repository.NewLayoutRepo(db),
        repository.NewLayoutCache(config.LoadCacheConfig(), rdb),
    )

    // Editing sessions persist locally unless a remote layout API is configured.
    var sessionStore editor.Store = layouts
    if cfg.LayoutAPIURL != "" {
        sessionStore = client.New(cfg.LayoutAPIURL, client.StaticToken(cfg.LayoutAPIToken), client.WithTimeout(cfg.RequestTimeout))
        lg.Info().Str("url", cfg.LayoutAPIURL).Msg("editing sessions use remote layout api")
    }

    var events handler.EventPublisher
    if cfg.Events.PublishEnabled {
        events = service.Publisher{URL: cfg.Events.URL}
    }
    if cfg.Events.ConsumerEnabled {
        go func() {
            if err := queue.StartLayoutConsumer(ctx, cfg.Events.URL, cfg.Events.LogDir); err != nil && !errors.Is(err, context.Canceled) {
                lg.Error().Err(err).Msg("layout consumer stopped")
            }
        }()
    }

    registry := editor.NewRegistry(sessionStore,
        editor.WithRequestTimeout(cfg.RequestTimeout),
        editor.WithIdleTTL(cfg.SessionIdleTTL),
    )
    go registry.RunJanitor(ctx, time.Minute)
    editorHandler := handler.NewEditorHandler(registry)
    layoutHandler := handler.NewLayoutHandler(layouts, events, cfg.RequestTimeout)
    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

    e := echo.New()
    e.HideBanner = true
    e.HidePort = true
    e.Use(echomw.Recover())
    e.Use(middleware.RequestLogger())
    router.RegisterRoutes(e, editorHandler)
    router.RegisterLayout(e, layoutHandler, cfg.JWTSecret, limiter)
    router.RegisterEditor(e, editorHandler, cfg.JWTSecret, limiter)

    addr := ":" + cfg.Port
    go func() {
        lg.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            lg.Fatal().Err(err).Msg("server failed")
        }
    }()

    <-ctx.Done()
    lg.Info().Msg("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        lg.Error().Err(err).Msg("shutdown")
    }
}
