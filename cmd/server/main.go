package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"github.com/bassista/go_watchlist/internal/api/middleware"
	route "github.com/bassista/go_watchlist/internal/api/route"
	appctx "github.com/bassista/go_watchlist/internal/app"
	"github.com/bassista/go_watchlist/internal/config"
	"github.com/bassista/go_watchlist/internal/logger"
	"github.com/gin-gonic/gin"

	"github.com/enrichman/httpgrace"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithComponent("main").Fatalf("configuration error: %v", err)
	}

	logLevel, err := logger.SetLevel(cfg.Misc.LogLevel)
	if err != nil {
		logger.WithComponent("main").Warnf("invalid log level '%s', using 'info': %v", cfg.Misc.LogLevel, err)
	}
	logger.WithComponent("main").Debugf("log level set to: %s", logLevel.String())
	logger.WithComponent("main").Infof("storage backend: %s (%s)", cfg.Storage.Backend, cfg.Storage.Path)
	logger.WithComponent("main").Infof("App will run on port: %d", cfg.Server.Port)

	if err := run(cfg); err != nil {
		logger.WithComponent("main").Fatal(err)
	}
}

// run serves until the server stops. The app is shut down before it returns,
// whatever the outcome.
func run(cfg *config.Config) error {
	app, err := appctx.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("cannot init app: %w", err)
	}
	defer app.Shutdown()

	if err := app.StartWatchers(); err != nil {
		return err
	}

	gin.SetMode(cfg.Misc.GinMode)
	gin.DefaultWriter = logger.Logger.Writer()
	gin.DefaultErrorWriter = logger.Logger.Writer()

	r := newRouter(app)
	srv := createGraceHttpServer(app, "main-server", r)

	if err := srv.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newRouter builds the gin engine with the middleware chain and every route.
func newRouter(app *appctx.App) *gin.Engine {
	r := gin.New()
	r.Use(middleware.HoneybadgerMiddleware(app.Config.Misc.HoneybadgerAPIKey, app.Config.Misc.Env))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(app.Config.Server.CORSAllowedOrigins))

	route.SetupRoutes(r, app)
	return r
}

func createGraceHttpServer(app *appctx.App, name string, r *gin.Engine) *httpgrace.Server {
	serverConfig := app.Config.Server
	slogLogger := slog.New(slog.NewTextHandler(logger.Logger.Writer(), nil))

	srv := httpgrace.NewServer(r,
		httpgrace.WithTimeout(serverConfig.ShutDownTimeout),
		httpgrace.WithSignals(syscall.SIGTERM, syscall.SIGINT),
		httpgrace.WithLogger(slogLogger),
		httpgrace.WithBeforeShutdown(func() {
			logger.WithComponent("http").Infof("Shutting down %s server....", name)
			app.BeginShutdown()
		}),
		httpgrace.WithServerOptions(
			httpgrace.WithReadTimeout(serverConfig.ReadTimeout),
			httpgrace.WithWriteTimeout(serverConfig.WriteTimeout),
			httpgrace.WithIdleTimeout(serverConfig.IdleTimeout),
			func(srv *http.Server) {
				srv.BaseContext = func(_ net.Listener) context.Context {
					return app.BaseCtx
				}
			},
			func(srv *http.Server) {
				srv.ErrorLog = log.New(logger.Logger.Writer(), fmt.Sprintf("[%s] ", name), log.LstdFlags)
			},
		),
	)
	return srv
}
