package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	tasks "github.com/goliatone/go-tasks"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("tasks"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := LoadConfig()

	if cfg.UsingDefaultSigningKey() {
		lgr.GetLogger("config").Warn(
			"SECRET_KEY not set, using the development fallback. Do not run this in production.",
		)
	}

	ctx := context.Background()

	db, err := openDatabase(cfg)
	if err != nil {
		lgr.GetLogger("persistence").Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := tasks.CreateSchema(ctx, db); err != nil {
		lgr.GetLogger("persistence").Error("failed to bootstrap schema", "error", err)
		os.Exit(1)
	}

	repo := tasks.NewRepositoryManager(db)
	repo.MustValidate()

	authenticator := tasks.NewAuthenticator(repo.Users(), cfg).
		WithLogger(lgr.GetLogger("auth"))

	httpAuth, err := tasks.NewHTTPAuthenticator(authenticator, cfg)
	if err != nil {
		lgr.GetLogger("auth").Error("failed to build http authenticator", "error", err)
		os.Exit(1)
	}
	httpAuth.Logger = lgr.GetLogger("auth:http")

	app := newServer(cfg, httpAuth)

	tasks.RegisterRoutes(app,
		tasks.WithControllerRepo(repo),
		tasks.WithControllerAuther(httpAuth),
		tasks.WithControllerLogger(lgr.GetLogger("api")),
		tasks.WithControllerDebug(cfg.Debug),
	)

	registerHealthz(app, db)

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	go func() {
		lgr.GetLogger("server").Info("listening", "addr", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			lgr.GetLogger("server").Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	WaitExitSignal()

	lgr.GetLogger("server").Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		lgr.GetLogger("server").Error("shutdown error", "error", err)
	}
}

func openDatabase(cfg *AppConfig) (*bun.DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		return tasks.OpenPostgres(cfg.DBDSN)
	default:
		return tasks.OpenSQLite(cfg.DBDSN)
	}
}

func newServer(cfg *AppConfig, httpAuth *tasks.RouteAuthenticator) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "go-tasks",
		ErrorHandler: httpAuth.ErrorHandler,
	})

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	if cfg.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowCredentials: true,
		}))
	}

	return app
}

func registerHealthz(app *fiber.App, db *bun.DB) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
