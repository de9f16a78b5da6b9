package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/iss-tracker/internal/api/http"
	"github.com/i474232898/iss-tracker/internal/config"
	"github.com/i474232898/iss-tracker/internal/logging"
	"github.com/i474232898/iss-tracker/internal/scheduler"
	"github.com/i474232898/iss-tracker/internal/sink"
	"github.com/i474232898/iss-tracker/internal/tracker"
)

// Process exit codes.
const (
	exitOK        = 0
	exitStartup   = 1
	exitNoData    = 3
	exitSinkWrite = 4
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML config file")
	watch := flag.Bool("watch", false, "run on a schedule and serve recorded positions over HTTP")
	flag.Parse()

	// Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("ERROR: failed to load config: %v", err)
		return exitStartup
	}

	lg, closer, err := logging.New(cfg.LogFile)
	if err != nil {
		log.Printf("ERROR: failed to open log file: %v", err)
		return exitStartup
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mem *sink.Memory
	if *watch {
		mem = sink.NewMemory(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	}

	svc, err := buildService(ctx, cfg, lg, mem)
	if err != nil {
		lg.Printf("ERROR: failed to build pipeline: %v", err)
		return exitStartup
	}

	if !*watch {
		_, err := svc.FetchAndStore(ctx)
		return exitCode(err)
	}
	return serve(ctx, cfg, svc, mem, lg)
}

// exitCode maps a pipeline error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, tracker.ErrSinkWrite):
		return exitSinkWrite
	case errors.Is(err, tracker.ErrNoData):
		return exitNoData
	default:
		return exitStartup
	}
}

// serve runs the pipeline on a schedule and exposes the memory sink until
// ctx is cancelled.
func serve(ctx context.Context, cfg *config.AppConfig, svc *tracker.Service, mem *sink.Memory, lg *log.Logger) int {
	sched := scheduler.New(cfg.WatchInterval, cfg.HTTPTimeout*2, svc, lg)
	if err := sched.Start(); err != nil {
		lg.Printf("ERROR: failed to start scheduler: %v", err)
		return exitStartup
	}
	defer sched.Stop()

	app := newApp(mem)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Printf("INFO: fiber server stopped: %v", err)
		}
	}()
	lg.Printf("INFO: watching every %s, serving on :%s", cfg.WatchInterval, cfg.Port)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Printf("ERROR: error during shutdown: %v", err)
	}
	return exitOK
}

func newApp(mem *sink.Memory) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "iss-tracker",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "iss-tracker",
			"recorded": mem.Len(),
		})
	})

	httpapi.RegisterRoutes(app, mem)
	return app
}
