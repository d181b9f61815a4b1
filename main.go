package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v2"

	"github.com/mahirjain10/search-term-predictor/config"
	"github.com/mahirjain10/search-term-predictor/internal/predictor"
	"github.com/mahirjain10/search-term-predictor/internal/queue"
	"github.com/mahirjain10/search-term-predictor/internal/server"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config          *config.Config
	logger          *slog.Logger
	predictor       *predictor.SearchTermPredictor
	rabbitMqService *queue.RabbitMqService
}

// NewApp loads the configuration and builds every dependency. Invalid storage or endpoint
// settings abort startup here.
func NewApp(ctx context.Context) (*App, error) {
	envConfig := config.InitializeEnvs()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      envConfig.SlogLevel(),
		TimeFormat: time.DateTime,
	}))
	slog.SetDefault(logger)

	searchTermPredictor, err := predictor.NewFromConfig(ctx, envConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize predictor: %w", err)
	}

	return &App{
		config:    envConfig,
		logger:    logger,
		predictor: searchTermPredictor,
	}, nil
}

// connectRabbitMq is optional: without RABBITMQ_URL no events are published.
func (a *App) connectRabbitMq() error {
	if a.config.RabbitMqURL == "" {
		a.logger.Debug("RABBITMQ_URL not set, prediction events disabled")
		return nil
	}

	service, err := queue.NewRabbitMqService(a.config.RabbitMqURL, a.config.RabbitMqExchange, a.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	a.rabbitMqService = service
	return nil
}

func (a *App) Close() {
	if a.rabbitMqService != nil {
		if err := a.rabbitMqService.Close(); err != nil {
			a.logger.Warn("Error closing RabbitMQ connection", "error", err)
		}
	}
}

func (a *App) Serve(ctx context.Context) error {
	if err := a.connectRabbitMq(); err != nil {
		return err
	}

	var publisher server.EventPublisher
	if a.rabbitMqService != nil {
		publisher = a.rabbitMqService
	}

	srv := server.NewServer(a.predictor, publisher, a.logger)
	addr := ":" + a.config.Port

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Server starting", "addr", addr)
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (a *App) PredictFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	return a.predictor.PredictSearchTerm(ctx, file)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cliApp := &cli.App{
		Name:  "search-term-predictor",
		Usage: "turn product photos into search terms",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the image search HTTP API",
				Action: func(c *cli.Context) error {
					app, err := NewApp(c.Context)
					if err != nil {
						return err
					}
					defer app.Close()
					return app.Serve(c.Context)
				},
			},
			{
				Name:      "predict",
				Usage:     "predict the search term for one image file",
				ArgsUsage: "<image-file>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected exactly one image file", 2)
					}
					app, err := NewApp(c.Context)
					if err != nil {
						return err
					}
					defer app.Close()

					label, err := app.PredictFile(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					fmt.Println(label)
					return nil
				},
			},
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		stop()
		os.Exit(1)
	}
}
