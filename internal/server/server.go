package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mahirjain10/search-term-predictor/internal/predictor"
)

const maxUploadSize = "10M"

type Predictor interface {
	Predict(ctx context.Context, imageStream io.Reader) (*predictor.Prediction, error)
}

// EventPublisher is notified after every successful prediction.
type EventPublisher interface {
	PublishPrediction(ctx context.Context, prediction *predictor.Prediction) error
}

type Server struct {
	echo *echo.Echo
}

// NewServer registers the routes. publisher may be nil.
func NewServer(p Predictor, publisher EventPublisher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxUploadSize))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				logger.Warn("Request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Debug("Request", attrs...)
			return nil
		},
	}))

	h := NewHandler(p, publisher, logger)
	e.GET("/health", h.Health)
	e.POST("/api/v1/search/image", h.SearchByImage)

	return &Server{echo: e}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
