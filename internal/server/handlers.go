package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	predictErrors "github.com/mahirjain10/search-term-predictor/internal/errors"
)

const imageFormField = "file"

type SearchResponse struct {
	SearchTerm string `json:"searchTerm"`
}

type Handler struct {
	predictor Predictor
	publisher EventPublisher
	logger    *slog.Logger
}

func NewHandler(p Predictor, publisher EventPublisher, logger *slog.Logger) *Handler {
	return &Handler{predictor: p, publisher: publisher, logger: logger}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// SearchByImage accepts a multipart upload and answers with the predicted search term.
func (h *Handler) SearchByImage(c echo.Context) error {
	fileHeader, err := c.FormFile(imageFormField)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No image file provided. Use 'file' as the form field name")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded file")
	}
	defer file.Close()

	ctx := c.Request().Context()
	prediction, err := h.predictor.Predict(ctx, file)
	if err != nil {
		status := statusFor(err)
		return echo.NewHTTPError(status, http.StatusText(status)).SetInternal(err)
	}

	if h.publisher != nil {
		if err := h.publisher.PublishPrediction(ctx, prediction); err != nil {
			h.logger.Warn("Failed to publish prediction event", "object", prediction.ObjectName, "error", err)
		}
	}

	return c.JSON(http.StatusOK, SearchResponse{SearchTerm: prediction.Result.Prediction})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, predictErrors.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, predictErrors.ErrStorage),
		errors.Is(err, predictErrors.ErrEndpoint),
		errors.Is(err, predictErrors.ErrResponseShape):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
