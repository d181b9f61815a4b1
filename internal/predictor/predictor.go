package predictor

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mahirjain10/search-term-predictor/config"
	"github.com/mahirjain10/search-term-predictor/internal/classifier"
	"github.com/mahirjain10/search-term-predictor/internal/storage"
	"github.com/mahirjain10/search-term-predictor/internal/transformation"
	"github.com/mahirjain10/search-term-predictor/internal/types"
)

// Uploader stores a resized image and returns its public address.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Classifier asks the predictor service what the image at imageURL shows.
type Classifier interface {
	Classify(ctx context.Context, imageURL string) (*types.PredictionResult, error)
}

// Prediction is everything one pipeline run produced.
type Prediction struct {
	ObjectName string
	ImageURL   string
	Result     *types.PredictionResult
}

// SearchTermPredictor turns an uploaded picture into a product search term:
// resize, upload, classify. It holds no per-call state and is safe for concurrent use.
type SearchTermPredictor struct {
	uploader   Uploader
	classifier Classifier
	logger     *slog.Logger
	newName    func() string
}

func New(uploader Uploader, classifier Classifier, logger *slog.Logger) *SearchTermPredictor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchTermPredictor{
		uploader:   uploader,
		classifier: classifier,
		logger:     logger,
		newName:    NewObjectName,
	}
}

// NewFromConfig builds the predictor against the configured storage account and endpoint.
// Bad settings fail here, before any image is processed.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*SearchTermPredictor, error) {
	store, err := storage.New(ctx, cfg.StorageConnectionString, storage.UploadContainer)
	if err != nil {
		return nil, err
	}

	httpClassifier, err := classifier.NewHTTPClassifier(cfg.ImagePredictorEndpoint, nil)
	if err != nil {
		return nil, err
	}

	return New(store, httpClassifier, logger), nil
}

// NewObjectName returns a random "<uuid>.jpg" blob name.
func NewObjectName() string {
	return uuid.NewString() + ".jpg"
}

func (p *SearchTermPredictor) Predict(ctx context.Context, imageStream io.Reader) (*Prediction, error) {
	resized, err := transformation.ResizeToJPEG(imageStream, transformation.MaxWidth, transformation.MaxHeight)
	if err != nil {
		return nil, err
	}

	name := p.newName()
	imageURL, err := p.uploader.Upload(ctx, name, resized)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "Image uploaded", "url", imageURL)

	result, err := p.classifier.Classify(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "Result prediction",
		"prediction", result.Prediction,
		"hammer", result.Scores.Hammer,
		"wrench", result.Scores.Wrench,
	)

	return &Prediction{ObjectName: name, ImageURL: imageURL, Result: result}, nil
}

// PredictSearchTerm returns only the predicted label for imageStream.
func (p *SearchTermPredictor) PredictSearchTerm(ctx context.Context, imageStream io.Reader) (string, error) {
	prediction, err := p.Predict(ctx, imageStream)
	if err != nil {
		return "", err
	}
	return prediction.Result.Prediction, nil
}
