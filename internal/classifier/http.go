package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	predictErrors "github.com/mahirjain10/search-term-predictor/internal/errors"
	"github.com/mahirjain10/search-term-predictor/internal/types"
)

// HTTPClassifier asks a remote image predictor to classify an image by its address.
type HTTPClassifier struct {
	endpoint string
	client   *http.Client
}

// NewHTTPClassifier returns a classifier for endpoint. A nil client means a plain
// http.Client with no timeout.
func NewHTTPClassifier(endpoint string, client *http.Client) (*HTTPClassifier, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, predictErrors.Wrap(predictErrors.ErrConfiguration, "No 'ImagePredictorEndpoint' setting has been configured", nil)
	}
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPClassifier{endpoint: endpoint, client: client}, nil
}

// RequestURL appends imageURL verbatim to the endpoint. The predictor service expects the
// absolute address right after its base, so the URL is neither escaped nor joined.
func (c *HTTPClassifier) RequestURL(imageURL string) string {
	return c.endpoint + imageURL
}

func (c *HTTPClassifier) Classify(ctx context.Context, imageURL string) (*types.PredictionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(imageURL), nil)
	if err != nil {
		return nil, predictErrors.Wrap(predictErrors.ErrEndpoint, "failed to build predictor request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, predictErrors.Wrap(predictErrors.ErrEndpoint, "predictor request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &predictErrors.EndpointStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return decodeResult(resp.Body)
}

// wireResult mirrors PredictionResult with pointers so absent fields can be told apart
// from zero values.
type wireResult struct {
	Time       *string     `json:"time"`
	Prediction *string     `json:"prediction"`
	Scores     *wireScores `json:"scores"`
}

type wireScores struct {
	Hammer *float64 `json:"hammer"`
	Wrench *float64 `json:"wrench"`
}

func decodeResult(body io.Reader) (*types.PredictionResult, error) {
	var wire wireResult
	if err := json.NewDecoder(body).Decode(&wire); err != nil {
		return nil, predictErrors.Wrap(predictErrors.ErrResponseShape, "failed to parse predictor response", err)
	}

	var missing []string
	if wire.Prediction == nil {
		missing = append(missing, "prediction")
	}
	if wire.Scores == nil {
		missing = append(missing, "scores")
	} else {
		if wire.Scores.Hammer == nil {
			missing = append(missing, "scores.hammer")
		}
		if wire.Scores.Wrench == nil {
			missing = append(missing, "scores.wrench")
		}
	}
	if len(missing) > 0 {
		return nil, predictErrors.Wrap(predictErrors.ErrResponseShape,
			fmt.Sprintf("predictor response is missing %s", strings.Join(missing, ", ")), nil)
	}

	result := &types.PredictionResult{
		Prediction: *wire.Prediction,
		Scores: types.PredictionScores{
			Hammer: *wire.Scores.Hammer,
			Wrench: *wire.Scores.Wrench,
		},
	}
	if wire.Time != nil {
		result.Time = *wire.Time
	}
	return result, nil
}
