package types

// PredictionResult is the body returned by the image predictor endpoint.
type PredictionResult struct {
	Time       string           `json:"time"`
	Prediction string           `json:"prediction"`
	Scores     PredictionScores `json:"scores"`
}

// PredictionScores holds the confidence for every class the model knows.
type PredictionScores struct {
	Hammer float64 `json:"hammer"`
	Wrench float64 `json:"wrench"`
}

// PredictionData is the payload of a published prediction event.
type PredictionData struct {
	ObjectName string           `json:"objectName"`
	ImageURL   string           `json:"imageUrl"`
	Time       string           `json:"time"`
	Prediction string           `json:"prediction"`
	Scores     PredictionScores `json:"scores"`
}

// PredictionEvent is the full message envelope sent to the broker.
type PredictionEvent struct {
	Pattern string         `json:"pattern"`
	Data    PredictionData `json:"data"`
}

const PredictionPattern = "prediction"
