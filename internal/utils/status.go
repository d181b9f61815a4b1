package utils

import "github.com/mahirjain10/search-term-predictor/internal/types"

func InitPredictionData(objectName string, imageURL string, result *types.PredictionResult) *types.PredictionData {
	return &types.PredictionData{
		ObjectName: objectName,
		ImageURL:   imageURL,
		Time:       result.Time,
		Prediction: result.Prediction,
		Scores:     result.Scores,
	}
}

func InitPredictionEvent(data *types.PredictionData) *types.PredictionEvent {
	return &types.PredictionEvent{Pattern: types.PredictionPattern, Data: *data}
}
