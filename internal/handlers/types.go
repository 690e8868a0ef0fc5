package handlers

import "github.com/Brownie44l1/analyart/internal/ranking"

// PredictionRequest is a raw, already normalised input tensor.
type PredictionRequest struct {
	Image []float32 `json:"image"`
}

// PredictionResponse is the JSON form of a ranked result. Rankings are
// omitted when the style is not recognized.
type PredictionResponse struct {
	Class      string          `json:"class,omitempty"`
	Confidence int             `json:"confidence"`
	Recognized bool            `json:"recognized"`
	Status     string          `json:"status"`
	Rankings   []ranking.Entry `json:"rankings,omitempty"`
}

// HealthResponse reports model readiness.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func newPredictionResponse(res ranking.Result) PredictionResponse {
	resp := PredictionResponse{
		Confidence: res.Top.Percent,
		Recognized: res.Recognized,
		Status:     res.Status,
		Rankings:   res.Visible(),
	}
	if res.Recognized {
		resp.Class = res.Top.Label
	}
	return resp
}
