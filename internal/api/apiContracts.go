package api

// requests---------------------

type AskRequest struct {
	Text string `json:"text" validate:"required" example:"What was the quarterly revenue?"`
	// ContextAware defaults to true when omitted.
	ContextAware *bool  `json:"context_aware,omitempty"`
	Ticker       string `json:"ticker,omitempty" example:"AAPL"`
}

type TickerContextRequest struct {
	Tickers []string `json:"tickers" validate:"required" example:"AAPL,MSFT"`
}

// responses--------------------

// AskResponse carries either a plain string or a JSON object of financial
// data points, depending on what the model produced.
type AskResponse struct {
	Response any `json:"response"`
}

type UploadResponse struct {
	Message string `json:"message" example:"document ingested"`
	Chunks  int    `json:"chunks" example:"42"`
}

type TickerContextResponse struct {
	Documents []string `json:"documents"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

type ErrorResponse struct {
	Id      string `json:"id,omitempty"`
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Bad Request"`
}
