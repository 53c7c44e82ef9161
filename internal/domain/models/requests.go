package models

// PredictRequest is the input of one pipeline run, shared by the HTTP body and the CLI flags.
type PredictRequest struct {
	Strategy     string            `json:"strategy" validate:"required"`
	Symbol       string            `json:"symbol" validate:"required,ticker"`
	BaseFeatures map[string]string `json:"base_features" validate:"max=32,dive,keys,required,endkeys,ticker"`
	Interval     string            `json:"interval" default:"1y" validate:"required"`
	Model        string            `json:"model"`
}

// StrategyInfo describes one registry entry for listing endpoints.
type StrategyInfo struct {
	ID                   string   `json:"id"`
	Folder               string   `json:"folder"`
	RequiredInstruments  []string `json:"required_instruments"`
	ExpectedFeatureCount int      `json:"expected_feature_count"`
}
