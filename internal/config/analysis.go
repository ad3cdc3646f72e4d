package config

import "time"

// DefaultMaxBufferLength caps the persisted event buffer
const DefaultMaxBufferLength = 200

// HighOccurrencePath is the analysis route that scores assignment text
const HighOccurrencePath = "/ai/rag/check-high-occurrence"

// AnalysisConfig holds settings for the external high-occurrence analysis service
type AnalysisConfig struct {
	BaseURL string
	Timeout time.Duration
	// Locale selects the formatter catalog (zh-TW or en)
	Locale string
}

// IsEnabled returns true if an analysis service is configured
func (c AnalysisConfig) IsEnabled() bool {
	return c.BaseURL != ""
}

// Endpoint returns the full high-occurrence URL
func (c AnalysisConfig) Endpoint() string {
	return c.BaseURL + HighOccurrencePath
}
