package dto

import "time"

// MetricSampleRequest is one infrastructure metric sample.
type MetricSampleRequest struct {
	Metric    string     `json:"metric"`
	Value     float64    `json:"value"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// AlertStateResponse is the current alert state of one metric key.
type AlertStateResponse struct {
	MetricKey    string     `json:"metric_key"`
	CurrentLevel string     `json:"current_level"`
	LastValue    float64    `json:"last_value"`
	LastRaisedAt *time.Time `json:"last_raised_at,omitempty"`
}

// AlertTransitionResponse reports a confirmed level change for the sample
// that caused it.
type AlertTransitionResponse struct {
	MetricKey string  `json:"metric_key"`
	OldLevel  string  `json:"old_level"`
	NewLevel  string  `json:"new_level"`
	Value     float64 `json:"value"`
}
