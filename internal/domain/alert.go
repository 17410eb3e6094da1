package domain

import "time"

// AlertLevel enumerates threshold alert severities.
type AlertLevel string

const (
	AlertLevelNone     AlertLevel = "none"
	AlertLevelWarning  AlertLevel = "warning"
	AlertLevelCritical AlertLevel = "critical"
)

var alertLevelRank = map[AlertLevel]int{
	AlertLevelNone:     0,
	AlertLevelWarning:  1,
	AlertLevelCritical: 2,
}

// Rank orders levels by severity, none first.
func (l AlertLevel) Rank() int {
	return alertLevelRank[l]
}

// AlertState is the live alert level for one metric key. One instance per
// key, owned by the threshold monitor for the process lifetime.
type AlertState struct {
	MetricKey    string
	CurrentLevel AlertLevel
	LastRaisedAt *time.Time
	LastValue    float64
}

// AlertTransition is emitted when a metric's alert level changes.
type AlertTransition struct {
	MetricKey string
	OldLevel  AlertLevel
	NewLevel  AlertLevel
	Value     float64
	Timestamp time.Time
}

// Raised reports whether the transition moved to a more severe level.
func (t AlertTransition) Raised() bool {
	return t.NewLevel.Rank() > t.OldLevel.Rank()
}
