package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/domain"
)

func defaultSLAConfig() config.SLAConfig {
	return config.SLAConfig{
		CriticalResponse:     time.Hour,
		HighResponse:         4 * time.Hour,
		MediumResponse:       24 * time.Hour,
		LowResponse:          72 * time.Hour,
		SystemDownMultiplier: 0.5,
	}
}

func TestPolicyValidateDefaults(t *testing.T) {
	policy := NewPolicy(defaultSLAConfig())
	require.NoError(t, policy.Validate())
}

func TestPolicyResponseDurations(t *testing.T) {
	policy := NewPolicy(defaultSLAConfig())

	assert.Equal(t, 4*time.Hour, policy.ResponseDuration(domain.CategoryPerformanceIssue, domain.TicketPriorityHigh))
	assert.Equal(t, 24*time.Hour, policy.ResponseDuration(domain.CategoryOther, domain.TicketPriorityMedium))
	assert.Equal(t, 30*time.Minute, policy.ResponseDuration(domain.CategorySystemDown, domain.TicketPriorityCritical))
	assert.Equal(t, 2*time.Hour, policy.ResponseDuration(domain.CategorySystemDown, domain.TicketPriorityHigh))
}

func TestPolicyDurationsDecreaseWithSeverity(t *testing.T) {
	policy := NewPolicy(defaultSLAConfig())

	for _, category := range domain.Categories() {
		priorities := domain.Priorities()
		for i := 1; i < len(priorities); i++ {
			lower := policy.ResponseDuration(category, priorities[i-1])
			higher := policy.ResponseDuration(category, priorities[i])
			assert.Less(t, higher, lower,
				"category %s: %s should be tighter than %s", category, priorities[i], priorities[i-1])
		}
	}
}

func TestPolicyDeadlineFor(t *testing.T) {
	policy := NewPolicy(defaultSLAConfig())
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	deadline := policy.DeadlineFor(domain.CategoryNetworkIssue, domain.TicketPriorityHigh, createdAt)

	assert.Equal(t, createdAt.Add(4*time.Hour), deadline)
}

func TestPolicyValidateMissingDuration(t *testing.T) {
	cfg := defaultSLAConfig()
	cfg.CriticalResponse = 0

	err := NewPolicy(cfg).Validate()
	require.Error(t, err)
}

func TestPolicyValidateNonDecreasingDurations(t *testing.T) {
	cfg := defaultSLAConfig()
	cfg.CriticalResponse = cfg.HighResponse

	err := NewPolicy(cfg).Validate()
	require.Error(t, err)
}

func TestPolicyValidateBadMultiplier(t *testing.T) {
	cfg := defaultSLAConfig()
	cfg.SystemDownMultiplier = 0

	err := NewPolicy(cfg).Validate()
	require.Error(t, err)
}
