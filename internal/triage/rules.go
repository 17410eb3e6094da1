package triage

import "github.com/spec-kit/triage-service/internal/domain"

// DefaultRules returns the built-in category rule set. Declaration order is
// the tie-break order. Weights and full scores are tuning parameters, not
// contracts; tests assert ordinal behavior only.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category:     domain.CategorySystemDown,
			BasePriority: domain.TicketPriorityCritical,
			FullScore:    4,
			Patterns: []Pattern{
				{Text: "system down", Weight: 4},
				{Text: "server down", Weight: 4},
				{Text: "service down", Weight: 4},
				{Text: "complete failure", Weight: 4},
				{Text: "outage", Weight: 3},
				{Text: "not responding", Weight: 3},
				{Text: "offline", Weight: 2},
				{Text: "unavailable", Weight: 2},
				{Text: "not accessible", Weight: 2},
				{Text: "down", Weight: 2},
			},
		},
		{
			Category:     domain.CategoryNetworkIssue,
			BasePriority: domain.TicketPriorityHigh,
			FullScore:    4,
			Patterns: []Pattern{
				{Text: "network", Weight: 3},
				{Text: "wifi", Weight: 3},
				{Text: "vpn", Weight: 3},
				{Text: "dns", Weight: 3},
				{Text: "ethernet", Weight: 3},
				{Text: "connectivity", Weight: 3},
				{Text: "internet", Weight: 2},
				{Text: "connection", Weight: 2},
				{Text: "ip address", Weight: 2},
			},
		},
		{
			Category:     domain.CategoryPerformanceIssue,
			BasePriority: domain.TicketPriorityHigh,
			FullScore:    4,
			Patterns: []Pattern{
				{Text: "slow", Weight: 2},
				{Text: "performance", Weight: 2},
				{Text: "lag", Weight: 2},
				{Text: "timeout", Weight: 2},
				{Text: "response time", Weight: 2},
				{Text: "bottleneck", Weight: 2},
				{Text: "degraded", Weight: 2},
			},
		},
		{
			Category:     domain.CategoryPasswordReset,
			BasePriority: domain.TicketPriorityLow,
			FullScore:    4,
			Patterns: []Pattern{
				{Text: "change password", Weight: 3},
				{Text: "locked out", Weight: 3},
				{Text: "password", Weight: 3},
				{Text: "forgot", Weight: 2},
				{Text: "reset", Weight: 2},
				{Text: "unlock", Weight: 2},
			},
		},
		{
			Category:     domain.CategorySoftwareInstallation,
			BasePriority: domain.TicketPriorityMedium,
			FullScore:    4,
			Patterns: []Pattern{
				{Text: "installation", Weight: 3},
				{Text: "install", Weight: 2},
				{Text: "setup", Weight: 2},
				{Text: "configure", Weight: 2},
				{Text: "deploy", Weight: 2},
				{Text: "software", Weight: 2},
				{Text: "license", Weight: 2},
				{Text: "application", Weight: 1},
			},
		},
		{
			Category:     domain.CategoryHardwareIssue,
			BasePriority: domain.TicketPriorityMedium,
			FullScore:    4,
			Patterns: []Pattern{
				{Text: "hardware", Weight: 3},
				{Text: "printer", Weight: 3},
				{Text: "scanner", Weight: 3},
				{Text: "physical damage", Weight: 3},
				{Text: "monitor", Weight: 2},
				{Text: "keyboard", Weight: 2},
				{Text: "mouse", Weight: 2},
				{Text: "device", Weight: 1},
			},
		},
	}
}

// SeverityUpgradeTerms lists outage-class terms that raise priority to
// critical regardless of the winning category.
func SeverityUpgradeTerms() []Pattern {
	return []Pattern{
		{Text: "outage", Weight: 1},
		{Text: "down", Weight: 1},
		{Text: "security breach", Weight: 1},
		{Text: "breach", Weight: 1},
		{Text: "data loss", Weight: 1},
		{Text: "emergency", Weight: 1},
		{Text: "cannot access", Weight: 1},
		{Text: "complete failure", Weight: 1},
	}
}
