package domain

// ClassificationResult is the transient output of the keyword classifier.
// MatchedKeywords preserves match order for explainability.
type ClassificationResult struct {
	Category        TicketCategory
	Priority        TicketPriority
	Confidence      float64
	MatchedKeywords []string
}
