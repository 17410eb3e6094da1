package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/monitor"
	"github.com/spec-kit/triage-service/internal/observability"
)

// MonitorService feeds metric samples into the threshold monitor and turns
// confirmed level transitions into alert events on the stream.
type MonitorService struct {
	monitor     *monitor.Monitor
	broadcaster *events.Broadcaster
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewMonitorService constructs the service.
func NewMonitorService(mon *monitor.Monitor, broadcaster *events.Broadcaster, metrics *observability.Metrics, logger *zap.Logger) *MonitorService {
	return &MonitorService{
		monitor:     mon,
		broadcaster: broadcaster,
		metrics:     metrics,
		logger:      logger,
	}
}

// IngestSample records one sample. Most samples produce no transition; when
// hysteresis confirms a level change, exactly one event is published.
func (s *MonitorService) IngestSample(metricKey string, value float64, ts time.Time) *domain.AlertTransition {
	if ts.IsZero() {
		ts = time.Now()
	}
	transition := s.monitor.Ingest(metricKey, value, ts)
	if transition == nil {
		return nil
	}

	direction := "cleared"
	eventType := events.EventAlertCleared
	if transition.Raised() {
		direction = "raised"
		eventType = events.EventAlertRaised
	}
	if s.metrics != nil {
		s.metrics.AlertTransitions.WithLabelValues(metricKey, direction).Inc()
	}
	if s.broadcaster != nil {
		s.broadcaster.Publish(events.Event{
			Type: eventType,
			Payload: events.AlertTransitionPayload{
				MetricKey: transition.MetricKey,
				OldLevel:  transition.OldLevel,
				NewLevel:  transition.NewLevel,
				Value:     transition.Value,
			},
		})
	}
	s.logger.Warn("alert transition",
		zap.String("metric", transition.MetricKey),
		zap.String("old_level", string(transition.OldLevel)),
		zap.String("new_level", string(transition.NewLevel)),
		zap.Float64("value", transition.Value))
	return transition
}

// States returns the current alert state per monitored metric key.
func (s *MonitorService) States() []domain.AlertState {
	return s.monitor.States()
}
