package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/crid-api/internal/registry"
)

// FactMetrics counts emitted facts. Satisfied by the metrics service.
type FactMetrics interface {
	ObserveFact(kind string)
}

// Recorder delivers registry facts to the observability collaborators: the
// structured log, an optional Redis pub/sub channel, and Prometheus.
type Recorder struct {
	client  *redis.Client
	channel string
	metrics FactMetrics
	logger  *zap.Logger
}

// NewRecorder constructs a fact recorder. The Redis client and metrics are
// optional; a nil client disables publishing.
func NewRecorder(client *redis.Client, channel string, metrics FactMetrics, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if channel == "" {
		channel = "registry.facts"
	}
	return &Recorder{client: client, channel: channel, metrics: metrics, logger: logger}
}

// Record implements registry.Recorder. Delivery failures are logged, never
// surfaced: the mutation has already committed.
func (r *Recorder) Record(ctx context.Context, fact registry.Fact) {
	payload, err := json.Marshal(fact)
	if err != nil {
		r.logger.Error("marshal registry fact", zap.String("kind", string(fact.Kind)), zap.Error(err))
		return
	}

	r.logger.Info("registry_fact",
		zap.String("kind", string(fact.Kind)),
		zap.ByteString("fact", payload),
	)

	if r.metrics != nil {
		r.metrics.ObserveFact(string(fact.Kind))
	}

	if r.client != nil {
		if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
			r.logger.Warn("publish registry fact",
				zap.String("channel", r.channel),
				zap.String("kind", string(fact.Kind)),
				zap.Error(err),
			)
		}
	}
}
