package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"CryptoLiq/internal/domain/models"
	domrepo "CryptoLiq/internal/domain/repository"
	domsvc "CryptoLiq/internal/domain/service"
	"CryptoLiq/internal/services/features"
	xhttp "CryptoLiq/pkg/http"
	pkgkafka "CryptoLiq/pkg/kafka"
	xutil "CryptoLiq/pkg/util"
)

// KafkaSnapshotsHandler scores snapshots arriving on a Kafka topic.
type KafkaSnapshotsHandler struct {
	topic     string
	predictor *LiquidityPredictor
	metrics   domrepo.Metrics
}

func NewKafkaSnapshotsHandler(topic string, predictor *LiquidityPredictor, metrics domrepo.Metrics) *KafkaSnapshotsHandler {
	return &KafkaSnapshotsHandler{topic: topic, predictor: predictor, metrics: metrics}
}

func (h *KafkaSnapshotsHandler) Topic() string { return h.topic }

// incoming message schema: models.PredictRequest without the disclaimer,
// plus an optional event time "t" in unix seconds or milliseconds.
func (h *KafkaSnapshotsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		models.PredictRequest
		T int64 `json:"t"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return backoff.Permanent(fmt.Errorf("decode snapshot: %w", err))
	}
	if errs := xhttp.Validate(&m.PredictRequest); len(errs) > 0 {
		h.metrics.RecordError("consumer_validate")
		return backoff.Permanent(fmt.Errorf("invalid snapshot: %s", errs[0].Message))
	}
	if m.T > 0 {
		h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(xutil.FromUnix(m.T)).Seconds())
	}

	_, err := h.predictor.Predict(ctx, m.Snapshot(), models.SourceKafka)
	if permanent(err) {
		return backoff.Permanent(err)
	}
	return err
}

// permanent reports failures that a redelivery of the same message cannot fix.
func permanent(err error) bool {
	for _, target := range []error{
		domsvc.ErrModelNotLoaded,
		domsvc.ErrSchemaMismatch,
		domsvc.ErrNonFiniteScore,
		features.ErrNonFinite,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var _ pkgkafka.MessageHandler = (*KafkaSnapshotsHandler)(nil)
