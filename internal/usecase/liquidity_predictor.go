package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"CryptoLiq/internal/domain/models"
	domrepo "CryptoLiq/internal/domain/repository"
	domsvc "CryptoLiq/internal/domain/service"
	"CryptoLiq/internal/services/features"
	"CryptoLiq/internal/services/liquidity"
	"CryptoLiq/pkg/cache"
	applogger "CryptoLiq/pkg/logger"
)

// ErrNoFeatureStore is returned by PredictSymbol when no candle source is configured.
var ErrNoFeatureStore = errors.New("no feature store configured")

// ErrNoHistory is returned by History when predictions are not persisted.
var ErrNoHistory = errors.New("prediction history is not enabled")

// PredictorOption configures LiquidityPredictor.
type PredictorOption func(*LiquidityPredictor)

// WithPredictionCache memoizes scores by feature row for ttl.
func WithPredictionCache(c cache.Service, ttl time.Duration) PredictorOption {
	return func(p *LiquidityPredictor) {
		p.cache = c
		p.cacheTTL = ttl
	}
}

// WithPredictionStore persists every prediction.
func WithPredictionStore(s domrepo.PredictionStore) PredictorOption {
	return func(p *LiquidityPredictor) { p.store = s }
}

// WithSinks fans every prediction out to the given sinks.
func WithSinks(sinks ...domrepo.PredictionSink) PredictorOption {
	return func(p *LiquidityPredictor) { p.sinks = append(p.sinks, sinks...) }
}

// WithFeatureStore enables PredictSymbol.
func WithFeatureStore(fs domrepo.FeatureStore) PredictorOption {
	return func(p *LiquidityPredictor) { p.features = fs }
}

// WithPredictorLogger sets the logger.
func WithPredictorLogger(l *applogger.Logger) PredictorOption {
	return func(p *LiquidityPredictor) { p.l = l }
}

// LiquidityPredictor turns a market snapshot into a scored, classified prediction.
type LiquidityPredictor struct {
	model    domsvc.LiquidityModel
	schema   features.Schema
	metrics  domrepo.Metrics
	cache    cache.Service
	cacheTTL time.Duration
	store    domrepo.PredictionStore
	sinks    []domrepo.PredictionSink
	features domrepo.FeatureStore
	l        *applogger.Logger
	now      func() time.Time
}

func NewLiquidityPredictor(model domsvc.LiquidityModel, schema features.Schema, metrics domrepo.Metrics, opts ...PredictorOption) *LiquidityPredictor {
	p := &LiquidityPredictor{
		model:   model,
		schema:  schema,
		metrics: metrics,
		l:       applogger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Predict scores one snapshot. Any model failure is reported as
// ErrPredictionFailed, except a missing model which stays ErrModelNotLoaded.
func (p *LiquidityPredictor) Predict(ctx context.Context, s models.Snapshot, source string) (*models.Prediction, error) {
	start := time.Now()
	row, err := features.BuildRow(s, p.schema)
	if err != nil {
		p.metrics.RecordError("build_row")
		return nil, fmt.Errorf("%w: %w", domsvc.ErrPredictionFailed, err)
	}

	score, cached, err := p.score(ctx, row)
	if err != nil {
		if errors.Is(err, domsvc.ErrModelNotLoaded) {
			p.metrics.RecordError("model_not_loaded")
			return nil, err
		}
		p.metrics.RecordError("predict")
		p.l.Error("prediction failed",
			applogger.String("model", p.model.Name()),
			applogger.String("source", source),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", domsvc.ErrPredictionFailed, err)
	}

	trend := liquidity.TrendOf(s.Open, s.Close)
	mc := s.MarketCap
	if mc == 0 {
		mc = liquidity.MarketCap(s.Close, s.Volume)
	}
	pred := &models.Prediction{
		ID:        uuid.NewString(),
		Coin:      s.Coin,
		Score:     score,
		Level:     liquidity.Classify(score),
		Trend:     trend,
		TrendHint: trend.Hint(),
		MarketCap: mc,
		Model:     p.model.Name(),
		Source:    source,
		Cached:    cached,
		Snapshot:  s,
		CreatedAt: p.now().UTC(),
	}

	p.metrics.RecordPrediction(string(pred.Level), source)
	p.metrics.RecordScore(score)
	p.metrics.RecordLatency("predict", time.Since(start).Seconds())

	p.record(ctx, pred)
	return pred, nil
}

// score consults the cache before calling the model.
func (p *LiquidityPredictor) score(ctx context.Context, row models.FeatureRow) (float64, bool, error) {
	if p.cache == nil {
		score, err := p.model.Predict(ctx, row)
		return score, false, err
	}

	key := cache.Key("prediction", p.model.Name(), cache.HashKey(rowKey(row)))
	var score float64
	if err := p.cache.Get(ctx, key, &score); err == nil {
		p.metrics.RecordCache(true)
		return score, true, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		p.l.Warn("prediction cache read failed", applogger.Error(err))
	}
	p.metrics.RecordCache(false)

	score, err := p.model.Predict(ctx, row)
	if err != nil {
		return 0, false, err
	}
	if err := p.cache.Set(ctx, key, score, p.cacheTTL); err != nil {
		p.l.Warn("prediction cache write failed", applogger.Error(err))
	}
	return score, false, nil
}

// record persists and publishes; failures never fail the prediction.
func (p *LiquidityPredictor) record(ctx context.Context, pred *models.Prediction) {
	if p.store != nil {
		start := time.Now()
		if err := p.store.Save(ctx, pred); err != nil {
			p.metrics.RecordError("store")
			p.l.Warn("prediction not stored", applogger.String("id", pred.ID), applogger.Error(err))
		}
		p.metrics.RecordLatency("store", time.Since(start).Seconds())
	}
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, pred); err != nil {
			p.metrics.RecordError("sink")
			p.l.Warn("prediction not published", applogger.String("id", pred.ID), applogger.Error(err))
		}
	}
}

// PredictSymbol derives a snapshot from the latest n candles of symbol and scores it.
func (p *LiquidityPredictor) PredictSymbol(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) (*models.Prediction, error) {
	if p.features == nil {
		return nil, ErrNoFeatureStore
	}
	candles, err := p.features.GetLatestNCandles(ctx, symbol, n, tf)
	if err != nil {
		p.metrics.RecordError("feature_store")
		return nil, fmt.Errorf("load candles: %w", err)
	}
	s, err := features.SnapshotFromCandles(symbol, candles)
	if err != nil {
		return nil, err
	}
	return p.Predict(ctx, s, models.SourceSymbol)
}

// History returns stored predictions, newest first.
func (p *LiquidityPredictor) History(ctx context.Context, q models.HistoryQuery) ([]models.Prediction, error) {
	if p.store == nil {
		return nil, ErrNoHistory
	}
	return p.store.Recent(ctx, q)
}

// Schema describes the active model and the columns it is fed.
func (p *LiquidityPredictor) Schema() models.ModelSchema {
	return models.ModelSchema{
		Model:   p.model.Name(),
		Columns: append([]string(nil), p.schema...),
	}
}

// HasFeatureStore reports whether PredictSymbol is usable.
func (p *LiquidityPredictor) HasFeatureStore() bool { return p.features != nil }

// Health reports model and history store state. A missing model degrades
// the service but does not take it down.
func (p *LiquidityPredictor) Health(ctx context.Context) models.Health {
	h := models.Health{
		Status:      "ok",
		Model:       p.model.Name(),
		ModelLoaded: p.ModelErr() == nil,
		Storage:     "disabled",
	}
	if !h.ModelLoaded {
		h.Status = "degraded"
	}
	if p.store != nil {
		h.Storage = "ok"
		if err := p.store.Health(ctx); err != nil {
			h.Status = "degraded"
			h.Storage = err.Error()
		}
	}
	return h
}

// ModelErr is non-nil when no model is loaded, so every Predict would fail
// with it.
func (p *LiquidityPredictor) ModelErr() error {
	if err := modelState(p.model); errors.Is(err, domsvc.ErrModelNotLoaded) {
		return err
	}
	return nil
}

// modelState probes a model without calling it; models that failed to load
// report themselves through an Err method.
func modelState(m domsvc.LiquidityModel) error {
	if s, ok := m.(interface{ Err() error }); ok {
		return s.Err()
	}
	return nil
}

func rowKey(row models.FeatureRow) string {
	var b strings.Builder
	for i, c := range row.Columns {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(c)
		b.WriteByte('=')
		if i < len(row.Values) {
			b.WriteString(strconv.FormatFloat(row.Values[i], 'g', -1, 64))
		}
	}
	return b.String()
}
