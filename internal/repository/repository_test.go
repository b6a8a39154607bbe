package repository

import (
	"context"
	"encoding/json"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoLiq/internal/domain/models"
	domrepo "CryptoLiq/internal/domain/repository"
	pkgkafka "CryptoLiq/pkg/kafka"
	applogger "CryptoLiq/pkg/logger"
)

func samplePrediction(id, coin string, at time.Time) *models.Prediction {
	snap := models.DemoSnapshot()
	snap.Coin = coin
	return &models.Prediction{
		ID:        id,
		Coin:      coin,
		Score:     0.55,
		Level:     models.LiquidityMedium,
		Trend:     models.TrendUp,
		TrendHint: models.TrendUp.Hint(),
		MarketCap: 7777777707,
		Model:     "test@1",
		Source:    models.SourceAPI,
		Snapshot:  snap,
		CreatedAt: at,
	}
}

func TestSQLitePredictionStore(t *testing.T) {
	store, err := NewSQLitePredictionStore(filepath.Join(t.TempDir(), "data", "predictions.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()
	require.NoError(t, store.Init(ctx))
	require.NoError(t, store.Init(ctx))

	base := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, samplePrediction("a", "Bitcoin", base)))
	require.NoError(t, store.Save(ctx, samplePrediction("b", "Ethereum", base.Add(time.Minute))))
	require.NoError(t, store.Save(ctx, samplePrediction("c", "Bitcoin", base.Add(2*time.Minute))))

	all, err := store.Recent(ctx, models.HistoryQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, base.Add(2*time.Minute), all[0].CreatedAt)
	assert.Equal(t, models.LiquidityMedium, all[0].Level)
	assert.Equal(t, "Price may go Up", all[0].TrendHint)
	assert.Equal(t, 63000.0, all[0].Snapshot.Close)

	btc, err := store.Recent(ctx, models.HistoryQuery{Coin: "Bitcoin", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, btc, 2)

	since, err := store.Recent(ctx, models.HistoryQuery{Since: base.Add(30 * time.Second), Limit: 1})
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, "c", since[0].ID)

	assert.Equal(t, 7777777707.0, all[0].MarketCap)
	assert.Zero(t, all[0].Snapshot.MarketCap)

	supplied := samplePrediction("d", "Solana", base.Add(3*time.Minute))
	supplied.Snapshot.MarketCap = 42
	supplied.MarketCap = 42
	require.NoError(t, store.Save(ctx, supplied))
	sol, err := store.Recent(ctx, models.HistoryQuery{Coin: "Solana", Limit: 1})
	require.NoError(t, err)
	require.Len(t, sol, 1)
	assert.Equal(t, 42.0, sol[0].Snapshot.MarketCap)

	assert.Error(t, store.Save(ctx, samplePrediction("a", "Bitcoin", base)), "duplicate id")
	assert.NoError(t, store.Health(ctx))
}

func TestCHPredictionStoreSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := NewCHPredictionStore(db, applogger.Nop())

	at := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	p := samplePrediction("id-1", "Bitcoin", at)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO liquidity_predictions (id, created_at, coin")).
		WithArgs("id-1", at, "Bitcoin", 0.55, "Medium", "Up", 7777777707.0, "test@1", "api",
			56787.5, 64776.4, 55000.0, 63000.0, 123456.789, 0.0, 0.0, 0.0, 0.0, 0.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHPredictionStoreRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := NewCHPredictionStore(db, applogger.Nop())

	at := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	cols := []string{"id", "created_at", "coin", "score", "level", "trend", "market_cap", "model", "source",
		"open", "high", "low", "close", "volume", "sma_5", "ema_12", "rsi", "macd", "snapshot_market_cap"}
	rows := sqlmock.NewRows(cols).
		AddRow("id-1", at, "Bitcoin", 0.81, "High", "Down", 10.0, "m", "kafka", 2.0, 3.0, 1.0, 1.5, 6.67, 0.0, 0.0, 45.0, -0.2, 0.0)

	mock.ExpectQuery(regexp.QuoteMeta("FROM liquidity_predictions WHERE coin = ? ORDER BY created_at DESC LIMIT ?")).
		WithArgs("Bitcoin", 5).
		WillReturnRows(rows)

	got, err := store.Recent(context.Background(), models.HistoryQuery{Coin: "Bitcoin", Limit: 5})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.LiquidityHigh, got[0].Level)
	assert.Equal(t, "Price may go Down", got[0].TrendHint)
	assert.Equal(t, 45.0, got[0].Snapshot.RSI)
	assert.Equal(t, "Bitcoin", got[0].Snapshot.Coin)
	assert.Equal(t, 10.0, got[0].MarketCap)
	assert.Zero(t, got[0].Snapshot.MarketCap, "derived market cap stays off the snapshot")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHPredictionStoreInit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := NewCHPredictionStore(db, applogger.Nop())

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS liquidity_predictions").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, store.Init(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentQueryDefaults(t *testing.T) {
	q, args := recentQuery("t", models.HistoryQuery{}, nil)
	assert.Equal(t, "SELECT "+predictionColumns+" FROM t ORDER BY created_at DESC LIMIT ?", q)
	assert.Equal(t, []interface{}{defaultHistoryLimit}, args)
}

func TestCHFeatureStoreLatest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	fs := NewCHFeatureStore(db, "market.candles", applogger.Nop())

	t0 := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"bucket", "symbol", "open", "high", "low", "close", "vol"}).
		AddRow(t0.Add(time.Minute), "BTCUSDT", 2.0, 2.5, 1.5, 2.2, 10.0).
		AddRow(t0, "BTCUSDT", 1.0, 1.5, 0.5, 1.2, 5.0)
	mock.ExpectQuery(regexp.QuoteMeta("FROM market.candles_1m")).WithArgs("BTCUSDT", 2).WillReturnRows(rows)

	got, err := fs.GetLatestNCandles(context.Background(), "BTCUSDT", 2, domrepo.TF1m)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, t0, got[0].Bucket, "oldest first")
	assert.Equal(t, 2.2, got[1].Close)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHFeatureStoreFiveMinuteFolds(t *testing.T) {
	fs := NewCHFeatureStore(nil, "market.candles", applogger.Nop())
	q, err := fs.latestQuery(domrepo.TF5m)
	require.NoError(t, err)
	assert.Contains(t, q, "toStartOfFiveMinutes")
	assert.Contains(t, q, "market.candles_1m")

	_, err = fs.latestQuery("1h")
	assert.Error(t, err)
}

type recordingWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaPublisher(t *testing.T) {
	w := &recordingWriter{}
	pub := NewKafkaPublisher(pkgkafka.NewProducerFromWriter(w, nil), "liquidity.predictions")

	p := samplePrediction("id-1", "Bitcoin", time.Now().UTC())
	require.NoError(t, pub.Publish(context.Background(), p))
	p.Coin = ""
	require.NoError(t, pub.Publish(context.Background(), p))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "liquidity.predictions", w.msgs[0].Topic)
	assert.Equal(t, "Bitcoin", string(w.msgs[0].Key))
	assert.Equal(t, "id-1", string(w.msgs[1].Key))

	var decoded models.Prediction
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, models.LiquidityMedium, decoded.Level)
}
