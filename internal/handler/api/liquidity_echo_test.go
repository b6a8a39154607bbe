package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoLiq/internal/domain/models"
	domrepo "CryptoLiq/internal/domain/repository"
	domsvc "CryptoLiq/internal/domain/service"
	"CryptoLiq/internal/services/features"
	"CryptoLiq/internal/services/model"
	"CryptoLiq/internal/usecase"
	xhttp "CryptoLiq/pkg/http"
	xlogger "CryptoLiq/pkg/logger"
)

type stubModel struct {
	score float64
	err   error
}

func (m stubModel) Name() string      { return "stub@1" }
func (m stubModel) Columns() []string { return features.DefaultSchema }
func (m stubModel) Predict(context.Context, models.FeatureRow) (float64, error) {
	return m.score, m.err
}

type nopMetrics struct{}

func (nopMetrics) RecordPrediction(string, string)  {}
func (nopMetrics) RecordScore(float64)              {}
func (nopMetrics) RecordCache(bool)                 {}
func (nopMetrics) RecordError(string)               {}
func (nopMetrics) RecordLatency(string, float64)    {}

type memStore struct{ rows []models.Prediction }

func (s *memStore) Init(context.Context) error { return nil }
func (s *memStore) Save(_ context.Context, p *models.Prediction) error {
	s.rows = append([]models.Prediction{*p}, s.rows...)
	return nil
}
func (s *memStore) Recent(_ context.Context, q models.HistoryQuery) ([]models.Prediction, error) {
	if q.Limit < len(s.rows) {
		return s.rows[:q.Limit], nil
	}
	return s.rows, nil
}
func (s *memStore) Health(context.Context) error { return nil }
func (s *memStore) Close() error                 { return nil }

type candleStore struct{}

func (candleStore) GetLatestNCandles(_ context.Context, symbol string, n int, _ domrepo.Timeframe) ([]models.Candle, error) {
	out := make([]models.Candle, n)
	for i := range out {
		out[i] = models.Candle{Symbol: symbol, Open: 10, High: 11, Low: 9, Close: 10, Volume: 1}
	}
	return out, nil
}

func newEcho(m domsvc.LiquidityModel, opts ...usecase.PredictorOption) *echo.Echo {
	e := echo.New()
	p := usecase.NewLiquidityPredictor(m, features.DefaultSchema, nopMetrics{}, opts...)
	NewLiquidityEchoHandler(xlogger.Nop(), p).RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

const demoBody = `{"open":56787.5,"high":64776.4,"low":55000.0,"close":63000.0,"volume":123456.789,"accept_disclaimer":true}`

func TestPredict(t *testing.T) {
	e := newEcho(stubModel{score: 0.72})

	rec := do(e, http.MethodPost, "/api/liquidity/predict", demoBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var p models.Prediction
	decode(t, rec, &p)
	assert.Equal(t, models.LiquidityHigh, p.Level)
	assert.Equal(t, "Price may go Up", p.TrendHint)
	assert.InDelta(t, 7777777707.0, p.MarketCap, 0.05)
	assert.Equal(t, models.SourceAPI, p.Source)
}

func TestPredictRequiresDisclaimer(t *testing.T) {
	e := newEcho(stubModel{score: 0.5})

	rec := do(e, http.MethodPost, "/api/liquidity/predict", `{"open":1,"close":2}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errs []xhttp.AppError
	decode(t, rec, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, DisclaimerMessage, errs[0].Message)
}

func TestPredictValidation(t *testing.T) {
	e := newEcho(stubModel{score: 0.5})

	rec := do(e, http.MethodPost, "/api/liquidity/predict", `{"open":-5,"rsi":150,"accept_disclaimer":true}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errs []xhttp.ValidationError
	decode(t, rec, &errs)
	fields := []string{}
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"open", "rsi"}, fields)
}

func TestPredictErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not loaded", domsvc.ErrModelNotLoaded, http.StatusServiceUnavailable, "Model not loaded. Prediction unavailable."},
		{"inference", errors.New("bad input"), http.StatusInternalServerError, "Prediction failed: bad input"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(newEcho(stubModel{err: tc.err}), http.MethodPost, "/api/liquidity/predict", demoBody)
			require.Equal(t, tc.status, rec.Code)

			var errs []xhttp.AppError
			decode(t, rec, &errs)
			require.Len(t, errs, 1)
			assert.Equal(t, tc.message, errs[0].Message)
		})
	}
}

func TestPredictReportsMissingModelFirst(t *testing.T) {
	e := newEcho(model.Unavailable{Reason: errors.New("read artifact: no such file")})

	for _, body := range []string{`{"open":1,"close":2}`, demoBody} {
		rec := do(e, http.MethodPost, "/api/liquidity/predict", body)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code, body)

		var errs []xhttp.AppError
		decode(t, rec, &errs)
		require.Len(t, errs, 1)
		assert.Equal(t, "Model not loaded. Prediction unavailable.", errs[0].Message)
	}
}

func TestReadOnlyRoutes(t *testing.T) {
	e := newEcho(stubModel{score: 0.5})

	var demo models.Snapshot
	decode(t, do(e, http.MethodGet, "/api/liquidity/demo", ""), &demo)
	assert.Equal(t, models.DemoSnapshot(), demo)

	var coins xhttp.ListDataResponse
	rec := do(e, http.MethodGet, "/api/liquidity/coins", "")
	decode(t, rec, &coins)
	assert.EqualValues(t, 20, coins.Total)

	var schema models.ModelSchema
	decode(t, do(e, http.MethodGet, "/api/liquidity/schema", ""), &schema)
	assert.Equal(t, "stub@1", schema.Model)
	assert.Equal(t, []string(features.DefaultSchema), schema.Columns)

	var health models.Health
	decode(t, do(e, http.MethodGet, "/health", ""), &health)
	assert.Equal(t, "ok", health.Status)
	assert.True(t, health.ModelLoaded)
	assert.Equal(t, "disabled", health.Storage)
}

func TestHistory(t *testing.T) {
	store := &memStore{}
	e := newEcho(stubModel{score: 0.2}, usecase.WithPredictionStore(store))

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, do(e, http.MethodPost, "/api/liquidity/predict", demoBody).Code)
	}

	var list struct {
		Rows  []models.Prediction `json:"rows"`
		Total int64               `json:"total"`
	}
	decode(t, do(e, http.MethodGet, "/api/liquidity/history?limit=2", ""), &list)
	assert.Len(t, list.Rows, 2)
	assert.EqualValues(t, 2, list.Total)

	rec := do(e, http.MethodGet, "/api/liquidity/history?since=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/api/liquidity/history?since=2024-01-01", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(newEcho(stubModel{}), http.MethodGet, "/api/liquidity/history", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSymbolRoute(t *testing.T) {
	rec := do(newEcho(stubModel{score: 0.5}), http.MethodGet, "/api/liquidity/symbol?symbol=BTCUSDT", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "route absent without feature store")

	e := newEcho(stubModel{score: 0.5}, usecase.WithFeatureStore(candleStore{}))
	rec = do(e, http.MethodGet, "/api/liquidity/symbol?symbol=BTCUSDT&n=30&tf=5m", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var p models.Prediction
	decode(t, rec, &p)
	assert.Equal(t, "BTCUSDT", p.Coin)
	assert.Equal(t, models.TrendFlat, p.Trend)
	assert.Equal(t, models.SourceSymbol, p.Source)

	rec = do(e, http.MethodGet, "/api/liquidity/symbol?symbol=BTCUSDT&tf=1h", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
