package di

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"CryptoLiq/internal/domain/repository"
	domsvc "CryptoLiq/internal/domain/service"
	"CryptoLiq/internal/handler/api"
	"CryptoLiq/internal/handler/ws"
	"CryptoLiq/internal/middleware"
	internalrepo "CryptoLiq/internal/repository"
	"CryptoLiq/internal/service/ratelimit"
	"CryptoLiq/internal/services/features"
	"CryptoLiq/internal/services/model"
	"CryptoLiq/internal/usecase"
	"CryptoLiq/pkg/cache"
	pkgch "CryptoLiq/pkg/clickhouse"
	"CryptoLiq/pkg/config"
	xhttp "CryptoLiq/pkg/http"
	pkgkafka "CryptoLiq/pkg/kafka"
	applogger "CryptoLiq/pkg/logger"
	"CryptoLiq/pkg/metrics"
	"CryptoLiq/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stdout",
	})
}

// ProvideRegistry creates the Prometheus registry with Go and process collectors.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.New(reg)
}

// ProvideSchema resolves the configured feature schema.
func ProvideSchema(cfg *config.Config) (features.Schema, error) {
	return features.SchemaByName(cfg.Model.Schema)
}

// ProvideModel loads the scoring model. A model that fails to load does not
// stop the service; every prediction then reports the model as not loaded.
func ProvideModel(cfg *config.Config, rec *metrics.Recorder, l *applogger.Logger) domsvc.LiquidityModel {
	m, err := model.Load(cfg)
	if err != nil {
		l.Error("model not loaded", applogger.String("type", cfg.Model.Type), applogger.Error(err))
		rec.SetModelLoaded(false)
		return model.Unavailable{Reason: err}
	}
	l.Info("model loaded", applogger.String("model", m.Name()), applogger.Strings("columns", m.Columns()))
	rec.SetModelLoaded(true)
	return m
}

// ProvideClickHouseClient connects to ClickHouse when storage or the feature
// store needs it, retrying with backoff while the server comes up.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, error) {
	if !cfg.UsesClickHouse() {
		return nil, nil
	}
	opts := []pkgch.ClientOption{
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	}

	eb := backoff.NewExponentialBackOff()
	eb.MaxElapsedTime = cfg.ClickHouse.ConnectRetry
	var client *pkgch.Client
	err := backoff.RetryNotify(func() error {
		var err error
		client, err = pkgch.NewClient(context.Background(), opts...)
		return err
	}, eb, func(err error, next time.Duration) {
		l.Warn("clickhouse not ready, retrying", applogger.Duration("retry_in_ms", next), applogger.Error(err))
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	l.Info("clickhouse connected", applogger.String("host", cfg.ClickHouse.Host), applogger.String("db", cfg.ClickHouse.Database))
	return client, nil
}

// ProvidePredictionStore picks the history backend and ensures its tables.
func ProvidePredictionStore(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (repository.PredictionStore, error) {
	var store repository.PredictionStore
	switch cfg.Storage.Backend {
	case config.StorageClickHouse:
		store = internalrepo.NewCHPredictionStore(ch.DB(), l)
	case config.StorageSQLite:
		s, err := internalrepo.NewSQLitePredictionStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("prediction store schema: %w", err)
	}
	l.Info("prediction history enabled", applogger.String("backend", cfg.Storage.Backend))
	return store, nil
}

// ProvideFeatureStore reads candles from ClickHouse when a candles table is configured.
func ProvideFeatureStore(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) repository.FeatureStore {
	if ch == nil || cfg.ClickHouse.CandlesTable == "" {
		return nil
	}
	return internalrepo.NewCHFeatureStore(ch.DB(), cfg.ClickHouse.CandlesTable, l)
}

// ProvideCache creates the prediction cache: memory only, or memory in front of Redis.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemorySize)), nil
	}
	rc, err := cache.NewRedisCache(context.Background(), cache.RedisConfig{
		Host:     cfg.Cache.Redis.Host,
		Port:     cfg.Cache.Redis.Port,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("prediction cache on redis", applogger.String("host", cfg.Cache.Redis.Host))
	return cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(cfg.Cache.MemorySize),
		cache.WithLayeredL1TTL(time.Minute),
	), nil
}

// ProvideKafkaProducer creates a Kafka producer when Kafka is enabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Compression, cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithProducerMetrics(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePredictionPipeline decouples Kafka delivery from prediction latency.
func ProvidePredictionPipeline(cfg *config.Config, producer *pkgkafka.Producer, rec *metrics.Recorder, l *applogger.Logger) *middleware.SinkPipeline {
	if producer == nil {
		return nil
	}
	p := middleware.NewSinkPipeline("kafka",
		internalrepo.NewKafkaPublisher(producer, cfg.Kafka.PredictionsTopic),
		rec,
		middleware.WithBufferSize(cfg.Kafka.Producer.PipelineBuffer),
		middleware.WithRetry(cfg.Kafka.Producer.MaxAttempts, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		middleware.WithDeliveryTimeout(cfg.Kafka.Producer.WriteTimeout),
		middleware.WithPipelineLogger(l.With(applogger.String("component", "kafka_sink"))),
	)
	p.Start()
	return p
}

// ProvideHub creates the websocket prediction stream.
func ProvideHub(cfg *config.Config, l *applogger.Logger) *ws.Hub {
	return ws.NewHub(l.With(applogger.String("component", "ws_hub")), cfg.Server.CORSOrigins)
}

// ProvidePredictor assembles the liquidity predictor. Optional collaborators
// are nil when disabled.
func ProvidePredictor(
	cfg *config.Config,
	m domsvc.LiquidityModel,
	schema features.Schema,
	rec *metrics.Recorder,
	c cache.Service,
	store repository.PredictionStore,
	fs repository.FeatureStore,
	pipeline *middleware.SinkPipeline,
	hub *ws.Hub,
	l *applogger.Logger,
) *usecase.LiquidityPredictor {
	opts := []usecase.PredictorOption{
		usecase.WithPredictorLogger(l.With(applogger.String("component", "predictor"))),
		usecase.WithSinks(hub),
	}
	if c != nil {
		opts = append(opts, usecase.WithPredictionCache(c, cfg.Cache.TTL))
	}
	if store != nil {
		opts = append(opts, usecase.WithPredictionStore(store))
	}
	if fs != nil {
		opts = append(opts, usecase.WithFeatureStore(fs))
	}
	if pipeline != nil {
		opts = append(opts, usecase.WithSinks(pipeline))
	}
	return usecase.NewLiquidityPredictor(m, schema, rec, opts...)
}

// ProvideKafkaConsumer creates a Kafka consumer when a snapshots topic is configured.
func ProvideKafkaConsumer(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.SnapshotsTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerMetrics(reg),
		pkgkafka.WithConsumerLogger(l.With(applogger.String("component", "kafka_consumer"))),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaHandlers lists the topic handlers the consumer serves.
func ProvideKafkaHandlers(cfg *config.Config, p *usecase.LiquidityPredictor, rec *metrics.Recorder) []pkgkafka.MessageHandler {
	if !cfg.Kafka.Enabled || cfg.Kafka.SnapshotsTopic == "" {
		return nil
	}
	return []pkgkafka.MessageHandler{usecase.NewKafkaSnapshotsHandler(cfg.Kafka.SnapshotsTopic, p, rec)}
}

// ProvideHTTPServer creates the Echo server with the liquidity API and the
// websocket stream.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	reg *prometheus.Registry,
	p *usecase.LiquidityPredictor,
	hub *ws.Hub,
) *xhttp.Server {
	var apiMW []echo.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		apiMW = append(apiMW, ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
	}
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		opts = append(opts, xhttp.WithCORSOrigins(cfg.Server.CORSOrigins))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, cfg.Metrics.Path))
	}
	return xhttp.NewServer(l, []xhttp.Handler{
		api.NewLiquidityEchoHandler(l, p, apiMW...),
		hub,
	}, opts...)
}

// ProvideApp creates the application server. Resources close after intake stops:
// live clients first, then the Kafka pipeline drains into the producer,
// then stores and pools.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	handlers []pkgkafka.MessageHandler,
	hub *ws.Hub,
	pipeline *middleware.SinkPipeline,
	producer *pkgkafka.Producer,
	c cache.Service,
	store repository.PredictionStore,
	ch *pkgch.Client,
) *server.App {
	closers := []server.Closer{{Name: "websocket hub", Closer: hub}}
	if pipeline != nil {
		closers = append(closers, server.Closer{Name: "kafka pipeline", Closer: pipeline})
	}
	if producer != nil {
		closers = append(closers, server.Closer{Name: "kafka producer", Closer: producer})
	}
	if c != nil {
		closers = append(closers, server.Closer{Name: "cache", Closer: c})
	}
	if store != nil {
		closers = append(closers, server.Closer{Name: "prediction store", Closer: store})
	}
	if ch != nil {
		closers = append(closers, server.Closer{Name: "clickhouse", Closer: ch})
	}
	return server.New(cfg, l, httpServer, consumer, handlers, closers...)
}
