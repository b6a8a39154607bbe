package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"CryptoLiq/internal/domain/models"
	domrepo "CryptoLiq/internal/domain/repository"
	applogger "CryptoLiq/pkg/logger"
)

// SinkPipeline sits between the predictor and a slow sink such as Kafka.
// Publish only enqueues; a background loop delivers with bounded retries and
// drops what it cannot deliver so prediction latency never depends on the sink.
type SinkPipeline struct {
	name     string
	sink     domrepo.PredictionSink
	metrics  domrepo.Metrics
	l        *applogger.Logger
	bufCh    chan *models.Prediction
	retries  uint64
	minDelay time.Duration
	maxDelay time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	started sync.Once
}

type PipelineOption func(*SinkPipeline)

// WithBufferSize sets how many predictions may wait for delivery.
func WithBufferSize(n int) PipelineOption {
	return func(p *SinkPipeline) {
		if n > 0 {
			p.bufCh = make(chan *models.Prediction, n)
		}
	}
}

// WithRetry sets delivery attempts after the first and the backoff range.
func WithRetry(retries int, minDelay, maxDelay time.Duration) PipelineOption {
	return func(p *SinkPipeline) {
		if retries >= 0 {
			p.retries = uint64(retries)
		}
		p.minDelay = minDelay
		p.maxDelay = maxDelay
	}
}

// WithDeliveryTimeout bounds a single delivery attempt.
func WithDeliveryTimeout(d time.Duration) PipelineOption {
	return func(p *SinkPipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithPipelineLogger sets the logger.
func WithPipelineLogger(l *applogger.Logger) PipelineOption {
	return func(p *SinkPipeline) { p.l = l }
}

// NewSinkPipeline wraps sink. Call Start before publishing.
func NewSinkPipeline(name string, sink domrepo.PredictionSink, metrics domrepo.Metrics, opts ...PipelineOption) *SinkPipeline {
	p := &SinkPipeline{
		name:     name,
		sink:     sink,
		metrics:  metrics,
		l:        applogger.Nop(),
		bufCh:    make(chan *models.Prediction, 1000),
		retries:  3,
		minDelay: 50 * time.Millisecond,
		maxDelay: 2 * time.Second,
		timeout:  5 * time.Second,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches background delivery. Safe to call more than once.
func (p *SinkPipeline) Start() {
	p.started.Do(func() {
		go p.loop()
	})
}

// Publish enqueues without blocking. A full buffer drops the prediction.
func (p *SinkPipeline) Publish(_ context.Context, pred *models.Prediction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.metrics.RecordError("pipeline_closed_" + p.name)
		return nil
	}
	select {
	case p.bufCh <- pred:
	default:
		p.metrics.RecordError("pipeline_buffer_full_" + p.name)
	}
	return nil
}

// Close stops intake and waits for the buffer to drain.
func (p *SinkPipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.bufCh)
	p.mu.Unlock()

	p.Start() // drain even if never started
	<-p.done
	return nil
}

// Len returns the number of queued predictions.
func (p *SinkPipeline) Len() int { return len(p.bufCh) }

func (p *SinkPipeline) loop() {
	defer close(p.done)
	for pred := range p.bufCh {
		p.deliver(pred)
	}
}

func (p *SinkPipeline) deliver(pred *models.Prediction) {
	start := time.Now()
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.minDelay
	eb.MaxInterval = p.maxDelay
	eb.MaxElapsedTime = 0

	err := backoff.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		return p.sink.Publish(ctx, pred)
	}, backoff.WithMaxRetries(eb, p.retries))
	if err != nil {
		p.metrics.RecordError("pipeline_drop_" + p.name)
		p.l.Warn("prediction dropped",
			applogger.String("sink", p.name),
			applogger.String("id", pred.ID),
			applogger.Error(err),
		)
		return
	}
	p.metrics.RecordLatency("pipeline_deliver_"+p.name, time.Since(start).Seconds())
}

var _ domrepo.PredictionSink = (*SinkPipeline)(nil)
