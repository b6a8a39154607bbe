package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoLiq/pkg/config"
	xhttp "CryptoLiq/pkg/http"
	applogger "CryptoLiq/pkg/logger"
)

type closeRecorder struct {
	order *[]string
	name  string
	err   error
}

func (c closeRecorder) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

func TestRunContextClosesResourcesInOrder(t *testing.T) {
	var order []string
	srv := xhttp.NewServer(applogger.Nop(), nil,
		xhttp.WithHost("127.0.0.1"),
		xhttp.WithPort(0),
		xhttp.WithTimeouts(time.Second, time.Second, time.Second),
	)
	app := New(&config.Config{}, applogger.Nop(), srv, nil, nil,
		Closer{Name: "store", Closer: closeRecorder{order: &order, name: "store"}},
		Closer{Name: "nil"},
		Closer{Name: "cache", Closer: closeRecorder{order: &order, name: "cache", err: errors.New("already closed")}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Equal(t, []string{"store", "cache"}, order)
}
