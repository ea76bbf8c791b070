package monitor

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotmc/echosounder"
	"github.com/gotmc/echosounder/lib/logger"
)

func TestMetrics_Exchanges(t *testing.T) {
	m := New("/dev/ttyUSB0")
	m.ObserveExchange("#range", echosounder.ResultOK, 20*time.Millisecond)
	m.ObserveExchange("#range", echosounder.ResultOK, 30*time.Millisecond)
	m.ObserveExchange("#gain", echosounder.ResultArgumentError, time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.exchanges.WithLabelValues("#range", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.exchanges.WithLabelValues("#gain", "invalid argument")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.latency))
}

func TestMetrics_DetectAndState(t *testing.T) {
	m := New("/dev/ttyUSB0")
	assert.InDelta(t, 1, testutil.ToFloat64(m.state.WithLabelValues("undetected")), 0)

	m.ObserveDetect(3, true)
	m.ObserveDetect(10, false)
	m.ObserveState(echosounder.Running)

	assert.InDelta(t, 1, testutil.ToFloat64(m.detects.WithLabelValues("detected")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.detects.WithLabelValues("failed")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.state.WithLabelValues("undetected")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.state.WithLabelValues("running")), 0)
}

func TestMetrics_Handler(t *testing.T) {
	m := New("COM31")
	m.ObserveExchange("#go", echosounder.ResultOK, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `echosounder_commands_total{keyword="#go",port="COM31",result="ok"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_ServeStopsWithContext(t *testing.T) {
	m := New("COM31")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, "127.0.0.1:0", logger.GetLogger()) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
