package jobmetrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smallbiznis/storecogs/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecordRun(t *testing.T) {
	m := New(nil)
	m.Rows("cogs", "inserted", 3)
	m.Rows("cogs", "updated", 0)
	m.Rows("", "skipped", 1)

	now := time.Unix(1_700_000_000, 0)
	m.Finish("cogs", "import", 1500*time.Millisecond, now, nil)
	m.Finish("sales", "import", time.Second, now, errors.New("boom"))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.rows.WithLabelValues("cogs", "inserted")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.rows.WithLabelValues("cogs", "updated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rows.WithLabelValues("unknown", "skipped")))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.duration.WithLabelValues("cogs", "import")))
	assert.Equal(t, float64(now.Unix()), testutil.ToFloat64(m.lastSuccess.WithLabelValues("cogs", "import")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("sales", "import")))

	// Push without a pusher does nothing.
	assert.NoError(t, m.Push(context.Background()))
}

func TestNilJobMetricsIsSafe(t *testing.T) {
	var m *JobMetrics
	m.Rows("cogs", "inserted", 1)
	m.Finish("cogs", "import", time.Second, time.Now(), nil)
	assert.NoError(t, m.Push(context.Background()))
}

func TestNewPusherDisabledWithoutURL(t *testing.T) {
	assert.Nil(t, NewPusher(config.Config{}, zap.NewNop()))
}

func TestPushgatewayPusher(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		mu.Lock()
		method, path, body = r.Method, r.URL.Path, buf.String()
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New(NewPusher(config.Config{PushgatewayURL: srv.URL, Environment: "test"}, zap.NewNop()))
	m.Rows("cogs", "inserted", 2)
	require.NoError(t, m.Push(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/cogsctl/environment/test", path)
	assert.NotEmpty(t, body)
}

func TestPushgatewayPusherRequiresJob(t *testing.T) {
	m := New(nil)
	err := NewPushgatewayPusher("http://localhost:9091", " ", nil).Push(context.Background(), m.Registry())
	assert.Error(t, err)
}
