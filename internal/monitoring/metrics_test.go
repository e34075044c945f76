package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestObserveComputation(t *testing.T) {
	t.Parallel()

	m := New(zap.NewNop(), Config{})

	m.ObserveComputation("predict_asset_failure", 20*time.Millisecond, nil)
	m.ObserveComputation("predict_asset_failure", 5*time.Millisecond, errors.New("boom"))

	ok := m.computations.WithLabelValues("predict_asset_failure", "ok")
	failed := m.computations.WithLabelValues("predict_asset_failure", "error")
	assert.Equal(t, 1.0, testutil.ToFloat64(ok))
	assert.Equal(t, 1.0, testutil.ToFloat64(failed))
}

func TestCacheCounters(t *testing.T) {
	t.Parallel()

	m := New(zap.NewNop(), Config{})

	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheMisses))
}

func TestStartDisabledIsNoop(t *testing.T) {
	t.Parallel()

	m := New(zap.NewNop(), Config{Enabled: false})
	m.Start()
	assert.Nil(t, m.server)
	assert.NoError(t, m.Stop(context.Background()))
}
