package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherValues(t *testing.T, c prometheus.Collector) map[string]float64 {
	t.Helper()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64, len(families))
	for _, mf := range families {
		require.Len(t, mf.GetMetric(), 1, mf.GetName())
		m := mf.GetMetric()[0]
		if m.GetCounter() != nil {
			values[mf.GetName()] = m.GetCounter().GetValue()
			continue
		}
		values[mf.GetName()] = m.GetGauge().GetValue()
	}
	return values
}

func TestPoolCollector(t *testing.T) {
	c := newPoolCollector(func() (PoolStats, bool) {
		return PoolStats{
			AcquiredConns:   3,
			IdleConns:       2,
			TotalConns:      5,
			MaxConns:        20,
			AcquireCount:    41,
			AcquireDuration: 1500 * time.Millisecond,
		}, true
	})

	values := gatherValues(t, c)
	assert.Equal(t, map[string]float64{
		"movies_db_pool_acquired_connections":           3,
		"movies_db_pool_idle_connections":               2,
		"movies_db_pool_total_connections":              5,
		"movies_db_pool_max_connections":                20,
		"movies_db_pool_acquires_total":                 41,
		"movies_db_pool_acquire_duration_seconds_total": 1.5,
	}, values)
}

func TestPoolCollector_NoPool(t *testing.T) {
	c := newPoolCollector(func() (PoolStats, bool) { return PoolStats{}, false })
	assert.Empty(t, gatherValues(t, c))
}
