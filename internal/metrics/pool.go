package metrics

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStats is a point-in-time view of the database connection pool.
type PoolStats struct {
	AcquiredConns   int32
	IdleConns       int32
	TotalConns      int32
	MaxConns        int32
	AcquireCount    int64
	AcquireDuration time.Duration
}

// PoolStatsSource is implemented by *store.Store.
type PoolStatsSource interface {
	Stats() *pgxpool.Stat
}

// RegisterPoolStats exposes connection-pool gauges read from src on every scrape.
func RegisterPoolStats(src PoolStatsSource) error {
	return Registry.Register(newPoolCollector(func() (PoolStats, bool) {
		stat := src.Stats()
		if stat == nil {
			return PoolStats{}, false
		}
		return PoolStats{
			AcquiredConns:   stat.AcquiredConns(),
			IdleConns:       stat.IdleConns(),
			TotalConns:      stat.TotalConns(),
			MaxConns:        stat.MaxConns(),
			AcquireCount:    stat.AcquireCount(),
			AcquireDuration: stat.AcquireDuration(),
		}, true
	}))
}

type poolCollector struct {
	read func() (PoolStats, bool)

	acquired        *prometheus.Desc
	idle            *prometheus.Desc
	total           *prometheus.Desc
	max             *prometheus.Desc
	acquireCount    *prometheus.Desc
	acquireDuration *prometheus.Desc
}

func newPoolCollector(read func() (PoolStats, bool)) *poolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("movies", "db_pool", name), help, nil, nil)
	}
	return &poolCollector{
		read:            read,
		acquired:        desc("acquired_connections", "Connections currently checked out of the pool."),
		idle:            desc("idle_connections", "Idle connections held by the pool."),
		total:           desc("total_connections", "Connections currently open, including ones being established."),
		max:             desc("max_connections", "Configured maximum pool size."),
		acquireCount:    desc("acquires_total", "Successful connection acquisitions."),
		acquireDuration: desc("acquire_duration_seconds_total", "Total time spent waiting to acquire connections."),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquired
	ch <- c.idle
	ch <- c.total
	ch <- c.max
	ch <- c.acquireCount
	ch <- c.acquireDuration
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	stats, ok := c.read()
	if !ok {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(stats.AcquiredConns))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(stats.IdleConns))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(stats.TotalConns))
	ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue, float64(stats.MaxConns))
	ch <- prometheus.MustNewConstMetric(c.acquireCount, prometheus.CounterValue, float64(stats.AcquireCount))
	ch <- prometheus.MustNewConstMetric(c.acquireDuration, prometheus.CounterValue, stats.AcquireDuration.Seconds())
}
