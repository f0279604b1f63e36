// Package sysmetrics exports the load of the host that runs task commands as
// Prometheus gauges, read on every scrape.
package sysmetrics

import (
	"context"
	"time"

	"taskdeck/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	log "github.com/sirupsen/logrus"
)

const scrapeTimeout = 2 * time.Second

type LoadStats struct {
	Load1  float64
	Load5  float64
	Load15 float64
}

// SystemReader is the host data source. Each method fails independently.
type SystemReader interface {
	LoadAvg(ctx context.Context) (LoadStats, error)
	MemoryUsedPercent(ctx context.Context) (float64, error)
	SwapUsedPercent(ctx context.Context) (float64, error)
	DiskUsedPercent(ctx context.Context, path string) (float64, error)
}

type Collector struct {
	sys      SystemReader
	diskPath string

	load   *prometheus.Desc
	memory *prometheus.Desc
	swap   *prometheus.Desc
	disk   *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// New returns a collector reading from gopsutil. diskPath is the mount whose
// usage is reported, usually where the database lives.
func New(diskPath string) *Collector {
	return NewWithReader(&gopsutilReader{}, diskPath)
}

func NewWithReader(sys SystemReader, diskPath string) *Collector {
	if diskPath == "" {
		diskPath = "/"
	}
	return &Collector{
		sys:      sys,
		diskPath: diskPath,
		load: prometheus.NewDesc(
			prometheus.BuildFQName(metrics.Namespace, "host", "load"),
			"Host load average.",
			[]string{"window"}, nil,
		),
		memory: prometheus.NewDesc(
			prometheus.BuildFQName(metrics.Namespace, "host", "memory_used_percent"),
			"Host virtual memory in use.",
			nil, nil,
		),
		swap: prometheus.NewDesc(
			prometheus.BuildFQName(metrics.Namespace, "host", "swap_used_percent"),
			"Host swap in use.",
			nil, nil,
		),
		disk: prometheus.NewDesc(
			prometheus.BuildFQName(metrics.Namespace, "host", "disk_used_percent"),
			"Disk usage of the data mount.",
			[]string{"path"}, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.load
	ch <- c.memory
	ch <- c.swap
	ch <- c.disk
}

// Collect skips a gauge whose reading fails rather than failing the scrape.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	if l, err := c.sys.LoadAvg(ctx); err == nil {
		ch <- prometheus.MustNewConstMetric(c.load, prometheus.GaugeValue, l.Load1, "1m")
		ch <- prometheus.MustNewConstMetric(c.load, prometheus.GaugeValue, l.Load5, "5m")
		ch <- prometheus.MustNewConstMetric(c.load, prometheus.GaugeValue, l.Load15, "15m")
	} else {
		log.WithError(err).Debug("load average unavailable")
	}

	if v, err := c.sys.MemoryUsedPercent(ctx); err == nil {
		ch <- prometheus.MustNewConstMetric(c.memory, prometheus.GaugeValue, v)
	} else {
		log.WithError(err).Debug("memory usage unavailable")
	}

	if v, err := c.sys.SwapUsedPercent(ctx); err == nil {
		ch <- prometheus.MustNewConstMetric(c.swap, prometheus.GaugeValue, v)
	} else {
		log.WithError(err).Debug("swap usage unavailable")
	}

	if v, err := c.sys.DiskUsedPercent(ctx, c.diskPath); err == nil {
		ch <- prometheus.MustNewConstMetric(c.disk, prometheus.GaugeValue, v, c.diskPath)
	} else {
		log.WithError(err).WithField("path", c.diskPath).Debug("disk usage unavailable")
	}
}

type gopsutilReader struct{}

func (g *gopsutilReader) LoadAvg(ctx context.Context) (LoadStats, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return LoadStats{}, err
	}
	return LoadStats{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}, nil
}

func (g *gopsutilReader) MemoryUsedPercent(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

func (g *gopsutilReader) SwapUsedPercent(ctx context.Context) (float64, error) {
	sm, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return sm.UsedPercent, nil
}

func (g *gopsutilReader) DiskUsedPercent(ctx context.Context, path string) (float64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, err
	}
	return usage.UsedPercent, nil
}
