package status

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports a Registry to Prometheus
// Metrics are created lazily by the frame loop, so the collector is unchecked and describes nothing up front
type Collector struct {
	registry  *Registry
	namespace string
}

// NewCollector bridges reg under namespace, e.g. "tickfork"
func NewCollector(reg *Registry, namespace string) *Collector {
	return &Collector{registry: reg, namespace: namespace}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for key, val := range c.registry.Snapshot() {
		desc := prometheus.NewDesc(c.metricName(key), "tickfork metric "+key, nil, nil)
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, val)
	}
	for key, val := range c.registry.StringValues() {
		desc := prometheus.NewDesc(c.metricName(key)+"_info", "tickfork label "+key, []string{"value"}, nil)
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, 1, val)
	}
}

// metricName maps "sim.current_tick" to "tickfork_sim_current_tick"
func (c *Collector) metricName(key string) string {
	name := strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(key)
	if c.namespace == "" {
		return name
	}
	return c.namespace + "_" + name
}
