package exporter

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ceyewan/devmetrics/metrics"
)

// PrometheusCollector 把设备注册表暴露为 Prometheus 指标
//
// 指标名为 <namespace>_<class>_<field>，标签 device 为设备 id。
// 设备 id 不能作为标签值时（非法 UTF-8）该指标以错误形式返回给 Gather，不会 panic。
type PrometheusCollector struct {
	namespace string
	sources   []Source

	mu    sync.Mutex
	descs map[string]*prometheus.Desc
}

var _ prometheus.Collector = (*PrometheusCollector)(nil)

// NewPrometheusCollector 创建 Collector，namespace 为空时使用 "devmetrics"
func NewPrometheusCollector(namespace string, sources ...Source) *PrometheusCollector {
	cfg := &Config{Namespace: namespace}
	cfg.setDefaults()
	c := &PrometheusCollector{
		namespace: cfg.Namespace,
		sources:   sources,
		descs:     make(map[string]*prometheus.Desc),
	}
	for _, src := range sources {
		for _, f := range src.Schema() {
			c.desc(src.Class(), f)
		}
	}
	return c
}

// Describe 实现 prometheus.Collector
func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, src := range c.sources {
		for _, f := range src.Schema() {
			ch <- c.desc(src.Class(), f)
		}
	}
}

// Collect 实现 prometheus.Collector
func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	for _, src := range c.sources {
		class := src.Class()
		src.Each(func(id string, block metrics.Block) {
			for _, f := range block.Fields() {
				valueType := prometheus.CounterValue
				if f.Kind() == metrics.KindGauge {
					valueType = prometheus.GaugeValue
				}
				desc := c.desc(class, f)
				m, err := prometheus.NewConstMetric(desc, valueType, float64(cumulative(f)), id)
				if err != nil {
					m = prometheus.NewInvalidMetric(desc, err)
				}
				ch <- m
			}
		})
	}
}

func (c *PrometheusCollector) desc(class string, f metrics.Field) *prometheus.Desc {
	name := prometheus.BuildFQName(c.namespace, class, f.Name)

	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.descs[name]; ok {
		return d
	}
	d := prometheus.NewDesc(name, class+" "+f.Kind().String()+" "+f.Name, []string{DeviceLabel}, nil)
	c.descs[name] = d
	return d
}
