package devices

import (
	"github.com/ceyewan/devmetrics/metrics"
	"github.com/ceyewan/devmetrics/registry"
)

// ClassBlock 块设备类别名
const ClassBlock = "block"

// BlockDeviceMetrics 块设备指标
type BlockDeviceMetrics struct {
	ActivateFails   metrics.Counter
	CfgFails        metrics.Counter
	NoAvailBuffer   metrics.Counter
	EventFails      metrics.Counter
	ExecuteFails    metrics.Counter
	InvalidReqs     metrics.Counter
	FlushCount      metrics.Counter
	QueueEventCount metrics.Counter

	RateLimiterEventCount metrics.Counter
	UpdateCount           metrics.Counter
	UpdateFails           metrics.Counter

	ReadBytes  metrics.Counter
	WriteBytes metrics.Counter
	ReadCount  metrics.Counter
	WriteCount metrics.Counter

	RateLimiterThrottledEvents metrics.Counter
	IoEngineThrottledEvents    metrics.Counter

	// PendingRequests 已提交到 io 引擎尚未完成的请求数
	PendingRequests metrics.Gauge
}

// Fields 实现 metrics.Block
func (m *BlockDeviceMetrics) Fields() []metrics.Field {
	return []metrics.Field{
		metrics.CounterField("activate_fails", &m.ActivateFails),
		metrics.CounterField("cfg_fails", &m.CfgFails),
		metrics.CounterField("no_avail_buffer", &m.NoAvailBuffer),
		metrics.CounterField("event_fails", &m.EventFails),
		metrics.CounterField("execute_fails", &m.ExecuteFails),
		metrics.CounterField("invalid_reqs_count", &m.InvalidReqs),
		metrics.CounterField("flush_count", &m.FlushCount),
		metrics.CounterField("queue_event_count", &m.QueueEventCount),
		metrics.CounterField("rate_limiter_event_count", &m.RateLimiterEventCount),
		metrics.CounterField("update_count", &m.UpdateCount),
		metrics.CounterField("update_fails", &m.UpdateFails),
		metrics.CounterField("read_bytes", &m.ReadBytes),
		metrics.CounterField("write_bytes", &m.WriteBytes),
		metrics.CounterField("read_count", &m.ReadCount),
		metrics.CounterField("write_count", &m.WriteCount),
		metrics.CounterField("rate_limiter_throttled_events", &m.RateLimiterThrottledEvents),
		metrics.CounterField("io_engine_throttled_events", &m.IoEngineThrottledEvents),
		metrics.GaugeField("pending_requests", &m.PendingRequests),
	}
}

// BlockRegistry 块设备注册表
type BlockRegistry = registry.Registry[*BlockDeviceMetrics]

// NewBlockRegistry 创建块设备注册表
func NewBlockRegistry(opts ...registry.Option) *BlockRegistry {
	return registry.New(ClassBlock, func() *BlockDeviceMetrics {
		return &BlockDeviceMetrics{}
	}, opts...)
}
