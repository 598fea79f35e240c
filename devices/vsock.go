package devices

import (
	"github.com/ceyewan/devmetrics/metrics"
	"github.com/ceyewan/devmetrics/registry"
)

// ClassVsock vsock 设备类别名
const ClassVsock = "vsock"

// VsockDeviceMetrics vsock 设备指标
type VsockDeviceMetrics struct {
	ActivateFails metrics.Counter
	CfgFails      metrics.Counter

	// 各事件源处理失败
	RxQueueEventFails metrics.Counter
	TxQueueEventFails metrics.Counter
	EvQueueEventFails metrics.Counter
	MuxerEventFails   metrics.Counter
	ConnEventFails    metrics.Counter

	RxQueueEventCount metrics.Counter
	TxQueueEventCount metrics.Counter
	RxBytesCount      metrics.Counter
	TxBytesCount      metrics.Counter
	RxPacketsCount    metrics.Counter
	TxPacketsCount    metrics.Counter

	// 连接生命周期
	ConnsAdded   metrics.Counter
	ConnsKilled  metrics.Counter
	ConnsRemoved metrics.Counter
	KillqResync  metrics.Counter

	TxFlushFails metrics.Counter
	TxWriteFails metrics.Counter
	RxReadFails  metrics.Counter

	// ConnsActive 当前活跃连接数
	ConnsActive metrics.Gauge
}

// Fields 实现 metrics.Block
func (m *VsockDeviceMetrics) Fields() []metrics.Field {
	return []metrics.Field{
		metrics.CounterField("activate_fails", &m.ActivateFails),
		metrics.CounterField("cfg_fails", &m.CfgFails),
		metrics.CounterField("rx_queue_event_fails", &m.RxQueueEventFails),
		metrics.CounterField("tx_queue_event_fails", &m.TxQueueEventFails),
		metrics.CounterField("ev_queue_event_fails", &m.EvQueueEventFails),
		metrics.CounterField("muxer_event_fails", &m.MuxerEventFails),
		metrics.CounterField("conn_event_fails", &m.ConnEventFails),
		metrics.CounterField("rx_queue_event_count", &m.RxQueueEventCount),
		metrics.CounterField("tx_queue_event_count", &m.TxQueueEventCount),
		metrics.CounterField("rx_bytes_count", &m.RxBytesCount),
		metrics.CounterField("tx_bytes_count", &m.TxBytesCount),
		metrics.CounterField("rx_packets_count", &m.RxPacketsCount),
		metrics.CounterField("tx_packets_count", &m.TxPacketsCount),
		metrics.CounterField("conns_added", &m.ConnsAdded),
		metrics.CounterField("conns_killed", &m.ConnsKilled),
		metrics.CounterField("conns_removed", &m.ConnsRemoved),
		metrics.CounterField("killq_resync", &m.KillqResync),
		metrics.CounterField("tx_flush_fails", &m.TxFlushFails),
		metrics.CounterField("tx_write_fails", &m.TxWriteFails),
		metrics.CounterField("rx_read_fails", &m.RxReadFails),
		metrics.GaugeField("conns_active", &m.ConnsActive),
	}
}

// VsockRegistry vsock 设备注册表
type VsockRegistry = registry.Registry[*VsockDeviceMetrics]

// NewVsockRegistry 创建 vsock 设备注册表
func NewVsockRegistry(opts ...registry.Option) *VsockRegistry {
	return registry.New(ClassVsock, func() *VsockDeviceMetrics {
		return &VsockDeviceMetrics{}
	}, opts...)
}
