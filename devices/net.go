// Package devices 定义各设备类别的指标块以及对应的注册表构造函数。
//
// 每个类别是一个普通结构体，热路径直接访问字段：
//
//	m := netRegistry.Register("eth0")
//	m.RxBytesCount.Add(uint64(n))
//	m.RxPacketsCount.Inc()
//
// Fields 只在 flush、聚合、导出时使用，字段顺序即输出顺序。
package devices

import (
	"github.com/ceyewan/devmetrics/metrics"
	"github.com/ceyewan/devmetrics/registry"
)

// ClassNet 网络设备类别名
const ClassNet = "net"

// NetDeviceMetrics 网络设备指标
type NetDeviceMetrics struct {
	// 设备生命周期与配置
	ActivateFails     metrics.Counter
	CfgFails          metrics.Counter
	MacAddressUpdates metrics.Counter
	EventFails        metrics.Counter

	// 队列没有可用描述符
	NoRxAvailBuffer metrics.Counter
	NoTxAvailBuffer metrics.Counter

	// 接收路径
	RxQueueEventCount       metrics.Counter
	RxEventRateLimiterCount metrics.Counter
	RxPartialWrites         metrics.Counter
	RxRateLimiterThrottled  metrics.Counter
	RxTapEventCount         metrics.Counter
	RxBytesCount            metrics.Counter
	RxPacketsCount          metrics.Counter
	RxFails                 metrics.Counter
	RxCount                 metrics.Counter

	// tap 读写失败
	TapReadFails  metrics.Counter
	TapWriteFails metrics.Counter

	// 发送路径
	TxBytesCount            metrics.Counter
	TxMalformedFrames       metrics.Counter
	TxFails                 metrics.Counter
	TxCount                 metrics.Counter
	TxPacketsCount          metrics.Counter
	TxPartialReads          metrics.Counter
	TxQueueEventCount       metrics.Counter
	TxRateLimiterEventCount metrics.Counter
	TxRateLimiterThrottled  metrics.Counter
	TxSpoofedMacCount       metrics.Counter // 源 MAC 与设备配置不符而被丢弃的帧
}

// Fields 实现 metrics.Block
func (m *NetDeviceMetrics) Fields() []metrics.Field {
	return []metrics.Field{
		metrics.CounterField("activate_fails", &m.ActivateFails),
		metrics.CounterField("cfg_fails", &m.CfgFails),
		metrics.CounterField("mac_address_updates", &m.MacAddressUpdates),
		metrics.CounterField("no_rx_avail_buffer", &m.NoRxAvailBuffer),
		metrics.CounterField("no_tx_avail_buffer", &m.NoTxAvailBuffer),
		metrics.CounterField("event_fails", &m.EventFails),
		metrics.CounterField("rx_queue_event_count", &m.RxQueueEventCount),
		metrics.CounterField("rx_event_rate_limiter_count", &m.RxEventRateLimiterCount),
		metrics.CounterField("rx_partial_writes", &m.RxPartialWrites),
		metrics.CounterField("rx_rate_limiter_throttled", &m.RxRateLimiterThrottled),
		metrics.CounterField("rx_tap_event_count", &m.RxTapEventCount),
		metrics.CounterField("rx_bytes_count", &m.RxBytesCount),
		metrics.CounterField("rx_packets_count", &m.RxPacketsCount),
		metrics.CounterField("rx_fails", &m.RxFails),
		metrics.CounterField("rx_count", &m.RxCount),
		metrics.CounterField("tap_read_fails", &m.TapReadFails),
		metrics.CounterField("tap_write_fails", &m.TapWriteFails),
		metrics.CounterField("tx_bytes_count", &m.TxBytesCount),
		metrics.CounterField("tx_malformed_frames", &m.TxMalformedFrames),
		metrics.CounterField("tx_fails", &m.TxFails),
		metrics.CounterField("tx_count", &m.TxCount),
		metrics.CounterField("tx_packets_count", &m.TxPacketsCount),
		metrics.CounterField("tx_partial_reads", &m.TxPartialReads),
		metrics.CounterField("tx_queue_event_count", &m.TxQueueEventCount),
		metrics.CounterField("tx_rate_limiter_event_count", &m.TxRateLimiterEventCount),
		metrics.CounterField("tx_rate_limiter_throttled", &m.TxRateLimiterThrottled),
		metrics.CounterField("tx_spoofed_mac_count", &m.TxSpoofedMacCount),
	}
}

// NetRegistry 网络设备注册表
type NetRegistry = registry.Registry[*NetDeviceMetrics]

// NewNetRegistry 创建网络设备注册表
func NewNetRegistry(opts ...registry.Option) *NetRegistry {
	return registry.New(ClassNet, func() *NetDeviceMetrics {
		return &NetDeviceMetrics{}
	}, opts...)
}

// Net 一个网络设备，创建时即在注册表中登记
type Net struct {
	id      string
	metrics *NetDeviceMetrics
}

// NewNet 创建网络设备并注册其指标块
func NewNet(reg *NetRegistry, id string) *Net {
	return &Net{id: id, metrics: reg.Register(id)}
}

// ID 返回设备 id
func (n *Net) ID() string {
	return n.id
}

// Metrics 返回设备的指标块
func (n *Net) Metrics() *NetDeviceMetrics {
	return n.metrics
}

// Receive 记录一次成功接收
func (n *Net) Receive(bytes int) {
	n.metrics.RxBytesCount.Add(uint64(bytes))
	n.metrics.RxPacketsCount.Inc()
	n.metrics.RxCount.Inc()
}

// Transmit 记录一次成功发送
func (n *Net) Transmit(bytes int) {
	n.metrics.TxBytesCount.Add(uint64(bytes))
	n.metrics.TxPacketsCount.Inc()
	n.metrics.TxCount.Inc()
}

// ActivateFailed 记录一次激活失败
func (n *Net) ActivateFailed() {
	n.metrics.ActivateFails.Inc()
}
