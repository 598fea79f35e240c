// Package exporter 以拉取方式暴露设备指标：Prometheus Collector 和 OpenTelemetry 桥接。
//
// 导出器读取累计值（Counter.Count）和 Gauge 的当前值，从不推进基线，
// 因此可以与 sink 的快照输出同时使用而互不影响。
package exporter

import (
	"math"

	"github.com/ceyewan/devmetrics/metrics"
)

// Source 可导出的设备类别，*registry.Registry 满足该接口
type Source interface {
	Class() string
	Schema() []metrics.Field
	Each(fn func(id string, block metrics.Block))
}

// DeviceLabel 设备 id 的标签名
const DeviceLabel = "device"

// cumulative 返回字段的累计值：Counter 为 Count，Gauge 为当前值
func cumulative(f metrics.Field) uint64 {
	if f.Gauge != nil {
		return f.Gauge.Fetch()
	}
	return f.Counter.Count()
}

func toInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
