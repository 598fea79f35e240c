package sink

import "github.com/ceyewan/devmetrics/metrics"

// Source 快照来源，*registry.Registry 满足该接口
//
// Collect 读取一次全部设备并返回条目；commit 在快照写入成功后调用。
type Source interface {
	Collect() (sections []metrics.Section, commit func())
}

// Snapshot 一次 flush 输出的完整记录
type Snapshot struct {
	// UTCTimestampMs 采集时刻的 UTC 毫秒时间戳
	UTCTimestampMs int64
	// InstanceID 进程实例 id
	InstanceID string
	// Sections 按来源顺序排列：每个来源先聚合条目，后设备条目
	Sections []metrics.Section
}
