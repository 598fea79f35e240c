// Package metrics 提供设备级遥测计数的基础原语。
//
// 两种原子指标：
//   - Counter：累加型，flush 时输出自上次 flush 以来的增量并重置基线（emit-and-reset）
//   - Gauge：持久指示型，flush 时输出绝对值，不做任何重置
//
// 一个设备实例的全部指标构成一个 Block（固定 schema 的有序命名字段集合）。
// 热路径直接使用具体结构体上的字段，不经过任何按名字的查找：
//
//	m := reg.Register("eth0")   // *devices.NetDeviceMetrics
//	m.RxBytesCount.Add(uint64(n))
//	m.RxPacketsCount.Inc()
//
// 序列化即消费：Flush / Reading.Commit 会推进 Counter 的基线。
// 只想查看而不消费时，使用 Count / FetchDiff / Aggregate。
// 同一个 Block 的读数应只有一个消费者（一个 Sink）；基线只前进不后退，
// 但两个消费者交替提交时同一段增量可能被各自输出一次。
package metrics
