package metrics

import "sync/atomic"

// Counter 可被多个 goroutine 并发累加的计数器
//
// current 只增不减，baseline 记录上一次 flush 时的 current。
// 算术均为无符号回绕语义，不会 panic。
type Counter struct {
	current  atomic.Uint64
	baseline atomic.Uint64
}

// Add 将 value 累加到计数器
func (c *Counter) Add(value uint64) {
	c.current.Add(value)
}

// Inc 计数器加 1
func (c *Counter) Inc() {
	c.current.Add(1)
}

// Count 返回累计值，仅用于诊断，不参与输出
func (c *Counter) Count() uint64 {
	return c.current.Load()
}

// FetchDiff 返回尚未 flush 的增量，不修改基线
func (c *Counter) FetchDiff() uint64 {
	return c.current.Load() - c.baseline.Load()
}

// Flush 输出自上次 flush 以来的增量并把基线推进到当前值
//
// 并发调用 Flush 时每个增量只会被其中一次返回。
func (c *Counter) Flush() uint64 {
	for {
		delta, m := c.read()
		if c.commit(m) {
			return delta
		}
	}
}

// mark 一次读取时看到的基线和 current
type mark struct {
	base     uint64
	snapshot uint64
}

// read 读取一次 current，返回增量和读取位置
func (c *Counter) read() (uint64, mark) {
	base := c.baseline.Load()
	snapshot := c.current.Load()
	return snapshot - base, mark{base: base, snapshot: snapshot}
}

// commit 将基线从 read 时的值推进到读到的快照值，之后到达的累加留给下一次 flush
//
// 基线在读取之后已被其他提交推进时不做任何修改并返回 false，基线不会后退。
// 同一个 Counter 的读数应只有一个消费者，否则增量可能被两个消费者各输出一次。
func (c *Counter) commit(m mark) bool {
	return c.baseline.CompareAndSwap(m.base, m.snapshot)
}

// Gauge 持久指示值，flush 不会重置
type Gauge struct {
	value atomic.Uint64
}

// Store 设置当前值
func (g *Gauge) Store(value uint64) {
	g.value.Store(value)
}

// Fetch 读取当前值
func (g *Gauge) Fetch() uint64 {
	return g.value.Load()
}
