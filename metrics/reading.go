package metrics

// Reading 一个 Block 在一次 flush 周期中的读数
//
// Read 对每个 Counter 只加载一次 current；同一份读数既用于类别聚合，
// 也用于设备自身的条目，因此两者的增量来自完全相同的 current 值。
// 读数在 Commit 之前不会改变任何状态，编码或写入失败时直接丢弃即可，
// 本周期的增量会在下一次 flush 中输出。
type Reading struct {
	values   []Value
	counters []*Counter
	marks    []mark
}

// Read 读取 Block 的当前读数
func Read(b Block) Reading {
	fields := b.Fields()
	r := Reading{
		values:   make([]Value, len(fields)),
		counters: make([]*Counter, 0, len(fields)),
		marks:    make([]mark, 0, len(fields)),
	}

	for i, f := range fields {
		if f.Gauge != nil {
			r.values[i] = Value{Name: f.Name, Kind: KindGauge, Value: f.Gauge.Fetch()}
			continue
		}
		delta, m := f.Counter.read()
		r.values[i] = Value{Name: f.Name, Kind: KindCounter, Value: delta}
		r.counters = append(r.counters, f.Counter)
		r.marks = append(r.marks, m)
	}
	return r
}

// Values 返回按 schema 顺序排列的输出值
func (r Reading) Values() []Value {
	return r.values
}

// Commit 把每个 Counter 的基线推进到读取时的快照值
//
// 读取之后已被其他消费者推进过的 Counter 保持不变。
func (r Reading) Commit() {
	for i, c := range r.counters {
		c.commit(r.marks[i])
	}
}

// AddTo 把读数累加到 dst：Counter 累加增量，Gauge 累加绝对值
func (r Reading) AddTo(dst Block) error {
	fields := dst.Fields()
	if len(fields) != len(r.values) {
		return ErrSchemaMismatch
	}

	for i, f := range fields {
		v := r.values[i]
		if f.Name != v.Name || f.Kind() != v.Kind {
			return ErrSchemaMismatch
		}
		if f.Gauge != nil {
			f.Gauge.Store(f.Gauge.Fetch() + v.Value)
			continue
		}
		f.Counter.Add(v.Value)
	}
	return nil
}

// Peek 返回 Block 尚未 flush 的值而不推进任何基线，用于预览和诊断
func Peek(b Block) []Value {
	fields := b.Fields()
	values := make([]Value, len(fields))
	for i, f := range fields {
		if f.Gauge != nil {
			values[i] = Value{Name: f.Name, Kind: KindGauge, Value: f.Gauge.Fetch()}
			continue
		}
		values[i] = Value{Name: f.Name, Kind: KindCounter, Value: f.Counter.FetchDiff()}
	}
	return values
}
