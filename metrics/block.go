package metrics

import "github.com/ceyewan/devmetrics/xerrors"

// ErrSchemaMismatch 两个 Block 的字段数量或名称不一致
var ErrSchemaMismatch = xerrors.New("metrics: block schema mismatch")

// Kind 指标类型
type Kind uint8

const (
	KindCounter Kind = iota
	KindGauge
)

func (k Kind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindGauge:
		return "gauge"
	default:
		return "unknown"
	}
}

// Field Block 中的一个命名字段，Counter 与 Gauge 二选一
type Field struct {
	Name    string
	Counter *Counter
	Gauge   *Gauge
}

// CounterField 构造 Counter 字段
func CounterField(name string, c *Counter) Field {
	return Field{Name: name, Counter: c}
}

// GaugeField 构造 Gauge 字段
func GaugeField(name string, g *Gauge) Field {
	return Field{Name: name, Gauge: g}
}

// Kind 返回字段类型
func (f Field) Kind() Kind {
	if f.Gauge != nil {
		return KindGauge
	}
	return KindCounter
}

// Block 一个设备实例的指标集合
//
// Fields 按 schema 顺序返回全部字段，字段指针指向 Block 自身持有的指标。
// 每个设备类别提供自己的具体结构体，只有 flush、聚合、导出路径会调用 Fields。
type Block interface {
	Fields() []Field
}

// Value 一个字段在某一时刻的输出值：Counter 为增量，Gauge 为绝对值
type Value struct {
	Name  string
	Kind  Kind
	Value uint64
}

// Section 快照中的一个条目：类别聚合（如 "net"）或单个设备（如 "net_eth0"）
type Section struct {
	Name   string
	Values []Value
}

// Get 按字段名查找值，主要用于测试和诊断
func (s Section) Get(name string) (uint64, bool) {
	for _, v := range s.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

// Aggregate 把 src 每个字段尚未 flush 的增量累加到 dst
//
// 读取 src 使用 FetchDiff，不推进 src 的基线：src 的基线只由它自己的序列化推进。
// Gauge 字段按绝对值求和。
func Aggregate(dst, src Block) error {
	dstFields := dst.Fields()
	srcFields := src.Fields()
	if err := sameSchema(dstFields, srcFields); err != nil {
		return err
	}

	for i, f := range dstFields {
		s := srcFields[i]
		if f.Gauge != nil {
			f.Gauge.Store(f.Gauge.Fetch() + s.Gauge.Fetch())
			continue
		}
		f.Counter.Add(s.Counter.FetchDiff())
	}
	return nil
}

// Flush 直接序列化一个 Block：读取并立即推进全部 Counter 的基线
func Flush(b Block) []Value {
	r := Read(b)
	r.Commit()
	return r.Values()
}

func sameSchema(a, b []Field) error {
	if len(a) != len(b) {
		return xerrors.Wrapf(ErrSchemaMismatch, "%d fields vs %d fields", len(a), len(b))
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Kind() != b[i].Kind() {
			return xerrors.Wrapf(ErrSchemaMismatch, "field %d: %s vs %s", i, a[i].Name, b[i].Name)
		}
	}
	return nil
}
