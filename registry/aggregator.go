package registry

import (
	"github.com/ceyewan/devmetrics/clog"
	"github.com/ceyewan/devmetrics/metrics"
)

// Total 返回类别聚合：一个新块，累加了每个设备尚未 flush 的增量
//
// 不推进任何设备的基线。Gauge 按设备求和。
func (r *Registry[B]) Total() B {
	total := r.newBlock()
	for _, d := range r.sorted() {
		if err := metrics.Aggregate(total, d.block); err != nil {
			r.logger.Error("aggregate device", clog.String("device", d.id), clog.Error(err))
		}
	}
	return total
}

// Collect 为一次 flush 读取全部设备
//
// 每个设备只读取一次，同一份读数既累加进聚合块，也作为设备条目输出。
// 第一个条目是类别聚合，其后是按 id 排序的设备条目。
// 调用方在快照写入成功后调用 commit 推进基线；不调用则本周期的增量会在下次再次输出。
// 读数之后到达的累加归入下一周期。
func (r *Registry[B]) Collect() (sections []metrics.Section, commit func()) {
	devices := r.sorted()
	total := r.newBlock()
	readings := make([]metrics.Reading, len(devices))

	sections = make([]metrics.Section, 1, len(devices)+1)
	for i, d := range devices {
		reading := metrics.Read(d.block)
		if err := reading.AddTo(total); err != nil {
			r.logger.Error("fold device into aggregate", clog.String("device", d.id), clog.Error(err))
		}
		readings[i] = reading
		sections = append(sections, metrics.Section{
			Name:   r.SectionName(d.id),
			Values: reading.Values(),
		})
	}
	sections[0] = metrics.Section{Name: r.class, Values: metrics.Flush(total)}

	commit = func() {
		for _, reading := range readings {
			reading.Commit()
		}
	}
	return sections, commit
}

// Preview 与 Collect 结构相同的条目，但只读取尚未 flush 的值，不可提交
func (r *Registry[B]) Preview() []metrics.Section {
	devices := r.sorted()
	sections := make([]metrics.Section, 0, len(devices)+1)
	sections = append(sections, metrics.Section{Name: r.class, Values: metrics.Peek(r.Total())})
	for _, d := range devices {
		sections = append(sections, metrics.Section{
			Name:   r.SectionName(d.id),
			Values: metrics.Peek(d.block),
		})
	}
	return sections
}
