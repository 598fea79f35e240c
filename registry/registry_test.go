package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/devmetrics/clog"
	"github.com/ceyewan/devmetrics/metrics"
)

type linkMetrics struct {
	Bytes  metrics.Counter
	Fails  metrics.Counter
	Queued metrics.Gauge
}

func (m *linkMetrics) Fields() []metrics.Field {
	return []metrics.Field{
		metrics.CounterField("bytes", &m.Bytes),
		metrics.CounterField("fails", &m.Fails),
		metrics.GaugeField("queued", &m.Queued),
	}
}

func newLinkRegistry() *Registry[*linkMetrics] {
	return New("link", func() *linkMetrics { return &linkMetrics{} }, WithLogger(clog.Discard()))
}

func TestRegistry_RegisterIdempotent(t *testing.T) {
	reg := newLinkRegistry()

	a := reg.Register("eth0")
	b := reg.Register("eth0")
	require.Same(t, a, b)
	assert.Equal(t, 1, reg.Len())

	a.Bytes.Add(5)
	got, ok := reg.Get("eth0")
	require.True(t, ok)
	assert.Equal(t, uint64(5), got.Bytes.Count())
}

func TestRegistry_Get(t *testing.T) {
	reg := newLinkRegistry()
	_, ok := reg.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentRegister(t *testing.T) {
	reg := newLinkRegistry()
	const workers = 64

	var wg sync.WaitGroup
	handles := make([]*linkMetrics, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i] = reg.Register("shared")
			handles[i].Bytes.Inc()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, reg.Len())
	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}
	assert.Equal(t, uint64(workers), handles[0].Bytes.Count())
}

func TestRegistry_RegisterInvalidUTF8(t *testing.T) {
	reg := newLinkRegistry()

	a := reg.Register("tap\xff\xfe")
	a.Bytes.Add(3)
	assert.Equal(t, []string{"tap\uFFFD"}, reg.IDs())

	b, ok := reg.Get("tap\xff")
	require.True(t, ok)
	assert.Same(t, a, b)
	assert.Same(t, a, reg.Register("tap\uFFFD"))

	sections, commit := reg.Collect()
	require.Len(t, sections, 2)
	assert.Equal(t, "link_tap\uFFFD", sections[1].Name)
	v, _ := sections[1].Get("bytes")
	assert.Equal(t, uint64(3), v)
	commit()
}

func TestRegistry_HandleStableAcrossGrowth(t *testing.T) {
	reg := newLinkRegistry()
	first := reg.Register("dev0")
	for i := 0; i < 1000; i++ {
		reg.Register(fmt.Sprintf("dev%d", i+1))
	}

	first.Bytes.Add(3)
	got, ok := reg.Get("dev0")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, uint64(3), got.Bytes.Count())
}

func TestRegistry_IDsAndRange(t *testing.T) {
	reg := newLinkRegistry()
	reg.Register("eth1")
	reg.Register("eth0")
	reg.Register("eth2")

	assert.Equal(t, "link", reg.Class())
	assert.Equal(t, []string{"eth0", "eth1", "eth2"}, reg.IDs())

	var visited []string
	reg.Range(func(id string, _ *linkMetrics) bool {
		visited = append(visited, id)
		return id != "eth1"
	})
	assert.Equal(t, []string{"eth0", "eth1"}, visited)

	visited = visited[:0]
	reg.Each(func(id string, b metrics.Block) {
		visited = append(visited, id)
		assert.Len(t, b.Fields(), 3)
	})
	assert.Equal(t, []string{"eth0", "eth1", "eth2"}, visited)

	schema := reg.Schema()
	require.Len(t, schema, 3)
	assert.Equal(t, "queued", schema[2].Name)
	assert.Equal(t, metrics.KindGauge, schema[2].Kind())
	assert.Equal(t, 3, reg.Len(), "Schema 不注册设备")
}

func TestRegistry_Total(t *testing.T) {
	reg := newLinkRegistry()
	reg.Register("eth0").Bytes.Add(10)
	eth1 := reg.Register("eth1")
	eth1.Bytes.Add(20)
	eth1.Fails.Inc()
	eth1.Queued.Store(4)

	total := reg.Total()
	assert.Equal(t, uint64(30), total.Bytes.FetchDiff())
	assert.Equal(t, uint64(1), total.Fails.FetchDiff())
	assert.Equal(t, uint64(4), total.Queued.Fetch())

	// 非消耗：再次聚合结果相同
	assert.Equal(t, uint64(30), reg.Total().Bytes.FetchDiff())
	assert.Equal(t, uint64(20), eth1.Bytes.FetchDiff())
}

func TestRegistry_Collect(t *testing.T) {
	reg := newLinkRegistry()
	eth0 := reg.Register("eth0")
	eth1 := reg.Register("eth1")
	eth0.Bytes.Add(10)
	eth1.Bytes.Add(20)
	eth1.Fails.Inc()
	eth0.Queued.Store(2)

	sections, commit := reg.Collect()
	require.Len(t, sections, 3)
	assert.Equal(t, "link", sections[0].Name)
	assert.Equal(t, "link_eth0", sections[1].Name)
	assert.Equal(t, "link_eth1", sections[2].Name)

	get := func(s metrics.Section, name string) uint64 {
		v, ok := s.Get(name)
		require.True(t, ok, name)
		return v
	}
	assert.Equal(t, uint64(30), get(sections[0], "bytes"))
	assert.Equal(t, uint64(1), get(sections[0], "fails"))
	assert.Equal(t, uint64(2), get(sections[0], "queued"))
	assert.Equal(t, uint64(10), get(sections[1], "bytes"))
	assert.Equal(t, uint64(20), get(sections[2], "bytes"))
	assert.Equal(t, uint64(1), get(sections[2], "fails"))

	commit()

	sections, commit = reg.Collect()
	for _, s := range sections {
		assert.Equal(t, uint64(0), get(s, "bytes"), s.Name)
		assert.Equal(t, uint64(0), get(s, "fails"), s.Name)
	}
	assert.Equal(t, uint64(2), get(sections[1], "queued"), "gauge 保持上次的值")
	commit()
}

func TestRegistry_CollectWithoutCommit(t *testing.T) {
	reg := newLinkRegistry()
	reg.Register("eth0").Bytes.Add(7)

	sections, _ := reg.Collect()
	v, _ := sections[1].Get("bytes")
	assert.Equal(t, uint64(7), v)

	sections, _ = reg.Collect()
	v, _ = sections[1].Get("bytes")
	assert.Equal(t, uint64(7), v, "未提交的周期在下次重新输出")
}

func TestRegistry_CollectLateIncrement(t *testing.T) {
	reg := newLinkRegistry()
	eth0 := reg.Register("eth0")
	eth0.Bytes.Add(7)

	_, commit := reg.Collect()
	eth0.Bytes.Add(5)
	commit()

	sections, _ := reg.Collect()
	v, _ := sections[0].Get("bytes")
	assert.Equal(t, uint64(5), v, "读数之后的累加归入下一周期")
	v, _ = sections[1].Get("bytes")
	assert.Equal(t, uint64(5), v)
}

func TestRegistry_CollectEmpty(t *testing.T) {
	reg := newLinkRegistry()

	sections, commit := reg.Collect()
	require.Len(t, sections, 1)
	assert.Equal(t, "link", sections[0].Name)
	assert.Len(t, sections[0].Values, 3)
	commit()
}

func TestRegistry_ConcurrentCollect(t *testing.T) {
	reg := newLinkRegistry()
	const (
		writers   = 8
		perWriter = 5000
	)

	var wg sync.WaitGroup
	done := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := reg.Register([]string{"eth0", "eth1"}[i%2])
			for j := 0; j < perWriter; j++ {
				m.Bytes.Inc()
			}
		}(i)
	}

	var aggregate, perDevice uint64
	var collector sync.WaitGroup
	collector.Add(1)
	go func() {
		defer collector.Done()
		for {
			sections, commit := reg.Collect()
			for i, s := range sections {
				v, _ := s.Get("bytes")
				if i == 0 {
					aggregate += v
				} else {
					perDevice += v
				}
			}
			commit()
			select {
			case <-done:
				return
			default:
			}
		}
	}()

	wg.Wait()
	close(done)
	collector.Wait()

	sections, commit := reg.Collect()
	for i, s := range sections {
		v, _ := s.Get("bytes")
		if i == 0 {
			aggregate += v
		} else {
			perDevice += v
		}
	}
	commit()

	assert.Equal(t, uint64(writers*perWriter), aggregate)
	assert.Equal(t, aggregate, perDevice, "聚合等于设备增量之和")
}

func TestRegistry_Preview(t *testing.T) {
	reg := newLinkRegistry()
	reg.Register("eth0").Bytes.Add(4)

	for i := 0; i < 2; i++ {
		sections := reg.Preview()
		require.Len(t, sections, 2)
		v, _ := sections[0].Get("bytes")
		assert.Equal(t, uint64(4), v)
	}

	sections, _ := reg.Collect()
	v, _ := sections[1].Get("bytes")
	assert.Equal(t, uint64(4), v, "Preview 不消耗增量")
}
