// Package registry 提供按设备 id 索引的指标块注册表，以及同一设备类别的聚合能力。
//
// 每个设备类别（net、block、vsock ...）持有一个 Registry，由宿主进程显式创建并传递给
// 需要它的设备和 Sink，不存在包级单例。
//
// ## 基本使用
//
//	reg := registry.New("net", func() *devices.NetDeviceMetrics {
//		return &devices.NetDeviceMetrics{}
//	}, registry.WithLogger(logger))
//
//	eth0 := reg.Register("eth0") // 幂等：再次注册返回同一个块
//	eth0.RxBytesCount.Add(n)     // 热路径直接访问字段
//
// ## 快照条目
//
// Collect 为一次 flush 生成条目：先是类别聚合（键为类别名，如 "net"），
// 再按 id 排序输出每个设备（键为 "<类别>_<id>"，如 "net_eth0"）。
// 聚合值与设备值来自同一次读数，返回的 commit 在写入成功后推进基线。
package registry

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ceyewan/devmetrics/clog"
	"github.com/ceyewan/devmetrics/metrics"
)

// Registry 一个设备类别的指标块注册表
//
// 注册表只负责查找和持有块；块自身的字段通过原子操作更新，不需要注册表的锁。
// 注册表只增不减。
type Registry[B metrics.Block] struct {
	class    string
	newBlock func() B
	logger   clog.Logger

	mu      sync.RWMutex
	devices map[string]B
}

// device 排序后的 (id, block) 对
type device[B metrics.Block] struct {
	id    string
	block B
}

// New 创建设备类别 class 的注册表，newBlock 返回一个全零的新块
//
// class 不做校验，应为非空的合法 UTF-8。
func New[B metrics.Block](class string, newBlock func() B, opts ...Option) *Registry[B] {
	o := applyOptions(opts...)
	return &Registry[B]{
		class:    class,
		newBlock: newBlock,
		logger:   o.logger.With(clog.String("class", class)),
		devices:  make(map[string]B),
	}
}

// Class 返回设备类别名
func (r *Registry[B]) Class() string {
	return r.class
}

// Register 返回 id 对应的指标块，不存在时创建
//
// 并发调用同一个 id 只会创建一个块，所有调用方拿到同一个句柄。
// 句柄在注册表扩容后依然有效。
// id 中不合法的 UTF-8 字节被替换为 U+FFFD，替换后相同的 id 共用一个块。
func (r *Registry[B]) Register(id string) B {
	id = r.normalizeID(id)

	r.mu.RLock()
	b, ok := r.devices[id]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// 双重检查：读锁释放后可能已被其他调用方注册
	if b, ok := r.devices[id]; ok {
		return b
	}
	b = r.newBlock()
	r.devices[id] = b
	r.logger.Debug("device registered", clog.String("device", id))
	return b
}

// Get 查找已注册的指标块
func (r *Registry[B]) Get(id string) (B, bool) {
	id, _ = validID(id)
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.devices[id]
	return b, ok
}

// Len 返回已注册设备数
func (r *Registry[B]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// IDs 返回按字典序排列的设备 id
func (r *Registry[B]) IDs() []string {
	devices := r.sorted()
	ids := make([]string, len(devices))
	for i, d := range devices {
		ids[i] = d.id
	}
	return ids
}

// Range 按 id 顺序遍历设备，fn 返回 false 时停止
//
// 遍历基于调用时刻的副本，遍历期间新注册的设备可能不会出现。
func (r *Registry[B]) Range(fn func(id string, block B) bool) {
	for _, d := range r.sorted() {
		if !fn(d.id, d.block) {
			return
		}
	}
}

// Each 以 metrics.Block 形式遍历设备，供不关心具体类型的导出器使用
func (r *Registry[B]) Each(fn func(id string, block metrics.Block)) {
	for _, d := range r.sorted() {
		fn(d.id, d.block)
	}
}

// Schema 返回该类别的字段定义，字段指针指向一个未注册的零值块
func (r *Registry[B]) Schema() []metrics.Field {
	return r.newBlock().Fields()
}

// SectionName 返回设备条目的键 "<class>_<id>"
func (r *Registry[B]) SectionName(id string) string {
	return r.class + "_" + id
}

func (r *Registry[B]) normalizeID(id string) string {
	valid, ok := validID(id)
	if !ok {
		r.logger.Warn("device id is not valid utf-8, replaced",
			clog.String("id", strconv.Quote(id)),
			clog.String("device", valid))
	}
	return valid
}

// validID 把非法 UTF-8 字节替换为 U+FFFD，ok 表示原 id 是否合法
func validID(id string) (string, bool) {
	if utf8.ValidString(id) {
		return id, true
	}
	return strings.ToValidUTF8(id, string(utf8.RuneError)), false
}

func (r *Registry[B]) sorted() []device[B] {
	r.mu.RLock()
	devices := make([]device[B], 0, len(r.devices))
	for id, b := range r.devices {
		devices = append(devices, device[B]{id: id, block: b})
	}
	r.mu.RUnlock()

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].id < devices[j].id
	})
	return devices
}
