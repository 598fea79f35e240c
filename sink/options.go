package sink

import (
	"time"

	"github.com/ceyewan/devmetrics/clog"
)

// Option 组件初始化选项函数
type Option func(*options)

type options struct {
	logger     clog.Logger
	sources    []Source
	clock      func() time.Time
	codec      Codec
	instanceID string
}

// WithLogger 设置 Logger，传入 nil 时使用 clog.Discard()
// 内部会自动添加 namespace: "sink"
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			o.logger = clog.Discard()
		} else {
			o.logger = logger.WithNamespace("sink")
		}
	}
}

// WithSources 设置快照来源，按传入顺序输出
func WithSources(sources ...Source) Option {
	return func(o *options) {
		o.sources = append(o.sources, sources...)
	}
}

// WithClock 替换时间来源，主要用于测试
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithCodec 使用自定义编码器，忽略 Config.Format
func WithCodec(codec Codec) Option {
	return func(o *options) {
		o.codec = codec
	}
}

// WithInstanceID 指定实例 id，默认随机生成 UUID
func WithInstanceID(id string) Option {
	return func(o *options) {
		o.instanceID = id
	}
}
