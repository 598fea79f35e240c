package admin

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ceyewan/devmetrics/clog"
)

// Option 组件初始化选项函数
type Option func(*options)

type options struct {
	logger     clog.Logger
	registry   *prometheus.Registry
	previewers []Previewer
	flusher    Flusher
}

// WithLogger 注入日志记录器，组件会自动添加 "admin" 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("admin")
		}
	}
}

// WithRegistry /metrics 暴露的 Prometheus 注册表，请求指标也注册在其中
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithPreviewers /debug/devices 展示的设备类别
func WithPreviewers(previewers ...Previewer) Option {
	return func(o *options) {
		o.previewers = append(o.previewers, previewers...)
	}
}

// WithFlusher 启用 POST /flush
func WithFlusher(f Flusher) Option {
	return func(o *options) {
		o.flusher = f
	}
}
