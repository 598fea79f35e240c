package exporter

import (
	"github.com/prometheus/client_golang/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/ceyewan/devmetrics/clog"
)

// Option 配置 OTel 桥接的选项函数
type Option func(*options)

type options struct {
	logger     clog.Logger
	reader     sdkmetric.Reader
	registerer prometheus.Registerer
}

// WithLogger 注入日志记录器，组件会自动添加 "exporter" 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("exporter")
		}
	}
}

// WithReader 使用指定的 Reader 代替默认的 Prometheus 导出
func WithReader(reader sdkmetric.Reader) Option {
	return func(o *options) {
		o.reader = reader
	}
}

// WithRegisterer 默认 Prometheus 导出注册到的 Registerer（默认 prometheus.DefaultRegisterer）
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}
