package admin

import "github.com/ceyewan/devmetrics/xerrors"

// Config 管理端 HTTP 服务配置
type Config struct {
	// Addr 监听地址（默认 "127.0.0.1:9464"）
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MetricsPath Prometheus 拉取路径（默认 "/metrics"）
	MetricsPath string `json:"metrics_path" yaml:"metrics_path" mapstructure:"metrics_path"`

	// ServiceName otelgin 使用的服务名（默认 "devmetrics-admin"）
	ServiceName string `json:"service_name" yaml:"service_name" mapstructure:"service_name"`

	// Tracing 是否为请求创建 OpenTelemetry span
	Tracing bool `json:"tracing" yaml:"tracing" mapstructure:"tracing"`
}

func (c *Config) validate() error {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:9464"
	}
	if c.MetricsPath == "" {
		c.MetricsPath = "/metrics"
	}
	if c.MetricsPath[0] != '/' {
		return xerrors.Wrapf(xerrors.ErrInvalidConfig, "metrics_path %q must start with /", c.MetricsPath)
	}
	if c.ServiceName == "" {
		c.ServiceName = "devmetrics-admin"
	}
	return nil
}
