package exporter

// Config 导出器配置
//
// 典型配置示例（YAML）：
//
//	exporter:
//	  namespace: "devmetrics"
//	  service_name: "vmm"
//	  version: "v1.2.3"
//	  enable_runtime: true
type Config struct {
	// Namespace Prometheus 指标名前缀（默认 "devmetrics"）
	Namespace string `json:"namespace" yaml:"namespace" mapstructure:"namespace"`

	// ServiceName OpenTelemetry Resource 的 service.name（默认 "devmetrics"）
	ServiceName string `json:"service_name" yaml:"service_name" mapstructure:"service_name"`

	// Version OpenTelemetry Resource 的 service.version
	Version string `json:"version" yaml:"version" mapstructure:"version"`

	// EnableRuntime 是否同时采集 Go 运行时指标（goroutine、GC、内存）
	EnableRuntime bool `json:"enable_runtime" yaml:"enable_runtime" mapstructure:"enable_runtime"`
}

func (c *Config) setDefaults() {
	if c.Namespace == "" {
		c.Namespace = "devmetrics"
	}
	if c.ServiceName == "" {
		c.ServiceName = "devmetrics"
	}
}
