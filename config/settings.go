package config

import (
	"github.com/ceyewan/devmetrics/admin"
	"github.com/ceyewan/devmetrics/clog"
	"github.com/ceyewan/devmetrics/exporter"
	"github.com/ceyewan/devmetrics/sink"
	"github.com/ceyewan/devmetrics/trace"
	"github.com/ceyewan/devmetrics/xerrors"
)

// Settings devmetrics 宿主进程的完整配置
//
// YAML 示例：
//
//	log:
//	  level: info
//	  format: json
//	  output: stderr
//	sink:
//	  format: json
//	  output: /var/run/vmm/metrics.json
//	  flush_interval: 60s
//	exporter:
//	  namespace: devmetrics
//	admin:
//	  enabled: true
//	  addr: 127.0.0.1:9464
//	trace:
//	  enabled: true
//	  endpoint: localhost:4317
type Settings struct {
	Log      clog.Config     `mapstructure:"log"`
	Sink     sink.Config     `mapstructure:"sink"`
	Exporter exporter.Config `mapstructure:"exporter"`
	Admin    AdminSettings   `mapstructure:"admin"`
	Trace    trace.Config    `mapstructure:"trace"`
}

// AdminSettings 管理端配置，Enabled 为 false 时不启动 HTTP 服务
type AdminSettings struct {
	Enabled      bool `mapstructure:"enabled"`
	admin.Config `mapstructure:",squash"`
}

// DefaultValues 各配置项的默认值，传给 WithDefaults 后这些 key 都可以用环境变量覆盖
func DefaultValues() map[string]any {
	return map[string]any{
		"log.level":           "info",
		"log.format":          "console",
		"log.output":          "stderr",
		"sink.format":         sink.FormatJSON,
		"sink.pretty":         false,
		"sink.output":         sink.OutputStdout,
		"sink.flush_interval": "60s",
		"sink.trigger_rate":   1.0,
		"sink.trigger_burst":  1,
		"sink.nats.url":       "nats://127.0.0.1:4222",
		"sink.nats.subject":   "devmetrics.snapshots",
		"exporter.namespace":  "devmetrics",
		"admin.enabled":       false,
		"admin.addr":          "127.0.0.1:9464",
		"trace.enabled":       false,
		"trace.service_name":  "devmetrics",
		"trace.endpoint":      "localhost:4317",
		"trace.sampler":       1.0,
		"trace.batcher":       "batch",
		"trace.insecure":      true,
	}
}

// LoadSettings 从已加载的 Loader 中解析 Settings
func LoadSettings(l Loader) (*Settings, error) {
	var s Settings
	if err := l.Unmarshal(&s); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidConfig, err.Error())
	}
	return &s, nil
}
