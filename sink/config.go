package sink

import (
	"time"

	"github.com/ceyewan/devmetrics/xerrors"
)

const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
	FormatEMF     = "emf"

	OutputStdout = "stdout"
	OutputStderr = "stderr"
	OutputNATS   = "nats"
)

// Config Sink 配置
type Config struct {
	// Format 快照格式: "json" | "msgpack" | "emf"（默认 "json"）
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// Pretty json 格式是否缩进输出
	Pretty bool `json:"pretty" yaml:"pretty" mapstructure:"pretty"`

	// Output 输出目标: "stdout" | "stderr" | "nats" | 文件路径（默认 "stdout"）
	Output string `json:"output" yaml:"output" mapstructure:"output"`

	// FlushInterval 周期 flush 间隔（默认 60s）
	FlushInterval time.Duration `json:"flush_interval" yaml:"flush_interval" mapstructure:"flush_interval"`

	// TriggerRate 按需 flush 每秒允许的次数（默认 1）
	TriggerRate float64 `json:"trigger_rate" yaml:"trigger_rate" mapstructure:"trigger_rate"`

	// TriggerBurst 按需 flush 的突发容量（默认 1）
	TriggerBurst int `json:"trigger_burst" yaml:"trigger_burst" mapstructure:"trigger_burst"`

	// EMFNamespace emf 格式的 CloudWatch 命名空间（默认 "devmetrics"）
	EMFNamespace string `json:"emf_namespace" yaml:"emf_namespace" mapstructure:"emf_namespace"`

	// NATS Output 为 "nats" 时使用
	NATS NATSConfig `json:"nats" yaml:"nats" mapstructure:"nats"`
}

// NATSConfig NATS 输出目标配置
type NATSConfig struct {
	// URL NATS 服务地址（默认 "nats://127.0.0.1:4222"）
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	// Subject 快照发布的主题（默认 "devmetrics.snapshots"）
	Subject string `json:"subject" yaml:"subject" mapstructure:"subject"`

	// Breaker 发布失败的熔断配置
	Breaker BreakerConfig `json:"breaker" yaml:"breaker" mapstructure:"breaker"`
}

// BreakerConfig 熔断配置
type BreakerConfig struct {
	// MaxRequests 半开状态下允许通过的最大请求数（默认 1）
	MaxRequests uint32 `json:"max_requests" yaml:"max_requests" mapstructure:"max_requests"`

	// Interval 闭合状态下的统计周期（默认 0，不清空统计）
	Interval time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`

	// Timeout 打开状态持续时间（默认 30s）
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// FailureRatio 失败率阈值（默认 0.6）
	FailureRatio float64 `json:"failure_ratio" yaml:"failure_ratio" mapstructure:"failure_ratio"`

	// MinimumRequests 触发熔断的最小请求数（默认 3）
	MinimumRequests uint32 `json:"minimum_requests" yaml:"minimum_requests" mapstructure:"minimum_requests"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	cfg := &Config{}
	_ = cfg.validate()
	return cfg
}

// validate 校验配置并填充默认值
func (c *Config) validate() error {
	if c.Format == "" {
		c.Format = FormatJSON
	}
	switch c.Format {
	case FormatJSON, FormatMsgpack, FormatEMF:
	default:
		return xerrors.Wrapf(xerrors.ErrInvalidConfig, "unsupported format %q", c.Format)
	}

	if c.Output == "" {
		c.Output = OutputStdout
	}
	if c.FlushInterval < 0 {
		return xerrors.Wrapf(xerrors.ErrInvalidConfig, "negative flush_interval %s", c.FlushInterval)
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = time.Minute
	}
	if c.TriggerRate <= 0 {
		c.TriggerRate = 1
	}
	if c.TriggerBurst <= 0 {
		c.TriggerBurst = 1
	}
	if c.EMFNamespace == "" {
		c.EMFNamespace = "devmetrics"
	}
	return c.NATS.validate()
}

func (c *NATSConfig) validate() error {
	if c.URL == "" {
		c.URL = "nats://127.0.0.1:4222"
	}
	if c.Subject == "" {
		c.Subject = "devmetrics.snapshots"
	}
	return c.Breaker.validate()
}

func (c *BreakerConfig) validate() error {
	if c.MaxRequests == 0 {
		c.MaxRequests = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.FailureRatio <= 0 {
		c.FailureRatio = 0.6
	}
	if c.FailureRatio > 1 {
		return xerrors.Wrapf(xerrors.ErrInvalidConfig, "failure_ratio %v out of range", c.FailureRatio)
	}
	if c.MinimumRequests == 0 {
		c.MinimumRequests = 3
	}
	return nil
}
