package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/devmetrics/clog"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{EnvPrefix: "vmm"}
	require.NoError(t, cfg.validate())

	assert.Equal(t, "devmetrics", cfg.Name)
	assert.Equal(t, []string{".", "./config"}, cfg.Paths)
	assert.Equal(t, "yaml", cfg.FileType)
	assert.Equal(t, "VMM", cfg.EnvPrefix)
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "devmetrics.yaml"), `
sink:
  format: msgpack
  output: /tmp/base.json
  flush_interval: 30s
admin:
  enabled: true
  addr: 127.0.0.1:9000
`)
	writeFile(t, filepath.Join(dir, "devmetrics.prod.yaml"), `
sink:
  output: /var/run/vmm/metrics.json
`)
	writeFile(t, filepath.Join(dir, ".env"), "DEVMETRICS_LOG_LEVEL=debug\n")

	t.Setenv("DEVMETRICS_ENV", "prod")
	t.Setenv("DEVMETRICS_SINK_FORMAT", "emf")
	// 让测试结束时恢复该变量，同时允许 .env 写入它
	t.Setenv("DEVMETRICS_LOG_LEVEL", "")
	os.Unsetenv("DEVMETRICS_LOG_LEVEL")

	loader, err := New(&Config{Paths: []string{dir}},
		WithDefaults(DefaultValues()),
		WithLogger(clog.Discard()))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	// 环境变量 > .env > 环境特定配置 > 基础配置 > 默认值
	assert.Equal(t, "emf", loader.Get("sink.format"))
	assert.Equal(t, "debug", loader.Get("log.level"))
	assert.Equal(t, "/var/run/vmm/metrics.json", loader.Get("sink.output"))
	assert.Equal(t, "30s", loader.Get("sink.flush_interval"))
	assert.Equal(t, "devmetrics.snapshots", loader.Get("sink.nats.subject"))

	settings, err := LoadSettings(loader)
	require.NoError(t, err)
	assert.Equal(t, "emf", settings.Sink.Format)
	assert.Equal(t, 30*time.Second, settings.Sink.FlushInterval)
	assert.Equal(t, "debug", settings.Log.Level)
	assert.True(t, settings.Admin.Enabled)
	assert.Equal(t, "127.0.0.1:9000", settings.Admin.Addr)
	assert.Equal(t, "devmetrics", settings.Exporter.Namespace)
}

func TestLoaderDefaultsOnly(t *testing.T) {
	t.Setenv("DEVMETRICS_SINK_PRETTY", "true")

	loader, err := New(&Config{Paths: []string{t.TempDir()}}, WithDefaults(DefaultValues()))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	settings, err := LoadSettings(loader)
	require.NoError(t, err)
	assert.Equal(t, "json", settings.Sink.Format)
	assert.True(t, settings.Sink.Pretty)
	assert.Equal(t, time.Minute, settings.Sink.FlushInterval)
	assert.False(t, settings.Admin.Enabled)
	assert.Equal(t, "stderr", settings.Log.Output)
	assert.False(t, settings.Trace.Enabled)
	assert.Equal(t, "devmetrics", settings.Trace.ServiceName)
	assert.Equal(t, 1.0, settings.Trace.Sampler)
}

func TestLoaderValidate(t *testing.T) {
	loader, err := New(&Config{Paths: []string{t.TempDir()}, EnvPrefix: "DEVMETRICS_EMPTY"})
	require.NoError(t, err)

	err = loader.Load(context.Background())
	require.Error(t, err)
	assert.True(t, IsInvalid(err))
}

func TestLoaderInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "devmetrics.yaml"), "sink: [unclosed\n")

	loader, err := New(&Config{Paths: []string{dir}})
	require.NoError(t, err)
	assert.Error(t, loader.Load(context.Background()))
}

func TestLoaderUnmarshalKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "devmetrics.yaml"), `
exporter:
  namespace: vmm
  service_name: vmm
  enable_runtime: true
`)
	loader, err := New(&Config{Paths: []string{dir}})
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	var exp struct {
		Namespace     string `mapstructure:"namespace"`
		ServiceName   string `mapstructure:"service_name"`
		EnableRuntime bool   `mapstructure:"enable_runtime"`
	}
	require.NoError(t, loader.UnmarshalKey("exporter", &exp))
	assert.Equal(t, "vmm", exp.Namespace)
	assert.Equal(t, "vmm", exp.ServiceName)
	assert.True(t, exp.EnableRuntime)
}

func TestLoaderWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devmetrics.yaml")
	writeFile(t, path, "sink:\n  flush_interval: 30s\n")

	loader, err := New(&Config{Paths: []string{dir}})
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := loader.Watch(ctx, "sink.flush_interval")
	require.NoError(t, err)

	// 等待 fsnotify 开始监听
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "sink:\n  flush_interval: 5s\n")

	select {
	case ev := <-ch:
		assert.Equal(t, "sink.flush_interval", ev.Key)
		assert.Equal(t, "5s", ev.Value)
		assert.Equal(t, "30s", ev.OldValue)
		assert.Equal(t, "file", ev.Source)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for config change")
	}
}

func TestLoaderWatchCancel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "devmetrics.yaml"), "sink:\n  format: json\n")

	loader, err := New(&Config{Paths: []string{dir}})
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	_, err = loader.Watch(context.Background(), "")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := loader.Watch(ctx, "sink.format")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "取消后通道应被关闭")
	case <-time.After(time.Second):
		t.Fatal("watch channel not closed")
	}
}
