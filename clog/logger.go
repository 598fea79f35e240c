// Package clog 为 devmetrics 提供基于 slog 的结构化日志组件。
// 支持 Context 字段提取和层级命名空间。
//
// 特性：
//   - 抽象接口，不暴露底层实现（slog）
//   - 层级命名空间：sink、registry、exporter 等组件各自追加命名空间
//   - 函数式选项模式
//   - 支持多种错误字段：Error、ErrorWithCode、ErrorWithStack
//
// 基本使用：
//
//	logger, _ := clog.New(&clog.Config{
//	    Level:  "info",
//	    Format: "console",
//	    Output: "stdout",
//	})
//	logger.Info("metrics flushed", clog.Int("sections", 3))
//
// 组件内部使用：
//
//	log := logger.WithNamespace("sink")
//	log.Error("flush failed", clog.Error(err))
package clog

import "context"

// Logger 日志接口，提供结构化日志记录功能
//
// 支持四个日志级别：Debug、Info、Warn、Error
// 每个级别都有带 Context 和不带 Context 的版本
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// 带 Context 的版本，会自动提取 WithContextField 配置的字段
	DebugContext(ctx context.Context, msg string, fields ...Field)
	InfoContext(ctx context.Context, msg string, fields ...Field)
	WarnContext(ctx context.Context, msg string, fields ...Field)
	ErrorContext(ctx context.Context, msg string, fields ...Field)

	// With 创建一个带有预设字段的子 Logger
	With(fields ...Field) Logger

	// WithNamespace 创建一个扩展命名空间的子 Logger
	//
	// 示例：
	//   logger := clog.WithNamespace("devmetrics")
	//   sinkLogger := logger.WithNamespace("sink")
	//   // 最终命名空间为 "devmetrics.sink"
	WithNamespace(parts ...string) Logger

	// SetLevel 动态调整日志级别
	SetLevel(level Level) error

	// Flush 强制同步所有缓冲区的日志
	Flush()
}
