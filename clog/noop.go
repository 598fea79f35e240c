package clog

import "context"

// noopLogger 是一个什么都不做的 Logger 实现
type noopLogger struct{}

// Discard 创建一个静默的 Logger，组件未注入 logger 时使用
func Discard() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(msg string, fields ...Field)                             {}
func (noopLogger) Info(msg string, fields ...Field)                              {}
func (noopLogger) Warn(msg string, fields ...Field)                              {}
func (noopLogger) Error(msg string, fields ...Field)                             {}
func (noopLogger) DebugContext(ctx context.Context, msg string, fields ...Field) {}
func (noopLogger) InfoContext(ctx context.Context, msg string, fields ...Field)  {}
func (noopLogger) WarnContext(ctx context.Context, msg string, fields ...Field)  {}
func (noopLogger) ErrorContext(ctx context.Context, msg string, fields ...Field) {}

func (l noopLogger) With(fields ...Field) Logger        { return l }
func (l noopLogger) WithNamespace(parts ...string) Logger { return l }
func (noopLogger) SetLevel(level Level) error           { return nil }
func (noopLogger) Flush()                               {}
