package sink

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/ceyewan/devmetrics/clog"
)

// Flusher 周期性地调用 Sink.Flush，并提供限流的按需 flush
type Flusher struct {
	sink     *Sink
	interval time.Duration
	limiter  *rate.Limiter
	logger   clog.Logger
}

// NewFlusher 按 Sink 的 FlushInterval、TriggerRate、TriggerBurst 创建 Flusher
func NewFlusher(s *Sink) *Flusher {
	return &Flusher{
		sink:     s,
		interval: s.cfg.FlushInterval,
		limiter:  rate.NewLimiter(rate.Limit(s.cfg.TriggerRate), s.cfg.TriggerBurst),
		logger:   s.logger.WithNamespace("flusher"),
	}
}

// Run 每个周期 flush 一次，直到 ctx 取消；返回前再 flush 一次
func (f *Flusher) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.logger.Info("flusher started", clog.Duration("interval", f.interval))
	for {
		select {
		case <-ctx.Done():
			f.flush("final")
			f.logger.Info("flusher stopped")
			return nil
		case <-ticker.C:
			f.flush("periodic")
		}
	}
}

// Trigger 立即 flush 一次，超过限流时返回 ErrThrottled
func (f *Flusher) Trigger() (bool, error) {
	if !f.limiter.Allow() {
		return false, ErrThrottled
	}
	return f.flush("trigger")
}

func (f *Flusher) flush(reason string) (bool, error) {
	ok, err := f.sink.Flush()
	switch {
	case err != nil:
		f.logger.Error("flush failed", clog.String("reason", reason), clog.Error(err))
	case !ok:
		f.logger.Debug("flush skipped, sink not initialized", clog.String("reason", reason))
	}
	return ok, err
}
