package sink

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker/v2"

	"github.com/ceyewan/devmetrics/clog"
	"github.com/ceyewan/devmetrics/trace"
	"github.com/ceyewan/devmetrics/xerrors"
)

// Publisher 发布一条消息，*nats.Conn 满足该接口
type Publisher interface {
	PublishMsg(msg *nats.Msg) error
}

// NATSWriter 把每条快照记录发布为一条 NATS 消息
//
// 发布经过熔断器：连续失败达到阈值后，Write 在熔断期间直接返回 gobreaker.ErrOpenState，
// 不再等待 NATS 客户端。每次发布都会创建生产者 span，并把链路上下文写入消息头。
type NATSWriter struct {
	pub     Publisher
	subject string
	cb      *gobreaker.CircuitBreaker[any]
	logger  clog.Logger
	conn    *nats.Conn
}

// NewNATSWriter 基于已有的 Publisher 创建 NATSWriter
func NewNATSWriter(pub Publisher, cfg *NATSConfig, logger clog.Logger) (*NATSWriter, error) {
	if pub == nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "nil publisher")
	}
	if cfg == nil {
		cfg = &NATSConfig{}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = clog.Discard()
	}

	w := &NATSWriter{
		pub:     pub,
		subject: cfg.Subject,
		logger:  logger.With(clog.String("subject", cfg.Subject)),
	}
	w.cb = newBreaker("nats:"+cfg.Subject, &cfg.Breaker, w.logger)
	return w, nil
}

// DialNATS 连接 NATS 并创建 NATSWriter，Close 时排空并关闭连接
func DialNATS(cfg *NATSConfig, logger clog.Logger, opts ...nats.Option) (*NATSWriter, error) {
	if cfg == nil {
		cfg = &NATSConfig{}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = clog.Discard()
	}

	opts = append([]nats.Option{
		nats.Name("devmetrics"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", clog.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", clog.String("url", c.ConnectedUrl()))
		}),
	}, opts...)

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, xerrors.Wrapf(err, "connect nats %s", cfg.URL)
	}

	w, err := NewNATSWriter(conn, cfg, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	w.conn = conn
	logger.Info("nats destination connected", clog.String("url", cfg.URL))
	return w, nil
}

// Write 发布一条记录，成功时返回 len(p)
func (w *NATSWriter) Write(p []byte) (int, error) {
	msg := &nats.Msg{Subject: w.subject, Data: p}
	_, span := trace.StartPublishSpan(context.Background(), nil, msg)
	defer span.End()

	_, err := w.cb.Execute(func() (any, error) {
		return nil, w.pub.PublishMsg(msg)
	})
	if err != nil {
		trace.MarkSpanError(span, err)
		return 0, xerrors.Wrapf(err, "publish to %s", w.subject)
	}
	return len(p), nil
}

// State 返回熔断器状态
func (w *NATSWriter) State() gobreaker.State {
	return w.cb.State()
}

// Close 排空并关闭由 DialNATS 建立的连接
func (w *NATSWriter) Close() error {
	if w.conn == nil {
		return nil
	}
	return w.conn.Drain()
}

func newBreaker(name string, cfg *BreakerConfig, logger clog.Logger) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinimumRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				clog.String("breaker", name),
				clog.String("from", from.String()),
				clog.String("to", to.String()))
		},
	})
}
