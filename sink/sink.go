// Package sink 把各设备注册表的指标定期写成快照记录。
//
// Sink 在 Init 绑定一次输出目标后才会输出；Flush 读取全部来源、编码、写入，
// 成功后才推进各设备的基线，编码或写入失败时增量保留到下一次 flush。
//
// ## 基本使用
//
//	s, _ := sink.New(&sink.Config{Format: "json"},
//		sink.WithSources(netRegistry, blockRegistry),
//		sink.WithLogger(logger))
//
//	dest, _ := sink.Open(cfg, logger)
//	defer dest.Close()
//	_ = s.Init(dest)
//
//	ok, err := s.Flush()
//
// ## 并发
//
// 设备更新指标从不获取 Sink 的锁。输出锁覆盖一次 flush 的读取、编码、写入和基线提交，
// 而不只是写入本身：多个 goroutine 同时 Flush 时按输出锁串行执行，
// 每个增量只会被一条成功写入的记录输出。持有输出锁时发生 panic 会使 Sink 进入
// poisoned 状态，之后的每次 Flush 都以 ErrPoisoned panic。
package sink

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ceyewan/devmetrics/clog"
	"github.com/ceyewan/devmetrics/xerrors"
)

// Sink 快照输出器
type Sink struct {
	cfg        *Config
	codec      Codec
	sources    []Source
	clock      func() time.Time
	instanceID string
	logger     clog.Logger

	dest atomic.Pointer[destination]

	mu       sync.Mutex
	poisoned bool
}

type destination struct {
	w io.Writer
}

// New 创建 Sink，cfg 为 nil 时使用默认配置
func New(cfg *Config, opts ...Option) (*Sink, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opt := options{logger: clog.Discard()}
	for _, o := range opts {
		o(&opt)
	}

	codec := opt.codec
	if codec == nil {
		var err error
		if codec, err = NewCodec(cfg); err != nil {
			return nil, err
		}
	}
	if opt.clock == nil {
		opt.clock = time.Now
	}
	if opt.instanceID == "" {
		opt.instanceID = uuid.NewString()
	}

	s := &Sink{
		cfg:        cfg,
		codec:      codec,
		sources:    opt.sources,
		clock:      opt.clock,
		instanceID: opt.instanceID,
		logger:     opt.logger,
	}
	s.logger.Info("sink created",
		clog.String("format", codec.Name()),
		clog.Int("sources", len(s.sources)),
		clog.String("instance_id", s.instanceID))
	return s, nil
}

// Init 绑定输出目标，每个 Sink 只能成功一次
func (s *Sink) Init(dest io.Writer) error {
	if dest == nil {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "nil destination")
	}
	if !s.dest.CompareAndSwap(nil, &destination{w: dest}) {
		return ErrAlreadyInitialized
	}
	s.logger.Info("sink initialized")
	return nil
}

// Initialized 是否已绑定输出目标
func (s *Sink) Initialized() bool {
	return s.dest.Load() != nil
}

// InstanceID 返回快照中携带的实例 id
func (s *Sink) InstanceID() string {
	return s.instanceID
}

// Config 返回填充默认值后的配置
func (s *Sink) Config() Config {
	return *s.cfg
}

// Flush 输出一条快照记录
//
// 未初始化时返回 (false, nil) 且不读取任何指标。
// 写入成功返回 (true, nil)；编码失败返回 ErrSerialize，写入失败返回 ErrWrite，
// 两种情况下本周期的增量都会在下一次 flush 中输出。
func (s *Sink) Flush() (bool, error) {
	d := s.dest.Load()
	if d == nil {
		return false, nil
	}

	s.mu.Lock()
	if s.poisoned {
		s.mu.Unlock()
		panic(ErrPoisoned)
	}
	defer func() {
		if r := recover(); r != nil {
			s.poisoned = true
			s.mu.Unlock()
			s.logger.Error("flush panicked, sink poisoned", clog.Any("panic", r))
			panic(r)
		}
		s.mu.Unlock()
	}()

	return s.flushLocked(d.w)
}

func (s *Sink) flushLocked(w io.Writer) (bool, error) {
	snap := &Snapshot{
		UTCTimestampMs: s.clock().UTC().UnixMilli(),
		InstanceID:     s.instanceID,
	}
	commits := make([]func(), 0, len(s.sources))
	for _, src := range s.sources {
		sections, commit := src.Collect()
		snap.Sections = append(snap.Sections, sections...)
		commits = append(commits, commit)
	}

	data, err := s.codec.Encode(snap)
	if err != nil {
		return false, xerrors.WithCode(xerrors.Mark(ErrSerialize, err), CodeSerialize)
	}
	data = append(data, s.codec.Separator()...)

	if _, err := w.Write(data); err != nil {
		return false, xerrors.WithCode(xerrors.Mark(ErrWrite, err), CodeWrite)
	}

	for _, commit := range commits {
		commit()
	}
	s.logger.Debug("snapshot written",
		clog.Int("sections", len(snap.Sections)),
		clog.Int("bytes", len(data)))
	return true, nil
}
