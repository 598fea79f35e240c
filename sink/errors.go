package sink

import "github.com/ceyewan/devmetrics/xerrors"

var (
	// ErrAlreadyInitialized Sink 已经绑定过输出目标
	ErrAlreadyInitialized = xerrors.New("sink: already initialized")

	// ErrSerialize 快照编码失败，本周期的增量未被消耗
	ErrSerialize = xerrors.New("sink: serialize snapshot")

	// ErrWrite 写入输出目标失败，本周期的增量未被消耗
	ErrWrite = xerrors.New("sink: write snapshot")

	// ErrPoisoned 之前的 flush 在持有输出锁时 panic，Sink 不再可用
	ErrPoisoned = xerrors.New("sink: poisoned by an earlier panic")

	// ErrThrottled 按需 flush 触发过于频繁
	ErrThrottled = xerrors.New("sink: flush trigger throttled")

	// ErrUnsupportedFormat 不支持的快照格式
	ErrUnsupportedFormat = xerrors.New("sink: unsupported format")
)

// 错误码，通过 xerrors.GetCode 从 Flush 返回的错误中提取
const (
	CodeSerialize = "SERIALIZE"
	CodeWrite     = "WRITE"
)
