package sink

import (
	"io"
	"os"

	"github.com/ceyewan/devmetrics/clog"
	"github.com/ceyewan/devmetrics/xerrors"
)

// Open 按 Config.Output 打开输出目标
//
//   - "stdout" / "stderr": 标准输出，Close 不会关闭它们
//   - "nats": 连接 Config.NATS.URL 并发布到 Config.NATS.Subject
//   - 其他: 文件路径，以追加方式打开，不存在时以 0644 创建
func Open(cfg *Config, logger clog.Logger) (io.WriteCloser, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	switch cfg.Output {
	case OutputStdout:
		return nopCloser{os.Stdout}, nil
	case OutputStderr:
		return nopCloser{os.Stderr}, nil
	case OutputNATS:
		w, err := DialNATS(&cfg.NATS, logger)
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		f, err := OpenFile(cfg.Output)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// OpenFile 以追加方式打开文件，不存在时创建
func OpenFile(path string) (*os.File, error) {
	if path == "" {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "empty file path")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, xerrors.Wrapf(err, "open metrics file %s", path)
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
