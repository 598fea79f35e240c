package config

import "github.com/ceyewan/devmetrics/xerrors"

// ErrValidationFailed 验证失败
var ErrValidationFailed = xerrors.New("configuration validation failed")

// IsInvalid 检查错误是否为配置无效
func IsInvalid(err error) bool {
	return xerrors.Is(err, ErrValidationFailed) || xerrors.Is(err, xerrors.ErrInvalidConfig)
}
