package xerrors

// 通用哨兵错误，组件特有的错误定义在各自包的 errors.go 中。
var (
	// ErrNotFound 请求的资源（配置项、设备等）不存在
	ErrNotFound = New("not found")

	// ErrInvalidInput 输入参数无效
	ErrInvalidInput = New("invalid input")

	// ErrInvalidConfig 组件配置无效
	ErrInvalidConfig = New("invalid config")
)
