package contract

import "errors"

// 领域错误分类（哨兵）。
// LookupMiss 不在此列：以 -1 / 哑旗标名等哨兵值表达，调用方无需异常分支。
var (
	// ErrUsage: 调用形参组合非法（如 Configure 同时给出文件列表与 prefix/obsnum）。
	ErrUsage = errors.New("usage error")
	// ErrContainer: 容器或文件无法打开/读取（可恢复：记录日志、子帧数归零、头为空）。
	ErrContainer = errors.New("container unavailable")
	// ErrConsistency: 输出文件名与输入文件名相同（仅告警，不阻断）。
	ErrConsistency = errors.New("output name collides with input name")
	// ErrCatalog: 仪器目录定义非法或未注册。
	ErrCatalog = errors.New("instrument catalog invalid")
	// ErrInvalidInput: 参数越界（如 InOut 的 index 超出文件数）。
	ErrInvalidInput = errors.New("invalid input")
)
