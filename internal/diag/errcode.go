package diag

import (
	"errors"
	"io/fs"
	"time"

	"oracframe/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown     Code = "unknown"
	CodeUsage       Code = "usage"
	CodeIO          Code = "io"
	CodeConsistency Code = "consistency"
	CodeCatalog     Code = "catalog"
	CodeInvariant   Code = "invariant"
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	switch {
	case errors.Is(err, contract.ErrUsage):
		return CodeUsage
	case errors.Is(err, contract.ErrCatalog):
		return CodeCatalog
	case errors.Is(err, contract.ErrConsistency):
		return CodeConsistency
	case errors.Is(err, contract.ErrInvalidInput):
		return CodeInvariant
	case errors.Is(err, contract.ErrContainer):
		return CodeIO
	}
	var perr *fs.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}

// NowUTC 返回 RFC3339 UTC 时间字符串（用于结构化日志字段 ts）。
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
