package contract

import "regexp"

// Namer: 由 (prefix, obsnum) 推导原始文件名，并提供逆向匹配。
// 约束：
// 1) 纯函数，无 I/O；
// 2) obsnum 位数超过补零宽度时原样使用，不截断；
// 3) Parse(RawName(p, n)) 必须还原 (p, n)。
type Namer interface {
	RawName(prefix string, obsnum int) string
	// Match 返回只匹配该观测所属文件（基名）的正则。
	Match(prefix string, obsnum int) *regexp.Regexp
	Parse(name string) (prefix string, obsnum int, ok bool)
	// Suffix 为原始文件后缀（如 ".sdf"）。
	Suffix() string
}

// FlagNamer: 推导"观测完成"旗标文件名（相对数据目录）。
// 无法推导时返回哑名而非错误。
type FlagNamer interface {
	FlagName(prefix string, obsnum int) string
}

// RawLocator: 可选扩展。旗标为"发现"而非"推导"的仪器通过旗标内容定位原始文件。
type RawLocator interface {
	LocateRaw(prefix string, obsnum int) (string, bool)
}
