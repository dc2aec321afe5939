package contract

import "oracframe/pkg/header"

// SubFrames: 子帧解析结果。
//   - Names: 容器内组件名（有序、唯一）；扁平格式为各原始文件基名；
//   - Files: 与 Names 一一对应的工作文件名；
//   - Headers: 两级头（主头 + 每子帧头）；
//   - Extensions: MEF 专用，每个扩展的完整头（已并入主头），用于派生子 Frame。
type SubFrames struct {
	Names      []string
	Files      []string
	Headers    header.Set
	Extensions []header.Raw
}

// Count 返回子帧数。
func (s SubFrames) Count() int { return len(s.Names) }

// SubFrameResolver: 枚举并分类容器内子帧。
// 打开失败时返回零值结果与包裹 ErrContainer 的错误，由调用方记录，不得使进程崩溃。
type SubFrameResolver interface {
	Resolve(store Store, raw []string) (SubFrames, error)
}

// Translator: 原始头 → 规范头。不得因缺失可选键而失败。
type Translator interface {
	Translate(raw header.Raw) header.Canonical
}
