package contract

import (
	"path"
	"strings"
)

// NormalizePath 规范化文件名，统一为正斜杠分隔并清理多余片段。
// 保留相对/绝对语义，不做隐式绝对化。
func NormalizePath(p string) string {
	s := strings.ReplaceAll(p, "\\", "/")
	return path.Clean(s)
}

// SplitMember 将文件名拆为 (根, 容器成员, 文件后缀)。
// 形如 "dir/f20040919_00010.I1" → ("dir/f20040919_00010", ".I1", "")；
// "obs_0001.sdf"（".sdf" 属于 suffixes）→ ("obs_0001", "", ".sdf")。
// 仅最后一个 '.' 之后的片段参与判断，且不跨目录分隔符。
func SplitMember(name string, suffixes ...string) (root, member, ext string) {
	slash := strings.LastIndexAny(name, "/\\")
	dot := strings.LastIndexByte(name, '.')
	if dot <= slash+1 {
		return name, "", ""
	}
	tail := name[dot:]
	for _, s := range suffixes {
		if s != "" && strings.EqualFold(tail, s) {
			return name[:dot], "", tail
		}
	}
	return name[:dot], tail, ""
}
