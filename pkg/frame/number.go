package frame

import (
	"path"
	"regexp"
	"strconv"

	"oracframe/pkg/contract"
	"oracframe/pkg/header"
)

var (
	trailingRe  = regexp.MustCompile(`(\d+)$`)
	delimitedRe = regexp.MustCompile(`_(\d+)_\d\d_\d\d$`)
)

// NumberFromName 按规则从文件名提取观测号；无法提取时返回 -1。
// 后缀与容器成员名先被剥离。
func NumberFromName(rule NumberRule, name, suffix string) int {
	base := path.Base(contract.NormalizePath(name))
	root, _, _ := contract.SplitMember(base, suffix)
	var re *regexp.Regexp
	switch rule {
	case NumberTrailing, "":
		re = trailingRe
	case NumberDelimited:
		re = delimitedRe
	default:
		return -1
	}
	m := re.FindStringSubmatch(root)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}

// NumberFromHeader 读取整数观测号；缺失返回 -1。
func NumberFromHeader(h header.Raw, key string) int {
	if key == "" {
		key = "OBSNUM"
	}
	n, ok := h.Int(key)
	if !ok {
		return -1
	}
	return n
}
