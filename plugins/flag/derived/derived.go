package derived

import (
	"path"
	"strings"

	"oracframe/pkg/contract"
)

// Options: 旗标推导选项。
type Options struct {
	// Ext: 旗标扩展名，默认 ".ok"。
	Ext string `yaml:"ext"`
}

// Derived 由原始文件名做固定字符串变换得到旗标名：
// 前置 '.'、去掉后缀、追加 ".ok"。目录部分保持不变。
type Derived struct {
	namer contract.Namer
	ext   string
}

var _ contract.FlagNamer = (*Derived)(nil)

// New 创建推导式旗标命名器。
func New(namer contract.Namer, opts *Options) *Derived {
	ext := ".ok"
	if opts != nil && opts.Ext != "" {
		ext = opts.Ext
	}
	return &Derived{namer: namer, ext: ext}
}

// FlagName 返回 (prefix, obsnum) 对应的旗标名。
func (d *Derived) FlagName(prefix string, obsnum int) string {
	return FromRaw(d.namer.RawName(prefix, obsnum), d.namer.Suffix(), d.ext)
}

// FromRaw 对任意原始文件名执行旗标变换。
func FromRaw(raw, suffix, ext string) string {
	dir, base := path.Split(raw)
	if suffix != "" && strings.HasSuffix(base, suffix) {
		base = strings.TrimSuffix(base, suffix)
	}
	return dir + "." + base + ext
}
