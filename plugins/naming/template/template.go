package template

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"oracframe/pkg/contract"
)

// 占位符。
const (
	phFixed  = "{fixed}"
	phPrefix = "{prefix}"
	phNum    = "{num}"
	phSuffix = "{suffix}"
)

// Options: 文件名模板选项（最小必要）。
type Options struct {
	// Fixed: 仪器固定前缀（如 UFTI 的 "f"）。
	Fixed string `yaml:"fixed"`
	// Layout: 占位符模板，必须含 {num}；如 "{fixed}{prefix}_{num}{suffix}"。
	Layout string `yaml:"layout"`
	// Width: 观测号补零宽度（4 或 5）。
	Width int `yaml:"width"`
	// Suffix: 原始文件后缀，如 ".sdf"。
	Suffix string `yaml:"suffix"`
}

// Template 为数据驱动的文件名格式化器及其逆。
type Template struct {
	fixed  string
	layout string
	width  int
	suffix string
	// parse 为通用逆向解析正则：捕获 prefix 与 num。
	parse     *regexp.Regexp
	hasPrefix bool
}

var _ contract.Namer = (*Template)(nil)

// New 校验选项并预编译逆向解析正则。
func New(opts *Options) (*Template, error) {
	if opts == nil {
		return nil, errors.New("template: options required")
	}
	layout := opts.Layout
	if layout == "" {
		layout = phFixed + phPrefix + "_" + phNum + phSuffix
	}
	if strings.Count(layout, phNum) != 1 {
		return nil, fmt.Errorf("template: layout %q must contain {num} exactly once", layout)
	}
	if strings.Count(layout, phPrefix) > 1 {
		return nil, fmt.Errorf("template: layout %q repeats {prefix}", layout)
	}
	w := opts.Width
	if w <= 0 {
		w = 5
	}
	t := &Template{fixed: opts.Fixed, layout: layout, width: w, suffix: opts.Suffix}
	t.hasPrefix = strings.Contains(layout, phPrefix)
	re, err := regexp.Compile("^" + t.pattern("(.*?)", `(\d+)`) + "$")
	if err != nil {
		return nil, fmt.Errorf("template: compile %q: %w", layout, err)
	}
	t.parse = re
	return t, nil
}

// Pad 按宽度补零；位数超出时原样返回（不截断）。
func (t *Template) Pad(obsnum int) string {
	return fmt.Sprintf("%0*d", t.width, obsnum)
}

// Width 返回补零宽度。
func (t *Template) Width() int { return t.width }

// Suffix 返回原始文件后缀。
func (t *Template) Suffix() string { return t.suffix }

// Fixed 返回固定前缀。
func (t *Template) Fixed() string { return t.fixed }

// RawName 展开模板。
func (t *Template) RawName(prefix string, obsnum int) string {
	r := strings.NewReplacer(phFixed, t.fixed, phPrefix, prefix, phNum, t.Pad(obsnum), phSuffix, t.suffix)
	return r.Replace(t.layout)
}

// Match 返回仅匹配该观测文件基名的正则；容忍补零宽度内的前导零差异。
func (t *Template) Match(prefix string, obsnum int) *regexp.Regexp {
	num := fmt.Sprintf("0*%d", obsnum)
	return regexp.MustCompile("^" + t.pattern(regexp.QuoteMeta(prefix), num) + "$")
}

// Parse 从文件基名逆向解析 (prefix, obsnum)。
func (t *Template) Parse(name string) (string, int, bool) {
	m := t.parse.FindStringSubmatch(name)
	if m == nil {
		return "", -1, false
	}
	prefix, digits := "", ""
	if t.hasPrefix {
		prefix, digits = m[1], m[2]
	} else {
		digits = m[1]
	}
	if len(digits) < t.width {
		return "", -1, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return "", -1, false
	}
	return prefix, n, true
}

// pattern 将模板字面量转义，并以给定子式替换 {prefix}/{num}。
func (t *Template) pattern(prefixExpr, numExpr string) string {
	var b strings.Builder
	rest := t.layout
	for rest != "" {
		i := strings.IndexByte(rest, '{')
		if i < 0 {
			b.WriteString(regexp.QuoteMeta(rest))
			break
		}
		b.WriteString(regexp.QuoteMeta(rest[:i]))
		rest = rest[i:]
		switch {
		case strings.HasPrefix(rest, phFixed):
			b.WriteString(regexp.QuoteMeta(t.fixed))
			rest = rest[len(phFixed):]
		case strings.HasPrefix(rest, phPrefix):
			b.WriteString(prefixExpr)
			rest = rest[len(phPrefix):]
		case strings.HasPrefix(rest, phNum):
			b.WriteString(numExpr)
			rest = rest[len(phNum):]
		case strings.HasPrefix(rest, phSuffix):
			b.WriteString(regexp.QuoteMeta(t.suffix))
			rest = rest[len(phSuffix):]
		default:
			b.WriteString(regexp.QuoteMeta(rest[:1]))
			rest = rest[1:]
		}
	}
	return b.String()
}
