// Package fitstest 按 FITS 定长卡片格式直接拼出只含头的文件，供各包测试构造夹具。
package fitstest

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

const (
	cardLen  = 80
	blockLen = 2880
)

// Write 写出 FITS 文件：hdus[0] 为主 HDU，其余为 IMAGE 扩展；均无数据段。
// 键名须不超过 8 个字符；用户键按字典序排在必需键之后。
func Write(path string, hdus ...map[string]any) error {
	var b strings.Builder
	for i, h := range hdus {
		if i == 0 {
			card(&b, "SIMPLE", true)
			card(&b, "BITPIX", 8)
			card(&b, "NAXIS", 0)
			card(&b, "EXTEND", len(hdus) > 1)
		} else {
			card(&b, "XTENSION", "IMAGE")
			card(&b, "BITPIX", 8)
			card(&b, "NAXIS", 0)
			card(&b, "PCOUNT", 0)
			card(&b, "GCOUNT", 1)
		}
		keys := make([]string, 0, len(h))
		for k := range h {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			card(&b, k, h[k])
		}
		b.WriteString(pad("END", cardLen))
		if r := b.Len() % blockLen; r != 0 {
			b.WriteString(strings.Repeat(" ", blockLen-r))
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func card(b *strings.Builder, key string, v any) {
	var val string
	switch x := v.(type) {
	case string:
		val = fmt.Sprintf("'%-8s'", strings.ReplaceAll(x, "'", "''"))
	case bool:
		t := "F"
		if x {
			t = "T"
		}
		val = fmt.Sprintf("%20s", t)
	case int:
		val = fmt.Sprintf("%20d", x)
	case float64:
		f := strconv.FormatFloat(x, 'E', -1, 64)
		if !strings.Contains(f, ".") {
			f = strings.Replace(f, "E", ".0E", 1)
		}
		val = fmt.Sprintf("%20s", f)
	default:
		val = fmt.Sprintf("%20v", x)
	}
	b.WriteString(pad(fmt.Sprintf("%-8s= %s", key, val), cardLen))
}

func pad(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}
