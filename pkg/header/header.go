package header

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Raw: 仪器原生头（FITS/NDF 关键字 → 标量），键区分大小写。
// 约束：构造后只读；需要修改时先 Clone。
type Raw map[string]any

// Has 判断键是否存在且值非 nil。
func (r Raw) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Clone 浅拷贝（值均为标量）。
func (r Raw) Clone() Raw {
	if r == nil {
		return Raw{}
	}
	out := make(Raw, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Without 返回去除指定键后的副本。
func (r Raw) Without(keys ...string) Raw {
	out := r.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Overlay 返回 r 的副本，并以 over 的键覆盖。
func (r Raw) Overlay(over Raw) Raw {
	out := r.Clone()
	for k, v := range over {
		out[k] = v
	}
	return out
}

// Keys 返回排序后的键列表（输出稳定）。
func (r Raw) Keys() []string {
	ks := make([]string, 0, len(r))
	for k := range r {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// String 以字符串形式读取；数字按 %v 格式化，首尾空白去除。
func (r Raw) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	return ToString(v), true
}

// Float 读取数值；字符串按 ParseFloat 解析（兼容 Fortran 'D' 指数）。
func (r Raw) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	return ToFloat(v)
}

// Int 读取整数；浮点值按四舍五入取整。
func (r Raw) Int(key string) (int, bool) {
	f, ok := r.Float(key)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

// ToString 将标量规整为去空白字符串。
func ToString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case []byte:
		return strings.TrimSpace(string(x))
	case bool:
		if x {
			return "T"
		}
		return "F"
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// ToFloat 将任意数值类型（含解码器产生的各宽度整数）统一为 float64。
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case bool:
		return 0, false
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		s = strings.Replace(strings.Replace(s, "D", "E", 1), "d", "e", 1)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// Equal 比较两个标量；数值按 float64 比较，其余按字符串。
func Equal(a, b any) bool {
	fa, oka := ToFloat(a)
	fb, okb := ToFloat(b)
	if oka && okb {
		_, sa := a.(string)
		_, sb := b.(string)
		if sa == sb {
			return fa == fb
		}
	}
	return ToString(a) == ToString(b)
}
