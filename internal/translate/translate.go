package translate

import (
	"fmt"
	"sort"
	"strings"

	"oracframe/pkg/contract"
	"oracframe/pkg/header"
)

// Options: 翻译表（目录数据）。
type Options struct {
	// Direct: 规范键 → 原始键的直接映射（可带 ORAC_ 前缀）。
	Direct map[string]string `yaml:"direct"`
	// Rules: 派生规则名，按顺序在直接映射之后执行。
	Rules     []string  `yaml:"rules"`
	Constants Constants `yaml:"constants"`
}

// Constants: 仪器常量表。零值表示使用通用缺省。
type Constants struct {
	RAScale  float64 `yaml:"ra_scale"`
	DecScale float64 `yaml:"dec_scale"`
	// Bounds: [xlo, xhi, ylo, yhi]，缺省 [1,1024,1,1024]。
	Bounds []int `yaml:"bounds"`
	// RefPixel: [x, y]；缺省为 Bounds 中心。
	RefPixel []float64 `yaml:"reference_pixel"`
	// ScaleKey/PixelScales: 以某原始头取值查像元尺度表（角秒/像元）。
	ScaleKey    string             `yaml:"scale_key"`
	PixelScales map[string]float64 `yaml:"pixel_scales"`
	// RAHours: 原始 RA/RABASE 以小时计。
	RAHours bool    `yaml:"ra_hours"`
	DateKey string  `yaml:"date_key"`
	EndKey  string  `yaml:"end_key"`
	Epochs  []Epoch `yaml:"epochs"`
}

// Epoch: 以 UT 日期阈值选择原始键（阈值当日及之后用 After）。
type Epoch struct {
	Key       string `yaml:"key"`
	Threshold int    `yaml:"threshold"`
	Before    string `yaml:"before"`
	After     string `yaml:"after"`
}

const (
	defaultRAScale  = -0.2387
	defaultDecScale = 0.2387
)

// Rule 读取原始头与已得结果，写入派生键。不得 panic，缺失输入时不写或写缺省。
type Rule func(raw header.Raw, out header.Canonical, c *Constants)

var rules = map[string]Rule{
	"ut_headers":        utHeaders,
	"ut_dateobs":        utDateObs,
	"bounds":            bounds,
	"reference_pixel":   referencePixel,
	"cd_rotation":       cdRotation,
	"scale":             scale,
	"base_position":     basePosition,
	"telescope_offsets": telescopeOffsets,
	"epoch_keys":        epochKeys,
}

// RuleNames 返回已注册规则名（排序）。
func RuleNames() []string {
	out := make([]string, 0, len(rules))
	for k := range rules {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type step struct {
	name string
	fn   Rule
}

// Translator: 直接映射 + 命名规则，实现 contract.Translator。
type Translator struct {
	direct map[string]string
	steps  []step
	c      Constants
}

var _ contract.Translator = (*Translator)(nil)

// New 校验翻译表：规范键须在词表内，规则须已注册。
func New(opts *Options) (*Translator, error) {
	if opts == nil {
		opts = &Options{}
	}
	t := &Translator{direct: map[string]string{}, c: opts.Constants}
	for k, raw := range opts.Direct {
		if !header.Known(k) {
			return nil, fmt.Errorf("translate: unknown canonical key %q: %w", k, contract.ErrCatalog)
		}
		if strings.TrimSpace(raw) == "" {
			return nil, fmt.Errorf("translate: empty raw key for %q: %w", k, contract.ErrCatalog)
		}
		t.direct[header.Bare(k)] = raw
	}
	for _, name := range opts.Rules {
		fn, ok := rules[name]
		if !ok {
			return nil, fmt.Errorf("translate: unknown rule %q: %w", name, contract.ErrCatalog)
		}
		t.steps = append(t.steps, step{name: name, fn: fn})
	}
	if n := len(t.c.Bounds); n != 0 && n != 4 {
		return nil, fmt.Errorf("translate: bounds needs 4 values, got %d: %w", n, contract.ErrCatalog)
	}
	if n := len(t.c.RefPixel); n != 0 && n != 2 {
		return nil, fmt.Errorf("translate: reference_pixel needs 2 values, got %d: %w", n, contract.ErrCatalog)
	}
	for _, e := range t.c.Epochs {
		if !header.Known(e.Key) || e.Before == "" || e.After == "" {
			return nil, fmt.Errorf("translate: bad epoch entry %+v: %w", e, contract.ErrCatalog)
		}
	}
	return t, nil
}

// Translate 生成规范头。
func (t *Translator) Translate(raw header.Raw) header.Canonical {
	out := header.Canonical{}
	for canon, key := range t.direct {
		if v, ok := raw[key]; ok && v != nil {
			out[canon] = scalar(v)
		}
	}
	for _, s := range t.steps {
		s.fn(raw, out, &t.c)
	}
	return out
}

// scalar 去掉字符串值的首尾空白（FITS 字符串常带填充）。
func scalar(v any) any {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return v
}

func (c *Constants) bounds() [4]int {
	if len(c.Bounds) == 4 {
		return [4]int{c.Bounds[0], c.Bounds[1], c.Bounds[2], c.Bounds[3]}
	}
	return [4]int{1, 1024, 1, 1024}
}

func (c *Constants) scales() (float64, float64) {
	ra, dec := c.RAScale, c.DecScale
	if ra == 0 {
		ra = defaultRAScale
	}
	if dec == 0 {
		dec = defaultDecScale
	}
	return ra, dec
}

func (c *Constants) dateKey() string {
	if c.DateKey != "" {
		return c.DateKey
	}
	return "DATE-OBS"
}

func (c *Constants) endKey() string {
	if c.EndKey != "" {
		return c.EndKey
	}
	return "DATE-END"
}
