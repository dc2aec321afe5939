package hds

import (
	"fmt"
	"regexp"

	"oracframe/pkg/contract"
	"oracframe/pkg/header"
)

// Options: HDS 子帧分类选项。
type Options struct {
	// Component: 子帧组件名字母前缀，默认 "I"（I1, I2BEAMA …）。
	Component string `yaml:"component"`
}

// Resolver 枚举 HDS 容器的直接子组件：
// 1) <C><n> 为普通子帧，<C><n>BEAM[AB] 为斩波子帧；
// 2) 存在斩波名时只用斩波集合，同一序号优先 BEAMA；
// 3) HEADER 永不计数；
// 4) 无任何子帧组件时整个容器视为单一子帧。
type Resolver struct {
	plain *regexp.Regexp
	chop  *regexp.Regexp
}

var _ contract.SubFrameResolver = (*Resolver)(nil)

func New(opts *Options) *Resolver {
	c := "I"
	if opts != nil && opts.Component != "" {
		c = opts.Component
	}
	q := regexp.QuoteMeta(c)
	return &Resolver{
		plain: regexp.MustCompile(`^` + q + `(\d+)$`),
		chop:  regexp.MustCompile(`^` + q + `(\d+)BEAM([AB])$`),
	}
}

// Classify 从组件名列表选出子帧（保持容器内顺序）。
func (r *Resolver) Classify(children []string) []string {
	var plain []string
	type beams struct{ a, b string }
	var order []string
	chop := map[string]*beams{}
	for _, n := range children {
		if n == contract.HeaderComponent {
			continue
		}
		if m := r.chop.FindStringSubmatch(n); m != nil {
			bm, ok := chop[m[1]]
			if !ok {
				bm = &beams{}
				chop[m[1]] = bm
				order = append(order, m[1])
			}
			if m[2] == "A" {
				bm.a = n
			} else {
				bm.b = n
			}
			continue
		}
		if r.plain.MatchString(n) {
			plain = append(plain, n)
		}
	}
	if len(order) == 0 {
		return plain
	}
	out := make([]string, 0, len(order))
	for _, idx := range order {
		if bm := chop[idx]; bm.a != "" {
			out = append(out, bm.a)
		} else {
			out = append(out, bm.b)
		}
	}
	return out
}

func (r *Resolver) Resolve(store contract.Store, raw []string) (contract.SubFrames, error) {
	if len(raw) == 0 {
		return contract.SubFrames{}, fmt.Errorf("hds: no raw file: %w", contract.ErrInvalidInput)
	}
	c, err := store.Open(raw[0])
	if err != nil {
		return contract.SubFrames{}, err
	}
	defer c.Close()
	primary, err := c.Header("")
	if err != nil {
		return contract.SubFrames{}, err
	}
	names := r.Classify(c.Children())
	root, _, _ := contract.SplitMember(raw[0], store.Suffix())
	if len(names) == 0 {
		return contract.SubFrames{
			Names:   []string{root},
			Files:   []string{raw[0]},
			Headers: header.Set{Subs: []header.Raw{primary}},
		}, nil
	}
	out := contract.SubFrames{
		Names:   names,
		Files:   make([]string, len(names)),
		Headers: header.Set{Primary: primary, Subs: make([]header.Raw, len(names))},
	}
	for i, n := range names {
		out.Files[i] = root + "." + n
		h, err := c.Header(n)
		if err != nil {
			return contract.SubFrames{}, err
		}
		out.Headers.Subs[i] = h
	}
	return out, nil
}
