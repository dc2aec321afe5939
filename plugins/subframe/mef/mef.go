package mef

import (
	"fmt"

	"oracframe/pkg/contract"
	"oracframe/pkg/header"
)

// Options: MEF 子帧选项。
type Options struct {
	// Inherit: 扩展头是否并入主头（默认 true）。
	Inherit *bool `yaml:"inherit"`
}

// Resolver: 子帧数 = HDU 数 − 1；主 HDU 永不为子帧。
// 每个扩展派生子 Frame，其头为主头（去 END）叠加扩展自身卡片。
type Resolver struct {
	inherit bool
}

var _ contract.SubFrameResolver = (*Resolver)(nil)

func New(opts *Options) *Resolver {
	r := &Resolver{inherit: true}
	if opts != nil && opts.Inherit != nil {
		r.inherit = *opts.Inherit
	}
	return r
}

func (r *Resolver) Resolve(store contract.Store, raw []string) (contract.SubFrames, error) {
	if len(raw) == 0 {
		return contract.SubFrames{}, fmt.Errorf("mef: no raw file: %w", contract.ErrInvalidInput)
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
	names := c.Children()
	out := contract.SubFrames{
		Names:      names,
		Files:      make([]string, len(names)),
		Headers:    header.Set{Primary: primary, Subs: make([]header.Raw, len(names))},
		Extensions: make([]header.Raw, len(names)),
	}
	base := primary.Without("END")
	for i, n := range names {
		h, err := c.Header(n)
		if err != nil {
			return contract.SubFrames{}, err
		}
		out.Files[i] = fmt.Sprintf("%s[%d]", raw[0], i+1)
		out.Headers.Subs[i] = h
		if r.inherit {
			out.Extensions[i] = base.Overlay(h)
		} else {
			out.Extensions[i] = h.Clone()
		}
	}
	return out, nil
}
