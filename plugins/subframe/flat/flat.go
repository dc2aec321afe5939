package flat

import (
	"path"
	"strings"

	"oracframe/pkg/contract"
	"oracframe/pkg/header"
)

// Options: 扁平格式无可调项；保留结构以便目录统一严格解码。
type Options struct{}

// Resolver: 每个原始文件即一个子帧（UFTI/IRCAM 等单 NDF 仪器）。
// 子帧数恒等于原始文件数；打不开的文件头为空，并返回首个错误供调用方记录。
type Resolver struct{}

var _ contract.SubFrameResolver = (*Resolver)(nil)

func New(_ *Options) *Resolver { return &Resolver{} }

func (r *Resolver) Resolve(store contract.Store, raw []string) (contract.SubFrames, error) {
	out := contract.SubFrames{
		Names:   make([]string, 0, len(raw)),
		Files:   make([]string, 0, len(raw)),
		Headers: header.Set{Subs: make([]header.Raw, 0, len(raw))},
	}
	var first error
	for _, f := range raw {
		out.Names = append(out.Names, strings.TrimSuffix(path.Base(contract.NormalizePath(f)), store.Suffix()))
		out.Files = append(out.Files, f)
		h, err := read(store, f)
		if err != nil && first == nil {
			first = err
		}
		out.Headers.Subs = append(out.Headers.Subs, h)
	}
	return out, first
}

func read(store contract.Store, f string) (header.Raw, error) {
	c, err := store.Open(f)
	if err != nil {
		return header.Raw{}, err
	}
	defer c.Close()
	h, err := c.Header("")
	if err != nil {
		return header.Raw{}, err
	}
	return h, nil
}
