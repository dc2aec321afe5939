package mef

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/astrogo/fitsio"

	"oracframe/pkg/contract"
	"oracframe/pkg/header"
)

// Options: FITS 容器选项。
type Options struct {
	// Suffix: 文件后缀，默认 ".fits"。
	Suffix string `yaml:"suffix"`
}

// Store 以 fitsio 读取 FITS / 多扩展 FITS（MEF），实现 contract.Store。
// 只读：InOut 的容器重建只对 HDS 成员名生效，FITS 写操作返回 ErrUnsupported。
type Store struct {
	suffix string
}

var _ contract.Store = (*Store)(nil)

// New 创建 FITS 存储。
func New(opts *Options) *Store {
	s := &Store{suffix: ".fits"}
	if opts != nil && opts.Suffix != "" {
		s.suffix = opts.Suffix
	}
	return s
}

// Suffix 返回文件后缀。
func (s *Store) Suffix() string { return s.suffix }

func (s *Store) resolve(path string) string {
	if strings.HasSuffix(path, s.suffix) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return path + s.suffix
}

// Exists 判断文件是否存在。
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(s.resolve(path))
	return err == nil
}

// Open 读取全部 HDU 头后立即关闭底层文件；数据段不解码。
func (s *Store) Open(path string) (contract.Container, error) {
	p := s.resolve(path)
	fh, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("mef: open %s: %w: %w", p, contract.ErrContainer, err)
	}
	defer fh.Close()
	f, err := fitsio.Open(bufio.NewReader(fh))
	if err != nil {
		return nil, fmt.Errorf("mef: read %s: %w: %w", p, contract.ErrContainer, err)
	}
	defer f.Close()

	c := &container{}
	seen := map[string]bool{}
	for i, hdu := range f.HDUs() {
		h := cards(hdu.Header())
		if i == 0 {
			c.primary = h
			continue
		}
		name := extName(h, i)
		for k := 1; seen[name]; k++ {
			name = fmt.Sprintf("%d_%d", i, k)
		}
		seen[name] = true
		c.names = append(c.names, name)
		c.exts = append(c.exts, h)
	}
	return c, nil
}

func (s *Store) Create(path, typ string) error {
	return fmt.Errorf("mef: create %s (%s): %w", path, typ, errors.ErrUnsupported)
}

func (s *Store) CopyComponent(src, dst, name string) error {
	return fmt.Errorf("mef: copy %s from %s: %w", name, src, errors.ErrUnsupported)
}

func (s *Store) EraseComponent(path, name string) error {
	return fmt.Errorf("mef: erase %s in %s: %w", name, path, errors.ErrUnsupported)
}

// cards 将 fitsio 头转为 Raw；END 及空键不保留。
func cards(h *fitsio.Header) header.Raw {
	out := header.Raw{}
	if h == nil {
		return out
	}
	for _, k := range h.Keys() {
		if k == "" || k == "END" {
			continue
		}
		card := h.Get(k)
		if card == nil {
			continue
		}
		out[k] = card.Value
	}
	return out
}

// extName 取 EXTNAME；缺省时以 HDU 序号命名。重名由 Open 追加 _k 消解。
func extName(h header.Raw, i int) string {
	if s, ok := h.String("EXTNAME"); ok && s != "" {
		return s
	}
	return strconv.Itoa(i)
}

type container struct {
	primary header.Raw
	names   []string
	exts    []header.Raw
}

// Children 按 HDU 顺序返回扩展名（不含主 HDU）。
func (c *container) Children() []string {
	return append([]string(nil), c.names...)
}

// Header: "" 为主 HDU 头；否则为对应扩展自身的卡片（未并入主头）。
func (c *container) Header(name string) (header.Raw, error) {
	if name == "" {
		return c.primary.Clone(), nil
	}
	for i, n := range c.names {
		if n == name {
			return c.exts[i].Clone(), nil
		}
	}
	return nil, fmt.Errorf("mef: no extension %s: %w", name, contract.ErrContainer)
}

func (c *container) Close() error { return nil }
