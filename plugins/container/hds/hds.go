package hds

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"oracframe/pkg/contract"
	"oracframe/pkg/header"
)

// Component: 容器内一个命名组件及其 FITS 头。
type Component struct {
	Name   string         `msgpack:"name"`
	Header map[string]any `msgpack:"header"`
}

// File: HDS 风格容器的持久化形态（组件有序、名称唯一）。
// 扁平 NDF 即无组件、只有顶层 Header 的容器。
type File struct {
	Type       string         `msgpack:"type"`
	Header     map[string]any `msgpack:"header"`
	Components []Component    `msgpack:"components"`
}

// Options: 容器存储选项。
type Options struct {
	// Suffix: 容器文件后缀，默认 ".sdf"。
	Suffix string `yaml:"suffix"`
	// PermFile: 新建文件权限；0 使用 0o644。
	PermFile os.FileMode `yaml:"perm_file"`
}

// Store 以 msgpack 编码持久化组件树，实现 contract.Store。
type Store struct {
	suffix string
	perm   os.FileMode
}

var _ contract.Store = (*Store)(nil)

// New 创建 HDS 容器存储。
func New(opts *Options) *Store {
	s := &Store{suffix: ".sdf", perm: 0o644}
	if opts != nil {
		if opts.Suffix != "" {
			s.suffix = opts.Suffix
		}
		if opts.PermFile != 0 {
			s.perm = opts.PermFile
		}
	}
	return s
}

// Suffix 返回容器后缀。
func (s *Store) Suffix() string { return s.suffix }

// resolve 允许省略后缀（HDS 习惯以根名引用容器）。
func (s *Store) resolve(path string) string {
	if strings.HasSuffix(path, s.suffix) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return path + s.suffix
}

// Exists 判断容器文件是否存在。
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(s.resolve(path))
	return err == nil
}

// Load 读取并解码容器。
func (s *Store) Load(path string) (*File, error) {
	p := s.resolve(path)
	fh, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("hds: open %s: %w: %w", p, contract.ErrContainer, err)
	}
	defer fh.Close()
	var f File
	if err := msgpack.NewDecoder(bufio.NewReader(fh)).Decode(&f); err != nil {
		return nil, fmt.Errorf("hds: decode %s: %w: %w", p, contract.ErrContainer, err)
	}
	return &f, nil
}

// Save 原子写入容器。
func (s *Store) Save(path string, f *File) error {
	if err := checkUnique(f); err != nil {
		return err
	}
	if err := writeAtomic(s.resolve(path), f, s.perm); err != nil {
		return fmt.Errorf("hds: write %s: %w: %w", path, contract.ErrContainer, err)
	}
	return nil
}

// Open 以只读方式打开容器。
func (s *Store) Open(path string) (contract.Container, error) {
	f, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	return &container{f: f}, nil
}

// Create 新建（或清空重建）指定类型的空容器。
func (s *Store) Create(path, typ string) error {
	return s.Save(path, &File{Type: typ, Header: map[string]any{}})
}

// CopyComponent 将 src 容器中的组件 name 复制到 dst（同名组件被替换）。
func (s *Store) CopyComponent(src, dst, name string) error {
	from, err := s.Load(src)
	if err != nil {
		return err
	}
	i := from.index(name)
	if i < 0 {
		return fmt.Errorf("hds: %s has no component %s: %w", src, name, contract.ErrContainer)
	}
	to, err := s.Load(dst)
	if err != nil {
		return err
	}
	comp := Component{Name: name, Header: header.Raw(from.Components[i].Header).Clone()}
	if j := to.index(name); j >= 0 {
		to.Components[j] = comp
	} else {
		to.Components = append(to.Components, comp)
	}
	return s.Save(dst, to)
}

// EraseComponent 删除组件；组件不存在视为成功。
func (s *Store) EraseComponent(path, name string) error {
	f, err := s.Load(path)
	if err != nil {
		return err
	}
	i := f.index(name)
	if i < 0 {
		return nil
	}
	f.Components = append(f.Components[:i], f.Components[i+1:]...)
	return s.Save(path, f)
}

func (f *File) index(name string) int {
	for i, c := range f.Components {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func checkUnique(f *File) error {
	seen := make(map[string]struct{}, len(f.Components))
	for _, c := range f.Components {
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("hds: duplicate component %q: %w", c.Name, contract.ErrInvalidInput)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

// container 为已解码容器的只读视图。
type container struct {
	f *File
}

func (c *container) Children() []string {
	out := make([]string, 0, len(c.f.Components))
	for _, comp := range c.f.Components {
		out = append(out, comp.Name)
	}
	return out
}

// Header: name 为空时返回主头（优先 HEADER 组件，否则顶层头）。
func (c *container) Header(name string) (header.Raw, error) {
	if name == "" {
		if i := c.f.index(contract.HeaderComponent); i >= 0 {
			return header.Raw(c.f.Components[i].Header).Clone(), nil
		}
		return header.Raw(c.f.Header).Clone(), nil
	}
	i := c.f.index(name)
	if i < 0 {
		return nil, fmt.Errorf("hds: no component %s: %w", name, contract.ErrContainer)
	}
	return header.Raw(c.f.Components[i].Header).Clone(), nil
}

func (c *container) Close() error { return nil }
