package instrument

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"oracframe/pkg/contract"
	"oracframe/pkg/frame"
	"oracframe/pkg/registry"
	"oracframe/plugins/flag/discover"
)

//go:embed catalog.yaml
var builtin []byte

// Plugin: 一个策略的实现名与原样选项（由 registry 严格解码）。
type Plugin struct {
	Kind    string    `yaml:"kind"`
	Options yaml.Node `yaml:"options"`
}

// Number: 观测号规则。
type Number struct {
	Rule string `yaml:"rule"`
	Key  string `yaml:"key"`
}

// Group: 组标识策略。
type Group struct {
	Key        string   `yaml:"key"`
	NumberKey  string   `yaml:"number_key"`
	MemberKey  string   `yaml:"member_key"`
	Membership string   `yaml:"membership"`
	Synth      []string `yaml:"synth"`
}

// Recipe: 配方策略。
type Recipe struct {
	Keys    []string `yaml:"keys"`
	Default string   `yaml:"default"`
}

// Definition: 目录中的一台仪器。
type Definition struct {
	Description   string `yaml:"description"`
	SingleArg     bool   `yaml:"single_arg"`
	Naming        Plugin `yaml:"naming"`
	Flag          Plugin `yaml:"flag"`
	Store         Plugin `yaml:"store"`
	SubFrames     Plugin `yaml:"subframes"`
	Translate     Plugin `yaml:"translate"`
	Number        Number `yaml:"number"`
	Group         Group  `yaml:"group"`
	Recipe        Recipe `yaml:"recipe"`
	ContainerType string `yaml:"container_type"`
}

// Catalog: 仪器目录。Shared 只承载 YAML 锚点。
type Catalog struct {
	Shared      yaml.Node             `yaml:"shared"`
	Instruments map[string]Definition `yaml:"instruments"`
}

// Parse 严格解析目录（未知字段报错）。
func Parse(b []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var c Catalog
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("catalog: %w: %w", contract.ErrCatalog, err)
	}
	if c.Instruments == nil {
		c.Instruments = map[string]Definition{}
	}
	return &c, nil
}

// Builtin 返回内置目录。
func Builtin() (*Catalog, error) { return Parse(builtin) }

// LoadFile 读取用户目录文件。
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(b)
}

// Load 返回内置目录；path 非空时以用户目录按仪器名整体覆盖。
func Load(path string) (*Catalog, error) {
	c, err := Builtin()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}
	u, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return c.Overlay(u), nil
}

// Overlay 返回新目录：o 中的同名仪器替换 c 中的定义。
func (c *Catalog) Overlay(o *Catalog) *Catalog {
	out := &Catalog{Instruments: make(map[string]Definition, len(c.Instruments)+len(o.Instruments))}
	for k, v := range c.Instruments {
		out.Instruments[k] = v
	}
	for k, v := range o.Instruments {
		out.Instruments[k] = v
	}
	return out
}

// Names 返回排序后的仪器名。
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.Instruments))
	for k := range c.Instruments {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Env: 装配期依赖。Cache 在一次运行内共享；nil 时每台仪器各建一个。
type Env struct {
	DataDir string
	Cache   *discover.Cache
}

func kindOr(k, def string) string {
	if k == "" {
		return def
	}
	return k
}

func optNode(p *Plugin) *yaml.Node { return &p.Options }

// Build 按定义装配仪器策略。
func (c *Catalog) Build(name string, env Env) (*frame.Instrument, error) {
	def, ok := c.Instruments[name]
	if !ok {
		return nil, fmt.Errorf("instrument %q not in catalog: %w", name, contract.ErrCatalog)
	}
	wrap := func(part string, err error) error {
		if errors.Is(err, contract.ErrCatalog) {
			return fmt.Errorf("%s %s: %w", name, part, err)
		}
		return fmt.Errorf("%s %s: %w: %w", name, part, contract.ErrCatalog, err)
	}
	unknown := func(part, kind string) error {
		return fmt.Errorf("%s %s: unknown kind %q: %w", name, part, kind, contract.ErrCatalog)
	}

	in := &frame.Instrument{Name: name, SingleArg: def.SingleArg, ContainerType: def.ContainerType}

	nk := kindOr(def.Naming.Kind, "template")
	newNamer, ok := registry.Namer[nk]
	if !ok {
		return nil, unknown("naming", nk)
	}
	namer, err := newNamer(optNode(&def.Naming))
	if err != nil {
		return nil, wrap("naming", err)
	}
	in.Namer = namer

	sk := kindOr(def.Store.Kind, "hds")
	newStore, ok := registry.Store[sk]
	if !ok {
		return nil, unknown("store", sk)
	}
	if in.Store, err = newStore(optNode(&def.Store)); err != nil {
		return nil, wrap("store", err)
	}

	fk := kindOr(def.Flag.Kind, "derived")
	newFlag, ok := registry.FlagNamer[fk]
	if !ok {
		return nil, unknown("flag", fk)
	}
	dir := env.DataDir
	if dir == "" {
		dir = "."
	}
	if in.Flag, err = newFlag(optNode(&def.Flag), registry.Env{Namer: namer, Store: in.Store, DataDir: dir, Cache: env.Cache}); err != nil {
		return nil, wrap("flag", err)
	}

	rk := kindOr(def.SubFrames.Kind, "flat")
	newResolver, ok := registry.Resolver[rk]
	if !ok {
		return nil, unknown("subframes", rk)
	}
	if in.Resolver, err = newResolver(optNode(&def.SubFrames)); err != nil {
		return nil, wrap("subframes", err)
	}

	tk := kindOr(def.Translate.Kind, "table")
	newTranslator, ok := registry.Translator[tk]
	if !ok {
		return nil, unknown("translate", tk)
	}
	if in.Translator, err = newTranslator(optNode(&def.Translate)); err != nil {
		return nil, wrap("translate", err)
	}

	switch rule := frame.NumberRule(kindOr(def.Number.Rule, string(frame.NumberTrailing))); rule {
	case frame.NumberTrailing, frame.NumberDelimited, frame.NumberHeader:
		in.Number = rule
		in.NumberKey = def.Number.Key
	default:
		return nil, unknown("number", string(rule))
	}

	in.Group = frame.GroupPolicy{
		Key:       def.Group.Key,
		NumberKey: def.Group.NumberKey,
		MemberKey: def.Group.MemberKey,
		Synth:     def.Group.Synth,
	}
	if m := def.Group.Membership; m != "" {
		p, ok := frame.Predicates[m]
		if !ok {
			return nil, unknown("membership", m)
		}
		in.Group.Member = p
	}
	in.Recipe = frame.RecipePolicy{Keys: def.Recipe.Keys, Default: def.Recipe.Default}
	return in, nil
}
