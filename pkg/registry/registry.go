package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"oracframe/internal/translate"
	"oracframe/pkg/contract"
	chds "oracframe/plugins/container/hds"
	cmef "oracframe/plugins/container/mef"
	fder "oracframe/plugins/flag/derived"
	fdsc "oracframe/plugins/flag/discover"
	ntpl "oracframe/plugins/naming/template"
	sflat "oracframe/plugins/subframe/flat"
	shds "oracframe/plugins/subframe/hds"
	smef "oracframe/plugins/subframe/mef"
)

// strictDecode: 将目录中的原样 YAML 节点严格解码，拒绝未知字段。
// 别名先展开，保证引用其他锚点的片段可独立重编码。
func strictDecode(node *yaml.Node, v any) error {
	if node == nil || node.Kind == 0 {
		// 保持零值（默认选项）
		return nil
	}
	b, err := yaml.Marshal(expand(node))
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// expand 深拷贝节点树并以目标替换别名节点。
func expand(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	cp := *n
	cp.Anchor = ""
	cp.Content = make([]*yaml.Node, len(n.Content))
	for i, c := range n.Content {
		cp.Content[i] = expand(c)
	}
	return &cp
}

// Env: 需要运行期上下文的工厂（发现式旗标）所用依赖。
type Env struct {
	Namer   contract.Namer
	Store   contract.Store
	DataDir string
	Cache   *fdsc.Cache
}

// NewNamer 工厂签名：接收原样 YAML Options。
type NewNamer func(raw *yaml.Node) (contract.Namer, error)

// NewFlagNamer 工厂签名：接收原样 YAML Options 与运行期依赖。
type NewFlagNamer func(raw *yaml.Node, env Env) (contract.FlagNamer, error)

// NewStore 工厂签名。
type NewStore func(raw *yaml.Node) (contract.Store, error)

// NewResolver 工厂签名。
type NewResolver func(raw *yaml.Node) (contract.SubFrameResolver, error)

// NewTranslator 工厂签名。
type NewTranslator func(raw *yaml.Node) (contract.Translator, error)

// Namer 工厂注册表（显式、零反射）。
var Namer = map[string]NewNamer{
	// template: 占位符模板 + 逆向解析
	"template": func(raw *yaml.Node) (contract.Namer, error) {
		var opts ntpl.Options
		if err := strictDecode(raw, &opts); err != nil {
			return nil, err
		}
		return ntpl.New(&opts)
	},
}

// FlagNamer 工厂注册表。
var FlagNamer = map[string]NewFlagNamer{
	// derived: 原始名 → ".<base>.ok"
	"derived": func(raw *yaml.Node, env Env) (contract.FlagNamer, error) {
		var opts fder.Options
		if err := strictDecode(raw, &opts); err != nil {
			return nil, err
		}
		if env.Namer == nil {
			return nil, fmt.Errorf("derived flag needs a namer: %w", contract.ErrCatalog)
		}
		return fder.New(env.Namer, &opts), nil
	},
	// discover: 扫描数据目录中的旗标文件，失败回退哑名
	"discover": func(raw *yaml.Node, env Env) (contract.FlagNamer, error) {
		var opts fdsc.Options
		if err := strictDecode(raw, &opts); err != nil {
			return nil, err
		}
		return fdsc.New(env.DataDir, env.Store, env.Cache, &opts), nil
	},
}

// Store 工厂注册表。
var Store = map[string]NewStore{
	// hds: 组件树容器（.sdf）
	"hds": func(raw *yaml.Node) (contract.Store, error) {
		var opts chds.Options
		if err := strictDecode(raw, &opts); err != nil {
			return nil, err
		}
		return chds.New(&opts), nil
	},
	// fits: 单 HDU / 多扩展 FITS（只读）
	"fits": func(raw *yaml.Node) (contract.Store, error) {
		var opts cmef.Options
		if err := strictDecode(raw, &opts); err != nil {
			return nil, err
		}
		return cmef.New(&opts), nil
	},
}

// Resolver 工厂注册表。
var Resolver = map[string]NewResolver{
	"flat": func(raw *yaml.Node) (contract.SubFrameResolver, error) {
		var opts sflat.Options
		if err := strictDecode(raw, &opts); err != nil {
			return nil, err
		}
		return sflat.New(&opts), nil
	},
	"hds": func(raw *yaml.Node) (contract.SubFrameResolver, error) {
		var opts shds.Options
		if err := strictDecode(raw, &opts); err != nil {
			return nil, err
		}
		return shds.New(&opts), nil
	},
	"mef": func(raw *yaml.Node) (contract.SubFrameResolver, error) {
		var opts smef.Options
		if err := strictDecode(raw, &opts); err != nil {
			return nil, err
		}
		return smef.New(&opts), nil
	},
}

// Translator 工厂注册表。
var Translator = map[string]NewTranslator{
	// table: 直接映射 + 命名派生规则
	"table": func(raw *yaml.Node) (contract.Translator, error) {
		var opts translate.Options
		if err := strictDecode(raw, &opts); err != nil {
			return nil, err
		}
		return translate.New(&opts)
	},
}
