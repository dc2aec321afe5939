package frame

import (
	"oracframe/pkg/contract"
	"oracframe/pkg/header"
)

// NumberRule: 观测号提取规则。
type NumberRule string

const (
	// NumberTrailing: 原始基名末尾的数字串（去前导零）。
	NumberTrailing NumberRule = "trailing"
	// NumberDelimited: 后缀前形如 _NNNNN_dd_dd 的数字串。
	NumberDelimited NumberRule = "delimited"
	// NumberHeader: 直接读头（缺省 OBSNUM）。
	NumberHeader NumberRule = "header"
)

// Predicate: 组成员判定。不同仪器对逻辑值的编码不同，分别命名，不做统一。
type Predicate func(v any) bool

// MemberT: "T" 或逻辑真即成员。
func MemberT(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return v != nil && header.ToString(v) == "T"
}

// MemberOne: 1 或 "1" 即成员。
func MemberOne(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(bool); ok {
		return false
	}
	return header.ToString(v) == "1"
}

// Predicates 按目录中的名字查找成员判定。
var Predicates = map[string]Predicate{
	"member_t":   MemberT,
	"member_one": MemberOne,
}

// GroupPolicy: 组标识推导。
type GroupPolicy struct {
	// Key: 直接给出组名的原始键，缺省 DRGROUP。
	Key string
	// NumberKey/MemberKey/Member: 组号键与成员判定；非成员自成一组（观测号）。
	NumberKey string
	MemberKey string
	Member    Predicate
	// Synth: 合成键（先查规范头，再查原始头），按序拼接。
	Synth []string
}

// RecipePolicy: 先按序读头，均缺省时用 Default。
type RecipePolicy struct {
	Keys    []string
	Default string
}

// Instrument: 一台仪器的全部策略与常量（由目录装配）。
type Instrument struct {
	Name       string
	Namer      contract.Namer
	Flag       contract.FlagNamer
	Store      contract.Store
	Resolver   contract.SubFrameResolver
	Translator contract.Translator
	// SingleArg: 仅允许以文件列表配置（禁止 prefix/obsnum 形式）。
	SingleArg bool
	Number    NumberRule
	NumberKey string
	Group     GroupPolicy
	Recipe    RecipePolicy
	// ContainerType: InOut 新建容器时的类型名。
	ContainerType string
}

func (in *Instrument) complete() bool {
	return in != nil && in.Namer != nil && in.Store != nil && in.Resolver != nil && in.Translator != nil
}
