package frame

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"oracframe/internal/diag"
	"oracframe/pkg/contract"
	"oracframe/pkg/header"
	"oracframe/plugins/flag/derived"
)

// State: Frame 生命周期。
type State int

const (
	Empty State = iota
	Configured
	Renamed
)

func (s State) String() string {
	switch s {
	case Configured:
		return "configured"
	case Renamed:
		return "renamed"
	default:
		return "empty"
	}
}

// Frame: 一次观测的原始文件、工作文件与派生身份。
// 同一 Frame 不支持并发调用；不同 Frame 间互不共享可变状态。
type Frame struct {
	inst    *Instrument
	log     *diag.Logger
	dataDir string

	state    State
	raw      []string
	files    []string
	subs     contract.SubFrames
	hdr      header.Set
	merged   header.Raw
	canon    header.Canonical
	group    string
	number   int
	recipe   string
	children []*Frame
}

// Option 配置 Frame。
type Option func(*Frame)

// WithLogger 指定日志器（nil 为 no-op）。
func WithLogger(l *diag.Logger) Option { return func(f *Frame) { f.log = l } }

// WithDataDir 指定 Obs 形式解析原始文件时使用的数据目录。
func WithDataDir(dir string) Option { return func(f *Frame) { f.dataDir = dir } }

// New 创建空 Frame。
func New(inst *Instrument, opts ...Option) *Frame {
	f := &Frame{inst: inst, dataDir: ".", number: -1}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Instrument 返回所属仪器。
func (f *Frame) Instrument() *Instrument { return f.inst }

// State 返回当前状态。
func (f *Frame) State() State { return f.state }

// Configure 由文件列表或 (prefix, obsnum) 填充 Frame。
// 只有用法错误会返回；容器不可读记录告警后以空头/零子帧继续。
func (f *Frame) Configure(src Source) error {
	if !f.inst.complete() {
		return fmt.Errorf("configure: incomplete instrument: %w", contract.ErrCatalog)
	}
	if err := src.validate(); err != nil {
		diag.IncOp("frame", "configure", "error")
		return err
	}
	var raw []string
	if src.Obs != nil {
		if f.inst.SingleArg {
			diag.IncOp("frame", "configure", "error")
			return fmt.Errorf("configure: %s only accepts a file list: %w", f.inst.Name, contract.ErrUsage)
		}
		raw = f.resolveObs(*src.Obs)
	} else {
		raw = append([]string(nil), src.Files...)
	}

	tm := f.log.Start("frame", "configure", raw[0])
	f.reset()
	f.raw = raw
	subs, err := f.inst.Resolver.Resolve(f.inst.Store, raw)
	if err != nil {
		code := string(diag.Classify(err))
		f.log.Warn("frame", code, err.Error(), raw[0], nil)
		diag.IncError("frame", code)
	}
	f.subs = subs
	f.files = raw
	if len(subs.Files) > 0 && len(subs.Extensions) == 0 {
		f.files = append([]string(nil), subs.Files...)
	}
	f.hdr = subs.Headers
	f.merged = f.hdr.Merged()
	f.canon = f.inst.Translator.Translate(f.merged)
	f.state = Configured
	f.number = f.computeNumber()
	f.FindGroup()
	f.recipe = f.computeRecipe()
	for i, ext := range subs.Extensions {
		f.children = append(f.children, f.child(subs.Names[i], subs.Files[i], ext))
	}
	tm.Finish("configured", int64(f.FindNSubs()))
	diag.IncOp("frame", "configure", "success")
	return nil
}

func (f *Frame) reset() {
	f.state = Empty
	f.raw, f.files, f.children = nil, nil, nil
	f.subs = contract.SubFrames{}
	f.hdr = header.Set{}
	f.merged, f.canon = header.Raw{}, header.Canonical{}
	f.group, f.recipe = "", ""
	f.number = -1
}

// child 由 MEF 扩展派生子 Frame：头为主头叠加扩展头。
func (f *Frame) child(name, file string, h header.Raw) *Frame {
	c := New(f.inst, WithLogger(f.log), WithDataDir(f.dataDir))
	c.state = Configured
	c.raw = f.raw
	c.files = []string{file}
	c.subs = contract.SubFrames{Names: []string{name}, Files: []string{file}, Headers: header.Set{Subs: []header.Raw{h}}}
	c.hdr = c.subs.Headers
	c.merged = h.Clone()
	c.canon = f.inst.Translator.Translate(c.merged)
	c.number = f.number
	c.FindGroup()
	c.recipe = c.computeRecipe()
	return c
}

// resolveObs: 发现式旗标优先；否则在数据目录中按 Match 取全部成员（有序）；都不中时回退 RawName。
func (f *Frame) resolveObs(o ObsID) []string {
	join := func(name string) string {
		if filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(f.dataDir, name)
	}
	if loc, ok := f.inst.Flag.(contract.RawLocator); ok {
		if raw, ok := loc.LocateRaw(o.Prefix, o.Num); ok {
			return []string{join(raw)}
		}
	}
	re := f.inst.Namer.Match(o.Prefix, o.Num)
	var out []string
	if ents, err := os.ReadDir(f.dataDir); err == nil {
		for _, e := range ents {
			if !e.IsDir() && re.MatchString(e.Name()) {
				out = append(out, join(e.Name()))
			}
		}
	}
	if len(out) == 0 {
		out = []string{join(f.inst.Namer.RawName(o.Prefix, o.Num))}
	}
	return out
}

// FindGroup 推导并记录组标识；仅依赖当前头，幂等。
func (f *Frame) FindGroup() string {
	g := f.inst.Group
	key := g.Key
	if key == "" {
		key = "DRGROUP"
	}
	if s, ok := f.merged.String(key); ok && s != "" {
		f.group = s
		return s
	}
	if g.NumberKey != "" {
		if n, ok := f.merged.String(g.NumberKey); ok && n != "" {
			member := true
			if g.Member != nil {
				member = g.Member(f.merged[g.MemberKey])
			}
			if member {
				f.group = n
			} else {
				f.group = strconv.Itoa(f.number)
			}
			return f.group
		}
	}
	var b strings.Builder
	for _, k := range g.Synth {
		if header.Known(k) {
			if v, ok := f.canon.Get(k); ok && v != nil {
				b.WriteString(synthPart(v))
				continue
			}
		}
		if v, ok := f.merged[k]; ok && v != nil {
			b.WriteString(synthPart(v))
		}
	}
	f.group = b.String()
	if f.group == "" {
		f.group = strconv.Itoa(f.number)
	}
	return f.group
}

// synthPart 格式化合成组键的一段；浮点固定用定点记法，不出现指数。
func synthPart(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	}
	return header.ToString(v)
}

// Group 返回最近一次推导的组标识。
func (f *Frame) Group() string { return f.group }

// FindNSubs 返回子帧数（扁平格式即原始文件数；容器不可读为 0）。
func (f *Frame) FindNSubs() int { return f.subs.Count() }

// SubFrameNames 返回容器内子帧名。
func (f *Frame) SubFrameNames() []string { return append([]string(nil), f.subs.Names...) }

// Number 返回观测号；无法确定时为 -1。
func (f *Frame) Number() int { return f.number }

func (f *Frame) computeNumber() int {
	if f.inst.Number == NumberHeader {
		return NumberFromHeader(f.merged, f.inst.NumberKey)
	}
	if len(f.raw) == 0 {
		return -1
	}
	return NumberFromName(f.inst.Number, f.raw[0], f.inst.Namer.Suffix())
}

func (f *Frame) computeRecipe() string {
	for _, k := range f.inst.Recipe.Keys {
		if s, ok := f.merged.String(k); ok && s != "" {
			return s
		}
	}
	return f.inst.Recipe.Default
}

// Recipe 返回配方名。
func (f *Frame) Recipe() string { return f.recipe }

// RawName 返回 (prefix, obsnum) 的原始文件名。
func (f *Frame) RawName(prefix string, obsnum int) string {
	return f.inst.Namer.RawName(prefix, obsnum)
}

// FlagName 返回旗标文件名；仪器未配置旗标策略时按推导式处理。
func (f *Frame) FlagName(prefix string, obsnum int) string {
	if f.inst.Flag != nil {
		return f.inst.Flag.FlagName(prefix, obsnum)
	}
	return derived.FromRaw(f.RawName(prefix, obsnum), f.inst.Namer.Suffix(), ".ok")
}

// CanonicalHeader 读取规范头（接受 ORAC_ 前缀）。
func (f *Frame) CanonicalHeader(key string) (any, bool) {
	return f.canon.Get(key)
}

// Canonical 返回规范头副本。
func (f *Frame) Canonical() header.Canonical {
	out := make(header.Canonical, len(f.canon))
	for k, v := range f.canon {
		out[k] = v
	}
	return out
}

// RawHeader 读取合并后的原始头。
func (f *Frame) RawHeader(key string) (any, bool) {
	v, ok := f.merged[key]
	return v, ok && v != nil
}

// Headers 返回两级原始头。
func (f *Frame) Headers() header.Set { return f.hdr }

// Raw 返回原始文件列表。
func (f *Frame) Raw() []string { return append([]string(nil), f.raw...) }

// Files 返回当前工作文件列表。
func (f *Frame) Files() []string { return append([]string(nil), f.files...) }

// NFiles 返回工作文件数。
func (f *Frame) NFiles() int { return len(f.files) }

// Children 返回 MEF 扩展派生的子 Frame。
func (f *Frame) Children() []*Frame { return f.children }
