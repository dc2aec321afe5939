package discover

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"oracframe/pkg/contract"
	"oracframe/pkg/header"
)

// Options: 发现式旗标选项。
type Options struct {
	// Glob: 目录内旗标文件基名的匹配模式，如 ".rxh3*.ok"。
	Glob string `yaml:"glob"`
	// Fixed: 哑名中使用的固定部分。
	Fixed string `yaml:"fixed"`
	// Width: 哑名中观测号补零宽度。
	Width int `yaml:"width"`
	// ObsNumKey / DateKey: 从原始文件头提取观测号与 UT 日期的键。
	ObsNumKey string `yaml:"obsnum_key"`
	DateKey   string `yaml:"date_key"`
}

// Discover 适用于无法由文件名推导旗标的仪器：
// 扫描数据目录中的旗标文件，读取其首行指向的原始文件头，建立 旗标→(prefix, obsnum) 关联。
// 未命中时返回哑旗标名，而非错误。
type Discover struct {
	dir   string
	opts  Options
	store contract.Store
	cache *Cache
}

var (
	_ contract.FlagNamer  = (*Discover)(nil)
	_ contract.RawLocator = (*Discover)(nil)
)

// New 创建发现器。cache 由调用方注入（同一运行内共享）。
func New(dir string, store contract.Store, cache *Cache, opts *Options) *Discover {
	o := Options{Glob: ".*.ok", Width: 5, ObsNumKey: "OBSNUM", DateKey: "DATE-OBS"}
	if opts != nil {
		if opts.Glob != "" {
			o.Glob = opts.Glob
		}
		if opts.Width > 0 {
			o.Width = opts.Width
		}
		if opts.ObsNumKey != "" {
			o.ObsNumKey = opts.ObsNumKey
		}
		if opts.DateKey != "" {
			o.DateKey = opts.DateKey
		}
		o.Fixed = opts.Fixed
	}
	if cache == nil {
		cache = NewCache()
	}
	if dir == "" {
		dir = "."
	}
	return &Discover{dir: dir, opts: o, store: store, cache: cache}
}

// FlagName 返回已发现的旗标基名；未发现时返回哑名。
func (d *Discover) FlagName(prefix string, obsnum int) string {
	if flag, _, ok := d.lookup(prefix, obsnum); ok {
		return filepath.Base(flag)
	}
	return d.Dummy(prefix, obsnum)
}

// LocateRaw 返回旗标所指的原始文件名。
func (d *Discover) LocateRaw(prefix string, obsnum int) (string, bool) {
	_, e, ok := d.lookup(prefix, obsnum)
	if !ok || e.Raw == "" {
		return "", false
	}
	return e.Raw, true
}

// Dummy 返回哑旗标名（目录中不存在对应文件）。
func (d *Discover) Dummy(prefix string, obsnum int) string {
	return fmt.Sprintf(".%sdummy_%s_%0*d.ok", d.opts.Fixed, prefix, d.opts.Width, obsnum)
}

func (d *Discover) lookup(prefix string, obsnum int) (string, Entry, bool) {
	if flag, e, ok := d.cache.Lookup(d.dir, prefix, obsnum); ok {
		return flag, e, true
	}
	// 未命中：扫描一次目录，只处理未见过的旗标。
	d.Scan()
	return d.cache.Lookup(d.dir, prefix, obsnum)
}

// Scan 扫描数据目录并缓存新旗标；返回新增条目数。
// 单个旗标读取失败时跳过，不影响其余旗标。
func (d *Discover) Scan() int {
	ents, err := os.ReadDir(d.dir)
	if err != nil {
		return 0
	}
	sort.Slice(ents, func(i, j int) bool { return ents[i].Name() < ents[j].Name() })
	added := 0
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(d.opts.Glob, e.Name()); !ok {
			continue
		}
		flag := filepath.Join(d.dir, e.Name())
		if _, seen := d.cache.Get(flag); seen {
			continue
		}
		entry, ok := d.inspect(flag)
		if !ok {
			continue
		}
		if d.cache.Put(d.dir, flag, entry) {
			added++
		}
	}
	return added
}

// inspect 读取旗标首行 → 打开原始文件头 → 提取观测号与 UT 日期前缀。
func (d *Discover) inspect(flag string) (Entry, bool) {
	line, err := firstLine(flag)
	if err != nil || line == "" {
		return Entry{}, false
	}
	raw := line
	if !filepath.IsAbs(raw) {
		raw = filepath.Join(d.dir, raw)
	}
	if d.store == nil {
		return Entry{}, false
	}
	c, err := d.store.Open(raw)
	if err != nil {
		return Entry{}, false
	}
	defer c.Close()
	hdr, err := c.Header("")
	if err != nil {
		return Entry{}, false
	}
	obsnum, ok := hdr.Int(d.opts.ObsNumKey)
	if !ok {
		return Entry{}, false
	}
	prefix, ok := datePrefix(hdr, d.opts.DateKey)
	if !ok {
		return Entry{}, false
	}
	return Entry{Prefix: prefix, ObsNum: obsnum, Raw: line}, true
}

// datePrefix 由 "YYYY-MM-DD..." 或 "YYYYMMDD" 取出 UT 日期前缀。
func datePrefix(hdr header.Raw, key string) (string, bool) {
	s, ok := hdr.String(key)
	if !ok {
		if s, ok = hdr.String("UTDATE"); !ok {
			return "", false
		}
	}
	if len(s) >= 10 && s[4] == '-' && s[7] == '-' {
		return s[0:4] + s[5:7] + s[8:10], true
	}
	if len(s) >= 8 {
		return s[:8], true
	}
	return "", false
}

func firstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if sc.Scan() {
		return strings.TrimSpace(sc.Text()), nil
	}
	return "", sc.Err()
}
