package discover

import "sync"

// Entry: 旗标文件指向的观测身份。
type Entry struct {
	Prefix string
	ObsNum int
	// Raw: 旗标内容给出的原始文件名（原样，通常相对数据目录）。
	Raw string
}

type obsKey struct {
	dir    string
	prefix string
	obsnum int
}

// Cache: 旗标发现缓存（进程内共享）。
// 约束：
// 1) 以旗标完整路径为主键；另维护 (目录, prefix, obsnum) 二级索引，命中后 O(1)；
// 2) 仅追加，不失效（旗标一旦写出即视为不可变）；
// 3) 读多写少，RWMutex 协调并发读者。
type Cache struct {
	mu     sync.RWMutex
	byFlag map[string]Entry
	byObs  map[obsKey]string
}

// NewCache 创建空缓存；每次流水线运行构造一次并注入各发现器。
func NewCache() *Cache {
	return &Cache{byFlag: map[string]Entry{}, byObs: map[obsKey]string{}}
}

// Get 按旗标路径查询。
func (c *Cache) Get(flag string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byFlag[flag]
	return e, ok
}

// Lookup 按 (目录, prefix, obsnum) 查询旗标路径。
func (c *Cache) Lookup(dir, prefix string, obsnum int) (string, Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	flag, ok := c.byObs[obsKey{dir: dir, prefix: prefix, obsnum: obsnum}]
	if !ok {
		return "", Entry{}, false
	}
	return flag, c.byFlag[flag], true
}

// Put 追加条目；已存在的旗标保持原值。返回是否新增。
func (c *Cache) Put(dir, flag string, e Entry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byFlag[flag]; ok {
		return false
	}
	c.byFlag[flag] = e
	k := obsKey{dir: dir, prefix: e.Prefix, obsnum: e.ObsNum}
	if _, ok := c.byObs[k]; !ok {
		c.byObs[k] = flag
	}
	return true
}

// Len 返回条目数。
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byFlag)
}
