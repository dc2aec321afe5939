package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
)

// Defaults 返回带有安全默认值的 Config 雏形。
// 注意：Instrument 不设默认（必须由 JSON/ENV/CLI 提供）。
func Defaults() Config {
	return Config{
		DataDir: ".",
		Logging: Logging{Level: "info"},
	}
}

// LoadJSON 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）；空值不覆盖。
func Merge(base, over Config) Config {
	out := base
	if v := strings.TrimSpace(over.Instrument); v != "" {
		out.Instrument = strings.ToLower(v)
	}
	if v := strings.TrimSpace(over.DataDir); v != "" {
		out.DataDir = v
	}
	if v := strings.TrimSpace(over.Catalog); v != "" {
		out.Catalog = v
	}
	if v := strings.TrimSpace(over.Logging.Level); v != "" {
		out.Logging.Level = v
	}
	if v := strings.TrimSpace(over.Logging.Dir); v != "" {
		out.Logging.Dir = v
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 前缀 ORACFRAME_：INSTRUMENT, DATA_DIR, CATALOG, LOG_LEVEL, LOG_DIR。
// ORAC_INSTRUMENT / ORAC_DATA_IN 为兼容旧环境的后备，前缀键优先。
func EnvOverlay(environ []string) (Config, error) {
	var over, legacy Config
	for _, kv := range environ {
		eq := strings.IndexByte(kv, '=')
		if eq <= 0 {
			continue
		}
		key, val := kv[:eq], strings.TrimSpace(kv[eq+1:])
		switch key {
		case "ORACFRAME_INSTRUMENT":
			over.Instrument = val
		case "ORACFRAME_DATA_DIR":
			over.DataDir = val
		case "ORACFRAME_CATALOG":
			over.Catalog = val
		case "ORACFRAME_LOG_LEVEL":
			over.Logging.Level = val
		case "ORACFRAME_LOG_DIR":
			over.Logging.Dir = val
		case "ORAC_INSTRUMENT":
			legacy.Instrument = val
		case "ORAC_DATA_IN":
			legacy.DataDir = val
		}
	}
	return Merge(legacy, over), nil
}
