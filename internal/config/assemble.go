package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"oracframe/internal/instrument"
	"oracframe/pkg/contract"
	"oracframe/pkg/frame"
	"oracframe/plugins/flag/discover"
)

var levels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate 对最小必要边界做静态校验。
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Instrument) == "" {
		return errors.New("config: instrument not set")
	}
	if lv := strings.ToLower(strings.TrimSpace(cfg.Logging.Level)); lv != "" && !levels[lv] {
		return fmt.Errorf("config: unknown logging level %q", cfg.Logging.Level)
	}
	if cfg.DataDir != "" {
		st, err := os.Stat(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("config: data_dir: %w", err)
		}
		if !st.IsDir() {
			return fmt.Errorf("config: data_dir %s is not a directory", cfg.DataDir)
		}
	}
	return nil
}

// Assemble 读取目录（内置 + 可选覆盖）并装配所选仪器。
// 发现式旗标缓存在此创建一次，运行期内共享。
func Assemble(cfg Config) (*frame.Instrument, *instrument.Catalog, error) {
	cat, err := instrument.Load(cfg.Catalog)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := cat.Instruments[cfg.Instrument]; !ok {
		return nil, cat, fmt.Errorf("config: instrument %q not in catalog (known: %s): %w",
			cfg.Instrument, strings.Join(cat.Names(), ", "), contract.ErrCatalog)
	}
	in, err := cat.Build(cfg.Instrument, instrument.Env{DataDir: cfg.DataDir, Cache: discover.NewCache()})
	if err != nil {
		return nil, cat, err
	}
	return in, cat, nil
}
