package config

// Config: 运行期只读配置（一次解析，运行期不变）。
// JSON 使用 snake_case；未知字段在解析期失败。
type Config struct {
	// Instrument: 目录中的仪器名（如 ufti、cgs4、acsis）。
	Instrument string `json:"instrument"`
	// DataDir: 原始数据目录；以 (prefix, obsnum) 配置 Frame 与发现旗标时使用。
	DataDir string `json:"data_dir"`
	// Catalog: 额外 YAML 目录路径，按仪器名覆盖内置目录。
	Catalog string  `json:"catalog"`
	Logging Logging `json:"logging"`
}

// Logging: 日志等级与输出目录；目录为空时写到标准错误。
type Logging struct {
	Level string `json:"level"`
	Dir   string `json:"dir"`
}
