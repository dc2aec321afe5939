package config

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// 以 UFTI 为例，数据目录为当前目录，日志写到标准错误。
func DefaultTemplateConfig() Config {
	d := Defaults()
	return Config{
		Instrument: "ufti",
		DataDir:    d.DataDir,
		Catalog:    "",
		Logging:    Logging{Level: d.Logging.Level, Dir: ""},
	}
}
