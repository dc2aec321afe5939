package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	cfgpkg "oracframe/internal/config"
	"oracframe/internal/diag"
	"oracframe/internal/instrument"
	"oracframe/internal/pipeline"
	"oracframe/pkg/contract"
	"oracframe/pkg/frame"
)

// 退出码
const (
	exitOK     = 0
	exitRun    = 1
	exitUsage  = 2
	exitConfig = 3
)

const usageText = `用法:
  oracframe [flags] names <prefix> <obsnum>
  oracframe [flags] info <file>...
  oracframe [flags] info --ut <prefix> --obs <n>
  oracframe [flags] scan <prefix> <list>      列表形如 1:5,7,10-12
  oracframe [flags] instruments
  oracframe --init-config [DIR]
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	config     string
	instrument string
	dataDir    string
	catalog    string
	logLevel   string
	logDir     string
	initDir    string
	ut         string
	obs        int
	inout      []string
	jobs       int
}

func run(args []string, stdout, stderr io.Writer) int {
	start := time.Now()
	var o options
	fs := flag.NewFlagSet("oracframe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}
	fs.StringVarP(&o.config, "config", "c", "", "配置文件路径（JSON）；缺省读取 ./config.json（若存在）")
	fs.StringVarP(&o.instrument, "instrument", "i", "", "仪器名（覆盖配置）")
	fs.StringVarP(&o.dataDir, "data-dir", "d", "", "原始数据目录（覆盖配置）")
	fs.StringVar(&o.catalog, "catalog", "", "额外 YAML 仪器目录（按仪器名覆盖内置目录）")
	fs.StringVar(&o.logLevel, "log-level", "", "日志等级 debug|info|warn|error")
	fs.StringVar(&o.logDir, "log-dir", "", "日志目录；缺省写标准错误")
	fs.StringVar(&o.initDir, "init-config", "", "在指定目录生成默认 config.json（已存在则不覆盖）；不带值时为当前目录")
	fs.Lookup("init-config").NoOptDefVal = "."
	fs.StringVar(&o.ut, "ut", "", "info: UT 日期前缀（与 --obs 一起使用）")
	fs.IntVar(&o.obs, "obs", -1, "info: 观测号（与 --ut 一起使用）")
	fs.IntVarP(&o.jobs, "concurrency", "j", 4, "scan: 并发度")
	fs.StringSliceVar(&o.inout, "inout", nil, "info: 依次对每个工作文件执行 InOut 的后缀，可重复")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if o.initDir != "" {
		if err := initConfig(o.initDir); err != nil {
			fmt.Fprintf(stderr, "生成默认配置失败: %v\n", err)
			return exitConfig
		}
		return exitOK
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(stderr, "配置解析失败: %v\n", err)
		return exitConfig
	}
	if rest[0] == "instruments" {
		return listInstruments(cfg, stdout, stderr)
	}
	if err := cfgpkg.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "配置校验失败: %v\n", err)
		return exitConfig
	}

	var logger *diag.Logger
	if cfg.Logging.Dir != "" {
		logger = diag.NewLogger("", cfg.Logging.Level, cfg.Logging.Dir)
	} else {
		logger = diag.NewWriterLogger(stderr, cfg.Logging.Level)
	}
	inst, _, err := cfgpkg.Assemble(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "装配失败: %v\n", err)
		logger.Error("cli", string(diag.Classify(err)), err.Error(), "", &start)
		return exitConfig
	}
	logger.Info("cli", "assembled", "", "", map[string]string{"instrument": inst.Name, "data_dir": cfg.DataDir})

	var code int
	switch rest[0] {
	case "names":
		code = names(inst, rest[1:], stdout, stderr)
	case "info":
		code = info(inst, cfg, o, rest[1:], logger, stdout, stderr)
	case "scan":
		code = scan(inst, cfg, o, rest[1:], logger, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "未知子命令 %q\n", rest[0])
		fs.Usage()
		return exitUsage
	}
	diag.ObserveDuration("cli", rest[0], time.Since(start).Milliseconds())
	return code
}

func loadConfig(o options) (cfgpkg.Config, error) {
	cfg := cfgpkg.Defaults()
	path := o.config
	if path == "" {
		path = os.Getenv("ORACFRAME_CONFIG_FILE")
	}
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		base, err := cfgpkg.LoadJSON(path, nil)
		if err != nil {
			return cfg, err
		}
		cfg = cfgpkg.Merge(cfg, base)
	}
	env, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		return cfg, err
	}
	cfg = cfgpkg.Merge(cfg, env)
	return cfgpkg.Merge(cfg, cfgpkg.Config{
		Instrument: o.instrument,
		DataDir:    o.dataDir,
		Catalog:    o.catalog,
		Logging:    cfgpkg.Logging{Level: o.logLevel, Dir: o.logDir},
	}), nil
}

func names(inst *frame.Instrument, args []string, stdout, stderr io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(stderr, "names 需要 <prefix> <obsnum>")
		return exitUsage
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		fmt.Fprintf(stderr, "观测号无效: %q\n", args[1])
		return exitUsage
	}
	f := frame.New(inst)
	fmt.Fprintf(stdout, "raw: %s\nflag: %s\n", f.RawName(args[0], n), f.FlagName(args[0], n))
	return exitOK
}

type inoutPair struct {
	Suffix string `json:"suffix"`
	In     string `json:"in"`
	Out    string `json:"out"`
}

type frameInfo struct {
	Instrument string         `json:"instrument"`
	State      string         `json:"state"`
	Raw        []string       `json:"raw"`
	Files      []string       `json:"files"`
	NSubs      int            `json:"nsubs"`
	SubFrames  []string       `json:"subframes,omitempty"`
	Number     int            `json:"number"`
	Group      string         `json:"group"`
	Recipe     string         `json:"recipe"`
	Flag       string         `json:"flag,omitempty"`
	Canonical  map[string]any `json:"canonical"`
	InOut      []inoutPair    `json:"inout,omitempty"`
	Children   []frameInfo    `json:"children,omitempty"`
}

func info(inst *frame.Instrument, cfg cfgpkg.Config, o options, args []string, logger *diag.Logger, stdout, stderr io.Writer) int {
	var src frame.Source
	switch {
	case o.ut != "" || o.obs >= 0:
		if o.ut == "" || o.obs < 0 || len(args) > 0 {
			fmt.Fprintln(stderr, "info: --ut 与 --obs 必须同时给出，且不能与文件列表混用")
			return exitUsage
		}
		src = frame.Obs(o.ut, o.obs)
	default:
		src = frame.Files(args...)
	}
	f := frame.New(inst, frame.WithLogger(logger), frame.WithDataDir(cfg.DataDir))
	if err := f.Configure(src); err != nil {
		fmt.Fprintf(stderr, "info: %v\n", err)
		if errors.Is(err, contract.ErrUsage) {
			return exitUsage
		}
		return exitRun
	}
	out := describe(f)
	switch {
	case src.Obs != nil:
		out.Flag = f.FlagName(o.ut, o.obs)
	default:
		if p, n, ok := inst.Namer.Parse(filepath.Base(args[0])); ok {
			out.Flag = f.FlagName(p, n)
		}
	}
	for _, suffix := range o.inout {
		for i := 1; i <= f.NFiles(); i++ {
			in, to, err := f.InOut(suffix, i)
			if err != nil {
				fmt.Fprintf(stderr, "inout: %v\n", err)
				return exitRun
			}
			out.InOut = append(out.InOut, inoutPair{Suffix: suffix, In: in, Out: to})
		}
		out.Files = f.Files()
		out.State = f.State().String()
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "info: %v\n", err)
		return exitRun
	}
	return exitOK
}

// scan 并发配置一组观测，按列表顺序逐行输出 JSON。
func scan(inst *frame.Instrument, cfg cfgpkg.Config, o options, args []string, logger *diag.Logger, stdout, stderr io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(stderr, "scan 需要 <prefix> <list>")
		return exitUsage
	}
	obs, err := pipeline.ParseList(args[1])
	if err != nil {
		fmt.Fprintf(stderr, "scan: %v\n", err)
		return exitUsage
	}
	enc := json.NewEncoder(stdout)
	set := pipeline.Settings{Prefix: args[0], Obs: obs, DataDir: cfg.DataDir, Concurrency: o.jobs}
	err = pipeline.Run(context.Background(), inst, set, func(r pipeline.Result) error {
		fi := describe(r.Frame)
		fi.Flag = r.Frame.FlagName(args[0], r.Obs)
		return enc.Encode(fi)
	}, logger)
	if err != nil {
		fmt.Fprintf(stderr, "scan: %v\n", err)
		if errors.Is(err, contract.ErrUsage) {
			return exitUsage
		}
		return exitRun
	}
	return exitOK
}

func describe(f *frame.Frame) frameInfo {
	fi := frameInfo{
		Instrument: f.Instrument().Name,
		State:      f.State().String(),
		Raw:        f.Raw(),
		Files:      f.Files(),
		NSubs:      f.FindNSubs(),
		SubFrames:  f.SubFrameNames(),
		Number:     f.Number(),
		Group:      f.Group(),
		Recipe:     f.Recipe(),
		Canonical:  f.Canonical().Prefixed(),
	}
	for _, c := range f.Children() {
		fi.Children = append(fi.Children, describe(c))
	}
	return fi
}

func listInstruments(cfg cfgpkg.Config, stdout, stderr io.Writer) int {
	cat, err := instrument.Load(cfg.Catalog)
	if err != nil {
		fmt.Fprintf(stderr, "目录解析失败: %v\n", err)
		return exitConfig
	}
	for _, n := range cat.Names() {
		fmt.Fprintf(stdout, "%-10s %s\n", n, strings.TrimSpace(cat.Instruments[n].Description))
	}
	return exitOK
}

// initConfig 在 dir 生成 config.json；已存在时跳过，不覆盖。
func initConfig(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfgpkg.DefaultTemplateConfig(), "", "  ")
	if err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, "config.json"), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	_, err = f.Write(append(b, '\n'))
	return err
}
