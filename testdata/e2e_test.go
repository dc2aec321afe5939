package testdata

import (
	"os"
	"path/filepath"
	"testing"

	cfgpkg "oracframe/internal/config"
	"oracframe/pkg/contract"
	"oracframe/pkg/frame"
	hstore "oracframe/plugins/container/hds"
)

const extraCatalog = `instruments:
  x:
    description: minimal test instrument
    naming: {kind: template, options: {fixed: x, layout: "{prefix}_{num}{suffix}", width: 4, suffix: .sdf}}
    translate:
      kind: table
      options:
        direct: {OBJECT: OBJECT, EXPOSURE_TIME: EXPTIME}
    group: {synth: [OBJECT]}
    recipe: {default: QUICK_LOOK}
`

// baseConfig 构造指向临时数据目录与额外目录的配置。
func baseConfig(t *testing.T, inst string) (cfgpkg.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cat := filepath.Join(dir, "extra.yaml")
	if err := os.WriteFile(cat, []byte(extraCatalog), 0o644); err != nil {
		t.Fatalf("catalog: %v", err)
	}
	cfg := cfgpkg.DefaultTemplateConfig()
	cfg.Instrument = inst
	cfg.DataDir = dir
	cfg.Catalog = cat
	cfg.Logging.Level = "error"
	if err := cfgpkg.Validate(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return cfg, dir
}

func assemble(t *testing.T, cfg cfgpkg.Config) *frame.Instrument {
	t.Helper()
	in, _, err := cfgpkg.Assemble(cfg)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return in
}

// 配置 → 观测定位 → 身份 → 两次 InOut
func TestE2EObservation(t *testing.T) {
	cfg, dir := baseConfig(t, "x")
	in := assemble(t, cfg)
	raw := filepath.Join(dir, "obs_0001.sdf")
	if err := hstore.New(nil).Save(raw, &hstore.File{Type: "NDF", Header: map[string]any{"OBJECT": "FS1", "EXPTIME": 4.0}}); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	f := frame.New(in, frame.WithDataDir(cfg.DataDir))
	if got := f.RawName("obs", 1); got != "obs_0001.sdf" {
		t.Fatalf("raw name %q", got)
	}
	if err := f.Configure(frame.Obs("obs", 1)); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if f.Raw()[0] != raw || f.Number() != 1 || f.FindNSubs() != 1 {
		t.Fatalf("identity raw=%v number=%d nsubs=%d", f.Raw(), f.Number(), f.FindNSubs())
	}
	// 无 DRGROUP：组由合成键 OBJECT 给出
	if f.Group() != "FS1" || f.Recipe() != "QUICK_LOOK" {
		t.Fatalf("group %q recipe %q", f.Group(), f.Recipe())
	}
	if v, _ := f.CanonicalHeader("ORAC_EXPOSURE_TIME"); v != 4.0 {
		t.Fatalf("exposure %v", v)
	}
	if got := f.FlagName("obs", 1); got != ".obs_0001.ok" {
		t.Fatalf("flag %q", got)
	}
	_, out, err := f.InOut("_ff", 1)
	if err != nil || out != filepath.Join(dir, "obs_0001_ff.sdf") {
		t.Fatalf("inout: %q %v", out, err)
	}
	_, out, _ = f.InOut("_bp", 1)
	if out != filepath.Join(dir, "obs_0001_bp.sdf") {
		t.Fatalf("second inout: %q", out)
	}
}

// 多子帧容器：每个成员重命名到同一新容器
func TestE2EContainerRename(t *testing.T) {
	cfg, dir := baseConfig(t, "cgs4")
	in := assemble(t, cfg)
	raw := filepath.Join(dir, "c20040919_00021.sdf")
	st := hstore.New(nil)
	file := &hstore.File{Type: "UKIRT_HDS", Header: map[string]any{}, Components: []hstore.Component{
		{Name: contract.HeaderComponent, Header: map[string]any{"OBJECT": "HD 1234", "GRPNUM": int64(21), "GRPMEM": "T", "DRRECIPE": "STANDARD_STAR"}},
		{Name: "I1", Header: map[string]any{"CYCLE": int64(1)}},
		{Name: "I2", Header: map[string]any{"CYCLE": int64(2)}},
	}}
	if err := st.Save(raw, file); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	f := frame.New(in, frame.WithDataDir(cfg.DataDir))
	if err := f.Configure(frame.Obs("20040919", 21)); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if f.FindNSubs() != 2 || f.Group() != "21" || f.Recipe() != "STANDARD_STAR" {
		t.Fatalf("nsubs %d group %q recipe %q", f.FindNSubs(), f.Group(), f.Recipe())
	}
	for i := 1; i <= f.NFiles(); i++ {
		if _, _, err := f.InOut("_wce", i); err != nil {
			t.Fatalf("inout %d: %v", i, err)
		}
	}
	got, err := st.Load(filepath.Join(dir, "c20040919_00021_wce.sdf"))
	if err != nil {
		t.Fatalf("output container: %v", err)
	}
	if len(got.Components) != 1 || got.Components[0].Name != contract.HeaderComponent {
		t.Fatalf("components %+v", got.Components)
	}
	root := filepath.Join(dir, "c20040919_00021_wce")
	if files := f.Files(); files[0] != root+".I1" || files[1] != root+".I2" {
		t.Fatalf("files %v", files)
	}
}
