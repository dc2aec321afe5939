package translate

import (
	"errors"
	"math"
	"testing"

	"oracframe/pkg/contract"
	"oracframe/pkg/header"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func num(t *testing.T, c header.Canonical, key string) float64 {
	t.Helper()
	v, ok := header.ToFloat(c[key])
	if !ok {
		t.Fatalf("%s missing or not numeric: %v", key, c[key])
	}
	return v
}

func mustNew(t *testing.T, o *Options) *Translator {
	t.Helper()
	tr, err := New(o)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return tr
}

// UT-TR-01: 单位矩阵 → 0°；90° 旋转 → 90°（含缩放）
func TestRotation(t *testing.T) {
	cases := []struct {
		name                   string
		cd11, cd12, cd21, cd22 float64
		want                   float64
	}{
		{"identity", 1, 0, 0, 1, 0},
		{"ninety", 0, -1, 1, 0, 90},
		{"ninety scaled", 0, -0.2387 / 3600, 0.2387 / 3600, 0, 90},
		{"ra flipped", -1, 0, 0, 1, 0},
		{"thirty degrees", math.Cos(math.Pi / 6), -math.Sin(math.Pi / 6), math.Sin(math.Pi / 6), math.Cos(math.Pi / 6), 30},
	}
	for _, c := range cases {
		if got := Rotation(c.cd11, c.cd12, c.cd21, c.cd22); !near(got, c.want) {
			t.Fatalf("%s: rotation %v, want %v", c.name, got, c.want)
		}
	}
}

func TestCDelt(t *testing.T) {
	d1, d2 := CDelt(-2, 0, 0, 3)
	if d1 != -2 || d2 != -3 {
		t.Fatalf("negative determinant: %v %v", d1, d2)
	}
	d1, d2 = CDelt(0, -1, 1, 0)
	if d1 != 1 || d2 != 1 {
		t.Fatalf("rotation: %v %v", d1, d2)
	}
}

func TestCDRotationRule(t *testing.T) {
	tr := mustNew(t, &Options{Rules: []string{"cd_rotation", "scale"}})
	c := tr.Translate(header.Raw{"CD1_1": 0.0, "CD1_2": -1.0 / 3600, "CD2_1": 1.0 / 3600, "CD2_2": 0.0})
	if !near(num(t, c, header.Rotation), 90) {
		t.Fatalf("rotation %v", c[header.Rotation])
	}
	if !near(num(t, c, header.RAScale), 1) || !near(num(t, c, header.DecScale), 1) {
		t.Fatalf("scale from CD: %v %v", c[header.RAScale], c[header.DecScale])
	}
	c = tr.Translate(header.Raw{"CROTA2": 12.5})
	if num(t, c, header.Rotation) != 12.5 {
		t.Fatalf("crota2 fallback %v", c[header.Rotation])
	}
	c = tr.Translate(header.Raw{})
	if num(t, c, header.Rotation) != 0 {
		t.Fatalf("default rotation %v", c[header.Rotation])
	}
	if num(t, c, header.RAScale) != -0.2387 || num(t, c, header.DecScale) != 0.2387 {
		t.Fatalf("default scale %v %v", c[header.RAScale], c[header.DecScale])
	}
}

func TestScaleSources(t *testing.T) {
	tr := mustNew(t, &Options{
		Rules: []string{"scale"},
		Constants: Constants{
			ScaleKey:    "CAMLENS",
			PixelScales: map[string]float64{"0.06": 0.061, "0.12": 0.1206},
			DecScale:    0.12,
		},
	})
	c := tr.Translate(header.Raw{"CDELT1": -0.5 / 3600, "CDELT2": 0.5 / 3600})
	if !near(num(t, c, header.RAScale), -0.5) {
		t.Fatalf("cdelt %v", c[header.RAScale])
	}
	c = tr.Translate(header.Raw{"PIXELSIZE": 0.4})
	if num(t, c, header.RAScale) != -0.4 || num(t, c, header.DecScale) != 0.4 {
		t.Fatalf("pixelsize %v", c)
	}
	c = tr.Translate(header.Raw{"CAMLENS": "0.12"})
	if num(t, c, header.DecScale) != 0.1206 {
		t.Fatalf("table %v", c)
	}
	c = tr.Translate(header.Raw{"CAMLENS": "9"})
	if num(t, c, header.RAScale) != -0.2387 || num(t, c, header.DecScale) != 0.12 {
		t.Fatalf("instrument default %v", c)
	}
}

// UT-TR-02: 偏移优先直接头；否则由位置差重建
func TestTelescopeOffsets(t *testing.T) {
	tr := mustNew(t, &Options{Rules: []string{"base_position", "telescope_offsets"}})
	c := tr.Translate(header.Raw{"TRAOFF": 3.5, "TDECOFF": -2.0, "RA": 1.0, "DEC": 1.0, "RABASE": 0.0, "DECBASE": 0.0})
	if num(t, c, header.RATelescopeOffset) != 3.5 || num(t, c, header.DecTelescopeOffset) != -2 {
		t.Fatalf("direct offsets %v", c)
	}
	c = tr.Translate(header.Raw{"RA": 10.001, "DEC": 60.0, "RABASE": 10.0, "DECBASE": 59.999})
	if !near(num(t, c, header.RATelescopeOffset), 0.001*3600*0.5) {
		t.Fatalf("ra offset %v", c[header.RATelescopeOffset])
	}
	if !near(num(t, c, header.DecTelescopeOffset), 0.001*3600) {
		t.Fatalf("dec offset %v", c[header.DecTelescopeOffset])
	}
	if num(t, c, header.RABase) != 10 {
		t.Fatalf("ra base %v", c[header.RABase])
	}
	c = tr.Translate(header.Raw{"RA": 10.0})
	if _, ok := c[header.RATelescopeOffset]; ok {
		t.Fatalf("offset must be absent without inputs")
	}

	hr := mustNew(t, &Options{Rules: []string{"base_position", "telescope_offsets"}, Constants: Constants{RAHours: true}})
	c = hr.Translate(header.Raw{"RA": 2.0001, "DEC": 0.0, "RABASE": 2.0, "DECBASE": 0.0})
	if !near(num(t, c, header.RATelescopeOffset), 0.0001*15*3600) || num(t, c, header.RABase) != 30 {
		t.Fatalf("hours conversion %v", c)
	}
}

// UT-TR-03: UT 定偏移解码；UTEND 由曝光时间补出
func TestUTDecoding(t *testing.T) {
	tr := mustNew(t, &Options{
		Direct: map[string]string{"ORAC_EXPOSURE_TIME": "EXPTIME"},
		Rules:  []string{"ut_dateobs"},
	})
	c := tr.Translate(header.Raw{"DATE-OBS": "2004-09-19T10:30:36.0Z", "EXPTIME": 360.0})
	if c[header.UTDate] != 20040919 {
		t.Fatalf("utdate %v", c[header.UTDate])
	}
	if !near(num(t, c, header.UTStart), 10.51) {
		t.Fatalf("utstart %v", c[header.UTStart])
	}
	if !near(num(t, c, header.UTEnd), 10.61) {
		t.Fatalf("utend fallback %v", c[header.UTEnd])
	}
	c = tr.Translate(header.Raw{"DATE-OBS": "2004-09-19T10:00:00", "DATE-END": "2004-09-19T11:30:00"})
	if num(t, c, header.UTEnd) != 11.5 {
		t.Fatalf("utend %v", c[header.UTEnd])
	}
	c = tr.Translate(header.Raw{"DATE-OBS": "garbage"})
	if len(c) != 0 {
		t.Fatalf("garbage must yield nothing: %v", c)
	}

	ut := mustNew(t, &Options{Rules: []string{"ut_headers"}})
	c = ut.Translate(header.Raw{"IDATE": 20011231, "UTSTART": "12:15:00", "EXPTIME": 1800})
	if c[header.UTDate] != 20011231 || num(t, c, header.UTStart) != 12.25 || num(t, c, header.UTEnd) != 12.75 {
		t.Fatalf("ut_headers %v", c)
	}
	c = ut.Translate(header.Raw{"UTDATE": "2004:09:19", "UTSTART": 1.5, "UTEND": 2.0})
	if c[header.UTDate] != 20040919 || num(t, c, header.UTEnd) != 2 {
		t.Fatalf("ut_headers string date %v", c)
	}
}

// UT-TR-04: 参考像元：界内 CRPIX → 读出区中点 → 常量
func TestReferencePixel(t *testing.T) {
	tr := mustNew(t, &Options{Rules: []string{"bounds", "reference_pixel"}})
	c := tr.Translate(header.Raw{"CRPIX1": 400.5, "CRPIX2": 600.0})
	if num(t, c, header.XReferencePixel) != 400.5 || num(t, c, header.YReferencePixel) != 600 {
		t.Fatalf("crpix in bounds %v", c)
	}
	c = tr.Translate(header.Raw{"CRPIX1": 5000.0, "CRPIX2": -3.0, "DETSEC": "[101:300,1:200]"})
	if num(t, c, header.XReferencePixel) != 201 || num(t, c, header.YReferencePixel) != 101 {
		t.Fatalf("detector average %v", c)
	}
	if num(t, c, header.XLowerBound) != 101 || num(t, c, header.YUpperBound) != 200 {
		t.Fatalf("bounds from DETSEC %v", c)
	}
	c = tr.Translate(header.Raw{"RDOUT_X1": 1, "RDOUT_X2": 256, "RDOUT_Y1": 1, "RDOUT_Y2": 256})
	if num(t, c, header.XUpperBound) != 256 || num(t, c, header.XReferencePixel) != 129 {
		t.Fatalf("rdout %v", c)
	}
	c = tr.Translate(header.Raw{})
	if num(t, c, header.XLowerBound) != 1 || num(t, c, header.XUpperBound) != 1024 || num(t, c, header.XReferencePixel) != 513 {
		t.Fatalf("defaults %v", c)
	}
	fixed := mustNew(t, &Options{Rules: []string{"reference_pixel"}, Constants: Constants{RefPixel: []float64{480, 520}}})
	c = fixed.Translate(header.Raw{})
	if num(t, c, header.XReferencePixel) != 480 || num(t, c, header.YReferencePixel) != 520 {
		t.Fatalf("constant %v", c)
	}
}

// UT-TR-05: 纪元选键
func TestEpochKeys(t *testing.T) {
	tr := mustNew(t, &Options{
		Direct: map[string]string{"UTDATE": "UTDATE"},
		Rules:  []string{"epoch_keys"},
		Constants: Constants{Epochs: []Epoch{
			{Key: header.DetectorReadType, Threshold: 20000801, Before: "MODE", After: "DET_MODE"},
		}},
	})
	raw := header.Raw{"MODE": "STARE", "DET_MODE": "NDSTARE"}
	c := tr.Translate(raw.Overlay(header.Raw{"UTDATE": 19991231}))
	if c[header.DetectorReadType] != "STARE" {
		t.Fatalf("before threshold %v", c)
	}
	c = tr.Translate(raw.Overlay(header.Raw{"UTDATE": 20000801}))
	if c[header.DetectorReadType] != "NDSTARE" {
		t.Fatalf("on threshold %v", c)
	}
	c = tr.Translate(raw)
	if c[header.DetectorReadType] != "NDSTARE" {
		t.Fatalf("unknown date uses new key %v", c)
	}
}

func TestDirectTrimsAndSkipsMissing(t *testing.T) {
	tr := mustNew(t, &Options{Direct: map[string]string{"OBJECT": "OBJECT", "FILTER": "FILTER"}})
	c := tr.Translate(header.Raw{"OBJECT": "  NGC 7027  "})
	if c[header.Object] != "NGC 7027" {
		t.Fatalf("object %q", c[header.Object])
	}
	if _, ok := c[header.Filter]; ok {
		t.Fatalf("missing raw key must leave canonical key absent")
	}
}

func TestNewRejects(t *testing.T) {
	bad := []*Options{
		{Direct: map[string]string{"NOT_A_KEY": "X"}},
		{Direct: map[string]string{"OBJECT": " "}},
		{Rules: []string{"nope"}},
		{Constants: Constants{Bounds: []int{1, 2}}},
		{Constants: Constants{RefPixel: []float64{1}}},
		{Constants: Constants{Epochs: []Epoch{{Key: "OBJECT", Before: "A"}}}},
	}
	for i, o := range bad {
		if _, err := New(o); !errors.Is(err, contract.ErrCatalog) {
			t.Fatalf("case %d: expect ErrCatalog, got %v", i, err)
		}
	}
	if len(RuleNames()) != 9 {
		t.Fatalf("rule names %v", RuleNames())
	}
	if _, err := New(nil); err != nil {
		t.Fatalf("nil options: %v", err)
	}
}
