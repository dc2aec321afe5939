package template

import (
	"strings"
	"testing"
)

func mustNew(t *testing.T, o Options) *Template {
	t.Helper()
	tp, err := New(&o)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tp
}

// TestRawNameLayouts 覆盖各类模板形态。
func TestRawNameLayouts(t *testing.T) {
	cases := []struct {
		name   string
		opts   Options
		prefix string
		num    int
		want   string
	}{
		{"ukirt", Options{Fixed: "f", Layout: "{fixed}{prefix}_{num}{suffix}", Width: 5, Suffix: ".sdf"}, "20040919", 10, "f20040919_00010.sdf"},
		{"prefix only", Options{Fixed: "x", Layout: "{prefix}_{num}{suffix}", Width: 4, Suffix: ".sdf"}, "obs", 1, "obs_0001.sdf"},
		{"S separator", Options{Fixed: "r", Layout: "{fixed}{prefix}S{num}{suffix}", Width: 4, Suffix: ".fit"}, "20010302", 7, "r20010302S0007.fit"},
		{"no prefix", Options{Fixed: "obs_das_", Layout: "{fixed}{num}{suffix}", Width: 4, Suffix: ".dat"}, "ignored", 42, "obs_das_0042.dat"},
		{"widening", Options{Fixed: "s", Layout: "{prefix}_dem_{num}{suffix}", Width: 4, Suffix: ".sdf"}, "19990210", 123456, "19990210_dem_123456.sdf"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tp := mustNew(t, c.opts)
			if got := tp.RawName(c.prefix, c.num); got != c.want {
				t.Fatalf("RawName = %q, want %q", got, c.want)
			}
		})
	}
}

// TestPadWidth: 宽度 5 → "00007"，宽度 4 → "0007"。
func TestPadWidth(t *testing.T) {
	five := mustNew(t, Options{Fixed: "f", Width: 5, Suffix: ".sdf"})
	four := mustNew(t, Options{Fixed: "f", Width: 4, Suffix: ".sdf"})
	if !strings.Contains(five.RawName("20040919", 7), "_00007.") {
		t.Fatalf("width 5: %s", five.RawName("20040919", 7))
	}
	if !strings.Contains(four.RawName("20040919", 7), "_0007.") {
		t.Fatalf("width 4: %s", four.RawName("20040919", 7))
	}
}

// TestRoundTrip: Parse(RawName(p,n)) 还原 n，覆盖 [1,99999]。
func TestRoundTrip(t *testing.T) {
	layouts := []struct {
		opts   Options
		prefix string
	}{
		{Options{Fixed: "c", Layout: "{fixed}{prefix}_{num}{suffix}", Width: 5, Suffix: ".sdf"}, "20040919"},
		{Options{Fixed: "r", Layout: "{fixed}{prefix}S{num}{suffix}", Width: 4, Suffix: ".fit"}, "20010302"},
		{Options{Fixed: "obs_das_", Layout: "{fixed}{num}{suffix}", Width: 4, Suffix: ".dat"}, ""},
		{Options{Layout: "{prefix}{num}{suffix}", Width: 4, Suffix: ".fits"}, "11aug"},
		{Options{Fixed: "a", Layout: "{fixed}{prefix}_{num}_01_01{suffix}", Width: 5, Suffix: ".sdf"}, "20070101"},
	}
	nums := []int{1, 7, 10, 99, 1000, 9999, 10000, 54321, 99999}
	for _, l := range layouts {
		tp := mustNew(t, l.opts)
		for _, n := range nums {
			name := tp.RawName(l.prefix, n)
			p, got, ok := tp.Parse(name)
			if !ok || got != n || p != l.prefix {
				t.Fatalf("%s: Parse(%q) = (%q,%d,%v)", l.opts.Layout, name, p, got, ok)
			}
			if !tp.Match(l.prefix, n).MatchString(name) {
				t.Fatalf("%s: Match(%d) rejects %q", l.opts.Layout, n, name)
			}
			if tp.Match(l.prefix, n+1).MatchString(name) {
				t.Fatalf("%s: Match(%d) accepts %q", l.opts.Layout, n+1, name)
			}
		}
	}
}

func TestParseRejects(t *testing.T) {
	tp := mustNew(t, Options{Fixed: "f", Width: 5, Suffix: ".sdf"})
	for _, name := range []string{"f20040919_10.sdf", "g20040919_00010.sdf", "f20040919_00010.fits", "f20040919_00010_ff.sdf"} {
		if _, n, ok := tp.Parse(name); ok || n != -1 {
			t.Fatalf("Parse(%q) should fail, got %d", name, n)
		}
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("nil options must fail")
	}
	if _, err := New(&Options{Layout: "{prefix}.sdf"}); err == nil {
		t.Fatalf("layout without {num} must fail")
	}
	if _, err := New(&Options{Layout: "{prefix}{prefix}{num}"}); err == nil {
		t.Fatalf("duplicate {prefix} must fail")
	}
	tp := mustNew(t, Options{})
	if tp.Width() != 5 || tp.RawName("20040919", 3) != "20040919_00003" {
		t.Fatalf("defaults: %d %s", tp.Width(), tp.RawName("20040919", 3))
	}
}
