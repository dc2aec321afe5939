package frame

import (
	"testing"

	"oracframe/pkg/header"
)

func TestNumberFromName(t *testing.T) {
	cases := []struct {
		rule NumberRule
		name string
		want int
	}{
		{NumberTrailing, "/data/f20040919_00010.sdf", 10},
		{NumberTrailing, "f20040919_00010.I3", 10},
		{NumberTrailing, "20040919_dem_0042.sdf", 42},
		{NumberTrailing, "weird.sdf", -1},
		{NumberDelimited, "a20061231_00012_01_01.sdf", 12},
		{NumberDelimited, "a20061231_00012.sdf", -1},
		{NumberHeader, "f20040919_00010.sdf", -1},
	}
	for _, tc := range cases {
		if got := NumberFromName(tc.rule, tc.name, ".sdf"); got != tc.want {
			t.Fatalf("%s %q: %d want %d", tc.rule, tc.name, got, tc.want)
		}
	}
	if NumberFromHeader(header.Raw{"OBSNUM": "17"}, "") != 17 || NumberFromHeader(header.Raw{}, "RUN") != -1 {
		t.Fatalf("header number")
	}
}

func TestOutputRoot(t *testing.T) {
	cases := []struct{ root, suffix, want string }{
		{"f20040919_00010", "_ff", "f20040919_00010_ff"},
		{"f20040919_00010_ff", "_dk", "f20040919_00010_dk"},
		{"dir/obs_0001", "ff", "dir/obs_0001_ff"},
		{"flat_ff", "_x", "flat_x"},
		{"flat", "_x", "flat_x"},
		{"a_1_b_2", "_y", "a_1_b_2_y"},
	}
	for _, tc := range cases {
		if got := OutputRoot(tc.root, tc.suffix); got != tc.want {
			t.Fatalf("OutputRoot(%q,%q)=%q want %q", tc.root, tc.suffix, got, tc.want)
		}
	}
}

func TestPredicates(t *testing.T) {
	if !MemberT("T") || !MemberT(true) || MemberT("F") || MemberT(nil) || MemberT(int64(1)) {
		t.Fatalf("member_t")
	}
	if !MemberOne(int64(1)) || !MemberOne("1") || MemberOne(true) || MemberOne(nil) || MemberOne("T") {
		t.Fatalf("member_one")
	}
}
