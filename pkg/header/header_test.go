package header

import "testing"

// UT-HDR-01: 子帧一致键提升，主头优先
func TestSetMerged(t *testing.T) {
	s := Set{
		Primary: Raw{"OBJECT": "M31", "EXPTIME": 10.0},
		Subs: []Raw{
			{"EXPTIME": 5.0, "CYCLE": int64(1), "FILTER": "K"},
			{"EXPTIME": 5.0, "CYCLE": int64(2), "FILTER": "K"},
		},
	}
	m := s.Merged()
	if m["OBJECT"] != "M31" {
		t.Fatalf("primary key lost: %v", m)
	}
	if m["EXPTIME"] != 10.0 {
		t.Fatalf("primary must override sub-frame value, got %v", m["EXPTIME"])
	}
	if m["FILTER"] != "K" {
		t.Fatalf("common sub key not promoted: %v", m)
	}
	if _, ok := m["CYCLE"]; ok {
		t.Fatalf("differing sub key must not be promoted")
	}
}

// UT-HDR-02: 单子帧全部提升
func TestSetMergedSingle(t *testing.T) {
	s := Set{Subs: []Raw{{"A": 1, "B": "x"}}}
	m := s.Merged()
	if len(m) != 2 {
		t.Fatalf("expect all keys promoted, got %v", m)
	}
	if !(Set{}).Empty() || s.Empty() {
		t.Fatalf("Empty mismatch")
	}
	if s.Sub(3) != nil || s.Sub(0) == nil {
		t.Fatalf("Sub bounds")
	}
}

func TestAccessors(t *testing.T) {
	r := Raw{
		"I8":   int8(3),
		"U16":  uint16(7),
		"S":    "  1.5D2 ",
		"B":    true,
		"NIL":  nil,
		"TEXT": "abc",
	}
	if v, ok := r.Float("I8"); !ok || v != 3 {
		t.Fatalf("int8: %v %v", v, ok)
	}
	if v, ok := r.Int("U16"); !ok || v != 7 {
		t.Fatalf("uint16: %v %v", v, ok)
	}
	if v, ok := r.Float("S"); !ok || v != 150 {
		t.Fatalf("fortran exponent: %v %v", v, ok)
	}
	if _, ok := r.Float("TEXT"); ok {
		t.Fatalf("text must not parse")
	}
	if s, _ := r.String("B"); s != "T" {
		t.Fatalf("bool string: %q", s)
	}
	if r.Has("NIL") || r.Has("MISSING") || !r.Has("S") {
		t.Fatalf("Has mismatch")
	}
	if _, ok := r.String("NIL"); ok {
		t.Fatalf("nil value must be absent")
	}
	w := r.Without("S")
	if w.Has("S") || !r.Has("S") {
		t.Fatalf("Without must copy")
	}
	if !Equal("5", 5) || Equal(1.0, 2) || !Equal(int16(2), 2.0) {
		t.Fatalf("Equal mismatch")
	}
}

func TestCanonical(t *testing.T) {
	c := Canonical{UTDate: 20040919}
	if v, ok := c.Get("ORAC_UTDATE"); !ok || v != 20040919 {
		t.Fatalf("prefixed lookup: %v", v)
	}
	p := c.Prefixed()
	if p["ORAC_UTDATE"] != 20040919 {
		t.Fatalf("Prefixed: %v", p)
	}
	if !Known("ORAC_ROTATION") || Known("BOGUS") {
		t.Fatalf("Known mismatch")
	}
}
