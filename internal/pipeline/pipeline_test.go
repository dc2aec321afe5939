package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"oracframe/internal/instrument"
	"oracframe/pkg/contract"
	"oracframe/pkg/frame"
	hstore "oracframe/plugins/container/hds"
)

func build(t testing.TB, name, dir string) *frame.Instrument {
	t.Helper()
	c, err := instrument.Builtin()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	in, err := c.Build(name, instrument.Env{DataDir: dir})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return in
}

// UT-PIP-01: 多 worker 下结果仍按列表顺序交付
func TestRunOrdered(t *testing.T) {
	dir := t.TempDir()
	st := hstore.New(nil)
	for i := 1; i <= 20; i++ {
		p := filepath.Join(dir, fmt.Sprintf("f20040919_%05d.sdf", i))
		if err := st.Save(p, &hstore.File{Type: "NDF", Header: map[string]any{"OBJECT": fmt.Sprintf("T%d", i)}}); err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}
	obs, _ := ParseList("20:1")
	if obs != nil {
		t.Fatalf("reversed range must fail")
	}
	obs, err := ParseList("1-20")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var got []int
	set := Settings{Prefix: "20040919", Obs: obs, DataDir: dir, Concurrency: 4}
	err = Run(context.Background(), build(t, "ufti", dir), set, func(r Result) error {
		if r.Frame.Number() != r.Obs {
			return fmt.Errorf("obs %d numbered %d", r.Obs, r.Frame.Number())
		}
		if v, _ := r.Frame.CanonicalHeader("OBJECT"); v != fmt.Sprintf("T%d", r.Obs) {
			return fmt.Errorf("obs %d object %v", r.Obs, v)
		}
		got = append(got, r.Obs)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got) != 20 {
		t.Fatalf("got %v", got)
	}
	for i, o := range got {
		if o != i+1 {
			t.Fatalf("out of order: %v", got)
		}
	}
}

// UT-PIP-02: Emit 首错取消并返回该错误
func TestRunEmitError(t *testing.T) {
	dir := t.TempDir()
	stop := errors.New("stop")
	calls := 0
	obs, _ := ParseList("1:50")
	err := Run(context.Background(), build(t, "ufti", dir), Settings{Prefix: "x", Obs: obs, DataDir: dir, Concurrency: 8}, func(r Result) error {
		calls++
		if r.Obs == 3 {
			return stop
		}
		return nil
	}, nil)
	if !errors.Is(err, stop) || calls != 3 {
		t.Fatalf("err %v calls %d", err, calls)
	}
}

func TestRunUsage(t *testing.T) {
	dir := t.TempDir()
	emit := func(Result) error { return nil }
	if err := Run(context.Background(), build(t, "acsis", dir), Settings{Obs: []int{1}}, emit, nil); !errors.Is(err, contract.ErrUsage) {
		t.Fatalf("single-arg: %v", err)
	}
	if err := Run(context.Background(), build(t, "ufti", dir), Settings{}, emit, nil); !errors.Is(err, contract.ErrUsage) {
		t.Fatalf("empty list: %v", err)
	}
	if err := Run(context.Background(), nil, Settings{Obs: []int{1}}, emit, nil); err == nil {
		t.Fatalf("nil instrument")
	}
	// 负观测号由 Configure 判为用法错误
	if err := Run(context.Background(), build(t, "ufti", dir), Settings{Obs: []int{1, -2}}, emit, nil); !errors.Is(err, contract.ErrUsage) {
		t.Fatalf("negative obs: %v", err)
	}
}

func TestRunCanceled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	obs, _ := ParseList("1:500")
	err := Run(ctx, build(t, "ufti", dir), Settings{Prefix: "x", Obs: obs, DataDir: dir, Concurrency: 2}, func(Result) error { return nil }, nil)
	if err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled: %v", err)
	}
}

func TestParseList(t *testing.T) {
	got, err := ParseList("1:3, 7,10-11,2")
	want := []int{1, 2, 3, 7, 10, 11}
	if err != nil || fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v %v", got, err)
	}
	for _, bad := range []string{"", "a", "3-1", "1:x", "-4"} {
		if _, err := ParseList(bad); !errors.Is(err, contract.ErrUsage) {
			t.Fatalf("%q: %v", bad, err)
		}
	}
}
