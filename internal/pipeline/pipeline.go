package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"oracframe/internal/diag"
	"oracframe/pkg/contract"
	"oracframe/pkg/frame"
)

// - 单点并发：仅此层管理并发与背压；Frame 本身同步、互不共享可变状态。
// - 顺序门闩：结果按观测列表顺序交给 Emit；乱序完成的结果暂存，连续冲刷。
// - 首错取消：Configure 或 Emit 出错即记录首错并 cancel；排空后返回该错误。

// Settings 运行期配置（最小必要）。
type Settings struct {
	Prefix      string
	Obs         []int
	DataDir     string
	Concurrency int
}

// Result: 一个观测的配置结果。
type Result struct {
	Index int
	Obs   int
	Frame *frame.Frame
}

// Emit 按观测顺序接收结果；返回错误即取消整体。
type Emit func(Result) error

// Run 并发配置一组观测的 Frame，并按输入顺序交付。
// 容器不可读不算错误（Frame 内部记录）；只有用法/目录错误与 Emit 错误会中止。
func Run(ctx context.Context, inst *frame.Instrument, set Settings, emit Emit, logger *diag.Logger) error {
	if err := sanity(inst, set, emit); err != nil {
		return fmt.Errorf("sanity: %w", err)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct{ idx, obs int }
	type res struct {
		Result
		err error
	}
	n := set.Concurrency
	if n < 1 {
		n = 1
	}
	// 有界通道：2×并发度，形成自然背压
	inCh := make(chan job, n*2)
	outCh := make(chan res, n*2)

	tm := logger.Start("pipeline", "run", set.DataDir)
	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for j := range inCh {
			f := frame.New(inst, frame.WithLogger(logger), frame.WithDataDir(set.DataDir))
			err := f.Configure(frame.Obs(set.Prefix, j.obs))
			if err != nil {
				code := string(diag.Classify(err))
				logger.Warn("pipeline", code, err.Error(), "", map[string]string{"obs": strconv.Itoa(j.obs)})
				diag.IncOp("pipeline", "configure", "error")
				if code != string(diag.CodeUnknown) {
					diag.IncError("pipeline", code)
				}
			}
			outCh <- res{Result: Result{Index: j.idx, Obs: j.obs, Frame: f}, err: err}
		}
	}
	wg.Add(n)
	for i := 0; i < n; i++ {
		go worker()
	}

	// 生产者
	go func() {
		defer close(inCh)
		for i, o := range set.Obs {
			select {
			case <-ctx.Done():
				return
			case inCh <- job{idx: i, obs: o}:
			}
		}
	}()
	go func() {
		wg.Wait()
		close(outCh)
	}()

	expect := 0
	buf := make(map[int]Result)
	var firstErr error
	for r := range outCh {
		if firstErr != nil {
			// 继续排空，保证 worker 退出
			continue
		}
		if r.err != nil {
			firstErr = fmt.Errorf("obs %d: %w", r.Obs, r.err)
			cancel()
			continue
		}
		buf[r.Index] = r.Result
		for {
			next, ok := buf[expect]
			if !ok {
				break
			}
			delete(buf, expect)
			if err := emit(next); err != nil {
				firstErr = fmt.Errorf("emit obs %d: %w", next.Obs, err)
				cancel()
				break
			}
			expect++
		}
	}
	if firstErr != nil {
		return firstErr
	}
	if expect < len(set.Obs) {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	tm.Finish("run", int64(expect))
	diag.IncOp("pipeline", "finish", "success")
	return nil
}

func sanity(inst *frame.Instrument, s Settings, emit Emit) error {
	if inst == nil {
		return errors.New("nil instrument")
	}
	if emit == nil {
		return errors.New("nil emit")
	}
	if inst.SingleArg {
		return fmt.Errorf("%s only accepts file lists: %w", inst.Name, contract.ErrUsage)
	}
	if len(s.Obs) == 0 {
		return fmt.Errorf("empty observation list: %w", contract.ErrUsage)
	}
	return nil
}

// ParseList 解析观测列表："1:5,7,10-12" → [1 2 3 4 5 7 10 11 12]。
// 区间两端含；重复项保留首次出现的位置。
func ParseList(s string) ([]int, error) {
	var out []int
	seen := map[int]bool{}
	add := func(n int) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sep := strings.IndexAny(part, ":-")
		if sep < 0 {
			n, err := strconv.Atoi(part)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("bad observation %q: %w", part, contract.ErrUsage)
			}
			add(n)
			continue
		}
		lo, err1 := strconv.Atoi(strings.TrimSpace(part[:sep]))
		hi, err2 := strconv.Atoi(strings.TrimSpace(part[sep+1:]))
		if err1 != nil || err2 != nil || lo < 0 || hi < lo {
			return nil, fmt.Errorf("bad range %q: %w", part, contract.ErrUsage)
		}
		for n := lo; n <= hi; n++ {
			add(n)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty observation list %q: %w", s, contract.ErrUsage)
	}
	return out, nil
}
