package frame

import (
	"fmt"
	"strings"

	"oracframe/internal/diag"
	"oracframe/pkg/contract"
)

// InOut 由第 index 个（1 起）工作文件推导输出名，并将其设为新的工作文件：
// 1) 拆出容器成员名与下划线分隔的记号；
// 2) 仅当末记号非数字且非数字记号至少两个时丢弃末记号；
// 3) 追加 suffix（自动补 "_"）；
// 4) 有容器成员且工作文件多于一个时，确保新容器存在并带有源容器的 HEADER。
// 单文件时不触盘。输出名等于输入名仅告警，且不触碰容器。
func (f *Frame) InOut(suffix string, index int) (string, string, error) {
	if f.state == Empty {
		return "", "", fmt.Errorf("inout: frame not configured: %w", contract.ErrUsage)
	}
	if index < 1 || index > len(f.files) {
		return "", "", fmt.Errorf("inout: index %d outside 1..%d: %w", index, len(f.files), contract.ErrInvalidInput)
	}
	in := f.files[index-1]
	ssuf := f.inst.Store.Suffix()
	root, member, ext := contract.SplitMember(in, ssuf, f.inst.Namer.Suffix())
	newRoot := OutputRoot(root, suffix)
	out := newRoot + member + ext

	if out == in {
		// 同名：源容器即目标容器，不得改动。
		f.log.Warn("frame", string(diag.CodeConsistency), contract.ErrConsistency.Error(), in, map[string]string{"suffix": suffix})
		diag.IncError("frame", string(diag.CodeConsistency))
	} else if member != "" && len(f.files) > 1 {
		if err := f.ensureContainer(root, newRoot, strings.TrimPrefix(member, ".")); err != nil {
			code := string(diag.Classify(err))
			f.log.Error("frame", code, err.Error(), in, nil)
			diag.IncError("frame", code)
			return in, out, err
		}
	}
	f.files[index-1] = out
	f.state = Renamed
	diag.IncOp("frame", "inout", "success")
	return in, out, nil
}

// OutputRoot 对去掉后缀与成员名的根名执行记号替换。
func OutputRoot(root, suffix string) string {
	i := strings.LastIndexAny(root, "/\\")
	dir, base := root[:i+1], root[i+1:]
	toks := strings.Split(base, "_")
	if len(toks) > 1 && !numeric(toks[len(toks)-1]) && countNonNumeric(toks) >= 2 {
		toks = toks[:len(toks)-1]
	}
	if suffix != "" && !strings.HasPrefix(suffix, "_") {
		suffix = "_" + suffix
	}
	return dir + strings.Join(toks, "_") + suffix
}

func (f *Frame) ensureContainer(srcRoot, dstRoot, member string) error {
	st := f.inst.Store
	src := srcRoot + st.Suffix()
	dst := dstRoot + st.Suffix()
	if contract.NormalizePath(src) == contract.NormalizePath(dst) {
		return nil
	}
	if !st.Exists(dst) {
		typ := f.inst.ContainerType
		if typ == "" {
			typ = "HDS_CONTAINER"
		}
		if err := st.Create(dst, typ); err != nil {
			return err
		}
		return st.CopyComponent(src, dst, contract.HeaderComponent)
	}
	if err := st.CopyComponent(src, dst, contract.HeaderComponent); err != nil {
		return err
	}
	return st.EraseComponent(dst, member)
}

func numeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func countNonNumeric(toks []string) int {
	n := 0
	for _, t := range toks {
		if !numeric(t) {
			n++
		}
	}
	return n
}
