package diag

import "sync"

// 进程内最小计数器：
// - op_total{comp,stage,result}
// - error_total{comp,code}
// - op_duration_ms{comp,stage}（累计）
var metMu sync.Mutex

var (
	opTotal  = map[string]int64{}
	errTotal = map[string]int64{}
	durTotal = map[string]int64{}
)

// IncOp 累加操作计数（result=success|error）。
func IncOp(comp, stage, result string) {
	metMu.Lock()
	opTotal[comp+"|"+stage+"|"+result]++
	metMu.Unlock()
}

// IncError 按分类累加错误计数。
func IncError(comp, code string) {
	metMu.Lock()
	errTotal[comp+"|"+code]++
	metMu.Unlock()
}

// ObserveDuration 记录阶段耗时（毫秒）。
func ObserveDuration(comp, stage string, durMS int64) {
	metMu.Lock()
	durTotal[comp+"|"+stage] += durMS
	metMu.Unlock()
}

// Metrics 为计数器快照；键以 "|" 连接标签。
type Metrics struct {
	Ops       map[string]int64 `json:"op_total"`
	Errors    map[string]int64 `json:"error_total"`
	Durations map[string]int64 `json:"op_duration_ms"`
}

// Snapshot 复制当前计数。
func Snapshot() Metrics {
	metMu.Lock()
	defer metMu.Unlock()
	return Metrics{Ops: copyMap(opTotal), Errors: copyMap(errTotal), Durations: copyMap(durTotal)}
}

// Reset 清零（测试之间使用）。
func Reset() {
	metMu.Lock()
	opTotal = map[string]int64{}
	errTotal = map[string]int64{}
	durTotal = map[string]int64{}
	metMu.Unlock()
}

// ErrorCount 返回 error_total{comp,code}。
func ErrorCount(comp string, code Code) int64 {
	metMu.Lock()
	defer metMu.Unlock()
	return errTotal[comp+"|"+string(code)]
}

func copyMap(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
