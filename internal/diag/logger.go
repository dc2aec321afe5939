package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// 级别定义
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Logger 为最小结构化日志器：单行 JSON 输出到轮转文件或任意 io.Writer。
// nil *Logger 为合法的 no-op。
type Logger struct {
	corrID string
	level  Level
	sink   *RotatingFile
	w      io.Writer
	mu     sync.Mutex
}

// NewLogger 以 level 初始化，日志写入 dir（空则 "logs"），10 MiB 轮转。
// corrID 为空时生成 UUID。
func NewLogger(corrID, level, dir string) *Logger {
	if strings.TrimSpace(dir) == "" {
		dir = "logs"
	}
	return &Logger{corrID: corrOrNew(corrID), level: parseLevel(strings.TrimSpace(level)), sink: NewRotatingFile(dir, 10*1024*1024)}
}

// NewWriterLogger 将事件写到 w（测试，或未配置日志目录时写 stderr）。
func NewWriterLogger(w io.Writer, level string) *Logger {
	return &Logger{corrID: corrOrNew(""), level: parseLevel(strings.TrimSpace(level)), w: w}
}

func corrOrNew(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// CorrID 返回本次运行的关联 ID。
func (l *Logger) CorrID() string {
	if l == nil {
		return ""
	}
	return l.corrID
}

func parseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return Debug
	case "warn":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

// Event 为标准事件结构。
type Event struct {
	Level  string            `json:"level"`
	TS     string            `json:"ts"`
	CorrID string            `json:"corr_id"`
	Comp   string            `json:"comp"`
	Stage  string            `json:"stage"` // start|finish|warn|error
	Code   string            `json:"code,omitempty"`
	DurMS  int64             `json:"dur_ms,omitempty"`
	Count  int64             `json:"count,omitempty"`
	File   string            `json:"file,omitempty"`
	Obs    string            `json:"obs,omitempty"`
	Msg    string            `json:"msg"`
	KV     map[string]string `json:"kv,omitempty"`
}

func (l *Logger) log(lv Level, ev Event) {
	if l == nil || lv < l.level {
		return
	}
	ev.Level = lv.String()
	ev.TS = NowUTC()
	ev.CorrID = l.corrID
	b, _ := json.Marshal(ev)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.w != nil {
		_, _ = l.w.Write(append(b, '\n'))
		return
	}
	if l.sink == nil {
		// 后备：写 stderr
		_, _ = os.Stderr.Write(append(b, '\n'))
		return
	}
	if err := l.sink.WriteLine(b); err != nil {
		fmt.Fprintf(os.Stderr, "logger sink error: %v\n", err)
		_, _ = os.Stderr.Write(append(b, '\n'))
	}
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg, file string) *Timer {
	l.log(Info, Event{Comp: comp, Stage: "start", File: file, Msg: msg})
	return &Timer{l: l, comp: comp, file: file, t0: time.Now()}
}

// Debugf 输出调试事件（仅 level=debug 时生效）。
func (l *Logger) Debugf(comp, file, format string, args ...any) {
	if l == nil || l.level > Debug {
		return
	}
	l.log(Debug, Event{Comp: comp, Stage: "debug", File: file, Msg: fmt.Sprintf(format, args...)})
}

// Info 记录一般事件。
func (l *Logger) Info(comp, msg, file, obs string, kv map[string]string) {
	l.log(Info, Event{Comp: comp, Stage: "finish", File: file, Obs: obs, Msg: msg, KV: kv})
}

// Warn 记录可恢复异常（容器不可读、输出名冲突等）。
func (l *Logger) Warn(comp, code, msg, file string, kv map[string]string) {
	l.log(Warn, Event{Comp: comp, Stage: "warn", Code: code, File: file, Msg: msg, KV: kv})
}

// Error 记录 error 事件。
func (l *Logger) Error(comp, code, msg, file string, durSince *time.Time) {
	var dur int64
	if durSince != nil {
		dur = time.Since(*durSince).Milliseconds()
	}
	l.log(Error, Event{Comp: comp, Stage: "error", Code: code, DurMS: dur, File: file, Msg: msg})
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l    *Logger
	comp string
	file string
	t0   time.Time
}

// Finish 记录 finish 并上报耗时；可选 count。
func (t *Timer) Finish(msg string, count int64) {
	if t == nil {
		return
	}
	d := time.Since(t.t0).Milliseconds()
	ObserveDuration(t.comp, "finish", d)
	t.l.log(Info, Event{Comp: t.comp, Stage: "finish", DurMS: d, Count: count, File: t.file, Msg: msg})
}
